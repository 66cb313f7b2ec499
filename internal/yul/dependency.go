package yul

// Dependencies walks an Object's AST and collects the set of names
// referenced through dataoffset/datasize/datacopy calls — the only
// way one Yul object can reference another (spec §3 "Cyclic
// references (Yul deps)... Model dependencies as names, not owning
// pointers; resolve them through an identifier→full_path index").
// This is a flat name list, not a pointer graph, so cyclic references
// (a runtime object's code referencing its own deploy object's name,
// for instance) are representable without recursion.
func Dependencies(obj *Object) []string {
	seen := make(map[string]bool)
	var names []string
	collectBlockDeps(obj.Code, seen, &names)
	for _, sub := range obj.Objects {
		collectBlockDeps(sub.Code, seen, &names)
	}
	return names
}

func collectBlockDeps(block *Block, seen map[string]bool, out *[]string) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		collectStatementDeps(stmt, seen, out)
	}
}

func collectStatementDeps(stmt Statement, seen map[string]bool, out *[]string) {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		collectExprDeps(s.Expr, seen, out)
	case *VariableDeclaration:
		collectExprDeps(s.Value, seen, out)
	case *Assignment:
		collectExprDeps(s.Value, seen, out)
	case *If:
		collectExprDeps(s.Condition, seen, out)
		collectBlockDeps(s.Body, seen, out)
	case *Switch:
		collectExprDeps(s.Expr, seen, out)
		for _, c := range s.Cases {
			collectBlockDeps(c.Body, seen, out)
		}
	case *ForLoop:
		collectBlockDeps(s.Init, seen, out)
		collectExprDeps(s.Condition, seen, out)
		collectBlockDeps(s.Post, seen, out)
		collectBlockDeps(s.Body, seen, out)
	case *FunctionDefinition:
		collectBlockDeps(s.Body, seen, out)
	case *BlockStatement:
		collectBlockDeps(s.Block, seen, out)
	}
}

func collectExprDeps(expr Expression, seen map[string]bool, out *[]string) {
	call, ok := expr.(*FunctionCall)
	if !ok {
		return
	}
	switch call.Name {
	case "dataoffset", "datasize", "datacopy":
		if len(call.Arguments) > 0 {
			if lit, ok := call.Arguments[0].(*Literal); ok && lit.Kind == LiteralString {
				if !seen[lit.Value] {
					seen[lit.Value] = true
					*out = append(*out, lit.Value)
				}
			}
		}
	}
	for _, arg := range call.Arguments {
		collectExprDeps(arg, seen, out)
	}
}

// Index builds the identifier→full_path table spec §3 describes:
// "an identifier→full_path index (used by Yul cross-object
// references)". The root object's and every nested sub-object's bare
// Name all map to fullPath itself.
func Index(fullPath string, root *Object) map[string]string {
	idx := make(map[string]string)
	indexObject(fullPath, root, idx)
	return idx
}

func indexObject(fullPath string, obj *Object, idx map[string]string) {
	idx[obj.Name] = fullPath
	for _, sub := range obj.Objects {
		indexObject(fullPath, sub, idx)
	}
}
