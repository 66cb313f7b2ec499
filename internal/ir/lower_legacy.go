package ir

import (
	"fmt"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/legacyasm"
)

// LowerLegacyAssembly flattens a front-end-emitted legacy-assembly
// tree into a Module (spec §3 "Legacy assembly... a tagged
// instruction-list tree... and a dependency accumulator across
// sub-assemblies", spec §4.2 "Legacy assembly"). Jump destinations
// (tag/push_tag pairs) become symbolic labels; push_sub/push_sub_size
// references become module dependencies, resolved the same way Yul's
// dataoffset/datasize are: by name, against the linker/metadata layer,
// once the referenced sub-assembly's own lowering has completed.
func LowerLegacyAssembly(asm *legacyasm.Assembly, segment catalog.CodeSegment, path string, version catalog.EVMVersion) (*Module, error) {
	sem := legacyasm.SemanticsFor(version)
	module := NewModule(segment)
	module.ContractPath = path
	for _, dep := range asm.Dependencies() {
		module.AddDependency(fmt.Sprintf("sub%d", dep))
	}

	entry := &Function{Name: module.EntryPoint, Attrs: catalog.DefaultFunctionAttributes(catalog.Level3)}
	ops, err := lowerLegacyItems(asm.Items, path, sem)
	if err != nil {
		return nil, err
	}
	entry.Body = ops
	module.AddFunction(entry)
	return module, nil
}

func lowerLegacyItems(items []legacyasm.Item, path string, sem legacyasm.Semantics) ([]Op, error) {
	var ops []Op
	for _, item := range items {
		op, err := lowerLegacyItem(item, path, sem)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func lowerLegacyItem(item legacyasm.Item, path string, sem legacyasm.Semantics) (Op, error) {
	switch item.Kind {
	case legacyasm.ItemOpcode:
		if err := checkOpcodeSemantics(item.Value, path, sem); err != nil {
			return Op{}, err
		}
		return Op{Name: "opcode." + item.Value}, nil

	case legacyasm.ItemPush:
		return Op{Name: "push", Operands: []string{item.Value}}, nil

	case legacyasm.ItemPushTag:
		return Op{Name: "push.tag", Operands: []string{item.Value}}, nil

	case legacyasm.ItemTag:
		return Op{Name: "tag", Operands: []string{item.Value}}, nil

	case legacyasm.ItemPushSub:
		return Op{Name: "push.sub", Operands: []string{fmt.Sprintf("sub%d", item.SubIndex)}}, nil

	case legacyasm.ItemPushSubSize:
		return Op{Name: "push.subsize", Operands: []string{fmt.Sprintf("sub%d", item.SubIndex)}}, nil

	case legacyasm.ItemPushLib:
		return Op{Name: "push.linkersymbol", Operands: []string{item.Value}}, nil

	case legacyasm.ItemAssignImmutable:
		return Op{Name: "immutable.assign", Operands: []string{item.Value}}, nil

	default:
		return Op{}, errs.New(errs.KindLowering, path, fmt.Sprintf("unrecognized legacy assembly item kind %q", item.Kind))
	}
}

// checkOpcodeSemantics rejects a legacy-assembly opcode that the
// target EVM version does not support (spec §4.2's version-pinned
// semantics note applies equally to legacy assembly and to Yul).
func checkOpcodeSemantics(mnemonic, path string, sem legacyasm.Semantics) error {
	switch mnemonic {
	case "PUSH0":
		if !sem.HasPush0 {
			return errs.New(errs.KindLowering, path, "PUSH0 is not available at the configured EVM version")
		}
	case "MCOPY":
		if !sem.HasMCopy {
			return errs.New(errs.KindLowering, path, "MCOPY is not available at the configured EVM version")
		}
	case "TLOAD", "TSTORE":
		if !sem.HasTransientStorage {
			return errs.New(errs.KindLowering, path, mnemonic+" is not available at the configured EVM version")
		}
	case "BLOBHASH":
		if !sem.HasBlobHash {
			return errs.New(errs.KindLowering, path, "BLOBHASH is not available at the configured EVM version")
		}
	case "BLOBBASEFEE":
		if !sem.HasBlobBaseFee {
			return errs.New(errs.KindLowering, path, "BLOBBASEFEE is not available at the configured EVM version")
		}
	}
	return nil
}
