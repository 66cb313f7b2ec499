package yul

import "testing"

func TestLexerBasicTokenization(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TokenType
	}{
		{
			name:   "punctuation",
			source: "(){},:=->",
			want:   []TokenType{TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace, TokenComma, TokenColonEqual, TokenArrow, TokenEOF},
		},
		{
			name:   "keywords",
			source: "object code data function let if switch case default for break continue leave",
			want: []TokenType{
				TokenObject, TokenCode, TokenData, TokenFunction, TokenLet, TokenIf, TokenSwitch,
				TokenCase, TokenDefault, TokenFor, TokenBreak, TokenContinue, TokenLeave, TokenEOF,
			},
		},
		{
			name:   "literals",
			source: `123 0xAB "hello" true false`,
			want:   []TokenType{TokenNumber, TokenHex, TokenString, TokenTrue, TokenFalse, TokenEOF},
		},
		{
			name:   "identifier vs keyword",
			source: "add foo_bar",
			want:   []TokenType{TokenIdentifier, TokenIdentifier, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer("test.yul", tt.source).ScanTokens()
			if err != nil {
				t.Fatalf("ScanTokens: %v", err)
			}
			if len(tokens) != len(tt.want) {
				t.Fatalf("got %d tokens, want %d (%v)", len(tokens), len(tt.want), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.want[i] {
					t.Errorf("token %d: got %s, want %s", i, tok.Type, tt.want[i])
				}
			}
		})
	}
}

func TestLexerRejectsUnterminatedConstructs(t *testing.T) {
	tests := []string{
		`"unterminated string`,
		"/* unterminated block comment",
	}
	for _, source := range tests {
		if _, err := NewLexer("test.yul", source).ScanTokens(); err == nil {
			t.Errorf("expected error for source %q", source)
		}
	}
}

func TestLexerNestedBlockComments(t *testing.T) {
	source := "/* outer /* inner */ still comment */ let"
	tokens, err := NewLexer("test.yul", source).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Type != TokenLet {
		t.Fatalf("nested comment not consumed correctly: %v", tokens)
	}
}
