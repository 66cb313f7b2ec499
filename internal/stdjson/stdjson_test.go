package stdjson

import "testing"

func TestOutputSelectionWants(t *testing.T) {
	sel := OutputSelection{
		"contracts/Token.sol": {
			"Token": []string{"abi", "evm.bytecode"},
			"*":     []string{"metadata"},
		},
		"*": {
			"*": []string{"ir"},
		},
	}

	tests := []struct {
		path, contract, key string
		want                bool
	}{
		{"contracts/Token.sol", "Token", "abi", true},
		{"contracts/Token.sol", "Token", "evm.bytecode", true},
		{"contracts/Token.sol", "Token", "metadata", true},
		{"contracts/Token.sol", "Token", "ir", true},
		{"contracts/Token.sol", "Token", "userdoc", false},
		{"contracts/Other.sol", "Anything", "ir", true},
		{"contracts/Other.sol", "Anything", "abi", false},
	}
	for _, tt := range tests {
		if got := sel.Wants(tt.path, tt.contract, tt.key); got != tt.want {
			t.Errorf("Wants(%q, %q, %q) = %v, want %v", tt.path, tt.contract, tt.key, got, tt.want)
		}
	}
}

func TestInputRoundTrip(t *testing.T) {
	content := "contract C {}"
	in := Input{
		Language: LanguageSolidity,
		Sources: map[string]Source{
			"a.sol": {Content: &content},
		},
		Settings: Settings{
			Optimizer: OptimizerSettings{Enabled: true, Level: "3"},
			EVMVersion: "prague",
		},
	}
	encoded, err := MarshalInput(in)
	if err != nil {
		t.Fatalf("MarshalInput: %v", err)
	}
	decoded, err := UnmarshalInput(encoded)
	if err != nil {
		t.Fatalf("UnmarshalInput: %v", err)
	}
	if decoded.Language != LanguageSolidity {
		t.Fatalf("got language %q, want Solidity", decoded.Language)
	}
	if decoded.Sources["a.sol"].Content == nil || *decoded.Sources["a.sol"].Content != content {
		t.Fatalf("source content did not round-trip")
	}
	if decoded.Settings.Optimizer.Level != "3" {
		t.Fatalf("optimizer level did not round-trip: %+v", decoded.Settings.Optimizer)
	}
}

func TestSortedKeysIsLexicographic(t *testing.T) {
	m := map[string]int{"b.sol": 1, "a.sol": 2, "c.sol": 3}
	keys := SortedKeys(m)
	want := []string{"a.sol", "b.sol", "c.sol"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}
