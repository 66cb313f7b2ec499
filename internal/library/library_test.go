package library

import "testing"

func TestParseSpecs(t *testing.T) {
	table, err := Parse([]string{
		"a.sol:L=0x0000000000000000000000000000000000000001",
		"b.sol:M=0x0000000000000000000000000000000000000002",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(table))
	}
	addr, ok := table["a.sol"]["L"]
	if !ok {
		t.Fatal("missing a.sol:L")
	}
	if AddressHex(addr) != "0000000000000000000000000000000000000001" {
		t.Fatalf("unexpected address: %s", AddressHex(addr))
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []string{
		"missing-equals",
		"missingcolon=0x0000000000000000000000000000000000000001",
		"a.sol:L=not-an-address",
		"a.sol:L=0x01", // too short
	}
	for _, spec := range tests {
		if _, err := Parse([]string{spec}); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestPlaceholderShapeAndStability(t *testing.T) {
	p := Placeholder("a.sol", "L")
	if len(p) != len("__$")+34+len("$__") {
		t.Fatalf("placeholder has wrong length: %d (%s)", len(p), p)
	}
	if p[:3] != "__$" || p[len(p)-3:] != "$__" {
		t.Fatalf("placeholder has wrong delimiters: %s", p)
	}
	if Placeholder("a.sol", "L") != p {
		t.Fatal("placeholder is not deterministic")
	}
	if Placeholder("a.sol", "M") == p {
		t.Fatal("distinct libraries produced the same placeholder")
	}
}

func TestPlaceholderTableRoundTrip(t *testing.T) {
	table, err := Parse([]string{"a.sol:L=0x0000000000000000000000000000000000000001"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	placeholders := table.PlaceholderTable()
	addr, ok := placeholders[Placeholder("a.sol", "L")]
	if !ok {
		t.Fatal("placeholder table missing expected entry")
	}
	if AddressHex(addr) != "0000000000000000000000000000000000000001" {
		t.Fatalf("unexpected address in placeholder table: %s", AddressHex(addr))
	}
}

func TestPlaceholderBytesIsAddressWidthAndStable(t *testing.T) {
	b := PlaceholderBytes("a.sol", "L")
	if len(b) != AddressLength {
		t.Fatalf("placeholder marker has wrong width: %d", len(b))
	}
	if PlaceholderBytes("a.sol", "L") != b {
		t.Fatal("placeholder marker is not deterministic")
	}
	if PlaceholderBytes("a.sol", "M") == b {
		t.Fatal("distinct libraries produced the same placeholder marker")
	}
	if PlaceholderBytes("b.sol", "L") == b {
		t.Fatal("distinct paths produced the same placeholder marker")
	}
}
