package catalog

import "testing"

func TestParseEVMVersion(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want EVMVersion
	}{
		{"cancun", Cancun},
		{"prague", Prague},
		{"osaka", Osaka},
	} {
		got, err := ParseEVMVersion(tc.in)
		if err != nil {
			t.Fatalf("ParseEVMVersion(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseEVMVersion(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseEVMVersion("shanghai"); err == nil {
		t.Error("expected an error for an unsupported EVM version")
	}
}

func TestEVMVersionAtLeast(t *testing.T) {
	if !Prague.AtLeast(Cancun) {
		t.Error("prague should be at least cancun")
	}
	if Cancun.AtLeast(Prague) {
		t.Error("cancun should not be at least prague")
	}
}

func TestParseMetadataHashKind(t *testing.T) {
	if _, err := ParseMetadataHashKind("none"); err != nil {
		t.Fatalf("ParseMetadataHashKind(none): %v", err)
	}
	if _, err := ParseMetadataHashKind("bogus"); err == nil {
		t.Error("expected an error for an unsupported hash kind")
	}
}

func TestParseOptimizationLevel(t *testing.T) {
	for _, level := range []string{"1", "2", "3", "s", "z"} {
		if _, err := ParseOptimizationLevel(level); err != nil {
			t.Errorf("ParseOptimizationLevel(%q): %v", level, err)
		}
	}
	if _, err := ParseOptimizationLevel("4"); err == nil {
		t.Error("expected an error for an invalid optimization level")
	}
}

func TestSizePreferring(t *testing.T) {
	if Level3.SizePreferring() {
		t.Error("level 3 should not be size-preferring")
	}
	if !LevelS.SizePreferring() || !LevelZ.SizePreferring() {
		t.Error("levels s and z should both be size-preferring")
	}
}

func TestDefaultFunctionAttributesAddsSizeAttrsForSizePreferringLevels(t *testing.T) {
	base := DefaultFunctionAttributes(Level3)
	sizePreferring := DefaultFunctionAttributes(LevelZ)
	if len(sizePreferring) <= len(base) {
		t.Errorf("expected size-preferring level to add attributes, got base=%v size=%v", base, sizePreferring)
	}
}
