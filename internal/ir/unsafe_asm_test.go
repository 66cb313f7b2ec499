package ir

import (
	"os"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
)

func TestCheckUnsafeAsmNoOpWhenNotFlagged(t *testing.T) {
	mod := NewModule(catalog.SegmentRuntime)
	if err := CheckUnsafeAsm(mod, 1024, "test.yul"); err != nil {
		t.Errorf("expected no error for a module without UnsafeAsm set, got %v", err)
	}
}

func TestCheckUnsafeAsmNoOpWhenSpillIsZero(t *testing.T) {
	mod := NewModule(catalog.SegmentRuntime)
	mod.UnsafeAsm = true
	if err := CheckUnsafeAsm(mod, 0, "test.yul"); err != nil {
		t.Errorf("expected no error when spill area is trivial, got %v", err)
	}
}

func TestCheckUnsafeAsmRejectsWithoutEscapeHatch(t *testing.T) {
	os.Unsetenv(UnsafeAsmEscapeHatchEnv)
	mod := NewModule(catalog.SegmentRuntime)
	mod.UnsafeAsm = true
	if err := CheckUnsafeAsm(mod, 1024, "test.yul"); err == nil {
		t.Fatal("expected error for unsafeasm combined with non-trivial spill area")
	}
}

func TestCheckUnsafeAsmAllowedWithEscapeHatch(t *testing.T) {
	os.Setenv(UnsafeAsmEscapeHatchEnv, "1")
	defer os.Unsetenv(UnsafeAsmEscapeHatchEnv)
	mod := NewModule(catalog.SegmentRuntime)
	mod.UnsafeAsm = true
	if err := CheckUnsafeAsm(mod, 1024, "test.yul"); err != nil {
		t.Errorf("expected escape hatch to allow the build, got %v", err)
	}
}
