package benchmark

import "testing"

func TestBuildWorkbookWritesRuntimeGasValue(t *testing.T) {
	b := New()
	selector := Selector{Project: "p", Case: "Token", Input: &TestInput{Kind: InputRuntime, InputIndex: 1, Name: "transfer"}}
	run := b.test(selector).run("solx", "", "", "")
	run.Gas = append(run.Gas, 21000)

	w, err := BuildWorkbook(b, ProvenanceTooling)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}

	cell, err := w.file.GetCellValue("Runtime Gas", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if cell != "Token" {
		t.Errorf("expected contract column to read %q, got %q", "Token", cell)
	}

	value, err := w.file.GetCellValue("Runtime Gas", "D2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if value != "21000" {
		t.Errorf("expected gas value 21000 in the toolchain column, got %q", value)
	}
}

func TestWorksheetSetTotalsSkipsEmptySheet(t *testing.T) {
	w, err := NewWorkbook()
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	if err := w.BuildFailures.SetTotals(0); err != nil {
		t.Fatalf("SetTotals on an empty worksheet should be a no-op, got error: %v", err)
	}
}
