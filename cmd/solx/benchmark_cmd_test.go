package main

import "testing"

func TestParseBenchmarkReportSpec(t *testing.T) {
	spec, err := parseBenchmarkReportSpec("reports/aave.json:foundry_gas:solx:aave-v3")
	if err != nil {
		t.Fatalf("parseBenchmarkReportSpec: %v", err)
	}
	if spec.path != "reports/aave.json" || spec.kind != "foundry_gas" || spec.toolchain != "solx" || spec.project != "aave-v3" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseBenchmarkReportSpecKeepsColonsInPath(t *testing.T) {
	spec, err := parseBenchmarkReportSpec("C:/reports/aave.json:foundry_gas:solx:aave-v3")
	if err != nil {
		t.Fatalf("parseBenchmarkReportSpec: %v", err)
	}
	if spec.path != "C:/reports/aave.json" {
		t.Fatalf("expected path to retain its internal colon, got %q", spec.path)
	}
}

func TestParseBenchmarkReportSpecRejectsTooFewFields(t *testing.T) {
	if _, err := parseBenchmarkReportSpec("only:three:fields"); err == nil {
		t.Fatal("expected an error for a spec with too few fields")
	}
}
