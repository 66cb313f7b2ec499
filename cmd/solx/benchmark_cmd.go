package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r3e-network/solx-go/internal/benchmark"
)

// benchmarkReportSpec is one "--report path:kind:toolchain:project"
// occurrence on the command line, the flag-mode shape for the
// (report, toolchain, project) triples spec §4.5 "Inputs" requires.
type benchmarkReportSpec struct {
	path      string
	kind      string
	toolchain string
	project   string
}

// newBenchmarkCommand wires internal/benchmark's merge-then-emit
// pipeline (spec §4.5 "Benchmark aggregation core") into a `solx
// benchmark` subcommand: repeatable --report flags are read and
// tagged, merged into one Benchmark, pruned of non-deployable
// contracts, and projected into an eight-worksheet workbook.
func newBenchmarkCommand() *cobra.Command {
	var reportFlags []string
	var provenance string
	var outPath string

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "merge toolchain benchmark reports into a comparison spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(reportFlags, provenance, outPath)
		},
	}

	cmd.Flags().StringArrayVar(&reportFlags, "report", nil,
		"path:kind:toolchain:project (repeatable); kind is one of "+
			"native, foundry_gas, foundry_size, compilation_time, testing_time, build_failures, test_failures")
	cmd.Flags().StringVar(&provenance, "provenance", string(benchmark.ProvenanceTooling),
		"comparison-pairing provenance: tooling or self_tester")
	cmd.Flags().StringVar(&outPath, "out", "benchmark.xlsx", "output .xlsx path")

	return cmd
}

func runBenchmark(reportFlags []string, provenanceFlag, outPath string) error {
	if len(reportFlags) == 0 {
		return fmt.Errorf("at least one --report is required")
	}

	specs := make([]benchmarkReportSpec, 0, len(reportFlags))
	for _, raw := range reportFlags {
		spec, err := parseBenchmarkReportSpec(raw)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	inputs := make([]benchmark.Input, 0, len(specs))
	for _, spec := range specs {
		in, err := benchmark.ReadInput(spec.path, benchmark.ReportKind(spec.kind), spec.project, spec.toolchain)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	b, err := benchmark.FromInputs(inputs)
	if err != nil {
		return err
	}

	workbook, err := benchmark.BuildWorkbook(b, benchmark.Provenance(provenanceFlag))
	if err != nil {
		return err
	}

	if err := workbook.Save(outPath); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", outPath, err)
	}
	return nil
}

// parseBenchmarkReportSpec splits "path:kind:toolchain:project". The
// path component may itself contain colons (Windows drive letters,
// URLs used in test fixtures), so kind/toolchain/project are peeled
// off the end instead of splitting left to right.
func parseBenchmarkReportSpec(raw string) (benchmarkReportSpec, error) {
	project, rest, err := cutLast(raw)
	if err != nil {
		return benchmarkReportSpec{}, invalidReportSpecErr(raw)
	}
	toolchain, rest, err := cutLast(rest)
	if err != nil {
		return benchmarkReportSpec{}, invalidReportSpecErr(raw)
	}
	kind, path, err := cutLast(rest)
	if err != nil {
		return benchmarkReportSpec{}, invalidReportSpecErr(raw)
	}
	return benchmarkReportSpec{path: path, kind: kind, toolchain: toolchain, project: project}, nil
}

// cutLast splits s at its last ':', returning (suffix, prefix); the
// path component of a --report spec may itself contain colons, so
// kind/toolchain/project are peeled off the end rather than split
// left to right.
func cutLast(s string) (suffix, prefix string, err error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	return s[idx+1:], s[:idx], nil
}

func invalidReportSpecErr(raw string) error {
	return fmt.Errorf("invalid --report %q: expected path:kind:toolchain:project", raw)
}
