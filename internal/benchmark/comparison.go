package benchmark

// Provenance identifies which pipeline produced the toolchains being
// compared, so the spreadsheet emitter knows which comparison pairing
// to apply (spec §9 Design Notes, Open Question: "The spreadsheet
// 'comparison mapping'... is hard-coded for two provenances... but the
// policy should be data-driven in the rewrite").
type Provenance string

const (
	ProvenanceTooling    Provenance = "tooling"
	ProvenanceSelfTester Provenance = "self_tester"
)

// ColumnPair is one "diff this toolchain ID against that one" entry.
type ColumnPair struct {
	ReferenceID int
	CandidateID int
}

// comparisonMappings is data, not code, per spec's Design Notes: the
// exact pairings original_source/solx-benchmark-converter/src/output/
// xlsx/mod.rs hard-codes for its two provenances, reproduced verbatim
// here for parity with existing consumers, but keyed by a Provenance
// value instead of a Rust enum match so a third provenance can be
// added by appending a map entry instead of editing emission code.
var comparisonMappings = map[Provenance][]ColumnPair{
	ProvenanceTooling: {
		{ReferenceID: 6, CandidateID: 4},
		{ReferenceID: 7, CandidateID: 5},
		{ReferenceID: 6, CandidateID: 2},
		{ReferenceID: 7, CandidateID: 3},
		{ReferenceID: 6, CandidateID: 0},
		{ReferenceID: 7, CandidateID: 1},
	},
	ProvenanceSelfTester: {
		{ReferenceID: 6, CandidateID: 2},
		{ReferenceID: 7, CandidateID: 3},
		{ReferenceID: 4, CandidateID: 0},
		{ReferenceID: 5, CandidateID: 1},
	},
}

// minToolchainsForComparison is the lowest toolchain count either
// mapping above assumes (the highest referenced ID is 7). Below this,
// the emitter skips diff columns instead of panicking, per
// mod.rs's own "if xlsx.toolchains.len() < 8 { return }" guard.
const minToolchainsForComparison = 8

// ComparisonPairs returns the column pairs to diff for provenance, or
// nil if there are not enough toolchains for either pairing to make
// sense.
func ComparisonPairs(provenance Provenance, toolchainCount int) []ColumnPair {
	if toolchainCount < minToolchainsForComparison {
		return nil
	}
	return comparisonMappings[provenance]
}

// RegisterComparisonMapping lets a caller add a pairing for a new
// provenance without editing this package, completing the
// "data-driven" rewrite spec.md's Design Notes call for.
func RegisterComparisonMapping(provenance Provenance, pairs []ColumnPair) {
	comparisonMappings[provenance] = pairs
}
