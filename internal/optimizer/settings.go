// Package optimizer implements the optimizer settings state machine of
// spec §4.3: middle-end level, size-fallback flag, spill-area size,
// metadata-size reservation, and the mutators the pipeline recovery
// loop applies between subprocess attempts.
package optimizer

import "github.com/r3e-network/solx-go/internal/catalog"

// Settings is serializable so it can round-trip through the
// subprocess boundary verbatim (spec §3 "These settings are
// serializable").
type Settings struct {
	Level         catalog.OptimizationLevel `cbor:"level"`
	SizeFallback  bool                      `cbor:"size_fallback"`
	SpillAreaSize uint64                    `cbor:"spill_area_size"`
	MetadataSize  uint64                    `cbor:"metadata_size"`
	VerifyEach    bool                      `cbor:"verify_each"`
	DebugLogging  bool                      `cbor:"debug_logging"`
}

// New constructs the initial settings for a compilation, before any
// recovery-loop escalation has run.
func New(level catalog.OptimizationLevel, sizeFallback bool, verifyEach, debugLogging bool) Settings {
	return Settings{
		Level:        level,
		SizeFallback: sizeFallback,
		VerifyEach:   verifyEach,
		DebugLogging: debugLogging,
	}
}

// SetSpillAreaSize grows the reserved suffix of EVM memory monotonically:
// Spill := max(Spill, n). Shrinking the spill area across recovery
// attempts would reopen the stack-too-deep condition the previous
// attempt just worked around.
func (s *Settings) SetSpillAreaSize(n uint64) {
	if n > s.SpillAreaSize {
		s.SpillAreaSize = n
	}
}

// SwitchToSizeFallback lowers the middle-end level to the
// smallest-code setting and latches the size-fallback flag on; once
// set it never turns back off within one compilation.
func (s *Settings) SwitchToSizeFallback() {
	s.Level = catalog.LevelZ
	s.SizeFallback = true
}

// SetMetadataSize records the CBOR trailer's byte length once it is
// known, so the back-end can reserve space for it ahead of final
// codegen. Set once per segment; later calls overwrite rather than
// accumulate, since the trailer size is recomputed, not appended to.
func (s *Settings) SetMetadataSize(n uint64) {
	s.MetadataSize = n
}

// Clone returns an independent copy, used so each recovery attempt can
// mutate its own settings without aliasing the caller's.
func (s Settings) Clone() Settings {
	return s
}
