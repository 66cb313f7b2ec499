package legacyasm

import "github.com/r3e-network/solx-go/internal/catalog"

// Semantics is the solc-version-pinned flag set spec §4.2 calls for:
// "certain EVM ops gain semantics across hard forks." The flattener
// (internal/ir) consults this before deciding how to lower an opcode
// item that changed meaning or availability across forks.
type Semantics struct {
	HasPush0      bool // PUSH0 (Shanghai+)
	HasMCopy      bool // MCOPY (Cancun+)
	HasTransientStorage bool // TLOAD/TSTORE (Cancun+)
	HasBlobHash   bool // BLOBHASH (Cancun+)
	HasBlobBaseFee bool // BLOBBASEFEE (Cancun+)
}

// SemanticsFor returns the opcode-availability flags for version. All
// three versions this driver targets (Cancun, Prague, Osaka) postdate
// Shanghai/Cancun, so every flag here is unconditionally true in
// practice; the table exists so a future earlier --evm-version value
// has a single place to add a narrower flag set, per spec's
// open-question note that "the policy should be data-driven."
func SemanticsFor(version catalog.EVMVersion) Semantics {
	return Semantics{
		HasPush0:            version.AtLeast(catalog.Cancun),
		HasMCopy:            version.AtLeast(catalog.Cancun),
		HasTransientStorage: version.AtLeast(catalog.Cancun),
		HasBlobHash:         version.AtLeast(catalog.Cancun),
		HasBlobBaseFee:      version.AtLeast(catalog.Cancun),
	}
}
