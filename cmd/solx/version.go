package main

// executableName and version feed internal/metadata's CBOR trailer
// version vector (spec §4.4: "[executable_name -> version, ...]").
const (
	executableName = "solx"
	version        = "0.1.0"
)
