package wire

import (
	"bytes"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/optimizer"
)

func TestWriteReadInputRoundTrip(t *testing.T) {
	module := ir.NewModule(catalog.SegmentRuntime)
	module.AddFunction(&ir.Function{
		Name: module.EntryPoint,
		Body: []ir.Op{{Name: "arithmetic.add", Operands: []string{"1", "2"}, Result: "%0"}},
	})

	in := Input{
		ContractPath:     "contracts/Token.sol",
		ContractName:     "Token",
		Segment:          catalog.SegmentRuntime,
		EVMVersion:       "cancun",
		Optimizer:        optimizer.New(catalog.Level3, false, false, false),
		MetadataHashKind: "ipfs",
		AppendCBOR:       true,
		Module:           module,
		Immutables:       map[string][]int{"x": {32, 96}},
	}

	var buf bytes.Buffer
	if err := WriteInput(&buf, in); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}

	got, err := ReadInput(&buf)
	if err != nil {
		t.Fatalf("ReadInput: %v", err)
	}
	if got.ContractPath != in.ContractPath || got.ContractName != in.ContractName {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, in)
	}
	if got.Optimizer.Level != catalog.Level3 {
		t.Errorf("optimizer level: got %q", got.Optimizer.Level)
	}
	if got.Immutables["x"][1] != 96 {
		t.Errorf("immutables round-trip failed: %+v", got.Immutables)
	}
	if got.Module == nil || len(got.Module.Functions) != 1 || got.Module.Functions[0].Body[0].Name != "arithmetic.add" {
		t.Errorf("module round-trip failed: %+v", got.Module)
	}
}

func TestWriteReadResultRoundTripSuccess(t *testing.T) {
	res := Result{Output: &Output{Bytecode: []byte{0x60, 0x00, 0x60, 0x00}}}

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	got, err := ReadResult(&buf)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if got.Output == nil || !bytes.Equal(got.Output.Bytecode, res.Output.Bytecode) {
		t.Errorf("bytecode round-trip mismatch: got %+v", got)
	}
	if got.Err != nil {
		t.Errorf("expected nil Err on success result, got %+v", got.Err)
	}
}

func TestWriteReadResultRoundTripStackTooDeep(t *testing.T) {
	res := Result{Err: &Error{
		Kind:           ErrorKindStackTooDeep,
		SpillAreaSize:  4096,
		IsSizeFallback: true,
	}}

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	got, err := ReadResult(&buf)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if got.Output != nil {
		t.Errorf("expected nil Output on error result, got %+v", got.Output)
	}
	if got.Err == nil || got.Err.Kind != ErrorKindStackTooDeep || got.Err.SpillAreaSize != 4096 {
		t.Errorf("stack-too-deep round-trip mismatch: got %+v", got.Err)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, lengthPrefixSize)
	for i := range header {
		header[i] = 0xff
	}
	buf.Write(header)

	var in Input
	if err := ReadFrame(&buf, &in); err == nil {
		t.Fatal("expected error for oversized frame length")
	}
}

func TestWriteFrameLengthPrefixMatchesBodySize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInput(&buf, Input{ContractPath: "a.sol"}); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}
	header := buf.Bytes()[:lengthPrefixSize]
	bodyLen := 0
	for i := 0; i < lengthPrefixSize; i++ {
		bodyLen |= int(header[i]) << (8 * i)
	}
	if bodyLen != buf.Len()-lengthPrefixSize {
		t.Errorf("length prefix %d does not match body size %d", bodyLen, buf.Len()-lengthPrefixSize)
	}
}
