package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r3e-network/solx-go/internal/config"
)

// flags collects every CLI flag of spec §6's "Output selection" and
// "Pipeline" families, bound to a single cobra.Command. Kept as one
// flat struct rather than per-subsystem structs because that mirrors
// the reference front-end's own flat flag surface this driver mirrors
// "where the semantics align" (spec §6).
type flags struct {
	yul            bool
	llvmIR         bool
	legacyAssembly bool
	standardJSON   string

	bin                    bool
	binRuntime             bool
	asm                    bool
	metadataOut            bool
	abi                    bool
	hashes                 bool
	userdoc                bool
	devdoc                 bool
	storageLayout          bool
	transientStorageLayout bool
	astCompactJSON         bool
	asmJSON                bool
	ir                     bool
	benchmarksOut          bool

	viaIR            bool
	optimization     string
	sizeFallback     bool
	evmVersion       string
	libraries        []string
	basePath         string
	includePath      []string
	allowPaths       []string
	noImportCallback bool
	metadataHash     string
	metadataLiteral  bool
	noCBORMetadata   bool
	threads          int
	llvmOptions      string
	llvmVerifyEach   bool
	llvmDebugLogging bool
	debugOutputDir   string
	outputDir        string
	overwrite        bool

	configFile string
	debug      bool
}

// Execute builds and runs the root command, returning the process
// exit code per spec §6's "Exit codes: 0 = success... 1 = fatal".
func Execute() int {
	var f flags
	loader := config.NewLoader()

	root := &cobra.Command{
		Use:           "solx [input files...]",
		Short:         "LLVM-based Solidity-to-EVM compiler driver",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.ReadConfigFile(f.configFile); err != nil {
				return err
			}
			return runCompile(cmd, &f, loader, args)
		},
	}

	bindCompileFlags(root, &f)
	root.AddCommand(newBenchmarkCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "solx:", err)
		return 1
	}
	return exitCode
}

// exitCode lets runCompile (standard-JSON mode especially) request
// exit 0 even though it already printed diagnostics, per spec §7
// "Standard-JSON mode always emits a parseable output to stdout even
// on failure... flag mode prints errors to stderr and non-zero exits
// for fatal cases."
var exitCode int

func bindCompileFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()

	fs.BoolVar(&f.yul, "yul", false, "compile Yul source")
	fs.BoolVar(&f.llvmIR, "llvm-ir", false, "compile LLVM-IR source")
	fs.BoolVar(&f.legacyAssembly, "legacy-assembly", false, "lower a front-end-emitted legacy-assembly JSON tree instead of Yul/LLVM-IR")
	fs.StringVar(&f.standardJSON, "standard-json", "", "standard-JSON input path, or '-' for stdin")

	fs.BoolVar(&f.bin, "bin", false, "emit deploy bytecode")
	fs.BoolVar(&f.binRuntime, "bin-runtime", false, "emit runtime bytecode")
	fs.BoolVar(&f.asm, "asm", false, "emit assembly text")
	fs.BoolVar(&f.metadataOut, "metadata", false, "emit metadata JSON")
	fs.BoolVar(&f.abi, "abi", false, "emit ABI")
	fs.BoolVar(&f.hashes, "hashes", false, "emit method identifiers")
	fs.BoolVar(&f.userdoc, "userdoc", false, "emit user documentation")
	fs.BoolVar(&f.devdoc, "devdoc", false, "emit developer documentation")
	fs.BoolVar(&f.storageLayout, "storage-layout", false, "emit storage layout")
	fs.BoolVar(&f.transientStorageLayout, "transient-storage-layout", false, "emit transient storage layout")
	fs.BoolVar(&f.astCompactJSON, "ast-compact-json", false, "emit compact AST JSON")
	fs.BoolVar(&f.asmJSON, "asm-json", false, "emit assembly as JSON")
	fs.BoolVar(&f.ir, "ir", false, "emit the lowered IR")
	fs.BoolVar(&f.benchmarksOut, "benchmarks", false, "emit per-stage profiler timings")

	fs.BoolVar(&f.viaIR, "via-ir", false, "route Solidity through the Yul pipeline")
	fs.StringVar(&f.optimization, "optimization", "", "optimization level: 1, 2, 3, s, or z")
	fs.BoolVar(&f.sizeFallback, "size-fallback", false, "start compilation already in size-fallback mode")
	fs.StringVar(&f.evmVersion, "evm-version", "cancun", "target EVM version: cancun, prague, or osaka")
	fs.StringArrayVar(&f.libraries, "libraries", nil, "path:Name=0xADDR library address (repeatable)")
	fs.StringVar(&f.basePath, "base-path", "", "base path for source resolution")
	fs.StringArrayVar(&f.includePath, "include-path", nil, "additional include path (repeatable)")
	fs.StringArrayVar(&f.allowPaths, "allow-paths", nil, "additional allowed path (repeatable)")
	fs.BoolVar(&f.noImportCallback, "no-import-callback", false, "disable the import callback")
	fs.StringVar(&f.metadataHash, "metadata-hash", "ipfs", "metadata hash kind: none or ipfs")
	fs.BoolVar(&f.metadataLiteral, "metadata-literal", false, "embed literal source content in metadata")
	fs.BoolVar(&f.noCBORMetadata, "no-cbor-metadata", false, "do not append the CBOR metadata trailer")
	fs.IntVar(&f.threads, "threads", 0, "worker pool size; 0 means hardware parallelism")
	fs.StringVar(&f.llvmOptions, "llvm-options", "", "extra options passed through to the LLVM pipeline")
	fs.BoolVar(&f.llvmVerifyEach, "llvm-verify-each", false, "verify LLVM IR after every pass")
	fs.BoolVar(&f.llvmDebugLogging, "llvm-debug-logging", false, "enable LLVM pass debug logging")
	fs.StringVar(&f.debugOutputDir, "debug-output-dir", "", "directory for per-run debug artifacts")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory to write selected outputs into")
	fs.BoolVar(&f.overwrite, "overwrite", false, "overwrite existing files in --output-dir")

	fs.StringVar(&f.configFile, "config", "", "optional TOML configuration file")
	fs.BoolVar(&f.debug, "debug", false, "enable debug-level structured logging")
}

// newLogger builds the one process-wide zap.Logger this driver
// threads explicitly into every constructor that needs it (spec
// SPEC_FULL.md §1 "Logging"), rather than reaching for a package
// global, mirroring how the teacher threads a *CompilerContext
// through every compilation stage.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
