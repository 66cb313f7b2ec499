package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/wire"
)

// Orchestrator drives compile_project (spec §4.1). It threads an
// explicit logger through its constructor rather than using a global,
// mirroring how the teacher threads a *CompilerContext* through every
// compilation stage.
type Orchestrator struct {
	logger *zap.Logger
	run    segmentRunner // nil in production: bound lazily to runSubprocess+ctx per call
}

// New constructs an Orchestrator using the real subprocess runner.
func New(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger}
}

// withRunner returns a copy of o using run instead of the real
// subprocess runner — unexported: only this package's own tests need
// to exercise CompileProject's fan-out and recovery wiring without
// spawning a real --recursive-process child.
func (o *Orchestrator) withRunner(run segmentRunner) *Orchestrator {
	clone := *o
	clone.run = run
	return &clone
}

// CompileProject is spec §4.1's entry contract: one task per contract,
// runtime segment strictly before deploy, immutables threaded by
// value between them, bounded parallelism across contracts.
func (o *Orchestrator) CompileProject(ctx context.Context, project *Project, opts Options) (*Build, error) {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	sem := semaphore.NewWeighted(int64(threads))

	names := make([]string, 0, len(project.Contracts))
	for name := range project.Contracts {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic task submission order; completion order is still unordered (spec §4.1 "Between contracts: none required")

	build := &Build{Errors: map[string]error{}}
	var artifacts []*ContractArtifact
	var mu sync.Mutex

	group, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		contract := project.Contracts[name]
		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			artifact, err := o.compileContract(gctx, contract, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn("contract build failed", zap.String("contract", name), zap.Error(err))
				build.Errors[name] = err
				return nil // one contract's failure does not cancel the others (spec §4.1: "Between contracts: none required")
			}
			artifacts = append(artifacts, artifact)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Name.FullPath() < artifacts[j].Name.FullPath() })
	build.Contracts = artifacts
	return build, nil
}

// compileContract runs one contract's runtime pass, then its deploy
// pass seeded with the immutables the runtime pass discovered (spec
// §4.1 "this ordering is mandatory: the deploy segment stores
// immutables whose offsets are only known after runtime codegen").
func (o *Orchestrator) compileContract(ctx context.Context, contract *Contract, opts Options) (*ContractArtifact, error) {
	artifact := &ContractArtifact{
		Name:          contract.Name,
		MetadataJSON:  contract.MetadataJSON,
		ABI:           contract.ABI,
		UserDoc:       contract.UserDoc,
		DevDoc:        contract.DevDoc,
		StorageLayout: contract.StorageLayout,
	}

	var immutables map[string][]int

	if contract.Runtime != nil {
		seg, err := o.compileSegment(ctx, contract.Name, contract.Runtime, catalog.SegmentRuntime, opts, nil)
		if err != nil {
			return nil, fmt.Errorf("runtime segment: %w", err)
		}
		artifact.Runtime = seg
		immutables = seg.Immutables
	}

	if contract.Deploy != nil {
		seg, err := o.compileSegment(ctx, contract.Name, contract.Deploy, catalog.SegmentDeploy, opts, immutables)
		if err != nil {
			return nil, fmt.Errorf("deploy segment: %w", err)
		}
		artifact.Deploy = seg
	}

	return artifact, nil
}

// compileSegment builds one wire.Input for (name, segment), runs it
// through the bounded recovery loop, and packages the outcome.
func (o *Orchestrator) compileSegment(ctx context.Context, name ContractName, module *ir.Module, segment catalog.CodeSegment, opts Options, immutables map[string][]int) (*SegmentArtifact, error) {
	in := wire.Input{
		ContractPath:     name.Path,
		ContractName:     name.Name,
		Segment:          segment,
		EVMVersion:       opts.EVMVersion.String(),
		Optimizer:        opts.Optimizer.Clone(),
		MetadataHashKind: string(opts.MetadataHashKind),
		AppendCBOR:       opts.AppendCBOR,
		LLVMOptions:      opts.LLVMOptions,
		Module:           module,
		Immutables:       immutables,
	}

	run := o.run
	if run == nil {
		run = func(in wire.Input) (wire.Result, error) { return runSubprocess(ctx, in) }
	}

	output, finalSettings, err := runSegmentWithRecovery(run, in)
	if err != nil {
		return nil, err
	}

	return &SegmentArtifact{
		Segment:      segment,
		Bytecode:     output.Bytecode,
		Immutables:   output.Immutables,
		SizeFallback: finalSettings.SizeFallback,
		LibraryRefs:  output.LibraryRefs,
		Timings:      FromWire(output.Timings),
	}, nil
}
