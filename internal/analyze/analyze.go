// Package analyze orchestrates the full pipeline (spec §5): per-module
// parse, scope-build, and reachability analysis, followed by a single
// cross-file reduce (registry build + rule dispatch). It offers a
// single-threaded mode for deterministic tests and a parallel fan-out mode
// for production use, matching the teacher's worker-pool-plus-barrier shape.
package analyze

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/taradepan/reaper/internal/pyast"
	"github.com/taradepan/reaper/internal/reaperr"
	"github.com/taradepan/reaper/internal/registry"
	"github.com/taradepan/reaper/internal/rules"
	"github.com/taradepan/reaper/internal/scope"
)

// Source is one file handed to the analyzer: its path, the path relative to
// the analysis root (used to derive import-style qualified names), and its
// UTF-8 content. The core does no file I/O of its own.
type Source struct {
	Path    string
	RelPath string
	Content []byte
}

// Result is the outcome of a complete run: the diagnostic stream plus the
// built modules, exposed for callers that want module-level statistics
// (e.g. a terminal reporter grouping by file).
type Result struct {
	Diagnostics []rules.Diagnostic
	Modules     []*scope.Module
}

// RunSequential analyzes sources one at a time, in the given order. It is
// the deterministic mode used by tests and by the CLI's --sequential flag;
// the CLI otherwise runs RunParallel.
func RunSequential(ctx context.Context, sources []Source, cfg rules.Config) (Result, error) {
	parser, err := pyast.NewParser()
	if err != nil {
		return Result{}, &reaperr.InternalError{Phase: "parse", Detail: err.Error()}
	}
	defer parser.Close()

	modules := make([]*scope.Module, 0, len(sources))
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return Result{}, reaperr.Cancelled
		default:
		}
		mod, err := buildModule(parser, src)
		if err != nil {
			return Result{}, err
		}
		modules = append(modules, mod)
	}
	return reduce(modules, cfg), nil
}

// maxWorkers caps parallel per-module fan-out. Each module's task creates
// its own Tree-sitter parser, so workers never contend on one parser's
// mutex.
const maxWorkers = 8

// RunParallel analyzes phases 4.1-4.3 for each module concurrently, then
// performs the cross-file reduce (registry + rule dispatch) once every
// module has finished, matching spec §5's barrier semantics: no diagnostic
// is emitted before every module's per-module phase has completed.
func RunParallel(ctx context.Context, sources []Source, cfg rules.Config) (Result, error) {
	modules := make([]*scope.Module, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			parser, err := pyast.NewParser()
			if err != nil {
				return &reaperr.InternalError{Phase: "parse", ModulePath: src.Path, Detail: err.Error()}
			}
			defer parser.Close()

			mod, err := buildModule(parser, src)
			if err != nil {
				return err
			}
			modules[i] = mod
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Result{}, reaperr.Cancelled
		}
		return Result{}, err
	}

	return reduce(modules, cfg), nil
}

// buildModule parses one source and, absent a syntax error, builds its
// scope tree. A syntax error yields a ParseError-carrying Module with no
// scope tree, per spec §4.1: the module contributes no other diagnostics.
// A panic during the scope walk is not expected on well-formed input, but
// is recovered into the internal-error class spec §7 carves out for
// violated invariants rather than crashing the whole run.
func buildModule(parser *pyast.Parser, src Source) (mod *scope.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			mod, err = nil, &reaperr.InternalError{Phase: "scope", ModulePath: src.Path, Detail: panicDetail(r)}
		}
	}()

	tree, perr := parser.Parse(src.Path, src.Content)
	if perr != nil {
		return nil, &reaperr.InternalError{Phase: "parse", ModulePath: src.Path, Detail: perr.Error()}
	}
	defer tree.Close()

	if tree.HasSyntaxError() {
		span := pyast.Span(tree.Root())
		return &scope.Module{
			Path:       src.Path,
			RelPath:    src.RelPath,
			Content:    src.Content,
			ParseError: &span,
		}, nil
	}

	return scope.Build(src.Path, src.RelPath, tree, src.Content), nil
}

func panicDetail(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "unexpected panic during parse"
}

// reduce runs spec §4.4's cross-file resolver and §4.5's rule dispatch once
// every module's per-module phase has completed.
func reduce(modules []*scope.Module, cfg rules.Config) Result {
	reg := registry.Build(modules)
	return Result{
		Diagnostics: rules.Run(modules, reg, cfg),
		Modules:     modules,
	}
}
