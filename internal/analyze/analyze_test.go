package analyze

import (
	"context"
	"testing"

	"github.com/taradepan/reaper/internal/rules"
)

func TestRunSequentialFindsUnusedImport(t *testing.T) {
	sources := []Source{
		{Path: "m.py", RelPath: "m.py", Content: []byte("import os\n")},
	}
	res, err := RunSequential(context.Background(), sources, rules.DefaultConfig())
	if err != nil {
		t.Fatalf("RunSequential() error: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Rule != "RP001" {
		t.Fatalf("diagnostics = %+v, want one RP001", res.Diagnostics)
	}
}

func TestRunSequentialPreservesModuleOrder(t *testing.T) {
	sources := []Source{
		{Path: "b.py", RelPath: "b.py", Content: []byte("import os\n")},
		{Path: "a.py", RelPath: "a.py", Content: []byte("import sys\n")},
	}
	res, err := RunSequential(context.Background(), sources, rules.DefaultConfig())
	if err != nil {
		t.Fatalf("RunSequential() error: %v", err)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %+v, want 2", res.Diagnostics)
	}
	if res.Diagnostics[0].ModulePath != "b.py" || res.Diagnostics[1].ModulePath != "a.py" {
		t.Errorf("diagnostics not in caller-provided module order: %+v", res.Diagnostics)
	}
}

func TestRunSequentialParseErrorSkipsModule(t *testing.T) {
	sources := []Source{
		{Path: "bad.py", RelPath: "bad.py", Content: []byte("def f(:\n    pass\n")},
	}
	res, err := RunSequential(context.Background(), sources, rules.DefaultConfig())
	if err != nil {
		t.Fatalf("RunSequential() error: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Rule != "ParseError" {
		t.Fatalf("diagnostics = %+v, want one ParseError", res.Diagnostics)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	sources := []Source{
		{Path: "a.py", RelPath: "a.py", Content: []byte("import os\n")},
		{Path: "b.py", RelPath: "b.py", Content: []byte("import sys\n\ndef f():\n    return sys.argv\n")},
		{Path: "c.py", RelPath: "c.py", Content: []byte("from a import missing\n")},
	}
	seq, err := RunSequential(context.Background(), sources, rules.DefaultConfig())
	if err != nil {
		t.Fatalf("RunSequential() error: %v", err)
	}
	par, err := RunParallel(context.Background(), sources, rules.DefaultConfig())
	if err != nil {
		t.Fatalf("RunParallel() error: %v", err)
	}
	if len(seq.Diagnostics) != len(par.Diagnostics) {
		t.Fatalf("sequential=%d parallel=%d diagnostics, want equal", len(seq.Diagnostics), len(par.Diagnostics))
	}
	for i := range seq.Diagnostics {
		if seq.Diagnostics[i] != par.Diagnostics[i] {
			t.Errorf("diagnostic %d differs: sequential=%+v parallel=%+v", i, seq.Diagnostics[i], par.Diagnostics[i])
		}
	}
}

func TestRunSequentialCancelledBetweenModules(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sources := []Source{
		{Path: "a.py", RelPath: "a.py", Content: []byte("import os\n")},
	}
	_, err := RunSequential(ctx, sources, rules.DefaultConfig())
	if err == nil {
		t.Fatal("expected Cancelled error")
	}
}
