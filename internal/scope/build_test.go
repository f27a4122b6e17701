package scope

import (
	"testing"

	"github.com/taradepan/reaper/internal/pyast"
)

func buildModule(t *testing.T, src string) *Module {
	t.Helper()
	p, err := pyast.NewParser()
	if err != nil {
		t.Fatalf("NewParser() error: %v", err)
	}
	defer p.Close()

	tree, err := p.Parse("m.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()

	return Build("m.py", "m.py", tree, []byte(src))
}

func TestUnusedImport(t *testing.T) {
	mod := buildModule(t, "import os\n")
	b, ok := mod.ModuleScope.Bindings["os"]
	if !ok {
		t.Fatal("expected binding for os")
	}
	if b.Kind != BindImport {
		t.Errorf("Kind = %v, want BindImport", b.Kind)
	}
	if b.HasReads() {
		t.Error("expected no reads for unused import")
	}
}

func TestImportUsedLater(t *testing.T) {
	mod := buildModule(t, "import os\n\ndef f():\n    return os.getcwd()\n")
	b := mod.ModuleScope.Bindings["os"]
	if !b.HasReads() {
		t.Error("expected os to be read inside f")
	}
}

func TestForwardReferenceWithinScope(t *testing.T) {
	src := "def a():\n    return b()\n\ndef b():\n    return 1\n"
	mod := buildModule(t, src)
	b := mod.ModuleScope.Bindings["b"]
	if !b.HasReads() {
		t.Error("expected forward reference from a() to resolve to b")
	}
}

func TestClassScopeNotVisibleToNestedFunction(t *testing.T) {
	src := "class C:\n    x = 1\n\n    def m(self):\n        return x\n"
	mod := buildModule(t, src)
	classScope := mod.ModuleScope.Children[0]
	xBind := classScope.Bindings["x"]
	if xBind.HasReads() {
		t.Error("nested method body must not resolve names against its enclosing class scope")
	}
}

func TestClassBodyCanReadItsOwnAttribute(t *testing.T) {
	src := "class C:\n    x = 1\n    y = x + 1\n"
	mod := buildModule(t, src)
	classScope := mod.ModuleScope.Children[0]
	xBind := classScope.Bindings["x"]
	if !xBind.HasReads() {
		t.Error("class body should see its own class-scope bindings")
	}
}

func TestWalrusBindsEnclosingFunctionNotComprehension(t *testing.T) {
	src := "def f(items):\n    return [y for x in items if (y := x * 2) > 0]\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if _, ok := fnScope.Bindings["y"]; !ok {
		t.Fatal("expected walrus target y bound in enclosing function scope")
	}
	for _, c := range fnScope.Children {
		if c.Kind == KindComprehension {
			if _, ok := c.Bindings["y"]; ok {
				t.Error("walrus target must not be bound in the comprehension's own scope")
			}
		}
	}
}

func TestComprehensionFirstIterableEvaluatedInEnclosingScope(t *testing.T) {
	src := "def f():\n    items = [1, 2, 3]\n    return [i for i in items]\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	itemsBind := fnScope.Bindings["items"]
	if !itemsBind.HasReads() {
		t.Error("expected items (the comprehension's first iterable) to be read in the function scope")
	}
}

func TestGlobalRedirectsAssignmentToModuleScope(t *testing.T) {
	src := "counter = 0\n\ndef bump():\n    global counter\n    counter += 1\n"
	mod := buildModule(t, src)
	b := mod.ModuleScope.Bindings["counter"]
	if len(b.Defs) < 2 {
		t.Errorf("expected counter to have defs from both the module assignment and the global-redirected bump(), got %d", len(b.Defs))
	}
}

func TestUnresolvedNonlocalRecorded(t *testing.T) {
	src := "def outer():\n    def inner():\n        nonlocal missing\n        missing = 1\n    inner()\n"
	mod := buildModule(t, src)
	if len(mod.UnresolvedNonlocals) != 1 {
		t.Fatalf("expected one unresolved nonlocal, got %d", len(mod.UnresolvedNonlocals))
	}
	if mod.UnresolvedNonlocals[0].Name != "missing" {
		t.Errorf("unresolved nonlocal name = %q, want missing", mod.UnresolvedNonlocals[0].Name)
	}
}

func TestTryExceptImportFallbackMergesBinding(t *testing.T) {
	src := "try:\n    import ujson as json\nexcept ImportError:\n    import json\n\ndef use():\n    return json.dumps({})\n"
	mod := buildModule(t, src)
	b := mod.ModuleScope.Bindings["json"]
	if b == nil {
		t.Fatal("expected a single merged json binding")
	}
	if !b.HasReads() {
		t.Error("expected the merged binding to carry the use from use()")
	}
	if len(b.Defs) != 2 {
		t.Errorf("expected both try and except import sites recorded as defs, got %d", len(b.Defs))
	}
}

func TestDunderAllLiteralDetected(t *testing.T) {
	src := "__all__ = [\"a\", \"b\"]\n\ndef a():\n    pass\n\ndef b():\n    pass\n"
	mod := buildModule(t, src)
	if !mod.AllDeclared {
		t.Fatal("expected __all__ to be recognized as statically declared")
	}
	if len(mod.AllNames) != 2 || mod.AllNames[0] != "a" || mod.AllNames[1] != "b" {
		t.Errorf("AllNames = %v, want [a b]", mod.AllNames)
	}
}

func TestDeadStatementAfterReturn(t *testing.T) {
	src := "def f():\n    return 1\n    x = 2\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if len(fnScope.Reach.DeadStatementSpans) != 1 {
		t.Fatalf("expected one dead-suffix span, got %d", len(fnScope.Reach.DeadStatementSpans))
	}
	if fnScope.Reach.DeadStatementSpans[0].StartLine != 3 {
		t.Errorf("dead span line = %d, want 3", fnScope.Reach.DeadStatementSpans[0].StartLine)
	}
}

func TestDeadBranchOnFalseLiteral(t *testing.T) {
	src := "def f():\n    if False:\n        return 1\n    return 2\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if len(fnScope.Reach.DeadBranchSpans) != 1 {
		t.Fatalf("expected one dead branch, got %d", len(fnScope.Reach.DeadBranchSpans))
	}
}

func TestIfTrueMarksElseDead(t *testing.T) {
	src := "def f():\n    if True:\n        return 1\n    else:\n        return 2\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if len(fnScope.Reach.DeadBranchSpans) != 1 {
		t.Fatalf("expected the else branch to be reported dead, got %d branches", len(fnScope.Reach.DeadBranchSpans))
	}
}

func TestStubFunctionDetected(t *testing.T) {
	src := "def f():\n    ...\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if !fnScope.IsStub {
		t.Error("expected body `...` to be detected as a stub")
	}
}

func TestPropertySetterDecoratorDetected(t *testing.T) {
	src := "class C:\n    @property\n    def x(self):\n        return self._x\n\n    @x.setter\n    def x(self, value):\n        self._x = value\n"
	mod := buildModule(t, src)
	fns := mod.AllFunctionScopes()
	if len(fns) != 2 {
		t.Fatalf("expected 2 function scopes, got %d", len(fns))
	}
	if fns[0].IsPropertyKind != "getter" {
		t.Errorf("first x() IsPropertyKind = %q, want getter", fns[0].IsPropertyKind)
	}
	if fns[1].IsPropertyKind != "setter" {
		t.Errorf("second x() IsPropertyKind = %q, want setter", fns[1].IsPropertyKind)
	}
}

func TestLocalsCallSuppressesUsage(t *testing.T) {
	src := "def f():\n    unused = 1\n    return locals()\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	if !fnScope.UsesLocalsOrVars {
		t.Error("expected locals() call to set UsesLocalsOrVars")
	}
}

func TestStarImportRecorded(t *testing.T) {
	mod := buildModule(t, "from os import *\n")
	if len(mod.Imports) != 1 || mod.Imports[0].Kind != BindImportStar {
		t.Fatalf("expected one BindImportStar import, got %+v", mod.Imports)
	}
}

func TestTypeCheckingBlockMarked(t *testing.T) {
	src := "from typing import TYPE_CHECKING\n\nif TYPE_CHECKING:\n    import expensive_module\n"
	mod := buildModule(t, src)
	var found bool
	for _, imp := range mod.Imports {
		if imp.LocalName == "expensive_module" {
			found = true
			if !imp.InTypeCheckingBlock {
				t.Error("expected expensive_module import to be marked InTypeCheckingBlock")
			}
		}
	}
	if !found {
		t.Fatal("expected to find the expensive_module import")
	}
}

func TestMatchCaptureBinding(t *testing.T) {
	src := "def f(point):\n    match point:\n        case (x, y):\n            return x + y\n        case _:\n            return 0\n"
	mod := buildModule(t, src)
	fnScope := mod.AllFunctionScopes()[0]
	xBind, ok := fnScope.Bindings["x"]
	if !ok || !xBind.HasReads() {
		t.Error("expected match case capture x to be bound and read")
	}
}
