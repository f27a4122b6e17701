package scope

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// readEvent is a deferred name read, resolved against the finished scope
// tree in a second pass (see resolve.go) so that forward references within
// a scope (mutual recursion, order-independent module-level defs) resolve
// correctly.
type readEvent struct {
	scope *Scope
	name  string
	span  pyast.ReaperSpan
	role  UseRole
}

// builder accumulates module-wide state while walking a single module's
// parse tree. It is discarded once Build returns.
type builder struct {
	content             []byte
	mod                 *Module
	reads               []readEvent
	inTypeCheckingBlock bool
}

// Build runs spec §4.2's two passes over tree and returns the finished,
// immutable Module. tree may be closed by the caller as soon as Build
// returns; no Tree-sitter pointers are retained afterward.
func Build(path, relPath string, tree *pyast.Tree, content []byte) *Module {
	b := &builder{content: content}
	b.mod = &Module{Path: path, RelPath: relPath, Content: content}

	root := tree.Root()
	modSpan := pyast.Span(root)
	b.mod.ModuleScope = newScope(KindModule, nil, modSpan)

	globals, nonlocals := collectGlobalsNonlocals(root, content)
	b.mod.ModuleScope.Globals = globals
	b.mod.ModuleScope.Nonlocals = nonlocals // always empty at module scope; nonlocal at module level is a syntax error

	b.findFutureAnnotations(root)
	b.findDunderAll(root)

	b.walkBlock(b.mod.ModuleScope, root, true)
	b.mod.ModuleScope.Reach = AnalyzeReachability(root, content)

	resolveAll(b.mod, b.reads)
	return b.mod
}

// findFutureAnnotations detects `from __future__ import annotations`.
func (b *builder) findFutureAnnotations(root *tree_sitter.Node) {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		n := root.NamedChild(i)
		if n.Kind() != "import_from_statement" {
			continue
		}
		modNode := n.ChildByFieldName("module_name")
		if modNode != nil && pyast.Text(modNode, b.content) == "__future__" {
			if strings.Contains(pyast.Text(n, b.content), "annotations") {
				b.mod.HasFutureAnnotations = true
			}
		}
	}
}

// findDunderAll recognizes a module-top-level `__all__ = [...]` literal
// (spec §9: list/tuple/set of string literals, optionally `+`-concatenated).
func (b *builder) findDunderAll(root *tree_sitter.Node) {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		n := root.NamedChild(i)
		if n.Kind() != "expression_statement" {
			continue
		}
		assign := firstChildOfKind(n, "assignment")
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		right := assign.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "identifier" || pyast.Text(left, b.content) != "__all__" {
			continue
		}
		names, ok := literalStringList(right, b.content)
		if ok {
			b.mod.AllDeclared = true
			b.mod.AllNames = names
		}
	}
}

// literalStringList evaluates spec §9's restricted __all__ literal shape:
// a list/tuple/set of string literals, optionally `+`-concatenated.
func literalStringList(node *tree_sitter.Node, content []byte) ([]string, bool) {
	switch node.Kind() {
	case "list", "tuple", "set":
		var out []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if c.Kind() != "string" {
				return nil, false
			}
			out = append(out, stringLiteralValue(c, content))
		}
		return out, true
	case "binary_operator":
		op := node.ChildByFieldName("operator")
		if op == nil || pyast.Text(op, content) != "+" {
			return nil, false
		}
		left, okL := literalStringList(node.ChildByFieldName("left"), content)
		right, okR := literalStringList(node.ChildByFieldName("right"), content)
		if !okL || !okR {
			return nil, false
		}
		return append(left, right...), true
	default:
		return nil, false
	}
}

func stringLiteralValue(node *tree_sitter.Node, content []byte) string {
	s := pyast.Text(node, content)
	s = strings.Trim(s, "\"'")
	return s
}

func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// scopeStopKinds are node kinds that introduce their own scope; a
// same-scope walk (e.g. global/nonlocal pre-scan) must not descend past
// them.
var scopeStopKinds = map[string]bool{
	"function_definition":      true,
	"lambda":                   true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
	"class_definition":         true,
}

// collectGlobalsNonlocals pre-scans a scope body (not descending into
// nested scopes) for global/nonlocal declarations, so later statements in
// the same walk can redirect bindings correctly regardless of where in the
// body the declaration textually appears.
func collectGlobalsNonlocals(body *tree_sitter.Node, content []byte) (map[string]bool, map[string]bool) {
	globals := make(map[string]bool)
	nonlocals := make(map[string]bool)
	var walk func(*tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "global_statement":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				globals[pyast.Text(n.NamedChild(i), content)] = true
			}
			return
		case "nonlocal_statement":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				nonlocals[pyast.Text(n.NamedChild(i), content)] = true
			}
			return
		}
		if scopeStopKinds[n.Kind()] && n != body {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return globals, nonlocals
}

// walkBlock walks the direct statements of a block (module root or a
// function/class `block` node), dispatching each to bindStatement.
// topLevel marks statements that sit directly in the owning scope's own
// block (as opposed to nested inside if/for/try/with) -- RP007's clobber
// check only looks at these.
func (b *builder) walkBlock(scope *Scope, block *tree_sitter.Node, topLevel bool) {
	for i := uint(0); i < block.NamedChildCount(); i++ {
		b.bindStatement(scope, block.NamedChild(i), topLevel)
	}
}
