package scope

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// visitExpr walks an expression subtree, recording a deferred read for
// every name reference it finds and recursing into any lambda or
// comprehension it contains as a fresh child scope.
func (b *builder) visitExpr(scope *Scope, node *tree_sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		b.recordRead(scope, node, RoleRead)

	case "attribute":
		object := node.ChildByFieldName("object")
		b.visitExpr(scope, object)
		attr := node.ChildByFieldName("attribute")
		if object != nil && object.Kind() == "identifier" && attr != nil {
			b.mod.AttributeUses = append(b.mod.AttributeUses, AttributeUse{
				Base: pyast.Text(object, b.content),
				Attr: pyast.Text(attr, b.content),
				Span: pyast.Span(node),
			})
		}

	case "subscript":
		value := node.ChildByFieldName("value")
		b.visitExpr(scope, value)
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if value == nil || c.StartByte() != value.StartByte() || c.EndByte() != value.EndByte() {
				b.visitExpr(scope, c)
			}
		}

	case "call":
		fn := node.ChildByFieldName("function")
		b.visitExpr(scope, fn)
		b.checkDynamicNameAccess(scope, fn)
		args := node.ChildByFieldName("arguments")
		if args != nil {
			for i := uint(0); i < args.NamedChildCount(); i++ {
				arg := args.NamedChild(i)
				if arg.Kind() == "keyword_argument" {
					b.visitExpr(scope, arg.ChildByFieldName("value"))
				} else {
					b.visitExpr(scope, arg)
				}
			}
		}

	case "keyword_argument":
		b.visitExpr(scope, node.ChildByFieldName("value"))

	case "named_expression":
		value := node.ChildByFieldName("value")
		b.visitExpr(scope, value)
		target := nearestFuncOrModule(scope)
		name := pyast.Text(node.ChildByFieldName("name"), b.content)
		bind := b.defineIn(target, name, BindWalrusTarget, pyast.Span(node), true)
		_ = bind

	case "lambda":
		b.bindLambda(scope, node)

	case "list_comprehension", "set_comprehension", "generator_expression":
		b.bindComprehension(scope, node, []comprehensionPart{
			{kind: "body", field: "body"},
		})

	case "dictionary_comprehension":
		b.bindComprehension(scope, node, []comprehensionPart{
			{kind: "body", field: "key"},
			{kind: "body", field: "value"},
		})

	case "string":
		b.visitFString(scope, node)

	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.visitExpr(scope, node.NamedChild(i))
		}
	}
}

// checkDynamicNameAccess flags locals()/vars()/globals() calls: these make
// a scope's bindings reachable by string, so unused-name rules should not
// fire inside it (spec §9 dynamic-access exemptions).
func (b *builder) checkDynamicNameAccess(scope *Scope, fn *tree_sitter.Node) {
	if fn == nil || fn.Kind() != "identifier" {
		return
	}
	name := pyast.Text(fn, b.content)
	switch name {
	case "locals", "vars":
		nearestFuncOrModule(scope).UsesLocalsOrVars = true
	case "globals":
		b.mod.ModuleScope.UsesLocalsOrVars = true
	}
}

// visitFString walks a string node's f-string interpolations (spec: names
// referenced inside f-string expressions are ordinary reads).
func (b *builder) visitFString(scope *Scope, node *tree_sitter.Node) {
	pyast.Walk(node, func(n *tree_sitter.Node) {
		if n.Kind() != "interpolation" {
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c := n.NamedChild(i)
			if c.Kind() == "format_spec" || c.Kind() == "type_conversion" {
				continue
			}
			b.visitExpr(scope, c)
			break
		}
	})
}

// recordRead defers a name read for resolution once the whole module's
// scope tree and bindings exist.
func (b *builder) recordRead(scope *Scope, node *tree_sitter.Node, role UseRole) {
	b.reads = append(b.reads, readEvent{
		scope: scope,
		name:  pyast.Text(node, b.content),
		span:  pyast.Span(node),
		role:  role,
	})
}

// defineIn creates or updates a binding for name directly in target scope,
// bypassing global/nonlocal redirection (the caller has already chosen the
// correct target scope).
func (b *builder) defineIn(target *Scope, name string, kind BindingKind, span pyast.ReaperSpan, hasValue bool) *Binding {
	bind := target.binding(name, kind)
	bind.Defs = append(bind.Defs, DefSite{Span: span, HasValue: hasValue})
	return bind
}

// nearestFuncOrModule walks up from scope to the nearest Function or Module
// scope, skipping Comprehension and Class scopes. Used for walrus targets.
func nearestFuncOrModule(scope *Scope) *Scope {
	s := scope
	for s != nil {
		if s.Kind == KindFunction || s.Kind == KindModule {
			return s
		}
		s = s.Parent
	}
	return scope
}

type comprehensionPart struct {
	kind  string
	field string
}

// bindComprehension implements the comprehension scoping rule: the
// outermost for-clause's iterable is evaluated in the enclosing scope,
// everything else (targets, guards, nested iterables, the element
// expression) lives in the comprehension's own scope.
func (b *builder) bindComprehension(enclosing *Scope, node *tree_sitter.Node, parts []comprehensionPart) {
	forClauses := pyast.ChildrenOfKind(node, "for_in_clause")
	if len(forClauses) > 0 {
		firstIter := forClauses[0].ChildByFieldName("right")
		b.visitExpr(enclosing, firstIter)
	}

	comp := newScope(KindComprehension, enclosing, pyast.Span(node))

	for i, fc := range forClauses {
		left := fc.ChildByFieldName("left")
		b.bindTarget(comp, left, BindComprehensionTarget, true)
		if i > 0 {
			b.visitExpr(comp, fc.ChildByFieldName("right"))
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c.Kind() == "if_clause" {
			b.visitExpr(comp, c.NamedChild(0))
		}
	}
	for _, p := range parts {
		b.visitExpr(comp, node.ChildByFieldName(p.field))
	}
}

// bindLambda creates a Function-kind scope for a lambda expression,
// binding its parameters and visiting its body expression inside it.
func (b *builder) bindLambda(enclosing *Scope, node *tree_sitter.Node) {
	fn := newScope(KindFunction, enclosing, pyast.Span(node))
	fn.Name = "<lambda>"
	params := node.ChildByFieldName("parameters")
	if params != nil {
		b.bindParameters(fn, params)
	}
	body := node.ChildByFieldName("body")
	b.visitExpr(fn, body)
}
