package scope

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// bindTarget recursively binds an assignment-like target (plain name,
// tuple/list unpacking, starred unpack, or attribute/subscript target) in
// scope, honoring global/nonlocal redirection.
func (b *builder) bindTarget(scope *Scope, node *tree_sitter.Node, kind BindingKind, hasValue bool) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		b.define(scope, pyast.Text(node, b.content), kind, pyast.Span(node), hasValue)

	case "pattern_list", "tuple_pattern", "tuple", "list_pattern", "list":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.bindTarget(scope, node.NamedChild(i), kind, hasValue)
		}

	case "list_splat_pattern":
		inner := node.NamedChild(0)
		b.bindTarget(scope, inner, BindStarUnpackTarget, hasValue)

	case "attribute":
		b.visitExpr(scope, node.ChildByFieldName("object"))

	case "subscript":
		b.visitExpr(scope, node.ChildByFieldName("value"))

	case "as_pattern":
		b.bindTarget(scope, node.NamedChild(0), kind, hasValue)

	case "parenthesized_expression", "parenthesized_list_splat":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.bindTarget(scope, node.NamedChild(i), kind, hasValue)
		}

	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.bindTarget(scope, node.NamedChild(i), kind, hasValue)
		}
	}
}

// define creates or updates a binding for name in scope, redirecting to the
// module scope or an enclosing function scope when name was declared
// global/nonlocal in scope.
func (b *builder) define(scope *Scope, name string, kind BindingKind, span pyast.ReaperSpan, hasValue bool) *Binding {
	target := b.resolveDefinitionScope(scope, name)
	return b.defineIn(target, name, kind, span, hasValue)
}

// resolveDefinitionScope honors a scope's global/nonlocal declarations when
// choosing where an assignment actually lands.
func (b *builder) resolveDefinitionScope(scope *Scope, name string) *Scope {
	if scope.Globals[name] {
		return b.mod.ModuleScope
	}
	if scope.Nonlocals[name] {
		s := scope.Parent
		for s != nil {
			if s.Kind == KindFunction {
				if _, ok := s.Bindings[name]; ok {
					return s
				}
			}
			if s.Kind == KindModule {
				break
			}
			s = s.Parent
		}
		span := pyast.ReaperSpan{}
		if decl, ok := scope.Bindings[name]; ok {
			span = decl.FirstDef()
		}
		b.mod.UnresolvedNonlocals = append(b.mod.UnresolvedNonlocals, UnresolvedNonlocal{
			Name: name,
			Span: span,
		})
		return scope
	}
	return scope
}

// bindParameters binds a function/lambda parameter list: plain params,
// defaulted params, *args, **kwargs, positional-only and keyword-only
// markers. Default-value expressions are evaluated as reads in the
// enclosing scope, matching Python's actual evaluation time.
func (b *builder) bindParameters(fnScope *Scope, params *tree_sitter.Node) {
	enclosing := fnScope.Parent
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			b.bindOneParam(fnScope, p)

		case "typed_parameter":
			name := firstChildOfKind(p, "identifier")
			if name != nil {
				b.bindOneParam(fnScope, name)
			}
			typ := p.ChildByFieldName("type")
			if typ != nil {
				b.visitExpr(enclosing, typ)
			}

		case "default_parameter", "typed_default_parameter":
			name := p.ChildByFieldName("name")
			if name != nil && name.Kind() == "identifier" {
				b.bindOneParam(fnScope, name)
			}
			typ := p.ChildByFieldName("type")
			if typ != nil {
				b.visitExpr(enclosing, typ)
			}
			val := p.ChildByFieldName("value")
			if val != nil {
				b.visitExpr(enclosing, val)
			}

		case "list_splat_pattern", "dictionary_splat_pattern":
			inner := firstChildOfKind(p, "identifier")
			if inner != nil {
				b.bindOneParam(fnScope, inner)
				fnScope.VarArgsParams[pyast.Text(inner, b.content)] = true
			}

		case "positional_separator", "keyword_separator":
			// bare `/` and `*` markers: no name to bind.

		case "tuple_pattern":
			for j := uint(0); j < p.NamedChildCount(); j++ {
				c := p.NamedChild(j)
				if c.Kind() == "identifier" {
					b.bindOneParam(fnScope, c)
				}
			}
		}
	}
}

func (b *builder) bindOneParam(fnScope *Scope, node *tree_sitter.Node) {
	name := pyast.Text(node, b.content)
	bind := b.defineIn(fnScope, name, BindParameter, pyast.Span(node), true)
	fnScope.Params = append(fnScope.Params, bind)
	if len(fnScope.Params) == 1 && (name == "self" || name == "cls") {
		fnScope.FirstParamIsSelf = true
	}
}
