package scope

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// bindMatchStatement binds match/case: the subject is a read, each case's
// pattern contributes capture bindings (as ordinary local assignments,
// since match captures aren't a distinct kind in this model), and guard
// expressions and case bodies are walked normally.
func (b *builder) bindMatchStatement(scope *Scope, node *tree_sitter.Node) {
	subject := node.ChildByFieldName("subject")
	b.visitExpr(scope, subject)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		c := body.NamedChild(i)
		if c.Kind() != "case_clause" {
			continue
		}
		b.bindCaseClause(scope, c)
	}
}

func (b *builder) bindCaseClause(scope *Scope, node *tree_sitter.Node) {
	consequence := node.ChildByFieldName("consequence")
	guard := node.ChildByFieldName("guard")

	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if (consequence != nil && c.StartByte() == consequence.StartByte()) ||
			(guard != nil && c.StartByte() == guard.StartByte()) {
			continue
		}
		b.bindCasePattern(scope, c)
	}
	if guard != nil {
		b.visitExpr(scope, guard)
	}
	if consequence != nil {
		b.walkBlock(scope, consequence, false)
	}
}

// bindCasePattern walks a case pattern, binding bare capture names while
// treating class-pattern heads, attribute paths, and literal values as
// reads rather than bindings. A keyword pattern binds only its value
// pattern; the keyword itself names an attribute and is not a binding.
func (b *builder) bindCasePattern(scope *Scope, node *tree_sitter.Node) {
	switch node.Kind() {
	case "identifier":
		name := pyast.Text(node, b.content)
		if name == "_" {
			return
		}
		b.define(scope, name, BindLocalAssign, pyast.Span(node), true)

	case "dotted_name":
		if node.NamedChildCount() == 1 {
			b.bindCasePattern(scope, node.NamedChild(0))
		} else {
			b.visitExpr(scope, node)
		}

	case "attribute":
		b.visitExpr(scope, node)

	case "keyword_pattern":
		if n := node.NamedChildCount(); n > 1 {
			b.bindCasePattern(scope, node.NamedChild(n-1))
		}

	case "class_pattern":
		class := node.ChildByFieldName("class")
		if class == nil && node.NamedChildCount() > 0 && node.NamedChild(0).Kind() == "dotted_name" {
			class = node.NamedChild(0)
		}
		if class != nil {
			b.visitExpr(scope, class)
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if class != nil && c.StartByte() == class.StartByte() {
				continue
			}
			b.bindCasePattern(scope, c)
		}

	case "as_pattern":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.bindCasePattern(scope, node.NamedChild(i))
		}

	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.bindCasePattern(scope, node.NamedChild(i))
		}
	}
}
