package scope

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// bindStatement dispatches one statement node to its binding logic.
// topLevel is true only for statements sitting directly in the owning
// scope's own block, used by RP007's import-clobber tracking.
func (b *builder) bindStatement(scope *Scope, node *tree_sitter.Node, topLevel bool) {
	switch node.Kind() {
	case "import_statement":
		b.bindImportStatement(scope, node, topLevel)

	case "import_from_statement":
		b.bindImportFromStatement(scope, node, topLevel)

	case "expression_statement":
		b.bindExpressionStatement(scope, node, topLevel)

	case "assert_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.visitExpr(scope, node.NamedChild(i))
		}

	case "return_statement", "delete_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.visitExpr(scope, node.NamedChild(i))
		}

	case "raise_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.visitExpr(scope, node.NamedChild(i))
		}

	case "pass_statement", "break_statement", "continue_statement":
		// no bindings, no reads

	case "if_statement":
		b.bindIfStatement(scope, node)

	case "for_statement":
		b.bindForStatement(scope, node)

	case "while_statement":
		b.visitExpr(scope, node.ChildByFieldName("condition"))
		b.walkBlock(scope, node.ChildByFieldName("body"), false)
		alt := node.ChildByFieldName("alternative")
		if alt != nil {
			b.walkBlock(scope, alt.ChildByFieldName("body"), false)
		}

	case "try_statement":
		b.bindTryStatement(scope, node)

	case "with_statement":
		b.bindWithStatement(scope, node)

	case "global_statement":
		b.bindGlobalNonlocalDecl(scope, node, BindGlobal)

	case "nonlocal_statement":
		b.bindGlobalNonlocalDecl(scope, node, BindNonlocal)

	case "function_definition":
		b.bindFunctionDef(scope, node, nil)

	case "class_definition":
		b.bindClassDef(scope, node, nil)

	case "decorated_definition":
		b.bindDecoratedDefinition(scope, node)

	case "match_statement":
		b.bindMatchStatement(scope, node)

	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			b.visitExpr(scope, node.NamedChild(i))
		}
	}
}

func (b *builder) bindGlobalNonlocalDecl(scope *Scope, node *tree_sitter.Node, kind BindingKind) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		n := node.NamedChild(i)
		name := pyast.Text(n, b.content)
		if _, ok := scope.Bindings[name]; !ok {
			scope.binding(name, kind).Defs = append(scope.binding(name, kind).Defs, DefSite{Span: pyast.Span(node)})
		}
	}
}

func (b *builder) bindExpressionStatement(scope *Scope, node *tree_sitter.Node, topLevel bool) {
	inner := node.NamedChild(0)
	if inner == nil {
		return
	}
	switch inner.Kind() {
	case "assignment":
		b.bindAssignment(scope, inner, topLevel)
	case "augmented_assignment":
		b.bindAugmentedAssignment(scope, inner)
	default:
		b.visitExpr(scope, inner)
	}
}

func (b *builder) bindAssignment(scope *Scope, node *tree_sitter.Node, topLevel bool) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	typ := node.ChildByFieldName("type")

	if right == nil {
		if typ != nil {
			b.visitExpr(scope, typ)
		}
		b.bindTarget(scope, left, BindAnnOnly, false)
		return
	}

	b.visitExpr(scope, right)
	if typ != nil {
		b.visitExpr(scope, typ)
	}
	b.bindTarget(scope, left, BindLocalAssign, true)

	if topLevel && left.Kind() == "identifier" {
		name := pyast.Text(left, b.content)
		scope.TopLevelEvents = append(scope.TopLevelEvents, TopLevelEvent{
			EventKind:       EventAssign,
			Name:            name,
			Span:            pyast.Span(node),
			SelfReferencing: exprMentionsName(right, b.content, name),
		})
	}
}

func (b *builder) bindAugmentedAssignment(scope *Scope, node *tree_sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	b.visitExpr(scope, right)

	switch left.Kind() {
	case "identifier":
		name := pyast.Text(left, b.content)
		bind := b.define(scope, name, BindAugAssign, pyast.Span(left), true)
		bind.Uses = append(bind.Uses, UseSite{Span: pyast.Span(left), Role: RoleReadWrite})
	default:
		b.visitExpr(scope, left)
	}
}

// exprMentionsName reports whether any identifier leaf in node's subtree
// has the given text (RP007's self-referencing-assignment exemption, e.g.
// `re = re.compile(...)`).
func exprMentionsName(node *tree_sitter.Node, content []byte, name string) bool {
	found := false
	pyast.Walk(node, func(n *tree_sitter.Node) {
		if !found && n.Kind() == "identifier" && pyast.Text(n, content) == name {
			found = true
		}
	})
	return found
}

func (b *builder) bindIfStatement(scope *Scope, node *tree_sitter.Node) {
	cond := node.ChildByFieldName("condition")
	b.visitExpr(scope, cond)

	wasTypeChecking := b.inTypeCheckingBlock
	if isTypeCheckingGuard(cond, b.content) {
		b.inTypeCheckingBlock = true
	}
	b.walkBlock(scope, node.ChildByFieldName("consequence"), false)
	b.inTypeCheckingBlock = wasTypeChecking

	alt := node.ChildByFieldName("alternative")
	for alt != nil {
		switch alt.Kind() {
		case "elif_clause":
			b.visitExpr(scope, alt.ChildByFieldName("condition"))
			b.walkBlock(scope, alt.ChildByFieldName("consequence"), false)
			alt = alt.ChildByFieldName("alternative")
		case "else_clause":
			b.walkBlock(scope, alt.ChildByFieldName("body"), false)
			alt = nil
		default:
			alt = nil
		}
	}
}

func (b *builder) bindForStatement(scope *Scope, node *tree_sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	b.visitExpr(scope, right)
	b.bindTarget(scope, left, BindForTarget, true)
	b.walkBlock(scope, node.ChildByFieldName("body"), false)
	alt := node.ChildByFieldName("alternative")
	if alt != nil {
		b.walkBlock(scope, alt.ChildByFieldName("body"), false)
	}
}

func (b *builder) bindTryStatement(scope *Scope, node *tree_sitter.Node) {
	body := node.ChildByFieldName("body")
	b.walkBlock(scope, body, false)

	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		switch c.Kind() {
		case "except_clause", "except_group_clause":
			b.bindExceptClause(scope, c)
		case "else_clause":
			b.walkBlock(scope, c.ChildByFieldName("body"), false)
		case "finally_clause":
			b.walkBlock(scope, c.ChildByFieldName("body"), false)
		}
	}
}

func (b *builder) bindExceptClause(scope *Scope, node *tree_sitter.Node) {
	var typeExpr, alias *tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "as" && i+1 < node.ChildCount() {
			alias = node.Child(i + 1)
			continue
		}
		if c.IsNamed() && c.Kind() != "block" && typeExpr == nil && c != alias {
			typeExpr = c
		}
	}
	if typeExpr != nil {
		b.visitExpr(scope, typeExpr)
	}
	if alias != nil && alias.Kind() == "identifier" {
		b.define(scope, pyast.Text(alias, b.content), BindExceptAlias, pyast.Span(alias), true)
	}
	block := node.ChildByFieldName("body")
	if block == nil {
		block = firstChildOfKind(node, "block")
	}
	b.walkBlock(scope, block, false)
}

func (b *builder) bindWithStatement(scope *Scope, node *tree_sitter.Node) {
	clause := firstChildOfKind(node, "with_clause")
	if clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			item := clause.NamedChild(i)
			if item.Kind() != "with_item" {
				continue
			}
			b.bindWithItem(scope, item)
		}
	}
	b.walkBlock(scope, node.ChildByFieldName("body"), false)
}

func (b *builder) bindWithItem(scope *Scope, item *tree_sitter.Node) {
	value := item.ChildByFieldName("value")
	var target *tree_sitter.Node
	for i := uint(0); i < item.ChildCount(); i++ {
		c := item.Child(i)
		if c != nil && c.Kind() == "as" && i+1 < item.ChildCount() {
			target = item.Child(i + 1)
		}
	}
	if value != nil {
		b.visitExpr(scope, value)
	}
	if target != nil {
		b.bindTarget(scope, target, BindWithTarget, true)
	}
}

// bindDecoratedDefinition extracts decorator dotted names (in the enclosing
// scope, where they're evaluated) then delegates to the wrapped def.
func (b *builder) bindDecoratedDefinition(scope *Scope, node *tree_sitter.Node) {
	var decorators []string
	def := node.ChildByFieldName("definition")
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c.Kind() != "decorator" {
			continue
		}
		expr := c.NamedChild(0)
		b.visitExpr(scope, expr)
		decorators = append(decorators, decoratorName(expr, b.content))
	}
	switch def.Kind() {
	case "function_definition":
		b.bindFunctionDef(scope, def, decorators)
	case "class_definition":
		b.bindClassDef(scope, def, decorators)
	}
}

func decoratorName(expr *tree_sitter.Node, content []byte) string {
	if expr == nil {
		return ""
	}
	if expr.Kind() == "call" {
		expr = expr.ChildByFieldName("function")
	}
	return pyast.Text(expr, content)
}

func (b *builder) bindFunctionDef(scope *Scope, node *tree_sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	name := pyast.Text(nameNode, b.content)
	b.define(scope, name, BindFunctionDef, pyast.Span(nameNode), true)

	fn := newScope(KindFunction, scope, pyast.Span(node))
	fn.Name = name
	fn.Decorators = decorators
	fn.IsAsync = isAsyncDef(node)

	for _, d := range decorators {
		switch {
		case d == "property":
			fn.IsPropertyKind = "getter"
		case strings.HasSuffix(d, ".setter"):
			fn.IsPropertyKind = "setter"
		case strings.HasSuffix(d, ".deleter"):
			fn.IsPropertyKind = "deleter"
		}
	}

	retType := node.ChildByFieldName("return_type")
	if retType != nil {
		b.visitExpr(scope, retType)
	}

	params := node.ChildByFieldName("parameters")
	if params != nil {
		b.bindParameters(fn, params)
	}

	body := node.ChildByFieldName("body")
	fn.IsStub = isStubBody(body, b.content)

	globals, nonlocals := collectGlobalsNonlocals(body, b.content)
	fn.Globals = globals
	fn.Nonlocals = nonlocals

	b.walkBlock(fn, body, true)
	fn.Reach = AnalyzeReachability(body, b.content)
}

func (b *builder) bindClassDef(scope *Scope, node *tree_sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	name := pyast.Text(nameNode, b.content)
	b.define(scope, name, BindClassDef, pyast.Span(nameNode), true)

	supers := node.ChildByFieldName("superclasses")
	if supers != nil {
		b.visitExpr(scope, supers)
	}

	cls := newScope(KindClass, scope, pyast.Span(node))
	cls.Name = name
	cls.Decorators = decorators

	body := node.ChildByFieldName("body")
	b.walkBlock(cls, body, true)
}

func isAsyncDef(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == "async" {
			return true
		}
	}
	return false
}

// isStubBody reports whether a function body is exactly `...`, `pass`, or a
// bare `raise NotImplementedError[(...)]`, ignoring a single leading
// docstring (spec §9's RP008 stub exemption).
func isStubBody(block *tree_sitter.Node, content []byte) bool {
	if block == nil {
		return false
	}
	var stmts []*tree_sitter.Node
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmts = append(stmts, block.NamedChild(i))
	}
	if len(stmts) > 0 && isDocstring(stmts[0]) {
		stmts = stmts[1:]
	}
	if len(stmts) != 1 {
		return false
	}
	s := stmts[0]
	switch s.Kind() {
	case "pass_statement":
		return true
	case "expression_statement":
		inner := s.NamedChild(0)
		return inner != nil && inner.Kind() == "ellipsis"
	case "raise_statement":
		if s.NamedChildCount() == 0 {
			return false
		}
		exc := s.NamedChild(0)
		if exc.Kind() == "call" {
			exc = exc.ChildByFieldName("function")
		}
		return exc != nil && pyast.Text(exc, content) == "NotImplementedError"
	}
	return false
}

// isTypeCheckingGuard recognizes `if TYPE_CHECKING:` and `if typing.TYPE_CHECKING:`.
func isTypeCheckingGuard(cond *tree_sitter.Node, content []byte) bool {
	if cond == nil {
		return false
	}
	text := pyast.Text(cond, content)
	return text == "TYPE_CHECKING" || strings.HasSuffix(text, ".TYPE_CHECKING")
}

func isDocstring(node *tree_sitter.Node) bool {
	if node.Kind() != "expression_statement" {
		return false
	}
	inner := node.NamedChild(0)
	return inner != nil && inner.Kind() == "string"
}
