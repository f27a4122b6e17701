package scope

import (
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

// terminatingKinds are statements that unconditionally transfer
// control out of the block they sit in.
var terminatingKinds = map[string]bool{
	"return_statement":   true,
	"raise_statement":    true,
	"break_statement":    true,
	"continue_statement": true,
}

// AnalyzeReachability implements spec §4.3: it finds statement suffixes
// made unreachable by a preceding unconditional control transfer, and
// if/elif branches whose condition is a statically-known-dead literal. It
// does not descend into nested function/class/lambda/comprehension bodies,
// which get their own Reachability when built.
func AnalyzeReachability(body *tree_sitter.Node, content []byte) Reachability {
	if body == nil {
		return Reachability{}
	}
	r := &reachAnalyzer{content: content}
	r.analyzeBlock(body)
	return Reachability{
		DeadStatementSpans: r.deadSpans,
		DeadBranchSpans:    r.branches,
	}
}

type reachAnalyzer struct {
	content    []byte
	deadSpans  []pyast.ReaperSpan
	branches   []DeadBranch
}

// analyzeBlock walks a block's direct statements in order and returns
// whether the block as a whole is guaranteed to exit (so the caller's own
// suffix becomes dead too).
func (r *reachAnalyzer) analyzeBlock(block *tree_sitter.Node) bool {
	alwaysExits := false
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		if alwaysExits {
			r.deadSpans = append(r.deadSpans, pyast.Span(stmt))
			return true
		}
		switch stmt.Kind() {
		case "return_statement", "raise_statement", "break_statement", "continue_statement":
			alwaysExits = true

		case "if_statement":
			if r.analyzeIfChain(stmt) {
				alwaysExits = true
			}

		case "try_statement":
			if r.analyzeTry(stmt) {
				alwaysExits = true
			}

		case "with_statement":
			r.analyzeBlock(stmt.ChildByFieldName("body"))

		case "for_statement", "while_statement":
			r.analyzeBlock(stmt.ChildByFieldName("body"))
			if alt := stmt.ChildByFieldName("alternative"); alt != nil {
				r.analyzeBlock(alt.ChildByFieldName("body"))
			}

		case "match_statement":
			if b := stmt.ChildByFieldName("body"); b != nil {
				for j := uint(0); j < b.NamedChildCount(); j++ {
					c := b.NamedChild(j)
					if c.Kind() == "case_clause" {
						if cons := c.ChildByFieldName("consequence"); cons != nil {
							r.analyzeBlock(cons)
						}
					}
				}
			}
		}
	}
	return alwaysExits
}

// analyzeIfChain walks an if/elif/else chain, recording statically-dead
// branches and returning whether every live branch is exhaustive and
// terminating (so the statement after the chain is unreachable).
func (r *reachAnalyzer) analyzeIfChain(node *tree_sitter.Node) bool {
	cond := node.ChildByFieldName("condition")
	cons := node.ChildByFieldName("consequence")
	alt := node.ChildByFieldName("alternative")

	truth, isLiteral := literalTruth(cond, r.content)

	if isLiteral && !truth {
		r.branches = append(r.branches, DeadBranch{ConditionSpan: pyast.Span(cond), ReportSpan: pyast.Span(cons)})
		if alt != nil {
			return r.continueAltChain(alt)
		}
		return false
	}

	consExits := r.analyzeBlock(cons)

	if isLiteral && truth {
		if alt != nil {
			r.markChainDead(alt)
		}
		return consExits
	}

	if alt == nil {
		return false
	}
	altExits := r.continueAltChain(alt)
	return consExits && altExits
}

// continueAltChain handles an elif_clause (recurse as another if-like
// chain) or an else_clause (plain block).
func (r *reachAnalyzer) continueAltChain(alt *tree_sitter.Node) bool {
	switch alt.Kind() {
	case "elif_clause":
		cond := alt.ChildByFieldName("condition")
		cons := alt.ChildByFieldName("consequence")
		nested := alt.ChildByFieldName("alternative")

		truth, isLiteral := literalTruth(cond, r.content)
		if isLiteral && !truth {
			r.branches = append(r.branches, DeadBranch{ConditionSpan: pyast.Span(cond), ReportSpan: pyast.Span(cons)})
			if nested != nil {
				return r.continueAltChain(nested)
			}
			return false
		}
		consExits := r.analyzeBlock(cons)
		if isLiteral && truth {
			if nested != nil {
				r.markChainDead(nested)
			}
			return consExits
		}
		if nested == nil {
			return false
		}
		return consExits && r.continueAltChain(nested)

	case "else_clause":
		body := alt.ChildByFieldName("body")
		return r.analyzeBlock(body)
	}
	return false
}

// markChainDead reports every remaining elif/else in a chain as dead,
// triggered by a preceding always-true literal condition (e.g. `if True:`).
func (r *reachAnalyzer) markChainDead(alt *tree_sitter.Node) {
	for alt != nil {
		switch alt.Kind() {
		case "elif_clause":
			cond := alt.ChildByFieldName("condition")
			cons := alt.ChildByFieldName("consequence")
			r.branches = append(r.branches, DeadBranch{ConditionSpan: pyast.Span(cond), ReportSpan: pyast.Span(cons)})
			alt = alt.ChildByFieldName("alternative")
		case "else_clause":
			body := alt.ChildByFieldName("body")
			r.branches = append(r.branches, DeadBranch{ConditionSpan: pyast.Span(alt), ReportSpan: pyast.Span(body)})
			alt = nil
		default:
			alt = nil
		}
	}
}

// analyzeTry treats a try statement as exiting when the try body and every
// except handler (at least one) unconditionally exit, or when its finally
// clause unconditionally exits. The else clause is analyzed for its own
// internal dead suffixes but doesn't affect the verdict, matching the
// conservative stance spec §4.3 takes on dynamic control flow.
func (r *reachAnalyzer) analyzeTry(node *tree_sitter.Node) bool {
	bodyExits := r.analyzeBlock(node.ChildByFieldName("body"))
	allHandlersExit := true
	sawHandler := false
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		switch c.Kind() {
		case "except_clause", "except_group_clause":
			sawHandler = true
			block := c.ChildByFieldName("body")
			if block == nil {
				block = firstChildOfKind(c, "block")
			}
			if !r.analyzeBlock(block) {
				allHandlersExit = false
			}
		case "else_clause":
			r.analyzeBlock(c.ChildByFieldName("body"))
		case "finally_clause":
			if r.analyzeBlock(c.ChildByFieldName("body")) {
				return true
			}
		}
	}
	return sawHandler && bodyExits && allHandlersExit
}

// literalTruth evaluates spec §9's restricted statically-dead/always-taken
// literal set. Anything else (identifiers, calls, comparisons, attribute
// access) is treated as runtime-dynamic and returns isLiteral=false.
func literalTruth(node *tree_sitter.Node, content []byte) (truth bool, isLiteral bool) {
	if node == nil {
		return false, false
	}
	switch node.Kind() {
	case "true":
		return true, true
	case "false":
		return false, true
	case "none":
		return false, true
	case "integer":
		text := strings.ReplaceAll(pyast.Text(node, content), "_", "")
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return false, false
		}
		return n != 0, true
	case "float":
		text := strings.ReplaceAll(pyast.Text(node, content), "_", "")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return false, false
		}
		return f != 0, true
	case "string":
		return literalStringNonEmpty(node, content), true
	case "list", "tuple", "set", "dictionary":
		return node.NamedChildCount() > 0, true
	case "parenthesized_expression":
		return literalTruth(node.NamedChild(0), content)
	default:
		return false, false
	}
}

func literalStringNonEmpty(node *tree_sitter.Node, content []byte) bool {
	text := strings.TrimLeft(pyast.Text(node, content), "rbfuRBFU")
	return strings.Trim(text, "\"'") != ""
}
