package pyast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Walk walks a Tree-sitter tree depth-first, calling fn for each node
// including node itself. Safe to call with a nil node.
func Walk(node *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// Text extracts the source text spanned by node.
func Text(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

// Span converts a node's Tree-sitter point range into a 1-based Span.
func Span(node *tree_sitter.Node) ReaperSpan {
	start := node.StartPosition()
	end := node.EndPosition()
	return ReaperSpan{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

// ReaperSpan is a 1-based, inclusive-start/exclusive-end source range,
// matching the wire contract in spec §6.
type ReaperSpan struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Contains reports whether s fully contains other (spec §8 invariant 1:
// every diagnostic span lies entirely inside its module's source bounds).
func (s ReaperSpan) Contains(other ReaperSpan) bool {
	if other.StartLine < s.StartLine || other.EndLine > s.EndLine {
		return false
	}
	if other.StartLine == s.StartLine && other.StartCol < s.StartCol {
		return false
	}
	if other.EndLine == s.EndLine && other.EndCol > s.EndCol {
		return false
	}
	return true
}

// Before reports whether a starts before b (line, then column).
func (s ReaperSpan) Before(o ReaperSpan) bool {
	if s.StartLine != o.StartLine {
		return s.StartLine < o.StartLine
	}
	return s.StartCol < o.StartCol
}

// FieldOrNamed returns the child of node with the given field name, falling
// back to scanning named children for the given node kind when the field
// isn't populated (some grammar productions expose the same semantic slot
// under different fields depending on the surrounding construct).
func FieldOrNamed(node *tree_sitter.Node, field string, fallbackKind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	if f := node.ChildByFieldName(field); f != nil {
		return f
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c != nil && c.Kind() == fallbackKind {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child of node whose Kind() equals kind.
func ChildrenOfKind(node *tree_sitter.Node, kind string) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	var out []*tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// CountLines returns 0 for empty content and otherwise one more than the
// number of newline bytes (so "a\nb\n" counts as 3).
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	count := 1
	for _, b := range content {
		if b == '\n' {
			count++
		}
	}
	return count
}
