// Package pyast is the parser front-end (spec §4.1). It wraps Tree-sitter's
// Python grammar behind a small, explicit-lifecycle API: parse error or a
// Tree whose every node carries a source-range span.
//
// Tree-sitter requires CGO_ENABLED=1. Each Parser wraps one
// *tree_sitter.Parser and serializes its Parse calls with a mutex because
// *tree_sitter.Parser is not safe for concurrent use; there is no parser
// pool. Trees returned from parsing are safe to read concurrently once
// parsing is done.
package pyast

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Parser is a mutex-guarded Tree-sitter parser for Python source.
type Parser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewParser creates a Parser configured for the Python grammar.
func NewParser() (*Parser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Close releases the underlying Tree-sitter parser.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Tree is a parsed Python source file: the Tree-sitter syntax tree plus the
// source bytes every span is measured against.
type Tree struct {
	Path    string
	Content []byte
	raw     *tree_sitter.Tree
}

// Root returns the tree's root "module" node.
func (t *Tree) Root() *tree_sitter.Node {
	return t.raw.RootNode()
}

// Close releases the underlying Tree-sitter tree. Safe to call on nil.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}

// Parse parses Python source content for path. Tree-sitter's error recovery
// means this never fails outright on malformed input; callers must check
// the returned Tree's HasSyntaxError() and, if true, skip the module after
// emitting a single ParseError diagnostic rather than trust its structure.
func (p *Parser) Parse(path string, content []byte) (*Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw := p.parser.Parse(content, nil)
	if raw == nil {
		return nil, fmt.Errorf("tree-sitter returned a nil tree for %s", path)
	}

	return &Tree{Path: path, Content: content, raw: raw}, nil
}

// HasSyntaxError reports whether the root node (or any descendant) is an
// ERROR node or a MISSING token, per Tree-sitter's error-recovery markers.
func (t *Tree) HasSyntaxError() bool {
	return t.raw.RootNode().HasError()
}

// CloseAll closes every tree in trees. Safe to call with nil entries.
func CloseAll(trees []*Tree) {
	for _, t := range trees {
		t.Close()
	}
}
