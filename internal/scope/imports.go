package scope

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/taradepan/reaper/internal/pyast"
)

func (b *builder) bindImportStatement(scope *Scope, node *tree_sitter.Node, topLevel bool) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		switch c.Kind() {
		case "dotted_name":
			full := pyast.Text(c, b.content)
			local := strings.SplitN(full, ".", 2)[0]
			b.recordImportRemote(scope, local, "", BindImport, 0, full, topLevel, node)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			full := pyast.Text(nameNode, b.content)
			local := pyast.Text(aliasNode, b.content)
			b.recordImportRemote(scope, local, "", BindImport, 0, full, topLevel, node)
		}
	}
}

func (b *builder) bindImportFromStatement(scope *Scope, node *tree_sitter.Node, topLevel bool) {
	modNode := node.ChildByFieldName("module_name")
	dots := 0
	modPath := ""
	if modNode != nil {
		if modNode.Kind() == "relative_import" {
			text := pyast.Text(modNode, b.content)
			for _, r := range text {
				if r == '.' {
					dots++
				} else {
					break
				}
			}
			modPath = strings.TrimLeft(text, ".")
		} else {
			modPath = pyast.Text(modNode, b.content)
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		switch c.Kind() {
		case "wildcard_import":
			scope.HasStarImport = true
			b.mod.Imports = append(b.mod.Imports, Import{
				LocalName: "*", Kind: BindImportStar, RelativeDots: dots, ModulePath: modPath,
				Span: pyast.Span(node),
			})
		case "dotted_name":
			if modNode != nil && c.StartByte() == modNode.StartByte() {
				continue
			}
			remote := pyast.Text(c, b.content)
			b.recordImportRemote(scope, remote, remote, BindImportFrom, dots, modPath, topLevel, node)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			remote := pyast.Text(nameNode, b.content)
			local := pyast.Text(aliasNode, b.content)
			b.recordImportRemote(scope, local, remote, BindImportFrom, dots, modPath, topLevel, node)
		}
	}
}

func (b *builder) recordImportRemote(scope *Scope, local, remote string, kind BindingKind, dots int, modulePath string, topLevel bool, stmt *tree_sitter.Node) {
	span := pyast.Span(stmt)
	b.define(scope, local, kind, span, true)

	b.mod.Imports = append(b.mod.Imports, Import{
		LocalName:           local,
		Kind:                kind,
		RelativeDots:        dots,
		ModulePath:          modulePath,
		RemoteName:          remote,
		Span:                span,
		InTypeCheckingBlock: b.inTypeCheckingBlock,
	})

	if topLevel {
		scope.TopLevelEvents = append(scope.TopLevelEvents, TopLevelEvent{
			EventKind: EventImport,
			Name:      local,
			Span:      span,
		})
	}
}
