// Package registry implements spec §4.4: a cross-file resolver that maps
// import paths to the modules they resolve to within the analyzed set, and
// records which names each module exports to the others.
package registry

import (
	"strings"

	"github.com/taradepan/reaper/internal/scope"
)

// Registry is built once per analysis run, after every module's scope tree
// exists, and is read-only thereafter.
type Registry struct {
	byQualName map[string]*scope.Module
	qualName   map[*scope.Module]string

	// externalUses[module][name] is the set of names other modules in the
	// set reference from module, via `from m import n` or `import m; m.n`.
	externalUses map[*scope.Module]map[string]bool
}

// ModuleQualName derives a dotted import-style qualified name from a
// slash-separated, `.py`-suffixed relative path. `pkg/__init__.py` names
// the package `pkg`; `pkg/sub/mod.py` names `pkg.sub.mod`.
func ModuleQualName(relPath string) string {
	p := strings.TrimSuffix(relPath, ".py")
	p = strings.TrimSuffix(p, "/__init__")
	p = strings.TrimPrefix(p, "./")
	return strings.ReplaceAll(p, "/", ".")
}

// Build indexes modules by qualified name and computes external_uses.
func Build(modules []*scope.Module) *Registry {
	r := &Registry{
		byQualName:   make(map[string]*scope.Module),
		qualName:     make(map[*scope.Module]string),
		externalUses: make(map[*scope.Module]map[string]bool),
	}
	for _, m := range modules {
		q := ModuleQualName(m.RelPath)
		r.byQualName[q] = m
		r.qualName[m] = q
		r.externalUses[m] = make(map[string]bool)
	}
	for _, m := range modules {
		r.indexImports(m)
		r.indexAttributeUses(m)
	}
	return r
}

func (r *Registry) indexImports(m *scope.Module) {
	fromQual := r.qualName[m]
	for _, imp := range m.Imports {
		if imp.Kind != scope.BindImportFrom {
			continue
		}
		target, ok := r.resolveImportModule(fromQual, imp)
		if !ok {
			continue
		}
		r.externalUses[target][imp.RemoteName] = true
	}
}

func (r *Registry) indexAttributeUses(m *scope.Module) {
	importedModule := make(map[string]string) // local import name -> absolute dotted module path
	fromQual := r.qualName[m]
	for _, imp := range m.Imports {
		if imp.Kind != scope.BindImport {
			continue
		}
		target, ok := r.resolveImportModule(fromQual, imp)
		if ok {
			importedModule[imp.LocalName] = r.qualName[target]
		}
	}
	for _, au := range m.AttributeUses {
		qual, ok := importedModule[au.Base]
		if !ok {
			continue
		}
		target, ok := r.byQualName[qual]
		if !ok {
			continue
		}
		r.externalUses[target][au.Attr] = true
	}
}

// resolveImportModule implements spec §4.4's import_target index: it
// returns the Module an import resolves to when that target lies within
// the analyzed set, honoring relative-import dot counts.
func (r *Registry) resolveImportModule(fromQual string, imp scope.Import) (*scope.Module, bool) {
	var target string
	if imp.RelativeDots > 0 {
		parts := strings.Split(fromQual, ".")
		// one dot means "current package": drop the module's own leaf name.
		strip := imp.RelativeDots
		if len(parts) < strip {
			return nil, false
		}
		base := parts[:len(parts)-strip]
		if imp.ModulePath != "" {
			base = append(base, imp.ModulePath)
		}
		target = strings.Join(base, ".")
	} else {
		target = imp.ModulePath
	}
	if target == "" {
		return nil, false
	}
	m, ok := r.byQualName[target]
	if ok {
		return m, true
	}
	// `from pkg import module_name` where module_name is itself a submodule.
	if imp.RemoteName != "" {
		combined := target + "." + imp.RemoteName
		if m, ok := r.byQualName[combined]; ok {
			return m, true
		}
	}
	return nil, false
}

// IsUsedExternally reports whether name, defined in m, is referenced from
// any other analyzed module.
func (r *Registry) IsUsedExternally(m *scope.Module, name string) bool {
	return r.externalUses[m][name]
}

// HasSubclassReference reports whether name is recorded as an external use
// of any analyzed module other than m (used by RP004's subclass
// exemption). It does not inspect class base lists: it is a conservative,
// name-only check that counts any other module's same-named export being
// imported or accessed as an attribute.
func (r *Registry) HasSubclassReference(m *scope.Module, name string) bool {
	for other, uses := range r.externalUses {
		if other == m {
			continue
		}
		if uses[name] {
			return true
		}
	}
	return false
}
