package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taradepan/reaper/internal/pyast"
	"github.com/taradepan/reaper/internal/registry"
	"github.com/taradepan/reaper/internal/scope"
)

// Run implements spec §4.5 end to end: per-module rule dispatch, then
// noqa-marker suppression, then the deterministic ordering contract
// (module input order, then span start ascending, then rule id ascending).
func Run(modules []*scope.Module, reg *registry.Registry, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, mod := range modules {
		var modDiags []Diagnostic

		if mod.ParseError != nil {
			modDiags = append(modDiags, Diagnostic{
				Rule:       "ParseError",
				ModulePath: mod.Path,
				Span:       *mod.ParseError,
				Message:    "failed to parse module",
			})
			out = append(out, modDiags...)
			continue
		}

		for _, un := range mod.UnresolvedNonlocals {
			modDiags = append(modDiags, Diagnostic{
				Rule:       "UnresolvedNonlocal",
				ModulePath: mod.Path,
				Span:       un.Span,
				Name:       un.Name,
				Message:    fmt.Sprintf("nonlocal %q has no binding in any enclosing function scope", un.Name),
			})
		}

		if cfg.enabled("RP001") {
			modDiags = append(modDiags, checkUnusedImport(mod, cfg)...)
		}
		if cfg.enabled("RP002") {
			modDiags = append(modDiags, checkUnusedLocal(mod, cfg)...)
		}
		if cfg.enabled("RP003") {
			modDiags = append(modDiags, checkUnusedFunction(mod, reg, cfg)...)
		}
		if cfg.enabled("RP004") {
			modDiags = append(modDiags, checkUnusedClass(mod, reg, cfg)...)
		}
		if cfg.enabled("RP005") {
			modDiags = append(modDiags, checkUnreachable(mod)...)
		}
		if cfg.enabled("RP006") {
			modDiags = append(modDiags, checkDeadBranch(mod)...)
		}
		if cfg.enabled("RP007") {
			modDiags = append(modDiags, checkImportClobbered(mod)...)
		}
		if cfg.enabled("RP008") {
			modDiags = append(modDiags, checkUnusedParameter(mod)...)
		}
		if cfg.enabled("RP009") {
			modDiags = append(modDiags, checkUnusedLoopVar(mod)...)
		}

		modDiags = suppressNoqa(modDiags, mod.Content, cfg.ExtraNoqaMarker)

		sort.SliceStable(modDiags, func(i, j int) bool {
			a, b := modDiags[i], modDiags[j]
			if a.Span.StartLine != b.Span.StartLine {
				return a.Span.StartLine < b.Span.StartLine
			}
			if a.Span.StartCol != b.Span.StartCol {
				return a.Span.StartCol < b.Span.StartCol
			}
			return a.Rule < b.Rule
		})
		out = append(out, modDiags...)
	}
	return out
}

// suppressNoqa drops diagnostics whose span's starting line carries a
// "noqa" marker (case-insensitive) or the configured extra marker.
func suppressNoqa(diags []Diagnostic, content []byte, extraMarker string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if lineHasMarker(content, d.Span.StartLine, extraMarker) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func lineHasMarker(content []byte, line int, extraMarker string) bool {
	text := lineText(content, line)
	if strings.Contains(strings.ToLower(text), "noqa") {
		return true
	}
	if extraMarker != "" && strings.Contains(text, extraMarker) {
		return true
	}
	return false
}

func lineText(content []byte, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func isUnderscoreName(name string) bool {
	return strings.HasPrefix(name, "_")
}

func isOpaqueDecorator(dec string, extra []string) bool {
	switch dec {
	case "property", "staticmethod", "classmethod", "abstractmethod", "overload":
		return true
	}
	if strings.Contains(dec, ".") {
		return true
	}
	for _, pre := range extra {
		if strings.HasPrefix(dec, pre) {
			return true
		}
	}
	return false
}

func hasOpaqueDecorator(decorators []string, extra []string) bool {
	for _, d := range decorators {
		if isOpaqueDecorator(d, extra) {
			return true
		}
	}
	return false
}

// hasAbstractOrOverloadDecorator implements RP008's narrower decorator
// exemption: a function decorated with bare @abstractmethod or @overload
// is exempt whatever its body (fn.IsStub and the property setter/deleter
// value-arg case are checked separately by the caller). Unlike RP003/RP004's
// hasOpaqueDecorator, @staticmethod, @classmethod, @property, and dotted
// decorators like @app.route do not exempt a function's parameters from
// being flagged.
func hasAbstractOrOverloadDecorator(decorators []string) bool {
	for _, d := range decorators {
		if d == "abstractmethod" || d == "overload" {
			return true
		}
	}
	return false
}

// topLevelFunctionScopes returns KindFunction scopes whose parent is the
// module scope, in source order.
func topLevelFunctionScopes(mod *scope.Module) []*scope.Scope {
	var out []*scope.Scope
	for _, c := range mod.ModuleScope.Children {
		if c.Kind == scope.KindFunction {
			out = append(out, c)
		}
	}
	return out
}

func topLevelClassScopes(mod *scope.Module) []*scope.Scope {
	var out []*scope.Scope
	for _, c := range mod.ModuleScope.Children {
		if c.Kind == scope.KindClass {
			out = append(out, c)
		}
	}
	return out
}

func spanStrictlyBetween(s, lo, hi pyast.ReaperSpan) bool {
	after := s.StartLine > lo.StartLine || (s.StartLine == lo.StartLine && s.StartCol > lo.StartCol)
	before := s.StartLine < hi.StartLine || (s.StartLine == hi.StartLine && s.StartCol < hi.StartCol)
	return after && before
}
