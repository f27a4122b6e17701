package rules

import (
	"fmt"

	"github.com/taradepan/reaper/internal/registry"
	"github.com/taradepan/reaper/internal/scope"
)

// checkUnusedImport implements RP001: an import binding with no reads and
// not re-exported, honoring TYPE_CHECKING-only imports and __all__ export.
func checkUnusedImport(mod *scope.Module, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, s := range mod.AllScopes() {
		for _, name := range s.Order {
			bind := s.Bindings[name]
			if bind.Kind != scope.BindImport && bind.Kind != scope.BindImportFrom {
				continue
			}
			if bind.HasReads() {
				continue
			}
			if s == mod.ModuleScope && mod.AllDeclared && inAllNames(mod, name) {
				continue
			}
			if allImportsTypeCheckingOnly(mod, name) {
				continue
			}
			out = append(out, Diagnostic{
				Rule:       "RP001",
				ModulePath: mod.Path,
				Span:       bind.FirstDef(),
				Name:       name,
				Message:    fmt.Sprintf("%q is imported but never used", name),
			})
		}
	}
	return out
}

func inAllNames(mod *scope.Module, name string) bool {
	for _, n := range mod.AllNames {
		if n == name {
			return true
		}
	}
	return false
}

func allImportsTypeCheckingOnly(mod *scope.Module, local string) bool {
	found := false
	for _, imp := range mod.Imports {
		if imp.LocalName != local {
			continue
		}
		found = true
		if !imp.InTypeCheckingBlock {
			return false
		}
	}
	return found
}

var nonLocalCandidateKinds = map[scope.BindingKind]bool{
	scope.BindParameter:  true,
	scope.BindForTarget:  true,
	scope.BindImport:     true,
	scope.BindImportFrom: true,
	scope.BindImportStar: true,
	scope.BindAnnOnly:    true,
	scope.BindGlobal:     true,
	scope.BindNonlocal:   true,
}

// checkUnusedLocal implements RP002: any other binding kind with no reads,
// excluding module-level defs/classes (owned by RP003/RP004). With
// TreatStarImportAsOpaque set, a `from m import *` in any scope of the
// module suppresses RP002 for the whole module.
func checkUnusedLocal(mod *scope.Module, cfg Config) []Diagnostic {
	var out []Diagnostic
	starOpaque := false
	if cfg.TreatStarImportAsOpaque {
		for _, s := range mod.AllScopes() {
			if s.HasStarImport {
				starOpaque = true
			}
		}
	}
	for _, s := range mod.AllScopes() {
		for _, name := range s.Order {
			bind := s.Bindings[name]
			if nonLocalCandidateKinds[bind.Kind] {
				continue
			}
			if (bind.Kind == scope.BindFunctionDef || bind.Kind == scope.BindClassDef) &&
				(s == mod.ModuleScope || s.Kind == scope.KindClass) {
				// Top-level defs are RP003/RP004's concern; methods and
				// nested classes in a class body are resolved dynamically
				// (attribute access, decorators) and aren't tracked by
				// this rule either.
				continue
			}
			if isUnderscoreName(name) {
				continue
			}
			if s.UsesLocalsOrVars {
				continue
			}
			if starOpaque {
				continue
			}
			if bind.HasReads() {
				continue
			}
			out = append(out, Diagnostic{
				Rule:       "RP002",
				ModulePath: mod.Path,
				Span:       bind.FirstDef(),
				Name:       name,
				Message:    fmt.Sprintf("%q is assigned but never used", name),
			})
		}
	}
	return out
}

// checkUnusedFunction implements RP003: an unread, unexported, non-opaque
// top-level function.
func checkUnusedFunction(mod *scope.Module, reg *registry.Registry, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, fnScope := range topLevelFunctionScopes(mod) {
		name := fnScope.Name
		bind := mod.ModuleScope.Bindings[name]
		if bind == nil {
			continue
		}
		if mod.AllDeclared && inAllNames(mod, name) {
			continue
		}
		if hasOpaqueDecorator(fnScope.Decorators, cfg.ExtraExemptDecorators) {
			continue
		}
		if bind.HasReads() {
			continue
		}
		if reg.IsUsedExternally(mod, name) {
			continue
		}
		out = append(out, Diagnostic{
			Rule:       "RP003",
			ModulePath: mod.Path,
			Span:       bind.FirstDef(),
			Name:       name,
			Message:    fmt.Sprintf("function %q is never called", name),
		})
	}
	return out
}

// checkUnusedClass implements RP004: mirrors RP003 plus a subclass-reference
// exemption.
func checkUnusedClass(mod *scope.Module, reg *registry.Registry, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, clsScope := range topLevelClassScopes(mod) {
		name := clsScope.Name
		bind := mod.ModuleScope.Bindings[name]
		if bind == nil {
			continue
		}
		if mod.AllDeclared && inAllNames(mod, name) {
			continue
		}
		if hasOpaqueDecorator(clsScope.Decorators, cfg.ExtraExemptDecorators) {
			continue
		}
		if bind.HasReads() {
			continue
		}
		if reg.IsUsedExternally(mod, name) {
			continue
		}
		if reg.HasSubclassReference(mod, name) {
			continue
		}
		out = append(out, Diagnostic{
			Rule:       "RP004",
			ModulePath: mod.Path,
			Span:       bind.FirstDef(),
			Name:       name,
			Message:    fmt.Sprintf("class %q is never instantiated or subclassed", name),
		})
	}
	return out
}

// checkUnreachable implements RP005: one diagnostic per dead-suffix start.
func checkUnreachable(mod *scope.Module) []Diagnostic {
	var out []Diagnostic
	for _, s := range mod.AllScopes() {
		if s.Kind == scope.KindComprehension {
			continue
		}
		for _, span := range s.Reach.DeadStatementSpans {
			out = append(out, Diagnostic{
				Rule:       "RP005",
				ModulePath: mod.Path,
				Span:       span,
				Message:    "statement is unreachable",
			})
		}
	}
	return out
}

// checkDeadBranch implements RP006: one diagnostic per statically dead
// if/elif/else branch.
func checkDeadBranch(mod *scope.Module) []Diagnostic {
	var out []Diagnostic
	for _, s := range mod.AllScopes() {
		if s.Kind == scope.KindComprehension {
			continue
		}
		for _, br := range s.Reach.DeadBranchSpans {
			out = append(out, Diagnostic{
				Rule:       "RP006",
				ModulePath: mod.Path,
				Span:       br.ConditionSpan,
				Message:    "branch is never taken",
			})
		}
	}
	return out
}

// checkImportClobbered implements RP007: an import whose first subsequent
// same-name top-level event is a non-self-referencing assignment, with no
// read of the binding between the import and that assignment.
func checkImportClobbered(mod *scope.Module) []Diagnostic {
	var out []Diagnostic
	for _, s := range mod.AllScopes() {
		events := s.TopLevelEvents
		for i, ev := range events {
			if ev.EventKind != scope.EventImport {
				continue
			}
			for j := i + 1; j < len(events); j++ {
				next := events[j]
				if next.Name != ev.Name {
					continue
				}
				readFirst := false
				if bind := s.Bindings[ev.Name]; bind != nil {
					for _, u := range bind.Uses {
						if spanStrictlyBetween(u.Span, ev.Span, next.Span) {
							readFirst = true
							break
						}
					}
				}
				if next.EventKind == scope.EventAssign && !next.SelfReferencing && !readFirst {
					out = append(out, Diagnostic{
						Rule:       "RP007",
						ModulePath: mod.Path,
						Span:       ev.Span,
						Name:       ev.Name,
						Message:    fmt.Sprintf("import of %q is reassigned before use", ev.Name),
					})
				}
				break
			}
		}
	}
	return out
}

// checkUnusedParameter implements RP008: an unread parameter, honoring
// self/cls, underscore, *args/**kwargs, stub bodies, @abstractmethod/
// @overload decorators, and property setter/deleter's value parameter.
// @staticmethod, @classmethod, @property, and other decorators do not
// exempt a function here, unlike RP003/RP004's broader opacity list.
func checkUnusedParameter(mod *scope.Module) []Diagnostic {
	var out []Diagnostic
	for _, fn := range mod.AllFunctionScopes() {
		if fn.IsStub {
			continue
		}
		if hasAbstractOrOverloadDecorator(fn.Decorators) {
			continue
		}
		for i, param := range fn.Params {
			if i == 0 && fn.FirstParamIsSelf {
				continue
			}
			if isUnderscoreName(param.Name) {
				continue
			}
			if fn.VarArgsParams[param.Name] {
				continue
			}
			if (fn.IsPropertyKind == "setter" || fn.IsPropertyKind == "deleter") && i > 0 {
				continue
			}
			if param.HasReads() {
				continue
			}
			out = append(out, Diagnostic{
				Rule:       "RP008",
				ModulePath: mod.Path,
				Span:       param.FirstDef(),
				Name:       param.Name,
				Message:    fmt.Sprintf("parameter %q is never used", param.Name),
			})
		}
	}
	return out
}

// checkUnusedLoopVar implements RP009: an unread `for` target, per leaf
// identifier in a tuple unpacking. When the name is bound again later in
// the same scope, only reads before that next definition count for the
// loop; reads after the loop ends and before any rebinding also count.
func checkUnusedLoopVar(mod *scope.Module) []Diagnostic {
	var out []Diagnostic
	for _, s := range mod.AllScopes() {
		for _, name := range s.Order {
			bind := s.Bindings[name]
			if bind.Kind != scope.BindForTarget {
				continue
			}
			if isUnderscoreName(name) {
				continue
			}
			read := false
			for _, u := range bind.Uses {
				if len(bind.Defs) < 2 || u.Span.Before(bind.Defs[1].Span) {
					read = true
					break
				}
			}
			if read {
				continue
			}
			out = append(out, Diagnostic{
				Rule:       "RP009",
				ModulePath: mod.Path,
				Span:       bind.FirstDef(),
				Name:       name,
				Message:    fmt.Sprintf("loop variable %q is never used", name),
			})
		}
	}
	return out
}

