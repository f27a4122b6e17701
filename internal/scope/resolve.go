package scope

// resolveAll resolves every deferred read against the finished scope tree,
// attaching a UseSite to whichever Binding each name resolves to (spec
// §4.2's LEGB walk with class-scope skipping and global/nonlocal
// redirection). Reads that resolve to nothing (builtins, truly free names)
// are simply dropped; this model only tracks locally-introduced bindings.
func resolveAll(mod *Module, reads []readEvent) {
	for _, r := range reads {
		target := resolveName(mod, r.scope, r.name)
		if target == nil {
			continue
		}
		target.Uses = append(target.Uses, UseSite{Span: r.span, Role: r.role})
	}
}

// resolveName implements LEGB: check the starting scope itself (so a read
// inside a class body sees the class's own attributes), then walk upward
// through parents, skipping any Class scope encountered along the way
// (nested functions never see their enclosing class's namespace).
func resolveName(mod *Module, start *Scope, name string) *Binding {
	if start.Globals[name] {
		if b, ok := mod.ModuleScope.Bindings[name]; ok {
			return b
		}
		return nil
	}
	if start.Nonlocals[name] {
		s := start.Parent
		for s != nil && s.Kind != KindModule {
			if s.Kind == KindFunction {
				if b, ok := s.Bindings[name]; ok {
					return b
				}
			}
			s = s.Parent
		}
		return nil
	}

	if b, ok := start.Bindings[name]; ok {
		return b
	}

	s := start.Parent
	for s != nil {
		if s.Kind == KindClass {
			s = s.Parent
			continue
		}
		if b, ok := s.Bindings[name]; ok {
			return b
		}
		s = s.Parent
	}
	return nil
}
