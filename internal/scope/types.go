// Package scope implements spec §3's data model and §4.2's two-pass scope
// and binding builder: for each module, a tree of lexical scopes and, per
// scope, a table from name to Binding with its definition and use sites.
package scope

import "github.com/taradepan/reaper/internal/pyast"

// Kind identifies which of the four lexical-scope variants a Scope is.
type Kind int

const (
	KindModule Kind = iota
	KindFunction
	KindClass
	KindComprehension
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindComprehension:
		return "comprehension"
	default:
		return "unknown"
	}
}

// BindingKind identifies how a name came to be bound in a scope.
type BindingKind int

const (
	BindImport BindingKind = iota
	BindImportFrom
	BindImportStar
	BindFunctionDef
	BindClassDef
	BindParameter
	BindLocalAssign
	BindAnnOnly
	BindAugAssign
	BindForTarget
	BindWithTarget
	BindComprehensionTarget
	BindExceptAlias
	BindWalrusTarget
	BindStarUnpackTarget
	BindGlobal
	BindNonlocal
)

func (k BindingKind) String() string {
	names := [...]string{
		"Import", "ImportFrom", "ImportStar", "FunctionDef", "ClassDef",
		"Parameter", "LocalAssign", "AnnOnly", "AugAssign", "ForTarget",
		"WithTarget", "ComprehensionTarget", "ExceptAlias", "WalrusTarget",
		"StarUnpackTarget", "Global", "Nonlocal",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// UseRole classifies how a name was read at a use site.
type UseRole int

const (
	RoleRead UseRole = iota
	RoleReadWrite
	RoleAttribute
	RoleSubscript
)

// DefSite is one place a binding is (re-)defined.
type DefSite struct {
	Span     pyast.ReaperSpan
	HasValue bool
}

// UseSite is one place a binding is read.
type UseSite struct {
	Span pyast.ReaperSpan
	Role UseRole
}

// Binding is a name-introduction event within a scope (spec §3).
type Binding struct {
	Name     string
	Kind     BindingKind
	Defs     []DefSite
	Uses     []UseSite
	IsPublic bool
	NoqaLine bool // not set by Build; noqa markers are applied to diagnostics by internal/rules
}

// FirstDef returns the binding's first definition span, used as the
// diagnostic anchor span for rules that report against the binding itself.
func (b *Binding) FirstDef() pyast.ReaperSpan {
	if len(b.Defs) == 0 {
		return pyast.ReaperSpan{}
	}
	return b.Defs[0].Span
}

// HasReads reports whether the binding has any use site at all.
func (b *Binding) HasReads() bool {
	return len(b.Uses) > 0
}

// HasValueDef reports whether any definition site of the binding carries a
// value (i.e. it is not solely an AnnOnly declaration).
func (b *Binding) HasValueDef() bool {
	for _, d := range b.Defs {
		if d.HasValue {
			return true
		}
	}
	return false
}

// Scope is a node in the lexical scope tree (spec §3).
type Scope struct {
	Kind      Kind
	Parent    *Scope
	Children  []*Scope
	Bindings  map[string]*Binding
	Order     []string // binding names in first-definition source order
	Globals   map[string]bool
	Nonlocals map[string]bool
	UsesLocalsOrVars bool
	HasStarImport    bool // scope contains a `from m import *`; treat_star_import_as_opaque gates unused-name rules on this
	Span      pyast.ReaperSpan
	Name      string // function/class name, empty for module/comprehension scopes

	// Decorators is set for function and class scopes; the remaining
	// fields below are populated for KindFunction scopes only. Used by rule
	// checkers (RP008 stub/decorator detection) without re-walking the
	// parse tree.
	Decorators      []string // dotted decorator names, outermost-first
	IsAsync         bool
	IsStub          bool // body is `...`, `pass`, or `raise NotImplementedError`
	IsPropertyKind  string // "", "getter", "setter", "deleter"
	Params          []*Binding
	FirstParamIsSelf bool
	VarArgsParams   map[string]bool // parameter names bound via *args/**kwargs syntax

	Reach Reachability

	// TopLevelEvents records, in source order, the import and assignment
	// events that sit directly in this scope's own block (not nested
	// inside if/for/try/with). RP007's import-clobber check walks these
	// and consults the binding's use sites for reads in between.
	TopLevelEvents []TopLevelEvent
}

// TopLevelEvent is one statement-level event used by RP007's clobber check.
type TopLevelEvent struct {
	EventKind TopLevelEventKind
	Name      string
	Span      pyast.ReaperSpan
	// SelfReferencing is true for an assignment whose RHS mentions Name
	// (e.g. `re = re.compile(...)`), which counts as a use of the prior
	// binding rather than a silent clobber.
	SelfReferencing bool
}

// TopLevelEventKind distinguishes the kinds of TopLevelEvent.
type TopLevelEventKind int

const (
	EventImport TopLevelEventKind = iota
	EventAssign
)

// Reachability holds spec §4.3's per-body results.
type Reachability struct {
	DeadStatementSpans []pyast.ReaperSpan // one per dead-suffix start, for RP005
	DeadBranchSpans    []DeadBranch       // for RP006
}

// DeadBranch names a statically dead if/elif/else branch. ConditionSpan is
// the dead branch's condition, or the whole else clause when an earlier
// always-true literal condition (e.g. `if True:`) makes the else dead;
// RP006 reports at ConditionSpan. ReportSpan is the dead branch's body.
type DeadBranch struct {
	ConditionSpan pyast.ReaperSpan
	ReportSpan    pyast.ReaperSpan
}

// newScope allocates a Scope with its maps initialized.
func newScope(kind Kind, parent *Scope, span pyast.ReaperSpan) *Scope {
	s := &Scope{
		Kind:      kind,
		Parent:    parent,
		Bindings:      make(map[string]*Binding),
		Globals:       make(map[string]bool),
		Nonlocals:     make(map[string]bool),
		VarArgsParams: make(map[string]bool),
		Span:          span,
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// binding returns (creating if necessary) the Binding for name in s,
// tracking first-definition order.
func (s *Scope) binding(name string, kind BindingKind) *Binding {
	if b, ok := s.Bindings[name]; ok {
		return b
	}
	b := &Binding{Name: name, Kind: kind, IsPublic: isPublicName(name)}
	s.Bindings[name] = b
	s.Order = append(s.Order, name)
	return b
}

func isPublicName(name string) bool {
	return name != "" && name[0] != '_'
}

// Import is one import-table entry (spec §3 Module.import table).
type Import struct {
	LocalName    string
	Kind         BindingKind // BindImport, BindImportFrom, or BindImportStar
	RelativeDots int         // 0 for absolute imports
	ModulePath   string      // dotted path after any leading dots, may be ""
	RemoteName   string      // for BindImportFrom: the name imported from ModulePath
	Span         pyast.ReaperSpan
	InTypeCheckingBlock bool
}

// Module represents one analyzed source file (spec §3). Constructed once by
// Build and immutable thereafter.
type Module struct {
	Path       string
	RelPath    string
	Content    []byte
	ModuleScope *Scope
	AllDeclared bool
	AllNames    []string
	Imports     []Import
	HasFutureAnnotations bool
	ParseError  *pyast.ReaperSpan // non-nil iff the module failed to parse
	UnresolvedNonlocals []UnresolvedNonlocal
	AttributeUses []AttributeUse
}

// UnresolvedNonlocal records a `nonlocal x` with no enclosing binding for x.
type UnresolvedNonlocal struct {
	Name string
	Span pyast.ReaperSpan
}

// AttributeUse is a textual `base.attr` read where base is a plain
// identifier, recorded so the cross-file resolver (spec §4.4) can credit
// `import m; m.n` access as a use of m's exported name n.
type AttributeUse struct {
	Base string
	Attr string
	Span pyast.ReaperSpan
}

// AllFunctionScopes returns every KindFunction scope in the module, in
// source order, via a pre-order walk of the scope tree.
func (m *Module) AllFunctionScopes() []*Scope {
	var out []*Scope
	var walk func(*Scope)
	walk = func(s *Scope) {
		if s.Kind == KindFunction {
			out = append(out, s)
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(m.ModuleScope)
	return out
}

// AllScopes returns every scope in the module in pre-order.
func (m *Module) AllScopes() []*Scope {
	var out []*Scope
	var walk func(*Scope)
	walk = func(s *Scope) {
		out = append(out, s)
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(m.ModuleScope)
	return out
}

// TopLevelFunctionsAndClasses returns direct module-scope FunctionDef and
// ClassDef bindings, in source order, for RP003/RP004.
func (m *Module) TopLevelFunctionsAndClasses() []*Binding {
	var out []*Binding
	for _, name := range m.ModuleScope.Order {
		b := m.ModuleScope.Bindings[name]
		if b.Kind == BindFunctionDef || b.Kind == BindClassDef {
			out = append(out, b)
		}
	}
	return out
}

// IsPublic reports whether name should be treated as a public export,
// honoring the __all__authority config option (spec §6).
func (m *Module) IsPublic(name string, allAuthority string) bool {
	if m.AllDeclared && allAuthority != "advisory" {
		for _, n := range m.AllNames {
			if n == name {
				return true
			}
		}
		return false
	}
	return isPublicName(name)
}
