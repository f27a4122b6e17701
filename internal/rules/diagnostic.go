package rules

import "github.com/taradepan/reaper/internal/pyast"

// Diagnostic is spec §6's wire contract: rule id, owning module, span,
// subject name, and a human-readable message.
type Diagnostic struct {
	Rule       string           `json:"rule"`
	ModulePath string           `json:"module_path"`
	Span       pyast.ReaperSpan `json:"span"`
	Name       string           `json:"name"`
	Message    string           `json:"message"`
}
