package report

import (
	"encoding/json"
	"io"

	"github.com/taradepan/reaper/internal/rules"
)

// JSON writes diags as a JSON array to w, matching the §6 wire contract
// ({rule, module_path, span, name, message} per diagnostic). Emits `[]`
// rather than `null` for an empty diagnostic stream so downstream JSON
// consumers never have to special-case the clean-run response.
func JSON(w io.Writer, diags []rules.Diagnostic) error {
	if diags == nil {
		diags = []rules.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
