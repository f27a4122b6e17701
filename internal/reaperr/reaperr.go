// Package reaperr defines the error types the analyzer reports across its
// process boundary: an ExitError carrying a CLI exit code, and an
// InternalError marking a violated invariant that must be impossible on
// well-formed Python.
package reaperr

import "fmt"

// ExitError carries a process exit code alongside its message. The CLI
// wrapper inspects it with errors.As to choose the process exit status.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// InternalError marks a violated invariant: a state that should be
// unreachable on well-formed Python input. Reaching one aborts the run; no
// partial diagnostics are returned alongside it.
type InternalError struct {
	Phase      string // which pipeline phase detected the violation
	ModulePath string // module being processed when it was detected
	Detail     string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s phase for %s: %s", e.Phase, e.ModulePath, e.Detail)
}

// Cancelled is returned by internal/analyze when a run is cancelled
// between modules. No partial diagnostics accompany it.
var Cancelled = &ExitError{Code: 3, Message: "analysis cancelled"}
