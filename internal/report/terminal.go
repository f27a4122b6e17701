// Package report renders a diagnostic stream (internal/rules.Diagnostic) as
// either a color-coded terminal listing or a JSON stream, grouped the way
// the teacher's internal/output groups scan results by file.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/taradepan/reaper/internal/rules"
)

// ruleColor maps a diagnostic's rule id to a display color: parse-level
// failures in red, dead-code findings in yellow, everything else (unused
// bindings) in cyan.
func ruleColor(rule string) *color.Color {
	switch rule {
	case "ParseError", "UnresolvedNonlocal":
		return color.New(color.FgRed)
	case "RP005", "RP006":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// Terminal renders diagnostics grouped by module, file-by-file, in the order
// modules were supplied. Color is automatically disabled when w is not a
// TTY or when NO_COLOR is set, matching the teacher's spinner/output
// convention of checking the underlying file descriptor rather than
// globally forcing color on.
type Terminal struct {
	w      io.Writer
	bold   *color.Color
	plain  bool // true disables all color regardless of TTY detection
}

// NewTerminal creates a Terminal reporter writing to w. TTY detection only
// applies when w is an *os.File; anything else (a bytes.Buffer in tests, a
// pipe) is treated as non-interactive and rendered without color.
func NewTerminal(w io.Writer) *Terminal {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	noColor := os.Getenv("NO_COLOR") != "" || !isTTY
	return &Terminal{
		w:     w,
		bold:  color.New(color.Bold),
		plain: noColor,
	}
}

// Render prints diags to the Terminal's writer, grouped by ModulePath in
// the order they already appear (internal/rules.Run guarantees module input
// order, span-ascending within a module).
func (t *Terminal) Render(diags []rules.Diagnostic) {
	if len(diags) == 0 {
		t.fprint(color.New(color.FgGreen), "no issues found\n")
		return
	}

	var lastModule string
	for _, d := range diags {
		if d.ModulePath != lastModule {
			if lastModule != "" {
				fmt.Fprintln(t.w)
			}
			t.fprintBold("%s\n", d.ModulePath)
			lastModule = d.ModulePath
		}
		rc := ruleColor(d.Rule)
		t.fprint(rc, "  %d:%d", d.Span.StartLine, d.Span.StartCol)
		fmt.Fprintf(t.w, "  %s", d.Rule)
		if d.Name != "" {
			fmt.Fprintf(t.w, "  %s", d.Name)
		}
		fmt.Fprintf(t.w, "  %s\n", d.Message)
	}

	fmt.Fprintln(t.w)
	summary := color.New(color.FgRed)
	if t.plain {
		fmt.Fprintf(t.w, "%d issue(s) found\n", len(diags))
	} else {
		summary.Fprintf(t.w, "%d issue(s) found\n", len(diags))
	}
}

func (t *Terminal) fprint(c *color.Color, format string, args ...interface{}) {
	if t.plain {
		fmt.Fprintf(t.w, format, args...)
		return
	}
	c.Fprintf(t.w, format, args...)
}

func (t *Terminal) fprintBold(format string, args ...interface{}) {
	t.fprint(t.bold, format, args...)
}
