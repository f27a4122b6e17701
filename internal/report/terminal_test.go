package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/taradepan/reaper/internal/pyast"
	"github.com/taradepan/reaper/internal/rules"
)

func TestTerminalRenderNoIssues(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.Render(nil)

	if !strings.Contains(buf.String(), "no issues found") {
		t.Errorf("output = %q, want it to mention no issues found", buf.String())
	}
}

func TestTerminalRenderGroupsByModule(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	diags := []rules.Diagnostic{
		{Rule: "RP001", ModulePath: "a.py", Span: pyast.ReaperSpan{StartLine: 1, StartCol: 1}, Name: "os", Message: "unused import"},
		{Rule: "RP002", ModulePath: "a.py", Span: pyast.ReaperSpan{StartLine: 2, StartCol: 1}, Name: "x", Message: "unused local"},
		{Rule: "RP003", ModulePath: "b.py", Span: pyast.ReaperSpan{StartLine: 1, StartCol: 1}, Name: "f", Message: "unused function"},
	}
	term.Render(diags)

	out := buf.String()
	if !strings.Contains(out, "a.py") || !strings.Contains(out, "b.py") {
		t.Errorf("output missing module headers: %q", out)
	}
	if strings.Index(out, "a.py") > strings.Index(out, "b.py") {
		t.Errorf("modules out of order: %q", out)
	}
	if !strings.Contains(out, "3 issue(s) found") {
		t.Errorf("output missing summary count: %q", out)
	}
}

func TestTerminalRenderNonTTYIsPlain(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	if !term.plain {
		t.Error("a bytes.Buffer writer should never be treated as a TTY")
	}
}
