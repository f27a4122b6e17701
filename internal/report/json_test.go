package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/taradepan/reaper/internal/pyast"
	"github.com/taradepan/reaper/internal/rules"
)

func TestJSONEmptyDiagnosticsEncodesEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var decoded []rules.Diagnostic
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil {
		t.Error("decoded into nil, want an empty non-nil slice round-trip")
	}
	if len(decoded) != 0 {
		t.Errorf("len = %d, want 0", len(decoded))
	}
}

func TestJSONRoundTrips(t *testing.T) {
	diags := []rules.Diagnostic{
		{Rule: "RP001", ModulePath: "a.py", Span: pyast.ReaperSpan{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 10}, Name: "os", Message: "unused import"},
	}

	var buf bytes.Buffer
	if err := JSON(&buf, diags); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var decoded []rules.Diagnostic
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != diags[0] {
		t.Errorf("decoded = %+v, want %+v", decoded, diags)
	}
}
