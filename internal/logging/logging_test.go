package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(Warning)

	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("Debug logged below configured level: %q", buf.String())
	}

	l.Warning("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("Warning message missing from output: %q", buf.String())
	}
}

func TestLogIncludesParams(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("event", "apid", 64)
	out := buf.String()
	if !strings.Contains(out, "apid") || !strings.Contains(out, "64") {
		t.Fatalf("params missing from output: %q", out)
	}
}
