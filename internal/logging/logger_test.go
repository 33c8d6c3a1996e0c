package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	log.Debug("hello", "job_id", "abc")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" || rec["job_id"] != "abc" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewTextFormatRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", &buf)
	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=loud") {
		t.Errorf("expected text-formatted warn line: %q", out)
	}
}

func TestLogBufferKeepsTail(t *testing.T) {
	lb := NewLogBuffer(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(lb, "line %d\n", i)
	}
	lines := lb.Lines()
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	if lines[0] != "line 3" || lines[2] != "line 5" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestLogBufferAsTeeTarget(t *testing.T) {
	lb := NewLogBuffer(10)
	log := New("info", "text", io.MultiWriter(io.Discard, lb))
	log.Info("captured")
	if lines := lb.Lines(); len(lines) != 1 || !strings.Contains(lines[0], "captured") {
		t.Errorf("unexpected buffer: %v", lines)
	}
}
