package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogrusWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", JSON: true, Output: &buf})

	logger.WithField("game", "g1").WithFields(map[string]interface{}{"probes": 3}).Info("clue %s -> %d", "ab", 2)

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "clue ab -> 2" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["game"] != "g1" || line["probes"] != float64(3) {
		t.Errorf("fields not carried: %v", line)
	}
}

func TestLogrusLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if got := logger.WithField("k", 1).Fields(); got["k"] != 1 {
		t.Errorf("Fields = %v", got)
	}
}
