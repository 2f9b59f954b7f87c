package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/incontext-app/incontext/pkg/logging"
)

func TestNew_TextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Output: &buf})

	logger.Info("server started", "addr", "localhost:8080")

	out := buf.String()
	if !strings.Contains(out, "msg=\"server started\"") {
		t.Errorf("expected text output, got %q", out)
	}
	if !strings.Contains(out, "addr=localhost:8080") {
		t.Errorf("expected attribute in output, got %q", out)
	}
}

func TestNew_JSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{JSON: true, Output: &buf})

	logger.Info("server started", "addr", "localhost:8080")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "server started" {
		t.Errorf("msg = %v, want %q", record["msg"], "server started")
	}
	if record["addr"] != "localhost:8080" {
		t.Errorf("addr = %v, want %q", record["addr"], "localhost:8080")
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: slog.LevelWarn, Output: &buf})

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record written below warn level: %q", buf.String())
	}

	logger.Warn("written")
	if !strings.Contains(buf.String(), "written") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestWithSystem(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Output: &buf})

	logging.WithSystem(logger, "agents").Info("agent created")

	if !strings.Contains(buf.String(), "system=agents") {
		t.Errorf("expected system attribute, got %q", buf.String())
	}
}
