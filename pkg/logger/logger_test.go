package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"igfollowers/pkg/config"
)

func newBufferedLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"text console", &config.LoggingConfig{Level: "info", Format: "text"}, false},
		{"json console", &config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "igfollow.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igfollow.log")
	logger, err := New(&config.LoggingConfig{Level: "info", File: path, Format: "text"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.WithField("page", 2).Info("page collected")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"page":2`) {
		t.Errorf("log file missing field, got %s", data)
	}
	if !strings.Contains(string(data), `"app":"igfollowers"`) {
		t.Errorf("log file missing app field, got %s", data)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	logger.
		WithField("run_id", "abc").
		WithFields(map[string]interface{}{"page": 3, "exhausted": true}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{"chained fields", `"run_id":"abc"`, `"page":3`, `"exhausted":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	_ = logger.WithField("child", "yes")
	logger.Info("parent")

	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent logger picked up child field: %s", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	logger.WithError(errors.New("cookie expired")).Error("request failed")
	if !strings.Contains(buf.String(), "cookie expired") {
		t.Errorf("error not found in output: %s", buf.String())
	}
}

func TestLogPageProgress(t *testing.T) {
	tl := NewTestLogger()
	LogPageProgress(tl, 2, 25, 50, 100, []string{"alice", "bob", "carol_has_a_rather_long_username", "dave_too"})

	msgs := tl.GetMessagesByLevel("INFO")
	if len(msgs) != 1 {
		t.Fatalf("expected one info message, got %d", len(msgs))
	}
	fields := msgs[0].Fields
	if fields["page"] != 2 || fields["total"] != 50 || fields["target"] != 100 {
		t.Errorf("unexpected fields: %v", fields)
	}
	if sample := fields["sample"].(string); !strings.HasSuffix(sample, "...") {
		t.Errorf("expected truncated sample, got %q", sample)
	}
}

func TestLogRequestLevels(t *testing.T) {
	tl := NewTestLogger()
	LogRequest(tl, "GET", "https://example.test", 200, 12.5)
	LogRequest(tl, "GET", "https://example.test", 401, 3)
	LogRequest(tl, "GET", "https://example.test", 502, 3)

	if len(tl.GetMessagesByLevel("DEBUG")) != 1 {
		t.Error("expected 2xx to log at debug")
	}
	if len(tl.GetMessagesByLevel("WARN")) != 1 {
		t.Error("expected 4xx to log at warn")
	}
	if !tl.HasError() {
		t.Error("expected 5xx to log at error")
	}
}

func TestTestLoggerSharesCapture(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "collector").WithError(errors.New("boom"))
	child.Warn("child message")

	msgs := tl.GetMessages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Fields["component"] != "collector" || msgs[0].Error == nil {
		t.Errorf("child context not captured: %+v", msgs[0])
	}
	if !tl.HasMessage("child message") {
		t.Error("HasMessage() = false")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "debug", Format: "text"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}

	// just make sure the convenience wrappers do not panic
	Info("info message")
	Error("error message")
	WithField("key", "value").Info("with field")
	WithFields(map[string]interface{}{"k1": "v1"}).Info("with fields")
	WithError(errors.New("test")).Error("with error")
}
