package sysutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chiragbiradar/StackIt-odoo/internal/config"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{OTEL: config.OTELConfig{ServiceName: "stackit-test"}}

	logger, closer := NewLogger(cfg, &buf)
	defer closer.Close()
	logger.Info().Str("op", "cast_vote").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "stackit-test" || line["op"] != "cast_vote" || line["message"] != "hello" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestNewLogger_PrettyIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(config.Config{LogPretty: true}, &buf)
	logger.Info().Msg("pretty")

	out := buf.String()
	if !strings.Contains(out, "pretty") || strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected console formatted output, got %q", out)
	}
}

func TestNewLogger_AlsoWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackit.log")
	cfg := config.Config{LogFile: config.LogFileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1}}

	var buf bytes.Buffer
	logger, closer := NewLogger(cfg, &buf)
	logger.Warn().Msg("to both")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Fatalf("expected line in both sinks; file=%q stdout=%q", data, buf.String())
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// no args -> ""
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// only empties -> ""
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
}
