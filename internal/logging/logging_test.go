package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"INFO":    zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseStyle(t *testing.T) {
	if got, err := ParseStyle(""); err != nil || got != StyleAlways {
		t.Fatalf("default style = %q, %v", got, err)
	}
	if got, err := ParseStyle("Auto"); err != nil || got != StyleAuto {
		t.Fatalf("auto style = %q, %v", got, err)
	}
	if _, err := ParseStyle("sometimes"); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Style: StyleNever, Out: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Str("channel", "one_instance_app").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "channel=one_instance_app") {
		t.Fatalf("warn message missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("style never should not emit colour codes: %q", out)
	}
}

func TestAutoStyleWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	if colorize(StyleAuto, &buf) {
		t.Fatal("a buffer is not a terminal")
	}
	if !colorize(StyleAlways, &buf) {
		t.Fatal("style always should colour")
	}
}
