// Package logging builds the diagnostics sink shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	EnvLogLevel = "ONE_INSTANCE_LOG_LEVEL"
	EnvLogStyle = "ONE_INSTANCE_LOG_STYLE"
)

// Style controls colouring of console output.
type Style string

const (
	StyleAlways Style = "always"
	StyleAuto   Style = "auto"
	StyleNever  Style = "never"
)

// Options configure New.
type Options struct {
	Level     string
	Style     Style
	Timestamp bool
	// Out defaults to os.Stderr.
	Out io.Writer
}

// New returns a console logger writing to opts.Out.
func New(opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	style, err := ParseStyle(string(opts.Style))
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !colorize(style, out),
		TimeFormat: time.RFC3339,
	}
	if !opts.Timestamp {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	ctx := zerolog.New(writer).Level(level).With()
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger(), nil
}

// ParseLevel accepts the usual level names plus "off" and its aliases. An
// empty string means info.
func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "none", "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", raw)
	}
}

// ParseStyle validates a colour style. An empty string means always.
func ParseStyle(raw string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StyleAlways:
		return StyleAlways, nil
	case StyleAuto:
		return StyleAuto, nil
	case StyleNever:
		return StyleNever, nil
	default:
		return "", fmt.Errorf("unknown log style %q", raw)
	}
}

func colorize(style Style, out io.Writer) bool {
	switch style {
	case StyleNever:
		return false
	case StyleAuto:
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	default:
		return true
	}
}
