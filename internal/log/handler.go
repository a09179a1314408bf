package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Attribute keys shared by every srcsync logger. Tooling that reads JSON
// logs filters on these.
const (
	KeyComponent = "component"
	KeyGroup     = "group"
	KeyCategory  = "category"
	KeyTarget    = "target"
	KeyPath      = "path"
)

// HandlerOptions configures the log handler.
type HandlerOptions struct {
	Level     slog.Leveler
	Format    string // FormatText or FormatJSON
	Output    io.Writer
	AddSource bool
}

// ValidateFormat reports whether format names a supported handler.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown log format %q (want %q or %q)", format, FormatText, FormatJSON)
}

// NewHandler returns a text or JSON handler writing to opts.Output, stderr
// by default. Generated files may be piped to stdout, so logs never go there.
func NewHandler(opts HandlerOptions) slog.Handler {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		AddSource:   opts.AddSource,
		ReplaceAttr: replaceAttr,
	}

	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return slog.NewTextHandler(opts.Output, handlerOpts)
}

// replaceAttr names the TRACE level and renders categories and targets by
// name, so both formats print "source" rather than an enum value.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(level))
		}
	case KeyCategory, KeyTarget:
		if a.Value.Kind() != slog.KindAny {
			break
		}
		if s, ok := a.Value.Any().(fmt.Stringer); ok {
			a.Value = slog.StringValue(s.String())
		}
	}
	return a
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
