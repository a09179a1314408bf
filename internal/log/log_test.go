package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  slog.Level
	}{
		{0, slog.LevelError},
		{-1, slog.LevelError},
		{1, slog.LevelWarn},
		{2, slog.LevelInfo},
		{3, slog.LevelDebug},
		{4, LevelTrace},
		{5, LevelTrace}, // anything > 4 maps to trace
	}

	for _, tt := range tests {
		got := VerbosityToLevel(tt.verbosity)
		if got != tt.expected {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.expected)
		}
	}
}

func TestLevelToVerbosity(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected int
	}{
		{slog.LevelError, VerbosityError},
		{slog.LevelWarn, VerbosityWarn},
		{slog.LevelInfo, VerbosityInfo},
		{slog.LevelDebug, VerbosityDebug},
		{LevelTrace, VerbosityTrace},
	}

	for _, tt := range tests {
		got := LevelToVerbosity(tt.level)
		if got != tt.expected {
			t.Errorf("LevelToVerbosity(%v) = %d, want %d", tt.level, got, tt.expected)
		}
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{LevelTrace, "TRACE"},
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
	}

	for _, tt := range tests {
		got := LevelName(tt.level)
		if got != tt.expected {
			t.Errorf("LevelName(%v) = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, ok := range []string{"", FormatText, FormatJSON} {
		if err := ValidateFormat(ok); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", ok, err)
		}
	}
	if err := ValidateFormat("yaml"); err == nil {
		t.Error("ValidateFormat(yaml) should fail")
	}
}

func TestInitWithOutput(t *testing.T) {
	var buf bytes.Buffer

	InitWithOutput(2, FormatText, &buf)
	if Verbosity() != 2 {
		t.Errorf("Verbosity() = %d, want 2", Verbosity())
	}

	Info("group synced", "group", "engine")
	Debug("hidden at v=2")

	out := buf.String()
	if !strings.Contains(out, "group synced") {
		t.Errorf("Info should be written at v=2, got: %s", out)
	}
	if strings.Contains(out, "hidden at v=2") {
		t.Errorf("Debug should be filtered at v=2, got: %s", out)
	}
}

func TestSetVerbosity(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(1, FormatText, &buf)

	SetVerbosity(3)
	if Verbosity() != 3 {
		t.Errorf("Verbosity() = %d, want 3", Verbosity())
	}

	SetVerbosity(0)
	if Verbosity() != 0 {
		t.Errorf("Verbosity() = %d, want 0", Verbosity())
	}
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(4, FormatText, &buf)

	Trace("rule applied")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("trace records should render as TRACE, got: %s", buf.String())
	}
}

func TestV(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatText, &buf)

	V(2).Info("should appear", "key", "value")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("V(2) should log when verbosity is 2, got: %s", buf.String())
	}

	buf.Reset()

	V(3).Info("should not appear", "key", "value")
	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("V(3) should not log when verbosity is 2, got: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatText, &buf)

	With("component", "test").Info("test message")

	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("With should add context, got: %s", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatText, &buf)

	Component("syncer").Info("test message")

	if !strings.Contains(buf.String(), "component=syncer") {
		t.Errorf("Component should add component context, got: %s", buf.String())
	}
}

func TestGroup(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatText, &buf)

	Group("syncer", "gui").Warn("group failed")

	out := buf.String()
	if !strings.Contains(out, "component=syncer") || !strings.Contains(out, "group=gui") {
		t.Errorf("Group should add component and group context, got: %s", out)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	handler := NewHandler(HandlerOptions{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	l := slog.New(handler)
	l.Info("test", "key", "value")

	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("JSON handler should output JSON, got: %s", buf.String())
	}
}

func TestNewHandler_DefaultOutput(t *testing.T) {
	handler := NewHandler(HandlerOptions{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: nil, // should default to stderr
	})

	if handler == nil {
		t.Error("NewHandler should not return nil")
	}
}

// testCategory stands in for entry.Category, which imports this package.
type testCategory int

func (c testCategory) String() string { return [...]string{"source", "header", "resource"}[c] }

func TestCategory_RendersName(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatText, "category=header"},
		{FormatJSON, `"category":"header"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			InitWithOutput(3, tt.format, &buf)

			Group("discover", "engine").Debug("matched files", Category(testCategory(1)), "count", 2)

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %s, got: %s", tt.want, buf.String())
			}
		})
	}
}

func TestReplaceAttr_TargetFromWith(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatJSON, &buf)

	Component("syncer").With(KeyTarget, testCategory(2)).Info("wrote target")

	if !strings.Contains(buf.String(), `"target":"resource"`) {
		t.Errorf("target attribute should render by name, got: %s", buf.String())
	}
}

func TestCounts(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, FormatText, &buf)

	counts := map[testCategory]int{2: 1, 0: 5, 1: 0}
	Group("syncer", "engine").Info("descriptor parsed", Counts("entries", counts))

	out := buf.String()
	if !strings.Contains(out, "entries.source=5 entries.resource=1") {
		t.Errorf("counts should render in category order, got: %s", out)
	}
	if strings.Contains(out, "entries.header") {
		t.Errorf("empty categories should be left out, got: %s", out)
	}
	if !strings.Contains(out, "component=syncer group=engine") {
		t.Errorf("expected component and group context, got: %s", out)
	}
}
