package watch

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Ready(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Ready(100, []string{"engine", "gui"}, "/src/simc")

	output := buf.String()
	for _, want := range []string{"100 files", "/src/simc", "groups: engine, gui", "ready"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}

func TestLogger_Ready_NoGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Ready(50, nil, "/src")

	output := buf.String()
	if !strings.Contains(output, "50 files") {
		t.Errorf("expected file count in output: %s", output)
	}
	if strings.Contains(output, "groups:") {
		t.Errorf("no groups line expected: %s", output)
	}
}

func TestLogger_FileChanged(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    bool
	}{
		{"verbose", true, true},
		{"quiet", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LoggerConfig{Writer: &buf, Verbose: tt.verbose, NoColor: true})

			logger.FileChanged("engine/sc_io.cpp", ChangeAdded)

			got := strings.Contains(buf.String(), "+ engine/sc_io.cpp")
			if got != tt.want {
				t.Errorf("output %q, want shown=%v", buf.String(), tt.want)
			}
		})
	}
}

func TestLogger_Syncing(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Syncing([]string{"engine", "gui"})

	if !strings.Contains(buf.String(), "syncing engine, gui...") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestLogger_Synced(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf, Verbose: true})

	logger.Synced("gui", []string{"QT_gui.pri", "VS_gui.props"})

	output := buf.String()
	if !strings.Contains(output, "gui synced (2 files)") {
		t.Errorf("unexpected output: %s", output)
	}
	if !strings.Contains(output, "VS_gui.props") {
		t.Errorf("verbose output should list files: %s", output)
	}
	if logger.Stats().SyncCount != 1 {
		t.Errorf("SyncCount = %d, want 1", logger.Stats().SyncCount)
	}
}

func TestLogger_GroupFailed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.GroupFailed("engine", errors.New("root directory not found"))

	if !strings.Contains(buf.String(), "engine failed: root directory not found") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if logger.Stats().ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", logger.Stats().ErrorCount)
	}
}

func TestLogger_Shutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Synced("engine", nil)
	logger.Synced("gui", nil)
	logger.Error(errors.New("boom"))
	buf.Reset()

	logger.Shutdown()

	if !strings.Contains(buf.String(), "2 syncs, 1 errors") {
		t.Errorf("unexpected shutdown output: %s", buf.String())
	}
}

func TestLogger_NoColorWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf, Verbose: true})

	logger.FileChanged("qt/a.cpp", ChangeDeleted)

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("non-terminal output should not be colored: %q", buf.String())
	}
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf, JSON: true})

	logger.Ready(3, []string{"engine"}, "/src")
	logger.FileChanged("engine/a.cpp", ChangeAdded)
	logger.Syncing([]string{"engine"})
	logger.Synced("engine", []string{"engine_make"})
	logger.GroupFailed("gui", errors.New("parse error"))
	logger.Error(errors.New("watch error"))
	logger.Shutdown()

	events := decodeEvents(t, &buf)
	want := []string{"ready", "file_changed", "syncing", "synced", "failed", "error", "shutdown"}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, name := range want {
		if events[i]["event"] != name {
			t.Errorf("event %d = %v, want %s", i, events[i]["event"], name)
		}
	}

	if events[1]["path"] != "engine/a.cpp" || events[1]["change"] != "+" {
		t.Errorf("file_changed event = %v", events[1])
	}
	if events[3]["group"] != "engine" {
		t.Errorf("synced event = %v", events[3])
	}
	if events[6]["syncs"] != float64(1) || events[6]["errors"] != float64(2) {
		t.Errorf("shutdown event = %v", events[6])
	}
}
