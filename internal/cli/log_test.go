package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("fetched tree") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("member skipped") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("laid out", "nodes", 5)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line should start with a HH:MM:SS.ms timestamp: %q", line)
	}
	if !strings.Contains(line, "nodes=5") {
		t.Errorf("line should carry key/value pairs: %q", line)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	c.Logger.Debug("hidden")
	c.SetLogLevel(log.DebugLevel)
	c.Logger.Debug("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Laid out 4 members")

	if !regexp.MustCompile(`Laid out 4 members \(\d+ms\)`).MatchString(buf.String()) {
		t.Errorf("output = %q, want message with elapsed milliseconds", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Fatal("loggerFromContext should return the attached logger")
	}
}

func TestCommandContextCarriesLogger(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "tree.json", treeJSON)

	if _, err := env.run(t, "layout", path); err != nil {
		t.Fatalf("layout: %v", err)
	}
	// The layout command reports its duration through the context logger.
	if !strings.Contains(env.logs.String(), "Laid out") {
		t.Errorf("logs = %q", env.logs.String())
	}
}
