package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"build summary at info", log.InfoLevel, func(l *log.Logger) { l.Info("Built 4 nodes, 3 edges") }, true},
		{"click trace at info", log.InfoLevel, func(l *log.Logger) { l.Debug("node clicked", "node", "package-0") }, false},
		{"click trace at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("node clicked", "node", "package-0") }, true},
		{"cache warning at info", log.InfoLevel, func(l *log.Logger) { l.Warn("cache write failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.wantLog, buf.String())
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("Serving on :8080")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("output %q should start with an HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestControllerLogsFollowCLILevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	r := loadFixture(t)
	flags := stateFlags{expand: []string{"package-0"}, view: "simplified"}

	if _, err := flags.controller(context.Background(), c, r); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "node clicked") {
		t.Error("click traces should be hidden at info level")
	}

	c.SetLogLevel(LogDebug)
	if _, err := flags.controller(context.Background(), c, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "node clicked") {
		t.Errorf("debug output %q should trace the replayed click", buf.String())
	}
}

func TestProgressReportsBuild(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	ctx := withLogger(context.Background(), c.Logger)
	out := filepath.Join(t.TempDir(), "graph.json")

	flags := stateFlags{expand: []string{"package-0"}, view: "simplified"}
	if err := c.runBuild(ctx, fixture, &flags, out, true); err != nil {
		t.Fatalf("runBuild() error = %v", err)
	}

	if !regexp.MustCompile(`Built 6 nodes, 5 edges \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress output %q should report counts and elapsed time", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
