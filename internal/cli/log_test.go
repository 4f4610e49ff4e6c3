package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("debug message missing after SetLogLevel(LogDebug)")
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	sw := startStopwatch(newLogger(&buf, log.InfoLevel))

	time.Sleep(10 * time.Millisecond)
	sw.done("Laid out graph", "nodes", 3)

	out := buf.String()
	for _, want := range []string{"Laid out graph", "nodes=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("done() output = %q, want it to contain %q", out, want)
		}
	}
}

func TestDebugReportsCaller(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.DebugLevel).Debug("here")
	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("debug output = %q, want caller", buf.String())
	}
}
