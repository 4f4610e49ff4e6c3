package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped lines ("14:32:01.45") to w. At debug level
// the caller is reported as well.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		ReportCaller:    level <= log.DebugLevel,
	})
}

// stopwatch logs the completion of a command step with its elapsed time.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info with keyvals and elapsed=<duration>, e.g.
// "Laid out graph nodes=12 layout=hierarchical elapsed=41ms".
func (s stopwatch) done(msg string, keyvals ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}
