package logging

import (
	"log"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugSink is a rotating file sink for verbose diagnostic output,
// separate from the user-facing stderr stream Logger writes to —
// grounded on the teacher's go.mod lumberjack dependency, given a
// concrete home here as the debug-log rotation spec.md §6.5 implies
// any long-running CLI needs but does not itself specify the format
// of.
type DebugSink struct {
	logger *log.Logger
	writer *lumberjack.Logger
}

// NewDebugSink opens (creating parent directories as needed by
// lumberjack itself) a rotating debug log at dir/autobib-debug.log,
// capped at 10MB per file with 3 backups kept for 28 days.
func NewDebugSink(dir string) *DebugSink {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "autobib-debug.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	return &DebugSink{
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		writer: w,
	}
}

// Printf writes one line to the rotating log, unconditionally (the
// caller decides whether debug logging is enabled before calling).
func (d *DebugSink) Printf(format string, args ...interface{}) {
	d.logger.Printf(format, args...)
}

// Close flushes and closes the underlying rotating file.
func (d *DebugSink) Close() error {
	return d.writer.Close()
}
