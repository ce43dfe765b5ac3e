package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file kept in the data directory.
const FileName = "docchat.log"

var (
	initOnce sync.Once
	closer   io.Closer
)

// Setup sends slog output to a rotating log file in dataDir. The terminal is
// left alone so the TUI owns it. Only the first call has an effect.
func Setup(dataDir string, debug bool) {
	initOnce.Do(func() {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dataDir, FileName),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		closer = rotator

		level := charmlog.InfoLevel
		if debug {
			level = charmlog.DebugLevel
		}
		slog.SetDefault(slog.New(NewHandler(rotator, level)))
	})
}

// NewHandler returns a JSON slog handler writing to w.
func NewHandler(w io.Writer, level charmlog.Level) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		ReportCaller:    level == charmlog.DebugLevel,
		Formatter:       charmlog.JSONFormatter,
	})
}

// Close flushes and closes the log file.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

// RecoverPanic logs a panic in a background goroutine and writes the stack
// trace to a file in the working directory, then runs cleanup if given.
func RecoverPanic(name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}
	slog.Error("Panic", "name", name, "error", r)

	filename := fmt.Sprintf("docchat-panic-%s-%s.log", name, time.Now().Format("20060102-150405"))
	if f, err := os.Create(filename); err == nil {
		fmt.Fprintf(f, "Panic in %s: %v\n\nTime: %s\n\nStack Trace:\n%s\n",
			name, r, time.Now().Format(time.RFC3339), debug.Stack())
		f.Close()
	} else {
		slog.Error("Failed to write panic log", "error", err)
	}

	if cleanup != nil {
		cleanup()
	}
}
