package runner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger provides user-facing output methods for the executor
type Logger interface {
	Info(format string, args ...any)
	Verbose(format string, args ...any)
	Error(format string, args ...any)
}

// StdLogger implements Logger on a pair of writers. It is safe for
// concurrent use.
type StdLogger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	quiet   bool
}

// NewStdLogger creates a logger writing to stdout/stderr
func NewStdLogger(verbose, quiet bool) *StdLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, quiet)
}

// NewWriterLogger creates a logger writing to the given writers
func NewWriterLogger(out, errOut io.Writer, verbose, quiet bool) *StdLogger {
	return &StdLogger{out: out, errOut: errOut, verbose: verbose, quiet: quiet}
}

// Info logs info messages (unless quiet)
func (l *StdLogger) Info(format string, args ...any) {
	if !l.quiet {
		l.mu.Lock()
		defer l.mu.Unlock()
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Verbose logs verbose/debug messages (only if verbose and not quiet)
func (l *StdLogger) Verbose(format string, args ...any) {
	if l.verbose && !l.quiet {
		l.mu.Lock()
		defer l.mu.Unlock()
		fmt.Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Error logs error messages to stderr
func (l *StdLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.errOut, "Error: "+format+"\n", args...)
}

// SlogLogger adapts a structured logger to Logger. Used where stdout
// belongs to a protocol, as with the MCP stdio transport.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Info(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Verbose(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Error(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
