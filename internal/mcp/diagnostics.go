package mcp

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DiagnosticLogger handles all diagnostic output for the MCP server.
// CRITICAL: in MCP mode all output goes to a file. The protocol owns stdio.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   *log.Logger
	filePath string
	isMCP    bool
}

// NewDiagnosticLogger creates a logger that writes to a file instead of stderr.
// dir overrides the default $TMPDIR/nowmeta-mcp-logs location.
func NewDiagnosticLogger(isMCP bool, dir string) *DiagnosticLogger {
	dl := &DiagnosticLogger{
		isMCP: isMCP,
	}

	if !isMCP {
		// In CLI mode, logging to stderr is acceptable
		dl.logger = log.New(os.Stderr, "[nowmeta] ", log.LstdFlags)
		return dl
	}

	logDir := dir
	if logDir == "" {
		logDir = filepath.Join(os.TempDir(), LogDirName)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fallback: use home directory
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		logDir = filepath.Join(homeDir, "."+LogDirName)
		// Best effort; OpenFile below reports the real failure
		_ = os.MkdirAll(logDir, 0755)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("mcp-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// If file creation fails, disable logging rather than breaking MCP
		dl.logger = log.New(io.Discard, "", 0)
		return dl
	}

	dl.file = file
	dl.filePath = logPath
	dl.logger = log.New(file, "[MCP] ", log.LstdFlags|log.Lshortfile)
	return dl
}

// NewWriterLogger logs to w. Used by tests and the CLI.
func NewWriterLogger(w io.Writer) *DiagnosticLogger {
	return &DiagnosticLogger{logger: log.New(w, "", 0)}
}

// Printf logs a diagnostic message
func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf(format, v...)
}

// Errorf logs an error. Never to stderr in MCP mode.
func (dl *DiagnosticLogger) Errorf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf("ERROR: "+format, v...)
}

// Close closes the log file if it's open.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		err := dl.file.Close()
		dl.file = nil
		return err
	}
	return nil
}

// GetLogPath returns the path to the diagnostic log file (if MCP mode)
func (dl *DiagnosticLogger) GetLogPath() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}

// NoOpLogger is used to suppress all logging
var NoOpLogger = &DiagnosticLogger{
	logger: log.New(io.Discard, "", 0),
}
