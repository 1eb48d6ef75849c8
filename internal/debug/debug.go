// Package debug provides opt-in trace output for query construction and
// tool dispatch. Output is always suppressed in MCP mode so the stdio
// transport stays protocol-clean.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be flipped at build time:
// go build -ldflags "-X github.com/standardbeagle/nowmeta/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by main before the stdio server starts
var MCPMode = false

var (
	mu        sync.Mutex
	output    io.Writer
	logFile   *os.File
	envLookup = os.Getenv
)

// SetMCPMode enables MCP mode which suppresses all debug output
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitDebugLogFile routes debug output to a timestamped file in the temp dir
// and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "nowmeta-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	path := filepath.Join(dir, "debug-"+time.Now().Format("2006-01-02T150405")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	logFile = f
	output = f
	return path, nil
}

// CloseDebugLog closes the debug log file if one is open
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

// IsDebugEnabled reports whether traces should be written
func IsDebugEnabled() bool {
	mu.Lock()
	mcp := MCPMode
	mu.Unlock()
	if mcp {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := envLookup("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Printf prints debug information when enabled and an output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Log writes a trace line tagged with a component name
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] %s", component, fmt.Sprintf(format, args...))
	}
}

// LogQuery traces filter expressions sent to the remote table API
func LogQuery(format string, args ...interface{}) {
	Log("QUERY", format, args...)
}

// LogScripts traces the multi-table script search
func LogScripts(format string, args ...interface{}) {
	Log("SCRIPTS", format, args...)
}

// LogMCP traces tool dispatch
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records a fatal condition and returns it as an error.
// Callers decide whether to exit; nothing is written in MCP mode.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	mu.Lock()
	w, mcp := output, MCPMode
	mu.Unlock()
	if !mcp && w != nil {
		fmt.Fprintf(w, "[FATAL] %s", msg)
	}
	return fmt.Errorf("fatal error: %s", msg)
}
