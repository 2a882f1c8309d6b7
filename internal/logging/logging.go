// Package logging sets up the process-wide diagnostics sink. While the
// alt-screen owns stdout/stderr, every diagnostic (spec.md §7's error
// kinds: TransportError, ProtocolError, StatsMathError,
// FilterIncompatibleForEvents, ActionError, ConfigError, TerminalError)
// is written as structured fields to a side log file instead.
package logging

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New opens (creating parent directories as needed) the log file at path
// and returns a logrus.Logger writing to it exclusively. An empty path
// falls back to DefaultPath().
func New(path string) (*logrus.Logger, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return logger, nil
}

// DefaultPath returns $XDG_STATE_HOME/dtop/dtop.log, falling back to
// ~/.local/state/dtop/dtop.log.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "dtop", "dtop.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "dtop", "dtop.log"), nil
}

// Diagnostic logs one host-scoped diagnostic with structured fields
// (spec.md §7's "logged...in addition to being surfaced in the UI").
func Diagnostic(logger *logrus.Logger, hostID, kind, message string) {
	logger.WithFields(logrus.Fields{
		"host_id": hostID,
		"kind":    kind,
	}).Warn(message)
}
