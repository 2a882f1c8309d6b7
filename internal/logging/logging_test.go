package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesParentDirAndWrites(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "dtop.log")

	logger, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Diagnostic(logger, "local", "transport_error", "connect failed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain the diagnostic entry")
	}
}

func TestDefaultPathHonorsXDGStateHome(t *testing.T) {
	old := os.Getenv("XDG_STATE_HOME")
	defer os.Setenv("XDG_STATE_HOME", old)
	os.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if p != "/tmp/xdg-state/dtop/dtop.log" {
		t.Fatalf("unexpected path: %s", p)
	}
}
