package persist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	tmp, err := os.MkdirTemp("", "dtop-settings-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	oldAPP := os.Getenv("APPDATA")
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	_ = os.Setenv("APPDATA", filepath.Join(tmp, "AppData"))
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", oldXDG); _ = os.Setenv("APPDATA", oldAPP) }()

	st, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Theme == "" || s.SortField == "" {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	want := Settings{Theme: "nord", SortField: "cpu", SortDirection: "asc", ShowAll: true}
	if err := st.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load(2): %v", err)
	}
	if got != want {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, want)
	}
}
