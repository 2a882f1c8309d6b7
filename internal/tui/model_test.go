package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/siftail/dtop/internal/core"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	state := core.NewAppState(false, core.SortState{Field: core.SortName, Direction: core.Asc})
	events := make(chan core.AppEvent, 8)
	m := New(state, events, nil, "dark", nil)
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m2.(Model)
}

func TestUpdateWindowSizeMarksReady(t *testing.T) {
	m := newTestModel(t)
	if !m.ready {
		t.Fatal("expected model to be ready after a WindowSizeMsg")
	}
}

func TestHandleKeyQuitReturnsQuitCmd(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a non-nil cmd for quit")
	}
}

func TestHandleKeyNavigatesSelection(t *testing.T) {
	m := newTestModel(t)
	m.state.Apply(core.InitialContainerListEvent{Host: "local", Containers: []core.Container{
		{Key: core.ContainerKey{HostId: "local", ContainerId: "a"}, Name: "a", State: core.StateRunning},
		{Key: core.ContainerKey{HostId: "local", ContainerId: "b"}, Name: "b", State: core.StateRunning},
	}})
	before := m.state.SelectedIndex()
	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = m2.(Model)
	if m.state.SelectedIndex() == before && before != 1 {
		t.Fatalf("expected selection to move, stayed at %d", before)
	}
}

func TestUpdateAppEventAppliesToStateAndRearms(t *testing.T) {
	m := newTestModel(t)
	ev := core.InitialContainerListEvent{Host: "local", Containers: []core.Container{
		{Key: core.ContainerKey{HostId: "local", ContainerId: "a"}, Name: "a", State: core.StateRunning},
	}}
	m2, cmd := m.Update(core.AppEvent(ev))
	m = m2.(Model)
	if len(m.state.ViewModel()) != 1 {
		t.Fatalf("expected one container in view model, got %d", len(m.state.ViewModel()))
	}
	if cmd == nil {
		t.Fatal("expected waitForEvent to be re-armed")
	}
}

func TestUpdateDiagnosticSetsBanner(t *testing.T) {
	m := newTestModel(t)
	m2, _ := m.Update(core.AppEvent(core.DiagnosticEvent{Host: "local", Kind: core.DiagTransportError, Message: "boom"}))
	m = m2.(Model)
	if m.banner == "" {
		t.Fatal("expected a banner after a diagnostic event")
	}
}

func TestTickExpiresStaleBanner(t *testing.T) {
	m := newTestModel(t)
	m.banner = "old"
	m.bannerTime = time.Now().Add(-10 * time.Second)
	m2, _ := m.Update(tickMsg(time.Now()))
	m = m2.(Model)
	if m.banner != "" {
		t.Fatalf("expected stale banner to clear, got %q", m.banner)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = m2.(Model)
	if !m.showHelp {
		t.Fatal("expected help overlay to toggle on")
	}
}
