package tui

import (
	"strings"
	"testing"

	"github.com/siftail/dtop/internal/core"
)

func TestViewRendersContainerTable(t *testing.T) {
	m := newTestModel(t)
	m.state.Apply(core.InitialContainerListEvent{Host: "local", Containers: []core.Container{
		{Key: core.ContainerKey{HostId: "local", ContainerId: "a"}, Name: "web", State: core.StateRunning, Stats: core.NewContainerStats(20)},
	}})
	out := m.View()
	if !strings.Contains(out, "web") {
		t.Fatalf("expected container name in view, got:\n%s", out)
	}
	if !strings.Contains(out, "running") {
		t.Fatalf("expected state badge in view, got:\n%s", out)
	}
}

func TestViewRendersEmptyTableMessage(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "no containers") {
		t.Fatalf("expected empty-state message, got:\n%s", out)
	}
}

func TestViewRendersActionMenuOverlay(t *testing.T) {
	m := newTestModel(t)
	m.state.Apply(core.InitialContainerListEvent{Host: "local", Containers: []core.Container{
		{Key: core.ContainerKey{HostId: "local", ContainerId: "a"}, Name: "web", State: core.StateRunning, Stats: core.NewContainerStats(20)},
	}})
	m.state.Apply(core.EnterPressedEvent{})
	out := m.View()
	if !strings.Contains(out, "actions:") {
		t.Fatalf("expected action menu overlay, got:\n%s", out)
	}
	if !strings.Contains(out, "stop") {
		t.Fatalf("expected stop action listed for a running container, got:\n%s", out)
	}
}

func TestRenderSparklineHandlesEmptyHistory(t *testing.T) {
	m := newTestModel(t)
	s := m.renderSparkline(core.NewSparkline(20))
	if s == "" {
		t.Fatal("expected a non-empty placeholder for an empty sparkline")
	}
}

func TestHumanBytesFormatsUnits(t *testing.T) {
	if got := humanBytes(512); got != "512B" {
		t.Fatalf("expected 512B, got %s", got)
	}
	if got := humanBytes(2048); got == "" {
		t.Fatal("expected a formatted KiB value")
	}
}
