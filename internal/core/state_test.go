package core

import (
	"context"
	"testing"
	"time"
)

func key(host, id string) ContainerKey {
	return ContainerKey{HostId: HostId(host), ContainerId: id}
}

func TestStateE1SingleHostOneContainer(t *testing.T) {
	s := NewAppState(false, SortState{Field: SortUptime, Direction: Desc})
	s.Apply(InitialContainerListEvent{
		Host: "local",
		Containers: []Container{
			{Key: key("local", "abc123def456"), Name: "nginx", State: StateRunning, Stats: NewContainerStats(20)},
		},
	})

	sel, ok := s.Selected()
	if !ok || sel.Name != "nginx" {
		t.Fatalf("expected nginx selected, got %+v ok=%v", sel, ok)
	}

	cs := NewContainerStats(20)
	ApplyRawSample(&cs, RawSample{Valid: true, At: time.Unix(0, 0)}, 1, 0, 0)
	cs.CPUHistory.Push(10.0)
	cs.MemoryHistory.Push(0)
	cs.SampleCount = 1
	s.Apply(ContainerStatEvent{Key: sel.Key, Stats: cs})

	cs2 := cs
	cs2.CPUHistory = cs.CPUHistory.Clone()
	cs2.MemoryHistory = cs.MemoryHistory.Clone()
	cs2.CPUHistory.Push(10.0)
	cs2.MemoryHistory.Push(0)
	cs2.SampleCount = 2
	s.Apply(ContainerStatEvent{Key: sel.Key, Stats: cs2})

	got, _ := s.Selected()
	if got.Stats.SampleCount != 2 {
		t.Fatalf("sample_count = %d, want 2", got.Stats.SampleCount)
	}
	if vals := got.Stats.CPUHistory.Values(); len(vals) != 2 || vals[0] != 10.0 || vals[1] != 10.0 {
		t.Fatalf("cpu_history = %v, want [10 10]", vals)
	}
}

func TestStateE2MultiHostSortViaInitialList(t *testing.T) {
	s := NewAppState(false, SortState{Field: SortName, Direction: Asc})
	s.Apply(InitialContainerListEvent{Host: "a", Containers: []Container{
		{Key: key("a", "x1"), Name: "x", State: StateRunning},
		{Key: key("a", "y1"), Name: "y", State: StateRunning},
	}})
	s.Apply(InitialContainerListEvent{Host: "b", Containers: []Container{
		{Key: key("b", "x2"), Name: "x", State: StateRunning},
		{Key: key("b", "y2"), Name: "y", State: StateRunning},
	}})

	vm := s.ViewModel()
	if len(vm) != 4 {
		t.Fatalf("expected 4 containers, got %d", len(vm))
	}
	want := []ContainerKey{key("a", "x1"), key("a", "y1"), key("b", "x2"), key("b", "y2")}
	for i, w := range want {
		if vm[i].Key != w {
			t.Fatalf("position %d = %v, want %v", i, vm[i].Key, w)
		}
	}
}

func TestStateE3DestructionRetargetsView(t *testing.T) {
	s := NewAppState(false, SortState{})
	k := key("local", "abc123")
	cancelled := false
	s.SpawnLogWorker = func(ContainerKey) context.CancelFunc {
		return func() { cancelled = true }
	}
	s.Apply(InitialContainerListEvent{Host: "local", Containers: []Container{
		{Key: k, Name: "nginx", State: StateRunning},
	}})
	s.Apply(ShowLogViewEvent{})
	if s.View().Kind != ViewLogView {
		t.Fatalf("expected LogView after ShowLogView")
	}

	s.Apply(ContainerDestroyedEvent{Key: k})

	if s.View().Kind != ViewContainerList {
		t.Fatalf("expected fallback to ContainerList, got %v", s.View().Kind)
	}
	if !cancelled {
		t.Fatalf("log worker should be cancelled on destruction of its target")
	}
	if len(s.LogBuffer()) != 0 {
		t.Fatalf("log buffer should be empty after destruction retargets the view")
	}
}

func TestStateE4SearchFiltering(t *testing.T) {
	s := NewAppState(false, SortState{Field: SortName, Direction: Asc})
	s.Apply(InitialContainerListEvent{Host: "local", Containers: []Container{
		{Key: key("local", "1"), Name: "nginx", State: StateRunning},
		{Key: key("local", "2"), Name: "postgres", State: StateRunning},
		{Key: key("local", "3"), Name: "redis", State: StateRunning},
	}})
	s.Apply(EnterSearchModeEvent{})
	s.Apply(SearchKeyEvent{Key: "g"})

	vm := s.ViewModel()
	if len(vm) != 2 || vm[0].Name != "nginx" || vm[1].Name != "postgres" {
		t.Fatalf("visible set = %v, want [nginx postgres]", vm)
	}
	if s.SelectedIndex() != 0 {
		t.Fatalf("selection should clamp to first of filtered list, got index %d", s.SelectedIndex())
	}
}

func TestStateE5ActionSemantics(t *testing.T) {
	s := NewAppState(false, SortState{})
	k := key("local", "abc")
	s.Apply(InitialContainerListEvent{Host: "local", Containers: []Container{
		{Key: k, Name: "x", State: StatePaused},
	}})

	s.Apply(EnterPressedEvent{}) // ContainerList -> ActionMenu
	if s.View().Kind != ViewActionMenu {
		t.Fatalf("expected ActionMenu")
	}
	c := s.containers[k]
	actions := AvailableActions(c.State)
	if len(actions) != 2 || actions[0] != ActionStop || actions[1] != ActionRemove {
		t.Fatalf("available actions for Paused = %v, want [Stop Remove]", actions)
	}

	var executed ContainerAction
	s.ExecuteAction = func(key ContainerKey, a ContainerAction) { executed = a }
	s.Apply(EnterPressedEvent{}) // choose Stop (index 0), ActionMenu -> ContainerList
	if executed != ActionStop {
		t.Fatalf("expected Stop to be executed, got %v", executed)
	}
	if s.View().Kind != ViewContainerList {
		t.Fatalf("expected return to ContainerList after choosing an action")
	}

	s.Apply(ActionInProgressEvent{Key: k, Action: ActionStop})
	if s.containers[k].StatusLine == "" {
		t.Fatalf("expected a transient status line after ActionInProgress")
	}

	s.Apply(ContainerDestroyedEvent{Key: k})
	if len(s.ViewModel()) != 0 {
		t.Fatalf("expected the container removed once the event stream reports destruction")
	}
}

func TestStateE6SparklineTickViaStats(t *testing.T) {
	s := NewAppState(false, SortState{})
	k := key("local", "abc")
	s.Apply(InitialContainerListEvent{Host: "local", Containers: []Container{
		{Key: k, Name: "x", State: StateRunning, Stats: NewContainerStats(20)},
	}})

	cs := NewContainerStats(20)
	for v := 5; v <= 100; v += 5 {
		cs.CPUHistory.Push(float64(v))
		cs.SampleCount++
	}
	s.Apply(ContainerStatEvent{Key: k, Stats: cs})

	got := s.containers[k].Stats
	if got.SampleCount != 20 {
		t.Fatalf("sample_count = %d, want 20", got.SampleCount)
	}
	vals := got.CPUHistory.Values()
	if len(vals) != 20 || vals[0] != 5 || vals[19] != 100 {
		t.Fatalf("cpu_history = %v", vals)
	}

	cs.CPUHistory.Push(100)
	cs.SampleCount++
	s.Apply(ContainerStatEvent{Key: k, Stats: cs})
	vals = s.containers[k].Stats.CPUHistory.Values()
	if vals[0] != 10 || vals[19] != 100 {
		t.Fatalf("after 21st sample, history = %v, want starting at 10 ending at 100", vals)
	}
}

func TestStateResortThrottleProperty7(t *testing.T) {
	s := NewAppState(false, SortState{})
	now := time.Unix(0, 0)
	s.Clock = func() time.Time { return now }

	k := key("local", "abc")
	s.Apply(InitialContainerListEvent{Host: "local", Containers: []Container{
		{Key: k, Name: "x", State: StateRunning, Stats: NewContainerStats(20)},
	}})
	firstResort := s.lastResort

	// Stats-only pressure within the throttle window must not re-trigger a resort.
	s.Apply(ContainerStatEvent{Key: k, Stats: NewContainerStats(20)})
	if s.lastResort != firstResort {
		t.Fatalf("resort ran again within the throttle window")
	}

	now = now.Add(4 * time.Second)
	s.Apply(ContainerStatEvent{Key: k, Stats: NewContainerStats(20)})
	if s.lastResort == firstResort {
		t.Fatalf("resort should have run again after the throttle window elapsed")
	}
}

func TestStateContainerCreatedBypassesThrottleImmediately(t *testing.T) {
	s := NewAppState(false, SortState{})
	now := time.Unix(0, 0)
	s.Clock = func() time.Time { return now }
	s.Apply(InitialContainerListEvent{Host: "local", Containers: nil})

	s.Apply(ContainerCreatedEvent{Container: Container{Key: key("local", "a"), Name: "a", State: StateRunning}})
	if len(s.ViewModel()) != 1 {
		t.Fatalf("expected the newly created container to appear immediately")
	}
}

func TestStateInvariantHostIdMatchesKey(t *testing.T) {
	s := NewAppState(true, SortState{})
	s.Apply(InitialContainerListEvent{Host: "h1", Containers: []Container{
		{Key: key("h1", "1"), Name: "a", State: StateRunning, HostId: "h1"},
	}})
	for _, c := range s.ViewModel() {
		if c.Key.HostId != c.HostId && c.HostId != "" {
			t.Fatalf("invariant 1 violated: key host %v != container host %v", c.Key.HostId, c.HostId)
		}
	}
}

func TestStateOneStatWorkerPerContainer(t *testing.T) {
	s := NewAppState(true, SortState{})
	spawnCount := 0
	s.SpawnStatWorker = func(ContainerKey) context.CancelFunc {
		spawnCount++
		return func() {}
	}
	k := key("local", "a")
	c := Container{Key: k, Name: "a", State: StateRunning}
	s.Apply(ContainerCreatedEvent{Container: c})
	s.Apply(ContainerCreatedEvent{Container: c}) // duplicate create must not spawn a second worker
	if spawnCount != 1 {
		t.Fatalf("spawn count = %d, want 1 (invariant 7: at most one worker per container)", spawnCount)
	}
}
