package hostmgr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

// drain collects want events off ch, polling with require.Eventually so a
// slow-arriving event fails with a clear "got so far" message instead of a
// bare timeout.
func drain(t *testing.T, ch <-chan core.AppEvent, want int, timeout time.Duration) []core.AppEvent {
	t.Helper()
	var mu sync.Mutex
	out := make([]core.AppEvent, 0, want)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				mu.Lock()
				out = append(out, e)
				done := len(out) >= want
				mu.Unlock()
				if done {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(out) >= want
	}, timeout, 5*time.Millisecond, "timed out waiting for %d events", want)

	close(stop)
	mu.Lock()
	defer mu.Unlock()
	return append([]core.AppEvent(nil), out...)
}

func TestManagerEmitsInitialContainerList(t *testing.T) {
	fake := dockerx.NewFakeClient()
	fake.AddContainer(dockerx.ContainerSummary{ID: "c1", Name: "web", State: "running"})
	fake.AddContainer(dockerx.ContainerSummary{ID: "c2", Name: "db", State: "exited"})

	events := make(chan core.AppEvent, 16)
	mgr := New("local", fake, nil, false, nil, nil, "", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	got := drain(t, events, 1, 2*time.Second)
	initial, ok := got[0].(core.InitialContainerListEvent)
	if !ok {
		t.Fatalf("expected InitialContainerListEvent, got %T", got[0])
	}
	if initial.Host != "local" || len(initial.Containers) != 2 {
		t.Fatalf("unexpected initial list: %+v", initial)
	}
}

func TestManagerStartEventSpawnsCreatedAndStats(t *testing.T) {
	fake := dockerx.NewFakeClient()
	events := make(chan core.AppEvent, 16)
	mgr := New("local", fake, nil, false, nil, nil, "", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	drain(t, events, 1, time.Second) // initial (empty) list

	fake.AddContainer(dockerx.ContainerSummary{ID: "abc123456789", Name: "worker", State: "running"})
	fake.PushEvent(dockerx.Event{Kind: dockerx.EventStart, ContainerID: "abc123456789"})

	got := drain(t, events, 1, 2*time.Second)
	created, ok := got[0].(core.ContainerCreatedEvent)
	if !ok {
		t.Fatalf("expected ContainerCreatedEvent, got %T", got[0])
	}
	if created.Container.Name != "worker" {
		t.Fatalf("unexpected created container: %+v", created.Container)
	}

	time.Sleep(50 * time.Millisecond) // let the spawned stats worker register with the fake client
	fake.PushStat("abc123456789", dockerx.RawStat{CPUTotal: 100, SystemTotal: 1000, OnlineCPUs: 2, At: time.Now()})
	fake.PushStat("abc123456789", dockerx.RawStat{CPUTotal: 150, SystemTotal: 1500, OnlineCPUs: 2, At: time.Now().Add(time.Second)})

	got = drain(t, events, 1, 2*time.Second)
	stat, ok := got[0].(core.ContainerStatEvent)
	if !ok {
		t.Fatalf("expected ContainerStatEvent, got %T", got[0])
	}
	if stat.Key.ContainerId != core.ShortID("abc123456789") {
		t.Fatalf("unexpected stat key: %+v", stat.Key)
	}
}

func TestManagerDestroyEventRemovesContainer(t *testing.T) {
	fake := dockerx.NewFakeClient()
	fake.AddContainer(dockerx.ContainerSummary{ID: "c1", Name: "web", State: "running"})
	events := make(chan core.AppEvent, 16)
	mgr := New("local", fake, nil, false, nil, nil, "", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	drain(t, events, 1, time.Second)

	fake.PushEvent(dockerx.Event{Kind: dockerx.EventDestroyed, ContainerID: "c1"})
	got := drain(t, events, 1, 2*time.Second)
	destroyed, ok := got[0].(core.ContainerDestroyedEvent)
	if !ok {
		t.Fatalf("expected ContainerDestroyedEvent, got %T", got[0])
	}
	if destroyed.Key.ContainerId != core.ShortID("c1") {
		t.Fatalf("unexpected destroyed key: %+v", destroyed.Key)
	}
}

func TestManagerStartupPingFailureEmitsDiagnosticAndExits(t *testing.T) {
	fake := dockerx.NewFakeClient()
	fake.SetError("Ping", context.DeadlineExceeded)
	events := make(chan core.AppEvent, 4)
	mgr := New("remote", fake, nil, false, nil, nil, "", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { mgr.Run(ctx); close(done) }()

	got := drain(t, events, 1, 2*time.Second)
	diag, ok := got[0].(core.DiagnosticEvent)
	if !ok || diag.Kind != core.DiagTransportError {
		t.Fatalf("expected transport DiagnosticEvent, got %+v", got[0])
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after startup ping failure")
	}
}

func TestManagerDroppedFilterKeysEmitDiagnostic(t *testing.T) {
	fake := dockerx.NewFakeClient()
	events := make(chan core.AppEvent, 4)
	mgr := New("local", fake, nil, false, nil, []string{"status"}, "", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	got := drain(t, events, 2, 2*time.Second)
	foundDiag := false
	for _, e := range got {
		if d, ok := e.(core.DiagnosticEvent); ok && d.Kind == core.DiagFilterIncompatible {
			foundDiag = true
		}
	}
	if !foundDiag {
		t.Fatalf("expected a FilterIncompatible diagnostic, got %+v", got)
	}
}
