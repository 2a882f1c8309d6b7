package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

func drain(t *testing.T, ch <-chan core.AppEvent, want int) []core.AppEvent {
	t.Helper()
	out := make([]core.AppEvent, 0, want)
	require.Eventually(t, func() bool {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
		}
		return len(out) >= want
	}, 2*time.Second, 5*time.Millisecond, "timed out after %d/%d events: %+v", len(out), want, out)
	return out
}

func TestExecutorStopSucceeds(t *testing.T) {
	fake := dockerx.NewFakeClient()
	fake.AddContainer(dockerx.ContainerSummary{ID: "c1", Name: "web", State: "running"})
	out := make(chan core.AppEvent, 4)
	key := core.ContainerKey{HostId: "local", ContainerId: "c1"}

	New(fake).Run(context.Background(), key, "c1", core.ActionStop, out)

	events := drain(t, out, 2)
	if _, ok := events[0].(core.ActionInProgressEvent); !ok {
		t.Fatalf("expected ActionInProgressEvent first, got %T", events[0])
	}
	success, ok := events[1].(core.ActionSuccessEvent)
	if !ok || success.Action != core.ActionStop {
		t.Fatalf("expected ActionSuccessEvent{Stop}, got %+v", events[1])
	}
	started, stopped, _, _ := fake.Calls()
	if len(started) != 0 || len(stopped) != 1 {
		t.Fatalf("unexpected calls: stopped=%v", stopped)
	}
}

func TestExecutorErrorReported(t *testing.T) {
	fake := dockerx.NewFakeClient()
	fake.SetError("Remove", errors.New("boom"))
	out := make(chan core.AppEvent, 4)
	key := core.ContainerKey{HostId: "local", ContainerId: "c1"}

	New(fake).Run(context.Background(), key, "c1", core.ActionRemove, out)

	events := drain(t, out, 2)
	errEvt, ok := events[1].(core.ActionErrorEvent)
	if !ok || errEvt.Action != core.ActionRemove || errEvt.Message == "" {
		t.Fatalf("expected ActionErrorEvent{Remove}, got %+v", events[1])
	}
}
