// Package action implements the Action Executor (spec.md §4.7): one task
// per user-triggered container lifecycle action, translating a
// core.ContainerAction into the matching dockerx.Client call and
// reporting progress back onto the shared event channel. Grounded on the
// performActionAsync pattern in other_examples' eviltik-docker-tui
// src/model.go (emit an in-progress state, run the call off the main
// loop, emit a toast-style result), adapted to dtop's AppEvent channel
// instead of a bubbletea toastMsg.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

// stopTimeout is the grace period Docker allows a container to exit
// cleanly before sending SIGKILL, for both Stop and Restart (spec.md
// §4.7 table).
const stopTimeout = 10 * time.Second

// callTimeout bounds how long the Executor waits for the daemon to
// answer at all, independent of Docker's own stop/restart grace period.
const callTimeout = 30 * time.Second

// Executor runs one action at a time against a single host's client; the
// caller spawns one goroutine per user-triggered action (spec.md §4.7,
// "Spawned per user action").
type Executor struct {
	client dockerx.Client
}

// New builds an Executor bound to one host's Docker client.
func New(client dockerx.Client) *Executor {
	return &Executor{client: client}
}

// Run performs action against fullID and reports ActionInProgress,
// then ActionSuccess or ActionError, onto out. It is meant to be called
// as `go executor.Run(...)`; it blocks until the Docker call returns.
func (e *Executor) Run(ctx context.Context, key core.ContainerKey, fullID string, action core.ContainerAction, out chan<- core.AppEvent) {
	send(out, core.ActionInProgressEvent{Key: key, Action: action})

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var err error
	switch action {
	case core.ActionStart:
		err = e.client.Start(callCtx, fullID)
	case core.ActionStop:
		timeout := stopTimeout
		err = e.client.Stop(callCtx, fullID, &timeout)
	case core.ActionRestart:
		timeout := stopTimeout
		err = e.client.Restart(callCtx, fullID, &timeout)
	case core.ActionRemove:
		err = e.client.Remove(callCtx, fullID)
	default:
		err = fmt.Errorf("action: unknown action %v", action)
	}

	if err != nil {
		send(out, core.ActionErrorEvent{Key: key, Action: action, Message: err.Error()})
		return
	}
	send(out, core.ActionSuccessEvent{Key: key, Action: action})
}

func send(out chan<- core.AppEvent, e core.AppEvent) {
	select {
	case out <- e:
	case <-time.After(5 * time.Second):
	}
}
