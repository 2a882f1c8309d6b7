// Package hostmgr owns the Host Manager and Stats Stream Worker (spec.md
// §4.1, §4.2): one task per configured Docker daemon, translating its
// container lifecycle and stats streams into core.AppEvent values fed to
// the Event Dispatcher. Grounded on siftail's internal/input/docker.go
// shape (a discovery loop plus one goroutine per active stream, tracked
// in a map of cancel funcs), generalized from log streaming to container
// lifecycle + stats streaming across potentially many hosts.
package hostmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

// HistoryCap is H from spec.md §4.2: the sparkline capacity every fresh
// ContainerStats is seeded with.
const HistoryCap = 20

// Manager owns one host's connection lifecycle. Containers and stat
// worker cancel funcs are only ever touched from the goroutine running
// Run, so no lock guards them (spec.md §5, single-writer discipline
// applied per task rather than globally).
type Manager struct {
	HostId       core.HostId
	client       dockerx.Client
	listFilters  map[string][]string
	all          bool
	eventFilters map[string][]string
	droppedKeys  []string
	dozzleURL    string
	out          chan<- core.AppEvent

	containers  map[string]core.ContainerState
	statCancel  map[string]context.CancelFunc
}

// New builds a Manager for one host. listFilters/all are applied to
// ContainerList; eventFilters/droppedKeys are the Filter discipline
// output of hostspec.EventFilters.
func New(hostId core.HostId, client dockerx.Client, listFilters map[string][]string, all bool, eventFilters map[string][]string, droppedKeys []string, dozzleURL string, out chan<- core.AppEvent) *Manager {
	return &Manager{
		HostId:       hostId,
		client:       client,
		listFilters:  listFilters,
		all:          all,
		eventFilters: eventFilters,
		droppedKeys:  droppedKeys,
		dozzleURL:    dozzleURL,
		out:          out,
		containers:   make(map[string]core.ContainerState),
		statCancel:   make(map[string]context.CancelFunc),
	}
}

func (m *Manager) emit(e core.AppEvent) {
	// The dispatcher is the single consumer and should never block for
	// long; dropping here would desync state, so we wait instead of
	// silently losing an event.
	m.out <- e
}

// Run drives the connect/subscribe/retry lifecycle until ctx is
// cancelled. A failed initial connect exits the task immediately (spec.md
// §4.1, "on failure, emit a non-fatal diagnostic and exit the task");
// a disconnect after a successful startup retries forever with bounded
// backoff, since the daemon may come back.
func (m *Manager) Run(ctx context.Context) {
	if len(m.droppedKeys) > 0 {
		m.emit(core.DiagnosticEvent{
			Host:    m.HostId,
			Kind:    core.DiagFilterIncompatible,
			Message: fmt.Sprintf("filters not supported by the events API, dropped for event subscription: %v", m.droppedKeys),
		})
	}

	if err := m.client.Ping(ctx); err != nil {
		m.emit(core.DiagnosticEvent{Host: m.HostId, Kind: core.DiagTransportError, Message: fmt.Sprintf("connect: %v", err)})
		return
	}
	if err := m.listAndEmitInitial(ctx); err != nil {
		m.emit(core.DiagnosticEvent{Host: m.HostId, Kind: core.DiagTransportError, Message: fmt.Sprintf("list containers: %v", err)})
		return
	}

	bo := newBackoff()
	for {
		if ctx.Err() != nil {
			return
		}

		err := m.streamEvents(ctx)
		if ctx.Err() != nil {
			return
		}

		m.destroyAllTracked()
		if err != nil {
			m.emit(core.DiagnosticEvent{Host: m.HostId, Kind: core.DiagTransportError, Message: fmt.Sprintf("event stream: %v", err)})
		}

		wait := bo.next()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := m.client.Ping(ctx); err != nil {
			continue
		}
		if err := m.listAndEmitInitial(ctx); err != nil {
			continue
		}
		bo.reset()
	}
}

func (m *Manager) listAndEmitInitial(ctx context.Context) error {
	summaries, err := m.client.ListContainers(ctx, dockerx.ListOptions{Filters: m.listFilters, All: m.all})
	if err != nil {
		return err
	}

	list := make([]core.Container, 0, len(summaries))
	m.containers = make(map[string]core.ContainerState, len(summaries))
	for id, cancel := range m.statCancel {
		cancel()
		delete(m.statCancel, id)
	}

	for _, s := range summaries {
		c := m.toContainer(s)
		list = append(list, c)
		m.containers[s.ID] = c.State
		if c.State == core.StateRunning {
			m.startStatWorker(ctx, s.ID, c.Key)
		}
	}

	m.emit(core.InitialContainerListEvent{Host: m.HostId, Containers: list})
	return nil
}

func (m *Manager) toContainer(s dockerx.ContainerSummary) core.Container {
	c := core.Container{
		Key:       core.ContainerKey{HostId: m.HostId, ContainerId: core.ShortID(s.ID)},
		Name:      s.Name,
		State:     core.ParseContainerState(s.State),
		HostId:    m.HostId,
		DozzleURL: m.dozzleURL,
		Stats:     core.NewContainerStats(HistoryCap),
	}
	if s.HasHealth {
		if h, ok := core.ParseHealthStatus(s.Health); ok {
			c.Health = h
			c.HasHealth = true
		}
	}
	if s.HasCreated {
		c.Created = s.Created
		c.HasCreated = true
	}
	return c
}

// streamEvents subscribes to the Docker event stream and translates
// messages into AppEvents until the stream ends or errors, returning
// that terminal error (nil on clean ctx cancellation).
func (m *Manager) streamEvents(ctx context.Context) error {
	events, errc := m.client.Events(ctx, dockerx.EventOptions{Filters: m.eventFilters})
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errc:
			if ok && err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, ev dockerx.Event) {
	switch ev.Kind {
	case dockerx.EventStart:
		summary, err := m.client.Inspect(ctx, ev.ContainerID)
		if err != nil {
			return
		}
		c := m.toContainer(summary)
		m.containers[ev.ContainerID] = c.State
		m.emit(core.ContainerCreatedEvent{Container: c})
		if c.State == core.StateRunning {
			m.startStatWorker(ctx, ev.ContainerID, c.Key)
		}
	case dockerx.EventDestroyed:
		key := core.ContainerKey{HostId: m.HostId, ContainerId: core.ShortID(ev.ContainerID)}
		m.stopStatWorker(ev.ContainerID)
		delete(m.containers, ev.ContainerID)
		m.emit(core.ContainerDestroyedEvent{Key: key})
	case dockerx.EventHealth:
		if h, ok := core.ParseHealthStatus(ev.Health); ok {
			key := core.ContainerKey{HostId: m.HostId, ContainerId: core.ShortID(ev.ContainerID)}
			m.emit(core.ContainerHealthChangedEvent{Key: key, Health: h})
		}
	}
}

func (m *Manager) startStatWorker(ctx context.Context, fullID string, key core.ContainerKey) {
	m.stopStatWorker(fullID)
	workerCtx, cancel := context.WithCancel(ctx)
	m.statCancel[fullID] = cancel
	go runStatsWorker(workerCtx, m.client, fullID, key, m.out)
}

func (m *Manager) stopStatWorker(fullID string) {
	if cancel, ok := m.statCancel[fullID]; ok {
		cancel()
		delete(m.statCancel, fullID)
	}
}

// destroyAllTracked synthesizes a ContainerDestroyed for every container
// this manager still believes exists, on connection loss (spec.md §4.1).
func (m *Manager) destroyAllTracked() {
	for id, cancel := range m.statCancel {
		cancel()
		delete(m.statCancel, id)
	}
	for id := range m.containers {
		key := core.ContainerKey{HostId: m.HostId, ContainerId: core.ShortID(id)}
		m.emit(core.ContainerDestroyedEvent{Key: key})
	}
	m.containers = make(map[string]core.ContainerState)
}
