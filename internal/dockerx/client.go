// Package dockerx is the capability boundary between the core state
// machine and an actual Docker daemon. Every host transport (local
// socket, tcp, tls, ssh) implements the same Client interface; nothing
// above this package imports the Docker SDK directly (spec.md §9,
// "polymorphism over Docker backends: the set of transports varies only
// in how a Docker client is constructed").
package dockerx

import (
	"context"
	"io"
	"time"
)

// Client is the capability set a Host Manager needs from one Docker
// daemon (spec.md §9): list, inspect, events, stats, logs, start, stop,
// restart, remove, plus a startup Ping and a Close for teardown.
type Client interface {
	Ping(ctx context.Context) error
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerSummary, error)
	Inspect(ctx context.Context, id string) (ContainerSummary, error)
	Events(ctx context.Context, opts EventOptions) (<-chan Event, <-chan error)
	Stats(ctx context.Context, id string) (<-chan RawStat, <-chan error)
	Logs(ctx context.Context, id string, tail int, since string) (io.ReadCloser, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string, timeout *time.Duration) error
	Restart(ctx context.Context, id string, timeout *time.Duration) error
	Remove(ctx context.Context, id string) error
	Close() error
}

// ListOptions controls ListContainers filtering. Filters is the
// flattened same-key-OR/cross-key-AND filter set described in spec.md
// §4.1/§6; each key maps to the set of values that key may take.
type ListOptions struct {
	Filters map[string][]string
	All     bool
}

// EventOptions carries the filter subset the events API accepts after
// the Host Manager's filter-discipline pass has stripped listing-only
// keys (spec.md §4.1).
type EventOptions struct {
	Filters map[string][]string
}

// ContainerSummary is the transport-neutral shape dockerx hands to
// internal/hostmgr, which turns it into a core.Container.
type ContainerSummary struct {
	ID         string
	Name       string
	State      string
	Health     string
	HasHealth  bool
	Created    time.Time
	HasCreated bool
}

// EventKind discriminates the subset of Docker events the Host Manager
// cares about (spec.md §4.1).
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStart
	EventDestroyed // die, destroy, stop, kill all collapse to this
	EventHealth
)

// Event is one message off the Docker event stream, already reduced to
// the kind the Host Manager acts on.
type Event struct {
	Kind        EventKind
	ContainerID string
	Health      string // populated only when Kind == EventHealth
}

// RawStat is one decoded sample off the Docker stats stream, in the raw
// counter form core.ApplyRawSample expects as input.
type RawStat struct {
	CPUTotal    uint64
	SystemTotal uint64
	OnlineCPUs  int
	MemUsed     uint64
	MemLimit    uint64
	NetRxBytes  uint64
	NetTxBytes  uint64
	At          time.Time
}
