package dockerx

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// FakeClient implements Client entirely in memory, grounded on siftail's
// internal/dockerx/fake.go, extended with the event/stats/lifecycle
// surface the expanded Client interface adds. It lets internal/hostmgr
// and internal/action tests drive a deterministic daemon without a real
// Docker socket.
type FakeClient struct {
	mu         sync.Mutex
	containers map[string]ContainerSummary
	logLines   map[string][]string
	events     chan Event
	stats      map[string]chan RawStat
	errors     map[string]error

	started, stopped, restarted, removed []string
}

// NewFakeClient creates an empty fake daemon.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		containers: make(map[string]ContainerSummary),
		logLines:   make(map[string][]string),
		events:     make(chan Event, 64),
		stats:      make(map[string]chan RawStat),
		errors:     make(map[string]error),
	}
}

// AddContainer registers a container as present on the fake daemon.
func (f *FakeClient) AddContainer(c ContainerSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[c.ID] = c
}

// AddLogLines queues raw (unprefixed) lines to be streamed back by Logs.
func (f *FakeClient) AddLogLines(id string, lines []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logLines[id] = append(f.logLines[id], lines...)
}

// PushEvent injects one event as if it arrived on the Docker event
// stream; it is delivered to whatever Events() channel is currently open.
func (f *FakeClient) PushEvent(e Event) { f.events <- e }

// PushStat injects one raw sample for id, delivered to a caller that has
// an open Stats(id) channel (tests must call Stats before PushStat).
func (f *FakeClient) PushStat(id string, s RawStat) {
	f.mu.Lock()
	ch, ok := f.stats[id]
	f.mu.Unlock()
	if ok {
		ch <- s
	}
}

// SetError makes the named method return err on its next call.
func (f *FakeClient) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method] = err
}

func (f *FakeClient) takeError(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.errors[method]
	delete(f.errors, method)
	return err
}

func (f *FakeClient) Ping(ctx context.Context) error { return f.takeError("Ping") }
func (f *FakeClient) Close() error                   { return f.takeError("Close") }

func (f *FakeClient) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerSummary, error) {
	if err := f.takeError("ListContainers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ContainerSummary, 0, len(f.containers))
	for _, c := range f.containers {
		out = append(out, c)
	}
	return out, nil
}

func (f *FakeClient) Inspect(ctx context.Context, id string) (ContainerSummary, error) {
	if err := f.takeError("Inspect"); err != nil {
		return ContainerSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.containers[id]
	if !ok {
		return ContainerSummary{}, fmt.Errorf("dockerx: fake: container not found: %s", id)
	}
	return c, nil
}

func (f *FakeClient) Events(ctx context.Context, opts EventOptions) (<-chan Event, <-chan error) {
	errc := make(chan error, 1)
	if err := f.takeError("Events"); err != nil {
		errc <- err
		closed := make(chan Event)
		close(closed)
		return closed, errc
	}
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-f.events:
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errc
}

func (f *FakeClient) Stats(ctx context.Context, id string) (<-chan RawStat, <-chan error) {
	errc := make(chan error, 1)
	if err := f.takeError("Stats"); err != nil {
		errc <- err
		closed := make(chan RawStat)
		close(closed)
		return closed, errc
	}
	ch := make(chan RawStat, 8)
	f.mu.Lock()
	f.stats[id] = ch
	f.mu.Unlock()

	out := make(chan RawStat)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-ch:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errc
}

func (f *FakeClient) Logs(ctx context.Context, id string, tail int, since string) (io.ReadCloser, error) {
	if err := f.takeError("Logs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	lines := append([]string(nil), f.logLines[id]...)
	f.mu.Unlock()

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		for _, line := range lines {
			select {
			case <-ctx.Done():
				return
			default:
				ts := time.Now().UTC().Format(time.RFC3339Nano)
				fmt.Fprintf(pw, "%s %s\n", ts, line)
			}
		}
	}()
	return pr, nil
}

func (f *FakeClient) Start(ctx context.Context, id string) error {
	if err := f.takeError("Start"); err != nil {
		return err
	}
	f.mu.Lock()
	f.started = append(f.started, id)
	f.mu.Unlock()
	return nil
}

func (f *FakeClient) Stop(ctx context.Context, id string, timeout *time.Duration) error {
	if err := f.takeError("Stop"); err != nil {
		return err
	}
	f.mu.Lock()
	f.stopped = append(f.stopped, id)
	f.mu.Unlock()
	return nil
}

func (f *FakeClient) Restart(ctx context.Context, id string, timeout *time.Duration) error {
	if err := f.takeError("Restart"); err != nil {
		return err
	}
	f.mu.Lock()
	f.restarted = append(f.restarted, id)
	f.mu.Unlock()
	return nil
}

func (f *FakeClient) Remove(ctx context.Context, id string) error {
	if err := f.takeError("Remove"); err != nil {
		return err
	}
	f.mu.Lock()
	f.removed = append(f.removed, id)
	delete(f.containers, id)
	f.mu.Unlock()
	return nil
}

// Calls returns the lifecycle-call IDs recorded so far, for assertions.
func (f *FakeClient) Calls() (started, stopped, restarted, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...),
		append([]string(nil), f.stopped...),
		append([]string(nil), f.restarted...),
		append([]string(nil), f.removed...)
}

var _ Client = (*FakeClient)(nil)
