// Package logstream implements the Log Stream Worker (spec.md §4.3): a
// singleton task started when the UI enters LogView and cancelled on
// exit, requesting the last 100 lines then following live, ANSI-decoding
// each line once at arrival. Grounded on siftail's internal/input's log
// line framing (timestamp-prefix parsing, sequence numbering) adapted
// from its multi-source log reader to a single Docker container stream.
package logstream

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

// tailLines is the backlog requested before following live (spec.md §4.3).
const tailLines = 100

// Spawn starts the worker for fullID and returns a cancel func that stops
// it promptly (spec.md §4.3, "bounded by one line latency"); the worker
// itself exits when the underlying stream ends or ctx is cancelled.
func Spawn(parent context.Context, client dockerx.Client, key core.ContainerKey, fullID string, out chan<- core.AppEvent) context.CancelFunc {
	ctx, cancel := context.WithCancel(parent)
	go run(ctx, client, key, fullID, out)
	return cancel
}

func run(ctx context.Context, client dockerx.Client, key core.ContainerKey, fullID string, out chan<- core.AppEvent) {
	stream, err := client.Logs(ctx, fullID, tailLines, "")
	if err != nil {
		return
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var seq uint64
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		entry := parseLine(scanner.Text(), seq)
		seq++

		select {
		case out <- core.LogLineEvent{Key: key, Entry: entry}:
		case <-ctx.Done():
			return
		}
	}
}

// parseLine splits a Docker log line into its RFC3339 timestamp prefix
// and body (spec.md §4.3); a line with no parseable prefix gets the
// receive time and its full text as the body.
func parseLine(line string, seq uint64) core.LogEntry {
	ts := time.Now()
	body := line

	if sp := strings.IndexByte(line, ' '); sp > 0 {
		if t, err := time.Parse(time.RFC3339Nano, line[:sp]); err == nil {
			ts = t
			body = line[sp+1:]
		}
	}

	return core.LogEntry{
		Seq:    seq,
		Time:   ts,
		Styled: core.DecodeANSI(body),
	}
}
