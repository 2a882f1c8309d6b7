package hostmgr

import (
	"context"

	"github.com/siftail/dtop/internal/core"
	"github.com/siftail/dtop/internal/dockerx"
)

// runStatsWorker is the Stats Stream Worker (spec.md §4.2): one per
// running container, owning its own ContainerStats accumulator so no
// lock is needed (only this goroutine ever writes cs). It terminates on
// stream end, cancellation, or transport error; the Host Manager is
// responsible for the corresponding ContainerDestroyed event.
func runStatsWorker(ctx context.Context, client dockerx.Client, fullID string, key core.ContainerKey, out chan<- core.AppEvent) {
	raws, errc := client.Stats(ctx, fullID)
	cs := core.NewContainerStats(HistoryCap)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errc:
			if ok && err != nil {
				return
			}
		case raw, ok := <-raws:
			if !ok {
				return
			}
			sample := core.RawSample{
				Valid:       true,
				CPUTotal:    raw.CPUTotal,
				SystemTotal: raw.SystemTotal,
				NetRxBytes:  raw.NetRxBytes,
				NetTxBytes:  raw.NetTxBytes,
				At:          raw.At,
			}
			if !core.ApplyRawSample(&cs, sample, raw.OnlineCPUs, raw.MemUsed, raw.MemLimit) {
				continue
			}

			snapshot := cs
			snapshot.CPUHistory = cs.CPUHistory.Clone()
			snapshot.MemoryHistory = cs.MemoryHistory.Clone()

			select {
			case out <- core.ContainerStatEvent{Key: key, Stats: snapshot}:
			case <-ctx.Done():
				return
			}
		}
	}
}
