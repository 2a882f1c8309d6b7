package core

// ApplyRawSample folds one raw stats sample into cs, computing CPU/memory
// percentages and network rates, smoothing them with an EMA, and appending
// to the sparkline histories. It returns false when the sample only seeds
// cs.LastRaw and produced no metric — either because it is the very first
// sample for this container, or because the deltas against the previous
// sample were degenerate (spec.md §7, StatsMathError: "clamp to 0, treat
// this sample as seed-only").
//
// The math is grounded in the CPU/working-set calculation used across the
// pack's Docker monitors (darthnorse-dockmon's shared/docker/stats.go);
// the EMA smoothing and bounded history are dtop-specific per spec.md §4.2.
func ApplyRawSample(cs *ContainerStats, raw RawSample, onlineCPUs int, memUsed, memLimit uint64) bool {
	if onlineCPUs <= 0 {
		onlineCPUs = 1
	}

	prev := cs.LastRaw
	cs.LastRaw = raw

	if !prev.Valid {
		// First sample for this container: seed only, no metric yet.
		return false
	}

	cpuDelta := float64(raw.CPUTotal) - float64(prev.CPUTotal)
	sysDelta := float64(raw.SystemTotal) - float64(prev.SystemTotal)

	if cpuDelta < 0 || sysDelta <= 0 {
		// StatsMathError: a counter reset or non-monotonic sample. Clamp
		// and reseed without advancing smoothing/history/sample_count.
		return false
	}

	cpuPct := cpuDelta / sysDelta * float64(onlineCPUs) * 100

	memPct := 0.0
	if memLimit > 0 {
		memPct = float64(memUsed) / float64(memLimit) * 100
	}

	elapsed := raw.At.Sub(prev.At).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	rxDelta := float64(raw.NetRxBytes) - float64(prev.NetRxBytes)
	if rxDelta < 0 {
		rxDelta = 0
	}
	txDelta := float64(raw.NetTxBytes) - float64(prev.NetTxBytes)
	if txDelta < 0 {
		txDelta = 0
	}
	rxRate := rxDelta / elapsed
	txRate := txDelta / elapsed

	cs.CPUPercent = ema(cs.CPUPercent, cs.hasEMA, cpuPct)
	cs.MemoryPercent = ema(cs.MemoryPercent, cs.hasEMA, memPct)
	cs.NetRxRate = ema(cs.NetRxRate, cs.hasEMA, rxRate)
	cs.NetTxRate = ema(cs.NetTxRate, cs.hasEMA, txRate)
	cs.hasEMA = true

	cs.MemoryUsed = memUsed
	cs.MemoryLimit = memLimit

	if cs.CPUHistory == nil {
		cs.CPUHistory = NewSparkline(20)
	}
	if cs.MemoryHistory == nil {
		cs.MemoryHistory = NewSparkline(20)
	}
	cs.CPUHistory.Push(cs.CPUPercent)
	cs.MemoryHistory.Push(cs.MemoryPercent)
	cs.SampleCount++

	return true
}
