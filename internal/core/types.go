// Package core owns the state machine at the heart of dtop: the container
// map, sort/filter/search, the log buffer, and the view state. Nothing in
// this package touches a terminal or the Docker API; it is driven entirely
// by events and produces data the tui package renders.
package core

import "time"

// HostId is the stable identifier derived from a host specifier (see
// hostspec.Spec.HostId). It is the primary key for everything host-scoped.
type HostId string

// ContainerKey uniquely identifies a container within a single run.
type ContainerKey struct {
	HostId      HostId
	ContainerId string // truncated to 12 hex chars
}

// ShortID truncates a full Docker container ID to the 12-character form
// used for display and lookup.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// ContainerState mirrors the Docker container state machine.
type ContainerState int

const (
	StateUnknown ContainerState = iota
	StateCreated
	StateRestarting
	StateRunning
	StateRemoving
	StatePaused
	StateExited
	StateDead
)

func (s ContainerState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRestarting:
		return "restarting"
	case StateRunning:
		return "running"
	case StateRemoving:
		return "removing"
	case StatePaused:
		return "paused"
	case StateExited:
		return "exited"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ParseContainerState maps a Docker API state string onto ContainerState.
func ParseContainerState(s string) ContainerState {
	switch s {
	case "created":
		return StateCreated
	case "restarting":
		return StateRestarting
	case "running":
		return StateRunning
	case "removing":
		return StateRemoving
	case "paused":
		return StatePaused
	case "exited":
		return StateExited
	case "dead":
		return StateDead
	default:
		return StateUnknown
	}
}

// HealthStatus mirrors a container healthcheck's reported status.
type HealthStatus int

const (
	HealthNone HealthStatus = iota
	HealthStarting
	HealthHealthy
	HealthUnhealthy
)

func (h HealthStatus) String() string {
	switch h {
	case HealthStarting:
		return "starting"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return ""
	}
}

// ParseHealthStatus maps a Docker health_status event suffix onto HealthStatus.
func ParseHealthStatus(s string) (HealthStatus, bool) {
	switch s {
	case "healthy":
		return HealthHealthy, true
	case "unhealthy":
		return HealthUnhealthy, true
	case "starting":
		return HealthStarting, true
	default:
		return HealthNone, false
	}
}

// RawSample is the previous raw stats snapshot kept to compute deltas on
// the next sample (spec: "last_raw snapshot").
type RawSample struct {
	Valid        bool
	CPUTotal     uint64
	SystemTotal  uint64
	NetRxBytes   uint64
	NetTxBytes   uint64
	At           time.Time
}

// ContainerStats holds the smoothed, render-ready resource metrics plus
// their bounded sparkline histories.
type ContainerStats struct {
	CPUPercent    float64
	MemoryPercent float64
	MemoryUsed    uint64
	MemoryLimit   uint64
	NetRxRate     float64 // bytes/sec, smoothed
	NetTxRate     float64 // bytes/sec, smoothed

	CPUHistory    *Sparkline
	MemoryHistory *Sparkline
	SampleCount   uint64

	hasEMA  bool // whether cpu/mem/net EMA state has been seeded
	LastRaw RawSample
}

// NewContainerStats returns a zero-value ContainerStats with histories of
// the given capacity (H in the spec, default 20) ready to receive samples.
func NewContainerStats(historyCap int) ContainerStats {
	return ContainerStats{
		CPUHistory:    NewSparkline(historyCap),
		MemoryHistory: NewSparkline(historyCap),
	}
}

// Container is the mapping-value keyed by ContainerKey in the App State
// Machine's container map.
type Container struct {
	Key       ContainerKey
	Name      string
	State     ContainerState
	Health    HealthStatus
	HasHealth bool
	Created   time.Time
	HasCreated bool
	Stats     ContainerStats
	HostId    HostId
	DozzleURL string // optional; empty if the host has none configured

	// StatusLine holds a transient action-result message ("starting...",
	// "stop failed: ...") that auto-expires (see AppState.ExpireActionStatuses).
	StatusLine     string
	StatusExpireAt time.Time
}

// LogEntry is one line in the log buffer: a parsed timestamp plus text
// that has already been ANSI-decoded into styled spans at arrival time.
type LogEntry struct {
	Seq       uint64
	Time      time.Time
	Styled    StyledText
}

// SortField enumerates the columns the container table can be sorted by.
type SortField int

const (
	SortUptime SortField = iota
	SortName
	SortCPU
	SortMemory
)

func (f SortField) String() string {
	switch f {
	case SortUptime:
		return "uptime"
	case SortName:
		return "name"
	case SortCPU:
		return "cpu"
	case SortMemory:
		return "memory"
	default:
		return "uptime"
	}
}

// ParseSortField accepts the long form and the single-letter synonyms
// documented in spec.md §6 (u|n|c|m).
func ParseSortField(s string) (SortField, bool) {
	switch s {
	case "uptime", "u":
		return SortUptime, true
	case "name", "n":
		return SortName, true
	case "cpu", "c":
		return SortCPU, true
	case "memory", "m":
		return SortMemory, true
	default:
		return SortUptime, false
	}
}

// SortDirection is ascending or descending.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// DefaultDirection returns the default sort direction for a field, per
// spec.md §3 ("Default direction per field").
func DefaultDirection(f SortField) SortDirection {
	switch f {
	case SortName:
		return Asc
	default:
		return Desc
	}
}

// SortState is the active (field, direction) pair.
type SortState struct {
	Field     SortField
	Direction SortDirection
}

// ViewKind discriminates the four mutually exclusive top-level views.
type ViewKind int

const (
	ViewContainerList ViewKind = iota
	ViewLogView
	ViewActionMenu
	ViewSearchMode
)

// ViewState is exactly one of the four ViewKinds, carrying the extra
// fields each variant needs (the zero-value variant is ViewContainerList).
type ViewState struct {
	Kind ViewKind

	// ViewLogView
	LogTarget ContainerKey

	// ViewActionMenu
	ActionTarget ContainerKey
	ActionIndex  int
}
