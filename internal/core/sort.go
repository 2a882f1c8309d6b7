package core

import "sort"

// SortContainers orders a snapshot of containers for display. Host groups
// are ordered by HostId ascending, and within each host group containers
// are ordered by the active sort field and direction (spec.md §8,
// testable property 4, and E2). Ties retain their relative order from the
// input slice, so a caller feeding containers in stable insertion order
// gets "insertion-order within each host group" for free via
// sort.SliceStable.
func SortContainers(containers []Container, sortState SortState) []Container {
	out := make([]Container, len(containers))
	copy(out, containers)

	less := func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Key.HostId != b.Key.HostId {
			return a.Key.HostId < b.Key.HostId
		}
		cmp := compareField(a, b, sortState.Field)
		if sortState.Direction == Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(out, less)
	return out
}

// compareField returns <0, 0, >0 comparing a and b on the given field,
// independent of sort direction.
func compareField(a, b Container, field SortField) int {
	switch field {
	case SortName:
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	case SortCPU:
		return compareFloat(a.Stats.CPUPercent, b.Stats.CPUPercent)
	case SortMemory:
		return compareFloat(a.Stats.MemoryPercent, b.Stats.MemoryPercent)
	default: // SortUptime: ascending means least uptime (newest) first.
		if !a.HasCreated && !b.HasCreated {
			return 0
		}
		if !a.HasCreated {
			return -1
		}
		if !b.HasCreated {
			return 1
		}
		switch {
		case a.Created.After(b.Created):
			return -1 // a is newer, so a has less uptime
		case a.Created.Before(b.Created):
			return 1
		default:
			return 0
		}
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
