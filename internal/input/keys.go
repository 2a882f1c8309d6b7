// Package input is the Input Worker (spec.md §4.4): a pure translation
// from a terminal key event and the current view to a core.AppEvent.
// bubbletea's own read loop is the "single blocking task that polls the
// terminal" the spec describes; this package supplies the view-dependent
// key map bubbletea's Update dispatches into, so there is no second
// polling goroutine competing for the terminal.
package input

import "github.com/siftail/dtop/internal/core"

// Translate maps one key (bubbletea's tea.KeyMsg.String() form) and the
// active ViewKind onto the AppEvent it produces, or nil if the key has no
// meaning in that view. SearchMode forwards everything that isn't a
// recognized navigation key as a SearchKeyEvent (spec.md §4.4).
func Translate(key string, view core.ViewKind) core.AppEvent {
	if view == core.ViewSearchMode {
		return translateSearchMode(key)
	}

	switch key {
	case "q", "ctrl+c":
		return core.QuitEvent{}
	case "?":
		return core.ToggleHelpEvent{}
	}

	switch view {
	case core.ViewContainerList:
		return translateContainerList(key)
	case core.ViewLogView:
		return translateLogView(key)
	case core.ViewActionMenu:
		return translateActionMenu(key)
	default:
		return nil
	}
}

func translateContainerList(key string) core.AppEvent {
	switch key {
	case "up", "k":
		return core.SelectPreviousEvent{}
	case "down", "j":
		return core.SelectNextEvent{}
	case "enter":
		return core.EnterPressedEvent{}
	case "right", "l":
		return core.ShowLogViewEvent{}
	case "/":
		return core.EnterSearchModeEvent{}
	case "a":
		return core.ToggleShowAllEvent{}
	case "s":
		return core.CycleSortFieldEvent{}
	case "u":
		return core.SetSortFieldEvent{Field: core.SortUptime}
	case "n":
		return core.SetSortFieldEvent{Field: core.SortName}
	case "c":
		return core.SetSortFieldEvent{Field: core.SortCPU}
	case "m":
		return core.SetSortFieldEvent{Field: core.SortMemory}
	case "o":
		return core.OpenDozzleEvent{}
	default:
		return nil
	}
}

func translateLogView(key string) core.AppEvent {
	switch key {
	case "esc", "left", "h":
		return core.ExitLogViewEvent{}
	case "up", "k":
		return core.ScrollUpEvent{}
	case "down", "j":
		return core.ScrollDownEvent{}
	default:
		return nil
	}
}

func translateActionMenu(key string) core.AppEvent {
	switch key {
	case "esc":
		return core.CancelActionMenuEvent{}
	case "up", "k":
		return core.SelectActionUpEvent{}
	case "down", "j":
		return core.SelectActionDownEvent{}
	case "enter":
		return core.EnterPressedEvent{}
	default:
		return nil
	}
}

// translateSearchMode handles the two navigation exits (spec.md §4.8:
// "SearchMode --Esc/Enter--> ContainerList") before falling through to
// forwarding the key as search text.
func translateSearchMode(key string) core.AppEvent {
	switch key {
	case "esc":
		return core.CancelActionMenuEvent{} // reuses the "return to ContainerList" handler
	case "enter":
		return core.EnterPressedEvent{}
	default:
		return core.SearchKeyEvent{Key: key}
	}
}
