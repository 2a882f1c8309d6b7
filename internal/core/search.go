package core

import "strings"

// MatchesSearch implements the search-filter predicate from spec.md §8
// (testable property 5): a container is visible iff the query is empty,
// or its name contains the query case-insensitively, or its short ID
// starts with the query case-insensitively.
func MatchesSearch(query, name, idPrefix string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(name), q) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(idPrefix), q)
}

// ApplySearchEdit applies one key event to a search query buffer. It
// mirrors the minimal line-editing bubbles/textinput performs for the
// single-line prompts the teacher drives with it, kept dependency-free
// here so the state machine stays testable without a terminal.
func ApplySearchEdit(query string, key string) string {
	switch key {
	case "backspace", "ctrl+h":
		if query == "" {
			return query
		}
		r := []rune(query)
		return string(r[:len(r)-1])
	case "ctrl+u":
		return ""
	case "enter", "esc", "tab":
		return query // handled by the view-transition layer, not here
	case "space":
		return query + " "
	default:
		// Single printable rune keys arrive from bubbletea as their own
		// string (e.g. "a", "Z", "3", "-"); control/function keys have
		// multi-rune names and are ignored here.
		if len([]rune(key)) == 1 {
			return query + key
		}
		return query
	}
}
