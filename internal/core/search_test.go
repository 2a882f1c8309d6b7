package core

import "testing"

func TestMatchesSearchEmptyQueryMatchesEverything(t *testing.T) {
	if !MatchesSearch("", "nginx", "abc123def456") {
		t.Fatalf("empty query should match any container")
	}
}

func TestMatchesSearchByNameSubstring(t *testing.T) {
	if !MatchesSearch("GIN", "nginx", "abc123def456") {
		t.Fatalf("case-insensitive substring match on name should succeed")
	}
	if MatchesSearch("postgres", "nginx", "abc123def456") {
		t.Fatalf("non-matching query should not match")
	}
}

func TestMatchesSearchByIdPrefix(t *testing.T) {
	if !MatchesSearch("ABC1", "nginx", "abc123def456") {
		t.Fatalf("case-insensitive id prefix match should succeed")
	}
	if MatchesSearch("def", "nginx", "abc123def456") {
		t.Fatalf("id match must be a prefix match, not substring")
	}
}

func TestMatchesSearchE4Scenario(t *testing.T) {
	type c struct{ name, id string }
	containers := []c{{"nginx", "111111111111"}, {"postgres", "222222222222"}, {"redis", "333333333333"}}
	var visible []string
	for _, cc := range containers {
		if MatchesSearch("g", cc.name, cc.id) {
			visible = append(visible, cc.name)
		}
	}
	if len(visible) != 2 || visible[0] != "nginx" || visible[1] != "postgres" {
		t.Fatalf("visible = %v, want [nginx postgres]", visible)
	}
}

func TestApplySearchEditBackspaceAndClear(t *testing.T) {
	q := ApplySearchEdit("", "n")
	q = ApplySearchEdit(q, "g")
	q = ApplySearchEdit(q, "i")
	if q != "ngi" {
		t.Fatalf("query = %q, want ngi", q)
	}
	q = ApplySearchEdit(q, "backspace")
	if q != "ng" {
		t.Fatalf("query after backspace = %q, want ng", q)
	}
	q = ApplySearchEdit(q, "ctrl+u")
	if q != "" {
		t.Fatalf("query after ctrl+u = %q, want empty", q)
	}
}

func TestApplySearchEditIgnoresControlKeys(t *testing.T) {
	q := ApplySearchEdit("ab", "enter")
	if q != "ab" {
		t.Fatalf("enter should not modify the query")
	}
	q = ApplySearchEdit(q, "tab")
	if q != "ab" {
		t.Fatalf("tab should not modify the query")
	}
	q = ApplySearchEdit(q, "up")
	if q != "ab" {
		t.Fatalf("multi-rune control keys should not modify the query, got %q", q)
	}
}
