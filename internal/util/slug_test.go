package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Go to market", "go-to-market"},
		{"Nearest time", "nearest-time"},
		{"SHOPPING_list", "shopping-list"},
		{"slow_burn", "slow-burn"},
		{"  multi   word ", "multi-word"},
		{"--leading--", "leading"},
		{"🎉 Party!", "party"},
		{"today", "today"},
		{"a/b/c", "a-b-c"},
		{"", ""},
		{"!!!", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.want {
			t.Errorf("Slugify(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestOwnedSlug(t *testing.T) {
	cases := []struct {
		name     string
		username string
		want     string
	}{
		{"Today", "alice", "today-alice"},
		{"Today", "bob", "today-bob"},
		{"Go to market", "Admin", "go-to-market-admin"},
		{"Nearest time", "alice", "nearest-time-alice"},
		{"🎉", "alice", ""},
		{"", "alice", ""},
	}

	for _, tc := range cases {
		if got := OwnedSlug(tc.name, tc.username); got != tc.want {
			t.Errorf("OwnedSlug(%q, %q): got %q, want %q", tc.name, tc.username, got, tc.want)
		}
	}
}

func TestOwnedSlugStable(t *testing.T) {
	// Same inputs always produce the same slug.
	a := OwnedSlug("Write Report", "carol")
	b := OwnedSlug("Write Report", "carol")
	if a != b {
		t.Errorf("OwnedSlug not stable: %q vs %q", a, b)
	}
}
