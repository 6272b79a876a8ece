package store

import "testing"

func TestParseSortKey(t *testing.T) {
	valid := []string{"category", "-category", "date", "-date", "is_completed", "-is_completed"}
	for _, s := range valid {
		k, err := ParseSortKey(s)
		if err != nil {
			t.Errorf("ParseSortKey(%q): unexpected error %v", s, err)
		}
		if string(k) != s {
			t.Errorf("ParseSortKey(%q): got %q", s, k)
		}
	}

	k, err := ParseSortKey("")
	if err != nil || k != DefaultSort {
		t.Errorf("empty sort: got %q, %v", k, err)
	}

	if _, err := ParseSortKey("priority"); err == nil {
		t.Error("expected error for unknown sort key")
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{Number: 0, Size: -1}, Page{Number: 1, Size: DefaultPageSize}},
		{Page{Number: -3, Size: 5}, Page{Number: 1, Size: 5}},
		{Page{Number: 2, Size: 100}, Page{Number: 2, Size: MaxPageSize}},
		{Page{Number: 3, Size: 0}, Page{Number: 3, Size: 0}}, // unpaginated stays unpaginated
	}

	for _, tc := range cases {
		p := tc.in
		p.Normalize()
		if p != tc.want {
			t.Errorf("Normalize(%+v): got %+v, want %+v", tc.in, p, tc.want)
		}
	}
}

func TestPageOffset(t *testing.T) {
	p := Page{Number: 3, Size: 10}
	if got := p.Offset(); got != 20 {
		t.Errorf("Offset: got %d, want 20", got)
	}

	p = Page{Number: 1, Size: 10}
	if got := p.Offset(); got != 0 {
		t.Errorf("Offset page 1: got %d, want 0", got)
	}
}
