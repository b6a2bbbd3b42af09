// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keys

import (
	"fmt"
	"testing"
)

func TestAllocate(t *testing.T) {
	used := map[string]bool{}

	first := Allocate("lee2021", used)
	if first != "lee2021" {
		t.Errorf("first allocation = %q, want %q", first, "lee2021")
	}
	used[first] = true

	second := Allocate("lee2021", used)
	if second != "lee2021a" {
		t.Errorf("second allocation = %q, want %q", second, "lee2021a")
	}
	used[second] = true

	third := Allocate("lee2021", used)
	if third != "lee2021b" {
		t.Errorf("third allocation = %q, want %q", third, "lee2021b")
	}
}

// TestAllocateManyCollisions drives one seed far past 26 collisions: the
// suffix sequence must stay purely alphabetic and every key must be unique.
func TestAllocateManyCollisions(t *testing.T) {
	const n = 80
	used := map[string]bool{}
	var all []string

	for i := 0; i < n; i++ {
		k := Allocate("smith2020", used)
		if used[k] {
			t.Fatalf("allocation %d returned duplicate key %q", i, k)
		}
		used[k] = true
		all = append(all, k)

		for _, c := range k {
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
				t.Fatalf("key %q contains non-alphanumeric character %q", k, c)
			}
		}
	}

	// Spot-check the bijective base-26 rollover: 26 suffixed keys exhaust
	// a..z, so the 28th allocation overall is "smith2020aa".
	if all[27] != "smith2020aa" {
		t.Errorf("allocation 28 = %q, want %q", all[27], "smith2020aa")
	}
	if all[28] != "smith2020ab" {
		t.Errorf("allocation 29 = %q, want %q", all[28], "smith2020ab")
	}
}

func TestAllocateSkipsOccupiedSuffixes(t *testing.T) {
	used := map[string]bool{"x": true, "xa": true, "xc": true}
	if got := Allocate("x", used); got != "xb" {
		t.Errorf("Allocate = %q, want %q", got, "xb")
	}
}

func TestAllocateEmptySeed(t *testing.T) {
	used := map[string]bool{}
	if got := Allocate("", used); got != "ref" {
		t.Errorf("Allocate(\"\") = %q, want %q", got, "ref")
	}
}

func TestSeed(t *testing.T) {
	tests := []struct {
		author string
		year   int
		want   string
	}{
		{"Lee", 2021, "lee2021"},
		{"Smith", 2020, "smith2020"},
		{"O'Brien", 1999, "obrien1999"},
		{"van Dyke", 2005, "vandyke2005"},
		{"", 2020, "unresolved2020"},
		{"Lee", 0, "lee"},
		{"123", 0, "unresolved"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.author, tt.year), func(t *testing.T) {
			if got := Seed(tt.author, tt.year); got != tt.want {
				t.Errorf("Seed(%q, %d) = %q, want %q", tt.author, tt.year, got, tt.want)
			}
		})
	}
}
