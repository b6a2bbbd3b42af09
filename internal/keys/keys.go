// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keys generates stable, collision-free reference keys.
//
// Collisions are resolved with bijective base-26 alphabetic suffixes
// (a, b, ..., z, aa, ab, ...). Digits are 1-indexed, so the sequence
// stays alphabetic no matter how many collisions a seed accumulates.
package keys

import (
	"strconv"
	"strings"
	"unicode"
)

// Allocate returns seed when it is unused, otherwise seed plus the first
// unused suffix in the bijective base-26 sequence. It always terminates
// with a key not present in used. The caller owns used and records the
// returned key in it.
func Allocate(seed string, used map[string]bool) string {
	if seed == "" {
		seed = "ref"
	}
	if !used[seed] {
		return seed
	}
	for n := 1; ; n++ {
		k := seed + suffix(n)
		if !used[k] {
			return k
		}
	}
}

// Seed builds a citation-key seed from a heuristic author surname and year,
// for example ("Lee", 2021) -> "lee2021". Non-letter runes are dropped from
// the author part. With no usable author the seed falls back to "unresolved".
func Seed(author string, year int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(author) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "unresolved"
	}
	if year > 0 {
		return name + strconv.Itoa(year)
	}
	return name
}

// suffix converts n (1-indexed) to its bijective base-26 representation:
// 1 -> "a", 26 -> "z", 27 -> "aa", 28 -> "ab".
func suffix(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('a'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
