package service

import (
	"sort"
	"strconv"
	"strings"
)

// Volume numbers above this are assumed to be typos and dropped.
const maxVolumeNumber = 10000

// ExpandVolumeRange parses a free-text volume expression like "1,3,5,7-10"
// into an ascending, de-duplicated list of volume numbers. Malformed tokens
// and non-positive numbers are dropped rather than rejected.
func ExpandVolumeRange(expr string) []int {
	seen := make(map[int]bool)

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(token, "-"); ok {
			from, err1 := strconv.Atoi(strings.TrimSpace(lo))
			to, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || from > to {
				continue
			}
			for v := from; v <= to; v++ {
				if v > 0 && v <= maxVolumeNumber {
					seen[v] = true
				}
			}
			continue
		}

		v, err := strconv.Atoi(token)
		if err != nil || v <= 0 || v > maxVolumeNumber {
			continue
		}
		seen[v] = true
	}

	return sortedVolumes(seen)
}

// NormalizeVolumes de-duplicates, sorts and drops non-positive volume numbers
// from an explicit list.
func NormalizeVolumes(vols []int) []int {
	seen := make(map[int]bool)
	for _, v := range vols {
		if v > 0 && v <= maxVolumeNumber {
			seen[v] = true
		}
	}
	return sortedVolumes(seen)
}

func sortedVolumes(seen map[int]bool) []int {
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
