// Package baseline provides self-contained implementations of the stage
// collaborator ports. They compute real statistics from the dataset schema
// and derive everything else deterministically from stable hashes, so a
// pipeline wired with them is fully runnable without an ML backend and
// produces identical results for identical inputs.
package baseline

import (
	"hash/fnv"
	"strings"
)

// unit maps a set of seed strings to a deterministic value in [0, 1).
func unit(parts ...string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(parts, "|")))

	return float64(h.Sum64()%100000) / 100000
}

// spread maps seed strings into [lo, hi).
func spread(lo, hi float64, parts ...string) float64 {
	return lo + (hi-lo)*unit(parts...)
}
