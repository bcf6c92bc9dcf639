// Package merge folds the per-worker aggregation tables produced by
// internal/worker into one global map and formats the result line, per
// the teacher's preference for slices.SortFunc over sort.Slice seen in
// internal/indexer/sorter.go's chunk sort.
package merge

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/onebrc/onebrc/internal/aggtable"
)

// Global folds every worker table into a single map keyed by decoded
// station name, combining accumulators for stations that appear in more
// than one worker's table.
func Global(tables []*aggtable.Table) map[string]*aggtable.Accumulator {
	global := make(map[string]*aggtable.Accumulator)
	for _, t := range tables {
		t.MergeInto(global)
	}
	return global
}

// Format renders global as the sorted, brace-delimited result line:
// {name=min/mean/max, ...}. Stations are ordered by ascending byte value
// of their name, matching the teacher's bytes.Compare-based ordering in
// sorter.go's flushChunk/kWayMerge.
func Format(global map[string]*aggtable.Accumulator) string {
	names := make([][]byte, 0, len(global))
	for name := range global {
		names = append(names, []byte(name))
	}
	slices.SortFunc(names, func(a, b []byte) int {
		return bytes.Compare(a, b)
	})

	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		acc := global[string(name)]
		b.Write(name)
		b.WriteByte('=')
		writeTenths(&b, acc.Min)
		b.WriteByte('/')
		writeMean(&b, acc.Sum, acc.Count)
		b.WriteByte('/')
		writeTenths(&b, acc.Max)
	}
	b.WriteByte('}')
	return b.String()
}

// writeTenths formats a signed tenths-of-a-degree value as a one-decimal
// string, e.g. -999 -> "-99.9".
func writeTenths(b *strings.Builder, tenths int32) {
	if tenths < 0 {
		b.WriteByte('-')
		tenths = -tenths
	}
	whole := tenths / 10
	frac := tenths % 10
	fmt.Fprintf(b, "%d.%d", whole, frac)
}

// writeMean computes the station's mean temperature, rounded
// half-away-from-zero to one decimal digit, and writes it in the same
// format as writeTenths. sum is already in tenths of a degree, so the
// tenths-of-a-degree mean is simply round(sum/count).
func writeMean(b *strings.Builder, sum int64, count uint64) {
	if count == 0 {
		b.WriteString("0.0")
		return
	}
	neg := sum < 0
	if neg {
		sum = -sum
	}
	tenths := roundDiv(sum, int64(count))
	if neg && tenths != 0 {
		b.WriteByte('-')
	}
	whole := tenths / 10
	frac := tenths % 10
	fmt.Fprintf(b, "%d.%d", whole, frac)
}

// roundDiv computes round-half-away-from-zero of num/den for non-negative
// num and positive den.
func roundDiv(num, den int64) int64 {
	return (num + den/2) / den
}
