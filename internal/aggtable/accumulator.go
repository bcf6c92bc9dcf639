// Package aggtable implements the per-worker sharded aggregation table.
//
// A Table holds three independent open-addressed hash maps ("shards"), one
// per station-name width bucket (16, 32, 128 bytes). Keys are fixed-width,
// zero-padded copies of the station name; equality is a full-width byte
// compare, so a hash collision only lengthens a chain, it never produces a
// wrong result. Names of 1-16 bytes go to the 16-byte shard, 17-32 bytes
// to the 32-byte shard, and 33-100 bytes to the 128-byte shard.
package aggtable

import "math"

// Accumulator is the mutable per-station running statistic. Once Count > 0,
// Min <= Sum/Count <= Max holds. Both bounds stay within [-999, 999] for
// input that follows the documented grammar; only a --strict run rejects
// out-of-range temperatures upstream, the default path does not check.
type Accumulator struct {
	Count uint64
	Sum   int64
	Min   int32
	Max   int32
}

// minInt32 and maxInt32 stand in for the "+inf"/"-inf" sentinels used to seed
// a freshly created accumulator before its first observation.
const (
	minInt32 = math.MinInt32
	maxInt32 = math.MaxInt32
)

func newAccumulator() Accumulator {
	return Accumulator{Min: maxInt32, Max: minInt32}
}

// Observe folds one scaled-tenths temperature reading into the accumulator.
func (a *Accumulator) Observe(temp int32) {
	a.Count++
	a.Sum += int64(temp)
	if temp < a.Min {
		a.Min = temp
	}
	if temp > a.Max {
		a.Max = temp
	}
}

// Merge folds another accumulator (for the same station) into a.
func (a *Accumulator) Merge(b Accumulator) {
	a.Count += b.Count
	a.Sum += b.Sum
	if b.Min < a.Min {
		a.Min = b.Min
	}
	if b.Max > a.Max {
		a.Max = b.Max
	}
}
