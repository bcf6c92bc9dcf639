package aggtable

import "fmt"

// Default initial shard capacities, per the spec: 16/32-byte names are
// common (~6000 distinct stations fits the classic dataset with headroom),
// 128-byte names are rare.
const (
	defaultCap16  = 6000
	defaultCap32  = 6000
	defaultCap128 = 2000
)

// Table is one worker's private sharded aggregation table: three
// independent open-addressed maps selected by station-name length. There is
// no shared mutable state between Tables — each worker owns one exclusively
// for the run and it is merged away afterward.
type Table struct {
	s16  *shard16
	s32  *shard32
	s128 *shard128
}

// New creates a Table with the spec's default shard capacities.
func New() *Table {
	return &Table{
		s16:  newShard16(defaultCap16),
		s32:  newShard32(defaultCap32),
		s128: newShard128(defaultCap128),
	}
}

// MaxNameLen is the longest station name this table accepts; the spec
// bounds names to 1-100 bytes and the widest shard zero-pads to 128.
const MaxNameLen = 100

// LookupOrInsert returns the accumulator for name, creating one if absent.
// name must be 1-100 bytes and must not contain a zero byte (the padding
// byte); see Table.CheckAssumptions for an off-hot-path debug check of
// that invariant.
func (t *Table) LookupOrInsert(name []byte) *Accumulator {
	l := len(name)
	switch {
	case l <= 16:
		var key [16]byte
		copy(key[:], name)
		return t.s16.lookupOrInsert(key)
	case l <= 32:
		var key [32]byte
		copy(key[:], name)
		return t.s32.lookupOrInsert(key)
	default:
		var key [128]byte
		copy(key[:], name)
		return t.s128.lookupOrInsert(key)
	}
}

// CheckAssumptions validates the dataset assumptions the hot path relies on
// and never checks itself: names are 1-100 bytes and contain no zero byte.
// Intended for --strict / debug builds only, per the spec's instruction
// that validation must never reach the hot path.
func (t *Table) CheckAssumptions(name []byte) error {
	if len(name) < 1 || len(name) > MaxNameLen {
		return fmt.Errorf("station name length %d out of [1,%d]", len(name), MaxNameLen)
	}
	for _, b := range name {
		if b == 0 {
			return fmt.Errorf("station name %q contains a zero byte, which collides with key padding", name)
		}
	}
	return nil
}

// Iterate visits every live (name, accumulator) pair across all three
// shards. name is the key block truncated at the first zero byte, i.e. the
// original station name.
func (t *Table) Iterate(fn func(name []byte, acc Accumulator)) {
	t.s16.forEach(func(key []byte, acc Accumulator) { fn(trimZero(key), acc) })
	t.s32.forEach(func(key []byte, acc Accumulator) { fn(trimZero(key), acc) })
	t.s128.forEach(func(key []byte, acc Accumulator) { fn(trimZero(key), acc) })
}

// MergeInto folds every entry of t into global, keyed by the decoded
// station name. global is not safe for concurrent use; callers merge
// one worker Table at a time on a single goroutine.
func (t *Table) MergeInto(global map[string]*Accumulator) {
	t.Iterate(func(name []byte, acc Accumulator) {
		if existing, ok := global[string(name)]; ok {
			existing.Merge(acc)
		} else {
			a := acc
			global[string(name)] = &a
		}
	})
}

func trimZero(key []byte) []byte {
	for i, b := range key {
		if b == 0 {
			return key[:i]
		}
	}
	return key
}
