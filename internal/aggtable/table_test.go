package aggtable

import (
	"strconv"
	"strings"
	"testing"
)

func TestLookupOrInsertCreatesZeroedAccumulator(t *testing.T) {
	tbl := New()
	acc := tbl.LookupOrInsert([]byte("Hamburg"))
	if acc.Count != 0 || acc.Min != maxInt32 || acc.Max != minInt32 {
		t.Fatalf("freshly inserted accumulator not zero-initialized: %+v", acc)
	}
	acc.Observe(120)
	if got := tbl.LookupOrInsert([]byte("Hamburg")); got.Count != 1 || got.Sum != 120 {
		t.Fatalf("second lookup did not return the same accumulator: %+v", got)
	}
}

func TestShardRoutingByNameLength(t *testing.T) {
	cases := []struct {
		name string
		len  int
	}{
		{"16 bytes", 16},
		{"17 bytes", 17},
		{"32 bytes", 32},
		{"33 bytes", 33},
		{"100 bytes", 100},
	}
	tbl := New()
	for _, c := range cases {
		name := []byte(strings.Repeat("x", c.len))
		acc := tbl.LookupOrInsert(name)
		acc.Observe(10)
		again := tbl.LookupOrInsert(name)
		if again.Count != 1 {
			t.Errorf("%s: expected routing to a stable shard, got count %d", c.name, again.Count)
		}
	}
}

func TestCollisionStressDistinctStations(t *testing.T) {
	// Two names sharing their first 16 bytes but differing after must be
	// tracked as two distinct stations, even though hashKey only folds in
	// the first 16 bytes.
	a := []byte("AaaaaaaaaaaaaaaaX")
	b := []byte("AaaaaaaaaaaaaaaaY")

	tbl := New()
	tbl.LookupOrInsert(a).Observe(10)
	tbl.LookupOrInsert(b).Observe(20)

	seen := map[string]Accumulator{}
	tbl.Iterate(func(name []byte, acc Accumulator) {
		seen[string(name)] = acc
	})

	if len(seen) != 2 {
		t.Fatalf("expected 2 distinct stations, got %d: %v", len(seen), seen)
	}
	if seen[string(a)].Sum != 10 || seen[string(b)].Sum != 20 {
		t.Fatalf("collided entries merged incorrectly: %v", seen)
	}
}

func TestGrowPreservesAllEntries(t *testing.T) {
	tbl := New()
	const n = 20000 // forces multiple resizes past the ~6000 initial capacity
	names := make([][]byte, n)
	for i := 0; i < n; i++ {
		names[i] = []byte("s" + strconv.Itoa(i))
		tbl.LookupOrInsert(names[i]).Observe(int32(i))
	}

	count := 0
	tbl.Iterate(func(name []byte, acc Accumulator) { count++ })
	if count != n {
		t.Fatalf("expected %d distinct entries after growth, got %d", n, count)
	}

	for i := 0; i < n; i++ {
		acc := tbl.LookupOrInsert(names[i])
		if acc.Count != 1 || acc.Sum != int64(i) {
			t.Fatalf("entry %d lost or corrupted after resize: %+v", i, acc)
		}
	}
}

func TestMergeInto(t *testing.T) {
	a := New()
	a.LookupOrInsert([]byte("X")).Observe(-999)
	a.LookupOrInsert([]byte("X")).Observe(999)

	b := New()
	b.LookupOrInsert([]byte("X")).Observe(500)
	b.LookupOrInsert([]byte("Y")).Observe(10)

	global := map[string]*Accumulator{}
	a.MergeInto(global)
	b.MergeInto(global)

	x := global["X"]
	if x.Count != 3 || x.Sum != 500 || x.Min != -999 || x.Max != 999 {
		t.Fatalf("merged X accumulator wrong: %+v", x)
	}
	y := global["Y"]
	if y.Count != 1 || y.Sum != 10 {
		t.Fatalf("merged Y accumulator wrong: %+v", y)
	}
}

func TestCheckAssumptionsRejectsZeroByteAndLength(t *testing.T) {
	tbl := New()
	if err := tbl.CheckAssumptions([]byte("ok")); err != nil {
		t.Fatalf("unexpected rejection of a clean name: %v", err)
	}
	if err := tbl.CheckAssumptions([]byte("has\x00zero")); err == nil {
		t.Fatal("expected rejection of a name containing a zero byte")
	}
	if err := tbl.CheckAssumptions(nil); err == nil {
		t.Fatal("expected rejection of an empty name")
	}
	if err := tbl.CheckAssumptions([]byte(strings.Repeat("x", 101))); err == nil {
		t.Fatal("expected rejection of a name longer than 100 bytes")
	}
}
