package dump

import (
	"path/filepath"
	"testing"

	"github.com/onebrc/onebrc/internal/aggtable"
	"github.com/onebrc/onebrc/internal/merge"
)

func TestWriteReadRoundTripsMatchesFormattedLine(t *testing.T) {
	a := aggtable.New()
	a.LookupOrInsert([]byte("Zurich")).Observe(100)
	a.LookupOrInsert([]byte("Zurich")).Observe(200)
	a.LookupOrInsert([]byte("Abha")).Observe(-999)
	a.LookupOrInsert([]byte("Abha")).Observe(999)

	b := aggtable.New()
	b.LookupOrInsert([]byte("Zurich")).Observe(150)
	b.LookupOrInsert([]byte("Conakry")).Observe(250)

	global := merge.Global([]*aggtable.Table{a, b})
	want := merge.Format(global)

	path := filepath.Join(t.TempDir(), "table.dump")
	if err := Write(path, global); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got := FormatLine(records)
	if got != want {
		t.Fatalf("dump round-trip mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestWriteReadRoundTripsEmptyTable(t *testing.T) {
	global := merge.Global(nil)
	want := merge.Format(global)

	path := filepath.Join(t.TempDir(), "empty.dump")
	if err := Write(path, global); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got := FormatLine(records)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got != "{}" {
		t.Fatalf("got %q, want {}", got)
	}
}
