// Package dump serializes a merged aggregation table to a compact,
// lz4-compressed binary file for offline determinism comparisons. The
// fixed-width binary record and the batch-write/lz4-wrap shape are
// grounded on the teacher's internal/common.WriteBatchRecords and
// internal/indexer/sorter.go's use of github.com/pierrec/lz4/v4 for
// chunk compression; this package adapts that pattern to the 96-byte
// station-accumulator record rather than the teacher's 80-byte index
// record.
package dump

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pierrec/lz4/v4"

	"github.com/onebrc/onebrc/internal/aggtable"
)

// RecordSize is the fixed on-disk size of one dumped station record:
// Key(64) + Count(8) + Sum(8) + Min(4) + Max(4) = 88 bytes, padded to 96
// to keep records a round, cache-friendly size.
const RecordSize = 64 + 8 + 8 + 4 + 4 + 8

// Record is one station's dumped accumulator. Key holds the station
// name truncated to 64 bytes (a display-only limit for this diagnostic
// artifact; the live aggregation table supports names up to 100 bytes).
type Record struct {
	Key   [64]byte
	Count int64
	Sum   int64
	Min   int32
	Max   int32
}

// Write dumps global to path: records are written in ascending key
// order, encoded big-endian, wrapped in an lz4 frame.
func Write(path string, global map[string]*aggtable.Accumulator) error {
	names := make([]string, 0, len(global))
	for name := range global {
		names = append(names, name)
	}
	slices.Sort(names)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: create %s: %w", path, err)
	}
	defer f.Close()

	lzw := lz4.NewWriter(f)
	bw := bufio.NewWriterSize(lzw, 256*1024)

	for _, name := range names {
		acc := global[name]
		var key [64]byte
		copy(key[:], name)
		rec := Record{Key: key, Count: int64(acc.Count), Sum: acc.Sum, Min: acc.Min, Max: acc.Max}
		if err := writeRecord(bw, rec); err != nil {
			return fmt.Errorf("dump: write record for %q: %w", name, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("dump: flush: %w", err)
	}
	if err := lzw.Close(); err != nil {
		return fmt.Errorf("dump: close lz4 writer: %w", err)
	}
	return nil
}

func writeRecord(w io.Writer, rec Record) error {
	var buf [RecordSize]byte
	copy(buf[0:64], rec.Key[:])
	binary.BigEndian.PutUint64(buf[64:72], uint64(rec.Count))
	binary.BigEndian.PutUint64(buf[72:80], uint64(rec.Sum))
	binary.BigEndian.PutUint32(buf[80:84], uint32(rec.Min))
	binary.BigEndian.PutUint32(buf[84:88], uint32(rec.Max))
	_, err := w.Write(buf[:])
	return err
}

// Read decodes every record from a file written by Write.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dump: open %s: %w", path, err)
	}
	defer f.Close()

	lzr := lz4.NewReader(f)
	br := bufio.NewReaderSize(lzr, 256*1024)

	var records []Record
	for {
		var buf [RecordSize]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("dump: read record: %w", err)
		}
		records = append(records, Record{
			Key:   [64]byte(buf[0:64]),
			Count: int64(binary.BigEndian.Uint64(buf[64:72])),
			Sum:   int64(binary.BigEndian.Uint64(buf[72:80])),
			Min:   int32(binary.BigEndian.Uint32(buf[80:84])),
			Max:   int32(binary.BigEndian.Uint32(buf[84:88])),
		})
	}
	return records, nil
}

// FormatLine reproduces the same formatted result line internal/merge
// would produce, directly from dumped records — used to verify the
// dump round-trips without re-running the pipeline. The match holds only
// when every station name fits the 64-byte Key; longer names appear
// truncated to 64 bytes.
func FormatLine(records []Record) string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		name := trimZero(rec.Key[:])
		b.Write(name)
		b.WriteByte('=')
		writeTenths(&b, rec.Min)
		b.WriteByte('/')
		writeMean(&b, rec.Sum, rec.Count)
		b.WriteByte('/')
		writeTenths(&b, rec.Max)
	}
	b.WriteByte('}')
	return b.String()
}

func trimZero(key []byte) []byte {
	for i, bb := range key {
		if bb == 0 {
			return key[:i]
		}
	}
	return key
}

func writeTenths(b *bytes.Buffer, tenths int32) {
	if tenths < 0 {
		b.WriteByte('-')
		tenths = -tenths
	}
	fmt.Fprintf(b, "%d.%d", tenths/10, tenths%10)
}

func writeMean(b *bytes.Buffer, sum, count int64) {
	if count == 0 {
		b.WriteString("0.0")
		return
	}
	neg := sum < 0
	if neg {
		sum = -sum
	}
	tenths := (sum + count/2) / count
	if neg && tenths != 0 {
		b.WriteByte('-')
	}
	fmt.Fprintf(b, "%d.%d", tenths/10, tenths%10)
}
