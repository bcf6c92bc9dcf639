// Package worker reads one partitioned file range and drives the record
// parser against a private aggregation table, per internal/partition's
// plan. Two read strategies are supported: positional reads (os.File.ReadAt
// with a pooled carry buffer, grounded on the teacher's pooled bufio
// buffers in internal/indexer/sorter.go) and memory mapping (grounded on
// the teacher's Scanner, which always mmaps; here it's one strategy among
// two, selected per internal/partition.Strategy).
package worker

import (
	"fmt"
	"os"

	"github.com/onebrc/onebrc/internal/aggtable"
	"github.com/onebrc/onebrc/internal/partition"
	"github.com/onebrc/onebrc/internal/recordscan"
)

const readBufSize = 256 * 1024

// bufPool recycles the positional-read scratch buffers across workers
// within a run, the same shape as the teacher's bufWriterPool/bufReaderPool
// in sorter.go.
var bufPool = make(chan []byte, 64)

func getBuf() []byte {
	select {
	case b := <-bufPool:
		return b
	default:
		return make([]byte, readBufSize)
	}
}

func putBuf(b []byte) {
	select {
	case bufPool <- b:
	default:
	}
}

// ProcessRange reads r from path using strategy and parses every record
// in it into a freshly created table, which it returns.
func ProcessRange(path string, r partition.Range, strategy partition.Strategy, parser recordscan.Parser) (*aggtable.Table, error) {
	tbl := aggtable.New()

	switch strategy {
	case partition.StrategyMmap:
		if err := processMmap(path, r, parser, tbl); err != nil {
			return nil, err
		}
	default:
		if err := processPositional(path, r, parser, tbl); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// processPositional streams r in readBufSize chunks via ReadAt, carrying
// any trailing partial record forward to the next read so every buffer
// handed to the parser ends exactly at a newline.
func processPositional(path string, r partition.Range, parser recordscan.Parser, tbl *aggtable.Table) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("worker: open %s: %w", path, err)
	}
	defer f.Close()

	buf := getBuf()
	defer putBuf(buf)

	carry := 0 // bytes of unconsumed data at the front of buf
	offset := r.Start

	for offset < r.End || carry > 0 {
		n := 0
		if offset < r.End {
			want := len(buf) - carry
			remaining := r.End - offset
			if int64(want) > remaining {
				want = int(remaining)
			}
			n, err = f.ReadAt(buf[carry:carry+want], offset)
			if n == 0 && err != nil {
				return fmt.Errorf("worker: ReadAt %s at %d: %w", path, offset, err)
			}
			offset += int64(n)
		}

		total := carry + n
		isLast := offset >= r.End

		var processEnd int
		if isLast {
			processEnd = total
		} else {
			processEnd = lastNewline(buf[:total])
			if processEnd == -1 {
				// No newline in a full 256KiB window: a record longer
				// than the buffer, which violates the documented name
				// bound. Grow is unnecessary for legal input; treat as
				// fatal rather than silently truncate a record.
				return fmt.Errorf("worker: %s: no newline within %d bytes starting at offset %d", path, len(buf), offset-int64(total))
			}
			processEnd++ // include the newline itself
		}

		if err := parser.ParseChunk(buf[:processEnd], tbl); err != nil {
			return err
		}

		carry = total - processEnd
		copy(buf[0:carry], buf[processEnd:total])

		if isLast && carry == 0 {
			break
		}
	}

	return nil
}

func lastNewline(b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == '\n' {
			return i
		}
	}
	return -1
}

func processMmap(path string, r partition.Range, parser recordscan.Parser, tbl *aggtable.Table) error {
	data, unmap, err := mmapRange(path, r)
	if err != nil {
		return err
	}
	defer unmap()
	return parser.ParseChunk(data, tbl)
}
