// Package recordscan walks a buffer of station;temperature records and
// feeds each one into an aggtable.Table. It consumes the structural
// bitmaps internal/simd builds rather than re-scanning bytes, mirroring
// the split the teacher's scanner.go makes between a bitmap pass
// (processChunk) and a per-record walk (parseLineSimd) — here with two
// bitmaps (semicolon, newline) instead of three (quote, comma, newline),
// since station names are never quoted.
package recordscan

import (
	"fmt"
	"math/bits"

	"github.com/onebrc/onebrc/internal/aggtable"
	"github.com/onebrc/onebrc/internal/simd"
)

// Strict, when true, validates every parsed name and temperature against
// the dataset's documented bounds before updating the table. It exists
// only for --strict runs; with Strict false the validation itself is
// skipped, and the per-record cost is two tests of the flag.
type Parser struct {
	Strict bool
}

// ParseChunk scans data — which must begin at a record boundary and end
// exactly one byte past the final newline — and records one observation
// per record into tbl. The bitmap scan reads only data[0:len(data)], so
// callers need not provide any slack after the last newline.
func (p Parser) ParseChunk(data []byte, tbl *aggtable.Table) error {
	n := len(data)
	if n == 0 {
		return nil
	}

	bitmapLen := (n + 63) / 64
	semicolons := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)
	simd.ScanStations(data, semicolons, newlines)

	recordStart := 0
	sepPos := -1

	for wordIdx := 0; wordIdx < bitmapLen; wordIdx++ {
		sepWord := semicolons[wordIdx]
		nlWord := newlines[wordIdx]
		if sepWord == 0 && nlWord == 0 {
			continue
		}
		combined := sepWord | nlWord
		for combined != 0 {
			tz := bits.TrailingZeros64(combined)
			bit := uint64(1) << uint(tz)
			combined &^= bit

			pos := wordIdx*64 + tz
			if pos >= n {
				break
			}

			if sepWord&bit != 0 {
				sepPos = pos
				continue
			}

			// newline: pos ends the temperature field for the record
			// that started at recordStart.
			if sepPos < recordStart {
				if pos == recordStart {
					// A bare newline with nothing before it: the
					// degenerate all-newline file ("\n" and nothing
					// else) names no station and contributes no
					// record, rather than being a malformed one.
					recordStart = pos + 1
					continue
				}
				return fmt.Errorf("recordscan: record at offset %d has no separator before newline at %d", recordStart, pos)
			}
			name := data[recordStart:sepPos]
			tempBytes := data[sepPos+1 : pos]

			if p.Strict {
				if err := tbl.CheckAssumptions(name); err != nil {
					return err
				}
			}

			temp, err := parseTemp(tempBytes)
			if err != nil {
				return fmt.Errorf("recordscan: record at offset %d: %w", recordStart, err)
			}
			if p.Strict && (temp < -999 || temp > 999) {
				return fmt.Errorf("recordscan: record at offset %d: temperature %d out of [-999,999]", recordStart, temp)
			}

			acc := tbl.LookupOrInsert(name)
			acc.Observe(temp)

			recordStart = pos + 1
			sepPos = -1
		}
	}

	return nil
}

// parseTemp parses a fixed-one-decimal-digit signed number (e.g. "-9.3",
// "12.0") into tenths of a degree, per the documented grammar. It never
// runs a full floating-point parse: the grammar guarantees exactly one
// digit after the decimal point.
func parseTemp(b []byte) (int32, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty temperature field")
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i++
	}
	var v int32
	for ; i < len(b); i++ {
		c := b[i]
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid temperature byte %q", c)
		}
		v = v*10 + int32(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
