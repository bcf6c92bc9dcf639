package simd

import (
	"math/bits"
	"testing"
)

func TestScanBasic(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantSeps     []int
		wantNewlines []int
	}{
		{
			name:         "single record",
			input:        "Hamburg;12.3\n",
			wantSeps:     []int{7},
			wantNewlines: []int{12},
		},
		{
			name:         "multiple records",
			input:        "A;1.0\nBB;2.0\n",
			wantSeps:     []int{1, 8},
			wantNewlines: []int{5, 12},
		},
		{
			name:         "no trailing newline",
			input:        "X;9.9",
			wantSeps:     []int{1},
			wantNewlines: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := []byte(tt.input)
			bitmapLen := (len(input) + 63) / 64
			seps := make([]uint64, bitmapLen)
			newlines := make([]uint64, bitmapLen)

			ScanStations(input, seps, newlines)

			gotSeps := bitmapToPositions(seps, len(input))
			gotNewlines := bitmapToPositions(newlines, len(input))

			if !equalIntSlices(gotSeps, tt.wantSeps) {
				t.Errorf("semicolons: got %v, want %v", gotSeps, tt.wantSeps)
			}
			if !equalIntSlices(gotNewlines, tt.wantNewlines) {
				t.Errorf("newlines: got %v, want %v", gotNewlines, tt.wantNewlines)
			}
		})
	}
}

func TestScanLargeInput(t *testing.T) {
	input := make([]byte, 256)
	for i := range input {
		switch i % 10 {
		case 3:
			input[i] = ';'
		case 9:
			input[i] = '\n'
		default:
			input[i] = 'x'
		}
	}

	bitmapLen := (len(input) + 63) / 64
	seps := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	ScanStations(input, seps, newlines)

	for i := 0; i < len(input); i++ {
		isSep := (seps[i/64] & (1 << uint(i%64))) != 0
		isNewline := (newlines[i/64] & (1 << uint(i%64))) != 0

		if isSep != (input[i] == ';') {
			t.Errorf("position %d: semicolon mismatch, got %v want %v", i, isSep, input[i] == ';')
		}
		if isNewline != (input[i] == '\n') {
			t.Errorf("position %d: newline mismatch, got %v want %v", i, isNewline, input[i] == '\n')
		}
	}
}

// TestScanWordBoundary exercises inputs whose length straddles the 8-byte
// word size the amd64 path reads, in both directions (just under / just
// over a word, and just under / just over an unrolled 4-word batch).
func TestScanWordBoundary(t *testing.T) {
	for _, n := range []int{1, 7, 8, 9, 31, 32, 33, 63, 64, 65} {
		input := make([]byte, n)
		for i := range input {
			input[i] = 'x'
		}
		input[n-1] = ';'

		bitmapLen := (n + 63) / 64
		seps := make([]uint64, bitmapLen)
		newlines := make([]uint64, bitmapLen)

		ScanStations(input, seps, newlines)

		got := bitmapToPositions(seps, n)
		want := []int{n - 1}
		if !equalIntSlices(got, want) {
			t.Errorf("len=%d: got %v, want %v", n, got, want)
		}
	}
}

func bitmapToPositions(bitmap []uint64, maxLen int) []int {
	var positions []int
	for wordIdx, word := range bitmap {
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			pos := wordIdx*64 + tz
			if pos < maxLen {
				positions = append(positions, pos)
			}
			word &^= 1 << tz
		}
	}
	return positions
}

func equalIntSlices(a, b []int) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func BenchmarkScanStations64(b *testing.B) {
	input := make([]byte, 64)
	for i := range input {
		input[i] = 'x'
	}
	input[10] = ';'
	input[63] = '\n'

	seps := make([]uint64, 1)
	newlines := make([]uint64, 1)

	b.ResetTimer()
	b.SetBytes(64)
	for i := 0; i < b.N; i++ {
		seps[0], newlines[0] = 0, 0
		ScanStations(input, seps, newlines)
	}
}

func BenchmarkScanStations1MB(b *testing.B) {
	input := make([]byte, 1024*1024)
	for i := range input {
		input[i] = 'x'
	}
	for i := 0; i < len(input); i += 20 {
		input[i] = ';'
	}
	for i := 0; i < len(input); i += 40 {
		input[i] = '\n'
	}

	bitmapLen := (len(input) + 63) / 64
	seps := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	b.ResetTimer()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		for j := range seps {
			seps[j], newlines[j] = 0, 0
		}
		ScanStations(input, seps, newlines)
	}
}

func FuzzScanStations(f *testing.F) {
	f.Add([]byte("Hamburg;12.3\n"))
	f.Add([]byte("A;1.0\nBB;2.0\n"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) == 0 {
			return
		}
		bitmapLen := (len(input) + 63) / 64
		seps := make([]uint64, bitmapLen)
		newlines := make([]uint64, bitmapLen)

		ScanStations(input, seps, newlines)

		for i := 0; i < len(input); i++ {
			isSep := (seps[i/64] & (1 << uint(i%64))) != 0
			isNewline := (newlines[i/64] & (1 << uint(i%64))) != 0
			if isSep != (input[i] == ';') {
				t.Errorf("semicolon mismatch at %d", i)
			}
			if isNewline != (input[i] == '\n') {
				t.Errorf("newline mismatch at %d", i)
			}
		}
	})
}
