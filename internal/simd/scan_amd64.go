//go:build amd64

package simd

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// unroll is how many consecutive words each outer iteration consumes. AVX2
// capable machines get wider register files and more load/store bandwidth
// per cycle, so batching 4 words together amortizes the outer-loop overhead
// better; this is only a grouping decision, not an intrinsic call, since Go
// gives no portable way to emit real vector instructions without assembly.
var unroll = 1

func init() {
	if cpu.X86.HasAVX2 {
		unroll = 4
	}
	scanImpl = scanWordBatched
}

const wordSize = 8

// scanWordBatched scans data 8 bytes at a time. For each word it runs a
// branch-free SWAR test for "does this word contain the target byte"; a
// clean word costs one compare-and-skip, and only a word that actually
// matches pays for the exact per-byte scan.
func scanWordBatched(data []byte, semicolons, newlines []uint64) {
	n := len(data)
	full := n / wordSize
	batch := unroll

	i := 0
	for ; i+batch <= full; i += batch {
		for j := 0; j < batch; j++ {
			scanWord(data, (i+j)*wordSize, semicolons, newlines)
		}
	}
	for ; i < full; i++ {
		scanWord(data, i*wordSize, semicolons, newlines)
	}

	// Tail shorter than one word: exact scalar check.
	for p := full * wordSize; p < n; p++ {
		switch data[p] {
		case semicolon:
			setBit(semicolons, p)
		case newline:
			setBit(newlines, p)
		}
	}
}

func scanWord(data []byte, offset int, semicolons, newlines []uint64) {
	w := binary.LittleEndian.Uint64(data[offset : offset+wordSize])
	if !mayContain(w, semicolon) && !mayContain(w, newline) {
		return
	}
	for k := 0; k < wordSize; k++ {
		switch data[offset+k] {
		case semicolon:
			setBit(semicolons, offset+k)
		case newline:
			setBit(newlines, offset+k)
		}
	}
}

// mayContain reports whether w might contain byte b, using the classic
// SWAR "has value" trick: XOR each byte lane against b so matching lanes
// become zero, then test for any zero byte in the word. A "no" is always
// correct; scanWord treats a "yes" as "go check exactly", so a false
// positive only costs an extra scalar pass, never a wrong bitmap.
func mayContain(w uint64, b byte) bool {
	bcast := 0x0101010101010101 * uint64(b)
	v := w ^ bcast
	return hasZeroByte(v)
}

func hasZeroByte(v uint64) bool {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	return (v-lo)&^v&hi != 0
}
