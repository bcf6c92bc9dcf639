package aggtable

import "encoding/binary"

// hashKey implements the spec's mixing function: load the first two
// little-endian 64-bit words of the key and combine them as
// (w0 * 397) XOR w1. All three shard widths use this same formula over
// their first 16 bytes; the station names in the target dataset are
// discriminating enough in their first 16 bytes that hashing the rest of a
// 32- or 128-byte key buys nothing. Distinct names that happen to collide
// are still resolved correctly by the full-width compare in each shard's
// chain walk — this function only affects throughput, never correctness.
// The defensive fold below is scoped to 128-byte (shard128) keys only,
// per the spec's "fold in a third word... for the 128-byte shard"; it
// never applies to the 16- or 32-byte shards.
func hashKey(key []byte) uint64 {
	w0 := binary.LittleEndian.Uint64(key[0:8])
	w1 := binary.LittleEndian.Uint64(key[8:16])
	h := (w0 * 397) ^ w1
	if defensiveHash {
		// Resolves the spec's open question about adversarial 16-byte
		// prefix collisions: fold in one more word from deeper in the key.
		// Off by default (build tag `defensivehash`) to match the
		// reference hash exactly when that parity matters more than
		// robustness against inputs outside the published dataset.
		if len(key) >= 128 {
			h ^= binary.LittleEndian.Uint64(key[16:24]) * 1099511628211
		}
	}
	return h
}
