//go:build !defensivehash

package aggtable

// defensiveHash is off by default so the hash formula matches the spec's
// reference exactly. Build with `-tags defensivehash` to fold in a third
// word per the spec's open question about adversarial inputs.
const defensiveHash = false
