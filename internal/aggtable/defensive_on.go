//go:build defensivehash

package aggtable

const defensiveHash = true
