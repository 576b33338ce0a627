package competitor

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// dupThreshold is the Hamming-distance cutoff below which two content
// fingerprints are treated as the same underlying text. Syndicated listings
// and white-label ticket pages frequently differ only in a header or price.
const dupThreshold = 3

// fingerprint computes a 64-bit SimHash of the given text.
// Uses FNV-64a on word-level tokens with bit vector accumulation.
func fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int

	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}

	return fp
}

// nearDuplicate reports whether two fingerprints are within dupThreshold.
func nearDuplicate(a, b uint64) bool {
	return bits.OnesCount64(a^b) <= dupThreshold
}
