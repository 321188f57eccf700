package reedsolomon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestPropertyDecodeCorrectsUpToHalfECCodewords checks that corrupting no
// more than ecSize/2 codewords never defeats decoding, for any data/EC size
// split and any choice of which codewords get corrupted.
func TestPropertyDecodeCorrectsUpToHalfECCodewords(t *testing.T) {
	field := QRCodeField256

	rapid.Check(t, func(t *rapid.T) {
		dataSize := rapid.IntRange(1, 40).Draw(t, "dataSize")
		ecSize := rapid.IntRange(2, 20).Draw(t, "ecSize")
		total := dataSize + ecSize

		original := make([]int, total)
		for i := range original {
			original[i] = rapid.IntRange(0, 255).Draw(t, "codeword")
		}

		encoded := make([]int, total)
		copy(encoded, original)
		NewEncoder(field).Encode(encoded, ecSize)

		maxErrors := ecSize / 2
		numErrors := rapid.IntRange(0, maxErrors).Draw(t, "numErrors")

		corrupted := make([]int, total)
		copy(corrupted, encoded)
		used := map[int]bool{}
		for len(used) < numErrors {
			idx := rapid.IntRange(0, total-1).Draw(t, "errorIndex")
			if used[idx] {
				continue
			}
			used[idx] = true
			corrupted[idx] = (corrupted[idx] + 1 + rapid.IntRange(0, 253).Draw(t, "delta")) % 256
		}

		_, err := NewDecoder(field).Decode(corrupted, ecSize)
		assert.NoErrorf(t, err, "decode failed with only %d/%d correctable errors", numErrors, maxErrors)
		assert.Equal(t, encoded[:dataSize], corrupted[:dataSize], "recovered data codewords should match what was encoded")
	})
}
