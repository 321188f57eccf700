package decoder

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/qrforge/qrforge/bitutil"
)

// TestPropertyUnmaskIsItsOwnInverse checks that applying a data mask twice
// to the same BitMatrix restores the original bits, for every mask pattern
// and a range of dimensions.
func TestPropertyUnmaskIsItsOwnInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dimension := rapid.IntRange(1, 40).Draw(t, "dimension")
		maskIndex := rapid.IntRange(0, 7).Draw(t, "maskIndex")

		bits := bitutil.NewBitMatrix(dimension)
		for i := 0; i < dimension; i++ {
			for j := 0; j < dimension; j++ {
				if rapid.Bool().Draw(t, "bit") {
					bits.Set(j, i)
				}
			}
		}

		original := bits.String()
		UnmaskBitMatrix(bits, dimension, maskIndex)
		UnmaskBitMatrix(bits, dimension, maskIndex)

		if bits.String() != original {
			t.Fatalf("masking twice with pattern %d did not restore the original matrix", maskIndex)
		}
	})
}
