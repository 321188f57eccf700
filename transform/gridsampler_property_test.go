package transform

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/qrforge/qrforge/bitutil"
)

// TestPropertySampleGridIdentityIsExact checks that sampling an N x N image
// onto an N x N grid with the identity transform reproduces every module
// exactly, since each sample point lands on an integer-plus-half-pixel
// boundary with no perspective distortion to round away.
func TestPropertySampleGridIdentityIsExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dimension := rapid.IntRange(1, 60).Draw(t, "dimension")

		image := bitutil.NewBitMatrix(dimension)
		for y := 0; y < dimension; y++ {
			for x := 0; x < dimension; x++ {
				if rapid.Bool().Draw(t, "bit") {
					image.Set(x, y)
				}
			}
		}

		identity := QuadrilateralToQuadrilateral(
			0, 0, float64(dimension), 0, float64(dimension), float64(dimension), 0, float64(dimension),
			0, 0, float64(dimension), 0, float64(dimension), float64(dimension), 0, float64(dimension),
		)

		sampler := &DefaultGridSampler{}
		sampled, err := sampler.SampleGridTransform(image, dimension, dimension, identity)
		if err != nil {
			t.Fatalf("SampleGridTransform failed: %v", err)
		}

		for y := 0; y < dimension; y++ {
			for x := 0; x < dimension; x++ {
				if sampled.Get(x, y) != image.Get(x, y) {
					t.Fatalf("mismatch at (%d,%d): got %v, want %v", x, y, sampled.Get(x, y), image.Get(x, y))
				}
			}
		}
	})
}
