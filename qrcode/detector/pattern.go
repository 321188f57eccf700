// Package detector implements QR code detection in binary images: locating
// the three finder patterns, the optional alignment pattern, and deriving
// the perspective transform that rectifies the symbol onto a square grid.
package detector

import "math"

// FinderPattern is a candidate center for one of the three square finder
// marks, along with a running estimate of the module size it implies.
// Count tracks how many scan rows have voted for roughly this same center;
// candidates below a quorum are discarded before the best triple is chosen.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

// FinderPatternInfo names the three confirmed finder patterns by position:
// TopLeft sits opposite the longest side of the triangle they form.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

// AlignmentPattern is a candidate center for the small alignment square
// searched for near a version's predicted location.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

func (fp *FinderPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-fp.Y) > moduleSize || math.Abs(j-fp.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - fp.EstimatedModuleSize)
	return diff <= 1.0 || diff <= fp.EstimatedModuleSize
}

func (fp *FinderPattern) combineEstimate(i, j, newModuleSize float64) *FinderPattern {
	n := fp.Count + 1
	return &FinderPattern{
		X:                   (float64(fp.Count)*fp.X + j) / float64(n),
		Y:                   (float64(fp.Count)*fp.Y + i) / float64(n),
		EstimatedModuleSize: (float64(fp.Count)*fp.EstimatedModuleSize + newModuleSize) / float64(n),
		Count:               n,
	}
}

func (ap *AlignmentPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-ap.Y) > moduleSize || math.Abs(j-ap.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - ap.EstimatedModuleSize)
	return diff <= 1.0 || diff <= ap.EstimatedModuleSize
}

func (ap *AlignmentPattern) combineEstimate(i, j, newModuleSize float64) *AlignmentPattern {
	return &AlignmentPattern{
		X:                   (ap.X + j) / 2.0,
		Y:                   (ap.Y + i) / 2.0,
		EstimatedModuleSize: (ap.EstimatedModuleSize + newModuleSize) / 2.0,
	}
}

func patternDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func squaredPatternDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func pointDistance(x1, y1, x2, y2 int) float64 {
	dx, dy := float64(x1-x2), float64(y1-y2)
	return math.Sqrt(dx*dx + dy*dy)
}

// sortThree returns a, b, c reordered so a <= b <= c, via a three-element
// sorting network rather than a hand-unrolled if-chain.
func sortThree(a, b, c float64) (float64, float64, float64) {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return a, b, c
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// roundHalfUp matches the classic C-style (int)(d + 0.5) rounding that the
// dimension and module-size math below was derived from: ties away from
// zero, where a plain int conversion would truncate.
func roundHalfUp(d float64) int {
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}
