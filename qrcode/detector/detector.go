package detector

import (
	"math"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
	"github.com/qrforge/qrforge/internal"
	"github.com/qrforge/qrforge/qrcode/decoder"
	"github.com/qrforge/qrforge/transform"
)

// Detector locates a QR symbol in a binary image and samples it onto a
// square bit grid. A Detector holds no state between calls other than the
// image and its configured sampler/callback, but the scanners it spawns
// internally are not safe for concurrent use, so give each goroutine its
// own Detector.
type Detector struct {
	image               *bitutil.BitMatrix
	sampler             transform.GridSampler
	resultPointCallback qrforge.ResultPointCallback
}

// NewDetector creates a Detector using the standard grid sampler.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return NewDetectorWithSampler(image, &transform.DefaultGridSampler{})
}

// NewDetectorWithSampler creates a Detector with an explicitly supplied
// GridSampler, rather than reaching for a process-wide default.
func NewDetectorWithSampler(image *bitutil.BitMatrix, sampler transform.GridSampler) *Detector {
	return &Detector{image: image, sampler: sampler}
}

// SetResultPointCallback registers a callback invoked once per confirmed
// finder or alignment pattern candidate found during Detect.
func (d *Detector) SetResultPointCallback(cb qrforge.ResultPointCallback) {
	d.resultPointCallback = cb
}

// Detect locates the three finder patterns, the alignment pattern if the
// version calls for one, and returns the image resampled onto a square
// grid of modules along with the corner points used to do so.
func (d *Detector) Detect(tryHarder bool) (*internal.DetectorResult, error) {
	scanner := &finderScanner{image: d.image, resultPointCallback: d.resultPointCallback}
	info, err := scanner.find(tryHarder)
	if err != nil {
		return nil, err
	}
	return d.rectify(info)
}

// rectify turns three located finder patterns into a sampled grid: it
// estimates the module size and dimension, searches for the alignment
// pattern the estimated version predicts, builds the perspective transform
// from source corners to the unit grid, and samples through it.
func (d *Detector) rectify(info *FinderPatternInfo) (*internal.DetectorResult, error) {
	topLeft, topRight, bottomLeft := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := d.estimateModuleSize(topLeft, topRight, bottomLeft)
	if moduleSize < 1.0 {
		return nil, qrforge.ErrNotFound
	}

	dimension, err := estimateDimension(topLeft, topRight, bottomLeft, moduleSize)
	if err != nil {
		return nil, err
	}
	version, err := decoder.GetProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	alignment := d.locateAlignmentPattern(version, topLeft, topRight, bottomLeft, moduleSize)

	xform := perspectiveFromPatterns(topLeft, topRight, bottomLeft, alignment, dimension)
	bits, err := d.sampler.SampleGridTransform(d.image, dimension, dimension, xform)
	if err != nil {
		return nil, err
	}

	points := []internal.ResultPoint{
		{X: bottomLeft.X, Y: bottomLeft.Y},
		{X: topLeft.X, Y: topLeft.Y},
		{X: topRight.X, Y: topRight.Y},
	}
	if alignment != nil {
		points = append(points, internal.ResultPoint{X: alignment.X, Y: alignment.Y})
	}

	return internal.NewDetectorResult(bits, points), nil
}

// locateAlignmentPattern predicts where a version's alignment square ought
// to sit, given the three finder corners, then searches progressively
// wider regions around that estimate (the prediction degrades for more
// skewed symbols, which is why the search escalates rather than giving up
// after one try).
func (d *Detector) locateAlignmentPattern(version *decoder.Version, topLeft, topRight, bottomLeft *FinderPattern, moduleSize float64) *AlignmentPattern {
	if len(version.AlignmentPatternCenters) == 0 {
		return nil
	}

	bottomRightX := topRight.X - topLeft.X + bottomLeft.X
	bottomRightY := topRight.Y - topLeft.Y + bottomLeft.Y

	modulesBetweenFinders := version.DimensionForVersion() - 7
	correction := 1.0 - 3.0/float64(modulesBetweenFinders)
	estX := int(topLeft.X + correction*(bottomRightX-topLeft.X))
	estY := int(topLeft.Y + correction*(bottomRightY-topLeft.Y))

	for allowance := 4; allowance <= 16; allowance <<= 1 {
		if ap := d.findAlignmentInRegion(moduleSize, estX, estY, float64(allowance)); ap != nil {
			return ap
		}
	}
	return nil
}

// estimateDimension converts the measured distance between finder
// centers, in pixels, into a module count. Valid QR dimensions are always
// 4*version + 17 (1 mod 4): an estimate that is 0 mod 4 is rounded up, one
// that is 2 mod 4 is rounded down, and one that is 3 mod 4 is rejected with
// ErrNotFound.
func estimateDimension(topLeft, topRight, bottomLeft *FinderPattern, moduleSize float64) (int, error) {
	tltr := roundHalfUp(patternDistance(topLeft, topRight) / moduleSize)
	tlbl := roundHalfUp(patternDistance(topLeft, bottomLeft) / moduleSize)
	dimension := (tltr+tlbl)/2 + 7
	switch dimension & 0x03 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, qrforge.ErrNotFound
	}
	return dimension, nil
}

func (d *Detector) estimateModuleSize(topLeft, topRight, bottomLeft *FinderPattern) float64 {
	return (d.estimateModuleSizeOneWay(topLeft, topRight) +
		d.estimateModuleSizeOneWay(topLeft, bottomLeft)) / 2.0
}

// estimateModuleSizeOneWay measures the black-white-black-white-black run
// between two finder centers from both ends and averages the two, falling
// back to a single-ended measurement if one direction runs off the image.
func (d *Detector) estimateModuleSizeOneWay(pattern, other *FinderPattern) float64 {
	fromHere := d.runLengthBothWays(int(pattern.X), int(pattern.Y), int(other.X), int(other.Y))
	fromThere := d.runLengthBothWays(int(other.X), int(other.Y), int(pattern.X), int(pattern.Y))
	switch {
	case math.IsNaN(fromHere):
		return fromThere / 7.0
	case math.IsNaN(fromThere):
		return fromHere / 7.0
	default:
		return (fromHere + fromThere) / 14.0
	}
}

// runLengthBothWays measures the run length from (fromX,fromY) toward
// (toX,toY) and also past it in the opposite direction, clamped to the
// image bounds, and sums the two (with one pixel of overlap removed) to
// get a symmetric estimate even when the finder centers sit near an edge.
func (d *Detector) runLengthBothWays(fromX, fromY, toX, toY int) float64 {
	result := d.runLength(fromX, fromY, toX, toY)

	scale := 1.0
	otherToX := fromX - (toX - fromX)
	switch {
	case otherToX < 0:
		scale = float64(fromX) / float64(fromX-otherToX)
		otherToX = 0
	case otherToX >= d.image.Width():
		scale = float64(d.image.Width()-1-fromX) / float64(otherToX-fromX)
		otherToX = d.image.Width() - 1
	}
	otherToY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	switch {
	case otherToY < 0:
		scale = float64(fromY) / float64(fromY-otherToY)
		otherToY = 0
	case otherToY >= d.image.Height():
		scale = float64(d.image.Height()-1-fromY) / float64(otherToY-fromY)
		otherToY = d.image.Height() - 1
	}
	otherToX = int(float64(fromX) + float64(otherToX-fromX)*scale)

	return result + d.runLength(fromX, fromY, otherToX, otherToY) - 1.0
}

// runLength walks a Bresenham line from (fromX,fromY) to (toX,toY) and
// returns the distance to the third black-white transition, i.e. the
// pixel distance covered by one black-white-black run.
func (d *Detector) runLength(fromX, fromY, toX, toY int) float64 {
	steep := iabs(toY-fromY) > iabs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}

	dx := iabs(toX - fromX)
	dy := iabs(toY - fromY)
	errAcc := -dx / 2
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	transitions := 0
	limit := toX + xstep
	for x, y := fromX, fromY; x != limit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		if (transitions == 1) == d.image.Get(realX, realY) {
			if transitions == 2 {
				return pointDistance(x, y, fromX, fromY)
			}
			transitions++
		}
		errAcc += dy
		if errAcc > 0 {
			if y == toY {
				break
			}
			y += ystep
			errAcc -= dx
		}
	}
	if transitions == 2 {
		return pointDistance(toX+xstep, toY, fromX, fromY)
	}
	return math.NaN()
}

// perspectiveFromPatterns builds the transform mapping the unit grid
// (module centers at half-integer coordinates) onto the four corners
// found in the image: the three finder centers plus either the alignment
// pattern center or, lacking one, the geometric fourth corner of the
// parallelogram the three finders imply.
func perspectiveFromPatterns(topLeft, topRight, bottomLeft *FinderPattern, alignment *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	bottomRightOffset := float64(dimension) - 3.5
	var bottomRightX, bottomRightY, srcBottomRightX, srcBottomRightY float64

	if alignment != nil {
		bottomRightX, bottomRightY = alignment.X, alignment.Y
		srcBottomRightX = bottomRightOffset - 3.0
		srcBottomRightY = srcBottomRightX
	} else {
		bottomRightX = (topRight.X - topLeft.X) + bottomLeft.X
		bottomRightY = (topRight.Y - topLeft.Y) + bottomLeft.Y
		srcBottomRightX = bottomRightOffset
		srcBottomRightY = bottomRightOffset
	}

	return transform.QuadrilateralToQuadrilateral(
		3.5, 3.5, bottomRightOffset, 3.5, srcBottomRightX, srcBottomRightY, 3.5, bottomRightOffset,
		topLeft.X, topLeft.Y, topRight.X, topRight.Y, bottomRightX, bottomRightY, bottomLeft.X, bottomLeft.Y,
	)
}

// findAlignmentInRegion bounds a search region to the image and, if it's
// large enough to plausibly contain the pattern, scans it.
func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, allowanceFactor float64) *AlignmentPattern {
	allowance := int(allowanceFactor * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	if float64(right-left) < moduleSize*3 {
		return nil
	}
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(bottom-top) < moduleSize*3 {
		return nil
	}

	scanner := &alignmentScanner{
		image:               d.image,
		startX:              left,
		startY:              top,
		width:               right - left,
		height:              bottom - top,
		moduleSize:          moduleSize,
		resultPointCallback: d.resultPointCallback,
	}
	return scanner.find()
}
