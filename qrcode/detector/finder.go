package detector

import (
	"math"
	"sort"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
)

// centerQuorum is the minimum number of scan-row votes a candidate center
// needs before it counts toward "three patterns confirmed".
const centerQuorum = 2

// minSkip bounds how many rows the scanner may skip between full row scans;
// maxModules caps how fine that skip can get for very tall images.
const (
	minSkip    = 3
	maxModules = 57
)

// finderScanner walks an image looking for the three 1:1:3:1:1 finder
// patterns that anchor a QR symbol. It accumulates candidate centers as it
// scans and is discarded once Detect returns.
type finderScanner struct {
	image               *bitutil.BitMatrix
	possibleCenters     []*FinderPattern
	hasSkipped          bool
	resultPointCallback qrforge.ResultPointCallback
}

// ratiosMatchFinder reports whether a five-run state vector has the
// 1:1:3:1:1 proportions of a finder pattern's black-white-black-white-black
// cross-section, within half a module of tolerance (triple that for the
// wide center run).
func ratiosMatchFinder(sc [5]int) bool {
	total := 0
	for _, c := range sc {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	unit := float64(total) / 7.0
	tol := unit / 2.0
	return math.Abs(unit-float64(sc[0])) < tol &&
		math.Abs(unit-float64(sc[1])) < tol &&
		math.Abs(3*unit-float64(sc[2])) < 3*tol &&
		math.Abs(unit-float64(sc[3])) < tol &&
		math.Abs(unit-float64(sc[4])) < tol
}

// ratiosMatchDiagonal is ratiosMatchFinder with a looser tolerance, used
// only for the 45-degree cross-check where pixel sampling along a diagonal
// is noisier.
func ratiosMatchDiagonal(sc [5]int) bool {
	total := 0
	for _, c := range sc {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	unit := float64(total) / 7.0
	tol := unit / 1.333
	return math.Abs(unit-float64(sc[0])) < tol &&
		math.Abs(unit-float64(sc[1])) < tol &&
		math.Abs(3*unit-float64(sc[2])) < 3*tol &&
		math.Abs(unit-float64(sc[3])) < tol &&
		math.Abs(unit-float64(sc[4])) < tol
}

// shiftStateLeft discards the first two runs of a five-run state vector,
// moves the last three runs down into the first three slots, and counts the
// current white pixel as the start of the fourth run, which is how the row
// scanner resumes after a false-positive cross section.
func shiftStateLeft(sc *[5]int) {
	sc[0], sc[1], sc[2] = sc[2], sc[3], sc[4]
	sc[3], sc[4] = 1, 0
}

// centerFromRunEnd estimates the sub-pixel center of the wide (3-module)
// run given the position just past the last run and the run lengths.
func centerFromRunEnd(sc [5]int, end int) float64 {
	return float64(end-sc[4]-sc[3]) - float64(sc[2])/2.0
}

func (f *finderScanner) find(tryHarder bool) (*FinderPatternInfo, error) {
	height := f.image.Height()
	width := f.image.Width()

	skip := (3 * height) / (4 * maxModules)
	if skip < minSkip || tryHarder {
		skip = minSkip
	}

	// done is only checked between rows, never mid-row: a row already in
	// progress keeps scanning to its end even after a third pattern is
	// confirmed, exactly like the outer loop condition below implies.
	var sc [5]int
	done := false
	for row := skip - 1; row < height && !done; row += skip {
		sc = [5]int{}
		state := 0
		for col := 0; col < width; col++ {
			if f.image.Get(col, row) {
				if state&1 == 1 {
					state++
				}
				sc[state]++
				continue
			}
			if state&1 != 0 {
				sc[state]++
				continue
			}
			if state != 4 {
				state++
				sc[state]++
				continue
			}
			if !ratiosMatchFinder(sc) {
				shiftStateLeft(&sc)
				state = 3
				continue
			}
			if !f.handlePossibleCenter(sc, row, col) {
				shiftStateLeft(&sc)
				state = 3
				continue
			}
			skip = 2
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			} else if rowSkip := f.findRowSkip(); rowSkip > sc[2] {
				row += rowSkip - sc[2] - skip
				col = width - 1
			}
			state = 0
			sc = [5]int{}
		}
		if ratiosMatchFinder(sc) && f.handlePossibleCenter(sc, row, width) {
			skip = sc[0]
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			}
		}
	}

	return f.finish()
}

func (f *finderScanner) finish() (*FinderPatternInfo, error) {
	patterns, err := f.selectBestPatterns()
	if err != nil {
		return nil, err
	}
	return orderFinderPatterns(patterns), nil
}

// scanFinderAxis walks outward from start along one axis, sampling pixels
// through get, and builds the same five-run state vector a full row scan
// would, bailing out the moment a run would exceed maxCount or fall off
// the image edge. Both the vertical and horizontal cross-checks below are
// this same walk over different axes, so they share it.
func scanFinderAxis(get func(pos int) bool, limit, start, maxCount int) (sc [5]int, end int, ok bool) {
	pos := start
	for pos >= 0 && get(pos) {
		sc[2]++
		pos--
	}
	if pos < 0 {
		return sc, 0, false
	}
	for pos >= 0 && !get(pos) && sc[1] <= maxCount {
		sc[1]++
		pos--
	}
	if pos < 0 || sc[1] > maxCount {
		return sc, 0, false
	}
	for pos >= 0 && get(pos) && sc[0] <= maxCount {
		sc[0]++
		pos--
	}
	if sc[0] > maxCount {
		return sc, 0, false
	}

	pos = start + 1
	for pos < limit && get(pos) {
		sc[2]++
		pos++
	}
	if pos == limit {
		return sc, 0, false
	}
	for pos < limit && !get(pos) && sc[3] < maxCount {
		sc[3]++
		pos++
	}
	if pos == limit || sc[3] >= maxCount {
		return sc, 0, false
	}
	for pos < limit && get(pos) && sc[4] < maxCount {
		sc[4]++
		pos++
	}
	if sc[4] >= maxCount {
		return sc, 0, false
	}
	return sc, pos, true
}

func (f *finderScanner) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	get := func(i int) bool { return f.image.Get(centerJ, i) }
	sc, end, ok := scanFinderAxis(get, f.image.Height(), startI, maxCount)
	if !ok {
		return math.NaN()
	}
	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	if 5*iabs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !ratiosMatchFinder(sc) {
		return math.NaN()
	}
	return centerFromRunEnd(sc, end)
}

func (f *finderScanner) crossCheckHorizontal(startJ, centerI, maxCount, originalTotal int) float64 {
	get := func(j int) bool { return f.image.Get(j, centerI) }
	sc, end, ok := scanFinderAxis(get, f.image.Width(), startJ, maxCount)
	if !ok {
		return math.NaN()
	}
	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	if 5*iabs(total-originalTotal) >= originalTotal {
		return math.NaN()
	}
	if !ratiosMatchFinder(sc) {
		return math.NaN()
	}
	return centerFromRunEnd(sc, end)
}

// crossCheckDiagonal confirms a candidate center by walking the top-left to
// bottom-right 45-degree diagonal through it, in both directions, and
// checking the same run proportions show up there too; this rejects centers
// that only look right along one axis.
func (f *finderScanner) crossCheckDiagonal(centerI, centerJ int) bool {
	var sc [5]int

	i := 0
	for centerI >= i && centerJ >= i && f.image.Get(centerJ-i, centerI-i) {
		sc[2]++
		i++
	}
	if sc[2] == 0 {
		return false
	}
	for centerI >= i && centerJ >= i && !f.image.Get(centerJ-i, centerI-i) {
		sc[1]++
		i++
	}
	if sc[1] == 0 {
		return false
	}
	for centerI >= i && centerJ >= i && f.image.Get(centerJ-i, centerI-i) {
		sc[0]++
		i++
	}
	if sc[0] == 0 {
		return false
	}

	height, width := f.image.Height(), f.image.Width()
	i = 1
	for centerI+i < height && centerJ+i < width && f.image.Get(centerJ+i, centerI+i) {
		sc[2]++
		i++
	}
	for centerI+i < height && centerJ+i < width && !f.image.Get(centerJ+i, centerI+i) {
		sc[3]++
		i++
	}
	if sc[3] == 0 {
		return false
	}
	for centerI+i < height && centerJ+i < width && f.image.Get(centerJ+i, centerI+i) {
		sc[4]++
		i++
	}
	if sc[4] == 0 {
		return false
	}

	return ratiosMatchDiagonal(sc)
}

// handlePossibleCenter cross-checks a 1:1:3:1:1 run found on a scan row
// vertically, horizontally, and diagonally, and if all three agree, folds
// it into possibleCenters (merging with a nearby existing candidate rather
// than adding a duplicate).
func (f *finderScanner) handlePossibleCenter(sc [5]int, row, col int) bool {
	total := sc[0] + sc[1] + sc[2] + sc[3] + sc[4]
	centerJ := centerFromRunEnd(sc, col)

	centerI := f.crossCheckVertical(row, int(centerJ), sc[2], total)
	if math.IsNaN(centerI) {
		return false
	}
	centerJ = f.crossCheckHorizontal(int(centerJ), int(centerI), sc[2], total)
	if math.IsNaN(centerJ) || !f.crossCheckDiagonal(int(centerI), int(centerJ)) {
		return false
	}

	moduleSize := float64(total) / 7.0
	for idx, c := range f.possibleCenters {
		if c.aboutEquals(moduleSize, centerI, centerJ) {
			f.possibleCenters[idx] = c.combineEstimate(centerI, centerJ, moduleSize)
			return true
		}
	}
	f.possibleCenters = append(f.possibleCenters, &FinderPattern{
		X: centerJ, Y: centerI, EstimatedModuleSize: moduleSize, Count: 1,
	})
	f.resultPointCallback.Invoke(qrforge.ResultPoint{X: centerJ, Y: centerI})
	return true
}

// findRowSkip looks for two already-confirmed centers to estimate how many
// rows can safely be skipped before the next one should appear.
func (f *finderScanner) findRowSkip() int {
	if len(f.possibleCenters) <= 1 {
		return 0
	}
	var first *FinderPattern
	for _, c := range f.possibleCenters {
		if c.Count < centerQuorum {
			continue
		}
		if first == nil {
			first = c
			continue
		}
		f.hasSkipped = true
		return int(math.Abs(first.X-c.X)-math.Abs(first.Y-c.Y)) / 2
	}
	return 0
}

// haveMultiplyConfirmedCenters reports whether at least three candidates
// have reached quorum and their module size estimates are consistent with
// one another, which lets the scan stop early instead of covering the
// whole image.
func (f *finderScanner) haveMultiplyConfirmedCenters() bool {
	confirmed := 0
	totalModuleSize := 0.0
	for _, p := range f.possibleCenters {
		if p.Count >= centerQuorum {
			confirmed++
			totalModuleSize += p.EstimatedModuleSize
		}
	}
	if confirmed < 3 {
		return false
	}
	average := totalModuleSize / float64(len(f.possibleCenters))
	deviation := 0.0
	for _, p := range f.possibleCenters {
		deviation += math.Abs(p.EstimatedModuleSize - average)
	}
	return deviation <= 0.05*totalModuleSize
}

// selectBestPatterns picks the triple of candidates, among those that
// reached quorum, whose pairwise distances best fit an isoceles right
// triangle — the shape three finder-pattern centers form.
func (f *finderScanner) selectBestPatterns() ([]*FinderPattern, error) {
	confirmed := f.possibleCenters[:0:0]
	for _, p := range f.possibleCenters {
		if p.Count >= centerQuorum {
			confirmed = append(confirmed, p)
		}
	}
	f.possibleCenters = confirmed
	if len(confirmed) < 3 {
		return nil, qrforge.ErrNotFound
	}

	sort.Slice(confirmed, func(i, j int) bool {
		return confirmed[i].EstimatedModuleSize < confirmed[j].EstimatedModuleSize
	})

	best := [3]*FinderPattern{}
	bestDistortion := math.MaxFloat64
	n := len(confirmed)

	for i := 0; i < n-2; i++ {
		minModuleSize := confirmed[i].EstimatedModuleSize
		for j := i + 1; j < n-1; j++ {
			sideIJ := squaredPatternDistance(confirmed[i], confirmed[j])
			for k := j + 1; k < n; k++ {
				if confirmed[k].EstimatedModuleSize > minModuleSize*1.4 {
					continue
				}
				a, b, c := sortThree(sideIJ,
					squaredPatternDistance(confirmed[j], confirmed[k]),
					squaredPatternDistance(confirmed[i], confirmed[k]))
				distortion := math.Abs(c-2*b) + math.Abs(c-2*a)
				if distortion < bestDistortion {
					bestDistortion = distortion
					best = [3]*FinderPattern{confirmed[i], confirmed[j], confirmed[k]}
				}
			}
		}
	}

	if bestDistortion == math.MaxFloat64 {
		return nil, qrforge.ErrNotFound
	}
	return best[:], nil
}

// orderFinderPatterns labels the triangle's vertices: the one opposite the
// longest side is top-left, and the cross product of the remaining two
// decides which is top-right versus bottom-left.
func orderFinderPatterns(patterns []*FinderPattern) *FinderPatternInfo {
	d01 := patternDistance(patterns[0], patterns[1])
	d12 := patternDistance(patterns[1], patterns[2])
	d02 := patternDistance(patterns[0], patterns[2])

	var topLeft, a, c *FinderPattern
	switch {
	case d12 >= d01 && d12 >= d02:
		topLeft, a, c = patterns[0], patterns[1], patterns[2]
	case d02 >= d01 && d02 >= d12:
		topLeft, a, c = patterns[1], patterns[0], patterns[2]
	default:
		topLeft, a, c = patterns[2], patterns[0], patterns[1]
	}

	cross := (c.X-topLeft.X)*(a.Y-topLeft.Y) - (c.Y-topLeft.Y)*(a.X-topLeft.X)
	if cross < 0 {
		a, c = c, a
	}

	return &FinderPatternInfo{BottomLeft: a, TopLeft: topLeft, TopRight: c}
}
