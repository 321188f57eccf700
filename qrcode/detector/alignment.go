package detector

import (
	"math"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
)

// alignmentScanner searches a bounded region near a version's predicted
// alignment-pattern location for the small 1:1:1 square that anchors the
// grid there. Unlike a finder pattern it has no white quiet zone to key
// off, so the cross-section it looks for is black-white-black only.
type alignmentScanner struct {
	image               *bitutil.BitMatrix
	possibleCenters     []*AlignmentPattern
	startX, startY      int
	width, height       int
	moduleSize          float64
	resultPointCallback qrforge.ResultPointCallback
}

func (af *alignmentScanner) ratiosMatch(sc [3]int) bool {
	tol := af.moduleSize / 2.0
	for _, c := range sc {
		if math.Abs(af.moduleSize-float64(c)) >= tol {
			return false
		}
	}
	return true
}

func (af *alignmentScanner) find() *AlignmentPattern {
	maxJ := af.startX + af.width
	middleRow := af.startY + af.height/2

	for gen := 0; gen < af.height; gen++ {
		row := middleRow
		if gen&1 == 0 {
			row += (gen + 1) / 2
		} else {
			row -= (gen + 1) / 2
		}

		var sc [3]int
		col := af.startX
		for col < maxJ && !af.image.Get(col, row) {
			col++
		}
		state := 0
		for col < maxJ {
			if af.image.Get(col, row) {
				switch state {
				case 1:
					sc[1]++
				case 2:
					if af.ratiosMatch(sc) {
						if found := af.handlePossibleCenter(sc, row, col); found != nil {
							return found
						}
					}
					sc[0], sc[1], sc[2] = sc[2], 1, 0
					state = 1
				default:
					state++
					sc[state]++
				}
			} else {
				if state == 1 {
					state++
				}
				sc[state]++
			}
			col++
		}
		if af.ratiosMatch(sc) {
			if found := af.handlePossibleCenter(sc, row, maxJ); found != nil {
				return found
			}
		}
	}

	if len(af.possibleCenters) > 0 {
		return af.possibleCenters[0]
	}
	return nil
}

// crossCheckVertical confirms a horizontal 1:1:1 run really is the spine
// of a square alignment pattern by checking the same proportions appear
// running vertically through its estimated center.
func (af *alignmentScanner) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := af.image.Height()
	var sc [3]int

	i := startI
	for i >= 0 && af.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i--
	}
	if i < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && !af.image.Get(centerJ, i) && sc[0] <= maxCount {
		sc[0]++
		i--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && af.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i++
	}
	if i == maxI || sc[1] > maxCount {
		return math.NaN()
	}
	for i < maxI && !af.image.Get(centerJ, i) && sc[2] <= maxCount {
		sc[2]++
		i++
	}
	if sc[2] > maxCount {
		return math.NaN()
	}

	total := sc[0] + sc[1] + sc[2]
	if 5*iabs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !af.ratiosMatch(sc) {
		return math.NaN()
	}
	return float64(i-sc[2]) - float64(sc[1])/2.0
}

func (af *alignmentScanner) handlePossibleCenter(sc [3]int, row, col int) *AlignmentPattern {
	total := sc[0] + sc[1] + sc[2]
	centerJ := float64(col-sc[2]) - float64(sc[1])/2.0
	centerI := af.crossCheckVertical(row, int(centerJ), 2*sc[1], total)
	if math.IsNaN(centerI) {
		return nil
	}

	moduleSize := float64(total) / 3.0
	for _, c := range af.possibleCenters {
		if c.aboutEquals(moduleSize, centerI, centerJ) {
			return c.combineEstimate(centerI, centerJ, moduleSize)
		}
	}
	af.possibleCenters = append(af.possibleCenters, &AlignmentPattern{
		X: centerJ, Y: centerI, EstimatedModuleSize: moduleSize,
	})
	af.resultPointCallback.Invoke(qrforge.ResultPoint{X: centerJ, Y: centerI})
	return nil
}
