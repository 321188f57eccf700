// Package qrcode provides QR code reading and writing.
package qrcode

import (
	"context"
	"fmt"
	"math"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
	"github.com/qrforge/qrforge/internal"
	"github.com/qrforge/qrforge/qrcode/decoder"
	"github.com/qrforge/qrforge/qrcode/detector"
)

// Reader decodes QR codes from binary images. A Reader is not safe for
// concurrent use by multiple goroutines sharing one instance; give each
// goroutine its own Reader.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a new QR code Reader.
func NewReader() *Reader {
	return &Reader{
		dec: decoder.NewDecoder(),
	}
}

// Decode locates and decodes a QR code in the given image.
func (r *Reader) Decode(image *qrforge.BinaryBitmap, opts *qrforge.DecodeOptions) (*qrforge.Result, error) {
	return r.DecodeContext(context.Background(), image, opts)
}

// DecodeContext is like Decode but checks ctx for cancellation between
// pipeline stages: after binarization, and after detection with grid
// sampling (or pure-barcode bit extraction), before bitstream decoding. It
// is not interruptible mid-stage.
func (r *Reader) DecodeContext(ctx context.Context, image *qrforge.BinaryBitmap, opts *qrforge.DecodeOptions) (*qrforge.Result, error) {
	if opts == nil {
		opts = &qrforge.DecodeOptions{}
	}

	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.PureBarcode {
		bits, err := extractPureBits(matrix)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dr, err := r.dec.Decode(bits, opts.CharacterSet)
		if err != nil {
			return nil, err
		}
		result := buildResult(dr, nil)
		qrforge.Logger.Debug("decoded pure QR code", "text_len", len(dr.Text), "ec_level", dr.ECLevel)
		return result, nil
	}

	det := detector.NewDetector(matrix)
	det.SetResultPointCallback(opts.ResultPointCallback)
	detectorResult, err := det.Detect(opts.TryHarder)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dr, err := r.dec.Decode(detectorResult.Bits, opts.CharacterSet)
	if err != nil {
		return nil, err
	}

	points := make([]qrforge.ResultPoint, len(detectorResult.Points))
	for i, p := range detectorResult.Points {
		points[i] = qrforge.ResultPoint{X: p.X, Y: p.Y}
	}
	if dr.Mirrored() {
		qrforge.Logger.Warn("recovered QR code via mirrored re-parse", "text_len", len(dr.Text))
		if len(points) >= 3 {
			points[0], points[2] = points[2], points[0]
		}
	}

	result := buildResult(dr, points)
	qrforge.Logger.Debug("decoded QR code", "text_len", len(dr.Text), "ec_level", dr.ECLevel)
	return result, nil
}

// buildResult wraps a decoded bitstream and its result points into a Result,
// populating the metadata keys the pure-barcode and detector paths both set
// the same way.
func buildResult(dr *internal.DecoderResult, points []qrforge.ResultPoint) *qrforge.Result {
	result := qrforge.NewResult(dr.Text, dr.RawBytes, points, qrforge.FormatQRCode)
	populateMetadata(result, dr.ByteSegments, dr.ECLevel,
		dr.HasStructuredAppend(), dr.StructuredAppendSequenceNumber,
		dr.StructuredAppendParity, dr.ErrorsCorrected, dr.SymbologyModifier)
	return result
}

// Reset resets internal state.
func (r *Reader) Reset() {
	// nothing to reset
}

func populateMetadata(result *qrforge.Result, byteSegments [][]byte, ecLevel string,
	hasStructuredAppend bool, saSequence, saParity, errorsCorrected, symbologyModifier int) {
	if byteSegments != nil {
		result.PutMetadata(qrforge.MetadataByteSegments, byteSegments)
	}
	if ecLevel != "" {
		result.PutMetadata(qrforge.MetadataErrorCorrectionLevel, ecLevel)
	}
	if hasStructuredAppend {
		result.PutMetadata(qrforge.MetadataStructuredAppendSequence, saSequence)
		result.PutMetadata(qrforge.MetadataStructuredAppendParity, saParity)
	}
	result.PutMetadata(qrforge.MetadataErrorsCorrected, errorsCorrected)
	result.PutMetadata(qrforge.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", symbologyModifier))
}

// extractPureBits extracts a QR code from a "pure" image — one that contains
// only the unrotated, unskewed barcode with some white border.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	leftTopBlack := image.TopLeftOnBit()
	rightBottomBlack := image.BottomRightOnBit()
	if leftTopBlack == nil || rightBottomBlack == nil {
		return nil, qrforge.ErrNotFound
	}

	moduleSize, err := moduleSizePure(leftTopBlack, image)
	if err != nil {
		return nil, err
	}

	top := leftTopBlack[1]
	bottom := rightBottomBlack[1]
	left := leftTopBlack[0]
	right := rightBottomBlack[0]

	if left >= right || top >= bottom {
		return nil, qrforge.ErrNotFound
	}

	if bottom-top != right-left {
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, qrforge.ErrNotFound
		}
	}

	matrixWidth := int(math.Round(float64(right-left+1) / moduleSize))
	matrixHeight := int(math.Round(float64(bottom-top+1) / moduleSize))
	if matrixWidth <= 0 || matrixHeight <= 0 {
		return nil, qrforge.ErrNotFound
	}
	if matrixHeight != matrixWidth {
		return nil, qrforge.ErrNotFound
	}

	nudge := int(moduleSize / 2.0)
	top += nudge
	left += nudge

	left, err = pullBackIfOvershot(left, nudge, int(float64(matrixWidth-1)*moduleSize), right)
	if err != nil {
		return nil, err
	}
	top, err = pullBackIfOvershot(top, nudge, int(float64(matrixHeight-1)*moduleSize), bottom)
	if err != nil {
		return nil, err
	}

	bits := bitutil.NewBitMatrix(matrixWidth)
	for y := 0; y < matrixHeight; y++ {
		iOffset := top + int(float64(y)*moduleSize)
		for x := 0; x < matrixWidth; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iOffset) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pullBackIfOvershot checks whether nudging start by span overshoots edge; a
// small overshoot (within nudge) gets pulled back, a larger one means the
// module grid doesn't actually fit the detected quiet zone.
func pullBackIfOvershot(start, nudge, span, edge int) (int, error) {
	overshoot := start + span - edge
	if overshoot <= 0 {
		return start, nil
	}
	if overshoot > nudge {
		return 0, qrforge.ErrNotFound
	}
	return start - overshoot, nil
}

func moduleSizePure(leftTopBlack []int, image *bitutil.BitMatrix) (float64, error) {
	height := image.Height()
	width := image.Width()
	x := leftTopBlack[0]
	y := leftTopBlack[1]
	inBlack := true
	transitions := 0
	for x < width && y < height {
		if inBlack != image.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == width || y == height {
		return 0, qrforge.ErrNotFound
	}
	return float64(x-leftTopBlack[0]) / 7.0, nil
}
