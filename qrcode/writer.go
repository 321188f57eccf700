package qrcode

import (
	"fmt"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
	"github.com/qrforge/qrforge/qrcode/decoder"
	"github.com/qrforge/qrforge/qrcode/encoder"
)

const defaultQuietZoneSize = 4

// Writer encodes QR codes.
type Writer struct{}

// NewWriter creates a new QR code Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes the given contents into a QR code BitMatrix.
func (w *Writer) Encode(contents string, format qrforge.Format, width, height int, opts *qrforge.EncodeOptions) (*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("found empty contents: %w", qrforge.ErrIllegalArgument)
	}
	if format != qrforge.FormatQRCode {
		return nil, fmt.Errorf("can only encode QR_CODE, but got %s: %w", format, qrforge.ErrIllegalArgument)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("requested dimensions are too small: %dx%d: %w", width, height, qrforge.ErrIllegalArgument)
	}

	ecLevel := decoder.ECLevelL
	quietZone := defaultQuietZoneSize
	qrVersion := 0
	maskPattern := -1

	if opts != nil {
		if opts.ErrorCorrection != "" {
			switch opts.ErrorCorrection {
			case "L":
				ecLevel = decoder.ECLevelL
			case "M":
				ecLevel = decoder.ECLevelM
			case "Q":
				ecLevel = decoder.ECLevelQ
			case "H":
				ecLevel = decoder.ECLevelH
			default:
				return nil, fmt.Errorf("unknown error correction level: %s: %w", opts.ErrorCorrection, qrforge.ErrIllegalArgument)
			}
		}
		if opts.Margin != nil {
			quietZone = *opts.Margin
		}
		if opts.QRVersion > 0 {
			qrVersion = opts.QRVersion
		}
		if opts.QRMaskPattern >= 0 && opts.QRMaskPattern <= 7 {
			maskPattern = opts.QRMaskPattern
		}
	}

	code, err := encoder.Encode(contents, ecLevel, qrVersion, maskPattern)
	if err != nil {
		return nil, err
	}
	qrforge.Logger.Debug("encoded QR code", "ec_level", ecLevel, "version", code.Version.Number, "mask", code.MaskPattern)
	return encoder.RenderResult(code, width, height, quietZone), nil
}
