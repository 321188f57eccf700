package qrforge

import "github.com/qrforge/qrforge/bitutil"

// EncodeOptions configures barcode encoding behavior.
type EncodeOptions struct {
	// ErrorCorrection specifies the error correction level: "L", "M", "Q", or "H".
	ErrorCorrection string

	// CharacterSet specifies the character set to use for BYTE-mode content.
	CharacterSet string

	// Margin specifies the margin (quiet zone) in modules around the barcode.
	Margin *int

	// QRVersion forces a specific QR version (1-40); 0 selects the smallest
	// version that fits the content.
	QRVersion int

	// QRMaskPattern forces a specific QR mask pattern (0-7); -1 selects the
	// mask that minimizes the penalty score.
	QRMaskPattern int
}

// Writer encodes data into a barcode.
type Writer interface {
	// Encode encodes the given contents into a barcode.
	Encode(contents string, format Format, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error)
}
