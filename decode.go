package qrforge

import "context"

// ResultPointCallback receives each finder/alignment candidate as the
// detector discovers it. A panicking callback is recovered inside Invoke
// so a misbehaving hook cannot corrupt an in-flight decode.
type ResultPointCallback func(point ResultPoint)

// Invoke calls the callback, if any, recovering from any panic it raises.
func (cb ResultPointCallback) Invoke(point ResultPoint) {
	if cb == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	cb(point)
}

// DecodeOptions configures barcode decoding behavior.
type DecodeOptions struct {
	// PureBarcode hints that the image contains only the barcode with minimal
	// border and no rotation.
	PureBarcode bool

	// TryHarder enables spending more time looking for barcodes.
	TryHarder bool

	// PossibleFormats limits which formats to look for.
	PossibleFormats []Format

	// CharacterSet specifies the character set to use when decoding, used
	// only when no ECI designator appears in the bitstream.
	CharacterSet string

	// AlsoInverted enables checking for barcodes on inverted images.
	AlsoInverted bool

	// ResultPointCallback, if set, is invoked once per confirmed finder or
	// alignment pattern candidate during detection.
	ResultPointCallback ResultPointCallback
}

// Reader decodes barcodes from a BinaryBitmap.
type Reader interface {
	// Decode attempts to decode a barcode from the image.
	Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error)

	// DecodeContext is like Decode but checks ctx for cancellation between
	// pipeline stages (after binarization, and after detection with grid
	// sampling, before bitstream decoding). It is not interruptible
	// mid-stage.
	DecodeContext(ctx context.Context, image *BinaryBitmap, opts *DecodeOptions) (*Result, error)

	// Reset resets any internal state.
	Reset()
}
