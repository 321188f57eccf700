package qrcode

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/qrforge/qrforge/qrcode/decoder"
	"github.com/qrforge/qrforge/qrcode/encoder"
)

// TestPropertyRoundTripAcrossModesAndECLevels checks that any numeric or
// alphanumeric content (drawn from the 45-character alphanumeric set)
// encoded at any error correction level decodes back to the exact text
// given, for every version the encoder picks.
func TestPropertyRoundTripAcrossModesAndECLevels(t *testing.T) {
	levels := []decoder.ErrorCorrectionLevel{
		decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ, decoder.ECLevelH,
	}

	rapid.Check(t, func(t *rapid.T) {
		ecLevel := rapid.SampledFrom(levels).Draw(t, "ecLevel")
		content := rapid.StringMatching(`[A-Z0-9 $%*+\-./:]{1,120}`).Draw(t, "content")
		if content == "" {
			t.Skip("empty draw")
		}

		code, err := encoder.Encode(content, ecLevel, 0, -1)
		if err != nil {
			t.Fatalf("Encode(%q, %v) failed: %v", content, ecLevel, err)
		}

		bits := code.ToBitMatrix()
		dec := decoder.NewDecoder()
		result, err := dec.Decode(bits, "")
		if err != nil {
			t.Fatalf("Decode failed for %q at %v: %v", content, ecLevel, err)
		}
		if result.Text != content {
			t.Fatalf("round-trip mismatch: got %q, want %q", result.Text, content)
		}
	})
}

// TestPropertyRoundTripByteMode exercises arbitrary string content, which
// mostly needs byte mode rather than the denser numeric/alphanumeric
// encodings.
func TestPropertyRoundTripByteMode(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		content := rapid.StringN(1, 150, -1).Draw(t, "content")
		if content == "" {
			t.Skip("empty draw")
		}

		code, err := encoder.Encode(content, decoder.ECLevelM, 0, -1)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		bits := code.ToBitMatrix()
		dec := decoder.NewDecoder()
		result, err := dec.Decode(bits, "")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if result.Text != content {
			t.Fatalf("round-trip mismatch: got %q, want %q", result.Text, content)
		}
	})
}
