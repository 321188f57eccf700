package decoder

import (
	"fmt"
	"strings"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/bitutil"
	"github.com/qrforge/qrforge/charset"
	"github.com/qrforge/qrforge/internal"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

const gb2312Subset = 1

// DecodeBitStream decodes data bytes into a DecoderResult.
func DecodeBitStream(bytes []byte, version *Version, ecLevel ErrorCorrectionLevel, characterSet string) (*internal.DecoderResult, error) {
	bs := bitutil.NewBitSource(bytes)
	var result strings.Builder
	result.Grow(50)
	var byteSegments [][]byte
	symbolSequence := -1
	parityData := -1
	var symbologyModifier int

	var currentCharacterSetECI *charset.ECI
	fc1InEffect := false
	hasFNC1first := false
	hasFNC1second := false

	for {
		var mode Mode
		if bs.Available() < 4 {
			mode = ModeTerminator
		} else {
			modeBits, err := bs.ReadBits(4)
			if err != nil {
				return nil, qrforge.ErrFormat
			}
			mode, err = ModeForBits(modeBits)
			if err != nil {
				return nil, qrforge.ErrFormat
			}
		}

		switch mode {
		case ModeTerminator:
			// done
		case ModeFNC1FirstPosition:
			hasFNC1first = true
			fc1InEffect = true
		case ModeFNC1SecondPosition:
			hasFNC1second = true
			fc1InEffect = true
		case ModeStructuredAppend:
			if bs.Available() < 16 {
				return nil, qrforge.ErrFormat
			}
			seq, _ := bs.ReadBits(8)
			par, _ := bs.ReadBits(8)
			symbolSequence = seq
			parityData = par
		case ModeECI:
			value, err := parseECIValue(bs)
			if err != nil {
				return nil, err
			}
			eci, eciErr := charset.GetECIByValue(value)
			if eciErr != nil {
				return nil, qrforge.ErrFormat
			}
			currentCharacterSetECI = eci
		case ModeHanzi:
			subsetBits, _ := bs.ReadBits(4)
			countBits := mode.CharacterCountBits(version)
			count, _ := bs.ReadBits(countBits)
			if subsetBits == gb2312Subset {
				if err := decodeHanziSegment(bs, &result, count); err != nil {
					return nil, err
				}
			}
		default:
			countBits := mode.CharacterCountBits(version)
			count, err := bs.ReadBits(countBits)
			if err != nil {
				return nil, qrforge.ErrFormat
			}
			switch mode {
			case ModeNumeric:
				if err := decodeNumericSegment(bs, &result, count); err != nil {
					return nil, err
				}
			case ModeAlphanumeric:
				if err := decodeAlphanumericSegment(bs, &result, count, fc1InEffect); err != nil {
					return nil, err
				}
			case ModeByte:
				seg, err := decodeByteSegment(bs, &result, count, currentCharacterSetECI, characterSet)
				if err != nil {
					return nil, err
				}
				byteSegments = append(byteSegments, seg)
			case ModeKanji:
				if err := decodeKanjiSegment(bs, &result, count); err != nil {
					return nil, err
				}
			default:
				return nil, qrforge.ErrFormat
			}
		}

		if mode == ModeTerminator {
			break
		}
	}

	symbologyModifier = symbologyModifierFor(currentCharacterSetECI != nil, hasFNC1first, hasFNC1second)

	ecLevelStr := ecLevel.String()
	return internal.NewDecoderResultFull(bytes, result.String(), byteSegments, ecLevelStr,
		symbolSequence, parityData, symbologyModifier), nil
}

// decodeDoubleByteSegment reads count 13-bit codes and reassembles each into
// a 2-byte character code for a double-byte encoding: the 13 bits split into
// a row/column pair via divisor, then get shifted up into the encoding's
// actual code range depending on which side of threshold the pair falls.
// GB18030 (Hanzi mode) and Shift_JIS (Kanji mode) both work this way, only
// the constants differ.
func decodeDoubleByteSegment(bs *bitutil.BitSource, result *strings.Builder, count int,
	divisor, lowBase, highBase, threshold int, encoding string) error {
	if count*13 > bs.Available() {
		return qrforge.ErrFormat
	}
	buf := make([]byte, 2*count)
	offset := 0
	for count > 0 {
		raw, _ := bs.ReadBits(13)
		assembled := ((raw / divisor) << 8) | (raw % divisor)
		if assembled < threshold {
			assembled += lowBase
		} else {
			assembled += highBase
		}
		buf[offset] = byte(assembled >> 8)
		buf[offset+1] = byte(assembled)
		offset += 2
		count--
	}
	result.WriteString(charset.DecodeBytes(buf[:offset], encoding))
	return nil
}

func decodeHanziSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	return decodeDoubleByteSegment(bs, result, count, 0x060, 0x0A1A1, 0x0A6A1, 0x00A00, "GB18030")
}

func decodeKanjiSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	return decodeDoubleByteSegment(bs, result, count, 0x0C0, 0x08140, 0x0C140, 0x01F00, "Shift_JIS")
}

func decodeByteSegment(bs *bitutil.BitSource, result *strings.Builder, count int,
	currentECI *charset.ECI, characterSet string) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, qrforge.ErrFormat
	}
	readBytes := make([]byte, count)
	for i := 0; i < count; i++ {
		val, _ := bs.ReadBits(8)
		readBytes[i] = byte(val)
	}

	var encoding string
	if currentECI != nil {
		encoding = currentECI.GoName
	} else {
		encoding = charset.GuessEncoding(readBytes, characterSet)
	}
	result.WriteString(charset.DecodeBytes(readBytes, encoding))
	return readBytes, nil
}

func toAlphaNumericChar(value int) (byte, error) {
	if value >= len(alphanumericChars) {
		return 0, qrforge.ErrFormat
	}
	return alphanumericChars[value], nil
}

// readBitsChecked reads n bits, reporting ErrFormat rather than the
// BitSource's own error if fewer than n bits remain.
func readBitsChecked(bs *bitutil.BitSource, n int) (int, error) {
	if bs.Available() < n {
		return 0, qrforge.ErrFormat
	}
	return bs.ReadBits(n)
}

// escapeFNC1Percent walks s starting at start, replacing a literal '%' with
// the FNC1 escape byte 0x1D and a doubled "%%" with a single '%'. Text
// before start is passed through untouched.
func escapeFNC1Percent(s string, start int) string {
	var modified strings.Builder
	modified.WriteString(s[:start])
	for i := start; i < len(s); i++ {
		if s[i] == '%' {
			if i < len(s)-1 && s[i+1] == '%' {
				modified.WriteByte('%')
				i++
			} else {
				modified.WriteByte(0x1D)
			}
		} else {
			modified.WriteByte(s[i])
		}
	}
	return modified.String()
}

func decodeAlphanumericSegment(bs *bitutil.BitSource, result *strings.Builder, count int, fc1InEffect bool) error {
	start := result.Len()
	for count > 1 {
		nextTwo, err := readBitsChecked(bs, 11)
		if err != nil {
			return err
		}
		c1, err := toAlphaNumericChar(nextTwo / 45)
		if err != nil {
			return err
		}
		c2, err := toAlphaNumericChar(nextTwo % 45)
		if err != nil {
			return err
		}
		result.WriteByte(c1)
		result.WriteByte(c2)
		count -= 2
	}
	if count == 1 {
		val, err := readBitsChecked(bs, 6)
		if err != nil {
			return err
		}
		c, err := toAlphaNumericChar(val)
		if err != nil {
			return err
		}
		result.WriteByte(c)
	}
	if fc1InEffect {
		escaped := escapeFNC1Percent(result.String(), start)
		result.Reset()
		result.WriteString(escaped)
	}
	return nil
}

func decodeNumericSegment(bs *bitutil.BitSource, result *strings.Builder, count int) error {
	for count >= 3 {
		threeDigits, err := readBitsChecked(bs, 10)
		if err != nil {
			return err
		}
		if threeDigits >= 1000 {
			return qrforge.ErrFormat
		}
		result.WriteString(fmt.Sprintf("%03d", threeDigits))
		count -= 3
	}
	switch count {
	case 2:
		twoDigits, err := readBitsChecked(bs, 7)
		if err != nil {
			return err
		}
		if twoDigits >= 100 {
			return qrforge.ErrFormat
		}
		result.WriteString(fmt.Sprintf("%02d", twoDigits))
	case 1:
		digit, err := readBitsChecked(bs, 4)
		if err != nil {
			return err
		}
		if digit >= 10 {
			return qrforge.ErrFormat
		}
		result.WriteString(fmt.Sprintf("%d", digit))
	}
	return nil
}

// symbologyModifierFor maps which out-of-band signals were seen while
// walking the bitstream to the ISO/IEC 15424 symbology identifier modifier
// digit: ECI presence and FNC1 position each shift the value independently.
func symbologyModifierFor(hasECI, fnc1First, fnc1Second bool) int {
	switch {
	case hasECI && fnc1First:
		return 4
	case hasECI && fnc1Second:
		return 6
	case hasECI:
		return 2
	case fnc1First:
		return 3
	case fnc1Second:
		return 5
	default:
		return 1
	}
}

func parseECIValue(bs *bitutil.BitSource) (int, error) {
	firstByte, err := bs.ReadBits(8)
	if err != nil {
		return 0, qrforge.ErrFormat
	}
	if (firstByte & 0x80) == 0 {
		return firstByte & 0x7F, nil
	}
	if (firstByte & 0xC0) == 0x80 {
		secondByte, _ := bs.ReadBits(8)
		return ((firstByte & 0x3F) << 8) | secondByte, nil
	}
	if (firstByte & 0xE0) == 0xC0 {
		secondThirdBytes, _ := bs.ReadBits(16)
		return ((firstByte & 0x1F) << 16) | secondThirdBytes, nil
	}
	return 0, qrforge.ErrFormat
}
