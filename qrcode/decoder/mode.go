package decoder

// Mode represents a QR code data encoding mode. A Mode's value is its own
// 4-bit wire encoding, so ModeForBits needs nothing more than a lookup
// against the modes known to characterCountBits.
type Mode int

const (
	ModeTerminator         Mode = 0x00
	ModeNumeric            Mode = 0x01
	ModeAlphanumeric       Mode = 0x02
	ModeStructuredAppend   Mode = 0x03
	ModeByte               Mode = 0x04
	ModeFNC1FirstPosition  Mode = 0x05
	ModeECI                Mode = 0x07
	ModeKanji              Mode = 0x08
	ModeFNC1SecondPosition Mode = 0x09
	ModeHanzi              Mode = 0x0D
)

// characterCountBits holds, per mode, the [v1-9, v10-26, v27-40] bit counts
// used to encode that mode's character count.
var characterCountBits = map[Mode][3]int{
	ModeTerminator:         {0, 0, 0},
	ModeNumeric:            {10, 12, 14},
	ModeAlphanumeric:       {9, 11, 13},
	ModeStructuredAppend:   {0, 0, 0},
	ModeByte:               {8, 16, 16},
	ModeECI:                {0, 0, 0},
	ModeKanji:              {8, 10, 12},
	ModeFNC1FirstPosition:  {0, 0, 0},
	ModeFNC1SecondPosition: {0, 0, 0},
	ModeHanzi:              {8, 10, 12},
}

// ModeForBits returns the Mode for the given 4-bit value, rejecting values
// that don't name one of the modes above (0x6, 0xA-0xC, 0xE-0xF).
func ModeForBits(bits int) (Mode, error) {
	m := Mode(bits)
	if _, known := characterCountBits[m]; !known {
		return 0, errInvalidMode
	}
	return m, nil
}

// CharacterCountBits returns the number of bits used to encode the character
// count for this mode in the given version.
func (m Mode) CharacterCountBits(version *Version) int {
	offset := 2
	switch {
	case version.Number <= 9:
		offset = 0
	case version.Number <= 26:
		offset = 1
	}
	return characterCountBits[m][offset]
}

// Bits returns the 4-bit encoding of this mode.
func (m Mode) Bits() int {
	return int(m)
}
