package charset

import (
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeBytes converts bytes from the given encoding to UTF-8.
// Returns the original bytes if the encoding is already UTF-8/ASCII/ISO-8859-1
// or if conversion fails.
func DecodeBytes(data []byte, encoding string) string {
	switch encoding {
	case "Shift_JIS", "SJIS":
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err == nil {
			return string(decoded)
		}
		return string(data)
	case "GB18030", "GB2312", "GBK", "EUC_CN":
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
		if err == nil {
			return string(decoded)
		}
		return string(data)
	default:
		return string(data)
	}
}

// utf8Classifier tracks whether a byte stream seen so far is still
// consistent with well-formed UTF-8, and how many multi-byte sequences of
// each width it contains.
type utf8Classifier struct {
	possible              bool
	continuationsExpected int
	twoByte, threeByte, fourByte int
}

func newUTF8Classifier() *utf8Classifier { return &utf8Classifier{possible: true} }

func (c *utf8Classifier) observe(value int) {
	if !c.possible {
		return
	}
	if c.continuationsExpected > 0 {
		if value&0x80 == 0 {
			c.possible = false
		} else {
			c.continuationsExpected--
		}
		return
	}
	if value&0x80 == 0 {
		return
	}
	if value&0x40 == 0 {
		c.possible = false
		return
	}
	c.continuationsExpected++
	if value&0x20 == 0 {
		c.twoByte++
		return
	}
	c.continuationsExpected++
	if value&0x10 == 0 {
		c.threeByte++
		return
	}
	c.continuationsExpected++
	if value&0x08 == 0 {
		c.fourByte++
		return
	}
	c.possible = false
}

// finish reports whether the stream is consistent with UTF-8 end to end; a
// sequence left expecting more continuation bytes was truncated mid-rune.
func (c *utf8Classifier) finish() bool {
	if c.continuationsExpected > 0 {
		c.possible = false
	}
	return c.possible
}

func (c *utf8Classifier) multiByteChars() int {
	return c.twoByte + c.threeByte + c.fourByte
}

// latin1Classifier tracks whether a byte stream is consistent with
// ISO-8859-1, which has no multi-byte sequences but does reserve a block
// of control codes that real text doesn't use.
type latin1Classifier struct {
	possible  bool
	highOther int
}

func newLatin1Classifier() *latin1Classifier { return &latin1Classifier{possible: true} }

func (c *latin1Classifier) observe(value int) {
	if !c.possible {
		return
	}
	switch {
	case value > 0x7F && value < 0xA0:
		c.possible = false
	case value > 0x9F && (value < 0xC0 || value == 0xD7 || value == 0xF7):
		c.highOther++
	}
}

// sjisClassifier tracks whether a byte stream is consistent with
// Shift_JIS, and the longest unbroken run of half-width katakana and of
// double-byte (kanji) characters it contains — long runs of either are
// strong evidence against a false-positive match.
type sjisClassifier struct {
	possible                           bool
	continuationsExpected              int
	katakanaChars                      int
	curKatakanaRun, curDoubleByteRun    int
	maxKatakanaRun, maxDoubleByteRun    int
}

func newSJISClassifier() *sjisClassifier { return &sjisClassifier{possible: true} }

func (c *sjisClassifier) observe(value int) {
	if !c.possible {
		return
	}
	switch {
	case c.continuationsExpected > 0:
		if value < 0x40 || value == 0x7F || value > 0xFC {
			c.possible = false
		} else {
			c.continuationsExpected--
		}
	case value == 0x80 || value == 0xA0 || value > 0xEF:
		c.possible = false
	case value > 0xA0 && value < 0xE0:
		c.katakanaChars++
		c.curDoubleByteRun = 0
		c.curKatakanaRun++
		if c.curKatakanaRun > c.maxKatakanaRun {
			c.maxKatakanaRun = c.curKatakanaRun
		}
	case value > 0x7F:
		c.continuationsExpected++
		c.curKatakanaRun = 0
		c.curDoubleByteRun++
		if c.curDoubleByteRun > c.maxDoubleByteRun {
			c.maxDoubleByteRun = c.curDoubleByteRun
		}
	default:
		c.curKatakanaRun = 0
		c.curDoubleByteRun = 0
	}
}

func (c *sjisClassifier) finish() bool {
	if c.continuationsExpected > 0 {
		c.possible = false
	}
	return c.possible
}

// GuessEncoding attempts to guess the encoding of a byte sequence, running
// the UTF-8, Shift_JIS, and ISO-8859-1 classifiers over it in lockstep and
// picking whichever still-plausible encoding has the strongest evidence.
// Returns "UTF-16" (for a byte-order mark), "UTF-8", "Shift_JIS" or
// "ISO-8859-1", falling back to "UTF-8"; a non-empty characterSet is
// returned unchanged.
func GuessEncoding(data []byte, characterSet string) string {
	if characterSet != "" {
		return characterSet
	}

	if len(data) > 2 &&
		((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)) {
		return "UTF-16"
	}
	utf8bom := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF

	utf8 := newUTF8Classifier()
	latin1 := newLatin1Classifier()
	sjis := newSJISClassifier()

	for _, b := range data {
		if !utf8.possible && !latin1.possible && !sjis.possible {
			break
		}
		value := int(b) & 0xFF
		utf8.observe(value)
		latin1.observe(value)
		sjis.observe(value)
	}

	canBeUTF8 := utf8.finish()
	canBeShiftJIS := sjis.finish()
	canBeISO88591 := latin1.possible

	switch {
	case canBeUTF8 && (utf8bom || utf8.multiByteChars() > 0):
		return "UTF-8"
	case canBeShiftJIS && (sjis.maxKatakanaRun >= 3 || sjis.maxDoubleByteRun >= 3):
		return "Shift_JIS"
	case canBeISO88591 && canBeShiftJIS:
		if (sjis.maxKatakanaRun == 2 && sjis.katakanaChars == 2) || latin1.highOther*10 >= len(data) {
			return "Shift_JIS"
		}
		return "ISO-8859-1"
	case canBeISO88591:
		return "ISO-8859-1"
	case canBeShiftJIS:
		return "Shift_JIS"
	default:
		return "UTF-8"
	}
}
