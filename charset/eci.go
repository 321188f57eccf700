// Package charset provides character set ECI mappings and encoding detection.
package charset

import "errors"

// ErrFormatECI indicates an invalid ECI value.
var ErrFormatECI = errors.New("charset: invalid ECI value")

// ECI represents a Character Set Extended Channel Interpretation: a QR
// symbol can switch encodings mid-stream by emitting one of these values,
// and GoName names the Go standard/x/text encoding it maps onto.
type ECI struct {
	Value   int
	Name    string
	GoName  string
	Aliases []string
}

var (
	valueToECI = map[int]*ECI{}
	nameToECI  = map[string]*ECI{}
)

// defineECI registers an ECI under its canonical value and every name it's
// known by, and returns it so the result can be bound to a package var.
// Declaring it this way keeps a value's registration and its named handle
// in one place instead of a struct literal plus a separate lookup table.
func defineECI(value int, name, goName string, aliases ...string) *ECI {
	eci := &ECI{Value: value, Name: name, GoName: goName, Aliases: aliases}
	valueToECI[value] = eci
	nameToECI[name] = eci
	nameToECI[goName] = eci
	for _, alias := range aliases {
		nameToECI[alias] = eci
	}
	return eci
}

// aliasValue additionally registers oldValue as referring to eci, for ECI
// values that were reassigned over the years but whose old numbers still
// show up in the wild.
func aliasValue(eci *ECI, oldValue int) *ECI {
	valueToECI[oldValue] = eci
	return eci
}

// Predefined ECIs, by encoding. Values and names follow the ISO/IEC 18004
// ECI designator registry.
var (
	ECICp437      = aliasValue(defineECI(0, "Cp437", "IBM437"), 2)
	ECIISO8859_1  = aliasValue(defineECI(1, "ISO8859_1", "ISO8859_1", "ISO-8859-1"), 3)
	ECIISO8859_2  = defineECI(4, "ISO8859_2", "ISO8859_2", "ISO-8859-2")
	ECIISO8859_3  = defineECI(5, "ISO8859_3", "ISO8859_3", "ISO-8859-3")
	ECIISO8859_4  = defineECI(6, "ISO8859_4", "ISO8859_4", "ISO-8859-4")
	ECIISO8859_5  = defineECI(7, "ISO8859_5", "ISO8859_5", "ISO-8859-5")
	ECIISO8859_6  = defineECI(8, "ISO8859_6", "ISO8859_6", "ISO-8859-6")
	ECIISO8859_7  = defineECI(9, "ISO8859_7", "ISO8859_7", "ISO-8859-7")
	ECIISO8859_8  = defineECI(10, "ISO8859_8", "ISO8859_8", "ISO-8859-8")
	ECIISO8859_9  = defineECI(11, "ISO8859_9", "ISO8859_9", "ISO-8859-9")
	ECIISO8859_10 = defineECI(12, "ISO8859_10", "ISO8859_10", "ISO-8859-10")
	ECIISO8859_11 = defineECI(13, "ISO8859_11", "ISO8859_11", "ISO-8859-11")
	ECIISO8859_13 = defineECI(15, "ISO8859_13", "ISO8859_13", "ISO-8859-13")
	ECIISO8859_14 = defineECI(16, "ISO8859_14", "ISO8859_14", "ISO-8859-14")
	ECIISO8859_15 = defineECI(17, "ISO8859_15", "ISO8859_15", "ISO-8859-15")
	ECIISO8859_16 = defineECI(18, "ISO8859_16", "ISO8859_16", "ISO-8859-16")
	ECISJIS       = defineECI(20, "SJIS", "Shift_JIS", "Shift_JIS")
	ECICp1250     = defineECI(21, "Cp1250", "Windows1250", "windows-1250")
	ECICp1251     = defineECI(22, "Cp1251", "Windows1251", "windows-1251")
	ECICp1252     = defineECI(23, "Cp1252", "Windows1252", "windows-1252")
	ECICp1256     = defineECI(24, "Cp1256", "Windows1256", "windows-1256")
	ECIUTF16BE    = defineECI(25, "UnicodeBigUnmarked", "UTF-16BE", "UTF-16BE", "UnicodeBig")
	ECIUTF8       = defineECI(26, "UTF8", "UTF-8", "UTF-8")
	ECIASCII      = aliasValue(defineECI(27, "ASCII", "US-ASCII", "US-ASCII"), 170)
	ECIBig5       = defineECI(28, "Big5", "Big5")
	ECIGB18030    = defineECI(29, "GB18030", "GB18030", "GB2312", "EUC_CN", "GBK")
	ECIEUC_KR     = defineECI(30, "EUC_KR", "EUC-KR", "EUC-KR")
)

// GetECIByValue returns the ECI for the given value, or an error if it's
// outside the valid ECI value range. A value inside the range but not
// assigned to any known ECI returns (nil, nil).
func GetECIByValue(value int) (*ECI, error) {
	if value < 0 || value >= 900 {
		return nil, ErrFormatECI
	}
	return valueToECI[value], nil
}

// GetECIByName returns the ECI registered under name, or nil if none is.
func GetECIByName(name string) *ECI {
	return nameToECI[name]
}
