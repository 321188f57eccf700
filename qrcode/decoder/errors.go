package decoder

// decodeError is a fixed-format validation error for a field decoded out of
// a symbol's fixed-position bits (mode indicator, EC level, version). It's a
// plain string underneath so the sentinels below can be declared as consts.
type decodeError string

func (e decodeError) Error() string { return string(e) }

const (
	errInvalidECLevel decodeError = "qrcode/decoder: invalid error correction level"
	errInvalidMode    decodeError = "qrcode/decoder: invalid mode"
	errInvalidVersion decodeError = "qrcode/decoder: invalid version number"
)
