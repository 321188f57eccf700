package qrcode

import qrforge "github.com/qrforge/qrforge"

func init() {
	qrforge.RegisterReader(qrforge.FormatQRCode, func(opts *qrforge.DecodeOptions) qrforge.Reader {
		return NewReader()
	})
	qrforge.RegisterWriter(qrforge.FormatQRCode, func() qrforge.Writer {
		return NewWriter()
	})
}
