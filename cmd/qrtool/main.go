// Command qrtool encodes text into a QR code rendered as ASCII art and
// decodes QR codes back out of an ASCII-art grid, without pulling in an
// image codec.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	qrforge "github.com/qrforge/qrforge"
	"github.com/qrforge/qrforge/binarizer"
	_ "github.com/qrforge/qrforge/qrcode" // register the QR reader/writer
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "encode":
		runEncode(os.Args[2:])
	case "decode":
		runDecode(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: qrtool encode [flags] <text>")
	fmt.Fprintln(os.Stderr, "       qrtool decode [flags] < ascii-art")
}

func runEncode(args []string) {
	fs := pflag.NewFlagSet("encode", pflag.ExitOnError)
	ec := fs.StringP("ec-level", "e", "M", "error correction level: L, M, Q, H")
	margin := fs.IntP("margin", "m", 2, "quiet zone width in modules")
	version := fs.IntP("version", "v", 0, "QR version to force (0 lets the encoder choose)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	text := fs.Arg(0)

	matrix, err := qrforge.Encode(text, qrforge.FormatQRCode, 0, 0, &qrforge.EncodeOptions{
		ErrorCorrection: *ec,
		Margin:          margin,
		QRVersion:       *version,
		QRMaskPattern:   -1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for y := 0; y < matrix.Height(); y++ {
		for x := 0; x < matrix.Width(); x++ {
			if matrix.Get(x, y) {
				w.WriteString("##")
			} else {
				w.WriteString("  ")
			}
		}
		w.WriteByte('\n')
	}
}

func runDecode(args []string) {
	fs := pflag.NewFlagSet("decode", pflag.ExitOnError)
	tryHarder := fs.BoolP("try-harder", "t", false, "spend more time looking for the symbol")
	pure := fs.BoolP("pure", "p", true, "hint that the input is a clean, unrotated render")
	fs.Parse(args)

	source, err := readAsciiArt(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	bitmap := qrforge.NewBinaryBitmap(binarizer.NewGlobalHistogram(source))
	result, err := qrforge.Decode(bitmap, &qrforge.DecodeOptions{
		TryHarder:   *tryHarder,
		PureBarcode: *pure,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result.Text)
}

// asciiLuminanceSource treats each pair of characters written by runEncode
// as one luminance sample: a space is white (255), anything else is black
// (0). This lets the decoder round-trip runEncode's own output without
// going through an image codec.
type asciiLuminanceSource struct {
	pix    []byte
	width  int
	height int
}

func (s *asciiLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if row == nil || len(row) < s.width {
		row = make([]byte, s.width)
	}
	copy(row, s.pix[y*s.width:(y+1)*s.width])
	return row
}

func (s *asciiLuminanceSource) Matrix() []byte {
	out := make([]byte, len(s.pix))
	copy(out, s.pix)
	return out
}

func (s *asciiLuminanceSource) Width() int  { return s.width }
func (s *asciiLuminanceSource) Height() int { return s.height }

// readAsciiArt reads lines of "##"/"  " pairs (as produced by runEncode) and
// turns them into a LuminanceSource. Lines are padded to the widest line
// with white so a ragged grid doesn't panic.
func readAsciiArt(f *os.File) (qrforge.LuminanceSource, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var rows [][]byte
	width := 0
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		row := make([]byte, 0, len(line)/2+1)
		for i := 0; i < len(line); i += 2 {
			end := i + 2
			if end > len(line) {
				end = len(line)
			}
			if line[i:end] == "  " {
				row = append(row, 0xFF)
			} else {
				row = append(row, 0x00)
			}
		}
		if len(row) > width {
			width = len(row)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 || width == 0 {
		return nil, fmt.Errorf("no input read")
	}

	pix := make([]byte, width*len(rows))
	for y, row := range rows {
		for x := 0; x < width; x++ {
			if x < len(row) {
				pix[y*width+x] = row[x]
			} else {
				pix[y*width+x] = 0xFF
			}
		}
	}
	return &asciiLuminanceSource{pix: pix, width: width, height: len(rows)}, nil
}
