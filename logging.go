package qrforge

import "github.com/charmbracelet/log"

// Logger is the package-wide diagnostic logger. The QR reader and writer
// log at Debug when a decode or encode succeeds, and at Warn when a symbol
// is recovered through the mirrored re-parse; the Reed-Solomon decoder logs
// at Warn when a block cannot be corrected. Ordinary not-found and format
// failures are returned as errors, never logged, so a caller
// scanning many frames isn't forced to pay logging overhead for expected
// misses. Embedding applications may replace this with their own logger.
var Logger = log.Default()
