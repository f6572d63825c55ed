package ingest

// decode.go prepares raw uploaded bytes for the text parsers.
//
// Two problems show up in supplier files regularly:
//   - A UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows programs, which would
//     otherwise end up glued to the first header label.
//   - Windows-1251 encoded exports from Russian accounting software. Bytes
//     that are not valid UTF-8 are decoded as Windows-1251 rather than
//     replaced, so Cyrillic headers and names survive.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns data without a leading UTF-8 BOM.
func skipBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// newTextReader returns a UTF-8 reader over data with any BOM removed.
// Input that is not valid UTF-8 is decoded as Windows-1251.
func newTextReader(data []byte) io.Reader {
	data = skipBOM(data)
	if utf8.Valid(data) {
		return bytes.NewReader(data)
	}
	return transform.NewReader(bytes.NewReader(data), charmap.Windows1251.NewDecoder())
}

// decodeText reads the whole input through newTextReader.
func decodeText(data []byte) ([]byte, error) {
	return io.ReadAll(newTextReader(data))
}

// charsetReader resolves the encoding named in an XML declaration.
// Used as xml.Decoder.CharsetReader; UTF-8 never reaches it.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(label)))
	if err != nil {
		return nil, fmt.Errorf("unsupported xml encoding %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
