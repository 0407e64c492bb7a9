package charset

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
	EncodingISO885916   Encoding = "iso-8859-16"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Windows-1250 bytes for Romanian comma-below letters (ș ț Ș Ț are absent
// from ISO-8859-2 at these positions).
var windows1250Hints = map[byte]struct{}{
	0xBA: {}, 0xAA: {}, // ş Ş
	0xFE: {}, 0xDE: {}, // ţ Ţ
	0xE3: {}, 0xC3: {}, // ă Ă
	0x9A: {}, 0x8A: {}, // š Š
	0x9E: {}, 0x8E: {}, // ž Ž
}

// DetectEncoding detects the encoding of a byte buffer. Valid UTF-8 always
// wins; otherwise the single-byte Central European code page is assumed.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) || utf8.Valid(data) {
		return EncodingUTF8
	}

	// 0x80-0x9F are C1 controls in ISO-8859-2 but letters in Windows-1250.
	for _, b := range data {
		if b >= 0x80 && b <= 0x9F {
			return EncodingWindows1250
		}
	}
	for _, b := range data {
		if _, ok := windows1250Hints[b]; ok {
			return EncodingWindows1250
		}
	}
	return EncodingISO88592
}

func lookup(enc Encoding) (encoding.Encoding, error) {
	switch enc {
	case EncodingWindows1250:
		return charmap.Windows1250, nil
	case EncodingISO88592:
		return charmap.ISO8859_2, nil
	case EncodingISO885916:
		return charmap.ISO8859_16, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

// Decode converts a byte buffer from the specified encoding to a UTF-8
// string, dropping any byte order mark. An empty enc means detect.
func Decode(data []byte, enc Encoding) (string, error) {
	if enc == "" {
		enc = DetectEncoding(data)
	}
	// Files labelled with a legacy code page are sometimes UTF-8 already.
	if enc == EncodingUTF8 || utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	e, err := lookup(enc)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// ToUTF8Reader wraps a reader with a decoder to convert to UTF-8
func ToUTF8Reader(r io.Reader, enc Encoding) (io.Reader, error) {
	if enc == EncodingUTF8 || enc == "" {
		return r, nil
	}
	e, err := lookup(enc)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}
