package inventory

import (
	"bytes"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts an uploaded file to text. UTF-16 is recognised by its byte-order mark,
// valid UTF-8 is used as is and anything else is read as Windows-1252, the encoding spreadsheet
// tools use when exporting Portuguese headers on Windows.
func DecodeText(data []byte) (string, error) {
	var dec *encoding.Decoder
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case bytes.HasPrefix(data, bomUTF16BE):
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case utf8.Valid(data):
		return string(data), nil
	default:
		dec = charmap.Windows1252.NewDecoder()
	}
	out, err := dec.Bytes(data)
	if err != nil {
		return "", errors.Wrap(err, "decode upload")
	}
	return string(out), nil
}
