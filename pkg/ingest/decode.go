package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported on a Result
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
	EncodingCP1252  = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw extract bytes to UTF-8. SAP exports arrive as UTF-8
// with or without BOM, UTF-16 from Excel "Unicode text", or Windows-1252.
func Decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode utf-16le: %w", err)
		}
		return out, EncodingUTF16LE, nil
	case bytes.HasPrefix(data, bomUTF16BE):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode utf-16be: %w", err)
		}
		return out, EncodingUTF16BE, nil
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode windows-1252: %w", err)
	}
	return out, EncodingCP1252, nil
}

// DetectDelimiter picks the most frequent of comma, semicolon and tab in the
// header line. Comma wins ties.
func DetectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, bestCount := ',', bytes.Count(header, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
