package dataprocessing

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Encoding names reported in IngestResult
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin-1"
	EncodingGBK         = "gbk"
	EncodingShiftJIS    = "shift_jis"
	EncodingReplacement = "utf-8-replace"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textCandidate is one strict decoding attempt in the cascade
type textCandidate struct {
	name    string
	decoder encoding.Encoding // nil means native UTF-8
}

// decodeCascade is tried in order; the first strict success wins.
var decodeCascade = []textCandidate{
	{name: EncodingUTF8},
	{name: EncodingLatin1, decoder: charmap.ISO8859_1},
	{name: EncodingGBK, decoder: simplifiedchinese.GBK},
	{name: EncodingShiftJIS, decoder: japanese.ShiftJIS},
}

// DecodedText is the text produced by DecodeText and how it was obtained
type DecodedText struct {
	Text             string
	Encoding         string
	Replaced         bool
	ReplacementCount int
}

// DecodeText converts raw bytes to text. Each encoding in the cascade is
// tried strictly. UTF-8 wins whenever the bytes are valid UTF-8, whatever
// runes they carry. A legacy candidate fails if decoding errors, yields
// U+FFFD or yields control characters other than tab, CR and LF. If every
// candidate fails, the bytes are decoded as UTF-8 with each invalid byte
// replaced by U+FFFD. A leading UTF-8 byte order mark is dropped.
// DecodeText never fails.
func DecodeText(data []byte) DecodedText {
	data = bytes.TrimPrefix(data, utf8BOM)

	for _, c := range decodeCascade {
		if text, ok := c.decode(data); ok {
			return DecodedText{Text: text, Encoding: c.name}
		}
	}

	text, n := decodeWithReplacement(data)
	return DecodedText{
		Text:             text,
		Encoding:         EncodingReplacement,
		Replaced:         n > 0,
		ReplacementCount: n,
	}
}

func (c textCandidate) decode(data []byte) (string, bool) {
	if c.decoder == nil {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	out, err := c.decoder.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	text := string(out)
	if !cleanText(text) {
		return "", false
	}
	return text, true
}

// cleanText rejects replacement characters and stray control characters in
// legacy decodings. Latin-1 maps every byte to a rune, so C1 controls are
// the signal that the bytes were not really Latin-1.
func cleanText(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		if r == utf8.RuneError {
			return true
		}
		if r == '\t' || r == '\r' || r == '\n' {
			return false
		}
		return unicode.IsControl(r)
	}) < 0
}

// decodeWithReplacement decodes UTF-8, substituting U+FFFD for every
// invalid byte, and returns the number of substitutions.
func decodeWithReplacement(data []byte) (string, int) {
	var sb strings.Builder
	sb.Grow(len(data))
	replaced := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			replaced++
			data = data[1:]
			continue
		}
		sb.WriteRune(r)
		data = data[size:]
	}
	return sb.String(), replaced
}
