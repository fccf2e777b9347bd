package dataset

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// candidate is one entry of the encoding decision table. decode returns the
// decoded text or an error when the bytes are implausible for the encoding.
type candidate struct {
	name   string
	decode func([]byte) (string, error)
}

// windows1252Undefined lists the byte values Windows-1252 leaves unassigned.
// Their presence rules the encoding out.
var windows1252Undefined = [...]byte{0x81, 0x8d, 0x8f, 0x90, 0x9d}

// encodingCandidates is the ordered decision table the loader walks.
// UTF-8 wins when the bytes validate; ISO 8859-1 is rejected when C1
// control bytes appear (real Latin-1 text never contains them); then
// Windows-1252, which maps most of that C1 block to punctuation. Byte-level
// detection runs only when the whole table has been exhausted.
var encodingCandidates = []candidate{
	{
		name: "utf-8",
		decode: func(b []byte) (string, error) {
			if !utf8.Valid(b) {
				return "", fmt.Errorf("invalid UTF-8 byte sequence")
			}
			return string(b), nil
		},
	},
	{
		name: "iso-8859-1",
		decode: func(b []byte) (string, error) {
			for _, c := range b {
				if c >= 0x80 && c <= 0x9f {
					return "", fmt.Errorf("C1 control byte 0x%02x", c)
				}
			}
			return charmap.ISO8859_1.NewDecoder().String(string(b))
		},
	},
	{
		name: "windows-1252",
		decode: func(b []byte) (string, error) {
			for _, c := range b {
				for _, u := range windows1252Undefined {
					if c == u {
						return "", fmt.Errorf("unassigned byte 0x%02x", c)
					}
				}
			}
			return charmap.Windows1252.NewDecoder().String(string(b))
		},
	},
}

// decodeText decodes raw file bytes using the candidate table, falling back
// to content-based charset detection. It returns the decoded text and the
// name of the encoding that succeeded.
func decodeText(raw []byte) (string, string, error) {
	for _, c := range encodingCandidates {
		if text, err := c.decode(raw); err == nil {
			return text, c.name, nil
		}
	}

	// Last resort: sniff the encoding from the bytes themselves.
	enc, name, _ := charset.DetermineEncoding(raw, "text/plain; charset=")
	if enc == nil {
		return "", "", ErrUndecodable
	}
	text, err := enc.NewDecoder().String(string(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: detected %s but decoding failed: %v", ErrUndecodable, name, err)
	}
	return text, name, nil
}
