package main

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf16le keeps a leading BOM as U+FEFF instead of consuming it,
// so decoding and re-encoding give back the same bytes
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// validateUTF16LE rejects an odd byte count and unpaired surrogates
func validateUTF16LE(data []byte) error {
	if len(data)%2 != 0 {
		return errors.Wrapf(ErrDecodeEncoding, "odd length %d", len(data))
	}

	for i := 0; i < len(data); i += 2 {
		unit := binary.LittleEndian.Uint16(data[i:])
		switch {
		case unit >= 0xd800 && unit < 0xdc00:
			if i+4 > len(data) {
				return errors.Wrapf(ErrDecodeEncoding, "truncated surrogate pair at offset %d", i)
			}
			low := binary.LittleEndian.Uint16(data[i+2:])
			if low < 0xdc00 || low >= 0xe000 {
				return errors.Wrapf(ErrDecodeEncoding, "unpaired high surrogate 0x%04x at offset %d", unit, i)
			}
			i += 2
		case unit >= 0xdc00 && unit < 0xe000:
			return errors.Wrapf(ErrDecodeEncoding, "unpaired low surrogate 0x%04x at offset %d", unit, i)
		}
	}
	return nil
}

// finalizeText interprets the decoded buffer as UTF-16LE and returns the
// text together with its re-encoded form
func finalizeText(decoded []byte) (string, []byte, error) {
	if err := validateUTF16LE(decoded); err != nil {
		return "", nil, err
	}

	text, err := utf16le.NewDecoder().Bytes(decoded)
	if err != nil {
		return "", nil, errors.Wrap(ErrDecodeEncoding, err.Error())
	}

	encoded, err := utf16le.NewEncoder().Bytes(text)
	if err != nil {
		return "", nil, errors.Wrap(ErrDecodeEncoding, err.Error())
	}

	return string(text), encoded, nil
}

// encodeText converts UTF-8 text to UTF-16LE prefixed with a BOM, the layout
// lock files are produced from
func encodeText(text string) ([]byte, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	encoded, _, err := transform.String(utf16le.NewEncoder(), "\ufeff"+text)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding text to UTF-16LE")
	}
	return []byte(encoded), nil
}
