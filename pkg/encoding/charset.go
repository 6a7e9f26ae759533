// Package encoding provides text decoding for names embedded in model files.
//
// STL headers and OBJ/MTL names are byte strings with no declared charset. Files
// exported by older CAD tools commonly carry EUC-KR, Shift_JIS or Windows-125x text.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for a charset name htmlindex does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// Lookup resolves a WHATWG charset label such as "euc-kr" or "windows-1252".
// An empty name or UTF-8 returns encoding.Nop.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return encoding.Nop, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, name)
	}
	return enc, nil
}

// DecodeBytes converts data from enc to UTF-8.
// Returns the original bytes as a string if conversion fails.
func DecodeBytes(enc encoding.Encoding, data []byte) string {
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// NewDecoder returns a function that converts strings from the named charset to UTF-8.
func NewDecoder(name string) (func(string) string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == encoding.Nop {
		return func(s string) string { return s }, nil
	}
	return func(s string) string {
		return DecodeBytes(enc, []byte(s))
	}, nil
}

// TrimNullString returns data up to the first NUL byte, with surrounding spaces removed.
func TrimNullString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return strings.TrimSpace(string(data))
}

// NormalizePath converts Windows path separators to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
