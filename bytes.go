package sdk

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Bytes is raw payload input. Strings, numeric byte sequences and byte
// buffers all normalize to it.
type Bytes []byte

// Data is the value a convert script returns. A nil Data means no result.
type Data = Bytes

// BytesFromString returns the UTF-8 bytes of s.
func BytesFromString(s string) Bytes {
	return Bytes(s)
}

// BytesFromNumbers converts a numeric byte sequence. Each number is reduced
// modulo 256, so -1 becomes 0xff and 256 becomes 0x00.
func BytesFromNumbers(nums []int) Bytes {
	out := make(Bytes, len(nums))
	for i, n := range nums {
		out[i] = byte(n & 0xff)
	}
	return out
}

// String decodes b with AsString.
func (b Bytes) String() string {
	return AsString(b)
}

// AsString decodes b as UTF-8, replacing invalid sequences with U+FFFD.
// It never fails.
func AsString(b Bytes) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// Utils groups the conversion helpers exposed on the SDK.
type Utils struct{}

// AsString decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func (Utils) AsString(b Bytes) string {
	return AsString(b)
}
