package token

import (
	"encoding/base64"
	"strings"
)

// encodeSegment encodes data with the standard base64 alphabet and strips padding.
func encodeSegment(data []byte) string {
	return StripPadding(base64.StdEncoding.EncodeToString(data))
}

// decodeSegment restores padding and decodes a standard base64 segment.
func decodeSegment(segment string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(RestorePadding(segment))
}

// StripPadding removes every '=' character from a base64 string.
func StripPadding(s string) string {
	return strings.ReplaceAll(s, "=", "")
}

// RestorePadding appends '=' until the encoded length, counted in 6-bit
// units, covers a whole number of bytes. The result always has a length that
// is a multiple of 4: remainders 1, 2 and 3 get 3, 2 and 1 pad characters.
func RestorePadding(s string) string {
	bits := 6 * len(s)
	pad := 0
	for bits%8 != 0 {
		bits += 6
		pad++
	}
	if pad == 0 {
		return s
	}
	return s + strings.Repeat("=", pad)
}
