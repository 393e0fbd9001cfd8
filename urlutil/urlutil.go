// Package urlutil implements the small string transforms shared by the
// detector and the host/path normalizers: iterative percent-decoding,
// whitespace stripping, percent-encoding, and dot folding.
package urlutil

import (
	"fmt"
	"strings"

	"github.com/ygp4ph/urldetector/charclass"
)

// Decode iteratively percent-decodes s until no further %XX sequence can
// be decoded. Each pass performs a single greedy left-to-right decode;
// because every accepted decode shrinks the string by two bytes, repeating
// the pass until it produces no change is guaranteed to terminate and
// reproduces the same backtracking behavior a single-pass pending-percent
// stack would: "%25%32%35" decodes to "%25" on the first pass (which is
// itself a decodable %XX) and to "%" on the second.
func Decode(s string) string {
	for {
		next := decodeOnePass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func decodeOnePass(s string) string {
	b := []byte(s)
	var out []byte
	for i := 0; i < len(b); i++ {
		if b[i] == '%' && i+2 < len(b) && isHexByte(b[i+1]) && isHexByte(b[i+2]) {
			out = append(out, hexByteValue(b[i+1], b[i+2]))
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return string(out)
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func hexByteValue(hi, lo byte) byte {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

// StripSpecials removes tab, LF, CR, and ASCII space from s.
func StripSpecials(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 0x09, 0x0A, 0x0D, ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Encode percent-encodes every byte of s outside the printable-ASCII
// range (0x20, 0x7F) exclusive, plus '#' and '%', as uppercase %XX.
func Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c > 0x20 && c < 0x7F && c != '#' && c != '%' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// FoldExtraDots collapses runs of '.' to a single '.' and strips a leading
// and trailing '.'.
func FoldExtraDots(s string) string {
	var b strings.Builder
	prevDot := false
	for _, r := range s {
		if charclass.IsDot(r) {
			if prevDot {
				continue
			}
			prevDot = true
			b.WriteByte('.')
			continue
		}
		prevDot = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), ".")
}
