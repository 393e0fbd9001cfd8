// Package hostnorm canonicalizes a scanned host component: IDN folding,
// percent-decoding, numeric IPv4/IPv6 recognition and byte-level encoding,
// and dot cleanup, mirroring the ambiguity-resolution rules browsers apply
// when they decide what to actually connect to.
package hostnorm

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/ygp4ph/urldetector/charclass"
	"github.com/ygp4ph/urldetector/urlutil"
)

// Normalize reduces a raw, possibly percent-encoded, possibly
// internationalized host to its canonical textual form, plus the 16-byte
// address it resolves to when numeric (IPv4-mapped-IPv6 for an IPv4 host,
// the IPv6 address itself for a bracketed IPv6 host, nil otherwise).
func Normalize(raw string) (string, []byte) {
	ascii := raw
	if a, err := idna.ToASCII(raw); err == nil {
		ascii = a
	}
	lower := strings.ToLower(ascii)
	decoded := urlutil.Decode(lower)

	if bytes, ok := tryIPv4(decoded); ok {
		return finalize(ipv4Text(bytes)), bytes
	}
	if bytes, ok := tryIPv6(decoded); ok {
		return finalize(ipv6Text(bytes)), bytes
	}
	return finalize(decoded), nil
}

func finalize(s string) string {
	return urlutil.Encode(urlutil.FoldExtraDots(s))
}

// tryIPv4 recognizes 0-dot whole-number and 3-dot dotted-quad IPv4
// addresses, each part readable in hex (0x-prefixed), octal (0-prefixed),
// or decimal. The result is always a 16-byte IPv4-mapped IPv6 address.
func tryIPv4(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	parts := charclass.SplitByDot(s)
	bytes := make([]byte, 16)
	bytes[10], bytes[11] = 0xFF, 0xFF

	switch len(parts) {
	case 1:
		v, err := parseIPv4Part(parts[0])
		if err != nil || v > 0xFFFFFFFF {
			return nil, false
		}
		bytes[12] = byte(v >> 24)
		bytes[13] = byte(v >> 16)
		bytes[14] = byte(v >> 8)
		bytes[15] = byte(v)
		return bytes, true
	case 4:
		for i, p := range parts {
			if p == "" {
				return nil, false
			}
			v, err := parseIPv4Part(p)
			if err != nil || v < 0 || v > 255 {
				return nil, false
			}
			bytes[12+i] = byte(v)
		}
		return bytes, true
	default:
		return nil, false
	}
}

func parseIPv4Part(s string) (int64, error) {
	base := 10
	switch {
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		s = s[2:]
		base = 16
	case len(s) > 1 && s[0] == '0':
		s = s[1:]
		base = 8
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, base, 64)
}

func ipv4Text(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[12], b[13], b[14], b[15])
}

// tryIPv6 recognizes a bracketed "[...]" host, handling "::" compression,
// an optional zone index after '%' in the final section, and an optional
// embedded dotted-quad IPv4 address as the final section.
func tryIPv6(s string) ([]byte, bool) {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	body := s[1 : len(s)-1]

	if idx := strings.IndexByte(body, '%'); idx >= 0 {
		body = body[:idx]
	}

	doubleColon := strings.Contains(body, "::")
	if strings.Count(body, "::") > 1 {
		return nil, false
	}

	var left, right string
	if doubleColon {
		parts := strings.SplitN(body, "::", 2)
		left, right = parts[0], parts[1]
	} else {
		left = body
	}

	leftGroups := splitHextets(left)
	rightGroups := splitHextets(right)

	var embeddedIPv4 []byte
	if doubleColon && len(rightGroups) > 0 && looksDotted(rightGroups[len(rightGroups)-1]) {
		if b, ok := tryIPv4(rightGroups[len(rightGroups)-1]); ok {
			embeddedIPv4 = b[12:16]
			rightGroups = rightGroups[:len(rightGroups)-1]
		}
	} else if !doubleColon && len(leftGroups) > 0 && looksDotted(leftGroups[len(leftGroups)-1]) {
		if b, ok := tryIPv4(leftGroups[len(leftGroups)-1]); ok {
			embeddedIPv4 = b[12:16]
			leftGroups = leftGroups[:len(leftGroups)-1]
		}
	}

	totalGroups := 8
	if embeddedIPv4 != nil {
		totalGroups = 6
	}

	if !doubleColon {
		want := totalGroups
		if len(leftGroups) != want {
			return nil, false
		}
	} else if len(leftGroups)+len(rightGroups) > totalGroups {
		return nil, false
	}

	out := make([]byte, 16)
	pos := 0
	for _, g := range leftGroups {
		v, ok := parseHextet(g)
		if !ok {
			return nil, false
		}
		out[pos], out[pos+1] = byte(v>>8), byte(v)
		pos += 2
	}
	if doubleColon {
		fillGroups := totalGroups - len(leftGroups) - len(rightGroups)
		pos += fillGroups * 2
	}
	tailStart := pos
	for _, g := range rightGroups {
		v, ok := parseHextet(g)
		if !ok {
			return nil, false
		}
		out[tailStart], out[tailStart+1] = byte(v>>8), byte(v)
		tailStart += 2
	}
	if embeddedIPv4 != nil {
		copy(out[16-4:], embeddedIPv4)
	}
	return out, true
}

// looksDotted reports whether s contains a dot, the signal that a
// colon-delimited IPv6 section is actually an embedded dotted-quad IPv4
// address rather than an ordinary hex group (a bare hex group like "0" or
// "fe" would otherwise also parse successfully as a dot-less decimal/hex
// IPv4 whole number).
func looksDotted(s string) bool {
	return len(charclass.SplitByDot(s)) > 1
}

func splitHextets(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

func parseHextet(s string) (uint64, bool) {
	if s == "" || len(s) > 4 {
		return 0, false
	}
	for _, r := range s {
		if !charclass.IsHex(r) {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ipv6Text renders this system's canonical bracketed textual form: all
// eight lowercase hex groups written out in full, with no "::"
// compression. Unlike RFC 5952 display form, a zero-filled group prints
// as "0" rather than being elided, so two addresses that differ only by
// where they write "::" still end up identical after normalization.
func ipv6Text(b []byte) string {
	parts := make([]string, 8)
	for i := 0; i < 8; i++ {
		group := uint16(b[2*i])<<8 | uint16(b[2*i+1])
		parts[i] = strconv.FormatUint(uint64(group), 16)
	}
	return "[" + strings.Join(parts, ":") + "]"
}
