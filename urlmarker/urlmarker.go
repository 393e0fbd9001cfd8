// Package urlmarker holds the offsets the detector records while scanning
// a candidate URL, and the read-only value types built from them: URL for
// the as-scanned components, NormalizedURL for their canonical form.
package urlmarker

import (
	"strconv"
	"strings"
)

// Part identifies one of the seven components a Marker can point into, in
// the fixed left-to-right order they appear in a URL.
type Part int

const (
	Scheme Part = iota
	UserInfo
	Host
	Port
	Path
	Query
	Fragment
	numParts
)

// defaultPorts maps a scheme to the port implied when none is written.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ftp":   21,
}

// Marker records, for a single candidate URL, the offset at which each
// present Part begins within Original. An absent part is -1.
type Marker struct {
	Original string
	idx      [numParts]int
}

// NewMarker returns a Marker over original with every part unset.
func NewMarker(original string) *Marker {
	m := &Marker{Original: original}
	for i := range m.idx {
		m.idx[i] = -1
	}
	return m
}

// Set records the start offset of part.
func (m *Marker) Set(part Part, offset int) { m.idx[part] = offset }

// Unset clears part, as if it had never been seen.
func (m *Marker) Unset(part Part) { m.idx[part] = -1 }

// Exists reports whether part was recorded.
func (m *Marker) Exists(part Part) bool { return m.idx[part] >= 0 }

// IndexOf returns the recorded offset of part, or -1 if absent.
func (m *Marker) IndexOf(part Part) int { return m.idx[part] }

// nextExistingOffset returns the offset of the first present part after
// part, or -1 if none follows.
func (m *Marker) nextExistingOffset(part Part) int {
	for p := part + 1; p < numParts; p++ {
		if m.Exists(p) {
			return m.idx[p]
		}
	}
	return -1
}

// Slice returns the raw substring of Original spanning from part's offset
// up to (but not including) whichever part follows it, or to the end of
// Original if none does. Reports false if part is absent.
func (m *Marker) Slice(part Part) (string, bool) {
	if !m.Exists(part) {
		return "", false
	}
	start := m.idx[part]
	if next := m.nextExistingOffset(part); next >= 0 {
		return m.Original[start:next], true
	}
	return m.Original[start:], true
}

// URL is the set of components the detector scanned out of one candidate,
// as-is: percent-encoding untouched, host un-normalized. Once built, a URL
// is never mutated; it is safe to share across goroutines.
type URL struct {
	Original string
	Scheme   string
	Username string
	Password string
	Host     string
	Port     int
	Path     string
	Query    string
	Fragment string

	// HostBytes holds the normalized binary host address for a
	// NormalizedURL; nil on a plain URL.
	HostBytes []byte
}

// FromMarker derives a URL's components eagerly from marker, following the
// offset conventions above. Every component's raw span includes its own
// leading delimiter (":" for port, "?" for query, "#" for fragment). The
// port's ":" is trimmed at extraction time rather than by adjusting the
// marker, keeping both Marker and URL simple; Query and Fragment keep
// their leading "?" and "#".
func FromMarker(marker *Marker) *URL {
	u := &URL{Original: marker.Original}

	if raw, ok := marker.Slice(Scheme); ok {
		if i := strings.IndexByte(raw, ':'); i >= 0 {
			u.Scheme = raw[:i]
		} else {
			u.Scheme = raw
		}
	} else if !strings.HasPrefix(marker.Original, "//") {
		u.Scheme = "http"
	}

	if raw, ok := marker.Slice(UserInfo); ok {
		raw = strings.TrimSuffix(raw, "@")
		if i := strings.IndexByte(raw, ':'); i >= 0 {
			u.Username, u.Password = raw[:i], raw[i+1:]
		} else {
			u.Username = raw
		}
	}

	if raw, ok := marker.Slice(Host); ok {
		if marker.Exists(Port) {
			raw = strings.TrimSuffix(raw, ":")
		}
		u.Host = raw
	}

	if raw, ok := marker.Slice(Port); ok {
		raw = strings.TrimPrefix(raw, ":")
		if n, err := strconv.Atoi(raw); err == nil {
			u.Port = n
		} else {
			u.Port = -1
		}
	} else if def, ok := defaultPorts[strings.ToLower(u.Scheme)]; ok {
		u.Port = def
	} else {
		u.Port = -1
	}

	if raw, ok := marker.Slice(Path); ok {
		u.Path = raw
	} else {
		u.Path = "/"
	}

	if raw, ok := marker.Slice(Query); ok {
		u.Query = raw
	}

	if raw, ok := marker.Slice(Fragment); ok {
		u.Fragment = raw
	}

	return u
}

// FullURLWithoutFragment reconstructs the URL string from its components,
// omitting the fragment and eliding the port when it equals the scheme's
// default.
func (u *URL) FullURLWithoutFragment() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString(":")
	}
	b.WriteString("//")
	if u.Username != "" {
		b.WriteString(u.Username)
		if u.Password != "" {
			b.WriteString(":")
			b.WriteString(u.Password)
		}
		b.WriteString("@")
	}
	b.WriteString(u.Host)
	if def, ok := defaultPorts[strings.ToLower(u.Scheme)]; u.Port > 0 && (!ok || u.Port != def) {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(u.Port))
	}
	b.WriteString(u.Path)
	b.WriteString(u.Query)
	return b.String()
}

// FullURL reconstructs the full URL string, fragment included.
func (u *URL) FullURL() string {
	return u.FullURLWithoutFragment() + u.Fragment
}

// NormalizedURL is a URL whose Host and Path have been replaced by their
// canonical forms; every other component is copied unchanged. It is a
// distinct value from the URL it was derived from — normalizing never
// mutates the original.
type NormalizedURL struct {
	URL
}
