// Package urldetector is the public facade over the detection state
// machine, the domain reader, and the host/path canonicalizers: Detect
// scans arbitrary text for browser-visitable URLs, ParseSingle wraps
// Detect for the "this string IS a URL" case, and Normalize produces the
// canonical host/path form of an already-detected URL.
package urldetector

import (
	"fmt"
	"strings"

	"github.com/ygp4ph/urldetector/detect"
	"github.com/ygp4ph/urldetector/hostnorm"
	"github.com/ygp4ph/urldetector/pathnorm"
	"github.com/ygp4ph/urldetector/urlmarker"
)

// Options re-exports detect.Options so callers need not import the detect
// package directly for the common case of picking a scan mode.
type Options = detect.Options

const (
	Default                = detect.Default
	QuoteMatch              = detect.QuoteMatch
	SingleQuoteMatch        = detect.SingleQuoteMatch
	BracketMatch            = detect.BracketMatch
	Json                    = detect.Json
	JavaScript              = detect.JavaScript
	Xml                     = detect.Xml
	Html                    = detect.Html
	AllowSingleLevelDomain  = detect.AllowSingleLevelDomain
)

// MalformedURL is returned by ParseSingle when text contains zero URLs, or
// more than one.
type MalformedURL struct {
	Text  string
	Count int
}

func (e *MalformedURL) Error() string {
	return fmt.Sprintf("urldetector: expected exactly one URL in %q, found %d", e.Text, e.Count)
}

// Detect scans text for every URL it can find under options and returns
// them in order of appearance. It never fails: pathological input yields
// an empty (or partial) slice rather than an error.
func Detect(text string, options Options) []*urlmarker.URL {
	return detect.Detect(text, options)
}

// ParseSingle treats text as a single URL rather than free-form prose: it
// strips tab, LF, and CR, replaces a literal space with "%20", and runs the detector in single-level-domain
// mode so bare hosts like "localhost" are accepted. It fails unless
// exactly one URL is detected.
func ParseSingle(text string) (*urlmarker.URL, error) {
	cleaned := stripAndEscapeSpace(text)
	found := detect.Detect(cleaned, detect.Default|detect.AllowSingleLevelDomain)
	if len(found) != 1 {
		return nil, &MalformedURL{Text: text, Count: len(found)}
	}
	return found[0], nil
}

func stripAndEscapeSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 0x09, 0x0A, 0x0D:
			continue
		case ' ':
			b.WriteString("%20")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize passes u's host and path through the host and path
// normalizers and returns the resulting NormalizedURL. Every other
// component is copied unchanged. Normalization never fails: malformed
// IDN or unparseable hosts degrade to the best-effort normalized string
// rather than propagate an error, per spec.
func Normalize(u *urlmarker.URL) *urlmarker.NormalizedURL {
	n := &urlmarker.NormalizedURL{URL: *u}
	n.Host, n.HostBytes = hostnorm.Normalize(u.Host)
	n.Path = pathnorm.Normalize(u.Path)
	return n
}
