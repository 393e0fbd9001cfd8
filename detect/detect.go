// Package detect implements the top-level URL scanner: it walks arbitrary
// text looking for scheme-prefixed and bare-domain URL candidates, hands
// each candidate's authority off to the domain reader, then consumes
// whatever port/path/query/fragment follows, honoring the quote- and
// bracket-matching conventions selected by Options.
package detect

import (
	"strings"

	"github.com/ygp4ph/urldetector/charclass"
	"github.com/ygp4ph/urldetector/domain"
	"github.com/ygp4ph/urldetector/reader"
	"github.com/ygp4ph/urldetector/urlmarker"
)

// validSchemes are the scheme names recognized ahead of "://";
// tryCandidate also accepts each one followed by a percent-encoded colon
// ("%3a//"), a look-alike browsers still honor.
var validSchemes = []string{"http", "https", "ftp", "ftps"}

const htmlMailto = "mailto"

// Detect scans text for URL candidates and returns every one it finds, in
// order of appearance.
func Detect(text string, options Options) []*urlmarker.URL {
	s := &scanner{rd: reader.New(text), options: options, charCounts: map[rune]int{}}
	return s.run()
}

type scanner struct {
	rd      *reader.Reader
	options Options

	quoteOpen       bool
	singleQuoteOpen bool
	charCounts      map[rune]int
}

func (s *scanner) run() []*urlmarker.URL {
	var out []*urlmarker.URL
	for !s.rd.EOF() {
		start := s.rd.Position()
		c, err := s.rd.Read()
		if err != nil {
			break
		}
		s.trackContext(c)

		if !s.isCandidateStart(c) {
			continue
		}

		if err := s.rd.Seek(start); err != nil {
			break
		}
		u := s.tryCandidate()
		if u != nil {
			out = append(out, u)
			continue
		}
		if s.rd.Position() <= start {
			_, _ = s.rd.Read()
		}
	}
	return out
}

func (s *scanner) isCandidateStart(c rune) bool {
	if charclass.IsAlphaNumeric(c) || c >= 192 {
		return true
	}
	if c == '/' {
		p, err := s.rd.PeekAt(0)
		return err == nil && p == '/'
	}
	return false
}

// tryCandidate attempts to read one URL starting at the reader's current
// position. It returns nil, leaving the reader wherever the failed
// attempt's own rewind logic put it, if nothing valid was found.
func (s *scanner) tryCandidate() *urlmarker.URL {
	if s.options.Has(Html) {
		if p, err := s.rd.Peek(2); err == nil && p == "//" {
			_, _ = s.rd.Read()
			_, _ = s.rd.Read()
			return s.readAuthority("//", "", false, false)
		}
	}

	start := s.rd.Position()
	var prefix []rune
	for !s.rd.EOF() {
		iterStart := s.rd.Position()
		c, err := s.rd.Read()
		if err != nil {
			break
		}

		switch {
		case c == ':':
			if scheme, ok := s.matchScheme(prefix); ok {
				if s.options.Has(Html) && scheme == htmlMailto {
					return nil
				}
				return s.readAuthority(scheme+"://", "", true, false)
			}
			_ = s.rd.GoBack()
			return s.readAuthority(string(prefix), string(prefix), false, false)
		case c == '%':
			// A percent-encoded colon ("%3a"/"%3A") is a scheme/authority
			// boundary exactly like a literal ":" — browsers still follow
			// "http%3a//evil.com" as a scheme-prefixed URL.
			if p, err := s.rd.Peek(2); err == nil && strings.EqualFold(p, "3a") {
				_, _ = s.rd.Read()
				_, _ = s.rd.Read()
				if scheme, ok := s.matchScheme(prefix); ok {
					if s.options.Has(Html) && scheme == htmlMailto {
						return nil
					}
					return s.readAuthority(scheme+"://", "", true, false)
				}
				_ = s.rd.Seek(iterStart)
				return s.readAuthority(string(prefix), string(prefix), false, false)
			}
			_ = s.rd.GoBack()
			if len(prefix) == 0 {
				return nil
			}
			return s.readAuthority(string(prefix), string(prefix), false, false)
		case c == '@':
			return s.readAuthority(string(prefix), "", false, true)
		case charclass.IsDot(c):
			full := string(append(prefix, c))
			return s.readAuthority(full, full, false, false)
		case c == '/' || c == '?' || c == '#':
			_ = s.rd.GoBack()
			if len(prefix) == 0 {
				return nil
			}
			return s.readAuthority(string(prefix), string(prefix), false, false)
		case charclass.IsAlphaNumeric(c) || c == '-' || c >= 192:
			prefix = append(prefix, c)
		default:
			_ = s.rd.GoBack()
			if len(prefix) == 0 {
				return nil
			}
			return s.readAuthority(string(prefix), string(prefix), false, false)
		}
	}
	if len(prefix) == 0 {
		_ = s.rd.Seek(start)
		return nil
	}
	return s.readAuthority(string(prefix), string(prefix), false, false)
}

// matchScheme checks whether prefix (lowercased) is a recognized scheme
// immediately followed by "//".
func (s *scanner) matchScheme(prefix []rune) (string, bool) {
	lower := toLower(prefix)
	for _, scheme := range validSchemes {
		if lower != scheme {
			continue
		}
		if p, err := s.rd.Peek(2); err == nil && p == "//" {
			_, _ = s.rd.Read()
			_, _ = s.rd.Read()
			return scheme, true
		}
	}
	return "", false
}

func toLower(r []rune) string {
	out := make([]rune, len(r))
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// readAuthority handles everything from right after a matched scheme (or
// from the very start of a bare candidate) through userinfo and the
// domain itself, then chains into port/path/query/fragment. seed is
// everything already appended to the buffer (scheme text, username, or
// pre-scanned host characters); hostPrefix is the subset of seed that is
// actually host text awaiting the domain reader's own prefix validation —
// empty when no host characters have been pre-scanned yet.
func (s *scanner) readAuthority(seed, hostPrefix string, hasScheme bool, sawAt bool) *urlmarker.URL {
	buf := []rune(seed)
	schemeOffset, hostOffset, userOffset := -1, len(buf)-len([]rune(hostPrefix)), -1

	if hasScheme {
		schemeOffset = 0
	}

	if sawAt {
		userOffset = 0
		buf = append(buf, '@')
		hostOffset = len(buf)
		hostPrefix = ""
	} else if hasScheme {
		if s.hasUserInfoAhead() {
			userOffset = len(buf)
			buf = s.consumeUserInfo(buf)
			hostOffset = len(buf)
			hostPrefix = ""
		} else {
			hostOffset = len(buf)
		}
	}

	state := domain.Read(s.rd, &buf, hostPrefix, s.options.Has(AllowSingleLevelDomain), s.charHandler)
	if state == domain.Invalid {
		return nil
	}

	m := urlmarker.NewMarker("")
	if schemeOffset >= 0 {
		m.Set(urlmarker.Scheme, schemeOffset)
	}
	if userOffset >= 0 {
		m.Set(urlmarker.UserInfo, userOffset)
	}
	m.Set(urlmarker.Host, hostOffset)

	switch state {
	case domain.ReadPort:
		portStart := len(buf) - 1
		m.Set(urlmarker.Port, portStart)
		buf, state = s.readPort(buf)
		if len(buf) == portStart {
			// readPort dropped the ':' because no digits followed it.
			m.Unset(urlmarker.Port)
		}
	case domain.ReadPath:
		m.Set(urlmarker.Path, len(buf)-1)
	case domain.ReadQueryString:
		m.Set(urlmarker.Query, len(buf)-1)
	case domain.ReadFragment:
		m.Set(urlmarker.Fragment, len(buf)-1)
	}

	if state == domain.ReadPath {
		if !m.Exists(urlmarker.Path) {
			m.Set(urlmarker.Path, len(buf)-1)
		}
		buf, state = s.readPath(buf)
	}
	if state == domain.ReadQueryString {
		if !m.Exists(urlmarker.Query) {
			m.Set(urlmarker.Query, len(buf)-1)
		}
		buf, state = s.readQuery(buf)
	}
	if state == domain.ReadFragment {
		if !m.Exists(urlmarker.Fragment) {
			m.Set(urlmarker.Fragment, len(buf)-1)
		}
		buf = s.readFragment(buf)
	}

	m.Original = string(buf)
	return urlmarker.FromMarker(m)
}

// hasUserInfoAhead looks ahead (without permanently consuming) for an '@'
// before any character that could not appear in a "user:pass@" prefix.
func (s *scanner) hasUserInfoAhead() bool {
	save := s.rd.Position()
	defer func() { _ = s.rd.Seek(save) }()

	for !s.rd.EOF() {
		c, err := s.rd.Read()
		if err != nil {
			return false
		}
		switch {
		case c == '@':
			return true
		case charclass.IsWhitespace(c), c == '"', c == '\'', c == '/', c == '?', c == '#', c == '<',
			isOpenBracket(c), isCloseBracket(c):
			return false
		}
	}
	return false
}

func (s *scanner) consumeUserInfo(buf []rune) []rune {
	for !s.rd.EOF() {
		c, err := s.rd.Read()
		if err != nil {
			break
		}
		buf = append(buf, c)
		if c == '@' {
			break
		}
	}
	return buf
}

func (s *scanner) readPort(buf []rune) ([]rune, domain.State) {
	digits := 0
	for !s.rd.EOF() {
		c, err := s.rd.PeekAt(0)
		if err != nil || !charclass.IsNumeric(c) {
			break
		}
		_, _ = s.rd.Read()
		buf = append(buf, c)
		digits++
	}
	if digits == 0 {
		// "host:nonsense" — no port; drop the trailing ':' and commit.
		buf = buf[:len(buf)-1]
		return buf, domain.Valid
	}
	c, err := s.rd.PeekAt(0)
	if err != nil {
		return buf, domain.Valid
	}
	switch c {
	case '/':
		_, _ = s.rd.Read()
		buf = append(buf, c)
		return buf, domain.ReadPath
	case '?':
		_, _ = s.rd.Read()
		buf = append(buf, c)
		return buf, domain.ReadQueryString
	case '#':
		_, _ = s.rd.Read()
		buf = append(buf, c)
		return buf, domain.ReadFragment
	default:
		return buf, domain.Valid
	}
}

// readPath, readQuery, and readFragment all consume one character at a
// time: a stop verdict from shouldStop discards that character for good
// (it closes a delimiter the surrounding text opened, it is never part of
// the URL itself), matching the domain reader's own commit-on-read style.
func (s *scanner) readPath(buf []rune) ([]rune, domain.State) {
	for !s.rd.EOF() {
		c, err := s.rd.Read()
		if err != nil {
			break
		}
		if s.shouldStop(c) {
			return buf, domain.Valid
		}
		buf = append(buf, c)
		if c == '?' {
			return buf, domain.ReadQueryString
		}
		if c == '#' {
			return buf, domain.ReadFragment
		}
	}
	return buf, domain.Valid
}

func (s *scanner) readQuery(buf []rune) ([]rune, domain.State) {
	for !s.rd.EOF() {
		c, err := s.rd.Read()
		if err != nil {
			break
		}
		if c == '#' {
			buf = append(buf, c)
			return buf, domain.ReadFragment
		}
		if s.shouldStop(c) {
			return buf, domain.Valid
		}
		buf = append(buf, c)
	}
	return buf, domain.Valid
}

func (s *scanner) readFragment(buf []rune) []rune {
	for !s.rd.EOF() {
		c, err := s.rd.Read()
		if err != nil {
			break
		}
		if s.shouldStop(c) {
			return buf
		}
		buf = append(buf, c)
	}
	return buf
}

// shouldStop reports whether c ends the current candidate: either
// whitespace, or a quote/bracket/angle-bracket character whose opener's
// running count still exceeds its own close count after counting c — i.e.
// one that closes a delimiter already open before the URL started, rather
// than one that is itself the URL's own opening delimiter.
func (s *scanner) shouldStop(c rune) bool {
	if charclass.IsWhitespace(c) {
		return true
	}
	return s.checkMatchingCharacter(c) == matchStop
}

// charHandler is handed to the domain reader so characters it doesn't
// itself recognize still update the quote/bracket/angle-bracket counts.
func (s *scanner) charHandler(c rune) {
	s.trackContext(c)
}

func (s *scanner) trackContext(c rune) {
	s.checkMatchingCharacter(c)
}

// matchVerdict is the outcome of checking c against the currently active
// quote/bracket/angle-bracket matching sets.
type matchVerdict int

const (
	notMatched matchVerdict = iota
	// matchStart means c opened a new quote/bracket/angle-bracket context,
	// or is a closing character that leaves no unmatched opener behind.
	matchStart
	// matchStop means c closed a context that was already fully open —
	// the signal to end the current candidate here.
	matchStop
)

// checkMatchingCharacter updates the running per-character open/close
// counts for c (when the relevant option is active) and reports whether
// c should stop the current candidate. A quote
// character stops only once a previous, still-open quote is on record;
// a bracket or angle-bracket character stops only when its open count
// exceeds its own (post-increment) close count, i.e. a genuine opener
// precedes it.
func (s *scanner) checkMatchingCharacter(c rune) matchVerdict {
	switch {
	case c == '"' && s.options.Has(QuoteMatch):
		wasOpen := s.quoteOpen
		s.quoteOpen = true
		s.charCounts[c]++
		if wasOpen || s.charCounts[c]%2 == 0 {
			return matchStop
		}
		return matchStart
	case c == '\'' && s.options.Has(SingleQuoteMatch):
		wasOpen := s.singleQuoteOpen
		s.singleQuoteOpen = true
		s.charCounts[c]++
		if wasOpen || s.charCounts[c]%2 == 0 {
			return matchStop
		}
		return matchStart
	case s.options.Has(BracketMatch) && (c == '(' || c == '[' || c == '{'):
		s.charCounts[c]++
		return matchStart
	case s.options.Has(Xml) && c == '<':
		s.charCounts[c]++
		return matchStart
	case s.options.Has(BracketMatch) && (c == ')' || c == ']' || c == '}'), s.options.Has(Xml) && c == '>':
		s.charCounts[c]++
		if s.charCounts[openDelimiterFor(c)] > s.charCounts[c] {
			return matchStop
		}
		return matchStart
	default:
		return notMatched
	}
}

// openDelimiterFor returns the opening character that closes with c.
func openDelimiterFor(c rune) rune {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	case '}':
		return '{'
	case '>':
		return '<'
	default:
		return 0
	}
}

// isOpenBracket and isCloseBracket identify delimiters that always end a
// tentative username:password scan (hasUserInfoAhead), independent of
// which matching options are active for the candidate itself.
func isOpenBracket(c rune) bool  { return c == '(' || c == '[' || c == '{' }
func isCloseBracket(c rune) bool { return c == ')' || c == ']' || c == '}' }
