// Package reader implements the text cursor shared by the detector and the
// domain reader: forward reads with one-character pushback, absolute seek,
// and a bounded backtrack budget that turns pathological ping-pong inputs
// into a hard failure instead of quadratic livelock.
package reader

import (
	"errors"
	"fmt"
)

// BacktrackLimitExceeded is returned when a cursor has moved backward more
// than 10x the length of its input over its lifetime. It carries a snippet
// of the offending region so callers can see what triggered it.
type BacktrackLimitExceeded struct {
	Position int
	Snippet  string
}

func (e *BacktrackLimitExceeded) Error() string {
	return fmt.Sprintf("backtrack limit exceeded near position %d: %q", e.Position, e.Snippet)
}

// backtrackFactor bounds total backward movement to factor * len(input).
const backtrackFactor = 10

// minSnippet is the minimum length of the offending-region snippet carried
// by BacktrackLimitExceeded, clamped to the available tail of the input.
const minSnippet = 20

// Reader is a forward/backward cursor over an immutable sequence of runes.
// Not safe for concurrent use; each detection owns its own Reader.
type Reader struct {
	runes        []rune
	pos          int
	backtrackUse int
	backtrackCap int
}

// New constructs a Reader over s.
func New(s string) *Reader {
	runes := []rune(s)
	return &Reader{
		runes:        runes,
		backtrackCap: backtrackFactor * len(runes),
	}
}

// Len returns the number of code units in the underlying input.
func (r *Reader) Len() int { return len(r.runes) }

// EOF reports whether the cursor has consumed the entire input.
func (r *Reader) EOF() bool { return r.pos >= len(r.runes) }

// Position returns the current absolute cursor position.
func (r *Reader) Position() int { return r.pos }

// CanRead reports whether n more code units are available from the
// current position.
func (r *Reader) CanRead(n int) bool {
	return r.pos+n <= len(r.runes)
}

// Read advances the cursor by one and returns the code unit there, with
// whitespace normalized to an ASCII space. Returns an error at EOF.
func (r *Reader) Read() (rune, error) {
	if r.EOF() {
		return 0, errorsEOF
	}
	c := r.runes[r.pos]
	r.pos++
	return normalizeWhitespace(c), nil
}

// Peek returns the next n code units without advancing the cursor. Fails
// if fewer than n units remain.
func (r *Reader) Peek(n int) (string, error) {
	if !r.CanRead(n) {
		return "", errorsEOF
	}
	out := make([]rune, n)
	for i := 0; i < n; i++ {
		out[i] = normalizeWhitespace(r.runes[r.pos+i])
	}
	return string(out), nil
}

// PeekAt returns the code unit at current position + offset, without
// advancing. offset may be negative.
func (r *Reader) PeekAt(offset int) (rune, error) {
	idx := r.pos + offset
	if idx < 0 || idx >= len(r.runes) {
		return 0, errorsEOF
	}
	return normalizeWhitespace(r.runes[idx]), nil
}

// Seek moves the cursor to an absolute position, counting any backward
// movement against the backtrack budget.
func (r *Reader) Seek(pos int) error {
	if pos < r.pos {
		if err := r.chargeBacktrack(r.pos - pos); err != nil {
			return err
		}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(r.runes) {
		pos = len(r.runes)
	}
	r.pos = pos
	return nil
}

// GoBack moves the cursor back by one code unit, counting against the
// backtrack budget.
func (r *Reader) GoBack() error {
	return r.Seek(r.pos - 1)
}

func (r *Reader) chargeBacktrack(n int) error {
	r.backtrackUse += n
	if r.backtrackUse > r.backtrackCap {
		return &BacktrackLimitExceeded{
			Position: r.pos,
			Snippet:  r.snippet(),
		}
	}
	return nil
}

// snippet returns a substring of at least minSnippet code units (clamped
// to the available tail) describing the offending region.
func (r *Reader) snippet() string {
	start := r.pos
	if start < 0 {
		start = 0
	}
	if start >= len(r.runes) {
		start = len(r.runes)
	}
	end := start + minSnippet
	if end > len(r.runes) {
		end = len(r.runes)
	}
	return string(r.runes[start:end])
}

func normalizeWhitespace(c rune) rune {
	switch c {
	case 0x09, 0x0A, 0x0D:
		return ' '
	}
	return c
}

var errorsEOF = errors.New("reader: end of input")

// ErrEOF is returned by Read/Peek/PeekAt when the requested code units are
// not available.
var ErrEOF = errorsEOF
