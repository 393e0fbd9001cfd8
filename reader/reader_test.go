package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAdvancesAndNormalizesWhitespace(t *testing.T) {
	r := New("a\tb")
	c, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, 'a', c)

	c, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, ' ', c, "tab should normalize to ASCII space")

	c, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, 'b', c)

	require.True(t, r.EOF())
	_, err = r.Read()
	require.Error(t, err)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	r := New("hello")
	p, err := r.Peek(3)
	require.NoError(t, err)
	require.Equal(t, "hel", p)
	require.Equal(t, 0, r.Position())

	_, err = r.Peek(10)
	require.Error(t, err)
}

func TestPeekAt(t *testing.T) {
	r := New("abcd")
	_, _ = r.Read() // consume 'a'
	c, err := r.PeekAt(0)
	require.NoError(t, err)
	require.Equal(t, 'b', c)

	c, err = r.PeekAt(-1)
	require.NoError(t, err)
	require.Equal(t, 'a', c)

	_, err = r.PeekAt(10)
	require.Error(t, err)
}

func TestSeekAndGoBack(t *testing.T) {
	r := New("abcdef")
	require.NoError(t, r.Seek(4))
	require.Equal(t, 4, r.Position())

	require.NoError(t, r.GoBack())
	require.Equal(t, 3, r.Position())

	// Seeking past the end clamps to len.
	require.NoError(t, r.Seek(100))
	require.Equal(t, 6, r.Position())
	require.True(t, r.EOF())
}

func TestCanRead(t *testing.T) {
	r := New("abc")
	require.True(t, r.CanRead(3))
	require.False(t, r.CanRead(4))
}

func TestBacktrackBudgetExceeded(t *testing.T) {
	input := "abcde"
	r := New(input)
	// Cap is 10 * len(input) = 50. Ping-pong past the cap.
	var lastErr error
	for i := 0; i < 60; i++ {
		_ = r.Seek(len(input))
		lastErr = r.Seek(0)
		if lastErr != nil {
			break
		}
	}
	require.Error(t, lastErr)
	var limitErr *BacktrackLimitExceeded
	require.ErrorAs(t, lastErr, &limitErr)
	require.GreaterOrEqual(t, len(limitErr.Snippet), 0)
}

func TestBacktrackSnippetLengthClamped(t *testing.T) {
	// A short input: the snippet should be clamped to the available tail,
	// not padded out to the 20-unit minimum.
	input := "ab"
	r := New(input)
	for i := 0; i < 30; i++ {
		_ = r.Seek(len(input))
		if err := r.Seek(0); err != nil {
			var limitErr *BacktrackLimitExceeded
			require.ErrorAs(t, err, &limitErr)
			require.LessOrEqual(t, len(limitErr.Snippet), len(input))
			return
		}
	}
	t.Fatal("expected backtrack limit to be exceeded")
}

func TestSnippetMinimumLength(t *testing.T) {
	input := strings.Repeat("x", 100)
	r := New(input)
	for i := 0; i < 1200; i++ {
		_ = r.Seek(50)
		if err := r.Seek(0); err != nil {
			var limitErr *BacktrackLimitExceeded
			require.ErrorAs(t, err, &limitErr)
			require.GreaterOrEqual(t, len(limitErr.Snippet), 20)
			return
		}
	}
	t.Fatal("expected backtrack limit to be exceeded")
}
