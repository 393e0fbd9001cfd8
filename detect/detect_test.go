package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectBareDottedDomain(t *testing.T) {
	found := Detect("this is a link: www.google.com", Default)
	require.Len(t, found, 1)
	require.Equal(t, "www.google.com", found[0].Original)
	require.Equal(t, "http", found[0].Scheme)
	require.Equal(t, "www.google.com", found[0].Host)
}

func TestDetectEmailLikeAuthority(t *testing.T) {
	found := Detect("my email is vshlosbe@linkedin.com and that's it", Default)
	require.Len(t, found, 1)
	require.Equal(t, "vshlosbe@linkedin.com", found[0].Original)
	require.Equal(t, "vshlosbe", found[0].Username)
	require.Equal(t, "linkedin.com", found[0].Host)
}

func TestDetectSchemeURL(t *testing.T) {
	found := Detect("site is http://www.linkedin.com/vshlos", Default)
	require.Len(t, found, 1)
	require.Equal(t, "http://www.linkedin.com/vshlos", found[0].Original)
	require.Equal(t, "http", found[0].Scheme)
	require.Equal(t, "www.linkedin.com", found[0].Host)
	require.Equal(t, "/vshlos", found[0].Path)
}

func TestDetectMultipleURLsInOneString(t *testing.T) {
	found := Detect("my email is vshlosbe@linkedin.com and my site is http://www.linkedin.com/vshlos", Default)
	require.Len(t, found, 2)
	require.Equal(t, "vshlosbe@linkedin.com", found[0].Original)
	require.Equal(t, "http://www.linkedin.com/vshlos", found[1].Original)
}

func TestDetectStopsAtMatchedQuoteUnderJsonOptions(t *testing.T) {
	found := Detect(`url: "http://example.com/path" done`, Json)
	require.Len(t, found, 1)
	require.Equal(t, "http://example.com/path", found[0].Original)
}

func TestDetectPercentEncodedColonScheme(t *testing.T) {
	for _, encoded := range []string{"http%3a//evil.com", "HTTPS%3A//evil.com/path"} {
		found := Detect("click here "+encoded+" now", Default)
		require.Len(t, found, 1, encoded)
		require.Equal(t, "evil.com", found[0].Host, encoded)
	}
}

func TestDetectQuoteDoesNotStopWithoutPriorOpen(t *testing.T) {
	found := Detect(`go http://e.com/a"b`, Json)
	require.Len(t, found, 1)
	require.Equal(t, `http://e.com/a"b`, found[0].Original)
	require.Equal(t, `/a"b`, found[0].Path)
}

func TestDetectQuoteStopsOnlyWhenAlreadyOpen(t *testing.T) {
	found := Detect(`say "go http://e.com/a"b now`, Json)
	require.Len(t, found, 1)
	require.Equal(t, "http://e.com/a", found[0].Original)
	require.Equal(t, "/a", found[0].Path)
}

func TestDetectXmlStopsOnlyWhenOpensOutnumberCloses(t *testing.T) {
	// A single "<" before the URL and a single ">" after it balance exactly
	// (open count == close count), so the ">" does not stop the URL; with a
	// second unmatched "<" first, the open count exceeds the close count and
	// the ">" does stop it. This mirrors the original detector's bracket
	// counting exactly, including its quirk of not truncating on one
	// perfectly-balanced wrapping pair.
	found := Detect("<http://e.com/a>b", Xml)
	require.Len(t, found, 1)
	require.Equal(t, "http://e.com/a>b", found[0].Original)

	found = Detect("<<http://e.com/a>b", Xml)
	require.Len(t, found, 1)
	require.Equal(t, "http://e.com/a", found[0].Original)
	require.Equal(t, "/a", found[0].Path)
}

func TestDetectBareSingleLevelDomainRequiresOption(t *testing.T) {
	found := Detect("go to localhost/admin please", Default)
	for _, u := range found {
		require.NotEqual(t, "localhost/admin", u.Original, "single-level domains are rejected without the option")
	}

	found = Detect("localhost/admin", AllowSingleLevelDomain)
	require.Len(t, found, 1)
	require.Equal(t, "localhost/admin", found[0].Original)
	require.Equal(t, "localhost", found[0].Host)
}

func TestDetectValidAndInvalidIPv4Mix(t *testing.T) {
	found := Detect("real IPs: 192.168.10.1 and 255.255.255.255 but not 0.0.0.256", Default)
	var originals []string
	for _, u := range found {
		originals = append(originals, u.Original)
	}
	require.Contains(t, originals, "192.168.10.1")
	require.Contains(t, originals, "255.255.255.255")
	require.NotContains(t, originals, "0.0.0.256")
}

func TestDetectSubstringInvariant(t *testing.T) {
	inputs := []string{
		"this is a link: www.google.com",
		"my email is vshlosbe@linkedin.com and my site is http://www.linkedin.com/vshlos",
		"real IPs: 192.168.10.1 and 255.255.255.255",
		`url: "http://example.com/path" done`,
	}
	for _, s := range inputs {
		for _, u := range Detect(s, Json) {
			require.True(t, strings.Contains(s, u.Original),
				"detected URL %q must be a substring of input %q", u.Original, s)
		}
	}
}

func TestDetectNeverPanicsOnEmptyOrGarbageInput(t *testing.T) {
	for _, s := range []string{"", " ", "...", "://", "%%%", "[[[", "@@@"} {
		require.NotPanics(t, func() {
			Detect(s, Default)
		})
	}
}
