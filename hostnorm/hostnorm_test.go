package hostnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmpty(t *testing.T) {
	host, bytes := Normalize("")
	require.Equal(t, "", host)
	require.Nil(t, bytes)
}

func TestNormalizeLowercasesDNSName(t *testing.T) {
	host, bytes := Normalize("WWW.Google.COM")
	require.Equal(t, "www.google.com", host)
	require.Nil(t, bytes)
}

func TestNormalizeNumericIPv4WholeNumber(t *testing.T) {
	host, bytes := Normalize("3279880203")
	require.Equal(t, "195.127.0.11", host)
	require.Len(t, bytes, 16)
	require.Equal(t, []byte{195, 127, 0, 11}, bytes[12:16])
	require.Equal(t, byte(0xFF), bytes[10])
	require.Equal(t, byte(0xFF), bytes[11])
	for _, b := range bytes[:10] {
		require.Equal(t, byte(0), b)
	}
}

func TestNormalizeMixedBaseDottedIPv4(t *testing.T) {
	host, _ := Normalize("0x92.168.1.1")
	require.Equal(t, "146.168.1.1", host)
}

func TestNormalizeIPv6DoubleColonExpandsFully(t *testing.T) {
	host, bytes := Normalize("[fefe::]")
	require.Equal(t, "[fefe:0:0:0:0:0:0:0]", host)
	require.Len(t, bytes, 16)
}

func TestNormalizeIPv6EmbeddedIPv4MixedBase(t *testing.T) {
	host, _ := Normalize("[0:ffff::077.0x22.222.11]")
	require.Equal(t, "[0:ffff:0:0:0:0:3f22:de0b]", host)
}

func TestNormalizeIsIdempotentOnAlreadyNormalizedHost(t *testing.T) {
	cases := []string{"www.google.com", "195.127.0.11", "[fefe:0:0:0:0:0:0:0]"}
	for _, c := range cases {
		once, _ := Normalize(c)
		twice, _ := Normalize(once)
		require.Equal(t, once, twice, "Normalize should be the identity on an already-normalized host %q", c)
	}
}

func TestIPv4MappedEncodingInvariant(t *testing.T) {
	_, bytes := Normalize("192.168.10.1")
	require.NotNil(t, bytes)
	require.Equal(t, byte(0xFF), bytes[10])
	require.Equal(t, byte(0xFF), bytes[11])
	require.Equal(t, []byte{192, 168, 10, 1}, bytes[12:16])
}
