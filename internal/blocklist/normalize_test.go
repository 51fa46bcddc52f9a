package blocklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"Blank", "   ", "", false},
		{"Comment", "# localhost entries", "", false},
		{"HostsZero", "0.0.0.0 ads.example.com", "ads.example.com", true},
		{"HostsLoopback", "127.0.0.1 Tracker.Example.COM", "tracker.example.com", true},
		{"HostsExtraTokens", "0.0.0.0 ads.example.com # inline", "ads.example.com", true},
		{"HostsOtherAddr", "10.0.0.1 ads.example.com", "", false},
		{"AdblockBlocking", "||bad.example.com^more", "bad.example.com", true},
		{"AdblockBlockingBare", "||bad.example.com", "bad.example.com", true},
		{"AdblockAnchoredScheme", "|http://X.example.com|", "x.example.com", true},
		{"AdblockAnchoredHTTPS", "|https://cdn.example.com|", "cdn.example.com", true},
		{"AdblockAnchoredCaret", "|ads.example.com^script|", "ads.example.com", true},
		{"PlainDomain", "plain.example.com", "plain.example.com", true},
		{"PlainDomainUpper", "Plain.Example.COM", "plain.example.com", true},
		{"WildcardRejected", "*.ads.example.com", "", false},
		{"PathRejected", "example.com/ads.js", "", false},
		{"ShortTLDRejected", "example.x", "", false},
		{"NoDotRejected", "localhost", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.line)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"0.0.0.0 ADS.example.com",
		"||bad.example.com^",
		"|http://X.example.com|",
		"plain.example.com",
	}
	for _, line := range inputs {
		first, ok := Normalize(line)
		require.True(t, ok, line)
		again, ok := Normalize(first)
		require.True(t, ok, first)
		assert.Equal(t, first, again)
	}
}

func TestParseHosts(t *testing.T) {
	text := "# merged list\n" +
		"0.0.0.0 ads.example.com\n" +
		"0.0.0.0 ADS.example.com\n" +
		"||trk.example.com^\n" +
		"\n" +
		"plain.example.com\n" +
		"*.wild.example.com\n"

	entries := ParseHosts(text)
	assert.Equal(t, map[string]struct{}{
		"ads.example.com":   {},
		"trk.example.com":   {},
		"plain.example.com": {},
	}, entries)
}

func TestExtractIPv4(t *testing.T) {
	text := "block 192.0.2.1 and 198.51.100.7\n" +
		"192.0.2.1 # repeated\n" +
		"999.1.1.1 is not an address but 10.0.0.255 is\n"

	entries := ExtractIPv4(text)
	assert.Contains(t, entries, "192.0.2.1")
	assert.Contains(t, entries, "198.51.100.7")
	assert.Contains(t, entries, "10.0.0.255")
	assert.NotContains(t, entries, "999.1.1.1")
	assert.Len(t, entries, 3)
}
