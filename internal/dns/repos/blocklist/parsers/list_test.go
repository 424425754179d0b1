package parsers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/domain"
)

func ruleKeys(rules []domain.BlockRule) []string {
	keys := make([]string, 0, len(rules))
	for _, r := range rules {
		keys = append(keys, r.Name+"|"+r.Kind.String())
	}
	return keys
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   []string
	}{
		{
			name:   "domains exact and suffix",
			format: FormatDomains,
			input:  "ads.example.com\n*.doubleclick.net\n.tracker.test\n",
			want:   []string{"ads.example.com|exact", "doubleclick.net|suffix", "tracker.test|suffix"},
		},
		{
			name:   "domains canonicalized",
			format: FormatDomains,
			input:  "\uFEFF  Ads.Example.COM.  \n*.CDN.Example.net\n",
			want:   []string{"ads.example.com|exact", "cdn.example.net|suffix"},
		},
		{
			name:   "comments and blanks",
			format: FormatDomains,
			input:  "# header\n\n   \nads.example.com # inline\n#*.hidden.test\n",
			want:   []string{"ads.example.com|exact"},
		},
		{
			name:   "exact and suffix for one name coexist, repeats collapse",
			format: FormatDomains,
			input:  "example.org\n*.example.org\nEXAMPLE.org\n.example.org\n",
			want:   []string{"example.org|exact", "example.org|suffix"},
		},
		{
			name:   "domains invalid entries skipped",
			format: FormatDomains,
			input: strings.Join([]string{
				"localhost",
				"a..b.com",
				"bad*.example.com",
				"*.*.example.com",
				"under_score.example.com",
				"slash/path.example.com",
				"-" + strings.Repeat("x", 64) + ".com",
				"10.0.0.1",
				"ok-name.example.com",
			}, "\n"),
			want: []string{"under_score.example.com|exact", "ok-name.example.com|exact"},
		},
		{
			name:   "hosts names after the address",
			format: FormatHosts,
			input:  "0.0.0.0 telemetry.example.org\n127.0.0.1 metrics.example.org stats.example.org # tracking\n",
			want:   []string{"telemetry.example.org|exact", "metrics.example.org|exact", "stats.example.org|exact"},
		},
		{
			name:   "hosts never produce suffix rules",
			format: FormatHosts,
			input:  "0.0.0.0 *.wild.test .dot.test plain.test\n",
			want:   []string{"plain.test|exact"},
		},
		{
			name:   "hosts address only and local names",
			format: FormatHosts,
			input:  "0.0.0.0\n127.0.0.1 localhost\n::1 ip6-localhost ip6-loopback\n0.0.0.0 Ads.Example.com ads.example.com.\n",
			want:   []string{"ads.example.com|exact"},
		},
	}

	now := time.Unix(1723550000, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Parse(strings.NewReader(tt.input), tt.format, "src.list", log.NewNoopLogger(), now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ruleKeys(rules))
			for _, r := range rules {
				assert.Equal(t, "src.list", r.Source)
				assert.True(t, r.AddedAt.Equal(now))
				assert.NoError(t, r.Validate())
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	rules, err := Parse(strings.NewReader(""), FormatHosts, "empty.hosts", log.NewNoopLogger(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestParse_ReadErrors(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Parse(failingReader{err: boom}, FormatDomains, "x.txt", log.NewNoopLogger(), time.Now())
	assert.ErrorIs(t, err, boom)

	_, err = Parse(strings.NewReader(strings.Repeat("a", 70000)+"\n"), FormatDomains, "x.txt", log.NewNoopLogger(), time.Now())
	assert.Error(t, err, "lines past the scanner limit fail the file")
}

func TestParse_MissingSourceSkipsRules(t *testing.T) {
	rules, err := Parse(strings.NewReader("ads.example.com\n"), FormatDomains, "", log.NewNoopLogger(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"lists/ads.txt", FormatDomains, true},
		{"lists/ADS.LIST", FormatDomains, true},
		{"/etc/zonedns/blocklist.d/sample.hosts", FormatHosts, true},
		{"README.md", 0, false},
		{"noext", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFor(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "domains", FormatDomains.String())
	assert.Equal(t, "hosts", FormatHosts.String())
	assert.Equal(t, "Format(7)", Format(7).String())
}
