package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scambait/pkg/logger"
)

func newTestChecker(t *testing.T) (*URLChecker, *PatternLibrary) {
	t.Helper()
	lib := NewPatternLibrary()
	return NewURLChecker(lib, logger.NewDefault()), lib
}

func TestCheckBlacklistedDomain(t *testing.T) {
	c, _ := newTestChecker(t)

	intel := c.Check(context.Background(), "http://phishing-site.com/anything/at/all")

	assert.Equal(t, 100, intel.Risk)
	assert.True(t, intel.KnownPhishing)
	assert.True(t, intel.Suspicious)
}

func TestCheckStructuralSignals(t *testing.T) {
	c, _ := newTestChecker(t)

	tests := []struct {
		name    string
		url     string
		minRisk int
	}{
		{"ip host", "http://192.168.12.34/pay", 40},
		{"suspicious tld", "http://totally-legit.xyz", 30},
		{"free hosting", "http://secure-rewards.000webhostapp.com", 40},
		{"typosquat", "http://paypal-secure-login.com", 50},
		{"keyword stuffing", "http://example.org/login/verify/account", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intel := c.Check(context.Background(), tt.url)
			assert.GreaterOrEqual(t, intel.Risk, tt.minRisk, "url %s reasons %v", tt.url, intel.Reasons)
			assert.False(t, intel.KnownPhishing)
		})
	}
}

func TestCheckCleanDomainLowRisk(t *testing.T) {
	c, _ := newTestChecker(t)

	intel := c.Check(context.Background(), "https://example.org/about")

	assert.Less(t, intel.Risk, 30)
	assert.False(t, intel.Suspicious)
}

func TestCheckExpandsShortener(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://phishing-site.com/landing", http.StatusFound)
	}))
	defer srv.Close()

	c, lib := newTestChecker(t)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	lib.Shorteners[u.Hostname()] = true

	intel := c.Check(context.Background(), srv.URL+"/abc123")

	assert.Equal(t, "http://phishing-site.com/landing", intel.FinalURL)
	assert.True(t, intel.KnownPhishing)
	assert.Equal(t, 100, intel.Risk)
}

func TestCheckUnresolvedShortenerFloorsRisk(t *testing.T) {
	c, lib := newTestChecker(t)
	// nothing listens here, so resolution fails immediately
	lib.Shorteners["127.0.0.1"] = true

	intel := c.Check(context.Background(), "http://127.0.0.1:1/xyz")

	assert.GreaterOrEqual(t, intel.Risk, 50)
	assert.True(t, intel.Suspicious)
}
