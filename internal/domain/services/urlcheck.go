package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

const (
	maxRedirectHops  = 5
	unresolvedFloor  = 50
	suspiciousAtRisk = 30
)

// URLChecker scores URLs for phishing risk using the indicator data in
// the pattern library. Shortened URLs are expanded first so the final
// destination is what gets scored.
type URLChecker struct {
	lib    *PatternLibrary
	client *http.Client
	logger *logger.Logger
}

func NewURLChecker(lib *PatternLibrary, log *logger.Logger) *URLChecker {
	return &URLChecker{
		lib: lib,
		client: &http.Client{
			Timeout: 5 * time.Second,
			// redirects are followed manually so hops can be counted
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: log.WithComponent("url-checker"),
	}
}

// Check expands and scores a single URL. It never returns an error: an
// unresolvable shortener floors the risk at medium instead.
func (c *URLChecker) Check(ctx context.Context, rawURL string) models.URLIntel {
	intel := models.URLIntel{URL: rawURL}

	final, resolved := c.expand(ctx, rawURL)
	if final != rawURL {
		intel.FinalURL = final
	}

	risk, known, reasons := c.scoreStructure(final)
	if !resolved && risk < unresolvedFloor {
		risk = unresolvedFloor
		reasons = append(reasons, "shortened URL could not be resolved")
	}
	intel.Risk = risk
	intel.KnownPhishing = known
	intel.Reasons = append(intel.Reasons, reasons...)
	intel.Suspicious = intel.Risk >= suspiciousAtRisk
	return intel
}

// scoreStructure applies the additive structural signals. Blacklist
// membership short-circuits to 100.
func (c *URLChecker) scoreStructure(rawURL string) (int, bool, []string) {
	host, full := normalizeURL(rawURL)
	if host == "" {
		return 0, false, []string{"unparseable URL"}
	}

	if c.lib.BlacklistedDomains[host] || c.lib.BlacklistedDomains[stripWWW(host)] {
		return 100, true, []string{"domain is blacklisted"}
	}

	score := 0
	var reasons []string

	if net.ParseIP(host) != nil {
		score += 40
		reasons = append(reasons, "IP address used as host")
	}

	for tld := range c.lib.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			score += 30
			reasons = append(reasons, fmt.Sprintf("suspicious TLD %s", tld))
			break
		}
	}

	for _, pattern := range c.lib.HostingPatterns {
		if strings.Contains(host, pattern) {
			score += 40
			reasons = append(reasons, "free hosting provider")
			break
		}
	}

	kwScore := 0
	for _, kw := range c.lib.SuspiciousKeywords {
		if strings.Contains(full, kw) {
			kwScore += 10
			if kwScore >= 30 {
				break
			}
		}
	}
	if kwScore > 0 {
		score += kwScore
		reasons = append(reasons, "suspicious keywords in URL")
	}

	if brand := c.typosquattedBrand(host); brand != "" {
		score += 50
		reasons = append(reasons, fmt.Sprintf("possible %s typosquat", brand))
	}

	if strings.Count(host, ".") > 3 {
		score += 20
		reasons = append(reasons, "excessive subdomain depth")
	}
	if len(host) > 50 {
		score += 15
		reasons = append(reasons, "unusually long domain")
	}

	return clampScore(score), false, reasons
}

// typosquattedBrand reports a brand the host imitates without being
// the brand's own domain.
func (c *URLChecker) typosquattedBrand(host string) string {
	bare := stripWWW(host)
	for _, brand := range c.lib.Brands {
		if bare == brand+".com" || bare == brand+".in" || bare == brand+".co.in" {
			continue
		}
		if strings.Contains(bare, brand) {
			return brand
		}
	}
	return ""
}

// expand follows shortener redirects up to maxRedirectHops. The second
// return value is false when the chain could not be resolved.
func (c *URLChecker) expand(ctx context.Context, rawURL string) (string, bool) {
	host, _ := normalizeURL(rawURL)
	if !c.lib.Shorteners[stripWWW(host)] {
		return rawURL, true
	}

	current := ensureScheme(rawURL)
	for hop := 0; hop < maxRedirectHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, current, nil)
		if err != nil {
			return current, false
		}
		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Debug().Str("url", current).Err(err).Msg("redirect resolution failed")
			return current, false
		}
		resp.Body.Close()

		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			return current, true
		}
		next := resp.Header.Get("Location")
		if next == "" {
			return current, false
		}
		if u, err := url.Parse(next); err == nil && !u.IsAbs() {
			base, _ := url.Parse(current)
			next = base.ResolveReference(u).String()
		}
		if next == current {
			return current, false
		}
		current = next

		nextHost, _ := normalizeURL(current)
		if !c.lib.Shorteners[stripWWW(nextHost)] {
			return current, true
		}
	}
	return current, false
}

// normalizeURL returns the lowercased host and the full lowercased URL
// string for keyword scanning.
func normalizeURL(rawURL string) (string, string) {
	u, err := url.Parse(ensureScheme(rawURL))
	if err != nil || u.Host == "" {
		return "", strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname()), strings.ToLower(u.String())
}

func ensureScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "http://" + rawURL
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}
