package services

import (
	"context"
	"strings"

	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

// knownUPIProviders anchors handle validation; candidates with an
// unknown suffix still pass if the suffix is purely alphabetic, since
// new payment providers appear constantly.
var knownUPIProviders = map[string]bool{
	"upi": true, "paytm": true, "ybl": true, "okaxis": true, "oksbi": true,
	"okhdfcbank": true, "okicici": true, "apl": true, "ibl": true, "axl": true,
}

// emailProviders are mailbox hosts that look like handle providers
// when the TLD is cut off.
var emailProviders = map[string]bool{
	"gmail": true, "yahoo": true, "hotmail": true, "outlook": true,
	"rediffmail": true, "protonmail": true, "icloud": true, "live": true,
}

// Extractor pulls actionable artifacts out of scam messages: payment
// handles, bank accounts, routing codes, phone numbers and URLs.
type Extractor struct {
	lib     *PatternLibrary
	checker *URLChecker
	logger  *logger.Logger
}

func NewExtractor(lib *PatternLibrary, checker *URLChecker, log *logger.Logger) *Extractor {
	return &Extractor{
		lib:     lib,
		checker: checker,
		logger:  log.WithComponent("extractor"),
	}
}

// Extract scans one message and returns the validated artifacts found
// in it. The scan is deterministic and idempotent; invalid candidates
// are dropped silently.
func (e *Extractor) Extract(ctx context.Context, text string) models.IntelligenceDelta {
	var delta models.IntelligenceDelta

	var handleCands []string
	for _, loc := range e.lib.UPIPattern.FindAllStringIndex(text, -1) {
		// a dot right after the provider means an email or domain, not
		// a payment handle
		if loc[1] < len(text) && text[loc[1]] == '.' {
			continue
		}
		handleCands = append(handleCands, text[loc[0]:loc[1]])
	}
	for _, cand := range dedupe(handleCands) {
		if id, ok := validateUPI(cand); ok {
			delta.UPIIDs = append(delta.UPIIDs, id)
		}
	}

	for _, cand := range dedupe(e.lib.PhonePattern.FindAllString(text, -1)) {
		if phone, ok := normalizePhone(cand); ok {
			delta.PhoneNumbers = append(delta.PhoneNumbers, phone)
		}
	}

	// both the bare 10-digit form and the 91-prefixed 12-digit form of
	// an extracted phone must not resurface as account candidates
	phoneDigits := make(map[string]bool, 2*len(delta.PhoneNumbers))
	for _, p := range delta.PhoneNumbers {
		digits := strings.TrimPrefix(p, "+")
		phoneDigits[digits] = true
		phoneDigits[strings.TrimPrefix(digits, "91")] = true
	}
	for _, cand := range dedupe(e.lib.AccountPattern.FindAllString(text, -1)) {
		if validateAccount(cand) && !phoneDigits[cand] {
			delta.BankAccounts = append(delta.BankAccounts, cand)
		}
	}

	delta.IFSCCodes = dedupe(e.lib.IFSCPattern.FindAllString(text, -1))

	for _, cand := range dedupe(e.lib.URLPattern.FindAllString(text, -1)) {
		cand = strings.TrimRight(cand, ".,;:!?)")
		if !plausibleURL(cand) {
			continue
		}
		delta.URLs = append(delta.URLs, e.checker.Check(ctx, cand))
	}

	return delta
}

// validateUPI splits a handle candidate and checks the provider part.
// Email-looking candidates with a dotted suffix are rejected.
func validateUPI(cand string) (string, bool) {
	parts := strings.Split(cand, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	provider := strings.ToLower(parts[1])
	if strings.Contains(provider, ".") || emailProviders[provider] {
		return "", false
	}
	if !knownUPIProviders[provider] && len(provider) < 3 {
		return "", false
	}
	return strings.ToLower(cand), true
}

// validateAccount keeps 9-18 digit runs that are not a single
// repeated digit.
func validateAccount(cand string) bool {
	if len(cand) < 9 || len(cand) > 18 {
		return false
	}
	first := cand[0]
	for i := 1; i < len(cand); i++ {
		if cand[i] != first {
			return true
		}
	}
	return false
}

// normalizePhone reduces a candidate to digits and canonicalizes it to
// +91XXXXXXXXXX. Indian mobiles start with 6-9.
func normalizePhone(cand string) (string, bool) {
	var digits strings.Builder
	for _, r := range cand {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 12 && strings.HasPrefix(d, "91") {
		d = d[2:]
	}
	if len(d) != 10 || d[0] < '6' || d[0] > '9' {
		return "", false
	}
	return "+91" + d, true
}

// plausibleURL filters bare-domain regex hits that are really just
// words with dots, and payment handles matched a second time.
func plausibleURL(cand string) bool {
	if strings.Contains(cand, "@") {
		return false
	}
	host, _ := normalizeURL(cand)
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	tld := host[strings.LastIndex(host, ".")+1:]
	return len(tld) >= 2 && !isAllDigits(tld)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
