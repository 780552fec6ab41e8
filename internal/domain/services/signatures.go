package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"

	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

// Fingerprint normalizes a message into a canonical form and hashes
// it: case-folded, digit runs collapsed to NUM, punctuation stripped,
// tokens deduplicated and sorted. Messages that differ only in
// amounts, names or ordering produce the same fingerprint.
func Fingerprint(text string) (string, []string) {
	var b strings.Builder
	lastDigit := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsDigit(r):
			if !lastDigit {
				b.WriteString("NUM")
			}
			lastDigit = true
		case unicode.IsLetter(r) || unicode.IsSpace(r):
			b.WriteRune(r)
			lastDigit = false
		default:
			b.WriteByte(' ')
			lastDigit = false
		}
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)

	sum := sha256.Sum256([]byte(strings.Join(tokens, " ")))
	return hex.EncodeToString(sum[:]), tokens
}

// tokenOverlap returns the share of catalog tokens present in the
// message, 0.0-1.0.
func tokenOverlap(msgTokens, sigTokens []string) float64 {
	if len(sigTokens) == 0 {
		return 0
	}
	set := make(map[string]bool, len(msgTokens))
	for _, t := range msgTokens {
		set[t] = true
	}
	hits := 0
	for _, t := range sigTokens {
		if set[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(sigTokens))
}

// SignatureMatch is the result of a catalog lookup.
type SignatureMatch struct {
	Signature *Signature
	Exact     bool
	Overlap   float64
}

// SignatureIndex answers exact and fuzzy lookups against the known
// scam catalog.
type SignatureIndex struct {
	logger     *logger.Logger
	byHash     map[string]*Signature
	signatures []Signature
	fuzzyRatio float64
}

// NewSignatureIndex builds the lookup structures over the library's
// signature catalog.
func NewSignatureIndex(lib *PatternLibrary, fuzzyRatio float64, log *logger.Logger) *SignatureIndex {
	idx := &SignatureIndex{
		logger:     log.WithComponent("signature-index"),
		byHash:     make(map[string]*Signature, len(lib.Signatures)),
		signatures: lib.Signatures,
		fuzzyRatio: fuzzyRatio,
	}
	for i := range idx.signatures {
		idx.byHash[idx.signatures[i].Fingerprint] = &idx.signatures[i]
	}
	return idx
}

// Lookup checks the message against the catalog. Exact fingerprint
// matches win; otherwise the best token-overlap at or above the fuzzy
// ratio is returned. nil means no match.
func (idx *SignatureIndex) Lookup(text string) *SignatureMatch {
	fp, tokens := Fingerprint(text)
	if sig, ok := idx.byHash[fp]; ok {
		return &SignatureMatch{Signature: sig, Exact: true, Overlap: 1.0}
	}

	var best *Signature
	bestOverlap := 0.0
	for i := range idx.signatures {
		ov := tokenOverlap(tokens, idx.signatures[i].Tokens)
		if ov >= idx.fuzzyRatio && ov > bestOverlap {
			best = &idx.signatures[i]
			bestOverlap = ov
		}
	}
	if best == nil {
		return nil
	}
	return &SignatureMatch{Signature: best, Overlap: bestOverlap}
}

// Boost converts a match into a bounded confidence contribution. Fuzzy
// matches are scaled down by their overlap.
func (m *SignatureMatch) Boost(factor float64) (int, models.ScamCategory) {
	boost := float64(m.Signature.Confidence) * factor
	if !m.Exact {
		boost *= m.Overlap
	}
	return int(boost), m.Signature.Category
}
