package services

import (
	"strings"

	"scambait/internal/domain/models"
)

// structural pattern weights
const (
	upiWeight     = 40
	accountWeight = 40
	urlWeight     = 35
	phoneWeight   = 25
)

// RuleResult is the outcome of the keyword and structure stage.
type RuleResult struct {
	Score           int
	Category        models.ScamCategory
	MatchedKeywords []string
	MatchedClasses  []string
}

// categoryPriority breaks ties in the class vote; more specific scam
// families win over generic ones.
var categoryPriority = map[models.ScamCategory]int{
	models.CategoryLottery:     7,
	models.CategoryPrize:       6,
	models.CategoryTechSupport: 5,
	models.CategoryJob:         4,
	models.CategoryRomance:     3,
	models.CategoryPhishing:    2,
	models.CategoryBank:        1,
	models.CategoryOther:       0,
}

// RuleEngine scores a message against the weighted keyword classes and
// structural patterns of the library.
type RuleEngine struct {
	lib *PatternLibrary
}

func NewRuleEngine(lib *PatternLibrary) *RuleEngine {
	return &RuleEngine{lib: lib}
}

// Evaluate runs every keyword class and structural pattern over the
// message. Each class contributes its weight once no matter how many
// of its keywords hit; the category is decided by majority vote among
// the matched classes.
func (e *RuleEngine) Evaluate(text string) RuleResult {
	lower := strings.ToLower(text)

	res := RuleResult{Category: models.CategoryOther}
	votes := make(map[models.ScamCategory]int)

	for _, class := range e.lib.KeywordClasses {
		matched := false
		for _, kw := range class.Keywords {
			if strings.Contains(lower, kw) {
				res.MatchedKeywords = append(res.MatchedKeywords, kw)
				matched = true
			}
		}
		if matched {
			res.Score += class.Weight
			res.MatchedClasses = append(res.MatchedClasses, class.Name)
			votes[class.Category]++
		}
	}

	// Structural patterns add score but do not vote on the category;
	// a payment handle says nothing about the scam family.
	if e.lib.UPIPattern.MatchString(text) {
		res.Score += upiWeight
	}
	if e.lib.AccountPattern.MatchString(text) {
		res.Score += accountWeight
	}
	if e.lib.URLPattern.MatchString(text) {
		res.Score += urlWeight
	}
	if e.lib.PhonePattern.MatchString(text) {
		res.Score += phoneWeight
	}

	res.Score = clampScore(res.Score)
	res.Category = voteCategory(votes)
	return res
}

// voteCategory picks the category with the most class votes, breaking
// ties by priority.
func voteCategory(votes map[models.ScamCategory]int) models.ScamCategory {
	winner := models.CategoryOther
	best := 0
	for cat, n := range votes {
		if n > best || (n == best && categoryPriority[cat] > categoryPriority[winner]) {
			winner = cat
			best = n
		}
	}
	if best == 0 {
		return models.CategoryOther
	}
	return winner
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
