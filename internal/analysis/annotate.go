package analysis

import (
	"regexp"
	"strings"

	"KeywordAnalyzer/internal/domain"
)

var productSplit = regexp.MustCompile(`[.\s/\\_-]+`)

var intentCues = []struct {
	intent domain.Intent
	cues   []string
}{
	{domain.IntentTransactional, []string{
		"buy", "price", "pricing", "cost", "license", "licence", "purchase", "discount",
		"coupon", "trial", "free trial", "subscription", "order", "cheap", "deal",
	}},
	{domain.IntentCommercial, []string{
		"best", "top", "vs", "versus", "review", "reviews", "compare", "comparison",
		"alternative", "alternatives",
	}},
	{domain.IntentNavigational, []string{
		"login", "log in", "sign in", "docs", "documentation", "api reference", "github",
		"official", "website", "support", "contact", "nuget", "maven", "pypi", "npm",
	}},
}

// ProductTokens splits a product name into lowercase tokens:
// "Aspose.Words" -> ["aspose", "words"].
func ProductTokens(product string) []string {
	parts := productSplit.Split(strings.ToLower(strings.TrimSpace(product)), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ProductCode is the last product token, used as the content folder name:
// "Aspose.Cells" -> "cells".
func ProductCode(product string) string {
	tokens := ProductTokens(product)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// AnnotateIntentBrand fills intent and brand fit on every cluster. Members
// are left untouched.
func AnnotateIntentBrand(clusters []domain.Cluster, product string) []domain.Cluster {
	tokens := ProductTokens(product)
	for i := range clusters {
		intent, fit := Annotate(clusters[i], tokens)
		clusters[i].Metrics.Intent = intent
		clusters[i].Metrics.BrandFit = fit
	}
	return clusters
}

// Annotate computes the intent and brand fit for a single cluster.
func Annotate(c domain.Cluster, productTokens []string) (domain.Intent, float64) {
	votes := map[domain.Intent]int{}
	var fitSum float64
	for _, m := range c.Members {
		votes[KeywordIntent(m.Keyword, productTokens)]++
		fitSum += keywordBrandFit(m.Keyword, productTokens)
	}

	winner := domain.IntentInformational
	for _, intent := range domain.Intents {
		if votes[intent] > votes[winner] {
			winner = intent
		}
	}

	var fit float64
	if len(c.Members) > 0 {
		fit = fitSum / float64(len(c.Members))
	}
	return winner, clamp01(fit)
}

// KeywordIntent classifies one keyword. A keyword that is nothing but the
// product name counts as navigational.
func KeywordIntent(keyword string, productTokens []string) domain.Intent {
	padded := " " + strings.Join(tokenize(keyword), " ") + " "
	for _, group := range intentCues {
		for _, cue := range group.cues {
			if strings.Contains(padded, " "+cue+" ") {
				return group.intent
			}
		}
	}
	if len(productTokens) > 0 && strings.TrimSpace(padded) == strings.Join(productTokens, " ") {
		return domain.IntentNavigational
	}
	return domain.IntentInformational
}

func keywordBrandFit(keyword string, productTokens []string) float64 {
	if len(productTokens) == 0 {
		return 0
	}
	present := map[string]struct{}{}
	for _, tok := range tokenize(keyword) {
		present[tok] = struct{}{}
		present[singular(tok)] = struct{}{}
	}
	matched := 0
	for _, pt := range productTokens {
		_, full := present[pt]
		_, single := present[singular(pt)]
		if full || single {
			matched++
		}
	}
	return float64(matched) / float64(len(productTokens))
}

func singular(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return strings.TrimSuffix(tok, "s")
	}
	return tok
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
