package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// MatchResult is a ranked hit: Index points into the candidate list.
type MatchResult struct {
	Index          int
	MatchedIndexes []int
}

// Ranker orders candidates against a query. An empty query returns every
// candidate in input order.
type Ranker interface {
	Rank(query string, candidates []string) []MatchResult
}

// FuzzyRanker ranks by subsequence score, best first.
type FuzzyRanker struct{}

func (FuzzyRanker) Rank(query string, candidates []string) []MatchResult {
	if query == "" {
		return all(candidates)
	}
	matches := fuzzy.Find(query, candidates)
	out := make([]MatchResult, len(matches))
	for i, m := range matches {
		out[i] = MatchResult{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return out
}

// SubstringRanker keeps candidates containing the query, in input order.
type SubstringRanker struct{}

func (SubstringRanker) Rank(query string, candidates []string) []MatchResult {
	if query == "" {
		return all(candidates)
	}
	return SubstringMatchNames(query, candidates)
}

func all(candidates []string) []MatchResult {
	out := make([]MatchResult, len(candidates))
	for i := range candidates {
		out[i] = MatchResult{Index: i}
	}
	return out
}

// SubstringMatchNames performs case-insensitive substring matching on a list of names
// Returns the indices of matches and their matched character positions
func SubstringMatchNames(query string, names []string) []MatchResult {
	if query == "" {
		return nil
	}

	lowerQuery := strings.ToLower(query)
	n := len([]rune(lowerQuery))
	var results []MatchResult

	for i, name := range names {
		runes := []rune(strings.ToLower(name))
		idx := strings.Index(string(runes), lowerQuery)
		if idx == -1 {
			continue
		}
		start := len([]rune(string(runes)[:idx]))
		matched := make([]int, n)
		for j := range matched {
			matched[j] = start + j
		}
		results = append(results, MatchResult{Index: i, MatchedIndexes: matched})
	}

	return results
}
