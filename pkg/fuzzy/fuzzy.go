// Package fuzzy scores free-text query relevance against string
// values, supporting search-as-you-type over concept labels.
//
// Scoring contract: 0 for an exact normalized substring match, 0.5
// when every query token appears as a substring, otherwise the sum
// over query tokens of the minimum Levenshtein distance to any target
// token. Items scoring above a caller-supplied maximum are dropped.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxDistance is the default score cutoff for Search.
const DefaultMaxDistance = 3

// Match pairs an item with its relevance score. Lower is better.
type Match[T any] struct {
	Item  T
	Score float64
}

// Search scores every item's key against the query and returns the
// matches with score <= maxDistance, sorted ascending by score. The
// sort is stable: items with equal scores keep their input order.
//
// An empty query or empty input is a no-op: all items are returned
// unchanged with score 0.
func Search[T any](
	items []T,
	query string,
	key func(T) string,
	maxDistance float64,
) []Match[T] {
	res := make([]Match[T], 0, len(items))

	if len(items) == 0 || strings.TrimSpace(query) == "" {
		for _, it := range items {
			res = append(res, Match[T]{Item: it})
		}
		return res
	}

	normQuery := Normalize(query)
	tokens := strings.Fields(normQuery)

	for _, it := range items {
		score := Score(normQuery, tokens, Normalize(key(it)))
		if score <= maxDistance {
			res = append(res, Match[T]{Item: it, Score: score})
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score < res[j].Score
	})
	return res
}

// Score computes the relevance of a normalized target for a
// normalized query and its tokens. Both inputs must already be
// normalized with Normalize.
func Score(normQuery string, queryTokens []string, normTarget string) float64 {
	if strings.Contains(normTarget, normQuery) {
		return 0
	}

	allPresent := true
	for _, tok := range queryTokens {
		if !strings.Contains(normTarget, tok) {
			allPresent = false
			break
		}
	}
	if allPresent {
		return 0.5
	}

	targetTokens := strings.Fields(normTarget)
	if len(targetTokens) == 0 {
		return math.Inf(1)
	}

	var total float64
	for _, qt := range queryTokens {
		best := math.Inf(1)
		for _, tt := range targetTokens {
			d := float64(levenshtein.ComputeDistance(qt, tt))
			if d < best {
				best = d
			}
		}
		total += best
	}
	return total
}

// foldAccents strips combining marks after NFD decomposition, so
// accented characters compare equal to their ASCII forms.
var foldAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases, transliterates accented characters to ASCII,
// turns underscores into spaces, collapses repeated whitespace and
// trims the result.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
