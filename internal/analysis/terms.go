package analysis

import (
	"math"
	"sort"
)

// MaxAutoTags bounds the number of auto-tags attached to a document.
const MaxAutoTags = 5

// TermWeight is one row of a document's term-weight table.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
}

// termIndex is a tf-idf table over a corpus that only ever holds the one
// document it was built from. It lives for a single ranking call.
type termIndex struct {
	docs    int
	df      map[string]int
	entries []*TermWeight // first-occurrence order
	byTerm  map[string]*TermWeight
}

func newTermIndex(tokens []string, dropStopwords bool) *termIndex {
	idx := &termIndex{
		docs:   1,
		df:     make(map[string]int),
		byTerm: make(map[string]*TermWeight),
	}
	for _, tok := range tokens {
		if dropStopwords && IsStopword(tok) {
			continue
		}
		if e, ok := idx.byTerm[tok]; ok {
			e.Count++
			continue
		}
		e := &TermWeight{Term: tok, Count: 1}
		idx.byTerm[tok] = e
		idx.entries = append(idx.entries, e)
		idx.df[tok] = 1
	}
	for _, e := range idx.entries {
		e.Weight = float64(e.Count) * idx.idf(e.Term)
	}
	return idx
}

// idf uses the smoothed form 1 + ln(N / (1 + df)). With N = df = 1 it is the
// same for every term, so ranking follows raw frequency.
func (idx *termIndex) idf(term string) float64 {
	return 1 + math.Log(float64(idx.docs)/float64(1+idx.df[term]))
}

func (idx *termIndex) top(n int) []TermWeight {
	ranked := make([]TermWeight, len(idx.entries))
	for i, e := range idx.entries {
		ranked[i] = *e
	}
	// Stable sort keeps first-occurrence order among equal weights.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// RankTermWeights returns up to topN weighted terms of text, heaviest first.
// Stopwords are skipped when dropStopwords is set.
func RankTermWeights(text string, topN int, dropStopwords bool) []TermWeight {
	if topN <= 0 {
		return []TermWeight{}
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []TermWeight{}
	}
	return newTermIndex(tokens, dropStopwords).top(topN)
}

// RankTerms returns up to topN terms of text ordered by frequency, ties going
// to the term seen first. English stopwords are skipped.
func RankTerms(text string, topN int) []string {
	return termsOf(RankTermWeights(text, topN, true))
}

func termsOf(weights []TermWeight) []string {
	out := make([]string, len(weights))
	for i, w := range weights {
		out[i] = w.Term
	}
	return out
}
