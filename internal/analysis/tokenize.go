package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// tokenize lowercases text and splits it into word tokens: maximal runs of
// letters, digits, marks and underscores. Order and repeats are preserved.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// cases.Caser keeps internal state, so each call gets its own.
	lower := cases.Lower(language.Und).String(norm.NFKC.String(text))
	return strings.FieldsFunc(lower, isTokenSeparator)
}

func isTokenSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_')
}

// normalizeKeyword brings a taxonomy keyword into the same form as a token.
func normalizeKeyword(kw string) string {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return ""
	}
	return cases.Lower(language.Und).String(norm.NFKC.String(kw))
}

// NormalizeKeywords trims, lowercases and deduplicates keywords, keeping
// first-seen order and dropping blanks.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = normalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// IsSingleToken reports whether kw normalizes to exactly one token, the only
// kind of keyword that can ever match.
func IsSingleToken(kw string) bool {
	toks := tokenize(kw)
	return len(toks) == 1 && toks[0] == normalizeKeyword(kw)
}

// English function words skipped when ranking auto-tags.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all am an and any are aren't as at
		be because been before being below between both but by
		can cannot could couldn't
		did didn't do does doesn't doing don't down during
		each
		few for from further
		had hadn't has hasn't have haven't having he her here hers herself him himself his how
		i if in into is isn't it it's its itself
		just
		me more most my myself
		no nor not now
		of off on once only or other ought our ours ourselves out over own
		s same she should shouldn't so some such
		t than that the their theirs them themselves then there these they this those through to too
		under until up
		very
		was wasn't we were weren't what when where which while who whom why will with won't would wouldn't
		you your yours yourself yourselves`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether token is filtered from auto-tag ranking.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
