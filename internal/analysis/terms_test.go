package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appleText() string {
	// "apple" 10 times among 50 tokens, every other word once.
	var words []string
	other := 0
	for i := 0; i < 50; i++ {
		if i%5 == 2 {
			words = append(words, "apple")
			continue
		}
		words = append(words, fmt.Sprintf("filler%d", other))
		other++
	}
	return strings.Join(words, " ")
}

func TestRankTerms_MostFrequentFirst(t *testing.T) {
	text := appleText()
	require.Len(t, strings.Fields(text), 50)

	tags := RankTerms(text, MaxAutoTags)
	require.NotEmpty(t, tags)
	assert.Equal(t, "apple", tags[0])
	assert.Len(t, tags, MaxAutoTags)
}

func TestRankTerms_TiesBrokenByFirstOccurrence(t *testing.T) {
	tags := RankTerms("zebra yak xylophone walrus vulture unicorn", MaxAutoTags)
	assert.Equal(t, []string{"zebra", "yak", "xylophone", "walrus", "vulture"}, tags)

	tags = RankTerms("mango kiwi kiwi mango lime", 3)
	assert.Equal(t, []string{"mango", "kiwi", "lime"}, tags)
}

func TestRankTerms_FewerDistinctTermsThanTopN(t *testing.T) {
	tags := RankTerms("rust rust golang", MaxAutoTags)
	assert.Equal(t, []string{"rust", "golang"}, tags)
}

func TestRankTerms_EmptyText(t *testing.T) {
	assert.Empty(t, RankTerms("", MaxAutoTags))
	assert.Empty(t, RankTerms("   \n ", MaxAutoTags))
	assert.NotNil(t, RankTerms("", MaxAutoTags))
	assert.Empty(t, RankTerms("words here", 0))
}

func TestRankTerms_LowercasesAndSplitsPunctuation(t *testing.T) {
	tags := RankTerms("Golang, golang! GOLANG? Python.", MaxAutoTags)
	assert.Equal(t, []string{"golang", "python"}, tags)
}

func TestRankTerms_SkipsStopwords(t *testing.T) {
	tags := RankTerms("The quick brown fox jumps over the lazy dog. The fox runs fast.", MaxAutoTags)
	assert.Equal(t, []string{"fox", "quick", "brown", "jumps", "lazy"}, tags)

	weights := RankTermWeights("the the the cat", 2, false)
	require.Len(t, weights, 2)
	assert.Equal(t, "the", weights[0].Term)
	assert.Equal(t, 3, weights[0].Count)
}

func TestRankTermWeights_OrderedAndUnique(t *testing.T) {
	text := "alpha beta beta gamma gamma gamma delta delta delta delta epsilon zeta"
	weights := RankTermWeights(text, MaxAutoTags, true)
	require.Len(t, weights, MaxAutoTags)

	seen := map[string]bool{}
	for i, w := range weights {
		assert.False(t, seen[w.Term], "duplicate term %q", w.Term)
		seen[w.Term] = true
		assert.Greater(t, w.Weight, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, weights[i-1].Weight, w.Weight)
		}
	}
	assert.Equal(t, []string{"delta", "gamma", "beta", "alpha", "epsilon"}, termsOf(weights))
}

func TestRankTerms_NoStateAcrossCalls(t *testing.T) {
	first := RankTerms("banana banana banana cherry", MaxAutoTags)
	second := RankTerms("orange grape", MaxAutoTags)
	again := RankTerms("banana banana banana cherry", MaxAutoTags)

	assert.Equal(t, []string{"orange", "grape"}, second)
	assert.Equal(t, first, again)
}

func TestRankTerms_Deterministic(t *testing.T) {
	text := appleText() + " pear pear plum plum fig"
	want := RankTerms(text, MaxAutoTags)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, RankTerms(text, MaxAutoTags))
	}
}
