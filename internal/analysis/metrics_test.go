package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadingTime_Boundaries(t *testing.T) {
	testCases := []struct {
		words    int
		expected int
	}{
		{0, 0},
		{1, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{401, 3},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ReadingTime(tc.words), "words=%d", tc.words)
	}
}

func TestComputeMetrics_WordCount(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty", "", 0},
		{"whitespace only", " \t\n  ", 0},
		{"single word", "hello", 1},
		{"punctuation stays attached", "Hello, world! It's -- fine.", 5},
		{"mixed whitespace runs", "one\ttwo\n\nthree    four\r\nfive", 5},
		{"leading and trailing space", "   alpha beta   ", 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := ComputeMetrics(tc.text)
			assert.Equal(t, tc.expected, m.WordCount)
			assert.Equal(t, ReadingTime(tc.expected), m.ReadingTime)
		})
	}
}

func TestComputeMetrics_ReadingTimeMatchesWordCount(t *testing.T) {
	for _, n := range []int{0, 1, 150, 199, 200, 201, 999} {
		text := strings.TrimSpace(strings.Repeat("word ", n))
		m := ComputeMetrics(text)
		assert.Equal(t, n, m.WordCount)
		assert.Equal(t, (n+WordsPerMinute-1)/WordsPerMinute, m.ReadingTime)
	}
}

func TestComputeMetrics_Sentences(t *testing.T) {
	m := ComputeMetrics("The cat sat on the mat. The dog ran away. It was late.")
	assert.Equal(t, 13, m.WordCount)
	assert.Equal(t, 3, m.SentenceCount)
	assert.InDelta(t, 13.0/3.0, m.AvgSentenceWords, 0.0001)

	empty := ComputeMetrics("")
	assert.Zero(t, empty.SentenceCount)
	assert.Zero(t, empty.AvgSentenceWords)
}
