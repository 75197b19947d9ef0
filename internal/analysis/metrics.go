package analysis

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	log "github.com/sirupsen/logrus"
)

// WordsPerMinute is the fixed reading speed behind ReadingTime.
const WordsPerMinute = 200

// Metrics are the readability figures of one text.
type Metrics struct {
	WordCount        int
	ReadingTime      int // minutes, rounded up
	SentenceCount    int
	AvgSentenceWords float64
}

// ComputeMetrics counts whitespace-separated words and derives reading time
// and sentence statistics from them.
func ComputeMetrics(text string) Metrics {
	words := strings.Fields(text)
	m := Metrics{
		WordCount:   len(words),
		ReadingTime: ReadingTime(len(words)),
	}
	if m.WordCount == 0 {
		return m
	}
	m.SentenceCount = countSentences(text)
	if m.SentenceCount > 0 {
		m.AvgSentenceWords = float64(m.WordCount) / float64(m.SentenceCount)
	}
	return m
}

// ReadingTime returns ceil(wordCount / WordsPerMinute); zero words read in zero minutes.
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + WordsPerMinute - 1) / WordsPerMinute
}

var (
	sentenceTokenizerOnce sync.Once
	sentenceTokenizer     *sentences.DefaultSentenceTokenizer
)

// loadSentenceTokenizer builds the punkt English model once. The tokenizer is
// read-only after construction and shared by all callers.
func loadSentenceTokenizer() *sentences.DefaultSentenceTokenizer {
	sentenceTokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			log.Errorf("metrics: failed to load english sentence model: %v", err)
			return
		}
		sentenceTokenizer = t
	})
	return sentenceTokenizer
}

func countSentences(text string) (n int) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("metrics: sentence tokenizer panicked: %v", r)
			n = 0
		}
	}()
	tok := loadSentenceTokenizer()
	if tok == nil {
		return 0
	}
	for _, s := range tok.Tokenize(text) {
		if strings.TrimSpace(s.Text) != "" {
			n++
		}
	}
	return n
}
