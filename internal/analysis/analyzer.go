package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrTaxonomyUnavailable means the category source could not be read. It is
// distinct from an empty taxonomy, which is not an error.
var ErrTaxonomyUnavailable = errors.New("analysis: taxonomy unavailable")

// TaxonomyRepository supplies the current categories in a stable order.
type TaxonomyRepository interface {
	ListAll(ctx context.Context) ([]models.Category, error)
}

// Result is the outcome of analysing one markup body.
type Result struct {
	Title             string   `json:"title,omitempty"`
	WordCount         int      `json:"word_count"`
	ReadingTime       int      `json:"reading_time"`
	AutoTags          []string `json:"auto_tags"`
	SuggestedCategory string   `json:"suggested_category"`
	SentenceCount     int      `json:"sentence_count"`
	AvgSentenceWords  float64  `json:"avg_sentence_words"`
}

// EmptyResult is what blank input analyses to.
func EmptyResult() Result {
	return Result{AutoTags: []string{}, SuggestedCategory: Uncategorized}
}

// AnalyzerDeps holds the collaborators and settings of an Analyzer.
type AnalyzerDeps struct {
	Extractor     Extractor          // defaults to a ReadabilityExtractor
	Taxonomy      TaxonomyRepository // required by Analyze, unused by Compute
	TopTags       int                // clamped to 1..MaxAutoTags, 0 means MaxAutoTags
	KeepStopwords bool
}

// Analyzer runs the extraction, metrics, ranking and classification pipeline.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	extractor     Extractor
	taxonomy      TaxonomyRepository
	topTags       int
	keepStopwords bool
}

func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	ex := deps.Extractor
	if ex == nil {
		ex = NewReadabilityExtractor(DefaultMaxInputBytes)
	}
	top := deps.TopTags
	if top <= 0 || top > MaxAutoTags {
		top = MaxAutoTags
	}
	return &Analyzer{
		extractor:     ex,
		taxonomy:      deps.Taxonomy,
		topTags:       top,
		keepStopwords: deps.KeepStopwords,
	}
}

// Analyze reads the taxonomy once and analyses markup against it. Blank markup
// returns EmptyResult without touching the taxonomy or the extractor.
func (a *Analyzer) Analyze(ctx context.Context, markup string) (Result, error) {
	if strings.TrimSpace(markup) == "" {
		return EmptyResult(), nil
	}
	if a.taxonomy == nil {
		return Result{}, fmt.Errorf("%w: no taxonomy repository configured", ErrTaxonomyUnavailable)
	}
	categories, err := a.taxonomy.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTaxonomyUnavailable, err)
	}
	return a.Compute(markup, categories), nil
}

// Compute analyses markup against a fixed taxonomy snapshot. It never fails:
// faults inside a stage fall back to that stage's zero value.
func (a *Analyzer) Compute(markup string, categories []models.Category) Result {
	if strings.TrimSpace(markup) == "" {
		return EmptyResult()
	}

	doc := a.extract(markup)
	if doc.Text == "" {
		res := EmptyResult()
		res.Title = doc.Title
		return res
	}

	var (
		metrics  Metrics
		tags     []string
		category = Uncategorized
	)
	var g errgroup.Group
	g.Go(func() error {
		defer recoverStage("metrics", func() { metrics = Metrics{} })
		metrics = ComputeMetrics(doc.Text)
		return nil
	})
	g.Go(func() error {
		defer recoverStage("ranking", func() { tags = nil })
		tags = termsOf(RankTermWeights(doc.Text, a.topTags, !a.keepStopwords))
		return nil
	})
	g.Go(func() error {
		defer recoverStage("classification", func() { category = Uncategorized })
		category = Classify(doc.Text, categories)
		return nil
	})
	_ = g.Wait()

	if tags == nil {
		tags = []string{}
	}
	return Result{
		Title:             doc.Title,
		WordCount:         metrics.WordCount,
		ReadingTime:       metrics.ReadingTime,
		AutoTags:          tags,
		SuggestedCategory: category,
		SentenceCount:     metrics.SentenceCount,
		AvgSentenceWords:  metrics.AvgSentenceWords,
	}
}

// ExplainCategories extracts markup and scores every category against it, in
// taxonomy order. It backs confidence values and the CLI's --explain output.
func (a *Analyzer) ExplainCategories(markup string, categories []models.Category) []CategoryScore {
	if strings.TrimSpace(markup) == "" {
		return ScoreCategories("", categories)
	}
	return ScoreCategories(a.extract(markup).Text, categories)
}

func (a *Analyzer) extract(markup string) (doc Document) {
	defer recoverStage("extraction", func() { doc = Document{} })
	return a.extractor.Extract(markup)
}

// recoverStage must be deferred directly. It logs a panic and applies reset.
func recoverStage(stage string, reset func()) {
	if r := recover(); r != nil {
		log.WithField("stage", stage).Errorf("analysis: recovered from panic: %v", r)
		reset()
	}
}
