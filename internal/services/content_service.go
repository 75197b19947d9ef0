package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/internal/analysis"
	"inkwell/internal/config"
	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/internal/store"

	log "github.com/sirupsen/logrus"
)

const (
	maxTitleRunes   = 300
	maxTagsPerPost  = 20
	defaultPageSize = 20
)

type ContentResultItem struct {
	Content *models.Content `json:"content"`
	Tags    []*models.Tag   `json:"tags"`
}

type CreateContentParams struct {
	Title    string
	Body     string
	Status   string
	Metadata map[string]interface{}
	Tags     []string
}

// UpdateContentParams describes a partial update. Nil fields are left alone;
// a non-nil Tags replaces the manual tag set.
type UpdateContentParams struct {
	Title    *string
	Body     *string
	Status   *string
	Metadata map[string]interface{}
	Tags     []string
}

type ListContentParams struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
	Tags      []string
	Category  string
	Status    string
}

type ContentServiceDeps struct {
	ContentStore store.ContentStore
	TagService   *TagService
	JobClient    store.JobClient
	Analyzer     *analysis.Analyzer
	Config       *config.Config
}

type ContentService struct {
	contents store.ContentStore
	tags     *TagService
	jobs     store.JobClient
	analyzer *analysis.Analyzer

	failOnTaxonomyError bool
	reanalyzeAsync      bool
	autoApplyTags       bool
}

func NewContentService(deps ContentServiceDeps) *ContentService {
	cs := &ContentService{
		contents: deps.ContentStore,
		tags:     deps.TagService,
		jobs:     deps.JobClient,
		analyzer: deps.Analyzer,
	}
	if cs.analyzer == nil {
		cs.analyzer = analysis.NewAnalyzer(analysis.AnalyzerDeps{})
	}
	if deps.Config != nil {
		cs.failOnTaxonomyError = deps.Config.Analysis.FailOnTaxonomyError
		cs.reanalyzeAsync = deps.Config.Analysis.ReanalyzeAsync
		cs.autoApplyTags = deps.Config.Categorization.AutoApplyTags
	}
	return cs
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NewValidationError("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return models.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleRunes))
	}
	return nil
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return models.NewValidationError("body", "must not be empty")
	}
	return nil
}

func validateStatus(status string) error {
	if !models.ValidContentStatus(status) {
		return models.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > maxTagsPerPost {
		return models.NewValidationError("tags", fmt.Sprintf("at most %d tags are allowed", maxTagsPerPost))
	}
	return nil
}

func (p CreateContentParams) validate() error {
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	if err := validateBody(p.Body); err != nil {
		return err
	}
	if p.Status != "" {
		if err := validateStatus(p.Status); err != nil {
			return err
		}
	}
	return validateTags(p.Tags)
}

func (p UpdateContentParams) validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Body != nil {
		if err := validateBody(*p.Body); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return err
		}
	}
	return validateTags(p.Tags)
}

func encodeMetadata(md map[string]interface{}) (json.RawMessage, error) {
	if md == nil {
		return json.RawMessage("{}"), nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, models.NewValidationError("metadata", err.Error())
	}
	return raw, nil
}

// analyze runs the engine and records metrics under source. With
// failOnTaxonomyError unset a taxonomy outage degrades to an uncategorized
// result instead of failing the write.
func (cs *ContentService) analyze(ctx context.Context, body, source string) (analysis.Result, error) {
	start := time.Now()
	res, err := cs.analyzer.Analyze(ctx, body)
	if err == nil {
		metrics.ObserveAnalysis(source, metrics.OutcomeOK, res.SuggestedCategory == analysis.Uncategorized, time.Since(start))
		return res, nil
	}
	if !errors.Is(err, analysis.ErrTaxonomyUnavailable) {
		metrics.ObserveAnalysis(source, metrics.OutcomeError, false, time.Since(start))
		return analysis.Result{}, err
	}
	if cs.failOnTaxonomyError {
		metrics.ObserveAnalysis(source, metrics.OutcomeTaxonomyUnavailable, false, time.Since(start))
		return analysis.Result{}, err
	}
	log.WithField("source", source).Warnf("taxonomy unavailable, storing %q: %v", analysis.Uncategorized, err)
	res = cs.analyzer.Compute(body, nil)
	metrics.ObserveAnalysis(source, metrics.OutcomeDegraded, true, time.Since(start))
	return res, nil
}

func applyResult(content *models.Content, res analysis.Result, at time.Time) {
	content.WordCount = res.WordCount
	content.ReadingTime = res.ReadingTime
	content.AutoTags = res.AutoTags
	content.Category = res.SuggestedCategory
	content.AnalyzedAt = &at
}

// CreateContent validates, analyzes and stores a new post, then attaches its
// manual tags and, when auto_apply_tags is set, its auto-tags. If tagging
// fails the new row is deleted again, so a failed create leaves nothing behind.
func (cs *ContentService) CreateContent(ctx context.Context, params CreateContentParams) (*ContentResultItem, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	md, err := encodeMetadata(params.Metadata)
	if err != nil {
		return nil, err
	}

	res, err := cs.analyze(ctx, params.Body, "create")
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}

	content := &models.Content{
		Title:    strings.TrimSpace(params.Title),
		Body:     params.Body,
		Status:   params.Status,
		Metadata: md,
	}
	applyResult(content, res, time.Now())

	if err := cs.contents.CreateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	log.WithFields(log.Fields{
		"content_id": content.ID,
		"category":   content.Category,
		"words":      content.WordCount,
	}).Info("content created")

	tagNames := params.Tags
	if cs.autoApplyTags {
		tagNames = append(append([]string{}, params.Tags...), content.AutoTags...)
	}
	tags, err := cs.tags.TagContent(ctx, content.ID, tagNames)
	if err != nil {
		if delErr := cs.contents.DeleteContent(ctx, content.ID); delErr != nil {
			log.WithField("content_id", content.ID).Errorf("rollback of untagged content failed: %v", delErr)
		}
		return nil, fmt.Errorf("tag content %d: %w", content.ID, err)
	}
	return &ContentResultItem{Content: content, Tags: tags}, nil
}

// UpdateContent applies a partial update. A changed body is re-analyzed
// inline, or on the worker when reanalyze_async is set.
func (cs *ContentService) UpdateContent(ctx context.Context, id int64, params UpdateContentParams) (*ContentResultItem, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	content, err := cs.contents.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %d: %w", id, err)
	}

	bodyChanged := params.Body != nil && *params.Body != content.Body
	if params.Title != nil {
		content.Title = strings.TrimSpace(*params.Title)
	}
	if params.Body != nil {
		content.Body = *params.Body
	}
	if params.Status != nil {
		content.Status = *params.Status
	}
	if params.Metadata != nil {
		if content.Metadata, err = encodeMetadata(params.Metadata); err != nil {
			return nil, err
		}
	}

	enqueue := false
	if bodyChanged {
		if cs.reanalyzeAsync && cs.jobs != nil {
			enqueue = true
		} else {
			res, err := cs.analyze(ctx, content.Body, "update")
			if err != nil {
				return nil, fmt.Errorf("analyze content %d: %w", id, err)
			}
			applyResult(content, res, time.Now())
		}
	}

	if err := cs.contents.UpdateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("update content %d: %w", id, err)
	}

	if enqueue {
		if err := cs.jobs.EnqueueAnalysisJob(ctx, id); err != nil {
			log.WithField("content_id", id).Warnf("enqueue failed, analyzing inline: %v", err)
			if _, err := cs.Reanalyze(ctx, id); err != nil {
				return nil, err
			}
			if content, err = cs.contents.GetContent(ctx, id); err != nil {
				return nil, fmt.Errorf("get content %d: %w", id, err)
			}
		}
	}

	var tags []*models.Tag
	if params.Tags != nil {
		tags, err = cs.tags.ReplaceContentTags(ctx, id, params.Tags)
	} else {
		tags, err = cs.tags.GetContentTags(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &ContentResultItem{Content: content, Tags: tags}, nil
}

// GetContent retrieves a single content item with its tags.
func (cs *ContentService) GetContent(ctx context.Context, id int64) (*ContentResultItem, error) {
	content, err := cs.contents.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetContent: failed to get content with ID %d from store: %w", id, err)
	}
	tags, err := cs.tags.GetContentTags(ctx, id)
	if err != nil {
		log.WithField("content_id", id).Warnf("fetch tags: %v", err)
		tags = []*models.Tag{}
	}
	return &ContentResultItem{Content: content, Tags: tags}, nil
}

func (cs *ContentService) ListContent(ctx context.Context, params ListContentParams) ([]ContentResultItem, error) {
	if params.Limit <= 0 {
		params.Limit = defaultPageSize
	}
	if params.Status != "" {
		if err := validateStatus(params.Status); err != nil {
			return nil, err
		}
	}
	contents, err := cs.contents.ListContent(ctx, store.ContentListOptions{
		Limit:     params.Limit,
		Offset:    params.Offset,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Tags:      params.Tags,
		Category:  params.Category,
		Status:    params.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return cs.attachTagsToContents(ctx, contents), nil
}

// attachTagsToContents fetches tags for all contents in one query.
func (cs *ContentService) attachTagsToContents(ctx context.Context, contents []*models.Content) []ContentResultItem {
	ids := make([]int64, len(contents))
	for i, c := range contents {
		ids[i] = c.ID
	}
	tagMap, err := cs.tags.GetTagsForContents(ctx, ids)
	if err != nil {
		log.Warnf("fetch tags for %d contents: %v", len(ids), err)
		tagMap = map[int64][]*models.Tag{}
	}

	result := make([]ContentResultItem, len(contents))
	for i, c := range contents {
		tags := tagMap[c.ID]
		if tags == nil {
			tags = []*models.Tag{}
		}
		result[i] = ContentResultItem{Content: c, Tags: tags}
	}
	return result
}

func (cs *ContentService) DeleteContent(ctx context.Context, id int64) error {
	if err := cs.contents.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("DeleteContent: %w", err)
	}
	log.WithField("content_id", id).Info("content deleted")
	return nil
}

// Preview analyzes markup without storing anything. Taxonomy failures are
// always returned to the caller.
func (cs *ContentService) Preview(ctx context.Context, markup string) (analysis.Result, error) {
	start := time.Now()
	res, err := cs.analyzer.Analyze(ctx, markup)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, analysis.ErrTaxonomyUnavailable) {
			outcome = metrics.OutcomeTaxonomyUnavailable
		}
		metrics.ObserveAnalysis("preview", outcome, false, time.Since(start))
		return analysis.Result{}, err
	}
	metrics.ObserveAnalysis("preview", metrics.OutcomeOK, res.SuggestedCategory == analysis.Uncategorized, time.Since(start))
	return res, nil
}

// Reanalyze re-runs analysis on a stored item and writes the result back.
func (cs *ContentService) Reanalyze(ctx context.Context, id int64) (*models.Content, error) {
	content, err := cs.contents.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %d: %w", id, err)
	}
	res, err := cs.analyze(ctx, content.Body, "reanalyze")
	if err != nil {
		return nil, fmt.Errorf("analyze content %d: %w", id, err)
	}

	now := time.Now()
	if err := cs.contents.UpdateContentAnalysis(ctx, id, store.AnalysisUpdate{
		WordCount:   res.WordCount,
		ReadingTime: res.ReadingTime,
		AutoTags:    res.AutoTags,
		Category:    res.SuggestedCategory,
		AnalyzedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("store analysis for content %d: %w", id, err)
	}
	applyResult(content, res, now)

	if cs.autoApplyTags && len(res.AutoTags) > 0 {
		if _, err := cs.tags.TagContent(ctx, id, res.AutoTags); err != nil {
			log.WithField("content_id", id).Warnf("apply auto-tags: %v", err)
		}
	}
	log.WithFields(log.Fields{"content_id": id, "category": content.Category}).Debug("content re-analyzed")
	return content, nil
}

// EnqueueReanalysis schedules Reanalyze on the worker.
func (cs *ContentService) EnqueueReanalysis(ctx context.Context, id int64) error {
	if cs.jobs == nil {
		return ErrJobsDisabled
	}
	if _, err := cs.contents.GetContent(ctx, id); err != nil {
		return fmt.Errorf("get content %d: %w", id, err)
	}
	return cs.jobs.EnqueueAnalysisJob(ctx, id)
}
