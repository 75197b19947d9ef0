// Package fakes provides an in-memory implementation of the store interfaces
// for service and handler tests.
package fakes

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/util"

	"github.com/google/uuid"
)

var (
	_ store.ContentStore  = (*Store)(nil)
	_ store.TagStore      = (*Store)(nil)
	_ store.CategoryStore = (*Store)(nil)
	_ store.JobStore      = (*Store)(nil)
)

// Store keeps every table in maps guarded by one mutex. Setting TaxonomyErr
// makes ListAll fail, as an unreachable database would; TagErr does the same
// for AddTagsToContent.
type Store struct {
	mu sync.Mutex

	TaxonomyErr error
	TagErr      error

	nextID      int64
	contents    map[int64]*models.Content
	tags        map[int64]*models.Tag
	contentTags map[int64][]int64
	categories  map[int64]*models.Category
	jobs        []*models.BackgroundJob
}

func NewStore() *Store {
	return &Store{
		contents:    map[int64]*models.Content{},
		tags:        map[int64]*models.Tag{},
		contentTags: map[int64][]int64{},
		categories:  map[int64]*models.Category{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func copyContent(c *models.Content) *models.Content {
	cp := *c
	cp.AutoTags = append([]string{}, c.AutoTags...)
	return &cp
}

func (s *Store) Ping(ctx context.Context) error { return nil }

// --- Content ---

func (s *Store) CreateContent(ctx context.Context, content *models.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if content.Status == "" {
		content.Status = models.ContentStatusDraft
	}
	if content.Metadata == nil {
		content.Metadata = json.RawMessage("{}")
	}
	if content.AutoTags == nil {
		content.AutoTags = []string{}
	}
	content.ID = s.id()
	content.CreatedAt = time.Now()
	content.UpdatedAt = content.CreatedAt
	s.contents[content.ID] = copyContent(content)
	return nil
}

func (s *Store) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyContent(c), nil
}

func (s *Store) GetContentsByIDs(ctx context.Context, ids []int64) ([]*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Content, len(ids))
	for i, id := range ids {
		if c, ok := s.contents[id]; ok {
			out[i] = copyContent(c)
		}
	}
	return out, nil
}

func (s *Store) UpdateContent(ctx context.Context, content *models.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[content.ID]; !ok {
		return store.ErrNotFound
	}
	content.UpdatedAt = time.Now()
	s.contents[content.ID] = copyContent(content)
	return nil
}

func (s *Store) UpdateContentAnalysis(ctx context.Context, id int64, update store.AnalysisUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return store.ErrNotFound
	}
	at := update.AnalyzedAt
	c.WordCount = update.WordCount
	c.ReadingTime = update.ReadingTime
	c.AutoTags = append([]string{}, update.AutoTags...)
	c.Category = update.Category
	c.AnalyzedAt = &at
	return nil
}

func (s *Store) UpdateContentCategory(ctx context.Context, id int64, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Category = category
	return nil
}

func (s *Store) DeleteContent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.contents, id)
	delete(s.contentTags, id)
	return nil
}

// ListContent filters like the SQL store and orders by id.
func (s *Store) ListContent(ctx context.Context, opts store.ContentListOptions) ([]*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.contents))
	for id := range s.contents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if strings.EqualFold(opts.SortOrder, "desc") {
		sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	}

	var out []*models.Content
	for _, id := range ids {
		c := s.contents[id]
		if opts.Category != "" && !strings.EqualFold(c.Category, opts.Category) {
			continue
		}
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		if len(opts.Tags) > 0 && !s.hasAnyTag(id, opts.Tags) {
			continue
		}
		out = append(out, copyContent(c))
	}
	if opts.Offset >= len(out) {
		return []*models.Content{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) hasAnyTag(contentID int64, names []string) bool {
	for _, tagID := range s.contentTags[contentID] {
		for _, name := range names {
			if strings.EqualFold(s.tags[tagID].Name, name) {
				return true
			}
		}
	}
	return false
}

// --- Tags ---

func (s *Store) GetOrCreateTagsByName(ctx context.Context, names []string) ([]*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Tag
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.tagByName(name))
	}
	return out, nil
}

func (s *Store) tagByName(name string) *models.Tag {
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			cp := *t
			return &cp
		}
	}
	t := &models.Tag{ID: s.id(), Name: name, Slug: util.Slugify(name), CreatedAt: time.Now()}
	s.tags[t.ID] = t
	cp := *t
	return &cp
}

func (s *Store) ListTags(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return []*models.Tag{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) AddTagsToContent(ctx context.Context, contentID int64, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TagErr != nil {
		return s.TagErr
	}
	if _, ok := s.contents[contentID]; !ok {
		return store.ErrForeignKeyViolation
	}
	for _, id := range tagIDs {
		linked := false
		for _, have := range s.contentTags[contentID] {
			if have == id {
				linked = true
				break
			}
		}
		if !linked {
			s.contentTags[contentID] = append(s.contentTags[contentID], id)
		}
	}
	return nil
}

func (s *Store) RemoveTagFromContent(ctx context.Context, contentID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.contentTags[contentID]
	for i, id := range ids {
		if id == tagID {
			s.contentTags[contentID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetContentTags(ctx context.Context, contentID int64) ([]*models.Tag, error) {
	m, err := s.GetTagsForContents(ctx, []int64{contentID})
	if err != nil {
		return nil, err
	}
	return m[contentID], nil
}

func (s *Store) GetTagsForContents(ctx context.Context, contentIDs []int64) (map[int64][]*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64][]*models.Tag, len(contentIDs))
	for _, cid := range contentIDs {
		tags := []*models.Tag{}
		for _, id := range s.contentTags[cid] {
			cp := *s.tags[id]
			tags = append(tags, &cp)
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
		out[cid] = tags
	}
	return out, nil
}

// --- Categories ---

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return store.ErrDuplicate
		}
	}
	category.ID = s.id()
	category.Slug = util.Slugify(category.Name)
	cp := *category
	cp.Keywords = append([]string{}, category.Keywords...)
	s.categories[cp.ID] = &cp
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	cp.Keywords = append([]string{}, c.Keywords...)
	return &cp, nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TaxonomyErr != nil {
		return nil, s.TaxonomyErr
	}
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		cp.Keywords = append([]string{}, c.Keywords...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateCategoryKeywords(ctx context.Context, id int64, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Keywords = append([]string{}, keywords...)
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- Jobs ---

func (s *Store) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &models.BackgroundJob{
		ID:        s.id(),
		JobID:     params.JobID,
		TaskType:  params.TaskType,
		Payload:   params.Payload,
		Queue:     params.Queue,
		Status:    params.Status,
		CreatedAt: time.Now(),
	}
	if params.RelatedEntityType != "" {
		typ, id := params.RelatedEntityType, params.RelatedEntityID
		job.RelatedEntityType, job.RelatedEntityID = &typ, &id
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.JobID == jobID {
			j.Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.BackgroundJob, 0, len(s.jobs))
	for i := len(s.jobs) - 1; i >= 0; i-- {
		cp := *s.jobs[i]
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return []*models.BackgroundJob{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// JobStatus returns the recorded status of jobID, or "" when unknown.
func (s *Store) JobStatus(jobID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.JobID == jobID {
			return j.Status
		}
	}
	return ""
}
