package apihandlers

import (
	"fmt"
	"net/http"
	"strconv"

	"inkwell/internal/app"
	"inkwell/internal/clix"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(app *app.App) *APIHandler {
	return &APIHandler{App: app}
}

// CreateContentRequest represents the JSON body to add new content
type CreateContentRequest struct {
	Title    string                 `json:"title" binding:"required"`
	Body     string                 `json:"body" binding:"required"`
	Status   string                 `json:"status"`
	Tags     []string               `json:"tags"`
	Metadata map[string]interface{} `json:"metadata"`
}

// UpdateContentRequest is a partial update; absent fields are left unchanged.
type UpdateContentRequest struct {
	Title    *string                `json:"title"`
	Body     *string                `json:"body"`
	Status   *string                `json:"status"`
	Tags     []string               `json:"tags"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AnalyzeRequest struct {
	Body string `json:"body"`
}

type CreateCategoryRequest struct {
	Name     string   `json:"name" binding:"required"`
	Keywords []string `json:"keywords"`
	Position int      `json:"position"`
}

type KeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

type TagsRequest struct {
	Tags []string `json:"tags"`
}

type BatchCategorizeRequest struct {
	ContentIDs []int64 `json:"content_ids" binding:"required"`
}

// --- Content ---

func (h *APIHandler) CreateContentHandler(c *gin.Context) {
	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.App.ContentService.CreateContent(c.Request.Context(), services.CreateContentParams{
		Title:    req.Title,
		Body:     req.Body,
		Status:   req.Status,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *APIHandler) ListContentHandler(c *gin.Context) {
	params, err := parseListContentParams(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	items, err := h.App.ContentService.ListContent(c.Request.Context(), params)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// parseListContentParams parses and validates query parameters for listing content.
func parseListContentParams(c *gin.Context) (services.ListContentParams, error) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return services.ListContentParams{}, err
	}
	return services.ListContentParams{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Tags:      clix.SplitList(c.Query("tags")),
		Category:  c.Query("category"),
		Status:    c.Query("status"),
	}, nil
}

func parsePagination(c *gin.Context) (limit, offset int, err error) {
	limit = 20
	if l := c.Query("limit"); l != "" {
		parsed, convErr := strconv.Atoi(l)
		if convErr != nil || parsed <= 0 || parsed > 100 {
			return 0, 0, fmt.Errorf("invalid limit: %s", l)
		}
		limit = parsed
	}
	if o := c.Query("offset"); o != "" {
		parsed, convErr := strconv.Atoi(o)
		if convErr != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", o)
		}
		offset = parsed
	}
	return limit, offset, nil
}

// GetContentHandler handles GET requests for a single content item by ID.
func (h *APIHandler) GetContentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.App.ContentService.GetContent(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *APIHandler) UpdateContentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.App.ContentService.UpdateContent(c.Request.Context(), id, services.UpdateContentParams{
		Title:    req.Title,
		Body:     req.Body,
		Status:   req.Status,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *APIHandler) DeleteContentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.App.ContentService.DeleteContent(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReanalyzeContentHandler re-runs analysis inline, or on the worker with ?async=true.
func (h *APIHandler) ReanalyzeContentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		if err := h.App.ContentService.EnqueueReanalysis(ctx, id); err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"content_id": id, "status": "enqueued"})
		return
	}

	content, err := h.App.ContentService.Reanalyze(ctx, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": content})
}

func (h *APIHandler) ReplaceContentTagsHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	item, err := h.App.ContentService.UpdateContent(c.Request.Context(), id, services.UpdateContentParams{Tags: req.Tags})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item.Tags})
}

// --- Analysis & categorization ---

// AnalyzeHandler previews the analysis of a body without storing it.
func (h *APIHandler) AnalyzeHandler(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	res, err := h.App.ContentService.Preview(c.Request.Context(), req.Body)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// CategorizeContentHandler suggests a category and tags for stored content.
// With ?apply=true the suggestion is written back.
func (h *APIHandler) CategorizeContentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	cats, err := h.App.CategorizationService.CategorizeStoredContent(ctx, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	apply, _ := strconv.ParseBool(c.Query("apply"))
	if err := h.App.CategorizationService.ApplyCategories(ctx, id, cats, apply); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_id": id,
		"tags":       cats.Tags,
		"category":   cats.Category,
		"confidence": cats.Confidence,
		"source":     cats.Source,
		"applied":    apply,
	})
}

func (h *APIHandler) BatchCategorizeHandler(c *gin.Context) {
	var req BatchCategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(req.ContentIDs) == 0 {
		BadRequest(c, "no content IDs provided")
		return
	}

	resultsMap, err := h.App.CategorizationService.BatchCategorize(c.Request.Context(), req.ContentIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	resp := make(map[string]*services.ContentWithCategories, len(resultsMap))
	for id, cats := range resultsMap {
		resp[strconv.FormatInt(id, 10)] = cats
	}
	c.JSON(http.StatusOK, gin.H{"results": resp})
}

// --- Taxonomy ---

func (h *APIHandler) ListCategoriesHandler(c *gin.Context) {
	cats, err := h.App.TaxonomyService.ListCategories(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cats})
}

func (h *APIHandler) CreateCategoryHandler(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	cat, err := h.App.TaxonomyService.CreateCategory(c.Request.Context(), services.CreateCategoryParams{
		Name:     req.Name,
		Keywords: req.Keywords,
		Position: req.Position,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": cat})
}

func (h *APIHandler) GetCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.App.TaxonomyService.GetCategory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cat})
}

func (h *APIHandler) ReplaceKeywordsHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req KeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	cat, err := h.App.TaxonomyService.ReplaceKeywords(c.Request.Context(), id, req.Keywords)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cat})
}

func (h *APIHandler) DeleteCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.App.TaxonomyService.DeleteCategory(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tags & jobs ---

func (h *APIHandler) ListTagsHandler(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	tags, err := h.App.TagService.ListTags(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tags})
}

func (h *APIHandler) ListJobsHandler(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	jobs, err := h.App.JobService.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

// HealthHandler pings the primary store.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	if err := h.App.ContentStore.Ping(c.Request.Context()); err != nil {
		log.WithField("request_id", c.GetString(requestIDKey)).Warnf("health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID parses the :id path parameter, writing a 400 when it is invalid.
func pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, fmt.Sprintf("Invalid ID format: %s", idStr))
		return 0, false
	}
	return id, true
}
