package apihandlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/analysis"
	"inkwell/internal/apihandlers"
	"inkwell/internal/app"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/tests/fakes"
	"inkwell/pkg/categorizer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app.App, *fakes.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := fakes.NewStore()
	cfg := &config.Config{}
	analyzer := analysis.NewAnalyzer(analysis.AnalyzerDeps{Taxonomy: st})
	tags := services.NewTagService(st)
	a := &app.App{
		Config:          cfg,
		ContentStore:    st,
		TagStore:        st,
		CategoryStore:   st,
		JobStore:        st,
		JobClient:       services.NoopJobClient{},
		Analyzer:        analyzer,
		TagService:      tags,
		TaxonomyService: services.NewTaxonomyService(st),
		JobService:      services.NewJobService(st),
		ContentService: services.NewContentService(services.ContentServiceDeps{
			ContentStore: st,
			TagService:   tags,
			JobClient:    services.NoopJobClient{},
			Analyzer:     analyzer,
			Config:       cfg,
		}),
	}
	a.CategorizationService = services.NewCategorizationService(categorizer.NewKeywordCategorizer(analyzer), tags, st, st)
	return a, st
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error envelope: %s", w.Body.String())
	return errObj["code"].(string)
}

func seedCategories(t *testing.T, router http.Handler) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/categories", gin.H{"name": "Software Development", "keywords": []string{"go", "code"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/api/v1/categories", gin.H{"name": "Business", "keywords": []string{"market"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestContentLifecycle(t *testing.T) {
	a, _ := newTestApp(t)
	router := apihandlers.NewRouter(a)
	seedCategories(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/content", gin.H{
		"title": "Go notes",
		"body":  "Writing go code every day. More go code.",
		"tags":  []string{"notes"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	content := data["content"].(map[string]interface{})
	assert.Equal(t, "Software Development", content["category"])
	assert.Equal(t, "draft", content["status"])
	id := int64(content["id"].(float64))
	path := "/api/v1/content/" + jsonNumber(id)

	w = do(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode(t, w)["data"].(map[string]interface{})["tags"].([]interface{})
	require.Len(t, tags, 1)

	w = do(t, router, http.MethodPatch, path, gin.H{"body": "The market is up."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	content = decode(t, w)["data"].(map[string]interface{})["content"].(map[string]interface{})
	assert.Equal(t, "Business", content["category"])

	w = do(t, router, http.MethodPut, path+"/tags", gin.H{"tags": []string{"markets", "daily"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["data"], 2)

	w = do(t, router, http.MethodGet, "/api/v1/content?category=Business", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = do(t, router, http.MethodPost, path+"/reanalyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, path+"/reanalyze?async=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service_unavailable", errorCode(t, w))

	w = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestCreateContent_BadRequests(t *testing.T) {
	a, _ := newTestApp(t)
	router := apihandlers.NewRouter(a)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing body", gin.H{"title": "x"}},
		{"unknown status", gin.H{"title": "x", "body": "y", "status": "gone"}},
		{"blank title", gin.H{"title": "   ", "body": "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/content", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "bad_request", errorCode(t, w))
		})
	}

	w := do(t, router, http.MethodGet, "/api/v1/content/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/content?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzePreview(t *testing.T) {
	a, st := newTestApp(t)
	router := apihandlers.NewRouter(a)
	seedCategories(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"body": "The market opened. The market closed."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Business", data["suggested_category"])
	assert.Equal(t, float64(6), data["word_count"])
	assert.Equal(t, float64(1), data["reading_time"])
	assert.Equal(t, "market", data["auto_tags"].([]interface{})[0])

	w = do(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"body": ""})
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, analysis.Uncategorized, data["suggested_category"])
	assert.Equal(t, []interface{}{}, data["auto_tags"])

	st.TaxonomyErr = errors.New("db down")
	w = do(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"body": "The market."})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCategories(t *testing.T) {
	a, _ := newTestApp(t)
	router := apihandlers.NewRouter(a)
	seedCategories(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/categories", gin.H{"name": "business"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/categories", gin.H{"name": "Food", "keywords": []string{"street food"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Software Development", first["name"])
	path := "/api/v1/categories/" + jsonNumber(int64(first["id"].(float64)))

	w = do(t, router, http.MethodPut, path+"/keywords", gin.H{"keywords": []string{"Rust", "rust"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"rust"}, decode(t, w)["data"].(map[string]interface{})["keywords"])

	w = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategorizeContent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a, st := newTestApp(t)
	router := apihandlers.NewRouter(a)
	seedCategories(t, router)

	c := &models.Content{Title: "t", Body: "The market and more market news.", Category: analysis.Uncategorized}
	require.NoError(t, st.CreateContent(ctx, c))
	path := "/api/v1/content/" + jsonNumber(c.ID) + "/categorize"

	w := do(t, router, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Business", body["category"])
	assert.Equal(t, false, body["applied"])
	stored, err := st.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.Uncategorized, stored.Category)

	w = do(t, router, http.MethodPost, path+"?apply=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored, err = st.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Business", stored.Category)

	w = do(t, router, http.MethodPost, "/api/v1/categorize/batch", gin.H{"content_ids": []int64{c.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	results := decode(t, w)["results"].(map[string]interface{})
	assert.Contains(t, results, jsonNumber(c.ID))
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	a, _ := newTestApp(t)
	router := apihandlers.NewRouter(a)

	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	// Run one analysis so the histogram has a sample.
	do(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"body": "hello"})
	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "inkwell_analysis_total"))
}

func TestTagsAndJobs(t *testing.T) {
	a, _ := newTestApp(t)
	router := apihandlers.NewRouter(a)

	w := do(t, router, http.MethodPost, "/api/v1/content", gin.H{"title": "t", "body": "b", "tags": []string{"beta", "alpha"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].(map[string]interface{})["name"])

	w = do(t, router, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])
}
