package categorizer

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock OpenAI Client ---
type mockOpenAIClient struct {
	mockResponse openai.ChatCompletionResponse
	mockError    error
	lastRequest  openai.ChatCompletionRequest
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastRequest = req
	if m.mockError != nil {
		return openai.ChatCompletionResponse{}, m.mockError
	}
	return m.mockResponse, nil
}

func respondWith(content string) *mockOpenAIClient {
	return &mockOpenAIClient{mockResponse: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}}
}

// --- End Mock OpenAI Client ---

var blogTaxonomy = []models.Category{
	{Name: "Software Development", Keywords: []string{"go", "code", "compiler"}},
	{Name: "Business", Keywords: []string{"finance", "market"}},
}

func TestLLMCategorizer_Categorize_Parsing(t *testing.T) {
	mockClient := respondWith(`{"tags": ["Go", "testing", "mock"], "category": "software development", "confidence": 0.85}`)
	categorizer := NewLLMCategorizer(NewOpenAICompleter(mockClient, "gpt-test"), "dummy prompt {{TITLE}} {{BODY}}", nil)

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		Title:      "Test Title",
		Body:       "Test Body",
		Categories: blogTaxonomy,
	})

	require.NoError(t, err, "Categorize should not return an error for valid JSON")
	assert.Equal(t, []string{"go", "testing", "mock"}, result.SuggestedTags)
	assert.Equal(t, "Software Development", result.SuggestedCategory, "category is returned in taxonomy spelling")
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, "openai", result.Source)

	require.Len(t, mockClient.lastRequest.Messages, 1)
	assert.Equal(t, "dummy prompt Test Title Test Body", mockClient.lastRequest.Messages[0].Content)
	assert.Equal(t, "gpt-test", mockClient.lastRequest.Model)
}

func TestLLMCategorizer_Categorize_CodeFence(t *testing.T) {
	mockClient := respondWith("```json\n{\"category\": \"Business\", \"tags\": [\"finance\"]}\n```")
	categorizer := NewLLMCategorizer(NewOpenAICompleter(mockClient, "gpt-test"), "", nil)

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{Body: "x", Categories: blogTaxonomy})
	require.NoError(t, err)
	assert.Equal(t, "Business", result.SuggestedCategory)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestLLMCategorizer_Categorize_InvalidJSON(t *testing.T) {
	invalidJSON := `This is just plain text, not JSON.`
	categorizer := NewLLMCategorizer(NewOpenAICompleter(respondWith(invalidJSON), "gpt-test"), "dummy prompt", nil)

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Title: "Test Title", Body: "Test Body"})

	require.Error(t, err, "Categorize should return an error for invalid JSON")
	assert.Contains(t, err.Error(), "failed to parse LLM response as JSON")
	assert.Contains(t, err.Error(), invalidJSON, "Error message should include the raw invalid content")
}

func TestLLMCategorizer_Categorize_MissingFields(t *testing.T) {
	testCases := []struct {
		name         string
		jsonResponse string
		expectedTags []string
		expectedCat  string
		expectedConf float64
	}{
		{
			name:         "Missing Tags",
			jsonResponse: `{"category": "Business", "confidence": 0.7}`,
			expectedTags: []string{},
			expectedCat:  "Business",
			expectedConf: 0.7,
		},
		{
			name:         "Missing Confidence",
			jsonResponse: `{"tags": ["finance"], "category": "Business"}`,
			expectedTags: []string{"finance"},
			expectedCat:  "Business",
			expectedConf: 1.0,
		},
		{
			name:         "Out Of Range Confidence",
			jsonResponse: `{"tags": ["finance"], "category": "Business", "confidence": 7}`,
			expectedTags: []string{"finance"},
			expectedCat:  "Business",
			expectedConf: 1.0,
		},
		{
			name:         "Too Many Tags",
			jsonResponse: `{"tags": ["a", "b", "c", "d", "e", "f", "a"], "category": "Business"}`,
			expectedTags: []string{"a", "b", "c", "d", "e"},
			expectedCat:  "Business",
			expectedConf: 1.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			categorizer := NewLLMCategorizer(NewOpenAICompleter(respondWith(tc.jsonResponse), "gpt-test"), "dummy prompt", nil)

			result, err := categorizer.Categorize(context.Background(), CategorizationRequest{Title: "Test", Body: "Test", Categories: blogTaxonomy})

			require.NoError(t, err)
			assert.Equal(t, tc.expectedTags, result.SuggestedTags)
			assert.Equal(t, tc.expectedCat, result.SuggestedCategory)
			assert.Equal(t, tc.expectedConf, result.Confidence)
		})
	}
}

func TestLLMCategorizer_Categorize_UnknownCategory(t *testing.T) {
	for _, answer := range []string{`{"category": "Cooking"}`, `{}`} {
		categorizer := NewLLMCategorizer(NewOpenAICompleter(respondWith(answer), "gpt-test"), "dummy prompt", nil)
		_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Body: "x", Categories: blogTaxonomy})
		assert.ErrorIs(t, err, ErrUnknownCategory, "answer %s", answer)
	}
}

func TestLLMCategorizer_Categorize_FallsBackToKeywords(t *testing.T) {
	fallback := NewKeywordCategorizer(nil)
	categorizer := NewLLMCategorizer(NewOpenAICompleter(respondWith(`{"category": "Cooking", "tags": ["pasta"]}`), "gpt-test"), "dummy prompt", fallback)

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{
		Body:       "The compiler turns go code into machine code.",
		Categories: blogTaxonomy,
	})
	require.NoError(t, err)
	assert.Equal(t, "Software Development", result.SuggestedCategory)
	assert.Equal(t, "keyword", result.Source)
	assert.NotContains(t, result.SuggestedTags, "pasta")
}

func TestLLMCategorizer_Categorize_APIError(t *testing.T) {
	mockErr := errors.New("simulated API error 429 Too Many Requests")
	categorizer := NewLLMCategorizer(NewOpenAICompleter(&mockOpenAIClient{mockError: mockErr}, "gpt-test"), "dummy prompt", nil)

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Title: "Test Title", Body: "Test Body"})

	require.Error(t, err)
	assert.ErrorIs(t, err, mockErr, "Returned error should wrap the original API error")
	assert.Contains(t, err.Error(), "openai chat completion failed")
}

func TestLLMCategorizer_NoChoices(t *testing.T) {
	categorizer := NewLLMCategorizer(NewOpenAICompleter(&mockOpenAIClient{}, "gpt-test"), "dummy prompt", nil)
	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Body: "x"})
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	c := NewLLMCategorizer(nil, "", nil)
	prompt := c.buildPrompt(CategorizationRequest{
		Title:        "Hello",
		Body:         "World",
		ExistingTags: []string{"a", "b"},
		Categories:   append([]models.Category{{Name: ""}}, blogTaxonomy...),
	})
	assert.Contains(t, prompt, "Pick exactly one category from this list: Software Development, Business\n")
	assert.Contains(t, prompt, "Existing tags: a, b")
	assert.Contains(t, prompt, "Title: Hello")
	assert.NotContains(t, prompt, "{{")
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"category":`), genai.Text(` "Business"}`)}}},
		},
	}
	assert.Equal(t, `{"category": "Business"}`, responseText(resp))
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
}

func TestKeywordCategorizer(t *testing.T) {
	c := NewKeywordCategorizer(nil)

	result, err := c.Categorize(context.Background(), CategorizationRequest{
		Body:       "The market moved as finance chiefs met. Finance news dominated.",
		Categories: blogTaxonomy,
	})
	require.NoError(t, err)
	assert.Equal(t, "Business", result.SuggestedCategory)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "keyword", result.Source)
	assert.Contains(t, result.SuggestedTags, "finance")

	result, err = c.Categorize(context.Background(), CategorizationRequest{Body: "Nothing relevant here.", Categories: blogTaxonomy})
	require.NoError(t, err)
	assert.Equal(t, "Uncategorized", result.SuggestedCategory)
	assert.Zero(t, result.Confidence)
}
