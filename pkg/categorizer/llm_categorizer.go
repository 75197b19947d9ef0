package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/analysis"

	log "github.com/sirupsen/logrus"
)

// DefaultPromptTemplate is used when no prompt file is configured.
const DefaultPromptTemplate = `You classify blog posts.
Pick exactly one category from this list: {{CATEGORIES}}
Suggest up to 5 short lowercase tags.
Existing tags: {{EXISTING_TAGS}}

Title: {{TITLE}}
Body:
{{BODY}}

Answer with JSON only: {"category": "...", "tags": ["..."], "confidence": 0.0}`

// maxPromptBodyRunes bounds the body text sent to the model.
const maxPromptBodyRunes = 12000

// LLMCategorizer implements ContentCategorizer on top of a Completer. An
// answer naming a category outside the request's taxonomy is replaced by the
// fallback categorizer's result when one is set.
type LLMCategorizer struct {
	completer      Completer
	promptTemplate string
	fallback       ContentCategorizer
}

var _ ContentCategorizer = (*LLMCategorizer)(nil)

func NewLLMCategorizer(completer Completer, prompt string, fallback ContentCategorizer) *LLMCategorizer {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPromptTemplate
	}
	return &LLMCategorizer{completer: completer, promptTemplate: prompt, fallback: fallback}
}

func (c *LLMCategorizer) buildPrompt(req CategorizationRequest) string {
	names := make([]string, 0, len(req.Categories))
	for _, cat := range req.Categories {
		if cat.Name != "" {
			names = append(names, cat.Name)
		}
	}
	body := req.Body
	if r := []rune(body); len(r) > maxPromptBodyRunes {
		body = string(r[:maxPromptBodyRunes])
	}
	return strings.NewReplacer(
		"{{TITLE}}", req.Title,
		"{{BODY}}", body,
		"{{EXISTING_TAGS}}", strings.Join(req.ExistingTags, ", "),
		"{{CATEGORIES}}", strings.Join(names, ", "),
	).Replace(c.promptTemplate)
}

type llmAnswer struct {
	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
}

// parseAnswer accepts bare JSON or JSON inside a markdown code fence.
func parseAnswer(content string) (llmAnswer, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	var parsed llmAnswer
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return llmAnswer{}, fmt.Errorf("failed to parse LLM response as JSON: %w\nResponse content: %s", err, content)
	}
	return parsed, nil
}

// canonicalCategory maps name onto the taxonomy spelling, case-insensitively.
func canonicalCategory(name string, req CategorizationRequest) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, cat := range req.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat.Name, true
		}
	}
	return "", false
}

func cleanTags(tags []string) []string {
	out := analysis.NormalizeKeywords(tags)
	if len(out) > analysis.MaxAutoTags {
		out = out[:analysis.MaxAutoTags]
	}
	return out
}

func (c *LLMCategorizer) Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error) {
	if c.completer == nil {
		return CategorizationResult{}, errors.New("LLM categorizer is not initialized with a completer")
	}

	content, err := c.completer.Complete(ctx, c.buildPrompt(req))
	if err != nil {
		return CategorizationResult{}, err
	}
	parsed, err := parseAnswer(content)
	if err != nil {
		return CategorizationResult{}, err
	}

	if parsed.Confidence <= 0 || parsed.Confidence > 1 {
		parsed.Confidence = 1.0
	}

	category, ok := canonicalCategory(parsed.Category, req)
	if !ok {
		if c.fallback == nil {
			return CategorizationResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, parsed.Category)
		}
		log.WithFields(log.Fields{
			"provider": c.completer.Name(),
			"answer":   parsed.Category,
		}).Warn("LLM suggested a category outside the taxonomy, using keyword result")
		return c.fallback.Categorize(ctx, req)
	}

	return CategorizationResult{
		SuggestedTags:     cleanTags(parsed.Tags),
		SuggestedCategory: category,
		Confidence:        parsed.Confidence,
		Source:            c.completer.Name(),
	}, nil
}
