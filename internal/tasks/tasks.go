package tasks

// Task type constants and payloads used with Asynq.

const (
	// TypeAnalyzeContent re-runs the analysis engine on a stored content item.
	TypeAnalyzeContent = "content:analyze"
)

// AnalyzeContentPayload is the payload of TypeAnalyzeContent.
type AnalyzeContentPayload struct {
	ContentID int64 `json:"content_id"`
}
