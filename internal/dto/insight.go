package dto

// StudyPlanRequest captures POST /ai/study-plan payload.
type StudyPlanRequest struct {
	Topic string `json:"topic"`
}

// InsightResponse carries generated text and the model that produced it.
type InsightResponse struct {
	Text      string          `json:"text"`
	Model     string          `json:"model"`
	Fallbacks []ModelFallback `json:"fallbacks,omitempty"`
}

// ModelFallback describes a model attempt that failed before the successful one.
type ModelFallback struct {
	ModelID string `json:"modelId"`
	Message string `json:"message"`
}
