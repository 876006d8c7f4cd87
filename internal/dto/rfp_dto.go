package dto

type ExtractRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	TemplateType string `json:"template_type"`
	Query        string `json:"query"`
}

type ExtractResponse struct {
	SessionID    string                 `json:"session_id"`
	TemplateType string                 `json:"template_type"`
	Cached       bool                   `json:"cached"`
	Data         map[string]interface{} `json:"data"`
}

type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionID string       `json:"session_id"`
	Answer    string       `json:"answer"`
	Sources   []ChatSource `json:"sources"`
}

type ChatSource struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

type CompareIndexesRequest struct {
	SessionID      string `json:"session_id" validate:"required"`
	ReferenceIndex string `json:"reference_index"`
}

type CompareIndexesResponse struct {
	SessionID      string  `json:"session_id"`
	ReferenceIndex string  `json:"reference_index"`
	AverageScore   float64 `json:"average_score"`
	MatchCount     int     `json:"match_count"`
}

type AnalyzeRequest struct {
	SessionID string   `json:"session_id" validate:"required"`
	Questions []string `json:"questions"`
}
