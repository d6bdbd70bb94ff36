package skin

import (
	"SkinLens/pkg/skinmetric"
	"time"
)

type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

type AnalysisResponse struct {
	ID        string            `json:"id,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Report    skinmetric.Report `json:"report"`
}

// CachedAnalysis is the stored record kept in Redis. Reports are derived from
// RawResult on every read; the owner travels with it so a cache hit can still
// be authorized.
type CachedAnalysis struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	RawResult []byte    `json:"raw_result"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryItem struct {
	ID           string    `json:"id"`
	ImageURL     string    `json:"image_url,omitempty"`
	AgingScore   float64   `json:"aging_score"`
	AgingStatus  string    `json:"aging_status"`
	Wrinkles     int       `json:"wrinkles"`
	Pigmentation int       `json:"pigmentation"`
	Dryness      int       `json:"dryness"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryListResponse struct {
	Analyses []HistoryItem `json:"analyses"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

type PersonalAdviceResponse struct {
	AnalysisID string                  `json:"analysis_id"`
	Advice     string                  `json:"advice"`
	Cards      []skinmetric.AdviceCard `json:"cards"`
}

type FrameErrorResponse struct {
	Error string `json:"error"`
}
