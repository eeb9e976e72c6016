package model

import "time"

// RunStatus tracks a search run through its lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one search-and-enrich execution.
type Run struct {
	ID            string      `json:"id"`
	Query         SearchQuery `json:"query"`
	Status        RunStatus   `json:"status"`
	FacilityCount int         `json:"facility_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Lead is one enriched facility persisted under a run.
type Lead struct {
	ID              string      `json:"id"`
	RunID           string      `json:"run_id"`
	Facility        Facility    `json:"facility"`
	SourcesUsed     []string    `json:"sources_used"`
	ConfidenceScore float64     `json:"confidence_score"`
	QualityTier     QualityTier `json:"quality_tier"`
	CreatedAt       time.Time   `json:"created_at"`
}
