package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Generation status values
const (
	GenerationCompleted = "completed"
	GenerationDraft     = "draft"
	GenerationArchived  = "archived"
)

// Generation is the persisted snapshot of one complete workflow run. The
// resume, job and scoring sub-objects are stored verbatim as jsonb blobs so
// a saved run can be reopened exactly as it was at save time. Rows are only
// ever created by an explicit user save; repeated saves create new rows.
type Generation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4();->" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobTitle         string          `gorm:"type:text" json:"job_title"`
	CompanyName      string          `gorm:"type:text" json:"company_name"`
	OverallScore     *int            `json:"overall_score"`
	CoverLetterText  string          `gorm:"type:text" json:"cover_letter_text"`
	ScoringResults   json.RawMessage `gorm:"type:jsonb" json:"scoring_results"`
	ResumeData       json.RawMessage `gorm:"type:jsonb" json:"resume_data"`
	JobData          json.RawMessage `gorm:"type:jsonb" json:"job_data"`
	Title            *string         `gorm:"type:text" json:"title"`
	Status           string          `gorm:"type:text;not null;default:completed" json:"status"`
	SimilarPositions pq.StringArray  `gorm:"type:text[]" json:"similar_positions"`
}

// GenerationSummary is the dashboard row: everything needed to list a saved
// generation without shipping the jsonb blobs.
type GenerationSummary struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	JobTitle     string    `json:"job_title"`
	CompanyName  string    `json:"company_name"`
	OverallScore *int      `json:"overall_score"`
	Title        *string   `json:"title"`
	Status       string    `json:"status"`
}

// Summary projects a Generation onto its dashboard row.
func (g *Generation) Summary() GenerationSummary {
	return GenerationSummary{
		ID:           g.ID,
		CreatedAt:    g.CreatedAt,
		JobTitle:     g.JobTitle,
		CompanyName:  g.CompanyName,
		OverallScore: g.OverallScore,
		Title:        g.Title,
		Status:       g.Status,
	}
}
