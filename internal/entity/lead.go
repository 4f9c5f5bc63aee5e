package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	LeadSourceManual      = "MANUAL"
	LeadSourceExternalAPI = "EXTERNAL_API"
)

const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusConverted = "CONVERTED"
)

// Lead referencia exatamente uma Person. A chave natural de dedup é o email
// (unique no banco) — tanto o sync quanto o CRUD manual respeitam isso.
type Lead struct {
	ID                 string         `json:"id"`
	PersonID           string         `json:"person_id"`
	ExternalID         string         `json:"external_id,omitempty"`
	Email              string         `json:"email"`
	Source             string         `json:"source"`
	Status             string         `json:"status"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	SyncedAt           *time.Time     `json:"synced_at,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	NextAction         string         `json:"next_action,omitempty"`
	SummaryGeneratedAt *time.Time     `json:"summary_generated_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	// Preenchido nos reads com join
	Person *Person `json:"person,omitempty"`
}

// Factory
func NewLead(personID, email, externalID, source string) (*Lead, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	if personID == "" {
		return nil, errors.New("person id is required")
	}
	now := time.Now()
	return &Lead{
		ID:         uuid.New().String(),
		PersonID:   personID,
		Email:      email,
		ExternalID: externalID,
		Source:     source,
		Status:     LeadStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
