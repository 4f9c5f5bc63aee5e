package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status de um SyncJob. Transições: PENDING -> IN_PROGRESS -> {COMPLETED | FAILED}.
// FAILED volta para IN_PROGRESS apenas quando a fila reentrega a task.
const (
	SyncStatusPending    = "PENDING"
	SyncStatusInProgress = "IN_PROGRESS"
	SyncStatusCompleted  = "COMPLETED"
	SyncStatusFailed     = "FAILED"
)

type SyncError struct {
	RecordKey string `json:"record_key"`
	Message   string `json:"message"`
}

type SyncJob struct {
	ID               string      `json:"id"`
	Status           string      `json:"status"`
	Source           string      `json:"source"`
	BatchSize        int         `json:"batch_size"`
	RecordsProcessed int         `json:"records_processed"`
	RecordsCreated   int         `json:"records_created"`
	RecordsSkipped   int         `json:"records_skipped"`
	Errors           []SyncError `json:"errors"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// SyncRunStats acumula o resultado de uma tentativa de sync. Cada tentativa
// começa com contadores zerados; só a tentativa final persiste no ledger.
type SyncRunStats struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []SyncError
}

func (s *SyncRunStats) RecordError(key, message string) {
	s.Errors = append(s.Errors, SyncError{RecordKey: key, Message: message})
}

func NewSyncJob(source string, batchSize int) *SyncJob {
	return &SyncJob{
		ID:        uuid.New().String(),
		Status:    SyncStatusPending,
		Source:    source,
		BatchSize: batchSize,
		Errors:    []SyncError{},
		CreatedAt: time.Now(),
	}
}

// CanTransition valida a máquina de estados do ledger. A única reentrada
// permitida é FAILED -> IN_PROGRESS (reentrega da fila). COMPLETED é final.
func CanTransition(from, to string) bool {
	switch from {
	case SyncStatusPending:
		return to == SyncStatusInProgress
	case SyncStatusInProgress:
		return to == SyncStatusCompleted || to == SyncStatusFailed
	case SyncStatusFailed:
		return to == SyncStatusInProgress
	default:
		return false
	}
}

func (j *SyncJob) IsTerminal() bool {
	return j.Status == SyncStatusCompleted || j.Status == SyncStatusFailed
}
