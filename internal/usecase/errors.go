package usecase

import (
	"fmt"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// JobNotFoundError é fatal para a task: o orquestrador não retenta por conta
// própria; quem decide reentrega é a política da fila.
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("sync job %s not found", e.JobID)
}

func (e *JobNotFoundError) Unwrap() error {
	return entity.ErrJobNotFound
}
