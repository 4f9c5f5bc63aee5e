package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// SyncJobRepository é o ledger persistido. As transições de status são
// reforçadas no próprio UPDATE (WHERE status IN ...): um UPDATE que não
// afeta linha nenhuma é uma transição inválida ou job inexistente.
type SyncJobRepository struct {
	DB *sql.DB
}

func NewSyncJobRepository(db *sql.DB) *SyncJobRepository {
	return &SyncJobRepository{DB: db}
}

func (r *SyncJobRepository) Create(ctx context.Context, job *entity.SyncJob) error {
	errorsJSON, err := json.Marshal(job.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	query := `
		INSERT INTO sync_jobs (id, status, source, batch_size, records_processed,
			records_created, records_skipped, errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.Status,
		job.Source,
		job.BatchSize,
		job.RecordsProcessed,
		job.RecordsCreated,
		job.RecordsSkipped,
		errorsJSON,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync job: %w", err)
	}
	return nil
}

func (r *SyncJobRepository) FindByID(ctx context.Context, id string) (*entity.SyncJob, error) {
	query := `
		SELECT id, status, source, batch_size, records_processed, records_created,
			records_skipped, errors, started_at, completed_at, created_at
		FROM sync_jobs
		WHERE id = $1
		LIMIT 1
	`

	job, err := scanSyncJob(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sync job: %w", err)
	}
	return job, nil
}

func (r *SyncJobRepository) FindRecent(ctx context.Context, limit int) ([]entity.SyncJob, error) {
	query := `
		SELECT id, status, source, batch_size, records_processed, records_created,
			records_skipped, errors, started_at, completed_at, created_at
		FROM sync_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []entity.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkInProgress aceita PENDING e também FAILED (reentrega da fila). Um job
// COMPLETED nunca volta a rodar.
func (r *SyncJobRepository) MarkInProgress(ctx context.Context, id string) error {
	query := `
		UPDATE sync_jobs
		SET status = $2, started_at = $3, records_processed = 0,
			records_created = 0, records_skipped = 0, errors = '[]'::jsonb,
			completed_at = NULL
		WHERE id = $1 AND status IN ($4, $5)
	`
	res, err := r.DB.ExecContext(ctx, query,
		id,
		entity.SyncStatusInProgress,
		time.Now(),
		entity.SyncStatusPending,
		entity.SyncStatusFailed,
	)
	if err != nil {
		return fmt.Errorf("mark in progress: %w", err)
	}
	return checkTransition(res)
}

func (r *SyncJobRepository) MarkCompleted(ctx context.Context, id string, stats entity.SyncRunStats) error {
	errs := stats.Errors
	if errs == nil {
		errs = []entity.SyncError{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	query := `
		UPDATE sync_jobs
		SET status = $2, completed_at = $3, records_processed = $4,
			records_created = $5, records_skipped = $6, errors = $7
		WHERE id = $1 AND status = $8
	`
	res, err := r.DB.ExecContext(ctx, query,
		id,
		entity.SyncStatusCompleted,
		time.Now(),
		stats.Processed,
		stats.Created,
		stats.Skipped,
		errorsJSON,
		entity.SyncStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return checkTransition(res)
}

func (r *SyncJobRepository) MarkFailed(ctx context.Context, id string) error {
	query := `
		UPDATE sync_jobs
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
	`
	res, err := r.DB.ExecContext(ctx, query,
		id,
		entity.SyncStatusFailed,
		time.Now(),
		entity.SyncStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return checkTransition(res)
}

func checkTransition(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}

func scanSyncJob(row rowScanner) (*entity.SyncJob, error) {
	job := &entity.SyncJob{}
	var (
		errorsJSON           []byte
		startedAt, completed sql.NullTime
	)

	err := row.Scan(
		&job.ID,
		&job.Status,
		&job.Source,
		&job.BatchSize,
		&job.RecordsProcessed,
		&job.RecordsCreated,
		&job.RecordsSkipped,
		&errorsJSON,
		&startedAt,
		&completed,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completed.Valid {
		job.CompletedAt = &completed.Time
	}
	job.Errors = []entity.SyncError{}
	if len(errorsJSON) > 0 {
		_ = json.Unmarshal(errorsJSON, &job.Errors)
	}

	return job, nil
}
