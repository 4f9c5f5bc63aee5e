package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// RunSyncUseCase executa uma task de sync de ponta a ponta e garante que o
// ledger sempre reflete o desfecho. O SyncJob PENDING já existe antes do
// enqueue; esta usecase nunca cria job novo.
type RunSyncUseCase struct {
	jobs     SyncJobRepositoryInterface
	adapters map[string]SourceAdapter
	recon    *Reconciler
	logger   *slog.Logger
}

func NewRunSyncUseCase(
	jobs SyncJobRepositoryInterface,
	adapters map[string]SourceAdapter,
	recon *Reconciler,
	logger *slog.Logger,
) *RunSyncUseCase {
	return &RunSyncUseCase{
		jobs:     jobs,
		adapters: adapters,
		recon:    recon,
		logger:   logger,
	}
}

// Execute roda uma tentativa. Erros de fetch (adapter) falham a task inteira
// e sobem para a fila decidir retry; erros por registro viram entradas no
// ledger e não abortam o lote. Cada tentativa começa com contadores zerados.
func (uc *RunSyncUseCase) Execute(ctx context.Context, jobID, source string, batchSize int) (*entity.SyncRunStats, error) {
	log := uc.logger.With("job_id", jobID, "source", source)

	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil || job == nil {
		return nil, &JobNotFoundError{JobID: jobID}
	}

	// IN_PROGRESS antes de qualquer fetch, para observadores distinguirem
	// "na fila" de "rodando". Reentrega após FAILED também passa por aqui.
	if err := uc.jobs.MarkInProgress(ctx, jobID); err != nil {
		return nil, fmt.Errorf("mark in progress: %w", err)
	}

	log.Info("sync task started", "batch_size", batchSize)

	stats := &entity.SyncRunStats{}

	adapter, ok := uc.adapters[source]
	if !ok {
		// Fonte desconhecida completa vazia, igual ao trigger manual com
		// source inválido: nada a buscar, nada a reconciliar.
		log.Warn("unknown sync source, completing with empty batch")
		if err := uc.jobs.MarkCompleted(ctx, jobID, *stats); err != nil {
			return nil, fmt.Errorf("mark completed: %w", err)
		}
		return stats, nil
	}

	candidates, err := adapter.FetchBatch(ctx, batchSize)
	if err != nil {
		log.Error("batch fetch failed", "error", err)
		if ferr := uc.jobs.MarkFailed(ctx, jobID); ferr != nil {
			log.Error("failed to mark job FAILED", "error", ferr)
		}
		return nil, fmt.Errorf("fetch batch from %s: %w", source, err)
	}

	for _, c := range candidates {
		stats.Processed++

		outcome := uc.recon.Reconcile(ctx, c)
		switch outcome.Result {
		case ReconcileCreated:
			stats.Created++
			log.Info("record created", "email", c.Email)
		case ReconcileSkipped:
			stats.Skipped++
			log.Info("record skipped", "email", c.Email)
		case ReconcileErrored:
			stats.RecordError(c.Email, outcome.Message)
			log.Error("record failed", "email", c.Email, "error", outcome.Message)
		}
	}

	if err := uc.jobs.MarkCompleted(ctx, jobID, *stats); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	log.Info("sync task completed",
		"processed", stats.Processed,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors),
	)

	return stats, nil
}

// IsJobNotFound reporta se o erro é o caso fatal de ledger ausente.
func IsJobNotFound(err error) bool {
	var jnf *JobNotFoundError
	return errors.As(err, &jnf)
}
