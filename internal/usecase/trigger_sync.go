package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

const (
	DefaultBatchSize = 10
	MaxBatchSize     = 50
)

// TriggerSyncUseCase cria o SyncJob PENDING e publica exatamente uma task
// referenciando ele. Retorna a linha criada na hora; quem quiser o desfecho
// consulta o job depois. O scheduler e a rota HTTP usam este mesmo caminho.
type TriggerSyncUseCase struct {
	jobs     SyncJobRepositoryInterface
	producer QueueProducerInterface
	logger   *slog.Logger
}

func NewTriggerSyncUseCase(jobs SyncJobRepositoryInterface, producer QueueProducerInterface, logger *slog.Logger) *TriggerSyncUseCase {
	return &TriggerSyncUseCase{jobs: jobs, producer: producer, logger: logger}
}

func (uc *TriggerSyncUseCase) Execute(ctx context.Context, source string, batchSize int) (*entity.SyncJob, error) {
	if source == "" {
		source = "randomuser-api"
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	job := entity.NewSyncJob(source, batchSize)
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}

	payload := SyncTaskPayload{
		JobID:     job.ID,
		Source:    source,
		BatchSize: batchSize,
	}
	if err := uc.producer.PublishSyncTask(ctx, payload); err != nil {
		return nil, fmt.Errorf("enqueue sync task: %w", err)
	}

	uc.logger.Info("sync triggered", "job_id", job.ID, "source", source, "batch_size", batchSize)
	return job, nil
}

// GetSyncJob devolve um job do ledger ou entity.ErrJobNotFound.
func (uc *TriggerSyncUseCase) GetSyncJob(ctx context.Context, id string) (*entity.SyncJob, error) {
	return uc.jobs.FindByID(ctx, id)
}

// ListRecentSyncJobs devolve os jobs mais recentes, do mais novo pro mais velho.
func (uc *TriggerSyncUseCase) ListRecentSyncJobs(ctx context.Context, limit int) ([]entity.SyncJob, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.jobs.FindRecent(ctx, limit)
}
