package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// SyncTrigger é o mesmo caminho do trigger manual; o scheduler é só mais um
// chamador, sem código especial.
type SyncTrigger interface {
	Execute(ctx context.Context, source string, batchSize int) (*entity.SyncJob, error)
}

// SyncScheduler dispara um sync por hora, independente do anterior ter
// terminado. Sobreposição é segura: a idempotência por registro do
// reconciler é quem protege runs concorrentes, não lock de agendamento.
type SyncScheduler struct {
	trigger   SyncTrigger
	source    string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

func NewSyncScheduler(trigger SyncTrigger, source string, batchSize int, interval time.Duration, logger *slog.Logger) *SyncScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SyncScheduler{
		trigger:   trigger,
		source:    source,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

func (s *SyncScheduler) Start(ctx context.Context) {
	s.logger.Info("sync scheduler started", "interval", s.interval, "source", s.source)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick nunca derruba o scheduler: falha de enqueue é logada e o próximo
// tick segue normal.
func (s *SyncScheduler) tick(ctx context.Context) {
	job, err := s.trigger.Execute(ctx, s.source, s.batchSize)
	if err != nil {
		s.logger.Error("scheduled sync trigger failed", "error", err)
		return
	}
	s.logger.Info("scheduled sync triggered", "job_id", job.ID, "status", job.Status)
}
