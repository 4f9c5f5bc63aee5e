package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/contactship-crm/internal/entity"
	"github.com/xavierca1/contactship-crm/internal/infra/http/middleware"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

// TaskHandler executa uma task de sync. É a RunSyncUseCase por trás de uma
// interface, pra manter o worker desacoplado da camada de negócio.
type TaskHandler interface {
	Execute(ctx context.Context, jobID, source string, batchSize int) (*entity.SyncRunStats, error)
}

type Worker struct {
	Channel *amqp.Channel
	Handler TaskHandler
	Logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewWorker(ch *amqp.Channel, handler TaskHandler, logger *slog.Logger) *Worker {
	return &Worker{
		Channel:  ch,
		Handler:  handler,
		Logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Start consome a fila principal até o contexto encerrar. Ack manual:
// sucesso -> Ack; falha com tentativa sobrando -> reenfileira na fila de
// espera e Ack; falha na última tentativa -> Nack sem requeue (vai pra DLQ).
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	w.Logger.Info("sync worker waiting for tasks", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("sync worker stopping")
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return amqp.ErrClosed
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var payload usecase.SyncTaskPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.Logger.Error("invalid task payload, dropping", "error", err)
		// Mensagem podre: rejeita sem requeue pra não travar a fila.
		_ = d.Nack(false, false)
		return
	}

	// Duas entregas simultâneas do mesmo job (at-least-once) não devem
	// rodar em paralelo; a cópia redundante é descartada.
	if !w.claim(payload.JobID) {
		w.Logger.Warn("duplicate delivery for running job, dropping", "job_id", payload.JobID)
		_ = d.Ack(false)
		return
	}
	defer w.release(payload.JobID)

	attempt := deliveryAttempt(d)
	log := w.Logger.With("job_id", payload.JobID, "attempt", attempt)
	log.Info("sync task received", "source", payload.Source)

	stats, err := w.Handler.Execute(ctx, payload.JobID, payload.Source, payload.BatchSize)
	if err == nil {
		middleware.RecordSyncCompleted(entity.SyncStatusCompleted)
		middleware.RecordSyncRecords("created", stats.Created)
		middleware.RecordSyncRecords("skipped", stats.Skipped)
		middleware.RecordSyncRecords("error", len(stats.Errors))
		_ = d.Ack(false)
		return
	}

	log.Error("sync task failed", "error", err)
	middleware.RecordSyncCompleted(entity.SyncStatusFailed)

	if attempt >= MaxAttempts {
		log.Error("retries exhausted, dead-lettering task")
		_ = d.Nack(false, false)
		return
	}

	if perr := publishRetry(ctx, w.Channel, d, attempt+1); perr != nil {
		log.Error("failed to schedule retry, requeueing", "error", perr)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) claim(jobID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inflight[jobID]; busy {
		return false
	}
	w.inflight[jobID] = struct{}{}
	return true
}

func (w *Worker) release(jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, jobID)
}

func deliveryAttempt(d amqp.Delivery) int {
	if v, ok := d.Headers[attemptHeader]; ok {
		switch n := v.(type) {
		case int32:
			return int(n)
		case int64:
			return int(n)
		case int:
			return n
		}
	}
	return 1
}
