package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/contactship-crm/internal/usecase"
)

// AlertSender avisa a operação quando uma task esgota as tentativas.
type AlertSender interface {
	SendSyncFailureAlert(jobID, source string, attempts int) error
}

// DLQWorker consome a dead-letter queue. A essa altura o ledger já está em
// FAILED (última tentativa do orquestrador); aqui só resta alertar.
type DLQWorker struct {
	Channel *amqp.Channel
	Alerts  AlertSender
	Logger  *slog.Logger
}

func NewDLQWorker(ch *amqp.Channel, alerts AlertSender, logger *slog.Logger) *DLQWorker {
	return &DLQWorker{Channel: ch, Alerts: alerts, Logger: logger}
}

func (w *DLQWorker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.Logger.Info("dlq worker waiting", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return amqp.ErrClosed
			}
			w.handleDead(d)
		}
	}
}

func (w *DLQWorker) handleDead(d amqp.Delivery) {
	var payload usecase.SyncTaskPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.Logger.Error("unreadable dead letter, dropping", "error", err)
		_ = d.Ack(false)
		return
	}

	w.Logger.Error("sync task dead-lettered",
		"job_id", payload.JobID,
		"source", payload.Source,
	)

	if w.Alerts != nil {
		if err := w.Alerts.SendSyncFailureAlert(payload.JobID, payload.Source, deliveryAttempt(d)); err != nil {
			// Falha de alerta é só log; a mensagem não volta pra fila.
			w.Logger.Error("failed to send failure alert", "job_id", payload.JobID, "error", err)
		}
	}

	_ = d.Ack(false)
}
