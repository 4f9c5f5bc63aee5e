package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/contactship-crm/internal/usecase"
)

const attemptHeader = "x-attempt"

type SyncProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *SyncProducer {
	return &SyncProducer{
		Conn: conn,
		Ch:   ch,
	}
}

// PublishSyncTask publica a task com MessageId = id do job (chave de
// idempotência: duas entregas do mesmo job são detectáveis no consumidor).
func (p *SyncProducer) PublishSyncTask(ctx context.Context, payload usecase.SyncTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			MessageId:    payload.JobID,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
			Headers:      amqp.Table{attemptHeader: int32(1)},
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}

// publishRetry reenfileira a task na fila de espera; ela volta pra fila
// principal quando o TTL expira.
func publishRetry(ctx context.Context, ch *amqp.Channel, d amqp.Delivery, nextAttempt int) error {
	return ch.PublishWithContext(ctx,
		"", // default exchange: direto na fila de espera
		RetryQueueFor(nextAttempt-1),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         d.Body,
			MessageId:    d.MessageId,
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{attemptHeader: int32(nextAttempt)},
		},
	)
}
