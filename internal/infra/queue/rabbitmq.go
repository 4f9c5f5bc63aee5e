package queue

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.sync"
	QueueName    = "q.sync.tasks"
	DLQName      = "q.sync.dlq"
	DLXName      = "ex.sync.dlx" // Dead Letter Exchange
	RoutingKey   = "k.sync"

	// Filas de espera do retry: a mensagem expira e volta pra fila
	// principal via DLX. Backoff exponencial a partir de 2s.
	retryQueue1 = "q.sync.retry.2s"
	retryQueue2 = "q.sync.retry.4s"

	// Total de entregas por task (1 original + 2 retries).
	MaxAttempts = 3

	BaseBackoff = 2 * time.Second
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	if err = ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return err
	}

	err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	// Nack sem requeue manda direto pra DLQ
	mainArgs := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	_, err = ch.QueueDeclare(QueueName, true, false, false, false, mainArgs)
	if err != nil {
		return err
	}

	if err = ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return err
	}

	// Filas de espera: TTL fixo, dead-letter de volta pra fila principal
	for i, name := range []string{retryQueue1, retryQueue2} {
		ttl := BaseBackoff << i // 2s, 4s
		waitArgs := amqp.Table{
			"x-dead-letter-exchange":    ExchangeName,
			"x-dead-letter-routing-key": RoutingKey,
			"x-message-ttl":             ttl.Milliseconds(),
		}
		if _, err = ch.QueueDeclare(name, true, false, false, false, waitArgs); err != nil {
			return err
		}
	}

	return nil
}

// RetryQueueFor devolve a fila de espera da próxima tentativa (attempt é a
// tentativa que acabou de falhar, começando em 1).
func RetryQueueFor(attempt int) string {
	if attempt <= 1 {
		return retryQueue1
	}
	return retryQueue2
}
