// Package rabbitmq concentra a conexão com o RabbitMQ, a declaração da
// topologia de filas de notificação e a publicação de mensagens JSON.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect abre a conexão com o broker, repetindo a tentativa
// retries vezes com o intervalo delay entre elas.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel abre um canal, declara o exchange de notificações
// e liga cada fila configurada à sua routing key.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		"notifications", // exchange
		"direct",        // tipo
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			"notifications",
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
