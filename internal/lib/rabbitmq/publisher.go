package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// PublishMessage publica uma mensagem JSON persistente no exchange informado.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
