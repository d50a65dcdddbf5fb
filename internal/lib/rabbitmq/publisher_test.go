package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatize/funnel-tracker/internal/models"
)

func TestPublishMessage(t *testing.T) {
	ctx := context.Background()
	rmqContainer, cleanup := SetupRabbitMQContainer(ctx, t)
	defer cleanup()

	amqpURI, err := GetAmqpURI(ctx, rmqContainer)
	require.NoError(t, err)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	queueName := "publish-test"
	_, err = ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	t.Run("success publish and consume", func(t *testing.T) {
		msg := models.TrialExpiredNotice{
			UserUID:      "550e8400-e29b-41d4-a716-446655440000",
			ProductSlug:  "bots-automacao",
			ProductTitle: "Bots de Automação",
			ExpiredAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}

		err = PublishMessage(ch, "", queueName, msg)
		require.NoError(t, err)

		deliveries, err := ch.Consume(queueName, "test-consumer", true, false, false, false, nil)
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			var got models.TrialExpiredNotice
			err := json.Unmarshal(d.Body, &got)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
			assert.Equal(t, "application/json", d.ContentType)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	})

	t.Run("marshal error", func(t *testing.T) {
		// Canais não são serializáveis em JSON
		badMsg := struct {
			Ch chan int `json:"ch"`
		}{
			Ch: make(chan int),
		}

		err := PublishMessage(ch, "", queueName, badMsg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
	})
}

func TestPublishMessage_ToExchangeWithRoutingKey(t *testing.T) {
	ctx := context.Background()
	rmqContainer, cleanup := SetupRabbitMQContainer(ctx, t)
	defer cleanup()

	amqpURI, err := GetAmqpURI(ctx, rmqContainer)
	require.NoError(t, err)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	exchangeName := "notifications"
	err = ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil)
	require.NoError(t, err)

	queueName := "notification.trial-expired"
	_, err = ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	routingKey := "trial-expired"
	err = ch.QueueBind(queueName, routingKey, exchangeName, false, nil)
	require.NoError(t, err)

	msg := map[string]any{"product_slug": "bots-automacao"}

	err = PublishMessage(ch, exchangeName, routingKey, msg)
	require.NoError(t, err)

	deliveries, err := ch.Consume(queueName, "test-consumer2", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got map[string]any
		err := json.Unmarshal(d.Body, &got)
		require.NoError(t, err)
		assert.Equal(t, msg["product_slug"], got["product_slug"])
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}
