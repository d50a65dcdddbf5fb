package rabbitmq

// QueueConfig associa uma fila à sua routing key no exchange de notificações.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues retorna a topologia de filas consumidas pelos
// relays de notificação (hoje, o aviso de trial expirado enviado ao
// worker de WhatsApp).
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.trial-expired", RoutingKey: "trial-expired"},
	}
}
