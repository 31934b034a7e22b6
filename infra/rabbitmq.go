package infra

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tranqh/photokeep/config"
)

type RabbitMQClient struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

func InitRabbitMQClient(cfg *config.EnvConfig) *RabbitMQClient {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQ.Username, cfg.RabbitMQ.Password,
		cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)

	conn, err := amqp.Dial(url)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		panic(fmt.Sprintf("Failed to open RabbitMQ channel: %v", err))
	}

	return &RabbitMQClient{
		Connection: conn,
		Channel:    channel,
	}
}

func (r *RabbitMQClient) Close() {
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Connection != nil {
		_ = r.Connection.Close()
	}
}
