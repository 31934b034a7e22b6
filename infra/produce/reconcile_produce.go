package produce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ReconcileQueue      = "reconcile.trigger"
	ReconcileExchange   = "reconcile.exchange"
	ReconcileRoutingKey = "reconcile.trigger"
)

// TriggerPublisher nudges the reconciliation worker after a partial
// cross-store failure so the stale intent gets swept promptly instead of
// waiting for the periodic pass.
type TriggerPublisher interface {
	PublishReconcileTrigger(ctx context.Context, taskID uuid.UUID) error
}

// ReconcileTriggerMessage carries the intent-log row to re-examine.
type ReconcileTriggerMessage struct {
	TaskID    string `json:"task_id"`
	Timestamp int64  `json:"timestamp"`
}

type ReconcileService struct {
	channel *amqp.Channel
}

func InitReconcileService(channel *amqp.Channel) *ReconcileService {
	service := &ReconcileService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		ReconcileExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Reconcile exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ReconcileQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Reconcile queue: " + err.Error())
	}

	err = channel.QueueBind(
		ReconcileQueue,
		ReconcileRoutingKey,
		ReconcileExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Reconcile queue: " + err.Error())
	}

	return service
}

func (s *ReconcileService) PublishReconcileTrigger(ctx context.Context, taskID uuid.UUID) error {
	msg := ReconcileTriggerMessage{
		TaskID:    taskID.String(),
		Timestamp: time.Now().Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		ReconcileExchange,
		ReconcileRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
