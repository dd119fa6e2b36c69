// README: RabbitMQ-backed notifier publishing courier offers and cancellations.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"quickcart/internal/types"
)

const offersQueue = "courier_notifications"

type offerMessage struct {
	Type       string     `json:"type"`
	Recipients []types.ID `json:"recipients"`
	Offer      *Offer     `json:"offer,omitempty"`
	OrderID    types.ID   `json:"order_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
}

type RabbitNotifier struct {
	ch *amqp.Channel
}

func NewRabbitNotifier(ch *amqp.Channel) (*RabbitNotifier, error) {
	_, err := ch.QueueDeclare(offersQueue, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &RabbitNotifier{ch: ch}, nil
}

func (n *RabbitNotifier) Offer(ctx context.Context, recipients []types.ID, offer Offer) error {
	return n.publish(ctx, offerMessage{
		Type:       "offer",
		Recipients: recipients,
		Offer:      &offer,
		OrderID:    offer.OrderID,
		SentAt:     time.Now().UTC(),
	})
}

func (n *RabbitNotifier) Cancel(ctx context.Context, recipients []types.ID, orderID types.ID, reason string) error {
	return n.publish(ctx, offerMessage{
		Type:       "cancel",
		Recipients: recipients,
		OrderID:    orderID,
		Reason:     reason,
		SentAt:     time.Now().UTC(),
	})
}

func (n *RabbitNotifier) publish(ctx context.Context, msg offerMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return n.ch.PublishWithContext(ctx, "", offersQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
