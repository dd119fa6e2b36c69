// README: RabbitMQ connection for the courier notification channel.
package infra

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitConn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbit(url string) (*RabbitConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &RabbitConn{conn: conn, ch: ch}, nil
}

func (r *RabbitConn) Channel() *amqp.Channel { return r.ch }

func (r *RabbitConn) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
