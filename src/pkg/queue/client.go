package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Publisher is the part of the client the HTTP server needs.
type Publisher interface {
	Publish(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error)
}

// Handler processes one export request. An error requeues the message.
type Handler func(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error)

// Client talks to one durable queue bound to a direct exchange.
type Client struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	exchangeName   string
	queueName      string
	publishTimeout time.Duration
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(cfg Config) (client *Client, e *xerr.Error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		e = xerr.NewError(err, "dial AMQP broker", cfg.Exchange)
		return nil, e
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		e = xerr.NewError(err, "open AMQP channel", cfg.Exchange)
		return nil, e
	}

	client = &Client{
		conn:           conn,
		channel:        channel,
		exchangeName:   cfg.Exchange,
		queueName:      cfg.Queue,
		publishTimeout: time.Duration(cfg.PublishTimeout) * time.Second,
	}

	e = client.setup(cfg.Prefetch)
	if e != nil {
		client.Close()
		return nil, e
	}

	tl.Log(tl.Info1, palette.Green, "Connected to queue '%s' on exchange '%s'", client.queueName, client.exchangeName)
	return client, e
}

func (client *Client) setup(prefetch int) (e *xerr.Error) {
	err := client.channel.ExchangeDeclare(
		client.exchangeName, // name
		"direct",            // type
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		e = xerr.NewError(err, "declare exchange", client.exchangeName)
		return e
	}

	_, err = client.channel.QueueDeclare(
		client.queueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		e = xerr.NewError(err, "declare queue", client.queueName)
		return e
	}

	// routing key is the queue name on a direct exchange
	err = client.channel.QueueBind(client.queueName, client.queueName, client.exchangeName, false, nil)
	if err != nil {
		e = xerr.NewError(err, "bind queue", client.queueName)
		return e
	}

	if prefetch > 0 {
		err = client.channel.Qos(prefetch, 0, false)
		if err != nil {
			e = xerr.NewError(err, "set channel prefetch", client.queueName)
			return e
		}
	}
	return e
}

// Publish sends a persistent export request.
func (client *Client) Publish(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	body, err := message.ToJSON()
	if err != nil {
		e = xerr.NewError(err, "marshal export request", message.JobID)
		return e
	}

	ctx, cancel := context.WithTimeout(ctx, client.publishTimeout)
	defer cancel()

	err = client.channel.PublishWithContext(
		ctx,
		client.exchangeName, // exchange
		client.queueName,    // routing key
		false,               // mandatory
		false,               // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    message.Timestamp,
			MessageId:    message.JobID,
			Body:         body,
		},
	)
	if err != nil {
		e = xerr.NewError(err, "publish export request", message.JobID)
		return e
	}

	tl.Log(
		tl.Info1, palette.Green, "Published export request '%s' (%s %s) to '%s'",
		message.JobID, message.Kind, message.Format, client.queueName,
	)
	return e
}

/*
Consume delivers messages to handler until ctx is cancelled. Undecodable
messages are dropped; handler failures are requeued.
*/
func (client *Client) Consume(ctx context.Context, handler Handler) (e *xerr.Error) {
	deliveries, err := client.channel.Consume(
		client.queueName, // queue
		"",               // consumer
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		e = xerr.NewError(err, "start consuming", client.queueName)
		return e
	}

	tl.Log(tl.Notice, palette.BlueBold, "Consuming export requests from '%s'", client.queueName)
	return consumeLoop(ctx, deliveries, handler)
}

func consumeLoop(ctx context.Context, deliveries <-chan amqp091.Delivery, handler Handler) (e *xerr.Error) {
	for {
		select {
		case <-ctx.Done():
			tl.Log(tl.Info, palette.Purple, "Stopping consumption: %s", ctx.Err().Error())
			return e
		case delivery, ok := <-deliveries:
			if !ok {
				e = xerr.NewError(errors.New("delivery channel closed"), "consume export requests", "queue")
				return e
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

// outcome of one delivery, returned for tests and logs
type outcome string

const (
	outcomeAcked    outcome = "acked"
	outcomeRequeued outcome = "requeued"
	outcomeDropped  outcome = "dropped"
)

func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler Handler) outcome {
	message, err := ExportRequestMessageFromJSON(delivery.Body)
	if err != nil {
		tl.Log(tl.Error, palette.Red, "Dropping undecodable message: %s", err.Error())
		_ = delivery.Nack(false, false)
		return outcomeDropped
	}

	tl.Log(tl.Info, palette.Blue, "Processing export request '%s' (%s %s)", message.JobID, message.Kind, message.Format)

	e := handler(ctx, message)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Export request '%s' failed, requeueing", message.JobID)
		_ = delivery.Nack(false, true)
		return outcomeRequeued
	}

	_ = delivery.Ack(false)
	tl.Log(tl.Info1, palette.Green, "Export request '%s' done", message.JobID)
	return outcomeAcked
}

// Close shuts the channel and connection.
func (client *Client) Close() (e *xerr.Error) {
	if client.channel != nil {
		client.channel.Close()
	}
	if client.conn != nil {
		err := client.conn.Close()
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			e = xerr.NewError(err, "close AMQP connection", fmt.Sprintf("%s/%s", client.exchangeName, client.queueName))
		}
	}
	return e
}
