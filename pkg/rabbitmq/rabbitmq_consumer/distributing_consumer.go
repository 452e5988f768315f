package rabbitmq_consumer

import (
	"context"
	"fmt"

	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Ack/Nack делает пакет:
// nil - Ack, ошибка - Nack без возврата в очередь.
type MessageHandler func(delivery amqp.Delivery) error

// DistributingConsumer обрабатывает каждое сообщение в отдельной горутине.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	return &DistributingConsumer{
		baseConsumer: bc,
		handler:      handler,
	}, nil
}

// QueueName возвращает имя очереди, в том числе сгенерированное сервером.
func (c *DistributingConsumer) QueueName() string {
	return c.baseConsumer.actualQueueName
}

// StartConsuming блокируется до отмены ctx (возвращает nil) или обрыва соединения (возвращает ошибку).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := bc.channel.Consume(
		bc.actualQueueName,
		bc.config.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from queue '%s': %w", bc.actualQueueName, err)
	}

	bc.Logger.Info("Waiting for messages", "queue_name", bc.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := bc.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		bc.Logger.Info("Context cancelled, consumer is stopping", "queue_name", bc.actualQueueName)
		return nil
	case amqpErr, ok := <-notifyClose:
		if !ok || amqpErr == nil {
			return fmt.Errorf("distributing consumer: connection closed")
		}
		bc.Logger.Error(amqpErr, "Connection closed for consumer", "queue_name", bc.actualQueueName)
		return amqpErr
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	bc := c.baseConsumer
	for {
		// Сначала проверяем отмену, чтобы не запускать новых обработчиков после остановки
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed by RabbitMQ", "queue_name", bc.actualQueueName)
				return
			}

			bc.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer bc.wg.Done()

				if err := c.handler(delivery); err != nil {
					bc.Logger.Error(err, "Handler error, message dropped", "delivery_tag", delivery.DeliveryTag)
					_ = delivery.Nack(false, false)
					return
				}
				_ = delivery.Ack(false)
				bc.Logger.Debug("Message acked", "delivery_tag", delivery.DeliveryTag)
			}(d)
		}
	}
}

func (c *DistributingConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
