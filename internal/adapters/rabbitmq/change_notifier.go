package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"real-estate-marketplace/internal/constants"
	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/contracts"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_common"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// MessagePublisher - часть rabbitmq_producer.Publisher, нужная нотификатору.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ChangeNotifier реализует StorageChangeNotifierPort поверх fanout-обменника:
// каждый экземпляр сервиса слушает свою эксклюзивную очередь и получает все изменения,
// включая собственные (их отсекает Store по origin).
// Он же является EventListenerPort для своей очереди.
type ChangeNotifier struct {
	publisher MessagePublisher
	consumer  *rabbitmq_consumer.DistributingConsumer
	logger    port.LoggerPort

	mu       sync.RWMutex
	handlers map[uint64]port.StorageChangeHandler
	nextID   uint64
}

// NewChangeNotifier создает нотификатор. Без AttachConsumer он только публикует.
func NewChangeNotifier(publisher MessagePublisher, logger port.LoggerPort) (*ChangeNotifier, error) {
	if publisher == nil {
		return nil, fmt.Errorf("rabbitmq adapter: publisher cannot be nil")
	}
	return &ChangeNotifier{
		publisher: publisher,
		logger:    logger.WithFields(port.Fields{"component": "ChangeNotifier"}),
		handlers:  make(map[uint64]port.StorageChangeHandler),
	}, nil
}

// AttachConsumer создает потребителя, который доставляет события подписчикам.
func (n *ChangeNotifier) AttachConsumer(cfg rabbitmq_consumer.ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) error {
	pkgLogger := n.logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer"})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, n.HandleDelivery, connManager)
	if err != nil {
		return fmt.Errorf("failed to create RabbitMQ consumer for favorites changes: %w", err)
	}
	n.consumer = consumer
	return nil
}

// Publish рассылает уведомление всем экземплярам сервиса.
func (n *ChangeNotifier) Publish(ctx context.Context, change domain.StorageChange) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ChangeNotifier",
		"key":       change.Key,
	})

	body, err := json.Marshal(change)
	if err != nil {
		adapterLogger.Error("Failed to marshal storage change", err, nil)
		return fmt.Errorf("failed to marshal storage change: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Transient, // уведомление теряет смысл после перезапуска брокера
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.EventTypeHeader:    contracts.StorageChangedEvent,
			constants.EventVersionHeader: contracts.CurrentSchemaVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.TraceIDHeader] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(publishCtx, "", msg); err != nil {
		adapterLogger.Error("Failed to publish storage change", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish storage change for %s: %w", change.Key, err)
	}

	adapterLogger.Debug("Storage change published", nil)
	return nil
}

// Subscribe регистрирует обработчик входящих уведомлений.
func (n *ChangeNotifier) Subscribe(handler port.StorageChangeHandler) (func(), error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = handler
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.handlers, id)
			n.mu.Unlock()
		})
	}, nil
}

// HandleDelivery проверяет сообщение по схеме и раздает его подписчикам.
// Некорректные сообщения отклоняются без повторной доставки.
func (n *ChangeNotifier) HandleDelivery(d amqp.Delivery) error {
	rawTraceID, _ := d.Headers[constants.TraceIDHeader].(string)
	traceID := contextkeys.ResolveTraceID(rawTraceID)
	msgLogger := n.logger.WithFields(port.Fields{
		"message_id": d.MessageId,
		"trace_id":   traceID,
	})

	eventType, _ := d.Headers[constants.EventTypeHeader].(string)
	eventVersion, _ := d.Headers[constants.EventVersionHeader].(string)
	if eventType == "" {
		eventType, eventVersion = contracts.StorageChangedEvent, contracts.CurrentSchemaVersion
	}
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var change domain.StorageChange
	if err := json.Unmarshal(d.Body, &change); err != nil {
		return fmt.Errorf("failed to unmarshal storage change: %w", err)
	}

	n.mu.RLock()
	handlers := make([]port.StorageChangeHandler, 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	msgLogger.Debug("Dispatching storage change", port.Fields{"key": change.Key, "subscribers": len(handlers)})
	for _, h := range handlers {
		h(change)
	}
	return nil
}

// Start реализует EventListenerPort, запуская прослушивание очереди
func (n *ChangeNotifier) Start(ctx context.Context) error {
	if n.consumer == nil {
		return errors.New("rabbitmq adapter: consumer is not attached")
	}
	return n.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort, корректно останавливая консьюмера
func (n *ChangeNotifier) Close() error {
	if n.consumer == nil {
		return nil
	}
	return n.consumer.Close()
}
