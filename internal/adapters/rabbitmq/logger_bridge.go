package rabbitmq

import (
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/pkg/rabbitmq/rabbitmq_common"
)

// amqpLogger переводит key-value аргументы pkg/rabbitmq в port.Fields.
type amqpLogger struct {
	log port.LoggerPort
}

// NewPkgLoggerBridge оборачивает LoggerPort для клиентов RabbitMQ из pkg.
func NewPkgLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return amqpLogger{log: logger}
}

// pairsToFields пропускает пары с нестроковым ключом и непарный хвост.
func pairsToFields(kv []any) port.Fields {
	fields := port.Fields{}
	for len(kv) >= 2 {
		if key, ok := kv[0].(string); ok {
			fields[key] = kv[1]
		}
		kv = kv[2:]
	}
	return fields
}

func (l amqpLogger) Debug(msg string, kv ...any) { l.log.Debug(msg, pairsToFields(kv)) }
func (l amqpLogger) Info(msg string, kv ...any)  { l.log.Info(msg, pairsToFields(kv)) }
func (l amqpLogger) Warn(msg string, kv ...any)  { l.log.Warn(msg, pairsToFields(kv)) }

func (l amqpLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, err, pairsToFields(kv))
}
