package port

// Fields - структурированные поля записи лога.
type Fields map[string]any

// LoggerPort - логгер, с которым работают ядро и адаптеры.
type LoggerPort interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error принимает err отдельно от полей. err может быть nil.
	Error(msg string, err error, fields Fields)

	// WithFields возвращает дочерний логгер, добавляющий fields к каждой записи.
	WithFields(fields Fields) LoggerPort
}
