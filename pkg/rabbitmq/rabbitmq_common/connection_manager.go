package rabbitmq_common

import (
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrManagerClosed возвращается после Close.
var ErrManagerClosed = errors.New("ConnectionManager: closed")

// ConnectionManager держит одно соединение RabbitMQ на процесс и раздает из него каналы.
// Фоновая горутина восстанавливает соединение после обрыва до вызова Close.
type ConnectionManager struct {
	cfg        Config
	dial       func(url string) (*amqp.Connection, error)
	connection *amqp.Connection
	mutex      sync.RWMutex
	closed     bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	Logger Logger
}

// NewConnectionManager подключается к брокеру и запускает мониторинг соединения.
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	m := &ConnectionManager{
		cfg:    cfg,
		dial:   amqp.Dial,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		Logger: logger,
	}

	if _, err := m.getConnection(); err != nil {
		logger.Error(err, "Initial connection failed")
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	go m.handleReconnect()
	return m, nil
}

// getConnection возвращает существующее соединение или пытается его установить
func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.closed {
		m.mutex.RUnlock()
		return nil, ErrManagerClosed
	}
	if m.connection != nil && !m.connection.IsClosed() {
		conn := m.connection
		m.mutex.RUnlock()
		return conn, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Повторная проверка, вдруг другой поток уже успел переподключиться
	if m.closed {
		return nil, ErrManagerClosed
	}
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.Logger.Debug("ConnectionManager: Connecting...")
	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Debug("ConnectionManager: Connected successfully")
	return m.connection, nil
}

// GetChannel открывает новый канал в общем соединении.
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) handleReconnect() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.ReconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		healthy := m.connection != nil && !m.connection.IsClosed()
		m.mutex.RUnlock()
		if healthy {
			continue
		}

		m.Logger.Warn("ConnectionManager: Detected closed connection, reconnecting")
		if _, err := m.getConnection(); err != nil && !errors.Is(err, ErrManagerClosed) {
			m.Logger.Error(err, "ConnectionManager: Reconnect failed")
		}
	}
}

// Close останавливает мониторинг и закрывает соединение.
func (m *ConnectionManager) Close() error {
	var closeErr error
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.done

		m.mutex.Lock()
		defer m.mutex.Unlock()
		m.closed = true

		if m.connection == nil || m.connection.IsClosed() {
			m.Logger.Debug("ConnectionManager: Connection was already closed or not established")
			return
		}
		if err := m.connection.Close(); err != nil {
			m.Logger.Error(err, "ConnectionManager: Failed to close connection properly")
			closeErr = err
			return
		}
		m.Logger.Debug("ConnectionManager: Connection closed successfully")
	})
	return closeErr
}
