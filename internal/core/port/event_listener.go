package port

import "context"

// EventListenerPort - входящий адаптер, который слушает брокер до отмены контекста.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
