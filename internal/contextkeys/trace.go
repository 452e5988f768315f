package contextkeys

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// ContextWithTraceID сохраняет идентификатор трассировки запроса или сообщения.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFromContext возвращает "" если идентификатор не задан.
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceKey{}).(string)
	return traceID
}

// ResolveTraceID принимает внешний идентификатор, только если это UUID.
// Иначе выдается новый.
func ResolveTraceID(raw string) string {
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
