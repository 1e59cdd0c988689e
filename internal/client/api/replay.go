package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/maintly/fieldsync/internal/client/storage"
)

// ReplayMutation повторно выполняет отложенную мутацию с тем же
// idempotency key, который был присвоен при постановке в очередь.
// Возвращает сырое тело ответа: вызывающий слой решает, как обновить кеш.
func (c *Client) ReplayMutation(ctx context.Context, m *storage.QueuedMutation) (json.RawMessage, error) {
	var body any
	if len(m.Payload) > 0 {
		body = m.Payload
	}

	var result json.RawMessage
	err := c.Do(ctx, m.Method, m.Endpoint, body, &result, WithIdempotencyKey(m.IdempotencyKey))
	if err != nil {
		return nil, fmt.Errorf("replay %s %s failed: %w", m.Method, m.Endpoint, err)
	}

	return result, nil
}
