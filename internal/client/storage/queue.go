package storage

import (
	"context"
	"encoding/json"
	"time"
)

// MutationAction определяет тип отложенной записи
type MutationAction string

const (
	ActionCreate      MutationAction = "create"
	ActionUpdate      MutationAction = "update"
	ActionAcknowledge MutationAction = "acknowledge"
	ActionResolve     MutationAction = "resolve"
	ActionMovement    MutationAction = "movement"
	ActionReading     MutationAction = "reading"
	ActionPartUsage   MutationAction = "part_usage"
)

// MutationStatus определяет состояние записи в очереди
type MutationStatus string

const (
	// MutationStatusPending - ожидает replay при следующем drain
	MutationStatusPending MutationStatus = "pending"
	// MutationStatusConflict - replay получил application error (4xx/5xx),
	// запись оставлена для ручного разбора и в drain больше не участвует
	MutationStatusConflict MutationStatus = "conflict"
)

// QueuedMutation represents one write attempted while offline.
// Записи воспроизводятся строго в порядке постановки (FIFO): поздние мутации
// могут зависеть от успеха ранних в рамках одной offline-сессии.
type QueuedMutation struct {
	CreatedAt      time.Time       `json:"created_at"`
	ID             string          `json:"id"` // UUID записи очереди
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id,omitempty"`
	Action         MutationAction  `json:"action"`
	Endpoint       string          `json:"endpoint"`
	Method         string          `json:"method"`
	IdempotencyKey string          `json:"idempotency_key"`
	TenantSlug     string          `json:"tenant_slug"`
	Status         MutationStatus  `json:"status"`
	LastError      string          `json:"last_error,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	AttemptCount   int             `json:"attempt_count"`
}

// QueueStorage defines interface for the durable mutation queue.
// Порядок List* — порядок постановки в очередь (FIFO).
type QueueStorage interface {
	// AddMutation appends a mutation to the queue.
	// Returns ErrDuplicateMutation if a mutation with the same idempotency
	// key is already queued; the existing entry is never modified.
	AddMutation(ctx context.Context, m *QueuedMutation) error

	// GetMutationByKey returns the queued mutation with the given idempotency key
	// Returns ErrMutationNotFound if absent
	GetMutationByKey(ctx context.Context, idempotencyKey string) (*QueuedMutation, error)

	// ListPending returns pending mutations in enqueue order
	ListPending(ctx context.Context) ([]*QueuedMutation, error)

	// ListConflicts returns mutations left for manual reconciliation, in enqueue order
	ListConflicts(ctx context.Context) ([]*QueuedMutation, error)

	// RemoveMutation deletes a mutation after a confirmed successful replay
	// Returns ErrMutationNotFound if absent
	RemoveMutation(ctx context.Context, id string) error

	// MarkConflict transitions a mutation to the conflict status recording the error
	MarkConflict(ctx context.Context, id, lastError string) error

	// IncrementAttempt bumps the attempt counter before a replay attempt
	IncrementAttempt(ctx context.Context, id string) error

	// CountPending returns the number of pending mutations
	CountPending(ctx context.Context) (int, error)
}
