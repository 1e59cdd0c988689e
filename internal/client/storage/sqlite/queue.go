package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maintly/fieldsync/internal/client/storage"
)

// Compile-time check that Storage implements QueueStorage
var _ storage.QueueStorage = (*Storage)(nil)

// AddMutation appends a mutation to the queue.
// Записи с уже существующим idempotency key не изменяются: повторная
// постановка той же логической мутации возвращает ErrDuplicateMutation.
func (s *Storage) AddMutation(ctx context.Context, m *storage.QueuedMutation) error {
	// Проверяем существующую запись с тем же ключом
	_, err := s.GetMutationByKey(ctx, m.IdempotencyKey)
	if err == nil {
		return storage.ErrDuplicateMutation
	}
	if !errors.Is(err, storage.ErrMutationNotFound) {
		return fmt.Errorf("failed to check existing mutation: %w", err)
	}

	query := `
		INSERT INTO mutations (
			id, entity_type, entity_id, action, endpoint, method,
			idempotency_key, tenant_slug, payload, status, last_error,
			attempt_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		m.ID,
		m.EntityType,
		m.EntityID,
		string(m.Action),
		m.Endpoint,
		m.Method,
		m.IdempotencyKey,
		m.TenantSlug,
		[]byte(m.Payload),
		string(m.Status),
		m.LastError,
		m.AttemptCount,
		m.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert mutation: %w", err)
	}

	return nil
}

// GetMutationByKey returns the queued mutation with the given idempotency key
func (s *Storage) GetMutationByKey(ctx context.Context, idempotencyKey string) (*storage.QueuedMutation, error) {
	query := selectMutation + ` WHERE idempotency_key = ?`

	row := s.db.QueryRowContext(ctx, query, idempotencyKey)
	return scanMutation(row)
}

// ListPending returns pending mutations in enqueue order
func (s *Storage) ListPending(ctx context.Context) ([]*storage.QueuedMutation, error) {
	return s.listByStatus(ctx, storage.MutationStatusPending)
}

// ListConflicts returns mutations left for manual reconciliation
func (s *Storage) ListConflicts(ctx context.Context) ([]*storage.QueuedMutation, error) {
	return s.listByStatus(ctx, storage.MutationStatusConflict)
}

func (s *Storage) listByStatus(ctx context.Context, status storage.MutationStatus) ([]*storage.QueuedMutation, error) {
	query := selectMutation + ` WHERE status = ? ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query mutations: %w", err)
	}
	defer rows.Close()

	var mutations []*storage.QueuedMutation
	for rows.Next() {
		m, err := scanMutation(rows)
		if err != nil {
			return nil, err
		}
		mutations = append(mutations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutations: %w", err)
	}

	return mutations, nil
}

// RemoveMutation deletes a mutation after a confirmed successful replay
func (s *Storage) RemoveMutation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM mutations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mutation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrMutationNotFound
	}

	return nil
}

// MarkConflict transitions a mutation to the conflict status recording the error
func (s *Storage) MarkConflict(ctx context.Context, id, lastError string) error {
	query := `UPDATE mutations SET status = ?, last_error = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, string(storage.MutationStatusConflict), lastError, id)
	if err != nil {
		return fmt.Errorf("failed to mark conflict: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrMutationNotFound
	}

	return nil
}

// IncrementAttempt bumps the attempt counter before a replay attempt
func (s *Storage) IncrementAttempt(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE mutations SET attempt_count = attempt_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment attempt count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrMutationNotFound
	}

	return nil
}

// CountPending returns the number of pending mutations
func (s *Storage) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mutations WHERE status = ?`,
		string(storage.MutationStatusPending),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}

	return count, nil
}

const selectMutation = `
	SELECT id, entity_type, entity_id, action, endpoint, method,
	       idempotency_key, tenant_slug, payload, status, last_error,
	       attempt_count, created_at
	FROM mutations`

// scanner покрывает *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanMutation(row scanner) (*storage.QueuedMutation, error) {
	m := &storage.QueuedMutation{}
	var action, status string
	var payload []byte
	var createdAt int64

	err := row.Scan(
		&m.ID,
		&m.EntityType,
		&m.EntityID,
		&action,
		&m.Endpoint,
		&m.Method,
		&m.IdempotencyKey,
		&m.TenantSlug,
		&payload,
		&status,
		&m.LastError,
		&m.AttemptCount,
		&createdAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMutationNotFound
		}
		return nil, fmt.Errorf("failed to scan mutation: %w", err)
	}

	m.Action = storage.MutationAction(action)
	m.Status = storage.MutationStatus(status)
	m.Payload = payload
	m.CreatedAt = time.Unix(createdAt, 0).UTC()

	return m, nil
}
