package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/crypto"
)

//go:generate moq -out replayer_mock.go . Replayer

// Replayer воспроизводит одну отложенную мутацию против сервера.
// Реализуется HTTP-клиентом; выделен в интерфейс ради тестов drain.
type Replayer interface {
	ReplayMutation(ctx context.Context, m *storage.QueuedMutation) (json.RawMessage, error)
}

// EnqueueRequest описывает мутацию, которую не удалось доставить сразу
type EnqueueRequest struct {
	EntityType string
	EntityID   string
	Action     storage.MutationAction
	Endpoint   string
	Method     string
	TenantSlug string
	Payload    any
}

// Replayed - успешно воспроизведенная мутация вместе с ответом сервера
type Replayed struct {
	Mutation *storage.QueuedMutation
	Response json.RawMessage
}

// DrainResult суммирует один проход drain по очереди
type DrainResult struct {
	Replayed  []Replayed // подтвержденные сервером мутации в порядке очереди
	Conflicts int        // мутации, переведенные в conflict этим проходом
	Remaining int        // pending-мутации, оставшиеся после прохода
}

// Service управляет очередью отложенных мутаций: постановкой с
// идемпотентным ключом и FIFO-воспроизведением при восстановлении сети.
type Service struct {
	store    storage.QueueStorage
	replayer Replayer
	logger   *slog.Logger
	deviceID string
	now      func() time.Time
}

// NewService создает сервис очереди. deviceID используется как
// пространство имен идемпотентных ключей этой установки.
func NewService(store storage.QueueStorage, replayer Replayer, deviceID string, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		replayer: replayer,
		logger:   logger,
		deviceID: deviceID,
		now:      time.Now,
	}
}

// BuildIdempotencyKey строит детерминированный ключ мутации:
// {deviceID}:{entityType}:{action}:{entityID}:{hash(payload)}.
// Повторная постановка той же мутации дает тот же ключ, поэтому двойное
// нажатие схлопывается в одну запись очереди и один replay.
func BuildIdempotencyKey(deviceID, entityType string, action storage.MutationAction, entityID string, payload []byte) (string, error) {
	hash, err := crypto.ShortHashPayload(payload)
	if err != nil {
		return "", fmt.Errorf("failed to hash mutation payload: %w", err)
	}

	parts := []string{
		deviceID,
		entityType,
		string(action),
		entityID,
		hash,
	}
	return strings.Join(parts, ":"), nil
}

// IdempotencyKey строит ключ мутации в пространстве имен этой установки.
// Сервисы передают его в прямой запрос, чтобы немедленная доставка и
// последующий replay из очереди несли один и тот же ключ.
func (s *Service) IdempotencyKey(entityType string, action storage.MutationAction, entityID string, payload []byte) (string, error) {
	return BuildIdempotencyKey(s.deviceID, entityType, action, entityID, payload)
}

// Enqueue ставит мутацию в очередь. Возвращает запись очереди и признак
// того, что запись новая (false - мутация с тем же ключом уже в очереди).
func (s *Service) Enqueue(ctx context.Context, req EnqueueRequest) (*storage.QueuedMutation, bool, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal mutation payload: %w", err)
	}

	key, err := BuildIdempotencyKey(s.deviceID, req.EntityType, req.Action, req.EntityID, payload)
	if err != nil {
		return nil, false, err
	}

	m := &storage.QueuedMutation{
		ID:             uuid.New().String(),
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Action:         req.Action,
		Endpoint:       req.Endpoint,
		Method:         req.Method,
		IdempotencyKey: key,
		TenantSlug:     req.TenantSlug,
		Status:         storage.MutationStatusPending,
		Payload:        payload,
		CreatedAt:      s.now(),
	}

	if err := s.store.AddMutation(ctx, m); err != nil {
		if err == storage.ErrDuplicateMutation {
			existing, getErr := s.store.GetMutationByKey(ctx, key)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to load duplicate mutation: %w", getErr)
			}
			s.logger.Debug("mutation already queued", "idempotency_key", key)
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to enqueue mutation: %w", err)
	}

	s.logger.Info("mutation queued",
		"entity_type", req.EntityType,
		"action", req.Action,
		"idempotency_key", key,
	)

	return m, true, nil
}

// Drain воспроизводит pending-мутации строго в порядке постановки.
//
// Сетевая ошибка останавливает проход: неотправленная мутация и весь хвост
// остаются pending, порядок не нарушается; ошибка возвращается вызывающему.
// Application error (HTTP 4xx/5xx) переводит мутацию в conflict - повтор с
// тем же payload детерминированно упадет снова - и проход продолжается.
func (s *Service) Drain(ctx context.Context) (*DrainResult, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending mutations: %w", err)
	}

	result := &DrainResult{Remaining: len(pending)}

	for _, m := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if err := s.store.IncrementAttempt(ctx, m.ID); err != nil {
			return result, fmt.Errorf("failed to bump attempt counter: %w", err)
		}

		resp, replayErr := s.replayer.ReplayMutation(ctx, m)
		if replayErr != nil {
			if api.IsNetworkError(replayErr) {
				// Сеть снова пропала: хвост очереди сохранен для следующего drain
				s.logger.Warn("drain halted: network unavailable",
					"mutation_id", m.ID,
					"remaining", result.Remaining,
				)
				return result, replayErr
			}

			// Сервер ответил и отверг мутацию: фиксируем конфликт и идем дальше
			if markErr := s.store.MarkConflict(ctx, m.ID, replayErr.Error()); markErr != nil {
				return result, fmt.Errorf("failed to mark mutation conflict: %w", markErr)
			}

			s.logger.Warn("mutation rejected by server",
				"mutation_id", m.ID,
				"entity_type", m.EntityType,
				"error", replayErr,
			)

			result.Conflicts++
			result.Remaining--
			continue
		}

		if err := s.store.RemoveMutation(ctx, m.ID); err != nil {
			return result, fmt.Errorf("failed to remove replayed mutation: %w", err)
		}

		result.Replayed = append(result.Replayed, Replayed{Mutation: m, Response: resp})
		result.Remaining--
	}

	return result, nil
}

// PendingCount возвращает число мутаций, ожидающих replay
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountPending(ctx)
}

// Conflicts возвращает мутации, требующие ручного разбора
func (s *Service) Conflicts(ctx context.Context) ([]*storage.QueuedMutation, error) {
	return s.store.ListConflicts(ctx)
}

// Discard удаляет конфликтную мутацию после ручного разбора
func (s *Service) Discard(ctx context.Context, id string) error {
	if err := s.store.RemoveMutation(ctx, id); err != nil {
		return fmt.Errorf("failed to discard mutation: %w", err)
	}
	return nil
}
