package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/maintly/fieldsync/internal/client/storage"
)

// TTL по типам сущностей. Алерты устаревают быстрее всего, складские
// остатки двигаются реже.
const (
	TTLAlerts     = 5 * time.Minute
	TTLWorkOrders = 10 * time.Minute
	TTLAssets     = 10 * time.Minute
	TTLInventory  = 15 * time.Minute
)

// Entity types used in cache keys
const (
	EntityAlert     = "alert"
	EntityWorkOrder = "workorder"
	EntityAsset     = "asset"
	EntityInventory = "inventory"
)

//go:generate moq -out cache_mock.go . Cache

// Cache предоставляет читающий кеш с TTL поверх локального хранилища.
// Просроченная запись эквивалентна промаху: кеш никогда не отдает
// устаревшие данные, решение "показать пусто или сходить в сеть"
// принимает вызывающий слой.
type Cache interface {
	// Get возвращает значение по ключу и десериализует его в out
	// Возвращает storage.ErrCacheMiss при отсутствии или просрочке записи
	Get(ctx context.Context, key string, out any) error

	// Set сериализует значение и сохраняет его с заданным TTL
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Remove удаляет запись (после мутации, делающей ее недостоверной)
	Remove(ctx context.Context, key string) error

	// Purge удаляет все записи (logout, смена организации)
	Purge(ctx context.Context) error
}

type ttlCache struct {
	store  storage.CacheStorage
	logger *slog.Logger
	now    func() time.Time
}

var _ Cache = (*ttlCache)(nil)

// New создает кеш поверх переданного хранилища
func New(store storage.CacheStorage, logger *slog.Logger) Cache {
	return &ttlCache{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (c *ttlCache) Get(ctx context.Context, key string, out any) error {
	entry, err := c.store.GetEntry(ctx, key)
	if err != nil {
		return err
	}

	if entry.Expired(c.now()) {
		// Ленивая очистка: просроченную запись убираем по пути
		if err := c.store.RemoveEntry(ctx, key); err != nil {
			c.logger.Warn("failed to remove expired cache entry", "key", key, "error", err)
		}
		return storage.ErrCacheMiss
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		return fmt.Errorf("failed to unmarshal cached value for %s: %w", key, err)
	}

	return nil
}

func (c *ttlCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for cache key %s: %w", key, err)
	}

	now := c.now()
	entry := &storage.CacheEntry{
		Key:       key,
		Value:     data,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	return c.store.SetEntry(ctx, entry)
}

func (c *ttlCache) Remove(ctx context.Context, key string) error {
	return c.store.RemoveEntry(ctx, key)
}

func (c *ttlCache) Purge(ctx context.Context) error {
	return c.store.PurgeEntries(ctx)
}

// EntityKey строит ключ для одиночной сущности: tenant/entityType/id
func EntityKey(tenant, entityType, id string) string {
	return fmt.Sprintf("%s/%s/%s", tenant, entityType, id)
}

// ListKey строит ключ для списка: tenant/entityType/list/<подпись фильтров>.
// Подпись - усеченный SHA-256 канонического представления фильтров, чтобы
// разные наборы фильтров не затирали друг друга.
func ListKey(tenant, entityType, filterSignature string) string {
	return fmt.Sprintf("%s/%s/list/%s", tenant, entityType, filterSignature)
}

// FilterSignature каноникализирует пары фильтров query-строки в подпись
// ключа списка. Пустой набор фильтров дает подпись "all".
func FilterSignature(filters map[string]string) string {
	if len(filters) == 0 {
		return "all"
	}

	canonical, _ := json.Marshal(filters) // map сериализуется с сортировкой ключей
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:16]
}
