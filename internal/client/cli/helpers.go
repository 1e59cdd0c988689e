package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/maintly/fieldsync/internal/client/services"
	"github.com/maintly/fieldsync/internal/client/storage"
)

// parseID разбирает числовой идентификатор сущности из аргумента команды
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: expected a positive number", arg)
	}
	return id, nil
}

// originNote возвращает пометку происхождения результата для вывода
func originNote[T any](res *services.Result[T]) string {
	switch {
	case res.Optimistic:
		return "(queued offline, pending sync)"
	case res.FromCache:
		return "(served from local cache)"
	default:
		return ""
	}
}

// cacheMissHint превращает cache miss в подсказку технику: в offline-режиме
// читать можно только то, что уже открывалось online
func cacheMissHint(err error) error {
	if errors.Is(err, storage.ErrCacheMiss) {
		return fmt.Errorf("no cached copy available; run the command online first")
	}
	return err
}

// printOrigin печатает предупреждение, если данные не подтверждены сервером
func printOrigin[T any](c *Cli, res *services.Result[T]) {
	if note := originNote(res); note != "" {
		c.io.Println()
		c.io.Printf("⚠️  %s\n", note)
	}
}
