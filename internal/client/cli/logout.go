package cli

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/internal/client/storage"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")
	c.io.Println()

	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	count, err := c.syncService.PendingCount(ctx)
	if err == nil && count > 0 {
		c.io.Printf("⚠️  %d queued mutation(s) have not been synchronized.\n", count)
		c.io.Println("They will be replayed after your next login on this device.")
		c.io.Println()
	}

	// Уведомляем сервер best-effort: в offline logout остается локальным
	if err := c.apiClient.Logout(ctx); err != nil {
		c.io.Println("Could not notify the server, clearing the local session anyway.")
	}

	if err := c.authService.ClearSession(ctx); err != nil && err != storage.ErrAuthNotFound {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	// Кеш принадлежит сессии: данные организации не должны переживать logout
	if err := c.cache.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	c.apiClient.ClearTenant()

	c.io.Println("✓ Logged out.")
	return nil
}
