package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	pending, err := c.syncService.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending mutations: %w", err)
	}

	if pending == 0 {
		c.io.Println("✓ Nothing to synchronize.")
		return nil
	}

	c.io.Printf("Replaying %d queued mutation(s)...\n", pending)
	c.io.Println()

	result, err := c.syncService.Sync(ctx)
	if result != nil {
		c.io.Printf("Replayed:  %d\n", result.Replayed)
		if result.Conflicts > 0 {
			c.io.Printf("Conflicts: %d (run 'fieldsync status' for details)\n", result.Conflicts)
		}
		if result.Remaining > 0 {
			c.io.Printf("Remaining: %d (will be retried on the next sync)\n", result.Remaining)
		}
	}
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed.")
	return nil
}
