package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/maintly/fieldsync/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	isAuth, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'fieldsync login' to authenticate.")
		return nil
	}

	session, err := c.authService.Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Organization: %s\n", session.TenantSlug)
	c.io.Printf("Username:     %s\n", session.Username)

	// Срок берем из claim exp самого токена: подпись не проверяем,
	// значение чисто информационное
	if expiry, expErr := auth.AccessTokenExpiry(session.AccessToken); expErr == nil {
		c.io.Printf("Token expires: %s\n", expiry.Format(time.RFC3339))
		if remaining := time.Until(expiry); remaining > 0 {
			c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
		} else {
			c.io.Println("⚠️  Token has expired, it will be refreshed on the next request.")
		}
	}

	device, err := c.authService.Device(ctx)
	if err == nil {
		c.io.Printf("Device ID:    %s\n", device.DeviceID)
	}

	c.io.Println()

	pending, err := c.syncService.PendingCount(ctx)
	if err != nil {
		c.io.Printf("Warning: failed to get pending sync count: %v\n", err)
		return nil
	}

	if pending > 0 {
		c.io.Printf("⚠️  Pending sync: %d mutation(s) waiting to be replayed\n", pending)
		c.io.Println("Run 'fieldsync sync' to synchronize with the server.")
	} else {
		c.io.Println("✓ All mutations synchronized with the server")
	}

	conflicts, err := c.syncService.Conflicts(ctx)
	if err == nil && len(conflicts) > 0 {
		c.io.Println()
		c.io.Printf("⚠️  %d mutation(s) in conflict, rejected by the server:\n", len(conflicts))
		for _, m := range conflicts {
			c.io.Printf("  - %s %s (%s): %s\n", m.Method, m.Endpoint, m.Action, m.LastError)
		}
	}

	return nil
}
