package cli

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/internal/models"
	"github.com/maintly/fieldsync/internal/validation"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	tenant, err := c.io.ReadInput("Organization: ")
	if err != nil {
		return fmt.Errorf("failed to read organization: %w", err)
	}
	if err := validation.ValidateTenantSlug(tenant); err != nil {
		return err
	}

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	resp, err := c.apiClient.Login(ctx, pkgapi.LoginRequest{
		Username: username,
		Password: password,
		Tenant:   tenant,
	})
	if err != nil {
		return err
	}

	if err := c.authService.SaveSession(ctx, username, resp); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.apiClient.SetTenant(models.TenantContext{
		Slug:       resp.TenantSlug,
		SchemaName: resp.SchemaName,
	})

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Organization: %s\n", resp.TenantSlug)
	c.io.Printf("Username:     %s\n", username)
	c.io.Printf("Access token expires in: %d seconds\n", resp.ExpiresIn)

	return nil
}
