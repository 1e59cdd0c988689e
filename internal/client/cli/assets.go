package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

func (c *Cli) runAssets(ctx context.Context, args []string) error {
	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: fieldsync assets <list|show|reading>")
	}

	switch args[0] {
	case "list":
		return c.runAssetsList(ctx)
	case "show":
		return c.runAssetShow(ctx, args[1:])
	case "reading":
		return c.runAssetReading(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s. Use: list, show, or reading", args[0])
	}
}

func (c *Cli) runAssetsList(ctx context.Context) error {
	c.io.Println("=== Assets ===")
	c.io.Println()

	list := c.services.Assets.List
	if c.offline {
		list = c.services.Assets.ListCached
	}

	res, err := list(ctx)
	if err != nil {
		return cacheMissHint(err)
	}

	if len(res.Value) == 0 {
		c.io.Println("No assets.")
		printOrigin(c, res)
		return nil
	}

	for _, a := range res.Value {
		c.io.Printf("#%-5d %-12s [%s] %s - %s\n", a.ID, a.Tag, a.Status, a.Name, a.Location)
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runAssetShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing asset id. Usage: fieldsync assets show <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	get := c.services.Assets.Get
	if c.offline {
		get = c.services.Assets.GetCached
	}

	res, err := get(ctx, id)
	if err != nil {
		return cacheMissHint(err)
	}

	a := res.Value
	c.io.Printf("=== Asset %s ===\n", a.Tag)
	c.io.Println()
	c.io.Printf("Name:     %s\n", a.Name)
	c.io.Printf("Status:   %s\n", a.Status)
	c.io.Printf("Category: %s\n", a.Category)
	c.io.Printf("Location: %s\n", a.Location)
	if a.Manufacturer != "" {
		c.io.Printf("Make:     %s %s\n", a.Manufacturer, a.Model)
	}
	if a.SerialNumber != "" {
		c.io.Printf("Serial:   %s\n", a.SerialNumber)
	}
	if a.LastServiceAt != nil {
		c.io.Printf("Last service: %s\n", a.LastServiceAt.Format("2006-01-02"))
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runAssetReading(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: fieldsync assets reading <id> <meter> <value>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	meter := args[1]
	value, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: expected a number", args[2])
	}

	res, err := c.services.Assets.AddMeterReading(ctx, id, pkgapi.MeterReadingRequest{
		Meter: meter,
		Value: value,
		// Время снятия фиксируется на устройстве: при offline-replay
		// сервер получит момент фактического обхода, а не момент sync
		RecordedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Recorded %s = %v for asset #%d\n", res.Value.Meter, res.Value.Value, id)
	printOrigin(c, res)
	return nil
}
