package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

func (c *Cli) runInventory(ctx context.Context, args []string) error {
	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: fieldsync inv <list|show|move>")
	}

	switch args[0] {
	case "list":
		return c.runInventoryList(ctx)
	case "show":
		return c.runInventoryShow(ctx, args[1:])
	case "move":
		return c.runInventoryMove(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s. Use: list, show, or move", args[0])
	}
}

func (c *Cli) runInventoryList(ctx context.Context) error {
	c.io.Println("=== Inventory ===")
	c.io.Println()

	list := c.services.Inventory.List
	if c.offline {
		list = c.services.Inventory.ListCached
	}

	res, err := list(ctx)
	if err != nil {
		return cacheMissHint(err)
	}

	if len(res.Value) == 0 {
		c.io.Println("No inventory items.")
		printOrigin(c, res)
		return nil
	}

	for _, item := range res.Value {
		low := ""
		if item.Quantity <= item.MinQuantity {
			low = " ⚠️ low"
		}
		c.io.Printf("#%-5d %-14s %4d %-4s %s%s\n", item.ID, item.SKU, item.Quantity, item.Unit, item.Name, low)
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runInventoryShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing item id. Usage: fieldsync inv show <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	get := c.services.Inventory.Get
	if c.offline {
		get = c.services.Inventory.GetCached
	}

	res, err := get(ctx, id)
	if err != nil {
		return cacheMissHint(err)
	}

	item := res.Value
	c.io.Printf("=== Inventory Item %s ===\n", item.SKU)
	c.io.Println()
	c.io.Printf("Name:     %s\n", item.Name)
	c.io.Printf("Quantity: %d %s (min: %d)\n", item.Quantity, item.Unit, item.MinQuantity)
	c.io.Printf("Category: %s\n", item.Category)
	if item.Location != "" {
		c.io.Printf("Location: %s\n", item.Location)
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runInventoryMove(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: fieldsync inv move <id> <in|out|adjustment> <quantity>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	movementType := args[1]
	qty, err := parseID(args[2])
	if err != nil {
		return fmt.Errorf("invalid quantity %q: expected a positive number", args[2])
	}

	var note string
	if len(args) > 3 {
		note = args[3]
	}

	res, err := c.services.Inventory.RegisterMovement(ctx, id, pkgapi.StockMovementRequest{
		Type:     movementType,
		Quantity: qty,
		Note:     note,
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Movement recorded: %s %d for item #%d\n", res.Value.Type, res.Value.Quantity, id)
	printOrigin(c, res)
	return nil
}
