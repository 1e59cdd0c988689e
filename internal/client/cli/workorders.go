package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/maintly/fieldsync/internal/models"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

func (c *Cli) runWorkOrders(ctx context.Context, args []string) error {
	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: fieldsync wo <list|show|create|start|complete|part>")
	}

	switch args[0] {
	case "list":
		return c.runWorkOrdersList(ctx)
	case "show":
		return c.runWorkOrderShow(ctx, args[1:])
	case "create":
		return c.runWorkOrderCreate(ctx)
	case "start":
		return c.runWorkOrderStatus(ctx, args[1:], models.WorkOrderStatusInProgress)
	case "complete":
		return c.runWorkOrderStatus(ctx, args[1:], models.WorkOrderStatusCompleted)
	case "part":
		return c.runWorkOrderPart(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s. Use: list, show, create, start, complete, or part", args[0])
	}
}

func (c *Cli) runWorkOrdersList(ctx context.Context) error {
	c.io.Println("=== Work Orders ===")
	c.io.Println()

	list := c.services.WorkOrders.List
	if c.offline {
		list = c.services.WorkOrders.ListCached
	}

	res, err := list(ctx)
	if err != nil {
		return cacheMissHint(err)
	}

	if len(res.Value) == 0 {
		c.io.Println("No work orders.")
		printOrigin(c, res)
		return nil
	}

	for _, wo := range res.Value {
		c.io.Printf("#%-5d %-14s [%s/%s] %s\n", wo.ID, wo.Number, wo.Priority, wo.Status, wo.Title)
		if wo.AssetName != "" {
			c.io.Printf("       asset: %s\n", wo.AssetName)
		}
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runWorkOrderShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing work order id. Usage: fieldsync wo show <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	get := c.services.WorkOrders.Get
	if c.offline {
		get = c.services.WorkOrders.GetCached
	}

	res, err := get(ctx, id)
	if err != nil {
		return cacheMissHint(err)
	}

	wo := res.Value
	c.io.Printf("=== Work Order %s ===\n", wo.Number)
	c.io.Println()
	c.io.Printf("Title:    %s\n", wo.Title)
	c.io.Printf("Status:   %s\n", wo.Status)
	c.io.Printf("Priority: %s\n", wo.Priority)
	if wo.AssetName != "" {
		c.io.Printf("Asset:    %s (#%d)\n", wo.AssetName, wo.AssetID)
	}
	if wo.AssignedTo != "" {
		c.io.Printf("Assignee: %s\n", wo.AssignedTo)
	}
	if wo.DueDate != nil {
		c.io.Printf("Due:      %s\n", wo.DueDate.Format("2006-01-02"))
	}
	if wo.Description != "" {
		c.io.Println()
		c.io.Println(wo.Description)
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runWorkOrderCreate(ctx context.Context) error {
	c.io.Println("=== New Work Order ===")
	c.io.Println()

	title, err := c.io.ReadInput("Title: ")
	if err != nil {
		return err
	}
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	description, err := c.io.ReadInput("Description (optional): ")
	if err != nil {
		return err
	}

	priority, err := c.io.ReadInput("Priority (low/medium/high/critical): ")
	if err != nil {
		return err
	}
	if priority == "" {
		priority = "medium"
	}

	assetArg, err := c.io.ReadInput("Asset ID: ")
	if err != nil {
		return err
	}
	assetID, err := parseID(assetArg)
	if err != nil {
		return err
	}

	res, err := c.services.WorkOrders.Create(ctx, pkgapi.WorkOrderCreateRequest{
		Title:       title,
		Description: description,
		Priority:    priority,
		AssetID:     assetID,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	if res.Optimistic {
		c.io.Printf("✓ Work order %q queued for creation\n", res.Value.Title)
	} else {
		c.io.Printf("✓ Work order %s created (#%d)\n", res.Value.Number, res.Value.ID)
	}
	printOrigin(c, res)

	return nil
}

func (c *Cli) runWorkOrderStatus(ctx context.Context, args []string, status models.WorkOrderStatus) error {
	if len(args) == 0 {
		return fmt.Errorf("missing work order id")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	statusStr := string(status)
	req := pkgapi.WorkOrderUpdateRequest{Status: &statusStr}

	res, err := c.services.WorkOrders.Update(ctx, id, req)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Work order #%d is now %s\n", id, res.Value.Status)
	printOrigin(c, res)
	return nil
}

func (c *Cli) runWorkOrderPart(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: fieldsync wo part <work-order-id> <item-id> <quantity>")
	}

	woID, err := parseID(args[0])
	if err != nil {
		return err
	}
	itemID, err := parseID(args[1])
	if err != nil {
		return err
	}
	qty, err := parseID(args[2])
	if err != nil {
		return fmt.Errorf("invalid quantity %q: expected a positive number", args[2])
	}

	var note string
	if len(args) > 3 {
		note = args[3]
	}

	res, err := c.services.WorkOrders.AddPartUsage(ctx, woID, pkgapi.PartUsageRequest{
		ItemID:   itemID,
		Quantity: qty,
		Note:     note,
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Recorded usage of %d x item #%d on work order #%d at %s\n",
		res.Value.Quantity, res.Value.ItemID, woID, res.Value.UsedAt.Format(time.RFC3339))
	printOrigin(c, res)
	return nil
}
