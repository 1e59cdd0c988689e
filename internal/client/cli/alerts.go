package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runAlerts(ctx context.Context, args []string) error {
	if err := c.restoreSession(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: fieldsync alerts <list|ack|resolve>")
	}

	switch args[0] {
	case "list":
		return c.runAlertsList(ctx)
	case "ack":
		return c.runAlertAction(ctx, args[1:], true)
	case "resolve":
		return c.runAlertAction(ctx, args[1:], false)
	default:
		return fmt.Errorf("unknown subcommand: %s. Use: list, ack, or resolve", args[0])
	}
}

func (c *Cli) runAlertsList(ctx context.Context) error {
	c.io.Println("=== Alerts ===")
	c.io.Println()

	list := c.services.Alerts.List
	if c.offline {
		list = c.services.Alerts.ListCached
	}

	res, err := list(ctx)
	if err != nil {
		return cacheMissHint(err)
	}

	if len(res.Value) == 0 {
		c.io.Println("No alerts.")
		printOrigin(c, res)
		return nil
	}

	for _, a := range res.Value {
		marker := " "
		if a.Severity == "critical" {
			marker = "!"
		}
		c.io.Printf("%s #%-5d [%s/%s] %s - %s\n", marker, a.ID, a.Severity, a.Status, a.AssetName, a.RuleName)
		if a.Message != "" {
			c.io.Printf("         %s\n", a.Message)
		}
	}

	printOrigin(c, res)
	return nil
}

func (c *Cli) runAlertAction(ctx context.Context, args []string, ack bool) error {
	verb := "resolve"
	if ack {
		verb = "ack"
	}
	if len(args) == 0 {
		return fmt.Errorf("missing alert id. Usage: fieldsync alerts %s <id> [note]", verb)
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	note := strings.Join(args[1:], " ")

	if ack {
		res, err := c.services.Alerts.Acknowledge(ctx, id, note)
		if err != nil {
			return err
		}
		c.io.Printf("✓ Alert #%d acknowledged (status: %s)\n", id, res.Value.Status)
		printOrigin(c, res)
		return nil
	}

	res, err := c.services.Alerts.Resolve(ctx, id, note)
	if err != nil {
		return err
	}
	c.io.Printf("✓ Alert #%d resolved (status: %s)\n", id, res.Value.Status)
	printOrigin(c, res)
	return nil
}
