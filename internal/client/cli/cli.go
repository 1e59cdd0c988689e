package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/auth"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/iocli"
	"github.com/maintly/fieldsync/internal/client/services"
	"github.com/maintly/fieldsync/internal/client/storage"
	syncsvc "github.com/maintly/fieldsync/internal/client/sync"
)

// Cli связывает команды терминала с доменными сервисами
type Cli struct {
	io          iocli.IO
	apiClient   api.ClientAPI
	authService auth.Service
	cache       cache.Cache
	services    *services.Services
	syncService *syncsvc.Service

	// offline заставляет читающие команды работать только по кешу
	offline bool
}

func New(
	io iocli.IO,
	apiClient api.ClientAPI,
	authService auth.Service,
	c cache.Cache,
	svcs *services.Services,
	syncService *syncsvc.Service,
	offline bool,
) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		cache:       c,
		services:    svcs,
		syncService: syncService,
		offline:     offline,
	}
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	err := c.dispatch(ctx, command, args)
	if errors.Is(err, api.ErrSessionExpired) {
		return fmt.Errorf("session expired. Please run 'fieldsync login' again")
	}
	return err
}

func (c *Cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "alerts":
		return c.runAlerts(ctx, args)
	case "wo":
		return c.runWorkOrders(ctx, args)
	case "assets":
		return c.runAssets(ctx, args)
	case "inv":
		return c.runInventory(ctx, args)
	case "sync":
		return c.runSync(ctx)
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// restoreSession восстанавливает контекст организации на HTTP-клиенте
// из сохраненной сессии. Все команды кроме login начинаются с этого.
func (c *Cli) restoreSession(ctx context.Context) error {
	tenant, err := c.authService.TenantContext(ctx)
	if err != nil {
		if err == storage.ErrAuthNotFound {
			return fmt.Errorf("not authenticated. Please run 'fieldsync login' first")
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	c.apiClient.SetTenant(tenant)
	return nil
}

func (c *Cli) PrintUsage() {
	c.io.Println("FieldSync - offline-first CMMS client for field technicians")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  fieldsync [OPTIONS] COMMAND")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  --version          Show version information")
	c.io.Println("  --server URL       Server URL (default: https://api.maintly.io)")
	c.io.Println("  --db PATH          Path to local database (default: fieldsync.db)")
	c.io.Println("  --queue-db PATH    Path to mutation queue database (default: fieldsync-queue.db)")
	c.io.Println("  -v                 Verbose logging")
	c.io.Println("  --offline          Serve reads from the local cache without contacting the server")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  login                              Login to your organization")
	c.io.Println("  logout                             Logout and clear the local session")
	c.io.Println("  status                             Show session and pending sync status")
	c.io.Println("  alerts list                        List monitoring alerts")
	c.io.Println("  alerts ack <id> [note]             Acknowledge an alert")
	c.io.Println("  alerts resolve <id> [note]         Resolve an alert")
	c.io.Println("  wo list                            List work orders")
	c.io.Println("  wo show <id>                       Show work order details")
	c.io.Println("  wo create                          Create a work order (interactive)")
	c.io.Println("  wo start <id>                      Move a work order to in_progress")
	c.io.Println("  wo complete <id>                   Complete a work order")
	c.io.Println("  wo part <id> <item-id> <qty>       Record a part usage on a work order")
	c.io.Println("  assets list                        List assets")
	c.io.Println("  assets show <id>                   Show asset details")
	c.io.Println("  assets reading <id> <meter> <val>  Record a manual meter reading")
	c.io.Println("  inv list                           List inventory items")
	c.io.Println("  inv show <id>                      Show inventory item details")
	c.io.Println("  inv move <id> <in|out> <qty>       Register a stock movement")
	c.io.Println("  sync                               Replay queued mutations")
	c.io.Println()
	c.io.Println("Offline behaviour:")
	c.io.Println("  With --offline, reads are served from the local cache.")
	c.io.Println("  Writes are queued when the network is down and replayed in order by 'sync'.")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  fieldsync login")
	c.io.Println("  fieldsync alerts list")
	c.io.Println("  fieldsync alerts ack 42 'on my way'")
	c.io.Println("  fieldsync wo part 7 3 2")
	c.io.Println("  fieldsync sync")
}
