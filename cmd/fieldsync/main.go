package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/auth"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/cli"
	"github.com/maintly/fieldsync/internal/client/iocli"
	"github.com/maintly/fieldsync/internal/client/queue"
	"github.com/maintly/fieldsync/internal/client/services"
	"github.com/maintly/fieldsync/internal/client/storage/boltdb"
	"github.com/maintly/fieldsync/internal/client/storage/sqlite"
	syncsvc "github.com/maintly/fieldsync/internal/client/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "https://api.maintly.io", "Server URL")
	dbPath := flag.String("db", "fieldsync.db", "Path to local database")
	queueDBPath := flag.String("queue-db", "fieldsync-queue.db", "Path to mutation queue database")
	offline := flag.Bool("offline", false, "Serve reads from the local cache without contacting the server")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	io := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		c := cli.New(io, nil, nil, nil, nil, nil, false)
		c.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	ctx := context.Background()

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Локальное хранилище: сессия, кеш и идентичность устройства
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Очередь мутаций живет в отдельной sqlite БД
	queueStorage, err := sqlite.New(ctx, *queueDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open queue database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueStorage.Close(); err != nil {
			logger.Error("failed to close queue database", "error", err)
		}
	}()

	authService := auth.NewService(boltStorage, boltStorage, logger)

	// Сервис сессии выступает источником токенов для HTTP-клиента:
	// ротация пары после refresh сразу попадает в зашифрованное хранилище
	apiClient := api.NewClient(*serverURL,
		api.WithTokenSource(authService),
		api.WithLogger(logger),
	)

	device, err := authService.Device(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize device identity: %v\n", err)
		os.Exit(1)
	}

	cacheService := cache.New(boltStorage, logger)
	queueService := queue.NewService(queueStorage, apiClient, device.DeviceID, logger)
	domainServices := services.New(apiClient, cacheService, queueService, logger)
	syncService := syncsvc.NewService(queueService, cacheService, logger)

	c := cli.New(io, apiClient, authService, cacheService, domainServices, syncService, *offline)

	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("FieldSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
