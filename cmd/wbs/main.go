package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/alexanderramin/wbs/internal/cli"
	"github.com/alexanderramin/wbs/internal/config"
	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/preset"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	groupRepo := repository.NewSQLiteGroupRepo(database)
	itemRepo := repository.NewSQLiteItemRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	syncRepo := repository.NewSQLiteSyncStateRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// Use-case and API call logs go to stderr so structured output stays clean.
	var logOut io.Writer
	var observers []service.UseCaseObserver
	if cfg.LogEnabled {
		logOut = os.Stderr
		observers = append(observers, service.NewLogUseCaseObserver(logOut))
	}

	// A nil client makes pull and --push report that no API is configured.
	var client backend.Client
	if cfg.Backend.Enabled() {
		client = backend.NewCachedClient(backend.NewClient(cfg.Backend, backend.NewLogObserver(logOut)), cfg.Backend.CacheTTL)
	}

	importSvc := service.NewImportService(uow, observers...)
	app := &cli.App{
		Import:      importSvc,
		Tree:        service.NewTreeService(phaseRepo, groupRepo, itemRepo, taskRepo, syncRepo, observers...),
		Tasks:       service.NewTaskService(taskRepo, uow, observers...),
		Sync:        service.NewSyncService(client, importSvc, uow, observers...),
		Presets:     preset.NewStore(cfg.PresetsPath),
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
