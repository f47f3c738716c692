// Package app wires the MailTrack console from configuration: it selects
// the records backend, attachment storage and document scanner, then runs
// the staff console until the operator quits or the process is signalled.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mailtrack/internal/cli"
	"github.com/dmitrijs2005/mailtrack/internal/config"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/repositories/repomanager"
	"github.com/dmitrijs2005/mailtrack/internal/rest"
	"github.com/dmitrijs2005/mailtrack/internal/scanner"
	"github.com/dmitrijs2005/mailtrack/internal/storage"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// seams for tests
var (
	openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		m, err := repomanager.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	newS3Uploader = func(ctx context.Context, opts storage.S3Options) (storage.Uploader, error) {
		u, err := storage.NewS3Uploader(ctx, opts)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	exitFn = os.Exit
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	console *cli.App
}

// NewApp opens the configured backends and builds the console.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("repositories init error: %w", err)
	}

	up, err := newUploader(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	store := tracker.NewStore(repos.Mails(), logger.With("component", "store"), c.DefaultAuthor)
	alloc := tracker.NewAllocator(repos.Counters(), repos.Mails(), allocatorOptions(c), logger.With("component", "allocator"))

	notifier := cli.NewNotifier(os.Stdout)
	intake := tracker.NewIntake(store, alloc, newScanner(c), up, notifier, logger.With("component", "intake"))
	console := cli.NewApp(store, intake, notifier, logger, cli.Options{
		DownloadDir:    c.DownloadDir,
		RequestTimeout: c.RequestTimeout,
	})

	return &App{config: c, logger: logger, repos: repos, console: console}, nil
}

// Run serves the console and releases the backends afterwards.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting console", "backend", app.config.Backend, "storage", app.config.Storage)
	app.initSignalHandler(cancelFunc)

	err := app.console.Run(ctx)
	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Warn(ctx, "closing repositories", "error", cerr)
	}
	return err
}

// initSignalHandler cancels in-flight requests and exits on SIGINT/SIGTERM.
// The console blocks on stdin, so waiting for it to notice would hang.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
		_ = app.repos.Close()
		fmt.Println("\nBye!")
		exitFn(0)
	}()
}

// Migrate applies the embedded schema to the configured backend. It is a
// no-op for the REST backend, whose schema is managed by the hosted project.
func Migrate(ctx context.Context, c *config.Config, logger logging.Logger) error {
	repos, err := openRepositories(ctx, c)
	if err != nil {
		return fmt.Errorf("repositories init error: %w", err)
	}
	defer repos.Close()

	if err := repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info(ctx, "migrations applied", "backend", c.Backend)
	return nil
}

func allocatorOptions(c *config.Config) tracker.AllocatorOptions {
	return tracker.AllocatorOptions{
		CounterKey: c.CounterKey,
		Baseline:   c.CounterBaseline,
		ScanLimit:  c.CounterScanLimit,
		Strict:     c.CounterStrict,
	}
}

func newRESTClient(c *config.Config) *rest.Client {
	return rest.NewClient(c.RestURL, c.RestKey, c.RequestTimeout)
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Backend {
	case config.BackendPostgres:
		return openPostgres(ctx, c.DatabaseDSN)
	case config.BackendREST:
		return repomanager.NewRESTRepositoryManager(newRESTClient(c)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}

func newUploader(ctx context.Context, c *config.Config) (storage.Uploader, error) {
	switch c.Storage {
	case config.StorageS3:
		return newS3Uploader(ctx, storage.S3Options{
			Region:        c.S3Region,
			Endpoint:      c.S3Endpoint,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Bucket:        c.Bucket,
			PublicBaseURL: c.S3PublicURL,
		})
	case config.StorageInline:
		return storage.InlineUploader{}, nil
	case config.StorageREST:
		return storage.NewRESTUploader(newRESTClient(c), c.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

// newScanner returns nil when scanning is disabled; the intake flow then
// reports every scan as failed.
func newScanner(c *config.Config) scanner.Scanner {
	if !c.ScanEnabled {
		return nil
	}
	return scanner.New(scanner.Options{
		Endpoint:  c.ScanEndpoint,
		APIKey:    c.ScanAPIKey,
		Model:     c.ScanModel,
		MaxTokens: c.ScanMaxTokens,
		Timeout:   c.ScanTimeout,
	})
}
