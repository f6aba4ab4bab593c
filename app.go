package main

// app.go holds the application object wiring configuration, database
// and web server together. The CLI in cli.go calls into it through the
// Applicator interface.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicebox/config"
	"invoicebox/db"
	"invoicebox/internal/mounts"
	"invoicebox/web"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout is the time allowed for draining in-flight requests.
const shutdownTimeout = 10 * time.Second

// application implements the Applicator interface for the CLI.
type application struct {
	logger *log.Logger
}

// newApplication creates the core application object.
func newApplication() *application {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "invoicebox",
	})
	return &application{logger: logger}
}

// openDB loads the configuration and opens the database, initialising
// the schema and preparing the query statements. In development mode
// the sql query files are read from disk rather than the embedded
// copies.
func (app *application) openDB(cfgPath string) (*config.Config, *db.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	sqlMount, err := mounts.NewFileMount("sql", db.SQLEmbeddedFS, cfg.Web.SQLPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not mount sql fs: %w", err)
	}

	d, err := db.NewConnection(cfg.DatabasePath, sqlMount, cfg.DefaultVATRate, app.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database setup error: %w", err)
	}
	return cfg, d, nil
}

// Serve runs the web server until interrupted. In development mode the
// on-disk sql query files are watched and re-prepared on edit.
func (app *application) Serve(ctx context.Context, cfgPath string) error {

	cfg, d, err := app.openDB(cfgPath)
	if err != nil {
		return err
	}
	defer d.Close()

	webApp, err := web.New(app.logger, cfg, d)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(webApp.StartServer)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		app.logger.Info("shutting down")
		return webApp.Shutdown(shutdownCtx)
	})

	if cfg.Web.DevelopmentMode {
		app.logger.Info("development mode: watching sql files", "path", cfg.Web.SQLPath)
		notifier, err := NewFileChangeNotifier([]DirFilesDescriptor{
			{Dir: cfg.Web.SQLPath, FileSuffixes: []string{"sql"}},
		})
		if err != nil {
			return fmt.Errorf("sql file watcher error: %w", err)
		}
		g.Go(func() error {
			return notifier.Watch(ctx)
		})
		g.Go(func() error {
			for range notifier.Update() {
				app.logger.Info("sql files changed, re-preparing statements")
				if err := d.Reprepare(); err != nil {
					app.logger.Error("statement re-preparation failed", "error", err)
				}
			}
			return nil
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// InitDB creates the database file, its schema and seed rows, and
// applies the additive migrations. Opening the database does all of
// this, so a plain open-and-close suffices.
func (app *application) InitDB(ctx context.Context, cfgPath string) error {
	cfg, d, err := app.openDB(cfgPath)
	if err != nil {
		return err
	}
	app.logger.Info("database initialised", "path", cfg.DatabasePath)
	return d.Close()
}

// ShowCounters prints the per-type document number counters.
func (app *application) ShowCounters(ctx context.Context, cfgPath string) error {
	_, d, err := app.openDB(cfgPath)
	if err != nil {
		return err
	}
	defer d.Close()

	counters, err := d.CountersGet(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("quote:   %d\ninvoice: %d\n", counters.Quote, counters.Invoice)
	return nil
}

// SetCounter sets the counter for a document type to an absolute value.
// The next allocated number for that type embeds value + 1.
func (app *application) SetCounter(ctx context.Context, cfgPath, docType string, value int64) error {
	if docType != string(db.DocumentTypeQuote) && docType != string(db.DocumentTypeInvoice) {
		return fmt.Errorf("invalid document type %q: use quote or invoice", docType)
	}
	_, d, err := app.openDB(cfgPath)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.CounterSet(ctx, db.DocumentType(docType), value); err != nil {
		return err
	}
	app.logger.Info("counter set", "type", docType, "value", value)
	return nil
}

// ExtractSQL writes the embedded sql query files to <dir>/sql/ so they
// can be edited and used with development mode's sql_path setting.
func (app *application) ExtractSQL(ctx context.Context, dir string) error {
	sqlMount, err := mounts.NewFileMount("sql", db.SQLEmbeddedFS, "")
	if err != nil {
		return fmt.Errorf("could not mount sql fs: %w", err)
	}
	if err := sqlMount.Materialize(dir); err != nil {
		return err
	}
	app.logger.Info("sql files extracted", "dir", dir)
	return nil
}
