package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing/internal/billing"
	"billing/internal/config"
	"billing/internal/pricing"
	"billing/internal/repository"
	"billing/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	manager  *billing.Manager
	catalog  *billing.Catalog
	closeFn  func() error
	location *time.Location
}

// newApp loads the configuration and opens the configured store.
func newApp(log zerolog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	backend, closeFn, err := openBackend(cfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("backend", cfg.StoreBackend).
			Msg("Failed to open store")
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	ids, err := repository.NewSnowflakeIDs(cfg.IDNode)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	repo, err := repository.New(
		store.NewCollectionStore(backend),
		repository.WithIDGenerator(ids),
		repository.WithLatency(cfg.RepositoryLatency),
	)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	log.Debug().
		Str("backend", cfg.StoreBackend).
		Int64("id_node", cfg.IDNode).
		Dur("latency", cfg.RepositoryLatency).
		Msg("Store opened")

	return &app{
		cfg:      cfg,
		manager:  billing.NewManager(repo, pricing.NewEngine(), billing.WithNumberGenerator(billing.NewNumberGenerator(cfg.InvoicePrefix))),
		catalog:  billing.NewCatalog(repo),
		closeFn:  closeFn,
		location: cfg.Location(),
	}, nil
}

func (a *app) Close() error {
	return a.closeFn()
}

func openBackend(cfg *config.Config) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), noop, nil
	case config.BackendFile:
		b, err := store.NewFileBackend(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	case config.BackendSQLite, config.BackendPostgres, config.BackendMySQL:
		b, err := store.OpenSQL(cfg.StoreBackend, cfg.SQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// withApp opens the app, runs fn under a context bounded by --timeout and
// interrupt signals, and closes the app afterwards.
func withApp(cmd *cobra.Command, log zerolog.Logger, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close store")
		}
	}()

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := createContext(cmd.Context(), timeoutSecs, log)
	defer cancel()

	return fn(ctx, a)
}

// createContext creates a context with timeout and signal handling
func createContext(parent context.Context, timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleError turns service errors into user-facing messages.
func handleError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Operation failed")

	var validationErr *billing.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("operation timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid input: %s", validationErr.Message)
	case errors.Is(err, repository.ErrNotFound):
		var repoErr *repository.RepositoryError
		if errors.As(err, &repoErr) && repoErr.ID != "" {
			return fmt.Errorf("no %s record with id %q", singular(repoErr.Collection), repoErr.ID)
		}
		return fmt.Errorf("record not found")
	case errors.Is(err, store.ErrStorageUnavailable):
		return fmt.Errorf("storage is unavailable. Check STORE_BACKEND, STORE_PATH and DATABASE_DSN: %w", err)
	default:
		return err
	}
}

func singular(collection string) string {
	if n := len(collection); n > 1 && collection[n-1] == 's' {
		return collection[:n-1]
	}
	return collection
}

// writeOutput formats v as indented JSON and writes it to outputPath, or to
// stdout when outputPath is empty.
func writeOutput(cmd *cobra.Command, v any, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
