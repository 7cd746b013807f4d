// Command seafowl runs the HTTP query gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/splitgraph/seafowl/internal/catalog"
	"github.com/splitgraph/seafowl/internal/config"
	"github.com/splitgraph/seafowl/internal/healthcheck"
	"github.com/splitgraph/seafowl/internal/httpgateway"
	"github.com/splitgraph/seafowl/internal/ingest"
	"github.com/splitgraph/seafowl/internal/lifecycle"
	"github.com/splitgraph/seafowl/internal/logging"
	"github.com/splitgraph/seafowl/internal/objectstore"
	"github.com/splitgraph/seafowl/internal/server"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "seafowl",
	Short:   "seafowl - cached HTTP query gateway",
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query gateway",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a config file (YAML/JSON/TOML)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	storeConfig, err := cfg.ObjectStore.ToObjectStoreConfig()
	if err != nil {
		return fmt.Errorf("resolving object store config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	facade, err := objectstore.NewFacade(ctx, storeConfig)
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	catalogContext, err := catalog.NewSQLiteContext(cfg.CatalogDSN)
	if err != nil {
		return fmt.Errorf("initializing catalog: %w", err)
	}

	ingestor := ingest.New(catalogContext)
	gateway := httpgateway.New(catalogContext, ingestor, logger)

	health := healthcheck.NewServer()
	if err := health.AddCheck(catalogHealthCheck{catalogContext}); err != nil {
		return fmt.Errorf("registering health check: %w", err)
	}

	httpServer := server.New(server.Config{BindHost: cfg.BindHost, BindPort: cfg.BindPort}, gateway, health, logger)

	group := lifecycle.NewGroup(logger)
	group.Add(lifecycle.Item{
		Name:  "http-server",
		Run:   httpServer.Run,
		Close: httpServer.Close,
	})
	group.Add(lifecycle.Item{
		Name:  "catalog",
		Close: catalogContext.Close,
	})
	group.Add(lifecycle.Item{
		Name:  "object-store",
		Close: func() error { return nil },
	})

	logger.Info("seafowl starting",
		zap.String("bind_host", cfg.BindHost),
		zap.Int("bind_port", cfg.BindPort),
		zap.String("object_store", facade.Backend.String()),
	)

	eg, egCtx := errgroup.WithContext(ctx)
	group.Run(egCtx, eg)

	runErr := eg.Wait()
	closeErr := group.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// catalogHealthCheck reports the catalog as healthy if it can reload its
// schema without error.
type catalogHealthCheck struct {
	ctx catalog.Context
}

func (c catalogHealthCheck) Name() string { return "catalog" }

func (c catalogHealthCheck) Healthy(ctx context.Context) bool {
	return c.ctx.ReloadSchema(ctx) == nil
}
