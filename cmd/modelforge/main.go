// Command modelforge runs the ModelForge MCP server: metabolic model
// construction, gapfilling, and FBA interpretation tools for LLM agents.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/config"
	"github.com/modelforge-bio/modelforge/internal/mcp"
	"github.com/modelforge-bio/modelforge/internal/service/fba"
	"github.com/modelforge-bio/modelforge/internal/service/gapfill"
	mediasvc "github.com/modelforge-bio/modelforge/internal/service/media"
	"github.com/modelforge-bio/modelforge/internal/service/modelbuild"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
	"github.com/modelforge-bio/modelforge/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "modelforge",
		Short:        "MCP server for building, gapfilling, and analyzing metabolic models",
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	level := slog.LevelInfo
	if os.Getenv("MODELFORGE_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	// Logs go to stderr: stdout belongs to the stdio MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("fatal error", "error", err)
		return err
	}
	return nil
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("modelforge starting", "version", version, "transport", cfg.Transport)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Load the biochemistry reference index. Tens of thousands of records;
	// the two tables are parsed concurrently.
	loadStart := time.Now()
	index, err := biochem.Load(ctx, cfg.CompoundsPath, cfg.ReactionsPath)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	logger.Info("reference index loaded",
		"compounds", index.CompoundCount(),
		"reactions", index.ReactionCount(),
		"elapsed", time.Since(loadStart).Round(time.Millisecond),
	)

	// Session stores.
	models := store.NewModelStore()
	media := store.NewMediaStore()
	if cfg.MediaLibrary != "" {
		n, err := store.LoadPredefinedMedia(cfg.MediaLibrary, index, media)
		if err != nil {
			return fmt.Errorf("load media library: %w", err)
		}
		logger.Info("predefined media loaded", "count", n)
	}

	// Modeling service client.
	client, err := solver.NewClient(cfg.SolverURL, cfg.SolverTimeout, cfg.FBACacheSize, logger)
	if err != nil {
		return fmt.Errorf("solver client: %w", err)
	}

	// Services.
	mediaBuilder := mediasvc.NewBuilder(index, media, logger)
	modelBuilder := modelbuild.NewBuilder(client, models, logger)
	gapfiller := gapfill.New(models, media, index, client, client, logger)
	fbaSvc := fba.NewInterpreter(client, models, media, logger)

	srv := mcp.New(index, models, media, mediaBuilder, modelBuilder, gapfiller, fbaSvc, logger, version)

	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, srv, cfg.Port, logger)
	default:
		logger.Info("mcp server listening on stdio")
		return mcpserver.ServeStdio(srv.MCPServer())
	}
}

func serveHTTP(ctx context.Context, srv *mcp.Server, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(srv.MCPServer()))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	httpSrv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	}
}
