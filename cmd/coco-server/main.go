package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pelingenc/coco/internal/config"
	"github.com/pelingenc/coco/internal/domain/catalog"
	"github.com/pelingenc/coco/internal/domain/dataset"
	"github.com/pelingenc/coco/internal/domain/explore"
	"github.com/pelingenc/coco/internal/platform/middleware"
	"github.com/pelingenc/coco/internal/platform/web"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "coco-server",
		Short: "Code co-occurrence explorer for flat FHIR exports",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(catalogsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// catalogsCmd verifies the catalog directory without starting the server.
func catalogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "Check which catalog exports are loadable",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dir = cfg.CatalogDir
			}

			status := catalog.LoadDir(dir).Status()
			fmt.Printf("Catalog directory: %s\n", status.Dir)
			printSystem("ICD-10-GM", status.ICD)
			printSystem("OPS", status.OPS)
			printSystem("LOINC", status.LOINC)

			if !status.ICD.Loaded && !status.OPS.Loaded && !status.LOINC.Loaded {
				return fmt.Errorf("no catalog could be loaded from %s", dir)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Catalog directory (defaults to CATALOG_DIR)")
	return cmd
}

func printSystem(name string, s catalog.SystemStatus) {
	if s.Loaded {
		fmt.Printf("  %-10s %s (%d entries)\n", name, s.File, s.Count)
		return
	}
	fmt.Printf("  %-10s FAILED: %s\n", name, s.Error)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Catalogs for the search endpoints. Uploads re-read the directory so
	// a failure here only degrades enrichment, it never blocks startup.
	catalogs := catalog.LoadDir(cfg.CatalogDir)
	for _, e := range catalogs.Errors() {
		logger.Warn().Str("dir", cfg.CatalogDir).Msg(e)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M", cfg.MaxUpload))
	e.Use(middleware.RequestTimeout(cfg.Timeout()))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	// Domain wiring
	apiV1 := e.Group("/api/v1")

	catalogHandler := catalog.NewHandler(catalogs)
	catalogHandler.RegisterRoutes(apiV1)

	store := dataset.NewStore(cfg.MaxSessions)
	datasetSvc := dataset.NewService(cfg.CatalogDir, store, logger)
	datasetHandler := dataset.NewHandler(datasetSvc)
	datasetHandler.RegisterRoutes(apiV1)

	exploreSvc := explore.NewService(store)
	exploreHandler := explore.NewHandler(exploreSvc)
	exploreHandler.RegisterRoutes(apiV1)

	// Dashboard
	web.Register(e)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
