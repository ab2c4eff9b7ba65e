package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"finboard/internal/builder"
	"finboard/internal/catalog"
	"finboard/internal/config"
	"finboard/internal/dashboard"
	"finboard/internal/otel"
	"finboard/internal/persist"
	"finboard/internal/seed"
	"finboard/internal/server"
	"finboard/internal/version"
	"finboard/pkg/bus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "finboard",
		Short:         "Dashboard personalization service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newSeedDBCommand())
	return cmd
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// loadCatalog reads the configured capability file, falling back to the
// embedded default.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_ = godotenv.Load()
			setupLogging()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
			if err != nil {
				return fmt.Errorf("init otel: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := cleanup(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("shutdown otel")
				}
			}()

			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			blueprints := dashboard.NewBlueprintStore()
			assignments := dashboard.NewAssignmentStore()

			var recorder *persist.Recorder
			if cfg.DBDSN != "" {
				database, err := persist.Connect(ctx, cfg.DBDSN)
				if err != nil {
					return fmt.Errorf("connect database: %w", err)
				}
				defer func() {
					if err := persist.Close(database); err != nil {
						log.Error().Err(err).Msg("close database")
					}
				}()
				if err := persist.Migrate(ctx, database); err != nil {
					return fmt.Errorf("migrate database: %w", err)
				}
				if err := persist.Load(ctx, database, blueprints, assignments); err != nil {
					return fmt.Errorf("load snapshot: %w", err)
				}
				recorder = persist.NewRecorder(database)
				log.Info().Int("blueprints", blueprints.Len()).Int("assignments", assignments.Len()).Msg("snapshot loaded")
			}

			// The shipped defaults fill any gap the snapshot left.
			if err := seed.Apply(cat, blueprints, assignments); err != nil {
				return fmt.Errorf("seed stores: %w", err)
			}

			var eventBus *bus.Bus
			if cfg.NATSURL != "" {
				eventBus, err = bus.Connect(cfg.NATSURL)
				if err != nil {
					return fmt.Errorf("connect nats: %w", err)
				}
				defer eventBus.Close()
			}

			sessions := builder.NewSessions(cat, cfg.GridColumns, cfg.BuilderSessionTTL)

			api, err := server.New(server.Options{
				Logger:           log.Logger,
				Blueprints:       blueprints,
				Assignments:      assignments,
				Catalog:          cat,
				Sessions:         sessions,
				Users:            seed.Users(),
				Views:            seed.Views(),
				GridColumns:      cfg.GridColumns,
				AllowedOrigins:   cfg.AllowedOrigins,
				RequestRateLimit: cfg.RequestRateLimit,
				Recorder:         recorder,
				Bus:              eventBus,
			})
			if err != nil {
				return fmt.Errorf("build api: %w", err)
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           otelhttp.NewHandler(api.Routes(), version.Name),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Msg("starting " + version.Name)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			return nil
		},
	}
}

func newResolveCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the effective dashboard for a user and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			blueprints := dashboard.NewBlueprintStore()
			assignments := dashboard.NewAssignmentStore()

			if cfg.DBDSN != "" {
				database, err := persist.Connect(ctx, cfg.DBDSN)
				if err != nil {
					return fmt.Errorf("connect database: %w", err)
				}
				defer func() { _ = persist.Close(database) }()
				if err := persist.Load(ctx, database, blueprints, assignments); err != nil {
					return fmt.Errorf("load snapshot: %w", err)
				}
			}
			if err := seed.Apply(cat, blueprints, assignments); err != nil {
				return fmt.Errorf("seed stores: %w", err)
			}

			var user dashboard.User
			found := false
			for _, u := range seed.Users() {
				if u.ID == userID {
					user, found = u, true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown user %q", userID)
			}

			res := dashboard.Resolve(user, assignments.List(), blueprints.List(dashboard.Filter{}))
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to resolve")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-db",
		Short: "Write the shipped defaults into the snapshot database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_ = godotenv.Load()
			setupLogging()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DBDSN == "" {
				return errors.New("DB_DSN is required")
			}
			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			database, err := persist.Connect(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer func() { _ = persist.Close(database) }()

			if err := persist.Migrate(ctx, database); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			recorder := persist.NewRecorder(database)
			seeded, err := seed.Blueprints(cat)
			if err != nil {
				return err
			}
			for _, bp := range seeded {
				if err := recorder.SaveBlueprint(ctx, bp); err != nil {
					return fmt.Errorf("seed blueprint %s: %w", bp.ID, err)
				}
			}
			for _, a := range seed.Assignments() {
				if err := recorder.SaveAssignment(ctx, a); err != nil {
					return fmt.Errorf("seed assignment %s: %w", a.ID, err)
				}
			}

			log.Info().Int("blueprints", len(seeded)).Int("assignments", len(seed.Assignments())).Msg("seeded database")
			return nil
		},
	}
}
