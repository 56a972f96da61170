package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/doodlesbykumbi/ctrack/pkg/advisor"
	"github.com/doodlesbykumbi/ctrack/pkg/logging"
	"github.com/doodlesbykumbi/ctrack/pkg/seed"
	"github.com/doodlesbykumbi/ctrack/pkg/server"
	"github.com/doodlesbykumbi/ctrack/pkg/server/endpoints"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ctrack application server",
	Long: `Run the ctrack application server.

On startup the database schema is created or upgraded and, if the reference
library is empty, it is loaded from the configured catalog CSV.

By default, database migrations are run on startup. Use --no-migrate to skip.
With --watch-config the config file is watched and log_level changes are
applied without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		watch, _ := cmd.Flags().GetBool("watch-config")
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")

		if err := runServer(host, port, !noMigrate, watch); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload log_level when the config file changes")
}

func runServer(host, port string, migrate, watch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	level := zap.NewAtomicLevelAt(lvl)
	logger, err := logging.NewWithAtomicLevel(level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if migrate {
		logger.Info("running database migrations")
	}
	database, err := openDatabase(cfg, migrate)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := advisor.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	s := server.NewServer(cfg, database, client, logger, host, port)
	endpoints.RegisterAll(s)

	if err := seedOnStartup(s.LibraryStore, cfg.SeedFile, logger); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("running server",
			zap.String("addr", s.Addr()),
			zap.String("advisor", client.Name()),
		)
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if watch {
		g.Go(func() error {
			return watchConfig(gctx, cfg.ConfigFilePath(), level, logger.Named("config"))
		})
	}

	return g.Wait()
}

// seedOnStartup loads the catalog into an empty library. The seeder logs the
// outcome itself.
func seedOnStartup(library store.LibraryStore, path string, logger *zap.Logger) error {
	if _, err := seed.New(library, path, logger.Named("seed")).Run(); err != nil {
		return fmt.Errorf("failed to seed reference library: %w", err)
	}
	return nil
}
