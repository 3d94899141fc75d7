// Command gobbletd is a reference Gobblet game server. It speaks the same
// HTTP protocol as the public server and plays the second seat itself.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gobblet/cmd/gobbletd/cli"
	"gobblet/internal/server/http"
	"gobblet/internal/server/service"
	"gobblet/internal/server/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("db command failed")
		}
		os.Exit(0)
	}

	var (
		host        = flag.String("host", "localhost", "API server host")
		port        = flag.Int("port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence and auth if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *pidLock && *pidPath == "" {
		log.Fatal().Msg("-pid-lock requires -pid")
	}
	pid, err := acquirePIDFile(*pidPath, *pidLock)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to acquire PID file")
	}
	if pid != nil {
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file written")
	}

	var store *storage.Store
	if *storagePath != "" {
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			pid.Release()
			log.Fatal().Err(err).Msg("failed to initialize storage")
		}
		if err := store.InitDB(); err != nil {
			pid.Release()
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
		log.Info().Str("path", *storagePath).Msg("storage enabled")
	} else {
		log.Warn().Msg("storage disabled: games are not persisted and any credentials are accepted")
	}

	svc := service.New(store)
	app := http.NewFiberApp(svc, *dev)
	addr := fmt.Sprintf("%s:%d", *host, *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", "http://"+addr+"/api").Bool("dev", *dev).Msg("gobblet server listening")
		return app.Listen(addr)
	})
	g.Go(func() error {
		svc.RunCleanupJob(ctx, service.CleanupJobInterval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		return errors.Join(app.ShutdownWithContext(shutdownCtx), pid.Release())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
	if err := svc.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("service shutdown")
	}
	log.Info().Msg("server exited")
}
