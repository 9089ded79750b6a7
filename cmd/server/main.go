package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goserg/doublesrating/internal/config"
	"github.com/goserg/doublesrating/internal/logger"
	"github.com/goserg/doublesrating/internal/scheduler"
	"github.com/goserg/doublesrating/internal/service"
	"github.com/goserg/doublesrating/internal/storage"
	"github.com/goserg/doublesrating/internal/storage/memory"
	"github.com/goserg/doublesrating/internal/storage/sqlite"
	"github.com/goserg/doublesrating/internal/web"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to server config")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		return err
	}
	l := logger.New(cfg.Log.Level)
	defaults, err := cfg.Ranking.Settings()
	if err != nil {
		return err
	}

	st, closeStorage, err := openStorage(l, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	svc := service.New(l, st, defaults)
	server := web.New(l, svc, cfg.Server)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(l, svc, cfg.Scheduler)
		if err != nil {
			return err
		}
		sched.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-ctx.Done()
		l.Info("shutting down")
		if sched != nil {
			if err := sched.Shutdown(); err != nil {
				l.WithError(err).Error("scheduler shutdown")
			}
		}
		return server.Shutdown()
	})
	return g.Wait()
}

// openStorage opens the sqlite file, or an in-memory store when no file is set.
func openStorage(l *logrus.Logger, cfg config.Storage) (storage.Storage, func(), error) {
	if cfg.SqliteFile == "" {
		l.Warn("no sqlite file configured, data will not be persisted")
		return memory.New(), func() {}, nil
	}
	st, err := sqlite.New(l, cfg.SqliteFile)
	if err != nil {
		return nil, nil, err
	}
	return st, func() {
		if err := st.Close(); err != nil {
			l.WithError(err).Error("close storage")
		}
	}, nil
}
