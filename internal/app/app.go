// Package app wires the TaskMarket data layer together: local store, remote
// store, sync engine and the domain services on top of them.
package app

import (
	"context"
	"log/slog"
	"os"

	"taskmarket/internal/config"
	"taskmarket/internal/localstore"
	"taskmarket/internal/logging"
	"taskmarket/internal/remote"
	"taskmarket/internal/services"
	"taskmarket/internal/syncer"
)

// App holds the running data layer and its services.
type App struct {
	Accounts     services.AccountService
	Tasks        services.TaskService
	Applications services.ApplicationService
	Messages     services.MessageService
	Payments     services.PaymentService

	Engine *syncer.Engine

	store *localstore.Store
	rem   *remote.SurrealStore
	log   logging.Logger
}

// New opens the local store, connects to the remote when one is configured
// and starts the sync engine. A remote that cannot be dialed is logged and
// the application runs local-only; the engine's monitor keeps probing.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	store, err := localstore.Open(ctx, cfg.LocalDSN, log)
	if err != nil {
		return nil, err
	}

	var (
		rem *remote.SurrealStore
		raw remote.Store
	)
	if cfg.RemoteURL != "" {
		rem, err = remote.Connect(ctx, remote.Config{
			URL:       cfg.RemoteURL,
			Namespace: cfg.RemoteNamespace,
			Database:  cfg.RemoteDatabase,
			Username:  cfg.RemoteUser,
			Password:  cfg.RemotePass,
		}, log)
		if err != nil {
			log.Warn(ctx, "remote connection failed, continuing local-only", "error", err)
		} else {
			raw = rem
		}
	}

	engineCfg := syncer.DefaultConfig()
	engineCfg.MonitorInterval = cfg.OnlineCheckInterval
	engineCfg.PushInterval = cfg.SyncInterval
	engineCfg.OutboxInterval = cfg.OutboxInterval
	engineCfg.OutboxMaxRetries = cfg.OutboxMaxRetries

	engine := syncer.New(store, raw, engineCfg, log)
	if err := engine.Start(ctx); err != nil {
		store.Close()
		return nil, err
	}

	accounts := services.NewAccountService(engine, store)
	tasks := services.NewTaskService(engine, accounts)
	messages := services.NewMessageService(engine)

	return &App{
		Accounts:     accounts,
		Tasks:        tasks,
		Applications: services.NewApplicationService(engine, tasks, messages),
		Messages:     messages,
		Payments:     services.NewPaymentService(engine, accounts),
		Engine:       engine,
		store:        store,
		rem:          rem,
		log:          log,
	}, nil
}

// Close stops the sync engine and releases the stores.
func (a *App) Close(ctx context.Context) {
	a.Engine.Close()
	if a.rem != nil {
		if err := a.rem.Close(ctx); err != nil {
			a.log.Warn(ctx, "remote close failed", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "local store close failed", "error", err)
	}
}
