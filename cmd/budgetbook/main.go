package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	apphttp "budgetbook/internal/http"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/services"
	"budgetbook/internal/watch"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info", nil).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, nil)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("budgetbook stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("budgetbook stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting budgetbook",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"import_mode", cfg.ImportMode)

	backend, err := cli.InitBackend(ctx, logger, cfg, cli.DemoSeed(cfg, time.Now()))
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Warn("Store cleanup failed", log.FieldError, err)
		}
	}()
	st := backend.Store

	hub := notify.NewHub(logger)
	history := notify.NewHistory(50)
	notifier := notify.Multi{history, hub, notify.NewLogNotifier(logger)}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, notifications stay local", log.FieldError, err)
		} else {
			defer client.Close()
			notifier = append(notifier, notify.NewAMQPNotifier(client))
			logger.Info("Publishing notifications to AMQP", "exchange", cfg.AMQPExchange)
		}
	}

	expenses := services.NewExpenseService(st, notifier, logger)
	insights := services.NewInsightsService(st, cfg.RecentLimit, cfg.CacheSize, cfg.CacheTTL)
	importer := services.NewImportService(st, notifier, logger, services.ImportMode(cfg.ImportMode))

	svc := apphttp.Services{
		Expenses: expenses,
		Insights: insights,
		Import:   importer,
		Export:   services.NewExportService(st, notifier, logger),
		Settings: services.NewSettingsService(st, notifier, logger),
		Payment:  services.NewPaymentService(expenses, notifier, logger, cfg.PayNowDelay),
		History:  history,
		Hub:      hub,
		Ready: func(ctx context.Context) error {
			_, err := st.Profile(ctx)
			return err
		},
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{RecentLimit: cfg.RecentLimit}, logger)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	for _, c := range insights.Caches() {
		caches.Register(c)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return caches.Run(gctx, cfg.CacheTTL) })
	g.Go(func() error { return srv.Run(gctx, shutdownTimeout) })

	if cfg.ImportWatchDir != "" {
		w := watch.New(cfg.ImportWatchDir, func(ctx context.Context, path string) error {
			_, err := importer.ImportFile(ctx, path)
			return err
		}, logger)
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}
