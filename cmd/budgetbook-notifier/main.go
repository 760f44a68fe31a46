// Command budgetbook-notifier consumes notifications from AMQP, logs them and
// relays them to websocket clients.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cli"
	"budgetbook/internal/log"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/notify"
	"budgetbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info", nil).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, nil)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	hub := notify.NewHub(logger)
	history := notify.NewHistory(100)
	w := worker.NewNotificationWorker(notify.Multi{history, hub}, logger, 1024)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/notifications", func(rw http.ResponseWriter, _ *http.Request) {
		items := history.Recent()
		if items == nil {
			items = []notify.Notification{}
		}
		rw.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(rw).Encode(items)
	})
	mux.Handle("GET /ws/notifications", hub)

	detector := security.NewDetector()
	handler := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(mux)
	handler = trace.NewMiddleware(logger, detector.ExtractClientIP).Middleware(handler)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting budgetbook-notifier", "port", cfg.Port, "queue", cfg.AMQPQueue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return client.ConsumeNotifications(gctx, w.HandleNotification) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notifier stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Notifier stopped gracefully")
}
