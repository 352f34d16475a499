package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/xmer/fitgirl-rss-reader/app/api"
	"github.com/xmer/fitgirl-rss-reader/app/cache"
	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/cfg"
	"github.com/xmer/fitgirl-rss-reader/app/control"
	"github.com/xmer/fitgirl-rss-reader/app/database"
	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/logging"
	"github.com/xmer/fitgirl-rss-reader/app/messaging"
	"github.com/xmer/fitgirl-rss-reader/app/tasks"
	"github.com/xmer/fitgirl-rss-reader/app/tracker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	c, err := cfg.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if c == nil {
		// Help was shown
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownLogs, err := logging.Setup(ctx, c.LogLevel, c.LokiHost, c.Version)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownLogs(flushCtx); err != nil {
			fmt.Fprintf(os.Stderr, "log shutdown error: %v\n", err)
		}
	}()

	slog.Info("Starting fitgirl-rss-reader",
		"version", c.Version,
		"service", c.ServiceName,
		"feed_url", c.FeedURL,
		"category", c.FeedCategory,
		"poll_interval", c.PollInterval)

	seen, err := cache.NewSeenSet(ctx, c.RedisURL, c.SeenTTL)
	if err != nil {
		return err
	}
	defer seen.Close()

	httpClient := &http.Client{}
	steam := catalog.NewClient(c.SteamBaseURL, httpClient, c.SteamTimeout, c.SteamRateLimit)
	failures := tracker.NewFailureTracker(c.FailuresPath)
	reader := feed.NewReader(c.FeedURL, httpClient, feed.NewParser(), feed.NewFilterer(c.FeedCategory),
		c.UserAgent, c.FeedTimeout)

	broker, err := messaging.Dial(c.RabbitMQURL)
	if err != nil {
		return err
	}
	defer broker.Close()
	brokerClosed := broker.NotifyClose()

	if err := messaging.DeclareExchanges(broker.PublishChannel(), c.ExchangeName); err != nil {
		return err
	}
	publisher := messaging.NewPublisher(broker.PublishChannel(), c.ExchangeName, c.ServiceName)

	// The interfaces stay nil when the journal is disabled.
	var (
		journal    tasks.Journal
		apiJournal api.ReleaseJournal
	)
	if c.JournalPath != "" {
		db, err := database.Open(c.JournalPath)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewReleaseRepository(db)
		journal = repo
		apiJournal = repo
	}

	pipeline := tasks.NewPipeline(reader, seen, steam, failures, publisher, journal)
	scheduler := tasks.NewScheduler(pipeline, c.FeedURL, c.PollInterval)

	resetService := control.NewResetService(seen, c.ServiceName)
	refreshService := control.NewRefreshService(steam, publisher)

	consumers := []struct {
		queue      string
		routingKey string
		handler    messaging.HandlerFunc
	}{
		{messaging.ResetQueue(c.ServiceName), messaging.RoutingKeyReset, resetService.HandleMessage},
		{messaging.RefreshQueue(c.ServiceName), messaging.RoutingKeyRefresh, refreshService.HandleMessage},
	}

	consumerCtx, cancelConsumers := context.WithCancel(ctx)
	defer cancelConsumers()

	errChan := make(chan error, len(consumers)+1)
	var consumerWG sync.WaitGroup

	for _, q := range consumers {
		ch, err := broker.ConsumerChannel()
		if err != nil {
			return err
		}
		if err := messaging.DeclareQueue(ch, c.ExchangeName, q.queue, q.routingKey); err != nil {
			return err
		}

		consumer := messaging.NewConsumer(ch, q.queue, c.ServiceName+"."+q.routingKey, q.handler)
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			if err := consumer.Run(consumerCtx); err != nil {
				errChan <- fmt.Errorf("consumer %s: %w", consumer.Queue(), err)
			}
		}()
	}

	scheduler.Start(ctx)

	handler := api.NewHandler(scheduler, seen, apiJournal, resetService, refreshService, c.ServiceName, c.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	slog.Info("Service started")

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-errChan:
		slog.Error("Component failed", "error", err)
		runErr = err
	case amqpErr, ok := <-brokerClosed:
		if ok && amqpErr != nil {
			runErr = fmt.Errorf("broker connection closed: %w", amqpErr)
			slog.Error("Broker connection lost", "error", amqpErr)
		}
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()
	slog.Info("Scheduler stopped")

	cancelConsumers()
	consumerWG.Wait()
	slog.Info("Consumers stopped")

	return runErr
}
