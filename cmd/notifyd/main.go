package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/notification"
	"github.com/prevanet/prevention-server/internal/protocol"
	"github.com/prevanet/prevention-server/internal/queue"
	"github.com/prevanet/prevention-server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Msg("Starting Notification Service")

	notifier := notification.NewEmailNotifier(&cfg.SMTP)

	// Test SMTP connection (optional, will skip if not configured)
	if err := notifier.TestConnection(); err != nil {
		log.Warn().Err(err).Msg("Notifications will be logged only")
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicInsights, "notification-group")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().Msg("Notification Service is running")

	go func() {
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("Failed to consume message")
				continue
			}

			n, err := protocol.DecodeInsightNotification(msg.Value)
			if err != nil {
				log.Error().Err(err).Msg("Failed to decode notification")
				consumer.Commit(ctx, msg)
				continue
			}

			if err := notifier.SendInsightNotification(n); err != nil {
				log.Error().Err(err).Str("user_id", n.UserID).Msg("Failed to send notification")
				// Don't commit on error - retry
				continue
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Error().Err(err).Msg("Failed to commit offset")
			}
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutting down gracefully")
	cancel()
}
