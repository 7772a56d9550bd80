package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/cache"
	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/engine"
	"github.com/prevanet/prevention-server/internal/ingest"
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

	log.Info().Msg("Starting Ingestion Service")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	// Create Kafka topics (may already exist)
	for _, topic := range []string{cfg.Kafka.TopicSamples, cfg.Kafka.TopicInsights} {
		if err := queue.CreateTopic(cfg.Kafka.Brokers, topic, cfg.Kafka.NumPartitions, 1); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Topic creation failed (may already exist)")
		}
	}

	// Profile reads go through Redis; the engine only sees the store
	// interfaces.
	profiles := cache.NewProfiles(redisClient, db, cfg.Redis.ProfileTTL)
	eng := engine.NewEngine(db, profiles, db)

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicInsights)
	defer producer.Close()

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSamples, "ingest-group")
	defer consumer.Close()

	worker := ingest.NewWorker(consumer, producer, db, profiles, eng)
	worker.Start(ctx)

	log.Info().Msg("Ingestion Service is running")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutting down gracefully")
	cancel()
	worker.Stop()
}
