package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"sauna/internal/config"
	"sauna/internal/env"
	"sauna/internal/geolocate"
	"sauna/internal/live"
	"sauna/internal/logging"
	"sauna/internal/models"
	"sauna/internal/service"
	"sauna/internal/session"
	"sauna/pkg/graceful"
	"sauna/pkg/kafkaclient"
	"sauna/pkg/places"
)

func main() {
	// Load environment variables from a .env file.
	// This is typically used in a development environment.
	env.LoadEnv(zap.NewNop())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	// All four Kafka variables are mandatory.
	kafkaBroker := env.MustGetEnv(logger, "KAFKA_BROKER")
	kafkaTopic := env.MustGetEnv(logger, "KAFKA_TOPIC")
	kafkaGroupID := env.MustGetEnv(logger, "KAFKA_GROUP_ID")
	resultTopic := env.MustGetEnv(logger, "KAFKA_RESULT_TOPIC")
	placesKey := env.MustGetEnv(logger, "SAUNA_PLACES_API_KEY")

	logger.Info("connecting to kafka",
		zap.String("broker", kafkaBroker),
		zap.String("topic", kafkaTopic),
		zap.String("group", kafkaGroupID),
		zap.String("results", resultTopic),
	)

	consumer, err := kafkaclient.NewKafkaConsumer(kafkaTopic, kafkaGroupID, kafkaBroker, logger)
	if err != nil {
		logger.Fatal("failed to create kafka consumer", zap.Error(err))
	}
	producer, err := kafkaclient.NewProducer(resultTopic, kafkaBroker, logger)
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warn("failed to close kafka producer", zap.Error(err))
		}
	}()

	src, closeSource, err := cfg.OpenManualSource(ctx, logger)
	if err != nil {
		logger.Fatal("failed to open manual source", zap.String("source", cfg.ManualSource), zap.Error(err))
	}
	defer closeSource()

	client := places.NewClient(placesKey, places.WithEndpoint(cfg.PlacesEndpoint))
	searcher := live.NewSearcher(client, live.Options{Language: cfg.Language}, logger)

	// Positions arrive on the triggers; the worker never locates on its own.
	handler := session.NewHandler(src, searcher, geolocate.None{}, logger)
	dispatcher := service.NewDispatcher(func(id, locale string) *session.Session {
		return session.New(id, handler, locale)
	}, producer, cfg.SessionIdleTTL, logger)

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator[models.SearchTrigger](consumer, service.DecodeTrigger, logger)
	dispatcher.Run(ctx, iterator.Deliveries(ctx))

	consumer.Stop()
	logger.Info("search worker finished, application exiting")
}
