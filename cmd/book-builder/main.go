package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/book-builder/internal/app/engine"
	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	"github.com/muhammadchandra19/book-builder/internal/usecase/feed"
	"github.com/muhammadchandra19/book-builder/internal/usecase/orderbook"
	"github.com/muhammadchandra19/book-builder/internal/usecase/snapshot"
	"github.com/muhammadchandra19/book-builder/internal/usecase/telemetry"
	"github.com/muhammadchandra19/book-builder/pkg/config"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	"github.com/muhammadchandra19/book-builder/pkg/questdb"
	"github.com/muhammadchandra19/book-builder/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg = &config.Config{}
	err = config.Load(cfg)
	if err != nil {
		panic(err)
	}

	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = logger
}

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize Redis client for snapshot persistence
	rclient := redis.NewClient(log, &cfg.RedisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	// Initialize components
	book := orderbook.NewBookWithROI(
		cfg.Symbol,
		cfg.OrderbookROI.TickSize,
		cfg.OrderbookROI.LotSize,
		cfg.OrderbookROI.Center,
		cfg.OrderbookROI.Width,
	)
	reader := feed.NewReader(cfg.KafkaConfig, *log)
	persister := snapshot.NewStore(rclient, cfg.Symbol, log)

	replayCfg := replayv1.Config{
		MaxSequenceGap:    cfg.ReplayConfig.MaxSequenceGap,
		ValidateChecksums: cfg.ReplayConfig.ValidateChecksums,
		ChecksumFatal:     cfg.ReplayConfig.ChecksumFatal,
		BufferSize:        cfg.ReplayConfig.BufferSize,
		SnapshotInterval:  cfg.ReplayConfig.SnapshotInterval,
		TrackLatency:      cfg.ReplayConfig.TrackLatency,
	}

	engine := app.NewEngine(
		book,
		replayCfg,
		reader,
		persister,
		log,
	)

	// Optional QuestDB telemetry sink
	var qdbClient questdb.QuestDBClient
	if cfg.QuestDB.Enabled {
		var err error
		qdbClient, err = questdb.NewClient(ctx, cfg.QuestDB.Config)
		if err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "connect_questdb",
			})
			return
		}
		recorder := telemetry.NewRecorder(cfg.Symbol, qdbClient, engine.Replay(), engine.Tracker(), log)
		engine.WithRecorder(recorder)
	}

	// Rebuild the book from the persisted snapshot before consuming live events
	if err := engine.Restore(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "restore_snapshot",
		})
		return
	}

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Book builder started successfully", logger.Field{
		Key:   "symbol",
		Value: cfg.Symbol,
	})

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	// Cancel the main context to signal shutdown
	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the engine gracefully
	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if qdbClient != nil {
		qdbClient.Close()
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Book builder shutdown complete")
}
