package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/muhammadchandra19/book-builder/pkg/questdb"
	"github.com/muhammadchandra19/book-builder/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the book-builder service.
type Config struct {
	Symbol string `env:"SYMBOL,required"` // Trading symbol, e.g. BTC-USD

	KafkaConfig  KafkaConfig  `envPrefix:"KAFKA_"`
	RedisConfig  redis.Config `envPrefix:"REDIS_"`
	QuestDB      QuestDB      `envPrefix:"QUESTDB_"`
	ReplayConfig ReplayConfig `envPrefix:"REPLAY_"`
	OrderbookROI OrderbookROI `envPrefix:"ROI_"`
}

// KafkaConfig holds the configuration for the market data feed consumer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"book-builder"`
	Brokers []string `env:"BROKER,required"`
}

// QuestDB holds the telemetry sink configuration.
type QuestDB struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`

	questdb.Config
}

// ReplayConfig holds the replay engine tunables.
type ReplayConfig struct {
	MaxSequenceGap    uint32 `env:"MAX_SEQUENCE_GAP" envDefault:"100"`
	ValidateChecksums bool   `env:"VALIDATE_CHECKSUMS" envDefault:"true"`
	ChecksumFatal     bool   `env:"CHECKSUM_FATAL" envDefault:"false"`
	BufferSize        uint32 `env:"BUFFER_SIZE" envDefault:"100000"`
	SnapshotInterval  uint32 `env:"SNAPSHOT_INTERVAL" envDefault:"10000"`
	TrackLatency      bool   `env:"TRACK_LATENCY" envDefault:"true"`
}

// OrderbookROI holds the optional region-of-interest bounds for the book.
// A zero width disables the window and the book tracks every price.
type OrderbookROI struct {
	TickSize int64 `env:"TICK_SIZE" envDefault:"1"`
	LotSize  int64 `env:"LOT_SIZE" envDefault:"1"`
	Center   int64 `env:"CENTER" envDefault:"0"`
	Width    int64 `env:"WIDTH" envDefault:"0"`
}
