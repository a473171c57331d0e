package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	GrpcPort         string        `mapstructure:"GRPC_PORT"`
	RedisUrl         string        `mapstructure:"REDIS_URL"`
	MongoUri         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool          `mapstructure:"LOCAL_CORS"`
	StorageMode      string        `mapstructure:"STORAGE_MODE"`
	DefaultBoardSize int           `mapstructure:"DEFAULT_BOARD_SIZE"`
	MaxBoardSize     int           `mapstructure:"MAX_BOARD_SIZE"`
	SnapshotTTL      time.Duration `mapstructure:"SNAPSHOT_TTL"`
}

var configKeys = []string{
	"SERVER_PORT", "GRPC_PORT", "REDIS_URL", "MONGO_URI", "MONGO_DATABASE",
	"LOCAL_CORS", "STORAGE_MODE", "DEFAULT_BOARD_SIZE", "MAX_BOARD_SIZE", "SNAPSHOT_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("GRPC_PORT", ":8082")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "goban")
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("STORAGE_MODE", StorageRedis)
	v.SetDefault("DEFAULT_BOARD_SIZE", 19)
	v.SetDefault("MAX_BOARD_SIZE", 25)
	v.SetDefault("SNAPSHOT_TTL", 24*time.Hour)
}

// Setup reads cfgPath if it exists, environment variables win over the file.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StorageMode != StorageRedis && c.StorageMode != StorageMemory {
		return errors.New("STORAGE_MODE must be redis or memory")
	}
	if c.MaxBoardSize <= 0 {
		return errors.New("MAX_BOARD_SIZE must be positive")
	}
	if c.SnapshotTTL <= 0 {
		return errors.New("SNAPSHOT_TTL must be positive")
	}
	if c.DefaultBoardSize <= 0 || c.DefaultBoardSize > c.MaxBoardSize {
		return errors.New("DEFAULT_BOARD_SIZE must be in [1, MAX_BOARD_SIZE]")
	}
	return nil
}
