package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/common/database"
	"github.com/imadgeboyega/kiekky-matchengine/internal/config"
	"github.com/imadgeboyega/kiekky-matchengine/internal/dating"
	"github.com/imadgeboyega/kiekky-matchengine/internal/logger"
)

const app = "matchctl"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "matchctl runs compatibility maintenance against the matching database",
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection URL (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis connection URL (env REDIS_URL)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("redis-url", rootCmd.PersistentFlags().Lookup("redis-url"))

	for key, env := range map[string]string{
		"debug":        "LOG_DEBUG",
		"json":         "LOG_JSON",
		"database-url": "DATABASE_URL",
		"redis-url":    "REDIS_URL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
}

func initConfig() {
	_ = godotenv.Load()

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("reading config %s: %v", cfgFile, err)
	}
}

// loadConfig starts from the environment and lets flags and the config file
// override the connection settings.
func loadConfig() *config.Config {
	cfg := config.Load()
	if v := viper.GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := viper.GetString("redis-url"); v != "" {
		cfg.RedisURL = v
	}
	if viper.IsSet("chunk-size") {
		cfg.BatchChunkSize = viper.GetInt("chunk-size")
	}
	if viper.IsSet("chunk-delay") {
		cfg.BatchChunkDelay = viper.GetDuration("chunk-delay")
	}
	return cfg
}

// engine holds the wired services a command needs.
type engine struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	redis   *redis.Client
	repo    *dating.PostgresRepository
	service dating.Service
}

func newEngine(ctx context.Context) (*engine, error) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	cfg := loadConfig()
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return nil, err
	}

	repo := dating.NewPostgresRepository(db)
	publisher, redisClient := eventPublisher(ctx, cfg, lg)
	return &engine{
		cfg:     cfg,
		logger:  lg,
		db:      db,
		redis:   redisClient,
		repo:    repo,
		service: dating.NewService(repo, repo, publisher, lg.Named("compatibility")),
	}, nil
}

// eventPublisher publishes compatibility changes on the shared channel so
// connected clients of the API see updates made from the CLI. Without Redis
// the events are dropped.
func eventPublisher(ctx context.Context, cfg *config.Config, lg *zap.Logger) (dating.EventPublisher, *redis.Client) {
	if cfg.RedisURL == "" {
		return dating.NopPublisher{}, nil
	}
	client, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
	if err != nil {
		lg.Warn("continuing without Redis, change events will not be published", zap.Error(err))
		return dating.NopPublisher{}, nil
	}
	return dating.NewRedisPublisher(client, cfg.EventsChannelCompat, cfg.EventsChannelProfile), client
}

func (e *engine) Close() {
	e.db.Close()
	if e.redis != nil {
		e.redis.Close()
	}
	e.logger.Sync()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseUserIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
