package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitRedis returns a client for the accrual run lock, or nil when Redis is
// unreachable. The ledger keeps working without it.
func InitRedis(ctx context.Context) *redis.Client {
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	addr := viper.GetString("redis.host") + ":" + viper.GetString("redis.port")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Log.Warn("redis connection failed, continuing without redis", zap.String("addr", addr), zap.Error(err))
		rdb.Close()
		return nil
	}

	logger.Log.Info("redis connection established", zap.String("addr", addr))
	return rdb
}
