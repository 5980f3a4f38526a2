// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the store, cache, alert channel and
// serving surfaces. The low-stock threshold and cache TTL are deliberately
// configuration rather than literals.
type Config struct {
	HTTPAddr string
	GRPCAddr string

	MySQLDSN  string
	RedisAddr string

	KafkaBroker   string
	LowStockTopic string

	LowStockThreshold int
	CacheTTL          time.Duration

	CacheOpTimeout  time.Duration
	PublishTimeout  time.Duration
	TxTimeout       time.Duration
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:          getenv("GRPC_ADDR", ":50051"),
		MySQLDSN:          getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/warehouse?parseTime=true"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:       getenv("KAFKA_BROKER", "localhost:9092"),
		LowStockTopic:     getenv("LOW_STOCK_TOPIC", "inventory.low-stock"),
		LowStockThreshold: atoienv("LOW_STOCK_THRESHOLD", 10),
		CacheTTL:          durenvs("CACHE_TTL_SECONDS", 300),
		CacheOpTimeout:    durenvms("CACHE_OP_TIMEOUT_MS", 250),
		PublishTimeout:    durenvms("PUBLISH_TIMEOUT_MS", 2000),
		TxTimeout:         durenvms("TX_TIMEOUT_MS", 5000),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 10),
	}
}
