package config

// Redis backs the token revocation key store and the rate limiter. Unlike
// a pure cache, the revocation store is part of the security surface, so a
// failed connection at startup is an error rather than a silent downgrade.

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (host/port take precedence when both set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
//	REDIS_TLS_SKIP_VERIFY – disable certificate verification (only for
//	  setups with self-signed certs; verification stays on by default)
//
// The connection is verified with a short ping before returning.
func NewRedisClient() (*redis.Client, error) {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: redisTLSConfig(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// redisTLSConfig builds the TLS settings for the Redis connection. This
// store holds the revocation markers, so certificate verification is on
// whenever TLS is; skipping it requires the explicit REDIS_TLS_SKIP_VERIFY
// opt-in.
func redisTLSConfig() *tls.Config {
	if !envBool("REDIS_TLS", false) {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: envBool("REDIS_TLS_SKIP_VERIFY", false)}
}
