package config

// Redis backs distributed rate limiting and the response cache.  When the
// server cannot be reached at startup the constructor returns nil and both
// middlewares degrade (the limiter falls back to an in-process bucket).

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//
//	REDIS_HOST and REDIS_PORT, or REDIS_ADDR (host:port)
//	REDIS_PASSWORD (optional)
//	REDIS_DB (default 0)
//	REDIS_TLS ("true" or "1")
func RedisOptions() *redis.Options {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	var tlsConf *tls.Config
	if v := envStr("REDIS_TLS", ""); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	return &redis.Options{
		Addr:      addr,
		Password:  envStr("REDIS_PASSWORD", ""),
		DB:        envInt("REDIS_DB", 0),
		TLSConfig: tlsConf,
	}
}

// NewRedisClient connects with RedisOptions.  The returned client is nil if
// the server does not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(RedisOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
