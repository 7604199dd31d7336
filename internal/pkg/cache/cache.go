package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/AdEngine/internal/pkg/config"
)

// limiterDB keeps rate limiter counters apart from anything else stored in DB 0.
const limiterDB = 1

// SetupCache connects to the configured Redis/Dragonfly server. It returns nil
// when no cache host is configured; the server then runs with in-memory
// rate limiting.
func SetupCache(cfg config.Config) *redis.Client {
	if !cfg.CacheEnabled() {
		fiberlog.Info("[Cache] CACHE_HOST not set, running without cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.CacheHost, cfg.CachePort),
		Password: cfg.CachePassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		fiberlog.Warnf("[Cache] Could not connect to cache: %v", err)
	} else {
		fiberlog.Infof("[Cache] Connected: %s", pong)
	}

	return client
}

// Ping reports whether the cache answers. A nil client counts as healthy
// because the cache is optional.
func Ping(ctx context.Context, c *redis.Client) error {
	if c == nil {
		return nil
	}
	return c.Ping(ctx).Err()
}

// LimiterStorage builds a fiber.Storage on top of the same server the client
// talks to, for use by the rate limiter.
func LimiterStorage(c *redis.Client) fiber.Storage {
	if c == nil {
		return nil
	}

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(c.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: c.Options().Password,
		Database: limiterDB,
		Reset:    false,
	})
}
