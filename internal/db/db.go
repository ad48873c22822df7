package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	connectTimeout  = 5 * time.Second
	keepaliveEvery  = 10 * time.Second
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// OpenPostgres opens a pooled Postgres handle and verifies it with a ping.
func OpenPostgres(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(addr, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          database,
		DialTimeout: connectTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// RedisPinger adapts a redis client to Pinger.
type RedisPinger struct {
	Client *redis.Client
}

func (p RedisPinger) PingContext(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// Keepalive pings the backend periodically and logs failures, so an idle
// connection dropped by the network shows up in the logs before a request
// hits it. It returns a stop function.
func Keepalive(name string, p Pinger, logger *zap.Logger) (stop func()) {
	return keepalive(name, p, logger, keepaliveEvery)
}

func keepalive(name string, p Pinger, logger *zap.Logger, every time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		healthy := true
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
				err := p.PingContext(ctx)
				cancel()
				switch {
				case err != nil && healthy:
					logger.Warn("backend ping failed", zap.String("backend", name), zap.Error(err))
					healthy = false
				case err == nil && !healthy:
					logger.Info("backend reachable again", zap.String("backend", name))
					healthy = true
				}
			}
		}
	}()
	var stopped bool
	return func() {
		if !stopped {
			stopped = true
			close(done)
		}
	}
}
