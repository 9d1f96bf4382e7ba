package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-student-portal/pkg/config"
)

// StorageNamespace prefixes every key holding browser-scoped portal state.
const StorageNamespace = "portal:storage"

// StorageKey addresses one value of one browser. Colons inside the parts are
// replaced so a crafted key cannot reach into another browser's namespace.
func StorageKey(browserID, name string) string {
	clean := strings.NewReplacer(":", "_")
	return StorageNamespace + ":" + clean.Replace(browserID) + ":" + clean.Replace(name)
}

// NewRedis connects the client backing STORAGE_BACKEND=redis. Reads and writes
// sit on the request path of every gated page, so timeouts are kept short and
// the pool small.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   "student-portal",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}
