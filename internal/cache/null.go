// README: Null cache backend used when redis is unreachable.
package cache

import (
	"context"
	"time"
)

// NullBackend misses on every get and drops every write, so the rest of the
// system behaves as if caching simply were not configured.
type NullBackend struct{}

func (NullBackend) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }

func (NullBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error { return nil }

func (NullBackend) DeleteByPrefix(ctx context.Context, prefix string) error { return nil }

func (NullBackend) Close() error { return nil }
