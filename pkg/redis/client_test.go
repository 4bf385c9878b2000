package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.StateKey("mesa-01", "cart")
	if err := client.Set(ctx, key, `[{"productId":"p1"}]`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, found, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || value != `[{"productId":"p1"}]` {
		t.Fatalf("unexpected value found=%v value=%q", found, value)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	_, found, err = client.Get(ctx, key)
	if err != nil {
		t.Fatalf("missing key should not error, got %v", err)
	}
	if found {
		t.Fatalf("expected key to be gone after delete")
	}
}

func TestGetPropagatesFailures(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = errors.New("connection reset")
	client := &Client{store: mock}

	if _, _, err := client.Get(context.Background(), "gf:state:x:cart"); err == nil {
		t.Fatalf("expected transport error to surface")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v"); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without connection should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.StateKey("mesa-01", "session"); got != "gf:state:mesa-01:session" {
		t.Fatalf("unexpected state key %s", got)
	}
	if got := client.StateKey(" ", "theme"); got != "gf:state:theme" {
		t.Fatalf("blank device should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:  "localhost:6379",
		DB:       2,
		PoolSize: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 4 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/3", PoolSize: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 3 || opts.PoolSize != 8 {
		t.Fatalf("unexpected url options %+v", opts)
	}
}

type mockCmdable struct {
	data   map[string]string
	getErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
