package kvstore

import (
	"context"
	"errors"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

// redisClient is the subset of pkg/redis.Client used by the store.
type redisClient interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	StateKey(deviceID, key string) string
}

// Redis stores values under device-scoped redis keys.
type Redis struct {
	client   redisClient
	deviceID string
}

func NewRedis(client redisClient, deviceID string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if deviceID == "" {
		return nil, errors.New("device id required")
	}
	return &Redis{client: client, deviceID: deviceID}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := r.client.Get(ctx, r.client.StateKey(r.deviceID, key))
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read redis state")
	}
	return value, found, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.client.StateKey(r.deviceID, key), value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write redis state")
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, r.client.StateKey(r.deviceID, key))
	}
	if err := r.client.Del(ctx, scoped...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove redis state")
	}
	return nil
}
