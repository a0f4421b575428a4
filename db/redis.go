package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/n0rdy/queuewatch/common"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisAddressKey = "queuewatch:" + common.LastServerAddressKey

type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(ctx context.Context, redisURL string) (*RedisRepo, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func (rr *RedisRepo) GetAddress(ctx context.Context) (string, bool, error) {
	address, err := rr.client.Get(ctx, redisAddressKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get last server address from redis")
		return "", false, common.ErrInternal
	}
	return address, true, nil
}

func (rr *RedisRepo) SaveAddress(ctx context.Context, address string) error {
	if err := rr.client.Set(ctx, redisAddressKey, address, 0).Err(); err != nil {
		log.Error().Err(err).Str("address", address).Msg("failed to set last server address in redis")
		return common.ErrInternal
	}
	return nil
}

func (rr *RedisRepo) Ping(ctx context.Context) error {
	return rr.client.Ping(ctx).Err()
}

func (rr *RedisRepo) Close() error {
	return rr.client.Close()
}
