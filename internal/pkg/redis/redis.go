package redis

import (
	"context"
	"fmt"
	"time"

	"tsu-raid/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Config Redis 配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client Redis 客户端封装
type Client struct {
	*redis.Client
	service string
}

// NewClient 创建 Redis 客户端
func NewClient(cfg Config, service string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	if service == "" {
		service = metrics.GetServiceName()
	}

	return &Client{
		Client:  rdb,
		service: service,
	}, nil
}

// SetIfAbsent 仅当键不存在时设置，用于占位与互斥写入
func (c *Client) SetIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.SetNX(ctx, key, value, ttl).Result()

	metrics.DefaultResourceMetrics.RecordRedisOperation("SETNX", err == nil, time.Since(start), c.service)

	return ok, err
}

// GetString 获取字符串值
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	start := time.Now()
	result, err := c.Get(ctx, key).Result()

	metrics.DefaultResourceMetrics.RecordRedisOperation("GET", err == nil || err == redis.Nil, time.Since(start), c.service)

	return result, err
}

// DeleteKey 删除键
func (c *Client) DeleteKey(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.Del(ctx, keys...).Err()

	metrics.DefaultResourceMetrics.RecordRedisOperation("DEL", err == nil, time.Since(start), c.service)

	return err
}

// ScanKeys 按模式扫描键，游标迭代直到结束
func (c *Client) ScanKeys(ctx context.Context, pattern string, count int64) ([]string, error) {
	start := time.Now()

	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.Scan(ctx, cursor, pattern, count).Result()
		if err != nil {
			metrics.DefaultResourceMetrics.RecordRedisOperation("SCAN", false, time.Since(start), c.service)
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	metrics.DefaultResourceMetrics.RecordRedisOperation("SCAN", true, time.Since(start), c.service)
	return keys, nil
}
