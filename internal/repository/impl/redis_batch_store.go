package impl

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/redis"
)

type redisBatchStore struct {
	rdb *redis.Client
}

// NewRedisBatchStore 创建基于 Redis 的批量写入存储。
// 每个实体落为一个 hash,键为 raid:{partition}:{entityId},
// 一个分块在单个事务 pipeline 中提交。
func NewRedisBatchStore(rdb *redis.Client) batchwriter.BatchStore {
	return &redisBatchStore{rdb: rdb}
}

func (s *redisBatchStore) CommitBatch(ctx context.Context, partition string, ops []batchwriter.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, op := range ops {
			key := fmt.Sprintf("raid:%s:%s", partition, op.EntityID)
			fields := make(map[string]interface{}, len(op.Fields))
			for k, v := range op.Fields {
				fields[k] = v
			}
			pipe.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("提交批量写入失败: partition=%s ops=%d: %w", partition, len(ops), err)
	}
	return nil
}
