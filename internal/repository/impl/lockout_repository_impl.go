package impl

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/redis"
	"tsu-raid/internal/repository/interfaces"
)

const lockoutKeyPrefix = "raid:lockout:"

type lockoutRepositoryImpl struct {
	rdb    *redis.Client
	window time.Duration
}

// NewLockoutRepository 创建锁定记录仓储实例。window 用于 ListByParticipant
// 与 DeleteExpired 计算重置时间。
func NewLockoutRepository(rdb *redis.Client, window time.Duration) interfaces.LockoutRepository {
	return &lockoutRepositoryImpl{rdb: rdb, window: window}
}

func lockoutKey(participantID, encounterID string) string {
	return fmt.Sprintf("%s%s:%s", lockoutKeyPrefix, participantID, encounterID)
}

// parseLockoutKey 从键中还原 (参战者, 副本)
func parseLockoutKey(key string) (participantID, encounterID string, ok bool) {
	rest := strings.TrimPrefix(key, lockoutKeyPrefix)
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *lockoutRepositoryImpl) Get(ctx context.Context, participantID, encounterID string) (*raidmodel.LockoutRecord, error) {
	raw, err := r.rdb.GetString(ctx, lockoutKey(participantID, encounterID))
	if err == goredis.Nil {
		return nil, interfaces.ErrLockoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取锁定记录失败: %w", err)
	}

	completedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("解析锁定记录时间失败: %w", err)
	}

	return &raidmodel.LockoutRecord{
		ParticipantID: participantID,
		EncounterID:   encounterID,
		CompletedAt:   completedAt,
		ResetAt:       completedAt.Add(r.window),
	}, nil
}

// SetIfAbsent 以 SET NX 写入,键带 window 的 TTL。
// 已存在的记录不会被覆盖,并发的第二次完成写入失败。
func (r *lockoutRepositoryImpl) SetIfAbsent(ctx context.Context, participantID, encounterID string, completedAt time.Time, window time.Duration) (bool, error) {
	ok, err := r.rdb.SetIfAbsent(ctx, lockoutKey(participantID, encounterID),
		completedAt.UTC().Format(time.RFC3339Nano), window)
	if err != nil {
		return false, fmt.Errorf("写入锁定记录失败: %w", err)
	}
	return ok, nil
}

func (r *lockoutRepositoryImpl) Delete(ctx context.Context, participantID, encounterID string) error {
	if err := r.rdb.DeleteKey(ctx, lockoutKey(participantID, encounterID)); err != nil {
		return fmt.Errorf("删除锁定记录失败: %w", err)
	}
	return nil
}

func (r *lockoutRepositoryImpl) ListByParticipant(ctx context.Context, participantID string) ([]*raidmodel.LockoutRecord, error) {
	pattern := fmt.Sprintf("%s%s:*", lockoutKeyPrefix, participantID)
	keys, err := r.rdb.ScanKeys(ctx, pattern, 100)
	if err != nil {
		return nil, fmt.Errorf("扫描锁定记录失败: %w", err)
	}

	records := make([]*raidmodel.LockoutRecord, 0, len(keys))
	for _, key := range keys {
		pid, eid, ok := parseLockoutKey(key)
		if !ok {
			continue
		}
		record, err := r.Get(ctx, pid, eid)
		if err == interfaces.ErrLockoutNotFound {
			continue // 扫描与读取之间过期
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteExpired 清理重置时间已过却仍然存在的记录。
// 正常情况下 TTL 已让这些键自动过期,此处兜底无 TTL 的历史数据。
func (r *lockoutRepositoryImpl) DeleteExpired(ctx context.Context) (int, error) {
	keys, err := r.rdb.ScanKeys(ctx, lockoutKeyPrefix+"*", 500)
	if err != nil {
		return 0, fmt.Errorf("扫描锁定记录失败: %w", err)
	}

	now := time.Now()
	removed := 0
	for _, key := range keys {
		pid, eid, ok := parseLockoutKey(key)
		if !ok {
			continue
		}
		record, err := r.Get(ctx, pid, eid)
		if err == interfaces.ErrLockoutNotFound {
			continue
		}
		if err != nil {
			return removed, err
		}
		if !now.Before(record.ResetAt) {
			if err := r.rdb.DeleteKey(ctx, key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
