package interfaces

import (
	"context"
	"errors"
	"time"

	"tsu-raid/internal/model/raidmodel"
)

// ErrLockoutNotFound 指定的 (参战者, 副本) 没有锁定记录
var ErrLockoutNotFound = errors.New("lockout record not found")

// LockoutRepository 负责锁定记录的存取。
// SetIfAbsent 必须是原子的条件写入,同一键并发的两次完成只有一次能写入成功。
type LockoutRepository interface {
	Get(ctx context.Context, participantID, encounterID string) (*raidmodel.LockoutRecord, error)
	SetIfAbsent(ctx context.Context, participantID, encounterID string, completedAt time.Time, window time.Duration) (bool, error)
	Delete(ctx context.Context, participantID, encounterID string) error
	ListByParticipant(ctx context.Context, participantID string) ([]*raidmodel.LockoutRecord, error)
	DeleteExpired(ctx context.Context) (int, error)
}
