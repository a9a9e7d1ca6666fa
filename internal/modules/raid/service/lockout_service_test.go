package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/repository/interfaces"
)

type fakeLockoutRepo struct {
	records map[string]*raidmodel.LockoutRecord
	getErr  error
	window  time.Duration
}

func newFakeLockoutRepo(window time.Duration) *fakeLockoutRepo {
	return &fakeLockoutRepo{
		records: make(map[string]*raidmodel.LockoutRecord),
		window:  window,
	}
}

func (r *fakeLockoutRepo) key(pid, eid string) string { return pid + ":" + eid }

func (r *fakeLockoutRepo) Get(ctx context.Context, pid, eid string) (*raidmodel.LockoutRecord, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	record, ok := r.records[r.key(pid, eid)]
	if !ok {
		return nil, interfaces.ErrLockoutNotFound
	}
	return record, nil
}

func (r *fakeLockoutRepo) SetIfAbsent(ctx context.Context, pid, eid string, completedAt time.Time, window time.Duration) (bool, error) {
	key := r.key(pid, eid)
	if _, exists := r.records[key]; exists {
		return false, nil
	}
	r.records[key] = &raidmodel.LockoutRecord{
		ParticipantID: pid,
		EncounterID:   eid,
		CompletedAt:   completedAt,
		ResetAt:       completedAt.Add(window),
	}
	return true, nil
}

func (r *fakeLockoutRepo) Delete(ctx context.Context, pid, eid string) error {
	delete(r.records, r.key(pid, eid))
	return nil
}

func (r *fakeLockoutRepo) ListByParticipant(ctx context.Context, pid string) ([]*raidmodel.LockoutRecord, error) {
	var out []*raidmodel.LockoutRecord
	for _, record := range r.records {
		if record.ParticipantID == pid {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeLockoutRepo) DeleteExpired(ctx context.Context) (int, error) {
	now := time.Now()
	removed := 0
	for key, record := range r.records {
		if !now.Before(record.ResetAt) {
			delete(r.records, key)
			removed++
		}
	}
	return removed, nil
}

func TestLockoutStatusAfterSet(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(7 * 24 * time.Hour)
	svc := NewLockoutService(repo, 7*24*time.Hour)

	assert.False(t, svc.Status(ctx, "p1", "molten-depths").Locked)

	set, err := svc.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)
	require.True(t, set)

	status := svc.Status(ctx, "p1", "molten-depths")
	assert.True(t, status.Locked)
	require.NotNil(t, status.ResetAt)
}

func TestLockoutBoundaryInclusiveUnlocked(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	svc := NewLockoutService(repo, time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return base }

	set, err := svc.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)
	require.True(t, set)

	resetAt := base.Add(time.Hour)

	// resetAt 前一纳秒仍锁定
	svc.clock = func() time.Time { return resetAt.Add(-time.Nanosecond) }
	assert.True(t, svc.Status(ctx, "p1", "molten-depths").Locked)

	// 恰好到达 resetAt 即解锁
	svc.clock = func() time.Time { return resetAt }
	assert.False(t, svc.Status(ctx, "p1", "molten-depths").Locked)

	svc.clock = func() time.Time { return resetAt.Add(time.Minute) }
	assert.False(t, svc.Status(ctx, "p1", "molten-depths").Locked)
}

func TestLockoutSetIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	svc := NewLockoutService(repo, time.Hour)

	first, err := svc.Set(ctx, "p1", "ember-citadel")
	require.NoError(t, err)
	assert.True(t, first)

	// 并发的第二次完成写入失败,不覆盖已有记录
	second, err := svc.Set(ctx, "p1", "ember-citadel")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestLockoutFailsOpenOnReadError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	repo.getErr = errors.New("redis connection refused")
	svc := NewLockoutService(repo, time.Hour)

	// 读取失败时放行而非阻塞玩法
	status := svc.Status(ctx, "p1", "molten-depths")
	assert.False(t, status.Locked)
	assert.Nil(t, status.ResetAt)
}

func TestLockoutReset(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	svc := NewLockoutService(repo, time.Hour)

	_, err := svc.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)
	require.True(t, svc.Status(ctx, "p1", "molten-depths").Locked)

	require.NoError(t, svc.Reset(ctx, "p1", "molten-depths"))
	assert.False(t, svc.Status(ctx, "p1", "molten-depths").Locked)
}

func TestLockoutListActive(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	svc := NewLockoutService(repo, time.Hour)

	_, err := svc.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "p1", "ember-citadel")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "p2", "molten-depths")
	require.NoError(t, err)

	active, err := svc.ListActive(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, lockout := range active {
		assert.Positive(t, lockout.Remaining)
	}
}

func TestLockoutExpiredTreatedAsUnlockedWithoutSweep(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLockoutRepo(time.Hour)
	svc := NewLockoutService(repo, time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return base }
	_, err := svc.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)

	// 不执行清理,过期记录直接按未锁定处理
	svc.clock = func() time.Time { return base.Add(2 * time.Hour) }
	assert.False(t, svc.Status(ctx, "p1", "molten-depths").Locked)

	active, err := svc.ListActive(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, active)
}
