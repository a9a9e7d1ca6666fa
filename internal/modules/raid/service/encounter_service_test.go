package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/xerrors"
)

type fakeBatchStore struct {
	mu      sync.Mutex
	commits map[string][]batchwriter.WriteOp
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{commits: make(map[string][]batchwriter.WriteOp)}
}

func (s *fakeBatchStore) CommitBatch(ctx context.Context, partition string, ops []batchwriter.WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[partition] = append(s.commits[partition], ops...)
	return nil
}

func (s *fakeBatchStore) partition(name string) []batchwriter.WriteOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits[name]
}

type fakeInventory struct {
	rejected map[string]bool
}

func (f *fakeInventory) CanAccept(ctx context.Context, participantID string, items []raidmodel.Item) (bool, error) {
	if f.rejected == nil {
		return true, nil
	}
	return !f.rejected[participantID], nil
}

type raidTestEnv struct {
	encounter *EncounterService
	lockout   *LockoutService
	writer    *batchwriter.Coalescer
	store     *fakeBatchStore
	repo      *fakeLockoutRepo
}

func newRaidTestEnv(t *testing.T, inventory InventoryGate) *raidTestEnv {
	t.Helper()

	catalog := newTestCatalog(t)
	store := newFakeBatchStore()
	writer := batchwriter.New(store, time.Hour, 64, 25, nil, nil)

	repo := newFakeLockoutRepo(7 * 24 * time.Hour)
	lockout := NewLockoutService(repo, 7*24*time.Hour)
	loot := NewLootService(catalog, rand.New(rand.NewSource(11)))
	reward := NewRewardService(catalog, loot, lockout, writer, inventory, nil)
	encounter := NewEncounterService(catalog, reward, writer, nil, 2*time.Hour, 10*time.Minute)

	return &raidTestEnv{
		encounter: encounter,
		lockout:   lockout,
		writer:    writer,
		store:     store,
		repo:      repo,
	}
}

func fiveParticipantRoster() []raidmodel.Participant {
	return []raidmodel.Participant{
		{ID: "p1", Role: raidmodel.RoleTank, Level: 18, Power: 320},
		{ID: "p2", Role: raidmodel.RoleHealer, Level: 16, Power: 280},
		{ID: "p3", Role: raidmodel.RoleDPS, Level: 20, Power: 360},
		{ID: "p4", Role: raidmodel.RoleDPS, Level: 15, Power: 300},
		{ID: "p5", Role: raidmodel.RoleDPS, Level: 17, Power: 330},
	}
}

func TestEncounterFullClearEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateInProgress, instance.State)
	assert.Equal(t, 0, instance.WaveIndex)

	// 三个波次全部通过后进入首领阶段
	for i := 1; i <= 3; i++ {
		instance, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeCleared)
		require.NoError(t, err)
		if i < 3 {
			assert.Equal(t, raidmodel.StateInProgress, instance.State)
			assert.Equal(t, i, instance.WaveIndex)
		} else {
			assert.Equal(t, raidmodel.StateBossPhase, instance.State)
		}
	}

	// 击杀首领,完成并结算
	instance, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeCleared)
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateCompleted, instance.State)

	result, ok := env.encounter.Result(ctx, instance.ID)
	require.True(t, ok)
	require.Len(t, result.Rewards, 5)

	// 均分: 1500/5=300 金币, 3200/5=640 经验,每人一件保底掉落
	for _, reward := range result.Rewards {
		assert.False(t, reward.SkippedLocked)
		assert.EqualValues(t, 300, reward.Gold)
		assert.EqualValues(t, 640, reward.Experience)
		assert.Len(t, reward.Items, 1)
	}

	// 每人都写入了锁定记录
	for _, p := range fiveParticipantRoster() {
		status := env.lockout.Status(ctx, p.ID, "molten-depths")
		assert.True(t, status.Locked)
	}

	// 同一名单的第二次开启被锁定拒绝
	_, err = env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.Error(t, err)
	var appErr *xerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, xerrors.CodeLockoutActive, appErr.Code)

	// 奖励通过批量写入落库
	env.writer.ForceFlush(ctx)
	assert.Len(t, env.store.partition("participant"), 5)
	assert.NotEmpty(t, env.store.partition("encounter"))
}

func TestEncounterTerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		instance, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeCleared)
		require.NoError(t, err)
	}
	require.Equal(t, raidmodel.StateCompleted, instance.State)

	// 终态实例上的再次推进被拒绝,不产生新的奖励
	_, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeCleared)
	require.Error(t, err)
	var appErr *xerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, xerrors.CodeEncounterTerminal, appErr.Code)

	result, ok := env.encounter.Result(ctx, instance.ID)
	require.True(t, ok)
	assert.Len(t, result.Rewards, 5)

	env.writer.ForceFlush(ctx)
	assert.Len(t, env.store.partition("participant"), 5, "没有重复结算")
}

func TestEncounterWipeFails(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)

	instance, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeWiped)
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateFailed, instance.State)

	// 失败不结算
	_, ok := env.encounter.Result(ctx, instance.ID)
	assert.False(t, ok)
	env.writer.ForceFlush(ctx)
	assert.Empty(t, env.store.partition("participant"))

	// 失败也不写锁定,可以立刻重开
	_, err = env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)
}

func TestEncounterTTLForcesExpired(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.encounter.clock = func() time.Time { return base }

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)

	env.encounter.clock = func() time.Time { return base.Add(3 * time.Hour) }

	_, err = env.encounter.AdvanceWave(ctx, instance.ID, raidmodel.OutcomeCleared)
	require.Error(t, err)

	got, err := env.encounter.Get(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateExpired, got.State)
}

func TestEncounterForceExpire(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)

	// 管理强制过期走普通 Expired 转移
	expired, err := env.encounter.ForceExpire(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateExpired, expired.State)

	// 终态之后不可再次强制过期
	_, err = env.encounter.ForceExpire(ctx, instance.ID)
	require.Error(t, err)
}

func TestEncounterSweepExpiredAndRetention(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.encounter.clock = func() time.Time { return base }

	instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
	require.NoError(t, err)

	env.encounter.clock = func() time.Time { return base.Add(3 * time.Hour) }
	expired, removed := env.encounter.SweepExpired(ctx)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 0, removed)

	got, err := env.encounter.Get(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, raidmodel.StateExpired, got.State)

	// 超过保留窗口后从内存移除
	env.encounter.clock = func() time.Time { return base.Add(4 * time.Hour) }
	_, removed = env.encounter.SweepExpired(ctx)
	assert.Equal(t, 1, removed)

	_, err = env.encounter.Get(ctx, instance.ID)
	require.Error(t, err)
}

func TestEncounterStartValidation(t *testing.T) {
	ctx := context.Background()
	env := newRaidTestEnv(t, &fakeInventory{})

	t.Run("未知副本", func(t *testing.T) {
		_, err := env.encounter.Start(ctx, "no-such", fiveParticipantRoster())
		require.Error(t, err)
	})

	t.Run("人数不足", func(t *testing.T) {
		_, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster()[:2])
		require.Error(t, err)
	})

	t.Run("等级不足", func(t *testing.T) {
		roster := fiveParticipantRoster()
		roster[0].Level = 5
		_, err := env.encounter.Start(ctx, "molten-depths", roster)
		require.Error(t, err)
	})

	t.Run("战力不足", func(t *testing.T) {
		roster := fiveParticipantRoster()
		for i := range roster {
			roster[i].Power = 10
		}
		_, err := env.encounter.Start(ctx, "molten-depths", roster)
		require.Error(t, err)
	})

	t.Run("未知波次结果", func(t *testing.T) {
		instance, err := env.encounter.Start(ctx, "molten-depths", fiveParticipantRoster())
		require.NoError(t, err)
		_, err = env.encounter.AdvanceWave(ctx, instance.ID, "retreated")
		require.Error(t, err)
	})

	t.Run("未知实例", func(t *testing.T) {
		_, err := env.encounter.AdvanceWave(ctx, "no-such-instance", raidmodel.OutcomeCleared)
		require.Error(t, err)
		var appErr *xerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, xerrors.CodeInstanceNotFound, appErr.Code)
	})
}
