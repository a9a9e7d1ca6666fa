package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/batchwriter"
)

func newRewardTestEnv(t *testing.T, inventory InventoryGate) (*RewardService, *raidTestEnv) {
	t.Helper()
	env := newRaidTestEnv(t, inventory)
	return env.encounter.reward, env
}

func testInstance(encounterID string, roster []raidmodel.Participant) *raidmodel.EncounterInstance {
	now := time.Now()
	return &raidmodel.EncounterInstance{
		ID:          "inst-test",
		EncounterID: encounterID,
		State:       raidmodel.StateCompleted,
		Roster:      roster,
		CreatedAt:   now.Add(-10 * time.Minute),
		ExpiresAt:   now.Add(time.Hour),
	}
}

func TestDistributeSkipsLockedParticipant(t *testing.T) {
	ctx := context.Background()
	reward, env := newRewardTestEnv(t, &fakeInventory{})

	// p1 已处于锁定
	_, err := env.lockout.Set(ctx, "p1", "molten-depths")
	require.NoError(t, err)

	def, err := env.encounter.catalog.Get("molten-depths")
	require.NoError(t, err)

	result, err := reward.Distribute(ctx, def, testInstance("molten-depths", fiveParticipantRoster()))
	require.NoError(t, err)
	require.Len(t, result.Rewards, 5)

	// 锁定者被跳过,份额在其余四人之间均分: 1500/4=375, 3200/4=800
	for _, r := range result.Rewards {
		if r.ParticipantID == "p1" {
			assert.True(t, r.SkippedLocked)
			assert.Zero(t, r.Gold)
			continue
		}
		assert.EqualValues(t, 375, r.Gold)
		assert.EqualValues(t, 800, r.Experience)
	}

	env.writer.ForceFlush(ctx)
	assert.Len(t, env.store.partition("participant"), 4)
}

func TestDistributeCapacityRejection(t *testing.T) {
	ctx := context.Background()
	reward, env := newRewardTestEnv(t, &fakeInventory{rejected: map[string]bool{"p3": true}})

	def, err := env.encounter.catalog.Get("molten-depths")
	require.NoError(t, err)

	result, err := reward.Distribute(ctx, def, testInstance("molten-depths", fiveParticipantRoster()))
	require.NoError(t, err)

	// 背包已满:物品被跳过,金币经验照常发放,错误上浮给调用方
	require.Len(t, result.CapacityErrors, 1)

	// 响应体携带本地化的拒收提示,默认语言为中文
	require.Len(t, result.CapacityNotices, 1)
	assert.Equal(t, "p3", result.CapacityNotices[0].ParticipantID)
	assert.Equal(t, "背包已满", result.CapacityNotices[0].Message)

	for _, r := range result.Rewards {
		if r.ParticipantID == "p3" {
			assert.True(t, r.ItemsRejected)
			assert.Empty(t, r.Items)
			assert.EqualValues(t, 300, r.Gold)
			assert.EqualValues(t, 640, r.Experience)
			continue
		}
		assert.Len(t, r.Items, 1)
	}

	// 被拒收者依然写入锁定
	assert.True(t, env.lockout.Status(ctx, "p3", "molten-depths").Locked)
}

func TestDistributeRoleWeightedSplit(t *testing.T) {
	ctx := context.Background()
	reward, env := newRewardTestEnv(t, &fakeInventory{})

	def, err := env.encounter.catalog.Get("void-spire")
	require.NoError(t, err)
	require.NotEmpty(t, def.Reward.RoleWeights)

	roster := []raidmodel.Participant{
		{ID: "p1", Role: raidmodel.RoleTank, Level: 50, Power: 2000},
		{ID: "p2", Role: raidmodel.RoleHealer, Level: 50, Power: 2000},
		{ID: "p3", Role: raidmodel.RoleDPS, Level: 50, Power: 2000},
	}

	result, err := reward.Distribute(ctx, def, testInstance("void-spire", roster))
	require.NoError(t, err)
	require.Len(t, result.Rewards, 3)

	byID := make(map[string]ParticipantReward, 3)
	var totalGold int64
	for _, r := range result.Rewards {
		byID[r.ParticipantID] = r
		totalGold += r.Gold
	}

	// tank 1.2 / healer 1.1 / dps 1.0,总权重 3.3
	goldPool := float64(16000)
	assert.EqualValues(t, int64(goldPool*1.2/3.3), byID["p1"].Gold)
	assert.EqualValues(t, int64(goldPool*1.1/3.3), byID["p2"].Gold)
	assert.EqualValues(t, int64(goldPool*1.0/3.3), byID["p3"].Gold)
	assert.Greater(t, byID["p1"].Gold, byID["p3"].Gold)
	assert.LessOrEqual(t, totalGold, def.Reward.Gold)
}

func TestDistributeAllLocked(t *testing.T) {
	ctx := context.Background()
	reward, env := newRewardTestEnv(t, &fakeInventory{})

	roster := fiveParticipantRoster()
	for _, p := range roster {
		_, err := env.lockout.Set(ctx, p.ID, "molten-depths")
		require.NoError(t, err)
	}

	def, err := env.encounter.catalog.Get("molten-depths")
	require.NoError(t, err)

	result, err := reward.Distribute(ctx, def, testInstance("molten-depths", roster))
	require.NoError(t, err)
	for _, r := range result.Rewards {
		assert.True(t, r.SkippedLocked)
	}

	env.writer.ForceFlush(ctx)
	assert.Empty(t, env.store.partition("participant"))
}

func TestQueueRewardIsSingleWrite(t *testing.T) {
	ctx := context.Background()
	reward, env := newRewardTestEnv(t, &fakeInventory{})

	def, err := env.encounter.catalog.Get("molten-depths")
	require.NoError(t, err)

	roster := fiveParticipantRoster()[:3]
	_, err = reward.Distribute(ctx, def, testInstance("molten-depths", roster))
	require.NoError(t, err)

	env.writer.ForceFlush(ctx)
	ops := env.store.partition("participant")
	require.Len(t, ops, 3)

	// 锁定与奖励打包在同一次写入中,无法被单独观察
	var op *batchwriter.WriteOp
	for i := range ops {
		if ops[i].EntityID == "p1" {
			op = &ops[i]
		}
	}
	require.NotNil(t, op)
	assert.Contains(t, op.Fields, "reward:inst-test")
	assert.Contains(t, op.Fields, "last_reward_at")
}
