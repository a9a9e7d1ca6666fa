package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsu-raid/internal/model/raidmodel"
)

func newTestCatalog(t *testing.T) *CatalogService {
	t.Helper()
	catalog, err := NewCatalogService("")
	require.NoError(t, err)
	return catalog
}

// 史诗必掉的目录,用于验证属性公式
func newEpicOnlyCatalog(t *testing.T) *CatalogService {
	t.Helper()
	data := defaultCatalogData()
	data.Difficulties[raidmodel.DifficultyHeroic].RarityWeights = []RarityWeight{
		{Rarity: raidmodel.RarityEpic, Weight: 1.0},
	}
	delete(data.UniqueItems, "ember-citadel")
	catalog, err := NewCatalogServiceFromData(data)
	require.NoError(t, err)
	return catalog
}

func TestGenerateStatFormula(t *testing.T) {
	catalog := newEpicOnlyCatalog(t)
	svc := NewLootService(catalog, rand.New(rand.NewSource(1)))

	// dps 武器模板攻击 10, heroic 1.25, epic 1.5, 等级 20 → floor(10*1.25*1.5*3.0)=56
	item, err := svc.Generate(context.Background(), "ember-citadel",
		raidmodel.DifficultyHeroic, raidmodel.RoleDPS, raidmodel.SlotWeapon, 20)
	require.NoError(t, err)

	assert.Equal(t, raidmodel.RarityEpic, item.Rarity)
	assert.Equal(t, 56, item.Stats.Attack)
	assert.Equal(t, raidmodel.KindGear, item.Kind)
}

func TestGenerateDeterministicWithFixedSeed(t *testing.T) {
	ctx := context.Background()

	roll := func() []*raidmodel.Item {
		svc := NewLootService(newTestCatalog(t), rand.New(rand.NewSource(42)))
		items := make([]*raidmodel.Item, 0, 20)
		for i := 0; i < 20; i++ {
			item, err := svc.Generate(ctx, "molten-depths",
				raidmodel.DifficultyNormal, raidmodel.RoleTank, raidmodel.SlotChest, 15)
			require.NoError(t, err)
			items = append(items, item)
		}
		return items
	}

	first := roll()
	second := roll()
	for i := range first {
		assert.Equal(t, first[i].Rarity, second[i].Rarity)
		assert.Equal(t, first[i].Stats, second[i].Stats)
		assert.Equal(t, first[i].Procs, second[i].Procs)
	}
}

func TestGenerateProcCounts(t *testing.T) {
	ctx := context.Background()
	svc := NewLootService(newTestCatalog(t), rand.New(rand.NewSource(7)))

	for i := 0; i < 2000; i++ {
		item, err := svc.Generate(ctx, "molten-depths",
			raidmodel.DifficultyMythic, raidmodel.RoleHealer, raidmodel.SlotTrinket, 50)
		require.NoError(t, err)

		switch item.Rarity {
		case raidmodel.RarityRare:
			assert.Empty(t, item.Procs)
		case raidmodel.RarityEpic:
			assert.Len(t, item.Procs, 2)
		case raidmodel.RarityLegendary:
			assert.Len(t, item.Procs, 3)
		}

		// 不放回抽取,特效不重复
		seen := make(map[string]bool, len(item.Procs))
		for _, proc := range item.Procs {
			assert.False(t, seen[proc.Name])
			seen[proc.Name] = true
		}
	}
}

func TestGenerateRarityFrequencies(t *testing.T) {
	ctx := context.Background()
	svc := NewLootService(newTestCatalog(t), rand.New(rand.NewSource(99)))

	const rolls = 100000
	counts := make(map[raidmodel.Rarity]int)
	// molten-depths 没有注册专属物品,不会触发覆盖判定
	for i := 0; i < rolls; i++ {
		item, err := svc.Generate(ctx, "molten-depths",
			raidmodel.DifficultyNormal, raidmodel.RoleDPS, raidmodel.SlotWeapon, 10)
		require.NoError(t, err)
		counts[item.Rarity]++
	}

	assert.InDelta(t, 0.70, float64(counts[raidmodel.RarityRare])/rolls, 0.01)
	assert.InDelta(t, 0.25, float64(counts[raidmodel.RarityEpic])/rolls, 0.01)
	assert.InDelta(t, 0.05, float64(counts[raidmodel.RarityLegendary])/rolls, 0.01)
}

func TestGenerateUniqueOverride(t *testing.T) {
	ctx := context.Background()
	svc := NewLootService(newTestCatalog(t), rand.New(rand.NewSource(3)))

	const rolls = 20000
	uniques := 0
	for i := 0; i < rolls; i++ {
		item, err := svc.Generate(ctx, "ember-citadel",
			raidmodel.DifficultyHeroic, raidmodel.RoleDPS, raidmodel.SlotWeapon, 30)
		require.NoError(t, err)
		if item.Kind == raidmodel.KindUnique {
			uniques++
			assert.Equal(t, "ember-citadel", item.EncounterID)
			assert.Equal(t, "unique-emberfang", item.ID)
		}
	}

	assert.InDelta(t, uniqueDropChance, float64(uniques)/rolls, 0.01)
}

func TestGenerateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewLootService(newTestCatalog(t), rand.New(rand.NewSource(1)))

	tests := []struct {
		name        string
		encounterID string
		role        raidmodel.RoleArchetype
		slot        raidmodel.EquipmentSlot
		level       int
	}{
		{"未知副本", "no-such", raidmodel.RoleDPS, raidmodel.SlotWeapon, 10},
		{"未知职业", "molten-depths", "bard", raidmodel.SlotWeapon, 10},
		{"未知槽位", "molten-depths", raidmodel.RoleDPS, "cape", 10},
		{"非法等级", "molten-depths", raidmodel.RoleDPS, raidmodel.SlotWeapon, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.Generate(ctx, tt.encounterID,
				raidmodel.DifficultyNormal, tt.role, tt.slot, tt.level)
			require.Error(t, err)
			assert.Nil(t, item, "校验失败不应产生半成品")
		})
	}
}
