package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsu-raid/internal/model/raidmodel"
)

func TestCatalogLoadSeed(t *testing.T) {
	catalog, err := NewCatalogService("")
	require.NoError(t, err)

	def, err := catalog.Get("molten-depths")
	require.NoError(t, err)
	assert.Equal(t, raidmodel.DifficultyNormal, def.Difficulty)
	assert.Len(t, def.Waves, 3)

	assert.Len(t, catalog.List(), 3)
}

func TestCatalogGetNotFound(t *testing.T) {
	catalog, err := NewCatalogService("")
	require.NoError(t, err)

	_, err = catalog.Get("no-such-encounter")
	require.Error(t, err)
}

func TestCatalogRejectsBadWeights(t *testing.T) {
	data := defaultCatalogData()
	data.Difficulties[raidmodel.DifficultyNormal].RarityWeights = []RarityWeight{
		{Rarity: raidmodel.RarityRare, Weight: 0.5},
		{Rarity: raidmodel.RarityEpic, Weight: 0.3},
	}

	_, err := NewCatalogServiceFromData(data)
	require.Error(t, err, "权重之和不为 1.0 应在加载期失败")
}

func TestCatalogRejectsEmptyWaves(t *testing.T) {
	data := defaultCatalogData()
	data.Encounters[0].Waves = nil

	_, err := NewCatalogServiceFromData(data)
	require.Error(t, err)
}

func TestCatalogRejectsUnknownDifficulty(t *testing.T) {
	data := defaultCatalogData()
	data.Encounters[0].Difficulty = "nightmare"

	_, err := NewCatalogServiceFromData(data)
	require.Error(t, err)
}

func TestSampleRarityCumulativeWalk(t *testing.T) {
	catalog, err := NewCatalogService("")
	require.NoError(t, err)

	profile, ok := catalog.Difficulty(raidmodel.DifficultyNormal)
	require.True(t, ok)

	// normal: rare 0.70 / epic 0.25 / legendary 0.05
	assert.Equal(t, raidmodel.RarityRare, profile.SampleRarity(0.0))
	assert.Equal(t, raidmodel.RarityRare, profile.SampleRarity(0.699))
	assert.Equal(t, raidmodel.RarityEpic, profile.SampleRarity(0.70))
	assert.Equal(t, raidmodel.RarityEpic, profile.SampleRarity(0.949))
	assert.Equal(t, raidmodel.RarityLegendary, profile.SampleRarity(0.95))
	assert.Equal(t, raidmodel.RarityLegendary, profile.SampleRarity(0.9999))
}
