package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	raidreq "tsu-raid/internal/model/request/raid"
	"tsu-raid/internal/model/raidmodel"
)

func TestRaidRules(t *testing.T) {
	v := New()

	t.Run("合法的掉落请求通过验证", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "molten-depths",
			Difficulty:  raidmodel.DifficultyHeroic,
			Role:        raidmodel.RoleTank,
			Slot:        raidmodel.SlotWeapon,
			Level:       30,
		}
		assert.NoError(t, v.Validate(&req))
	})

	t.Run("非法难度被拒绝", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "molten-depths",
			Difficulty:  raidmodel.Difficulty("nightmare"),
			Role:        raidmodel.RoleTank,
			Slot:        raidmodel.SlotWeapon,
			Level:       30,
		}
		assert.Error(t, v.Validate(&req))
	})

	t.Run("非法职责被拒绝", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "molten-depths",
			Difficulty:  raidmodel.DifficultyNormal,
			Role:        raidmodel.RoleArchetype("bard"),
			Slot:        raidmodel.SlotWeapon,
			Level:       30,
		}
		assert.Error(t, v.Validate(&req))
	})

	t.Run("非法槽位被拒绝", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "molten-depths",
			Difficulty:  raidmodel.DifficultyNormal,
			Role:        raidmodel.RoleHealer,
			Slot:        raidmodel.EquipmentSlot("ring"),
			Level:       30,
		}
		assert.Error(t, v.Validate(&req))
	})

	t.Run("非法副本标识被拒绝", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "Molten Depths!",
			Difficulty:  raidmodel.DifficultyNormal,
			Role:        raidmodel.RoleDPS,
			Slot:        raidmodel.SlotBoots,
			Level:       30,
		}
		assert.Error(t, v.Validate(&req))
	})

	t.Run("队伍名单逐项验证", func(t *testing.T) {
		req := raidreq.StartEncounterRequest{
			Roster: []raidreq.RosterMember{
				{ParticipantID: "p1", Role: raidmodel.RoleTank, Level: 10, Power: 100},
				{ParticipantID: "p2", Role: raidmodel.RoleArchetype("bard"), Level: 10, Power: 100},
			},
		}
		assert.Error(t, v.Validate(&req))
	})
}

func TestTranslateValidationError(t *testing.T) {
	v := New()

	t.Run("难度错误翻译为中文提示", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "molten-depths",
			Difficulty:  raidmodel.Difficulty("nightmare"),
			Role:        raidmodel.RoleTank,
			Slot:        raidmodel.SlotWeapon,
			Level:       30,
		}
		err := v.Validate(&req)
		require.Error(t, err)
		msg := TranslateValidationError(err)
		assert.Equal(t, "难度必须是 normal、heroic 或 mythic", msg)
	})

	t.Run("缺失字段翻译为不能为空", func(t *testing.T) {
		req := raidreq.AdvanceWaveRequest{}
		err := v.Validate(&req)
		require.Error(t, err)
		msg := TranslateValidationError(err)
		assert.Equal(t, "波次结果不能为空", msg)
	})

	t.Run("逐条翻译携带字段信息", func(t *testing.T) {
		req := raidreq.GenerateLootRequest{
			EncounterID: "x",
			Difficulty:  raidmodel.DifficultyNormal,
			Role:        raidmodel.RoleTank,
			Slot:        raidmodel.SlotWeapon,
			Level:       0,
		}
		err := v.Validate(&req)
		require.Error(t, err)
		errors := TranslateValidationErrors(err)
		require.NotEmpty(t, errors)
		assert.Equal(t, "副本ID", errors[0].Field)
		assert.Equal(t, "encounter_code", errors[0].Tag)
	})

	t.Run("非验证错误返回通用提示", func(t *testing.T) {
		errors := TranslateValidationErrors(assert.AnError)
		require.Len(t, errors, 1)
		assert.Equal(t, "验证失败", errors[0].Message)
	})
}
