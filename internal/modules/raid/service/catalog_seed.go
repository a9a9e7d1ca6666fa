package service

import "tsu-raid/internal/model/raidmodel"

// defaultCatalogData 内置种子目录,未配置目录文件时使用
func defaultCatalogData() *CatalogData {
	return &CatalogData{
		Difficulties: map[raidmodel.Difficulty]*DifficultyProfile{
			raidmodel.DifficultyNormal: {
				Multiplier: 1.0,
				RarityWeights: []RarityWeight{
					{Rarity: raidmodel.RarityRare, Weight: 0.70},
					{Rarity: raidmodel.RarityEpic, Weight: 0.25},
					{Rarity: raidmodel.RarityLegendary, Weight: 0.05},
				},
			},
			raidmodel.DifficultyHeroic: {
				Multiplier: 1.25,
				RarityWeights: []RarityWeight{
					{Rarity: raidmodel.RarityRare, Weight: 0.55},
					{Rarity: raidmodel.RarityEpic, Weight: 0.32},
					{Rarity: raidmodel.RarityLegendary, Weight: 0.13},
				},
			},
			raidmodel.DifficultyMythic: {
				Multiplier: 1.6,
				RarityWeights: []RarityWeight{
					{Rarity: raidmodel.RarityRare, Weight: 0.40},
					{Rarity: raidmodel.RarityEpic, Weight: 0.38},
					{Rarity: raidmodel.RarityLegendary, Weight: 0.22},
				},
			},
		},

		RarityFactors: map[raidmodel.Rarity]float64{
			raidmodel.RarityRare:      1.2,
			raidmodel.RarityEpic:      1.5,
			raidmodel.RarityLegendary: 2.0,
		},

		StatTemplates: map[raidmodel.RoleArchetype]map[raidmodel.EquipmentSlot]raidmodel.StatBlock{
			raidmodel.RoleTank: {
				raidmodel.SlotWeapon:  {Attack: 6, Defense: 8, HP: 40},
				raidmodel.SlotHelmet:  {Attack: 2, Defense: 10, HP: 60},
				raidmodel.SlotChest:   {Attack: 2, Defense: 14, HP: 80},
				raidmodel.SlotBoots:   {Attack: 1, Defense: 7, HP: 35},
				raidmodel.SlotTrinket: {Attack: 3, Defense: 6, HP: 50},
			},
			raidmodel.RoleHealer: {
				raidmodel.SlotWeapon:  {Attack: 7, Defense: 4, HP: 30},
				raidmodel.SlotHelmet:  {Attack: 5, Defense: 5, HP: 40},
				raidmodel.SlotChest:   {Attack: 5, Defense: 8, HP: 55},
				raidmodel.SlotBoots:   {Attack: 3, Defense: 4, HP: 25},
				raidmodel.SlotTrinket: {Attack: 8, Defense: 3, HP: 35},
			},
			raidmodel.RoleDPS: {
				raidmodel.SlotWeapon:  {Attack: 10, Defense: 3, HP: 20},
				raidmodel.SlotHelmet:  {Attack: 7, Defense: 4, HP: 30},
				raidmodel.SlotChest:   {Attack: 8, Defense: 6, HP: 40},
				raidmodel.SlotBoots:   {Attack: 5, Defense: 3, HP: 18},
				raidmodel.SlotTrinket: {Attack: 9, Defense: 2, HP: 24},
			},
		},

		ProcPools: map[raidmodel.RoleArchetype][]raidmodel.ProcEffect{
			raidmodel.RoleTank: {
				{Name: "磐石壁垒", Kind: "shield", Magnitude: 120, Chance: 0.10},
				{Name: "荆棘反击", Kind: "reflect", Magnitude: 35, Chance: 0.15},
				{Name: "不屈意志", Kind: "heal_self", Magnitude: 80, Chance: 0.08},
				{Name: "嘲讽怒吼", Kind: "taunt", Magnitude: 1, Chance: 0.20},
			},
			raidmodel.RoleHealer: {
				{Name: "回春之雨", Kind: "heal_aoe", Magnitude: 60, Chance: 0.12},
				{Name: "圣光闪耀", Kind: "heal_burst", Magnitude: 150, Chance: 0.06},
				{Name: "净化之触", Kind: "cleanse", Magnitude: 1, Chance: 0.18},
				{Name: "生命链接", Kind: "link", Magnitude: 40, Chance: 0.10},
			},
			raidmodel.RoleDPS: {
				{Name: "烈焰爆发", Kind: "damage_burst", Magnitude: 200, Chance: 0.08},
				{Name: "致命连击", Kind: "extra_hit", Magnitude: 70, Chance: 0.14},
				{Name: "淬毒之刃", Kind: "dot", Magnitude: 25, Chance: 0.20},
				{Name: "破甲穿刺", Kind: "armor_break", Magnitude: 30, Chance: 0.12},
			},
		},

		UniqueItems: map[string]raidmodel.Item{
			"ember-citadel": {
				ID:     "unique-emberfang",
				Name:   "余烬之牙",
				Kind:   raidmodel.KindUnique,
				Rarity: raidmodel.RarityLegendary,
				Slot:   raidmodel.SlotWeapon,
				Stats:  raidmodel.StatBlock{Attack: 66, Defense: 12, HP: 90},
				Procs: []raidmodel.ProcEffect{
					{Name: "余烬灼烧", Kind: "dot", Magnitude: 55, Chance: 0.25},
				},
			},
		},

		Encounters: []raidmodel.EncounterDefinition{
			{
				ID:         "molten-depths",
				Name:       "熔岩深渊",
				Difficulty: raidmodel.DifficultyNormal,
				Waves: []raidmodel.Wave{
					{Name: "岩浆爬虫", EnemyCount: 6, Power: 120},
					{Name: "熔核卫兵", EnemyCount: 4, Power: 180},
					{Name: "深渊祭司", EnemyCount: 3, Power: 240},
				},
				Boss: raidmodel.BossDescriptor{
					Name: "熔岩领主", HP: 52000, Attack: 310, EnrageSeconds: 420,
				},
				Requirements: raidmodel.Requirements{MinLevel: 10, MinPower: 800, MinPartySize: 3},
				Reward: raidmodel.RewardEnvelope{
					Gold:       1500,
					Experience: 3200,
					LootSlots:  []raidmodel.EquipmentSlot{raidmodel.SlotWeapon},
				},
			},
			{
				ID:         "ember-citadel",
				Name:       "余烬堡垒",
				Difficulty: raidmodel.DifficultyHeroic,
				Waves: []raidmodel.Wave{
					{Name: "烬火哨兵", EnemyCount: 8, Power: 300},
					{Name: "堡垒射手", EnemyCount: 6, Power: 380},
					{Name: "焚世术士", EnemyCount: 4, Power: 460},
					{Name: "烈焰亲卫", EnemyCount: 4, Power: 560},
				},
				Boss: raidmodel.BossDescriptor{
					Name: "余烬君王", HP: 180000, Attack: 720, EnrageSeconds: 540,
				},
				Requirements: raidmodel.Requirements{MinLevel: 25, MinPower: 2400, MinPartySize: 5},
				Reward: raidmodel.RewardEnvelope{
					Gold:       5200,
					Experience: 11000,
					LootSlots:  []raidmodel.EquipmentSlot{raidmodel.SlotWeapon, raidmodel.SlotTrinket},
				},
			},
			{
				ID:         "void-spire",
				Name:       "虚空尖塔",
				Difficulty: raidmodel.DifficultyMythic,
				Waves: []raidmodel.Wave{
					{Name: "虚空行者", EnemyCount: 10, Power: 700},
					{Name: "扭曲幻影", EnemyCount: 8, Power: 880},
					{Name: "恐惧之眼", EnemyCount: 6, Power: 1050},
					{Name: "湮灭使徒", EnemyCount: 5, Power: 1300},
					{Name: "塔顶守誓者", EnemyCount: 3, Power: 1600},
				},
				Boss: raidmodel.BossDescriptor{
					Name: "虚空吞噬者", HP: 620000, Attack: 1900, EnrageSeconds: 600,
				},
				Requirements: raidmodel.Requirements{MinLevel: 45, MinPower: 7800, MinPartySize: 5},
				Reward: raidmodel.RewardEnvelope{
					Gold:       16000,
					Experience: 36000,
					LootSlots: []raidmodel.EquipmentSlot{
						raidmodel.SlotWeapon, raidmodel.SlotChest, raidmodel.SlotTrinket,
					},
					RoleWeights: map[raidmodel.RoleArchetype]float64{
						raidmodel.RoleTank:   1.2,
						raidmodel.RoleHealer: 1.1,
						raidmodel.RoleDPS:    1.0,
					},
				},
			},
		},
	}
}
