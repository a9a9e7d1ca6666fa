package raidmodel

import "time"

// Difficulty 难度档位
type Difficulty string

const (
	DifficultyNormal Difficulty = "normal"
	DifficultyHeroic Difficulty = "heroic"
	DifficultyMythic Difficulty = "mythic"
)

// EncounterState 副本实例生命周期状态
type EncounterState string

const (
	StateIdle       EncounterState = "idle"
	StateRecruiting EncounterState = "recruiting"
	StateInProgress EncounterState = "in_progress"
	StateBossPhase  EncounterState = "boss_phase"
	StateCompleted  EncounterState = "completed"
	StateFailed     EncounterState = "failed"
	StateExpired    EncounterState = "expired"
)

// IsTerminal 终态之后不再发生任何波次转移
func (s EncounterState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateExpired
}

// WaveOutcome 单个波次的战斗结果
type WaveOutcome string

const (
	OutcomeCleared WaveOutcome = "cleared"
	OutcomeWiped   WaveOutcome = "wiped"
)

// RoleArchetype 职业定位
type RoleArchetype string

const (
	RoleTank   RoleArchetype = "tank"
	RoleHealer RoleArchetype = "healer"
	RoleDPS    RoleArchetype = "dps"
)

// Wave 副本中的一个波次
type Wave struct {
	Name       string `json:"name"`
	EnemyCount int    `json:"enemy_count"`
	Power      int    `json:"power"`
}

// BossDescriptor 首领描述
type BossDescriptor struct {
	Name          string `json:"name"`
	HP            int64  `json:"hp"`
	Attack        int    `json:"attack"`
	EnrageSeconds int    `json:"enrage_seconds"`
}

// Requirements 开启副本的最低要求
type Requirements struct {
	MinLevel     int `json:"min_level"`
	MinPower     int `json:"min_power"`
	MinPartySize int `json:"min_party_size"`
}

// RewardEnvelope 完成奖励封套。RoleWeights 为空时按人数均分,
// 非空时按职业权重加权分配金币与经验。
type RewardEnvelope struct {
	Gold        int64                     `json:"gold"`
	Experience  int64                     `json:"experience"`
	LootSlots   []EquipmentSlot           `json:"loot_slots"`
	RoleWeights map[RoleArchetype]float64 `json:"role_weights,omitempty"`
}

// EncounterDefinition 副本模板,加载后不可变
type EncounterDefinition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Difficulty   Difficulty     `json:"difficulty"`
	Waves        []Wave         `json:"waves"`
	Boss         BossDescriptor `json:"boss"`
	Requirements Requirements   `json:"requirements"`
	Reward       RewardEnvelope `json:"reward"`
}

// Participant 实例内的参战者快照,战斗累计值仅用于奖励权重
type Participant struct {
	ID          string        `json:"id"`
	Role        RoleArchetype `json:"role"`
	Level       int           `json:"level"`
	Power       int           `json:"power"`
	DamageDealt int64         `json:"damage_dealt"`
	HealingDone int64         `json:"healing_done"`
	Deaths      int           `json:"deaths"`
}

// EncounterInstance 一次副本挑战的运行态
type EncounterInstance struct {
	ID          string         `json:"id"`
	EncounterID string         `json:"encounter_id"`
	State       EncounterState `json:"state"`
	WaveIndex   int            `json:"wave_index"`
	Roster      []Participant  `json:"roster"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	EndedAt     *time.Time     `json:"ended_at,omitempty"`
}
