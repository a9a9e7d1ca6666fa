package entity

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

// EncounterRecord 终态副本实例的归档实体
type EncounterRecord struct {
	// 主键：实例 ID
	InstanceID string `db:"instance_id" json:"instance_id"`

	EncounterID string `db:"encounter_id" json:"encounter_id"`
	Difficulty  string `db:"difficulty" json:"difficulty"`
	FinalState  string `db:"final_state" json:"final_state"`
	WaveIndex   int    `db:"wave_index" json:"wave_index"`

	// 名单与奖励快照 JSON
	Roster  json.RawMessage `db:"roster" json:"roster"`
	Rewards null.JSON       `db:"rewards" json:"rewards,omitempty"`

	StartedAt time.Time `db:"started_at" json:"started_at"`
	EndedAt   null.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
