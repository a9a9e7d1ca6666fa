package entity

import (
	"time"

	"github.com/aarondl/null/v8"
)

// LootDropRecord 掉落历史实体,用于审计与掉率分析
type LootDropRecord struct {
	ID            string      `db:"id" json:"id"`
	InstanceID    null.String `db:"instance_id" json:"instance_id,omitempty"`
	EncounterID   string      `db:"encounter_id" json:"encounter_id"`
	ParticipantID string      `db:"participant_id" json:"participant_id"`

	ItemID   string      `db:"item_id" json:"item_id"`
	ItemName string      `db:"item_name" json:"item_name"`
	Kind     string      `db:"kind" json:"kind"`
	Rarity   string      `db:"rarity" json:"rarity"`
	Slot     null.String `db:"slot" json:"slot,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
