package raid

import "tsu-raid/internal/model/raidmodel"

// StartEncounterRequest HTTP API 开启副本请求
type StartEncounterRequest struct {
	Roster []RosterMember `json:"roster" validate:"required,min=1,dive"`
}

// RosterMember 开启副本时的队员信息
type RosterMember struct {
	ParticipantID string                  `json:"participant_id" validate:"required"`
	Role          raidmodel.RoleArchetype `json:"role" validate:"required,role_code"`
	Level         int                     `json:"level" validate:"required,positive_number"`
	Power         int                     `json:"power" validate:"min=0"`
}

// AdvanceWaveRequest HTTP API 上报波次结果请求
type AdvanceWaveRequest struct {
	Outcome raidmodel.WaveOutcome `json:"outcome" validate:"required,oneof=cleared wiped"`
}

// GenerateLootRequest HTTP API 掉落生成请求
type GenerateLootRequest struct {
	EncounterID string                  `json:"encounter_id" validate:"required,encounter_code"`
	Difficulty  raidmodel.Difficulty    `json:"difficulty" validate:"required,difficulty_code"`
	Role        raidmodel.RoleArchetype `json:"role" validate:"required,role_code"`
	Slot        raidmodel.EquipmentSlot `json:"slot" validate:"required,slot_code"`
	Level       int                     `json:"level" validate:"required,positive_number"`
}
