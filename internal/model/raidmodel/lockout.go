package raidmodel

import "time"

// LockoutRecord 每个 (参战者, 副本) 一条,记录最近一次领取完成奖励的时间
type LockoutRecord struct {
	ParticipantID string    `json:"participant_id"`
	EncounterID   string    `json:"encounter_id"`
	CompletedAt   time.Time `json:"completed_at"`
	ResetAt       time.Time `json:"reset_at"`
}

// LockoutStatus 锁定查询结果,未锁定时 ResetAt 为空
type LockoutStatus struct {
	Locked  bool       `json:"locked"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

// ActiveLockout 仍在生效的锁定及剩余时间
type ActiveLockout struct {
	EncounterID string        `json:"encounter_id"`
	ResetAt     time.Time     `json:"reset_at"`
	Remaining   time.Duration `json:"remaining"`
}
