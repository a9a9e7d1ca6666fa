package handler

import (
	"context"
	"encoding/json"
	"time"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/xerrors"
)

// RaidRPCHandler 供其他模块调用的 RPC 处理器
// 载荷使用 JSON 编码
type RaidRPCHandler struct {
	container *service.ServiceContainer
}

// NewRaidRPCHandler 创建 RPC 处理器
func NewRaidRPCHandler(container *service.ServiceContainer) *RaidRPCHandler {
	return &RaidRPCHandler{container: container}
}

type lockoutStatusRPCRequest struct {
	ParticipantID string `json:"participant_id"`
	EncounterID   string `json:"encounter_id"`
}

type lockoutStatusRPCResponse struct {
	Locked  bool       `json:"locked"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

// GetLockoutStatus 查询参战者在某副本上的锁定状态
func (h *RaidRPCHandler) GetLockoutStatus(data []byte) ([]byte, error) {
	req := &lockoutStatusRPCRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid json payload")
	}
	if req.ParticipantID == "" || req.EncounterID == "" {
		return nil, xerrors.NewValidationError("request", "participant_id and encounter_id are required")
	}

	status := h.container.Lockout.Status(context.Background(), req.ParticipantID, req.EncounterID)

	return json.Marshal(&lockoutStatusRPCResponse{
		Locked:  status.Locked,
		ResetAt: status.ResetAt,
	})
}

type generateLootRPCRequest struct {
	EncounterID string `json:"encounter_id"`
	Difficulty  string `json:"difficulty"`
	Role        string `json:"role"`
	Slot        string `json:"slot"`
	Level       int    `json:"level"`
}

// GenerateLoot 为战斗结算服务生成一件掉落
func (h *RaidRPCHandler) GenerateLoot(data []byte) ([]byte, error) {
	req := &generateLootRPCRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid json payload")
	}

	item, err := h.container.Loot.Generate(
		context.Background(),
		req.EncounterID,
		raidmodel.Difficulty(req.Difficulty),
		raidmodel.RoleArchetype(req.Role),
		raidmodel.EquipmentSlot(req.Slot),
		req.Level,
	)
	if err != nil {
		return nil, err
	}

	return json.Marshal(item)
}

type forceExpireRPCRequest struct {
	InstanceID string `json:"instance_id"`
}

// ForceExpireInstance 管理端强制过期一个副本实例
func (h *RaidRPCHandler) ForceExpireInstance(data []byte) ([]byte, error) {
	req := &forceExpireRPCRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid json payload")
	}
	if req.InstanceID == "" {
		return nil, xerrors.NewValidationError("instance_id", "instance_id is required")
	}

	instance, err := h.container.Encounter.ForceExpire(context.Background(), req.InstanceID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(instance)
}
