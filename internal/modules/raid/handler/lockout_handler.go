package handler

import (
	"github.com/labstack/echo/v4"

	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/response"
)

// LockoutHandler 锁定查询与管理 Handler
type LockoutHandler struct {
	lockout    *service.LockoutService
	respWriter response.Writer
}

// NewLockoutHandler 创建锁定 Handler
func NewLockoutHandler(c *service.ServiceContainer, respWriter response.Writer) *LockoutHandler {
	return &LockoutHandler{
		lockout:    c.Lockout,
		respWriter: respWriter,
	}
}

// GetStatus 查询 (参战者, 副本) 的锁定状态
func (h *LockoutHandler) GetStatus(c echo.Context) error {
	participantID := c.Param("participant_id")
	encounterID := c.Param("encounter_id")
	if participantID == "" || encounterID == "" {
		return response.EchoBadRequest(c, h.respWriter, "参战者 ID 与副本 ID 不能为空")
	}

	status := h.lockout.Status(c.Request().Context(), participantID, encounterID)
	return response.EchoOK(c, h.respWriter, status)
}

// ListActive 列出参战者当前生效的全部锁定
func (h *LockoutHandler) ListActive(c echo.Context) error {
	participantID := c.Param("participant_id")
	if participantID == "" {
		return response.EchoBadRequest(c, h.respWriter, "参战者 ID 不能为空")
	}

	active, err := h.lockout.ListActive(c.Request().Context(), participantID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, active)
}

// Reset 管理操作:解除锁定
func (h *LockoutHandler) Reset(c echo.Context) error {
	participantID := c.Param("participant_id")
	encounterID := c.Param("encounter_id")
	if participantID == "" || encounterID == "" {
		return response.EchoBadRequest(c, h.respWriter, "参战者 ID 与副本 ID 不能为空")
	}

	if err := h.lockout.Reset(c.Request().Context(), participantID, encounterID); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}
