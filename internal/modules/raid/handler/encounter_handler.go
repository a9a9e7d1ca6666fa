package handler

import (
	"github.com/labstack/echo/v4"

	raidreq "tsu-raid/internal/model/request/raid"
	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/response"
	"tsu-raid/internal/pkg/validator"
)

// EncounterHandler 副本生命周期 Handler
type EncounterHandler struct {
	catalog    *service.CatalogService
	encounter  *service.EncounterService
	respWriter response.Writer
}

// NewEncounterHandler 创建副本生命周期 Handler
func NewEncounterHandler(c *service.ServiceContainer, respWriter response.Writer) *EncounterHandler {
	return &EncounterHandler{
		catalog:    c.Catalog,
		encounter:  c.Encounter,
		respWriter: respWriter,
	}
}

// GetEncounter 查询副本模板
func (h *EncounterHandler) GetEncounter(c echo.Context) error {
	encounterID := c.Param("id")
	if encounterID == "" {
		return response.EchoBadRequest(c, h.respWriter, "副本 ID 不能为空")
	}

	def, err := h.catalog.Get(encounterID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, def)
}

// ListEncounters 列出全部副本模板
func (h *EncounterHandler) ListEncounters(c echo.Context) error {
	return response.EchoOK(c, h.respWriter, h.catalog.List())
}

// StartEncounter 为一支队伍开启副本实例
func (h *EncounterHandler) StartEncounter(c echo.Context) error {
	// 1. 绑定和验证 HTTP 请求
	var req raidreq.StartEncounterRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		friendlyMsg := validator.TranslateValidationError(err)
		return response.EchoBadRequest(c, h.respWriter, friendlyMsg)
	}

	encounterID := c.Param("id")
	if encounterID == "" {
		return response.EchoBadRequest(c, h.respWriter, "副本 ID 不能为空")
	}

	// 2. 转换为领域名单
	roster := make([]raidmodel.Participant, 0, len(req.Roster))
	for _, m := range req.Roster {
		roster = append(roster, raidmodel.Participant{
			ID:    m.ParticipantID,
			Role:  m.Role,
			Level: m.Level,
			Power: m.Power,
		})
	}

	// 3. 调用 Service
	instance, err := h.encounter.Start(c.Request().Context(), encounterID, roster)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, instance)
}

// GetInstance 查询实例状态
func (h *EncounterHandler) GetInstance(c echo.Context) error {
	instance, err := h.encounter.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, instance)
}

// AdvanceWave 上报一个波次的结果
func (h *EncounterHandler) AdvanceWave(c echo.Context) error {
	var req raidreq.AdvanceWaveRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		friendlyMsg := validator.TranslateValidationError(err)
		return response.EchoBadRequest(c, h.respWriter, friendlyMsg)
	}

	instance, err := h.encounter.AdvanceWave(c.Request().Context(), c.Param("id"), req.Outcome)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	// 完成时附带结算结果
	if instance.State == raidmodel.StateCompleted {
		if result, ok := h.encounter.Result(c.Request().Context(), instance.ID); ok {
			return response.EchoOK(c, h.respWriter, map[string]any{
				"instance": instance,
				"rewards":  result,
			})
		}
	}
	return response.EchoOK(c, h.respWriter, instance)
}

// ForceExpire 管理操作:强制过期实例
func (h *EncounterHandler) ForceExpire(c echo.Context) error {
	instance, err := h.encounter.ForceExpire(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, instance)
}
