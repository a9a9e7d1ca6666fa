package handler

import (
	"github.com/labstack/echo/v4"

	raidreq "tsu-raid/internal/model/request/raid"
	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/response"
	"tsu-raid/internal/pkg/validator"
)

// LootHandler 掉落生成 Handler
type LootHandler struct {
	loot       *service.LootService
	respWriter response.Writer
}

// NewLootHandler 创建掉落生成 Handler
func NewLootHandler(c *service.ServiceContainer, respWriter response.Writer) *LootHandler {
	return &LootHandler{
		loot:       c.Loot,
		respWriter: respWriter,
	}
}

// GenerateLoot 生成一件物品
func (h *LootHandler) GenerateLoot(c echo.Context) error {
	var req raidreq.GenerateLootRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		friendlyMsg := validator.TranslateValidationError(err)
		return response.EchoBadRequest(c, h.respWriter, friendlyMsg)
	}

	item, err := h.loot.Generate(c.Request().Context(),
		req.EncounterID, req.Difficulty, req.Role, req.Slot, req.Level)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, item)
}
