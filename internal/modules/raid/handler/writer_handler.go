package handler

import (
	"github.com/labstack/echo/v4"

	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/response"
)

// WriterHandler 批量写入器管理 Handler
type WriterHandler struct {
	writer     *batchwriter.Coalescer
	respWriter response.Writer
}

// NewWriterHandler 创建批量写入器 Handler
func NewWriterHandler(c *service.ServiceContainer, respWriter response.Writer) *WriterHandler {
	return &WriterHandler{
		writer:     c.Writer,
		respWriter: respWriter,
	}
}

// Flush 管理操作:同步刷写全部待写数据
func (h *WriterHandler) Flush(c echo.Context) error {
	h.writer.ForceFlush(c.Request().Context())
	return response.EchoOK(c, h.respWriter, map[string]any{
		"pending": h.writer.PendingCount(),
	})
}

// Pending 查询当前待写实体数
func (h *WriterHandler) Pending(c echo.Context) error {
	return response.EchoOK(c, h.respWriter, map[string]any{
		"pending": h.writer.PendingCount(),
	})
}
