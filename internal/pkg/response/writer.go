// File: internal/pkg/response/writer.go
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tsu-raid/internal/pkg/ctxkey"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/xerrors"
)

// Writer 统一响应写入接口，Handler 通过它输出成功与失败响应
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

type responseHandler struct {
	logger log.Logger
}

// NewResponseHandler 创建默认的响应写入器
func NewResponseHandler() Writer {
	return &responseHandler{logger: log.GetLogger()}
}

// WriteSuccess 写入成功响应
func (h *responseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &ResponseResult[any]{
		Code:      int(xerrors.CodeSuccess),
		Message:   "操作成功",
		Data:      &data,
		Timestamp: time.Now().Unix(),
		TraceId:   ctxkey.GetString(ctx, ctxkey.TraceID),
	}
	JSON(w, http.StatusOK, resp)
	return nil
}

// WriteError 写入错误响应，AppError 按业务码映射 HTTP 状态
func (h *responseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	appErr := toAppError(err)

	if appErr.Level == xerrors.LevelError || appErr.Level == xerrors.LevelCritical {
		log.LogAppError(ctx, "请求处理失败", appErr)
	}

	resp := Error[EmptyData](int(appErr.Code), appErr.Message, appErr.Error())
	resp.TraceId = ctxkey.GetString(ctx, ctxkey.TraceID)
	JSON(w, httpStatusFromCode(appErr.Code), resp)
	return nil
}

// WriteJSON 直接写入 JSON 响应（跳过 ResponseResult 包装）
func (h *responseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func toAppError(err error) *xerrors.AppError {
	var appErr *xerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return xerrors.Wrap(err, xerrors.CodeInternalError, "内部服务错误")
}

// httpStatusFromCode 业务码到 HTTP 状态码的映射
func httpStatusFromCode(code xerrors.ErrorCode) int {
	switch code {
	case xerrors.CodeSuccess:
		return http.StatusOK
	case xerrors.CodeInvalidParams, xerrors.CodeInvalidRequest,
		xerrors.CodeRosterRequirementUnmet, xerrors.CodeUnknownRole, xerrors.CodeUnknownSlot:
		return http.StatusBadRequest
	case xerrors.CodePermissionDenied:
		return http.StatusForbidden
	case xerrors.CodeResourceNotFound, xerrors.CodeEncounterNotFound, xerrors.CodeInstanceNotFound:
		return http.StatusNotFound
	case xerrors.CodeDuplicateResource, xerrors.CodeResourceLocked,
		xerrors.CodeEncounterTerminal, xerrors.CodeLockoutActive, xerrors.CodeInventoryFull:
		return http.StatusConflict
	case xerrors.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case xerrors.CodeDatabaseError, xerrors.CodeCacheError, xerrors.CodeMessageQueueError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
