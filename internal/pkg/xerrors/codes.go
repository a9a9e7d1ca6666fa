// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在已知范围内
func (c ErrorCode) IsValid() bool {
	_, ok := codeMessages[c]
	return ok
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	return fmt.Sprintf("%d", int(c))
}

// Message 返回错误码对应的默认消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return codeMessages[CodeInternalError]
}

// ToInt 返回错误码的整数值
func (c ErrorCode) ToInt() int {
	return int(c)
}

// ==================== 通用错误码 (100xxx) ====================
const (
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制
)

// ==================== 权限错误码 (300xxx) ====================
const (
	CodePermissionDenied ErrorCode = 300001 // 权限不足
)

// ==================== 业务错误码 (600xxx) ====================
const (
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许
	CodeResourceLocked      ErrorCode = 600004 // 资源被锁定
)

// ==================== 外部依赖错误码 (700xxx) ====================
const (
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误
)

// ==================== 副本/奖励错误码 (830xxx) ====================
const (
	CodeEncounterNotFound      ErrorCode = 830001 // 副本配置不存在
	CodeInstanceNotFound       ErrorCode = 830002 // 副本实例不存在
	CodeEncounterTerminal      ErrorCode = 830003 // 副本已结束
	CodeRosterRequirementUnmet ErrorCode = 830004 // 队伍不满足准入条件
	CodeLockoutActive          ErrorCode = 830005 // 副本锁定期内
	CodeInventoryFull          ErrorCode = 830006 // 背包空间不足
	CodeUnknownRole            ErrorCode = 830007 // 未知职责类型
	CodeUnknownSlot            ErrorCode = 830008 // 未知装备槽位
	CodeCatalogInvalid         ErrorCode = 830009 // 副本配置校验失败
)

// codeMessages 错误码默认消息
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodePermissionDenied: "权限不足",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",
	CodeResourceLocked:      "资源被锁定",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",

	CodeEncounterNotFound:      "副本配置不存在",
	CodeInstanceNotFound:       "副本实例不存在",
	CodeEncounterTerminal:      "副本已结束",
	CodeRosterRequirementUnmet: "队伍不满足准入条件",
	CodeLockoutActive:          "副本锁定期内",
	CodeInventoryFull:          "背包空间不足",
	CodeUnknownRole:            "未知职责类型",
	CodeUnknownSlot:            "未知装备槽位",
	CodeCatalogInvalid:         "副本配置校验失败",
}

// getCategoryByCode 根据错误码推断错误分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 830000 && code < 840000:
		return "raid"
	case code >= 700000 && code < 800000:
		return "external"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 300000 && code < 400000:
		return "permission"
	default:
		return "system"
	}
}

// getLevelByCode 根据错误码推断默认级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch code {
	case CodeInternalError, CodeDatabaseError, CodeCatalogInvalid:
		return LevelCritical
	case CodeCacheError, CodeMessageQueueError, CodeExternalServiceError:
		return LevelError
	case CodeLockoutActive, CodeInventoryFull, CodeEncounterTerminal:
		return LevelWarn
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码推断是否可重试
// 注意: 批量写失败不在此列——刷盘失败的块按策略直接丢弃，不做自动重试
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeCacheError, CodeMessageQueueError, CodeExternalServiceError, CodeRateLimitExceeded:
		return true
	default:
		return false
	}
}
