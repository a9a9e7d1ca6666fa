// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"tsu-raid/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	// 1xxxxx: 通用错误码
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	// 3xxxxx: 权限相关错误码
	xerrors.CodePermissionDenied: {language.Chinese: "权限不足", language.English: "Permission denied"},

	// 6xxxxx: 业务逻辑错误码
	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},
	xerrors.CodeResourceLocked:      {language.Chinese: "资源被锁定", language.English: "Resource locked"},

	// 7xxxxx: 外部服务错误码
	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},

	// 8xxxxx: 副本业务错误码
	// 副本目录相关 (80xxxx)
	xerrors.CodeEncounterNotFound: {language.Chinese: "副本不存在", language.English: "Encounter not found"},
	xerrors.CodeCatalogInvalid:    {language.Chinese: "副本目录配置无效", language.English: "Invalid encounter catalog"},
	xerrors.CodeUnknownRole:       {language.Chinese: "未知职责", language.English: "Unknown role archetype"},
	xerrors.CodeUnknownSlot:       {language.Chinese: "未知装备槽位", language.English: "Unknown equipment slot"},

	// 副本实例相关 (81xxxx)
	xerrors.CodeInstanceNotFound:       {language.Chinese: "副本实例不存在", language.English: "Encounter instance not found"},
	xerrors.CodeEncounterTerminal:      {language.Chinese: "副本已结束", language.English: "Encounter already ended"},
	xerrors.CodeRosterRequirementUnmet: {language.Chinese: "队伍不满足进入条件", language.English: "Roster requirements not met"},

	// 奖励发放相关 (82xxxx)
	xerrors.CodeLockoutActive: {language.Chinese: "奖励冷却中", language.English: "Reward lockout active"},
	xerrors.CodeInventoryFull: {language.Chinese: "背包已满", language.English: "Inventory full"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		// 如果指定语言没有翻译，返回中文（默认）
		if msg, ok := messages[language.Chinese]; ok {
			return msg
		}
	}
	// 如果完全没有定义，返回通用错误消息
	if lang == language.English {
		return "Unknown error"
	}
	return "未知错误"
}
