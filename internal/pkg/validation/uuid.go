// Package validation 提供通用的验证工具和中间件
package validation

import (
	"regexp"

	"github.com/labstack/echo/v4"

	"tsu-raid/internal/pkg/response"
)

// UUID 正则表达式
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID 检查字符串是否是有效的 UUID
func IsValidUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// UUIDValidationMiddleware 验证路径参数中的 UUID 格式
// 使用白名单机制，只验证明确应该是 UUID 的参数
// 副本 ID（encounter_id）是目录里的短标识，不在白名单内
func UUIDValidationMiddleware(respWriter response.Writer) echo.MiddlewareFunc {
	// UUID 参数白名单（这些参数必须是 UUID）
	uuidParams := map[string]bool{
		"id":          true, // 副本实例 ID
		"instance_id": true, // 副本实例 ID（显式命名时）
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 获取所有路径参数
			params := c.ParamNames()

			for _, paramName := range params {
				// 只验证白名单中的参数
				if uuidParams[paramName] {
					paramValue := c.Param(paramName)

					// 如果参数非空且不是有效的 UUID，返回 404
					if paramValue != "" && !IsValidUUID(paramValue) {
						return response.EchoNotFound(c, respWriter, "资源", paramValue)
					}
				}
			}

			return next(c)
		}
	}
}
