package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a user-friendly validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// TranslateValidationErrors converts validator errors to user-friendly messages
func TranslateValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{
			Field:   "unknown",
			Message: "验证失败",
			Tag:     "unknown",
		}}
	}

	for _, fieldError := range validationErrors {
		errors = append(errors, ValidationError{
			Field:   getFieldName(fieldError.Field()),
			Message: translateFieldError(fieldError),
			Tag:     fieldError.Tag(),
			Value:   sanitizeValue(fieldError.Value()),
		})
	}

	return errors
}

// TranslateValidationError 提取首条验证错误的友好提示,供 Handler 直接返回
func TranslateValidationError(err error) string {
	errors := TranslateValidationErrors(err)
	if len(errors) == 0 {
		return "请求参数验证失败"
	}
	return errors[0].Message
}

// sanitizeValue 截断过长的字段值,避免错误信息泄露大段请求体
func sanitizeValue(value interface{}) string {
	str := fmt.Sprintf("%v", value)
	if len(str) > 50 {
		return str[:50] + "..."
	}
	return str
}

// translateFieldError 将单个字段错误翻译为中文提示
func translateFieldError(fe validator.FieldError) string {
	fieldName := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", fieldName)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s长度不能少于%s个字符", fieldName, fe.Param())
		}
		return fmt.Sprintf("%s不能小于%s", fieldName, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s长度不能超过%s个字符", fieldName, fe.Param())
		}
		return fmt.Sprintf("%s不能大于%s", fieldName, fe.Param())
	case "gte":
		return fmt.Sprintf("%s不能小于%s", fieldName, fe.Param())
	case "lte":
		return fmt.Sprintf("%s不能大于%s", fieldName, fe.Param())
	case "gt":
		return fmt.Sprintf("%s必须大于%s", fieldName, fe.Param())
	case "lt":
		return fmt.Sprintf("%s必须小于%s", fieldName, fe.Param())
	case "len":
		return fmt.Sprintf("%s长度必须为%s个字符", fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s必须是以下值之一: %s", fieldName, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s必须是有效的UUID格式", fieldName)
	case "dive":
		return fmt.Sprintf("%s中存在无效项", fieldName)
	case "encounter_code":
		return fmt.Sprintf("%s格式不正确,应为2-64位小写字母、数字和连字符组成的标识", fieldName)
	case "role_code":
		return fmt.Sprintf("%s必须是 tank、healer 或 dps", fieldName)
	case "slot_code":
		return fmt.Sprintf("%s必须是 weapon、helmet、chest、boots 或 trinket", fieldName)
	case "difficulty_code":
		return fmt.Sprintf("%s必须是 normal、heroic 或 mythic", fieldName)
	case "positive_number":
		return fmt.Sprintf("%s必须是正数", fieldName)
	default:
		return fmt.Sprintf("%s格式不正确", fieldName)
	}
}

// getFieldName 将结构体字段名映射为中文字段名
func getFieldName(field string) string {
	fieldNames := map[string]string{
		"ParticipantID": "参战者ID",
		"Roster":        "队伍名单",
		"Role":          "职责",
		"Slot":          "装备槽位",
		"Level":         "等级",
		"Power":         "战力",
		"EncounterID":   "副本ID",
		"InstanceID":    "实例ID",
		"Difficulty":    "难度",
		"Outcome":       "波次结果",
		"Seed":          "随机种子",
	}

	if chineseName, exists := fieldNames[field]; exists {
		return chineseName
	}

	return smartConvertFieldName(field)
}

// smartConvertFieldName 按驼峰拆分未映射的字段名
func smartConvertFieldName(field string) string {
	var result strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
