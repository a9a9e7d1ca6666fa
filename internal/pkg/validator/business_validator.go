package validator

import (
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// 副本域的自定义验证规则,在 New 中统一注册
// 请求 DTO 通过 validate 标签引用这些规则

// 副本目录短标识:小写字母开头,小写字母/数字/连字符,2-64 字符,不以连字符结尾
var encounterCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// registerRaidRules 注册副本域自定义验证规则
func registerRaidRules(v *validator.Validate) {
	v.RegisterValidation("encounter_code", validateEncounterCode)
	v.RegisterValidation("role_code", validateRoleCode)
	v.RegisterValidation("slot_code", validateSlotCode)
	v.RegisterValidation("difficulty_code", validateDifficultyCode)
	v.RegisterValidation("positive_number", validatePositiveNumber)
}

// validateEncounterCode 验证副本目录短标识格式
func validateEncounterCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) < 2 || len(code) > 64 {
		return false
	}
	return encounterCodeRegex.MatchString(code)
}

// validateRoleCode 验证职责代码
func validateRoleCode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "tank", "healer", "dps":
		return true
	}
	return false
}

// validateSlotCode 验证装备槽位代码
func validateSlotCode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "weapon", "helmet", "chest", "boots", "trinket":
		return true
	}
	return false
}

// validateDifficultyCode 验证难度代码
func validateDifficultyCode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "normal", "heroic", "mythic":
		return true
	}
	return false
}

// validatePositiveNumber 验证正数
func validatePositiveNumber(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fl.Field().Uint() > 0
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	}
	return false
}
