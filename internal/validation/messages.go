package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/taskman/internal/model"
)

// toViolation はvalidatorのタグ違反を違反種別とメッセージに変換する。
func toViolation(path string, fe validator.FieldError) model.Violation {
	v := model.Violation{Path: path}
	switch fe.Tag() {
	case "required":
		v.Code = model.ViolationRequired
		v.Message = "Required"
	case "min":
		v.Code = model.ViolationTooShort
		v.Message = fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		v.Code = model.ViolationTooBig
		v.Message = fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	case "maxbytes":
		v.Code = model.ViolationTooBig
		v.Message = fmt.Sprintf("Must be at most %s bytes", fe.Param())
	case "email":
		v.Code = model.ViolationInvalidFormat
		v.Message = "Invalid email"
	case "oneof":
		v.Code = model.ViolationInvalidEnum
		v.Message = "Invalid enum value. Expected " + quoteOptions(fe.Param())
	default:
		v.Code = model.ViolationInvalid
		v.Message = "Invalid value"
	}
	return v
}

// quoteOptions は"USER ADMIN"を"'USER' | 'ADMIN'"の形式に整形する。
func quoteOptions(param string) string {
	opts := strings.Fields(param)
	for i, o := range opts {
		opts[i] = "'" + o + "'"
	}
	return strings.Join(opts, " | ")
}
