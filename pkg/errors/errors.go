package errors

import (
	"errors"
	"fmt"
)

// ErrValidation 参数校验失败（所有 ValidationError 均可通过 errors.Is 匹配）
var ErrValidation = errors.New("参数校验失败")

// ValidationError 带字段信息的校验错误，Handler 层据此返回逐字段提示
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid 构造字段校验错误
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation 提取 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
