package service

import "fmt"

// ValidationError 业务校验失败：客户端修正购物车后可重试。
// 管线内任何一处校验失败都会中止整个结算，不做部分提交。
type ValidationError struct {
	Level   string // success / info / warning / error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid 构造 warning 级别的校验错误
func Invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Level: "warning", Message: fmt.Sprintf(format, args...)}
}
