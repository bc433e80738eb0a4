// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// ErrorTypeValidation 用户输入校验失败，未发出任何请求
	ErrorTypeValidation ErrorType = "validation_error"
	// ErrorTypeSchema 上游响应结构不符合预期
	ErrorTypeSchema ErrorType = "schema_error"
	// ErrorTypeNetwork 上游请求失败或瞬时故障
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeDecode base64或PCM载荷格式错误
	ErrorTypeDecode ErrorType = "decode_error"
	// ErrorTypeConflict 冲突（收藏已存在是合法结果，不是故障）
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeStorage 持久化存储读写失败
	ErrorTypeStorage ErrorType = "storage_error"
	// ErrorTypeNotFound 未找到
	ErrorTypeNotFound ErrorType = "not_found"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError 创建输入校验错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewSchemaError 创建上游结构校验错误
func NewSchemaError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeSchema, message, originalError)
}

// NewNetworkError 创建上游请求错误
func NewNetworkError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNetwork, message, originalError)
}

// NewDecodeError 创建解码错误
func NewDecodeError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeDecode, message, originalError)
}

// NewConflictError 创建冲突错误
func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

// NewStorageError 创建存储错误
func NewStorageError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeStorage, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// isType 检查错误链中是否存在指定类型的 AppError
func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// IsValidationError 检查是否为输入校验错误
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsSchemaError 检查是否为上游结构错误
func IsSchemaError(err error) bool { return isType(err, ErrorTypeSchema) }

// IsNetworkError 检查是否为上游请求错误
func IsNetworkError(err error) bool { return isType(err, ErrorTypeNetwork) }

// IsDecodeError 检查是否为解码错误
func IsDecodeError(err error) bool { return isType(err, ErrorTypeDecode) }

// IsConflictError 检查是否为冲突错误
func IsConflictError(err error) bool { return isType(err, ErrorTypeConflict) }

// IsStorageError 检查是否为存储错误
func IsStorageError(err error) bool { return isType(err, ErrorTypeStorage) }

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeSchema:
		return "SCHEMA_ERROR"
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeDecode:
		return "DECODE_ERROR"
	case ErrorTypeConflict:
		return "ALREADY_EXISTS"
	case ErrorTypeStorage:
		return "STORAGE_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
