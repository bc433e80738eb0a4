// internal/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	cases := map[ErrorType]string{
		ErrorTypeValidation: "VALIDATION_ERROR",
		ErrorTypeSchema:     "SCHEMA_ERROR",
		ErrorTypeNetwork:    "NETWORK_ERROR",
		ErrorTypeDecode:     "DECODE_ERROR",
		ErrorTypeConflict:   "ALREADY_EXISTS",
		ErrorTypeStorage:    "STORAGE_ERROR",
		ErrorTypeNotFound:   "NOT_FOUND",
	}

	for errType, code := range cases {
		appErr := NewAppError(errType, "测试", nil)
		assert.Equal(t, code, appErr.Code, "type=%s", errType)
	}
}

func TestTypeHelpers(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("输入非法", nil)))
	assert.True(t, IsSchemaError(NewSchemaError("结构非法", nil)))
	assert.True(t, IsNetworkError(NewNetworkError("请求失败", nil)))
	assert.True(t, IsDecodeError(NewDecodeError("载荷非法", nil)))
	assert.True(t, IsConflictError(NewConflictError("已存在", nil)))
	assert.True(t, IsStorageError(NewStorageError("写入失败", nil)))
	assert.True(t, IsNotFoundError(NewNotFoundError("不存在", nil)))

	assert.False(t, IsValidationError(NewNetworkError("请求失败", nil)))
	assert.False(t, IsNetworkError(errors.New("普通错误")))
	assert.False(t, IsNetworkError(nil))
}

func TestTypeHelpers_WrappedChain(t *testing.T) {
	inner := NewDecodeError("载荷非法", nil)
	wrapped := fmt.Errorf("播放预览失败: %w", inner)

	assert.True(t, IsDecodeError(wrapped))
	assert.False(t, IsNetworkError(wrapped))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewNetworkError("上游请求失败", cause)

	assert.Equal(t, "上游请求失败: connection refused", appErr.Error())
	assert.Equal(t, cause, errors.Unwrap(appErr))

	bare := NewValidationError("缺少关键词", nil)
	assert.Equal(t, "缺少关键词", bare.Error())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "不包装", ErrorTypeStorage))

	plain := errors.New("disk full")
	wrapped := WrapError(plain, "保存失败", ErrorTypeStorage)
	assert.True(t, IsStorageError(wrapped))

	// 已是AppError时保留原类型和代码
	conflict := NewConflictError("已存在", nil)
	rewrapped := WrapError(conflict, "收藏失败", ErrorTypeStorage)
	assert.True(t, IsConflictError(rewrapped))

	var appErr *AppError
	require.True(t, errors.As(rewrapped, &appErr))
	assert.Equal(t, "ALREADY_EXISTS", appErr.Code)
}
