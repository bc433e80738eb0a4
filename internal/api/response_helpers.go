// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error 错误响应，根据错误类型映射HTTP状态码和错误代码
func (rh *ResponseHelper) Error(c *gin.Context, err error) {
	status, code := classifyError(err)

	c.JSON(status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: sanitizeErrorMessage(err.Error()),
		},
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// ErrorWithCode 按指定状态码和错误代码返回错误响应
func (rh *ResponseHelper) ErrorWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// classifyError 把应用错误映射到HTTP状态码和稳定的错误代码
func classifyError(err error) (int, string) {
	var appError *apperrors.AppError
	if !errors.As(err, &appError) {
		return http.StatusInternalServerError, ErrorInternalError
	}

	switch appError.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, appError.Code
	case apperrors.ErrorTypeSchema:
		return http.StatusBadGateway, appError.Code
	case apperrors.ErrorTypeNetwork:
		return http.StatusBadGateway, appError.Code
	case apperrors.ErrorTypeDecode:
		return http.StatusInternalServerError, appError.Code
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict, appError.Code
	case apperrors.ErrorTypeStorage:
		return http.StatusInternalServerError, appError.Code
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, appError.Code
	default:
		return http.StatusInternalServerError, ErrorInternalError
	}
}

// sanitizeErrorMessage 去掉错误消息中可能的敏感信息
func sanitizeErrorMessage(message string) string {
	// API密钥等凭据不应出现在响应里
	for _, keyword := range []string{"api_key", "apikey", "authorization", "bearer"} {
		if idx := strings.Index(strings.ToLower(message), keyword); idx >= 0 {
			return message[:idx] + "[已隐去]"
		}
	}
	return message
}

// getRequestID 获取或生成请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	if requestID := c.GetString("request_id"); requestID != "" {
		return requestID
	}

	requestID := uuid.NewString()
	c.Set("request_id", requestID)
	return requestID
}
