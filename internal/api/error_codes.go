// internal/api/error_codes.go
package api

// API错误代码常量，与前端约定保持稳定
const (
	ErrorInvalidRequest  = "INVALID_REQUEST"
	ErrorInvalidCategory = "INVALID_CATEGORY"
	ErrorConceptNotFound = "CONCEPT_NOT_FOUND"
	ErrorAlreadyExists   = "ALREADY_EXISTS"
	ErrorInternalError   = "INTERNAL_ERROR"
)
