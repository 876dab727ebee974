// Package dto 定义网关API的请求与响应结构。
package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total   int  `json:"total"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// TokenResponse 登录响应
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// SnapshotMeta 快照元信息，随视图数据一并返回
type SnapshotMeta struct {
	UpdatedAt string `json:"updated_at"` // 快照写入时间
	Stale     bool   `json:"stale"`      // true表示降级为直连拉取失败后的旧快照
}

// DotResponse DOT导出响应
type DotResponse struct {
	ChainID string `json:"chain_id"`
	Dot     string `json:"dot"`
}
