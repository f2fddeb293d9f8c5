package dto

import "encoding/json"

// 操作失败分类，随逐条结果返回给客户端
const (
	OpErrorValidation   = "validation"
	OpErrorNotFound     = "not-found"
	OpErrorUnauthorized = "unauthorized"
	OpErrorConflict     = "conflict"
	OpErrorInternal     = "internal"
)

// BatchSubmitRequest 批量离线操作提交请求
// Operations 保持客户端的提交顺序，服务端按序逐条处理
type BatchSubmitRequest struct {
	MapID      string            `json:"mapId" form:"mapId" binding:"required"`
	Operations []json.RawMessage `json:"operations" binding:"required,min=1,max=500"`
}

// OperationResult 批量操作中单条操作的结果
// 失败的操作不影响后续操作继续执行
type OperationResult struct {
	OperationID string `json:"operationId"`
	Op          string `json:"op"`
	Success     bool   `json:"success"`
	// Idempotent 为 true 表示该操作此前已生效，本次为重放短路
	Idempotent bool   `json:"idempotent,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	// CurrentVersion 冲突时携带服务器当前版本
	CurrentVersion int64 `json:"currentVersion,omitempty"`
	// Current 冲突时携带服务器当前实体状态
	Current interface{} `json:"current,omitempty"`
	// Entity 成功时携带变更后的实体
	Entity interface{} `json:"entity,omitempty"`
}

// BatchSubmitResponse 批量提交的逐条结果，顺序与请求一致
type BatchSubmitResponse struct {
	MapID   string            `json:"mapId"`
	Results []OperationResult `json:"results"`
}
