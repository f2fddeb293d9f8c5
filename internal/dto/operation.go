// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"encoding/json"
	"fmt"
)

// OperationKind 离线操作类型标识，对应 JSON 中的 op 字段
type OperationKind = string

const (
	OpFeatureCreate OperationKind = "feature.create"
	OpFeatureUpdate OperationKind = "feature.update"
	OpFeatureDelete OperationKind = "feature.delete"
	OpCommentCreate OperationKind = "comment.create"
	OpCommentUpdate OperationKind = "comment.update"
	OpCommentDelete OperationKind = "comment.delete"
	OpReplyCreate   OperationKind = "reply.create"
	OpReplyUpdate   OperationKind = "reply.update"
	OpReplyDelete   OperationKind = "reply.delete"
)

// Operation 批量回放中的单个离线操作
// 封闭变体集合，op 字段决定具体类型
type Operation interface {
	isOperation()
	// OperationID 客户端生成的全局唯一操作ID，幂等账本的键
	OperationID() string
	// Kind 操作类型标识
	Kind() OperationKind
}

// opBase 所有操作共有的字段
type opBase struct {
	Op                string `json:"op" binding:"required"`
	ClientOperationID string `json:"operationId" binding:"required"`
}

func (b opBase) isOperation()        {}
func (b opBase) OperationID() string { return b.ClientOperationID }
func (b opBase) Kind() OperationKind { return b.Op }

// CreateFeatureOp 创建要素
type CreateFeatureOp struct {
	opBase
	FeatureID  string `json:"featureId" binding:"required"`
	Type       string `json:"type" binding:"required"`
	Geometry   string `json:"geometry" binding:"required"`
	Properties string `json:"properties"`
}

// UpdateFeatureOp 更新要素，BaseVersion 为客户端所见版本
type UpdateFeatureOp struct {
	opBase
	FeatureID   string `json:"featureId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
	Type        string `json:"type"`
	Geometry    string `json:"geometry"`
	Properties  string `json:"properties"`
}

// DeleteFeatureOp 删除要素
type DeleteFeatureOp struct {
	opBase
	FeatureID   string `json:"featureId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
}

// CreateCommentOp 创建评论
type CreateCommentOp struct {
	opBase
	CommentID string `json:"commentId" binding:"required"`
	FeatureID string `json:"featureId" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// UpdateCommentOp 更新评论内容
type UpdateCommentOp struct {
	opBase
	CommentID   string `json:"commentId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// DeleteCommentOp 删除评论
type DeleteCommentOp struct {
	opBase
	CommentID   string `json:"commentId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
}

// CreateReplyOp 创建回复
type CreateReplyOp struct {
	opBase
	ReplyID   string `json:"replyId" binding:"required"`
	CommentID string `json:"commentId" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// UpdateReplyOp 更新回复内容
type UpdateReplyOp struct {
	opBase
	ReplyID     string `json:"replyId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// DeleteReplyOp 删除回复
type DeleteReplyOp struct {
	opBase
	ReplyID     string `json:"replyId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" binding:"required"`
}

// DecodeOperation 根据 op 字段将原始 JSON 解码为具体操作类型
func DecodeOperation(raw json.RawMessage) (Operation, error) {
	var head struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("invalid operation payload: %w", err)
	}

	var op Operation
	switch head.Op {
	case OpFeatureCreate:
		op = &CreateFeatureOp{}
	case OpFeatureUpdate:
		op = &UpdateFeatureOp{}
	case OpFeatureDelete:
		op = &DeleteFeatureOp{}
	case OpCommentCreate:
		op = &CreateCommentOp{}
	case OpCommentUpdate:
		op = &UpdateCommentOp{}
	case OpCommentDelete:
		op = &DeleteCommentOp{}
	case OpReplyCreate:
		op = &CreateReplyOp{}
	case OpReplyUpdate:
		op = &UpdateReplyOp{}
	case OpReplyDelete:
		op = &DeleteReplyOp{}
	default:
		return nil, fmt.Errorf("unknown operation kind %q", head.Op)
	}

	if err := json.Unmarshal(raw, op); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Op, err)
	}
	// 空操作ID会让幂等账本把不相关的操作判成重放，必须在入账前拒绝
	if op.OperationID() == "" {
		return nil, fmt.Errorf("%s: missing operationId", head.Op)
	}
	return op, nil
}
