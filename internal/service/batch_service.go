package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/logger"
	"github.com/haierkeys/map-annotation-sync-service/pkg/writequeue"

	"go.uber.org/zap"
)

// BroadcastEvent 批量处理产生的待广播事件
// 只有事务提交成功的变更才会生成事件，由路由层在响应之后广播
type BroadcastEvent struct {
	Action  dto.WebSocketAction
	Payload interface{}
}

// BatchService processes a client's queued offline operations in order.
// Operations of one map are serialized through the write queue, each
// operation succeeds or fails on its own, and results keep request order.
// BatchService 按序处理客户端积压的离线操作。
// 同一地图的操作经写入队列串行化，单条操作独立成败，结果保持请求顺序。
type BatchService interface {
	Submit(ctx context.Context, uid int64, req *dto.BatchSubmitRequest) (*dto.BatchSubmitResponse, []BroadcastEvent, error)
}

type batchService struct {
	resolver ConflictResolver
	queue    *writequeue.Manager
	logger   *zap.Logger
}

var _ BatchService = (*batchService)(nil)

// NewBatchService 创建 BatchService 实例
// queue 可以为 nil，此时不做每地图串行化（仅测试使用）
func NewBatchService(resolver ConflictResolver, queue *writequeue.Manager, lg *zap.Logger) BatchService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &batchService{resolver: resolver, queue: queue, logger: lg}
}

// Submit 逐条处理操作，失败的操作不阻断后续操作
func (s *batchService) Submit(ctx context.Context, uid int64, req *dto.BatchSubmitRequest) (*dto.BatchSubmitResponse, []BroadcastEvent, error) {
	resp := &dto.BatchSubmitResponse{
		MapID:   req.MapID,
		Results: make([]dto.OperationResult, 0, len(req.Operations)),
	}
	var events []BroadcastEvent

	process := func() error {
		for _, raw := range req.Operations {
			op, err := dto.DecodeOperation(raw)
			if err != nil {
				resp.Results = append(resp.Results, dto.OperationResult{
					Success: false,
					Error:   dto.OpErrorValidation,
					Message: err.Error(),
				})
				continue
			}

			result, event := s.apply(ctx, uid, req.MapID, op)
			resp.Results = append(resp.Results, result)
			if event != nil {
				events = append(events, *event)
			}
		}
		return nil
	}

	var err error
	if s.queue != nil {
		err = s.queue.Execute(ctx, req.MapID, process)
	} else {
		err = process()
	}
	if err != nil {
		return nil, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}

	s.logger.Info("batch processed",
		zap.String(logger.FieldMapID, req.MapID),
		zap.Int64(logger.FieldUID, uid),
		zap.Int("operations", len(req.Operations)),
		zap.Int("broadcasts", len(events)))
	return resp, events, nil
}

// apply 处理单条操作，返回结果以及提交成功时的广播事件
func (s *batchService) apply(ctx context.Context, uid int64, mapID string, op dto.Operation) (dto.OperationResult, *BroadcastEvent) {
	result := dto.OperationResult{
		OperationID: op.OperationID(),
		Op:          op.Kind(),
	}

	switch o := op.(type) {
	case *dto.CreateFeatureOp:
		apply, replay, err := s.resolver.CreateFeature(ctx, uid, mapID, o.OperationID(), &FeatureChange{
			FeatureID:  o.FeatureID,
			Type:       o.Type,
			Geometry:   o.Geometry,
			Properties: o.Properties,
		})
		return featureOutcome(result, dto.FeatureCreated, apply, replay, err)

	case *dto.UpdateFeatureOp:
		apply, replay, err := s.resolver.UpdateFeature(ctx, uid, mapID, o.OperationID(), &FeatureChange{
			FeatureID:   o.FeatureID,
			BaseVersion: o.BaseVersion,
			Type:        o.Type,
			Geometry:    o.Geometry,
			Properties:  o.Properties,
		})
		return featureOutcome(result, dto.FeatureUpdated, apply, replay, err)

	case *dto.DeleteFeatureOp:
		apply, replay, err := s.resolver.DeleteFeature(ctx, uid, mapID, o.OperationID(), o.FeatureID, o.BaseVersion)
		return featureDeleteOutcome(result, uid, mapID, apply, replay, err)

	case *dto.CreateCommentOp:
		apply, replay, err := s.resolver.CreateComment(ctx, uid, mapID, o.OperationID(), &ContentChange{
			ID:       o.CommentID,
			ParentID: o.FeatureID,
			Content:  o.Content,
		})
		return commentOutcome(result, dto.CommentCreated, apply, replay, err)

	case *dto.UpdateCommentOp:
		apply, replay, err := s.resolver.UpdateComment(ctx, uid, mapID, o.OperationID(), &ContentChange{
			ID:          o.CommentID,
			BaseVersion: o.BaseVersion,
			Content:     o.Content,
		})
		return commentOutcome(result, dto.CommentUpdated, apply, replay, err)

	case *dto.DeleteCommentOp:
		apply, replay, err := s.resolver.DeleteComment(ctx, uid, mapID, o.OperationID(), o.CommentID, o.BaseVersion)
		return commentDeleteOutcome(result, uid, mapID, apply, replay, err)

	case *dto.CreateReplyOp:
		apply, replay, err := s.resolver.CreateReply(ctx, uid, mapID, o.OperationID(), &ContentChange{
			ID:       o.ReplyID,
			ParentID: o.CommentID,
			Content:  o.Content,
		})
		return replyOutcome(result, dto.ReplyCreated, apply, replay, err)

	case *dto.UpdateReplyOp:
		apply, replay, err := s.resolver.UpdateReply(ctx, uid, mapID, o.OperationID(), &ContentChange{
			ID:          o.ReplyID,
			BaseVersion: o.BaseVersion,
			Content:     o.Content,
		})
		return replyOutcome(result, dto.ReplyUpdated, apply, replay, err)

	case *dto.DeleteReplyOp:
		apply, replay, err := s.resolver.DeleteReply(ctx, uid, mapID, o.OperationID(), o.ReplyID, o.BaseVersion)
		return replyDeleteOutcome(result, uid, mapID, apply, replay, err)

	default:
		result.Success = false
		result.Error = dto.OpErrorValidation
		result.Message = code.ErrorUnknownOperation.Msg()
		return result, nil
	}
}

// featureOutcome 将要素创建/更新的结果映射为逐条响应
func featureOutcome(result dto.OperationResult, action dto.WebSocketAction, apply *domain.FeatureApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Feature != nil {
			result.Current = dto.FeatureFromDomain(apply.Feature)
		}
		return result, nil
	}

	entity := dto.FeatureFromDomain(apply.Feature)
	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	result.Entity = entity
	return result, &BroadcastEvent{Action: action, Payload: entity}
}

// featureDeleteOutcome 删除要素的结果映射，广播载荷只含标识信息
func featureDeleteOutcome(result dto.OperationResult, uid int64, mapID string, apply *domain.FeatureApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Feature != nil {
			result.Current = dto.FeatureFromDomain(apply.Feature)
		}
		return result, nil
	}

	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	payload := &dto.EntityDeleted{MapID: mapID, ID: apply.Feature.ID, Version: apply.CurrentVersion, UID: uid}
	return result, &BroadcastEvent{Action: dto.FeatureDeleted, Payload: payload}
}

func commentOutcome(result dto.OperationResult, action dto.WebSocketAction, apply *domain.CommentApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Comment != nil {
			result.Current = dto.CommentFromDomain(apply.Comment)
		}
		return result, nil
	}

	entity := dto.CommentFromDomain(apply.Comment)
	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	result.Entity = entity
	return result, &BroadcastEvent{Action: action, Payload: entity}
}

func commentDeleteOutcome(result dto.OperationResult, uid int64, mapID string, apply *domain.CommentApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Comment != nil {
			result.Current = dto.CommentFromDomain(apply.Comment)
		}
		return result, nil
	}

	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	payload := &dto.EntityDeleted{MapID: mapID, ID: apply.Comment.ID, Version: apply.CurrentVersion, UID: uid}
	return result, &BroadcastEvent{Action: dto.CommentDeleted, Payload: payload}
}

func replyOutcome(result dto.OperationResult, action dto.WebSocketAction, apply *domain.ReplyApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Reply != nil {
			result.Current = dto.ReplyFromDomain(apply.Reply)
		}
		return result, nil
	}

	entity := dto.ReplyFromDomain(apply.Reply)
	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	result.Entity = entity
	return result, &BroadcastEvent{Action: action, Payload: entity}
}

func replyDeleteOutcome(result dto.OperationResult, uid int64, mapID string, apply *domain.ReplyApply, replay *domain.History, err error) (dto.OperationResult, *BroadcastEvent) {
	if err != nil {
		return failedResult(result, err), nil
	}
	if replay != nil {
		return replayResult(result, replay), nil
	}
	if !apply.Accepted {
		result.Success = false
		result.Error = dto.OpErrorConflict
		result.Message = code.ErrorVersionConflict.Msg()
		result.CurrentVersion = apply.CurrentVersion
		if apply.Reply != nil {
			result.Current = dto.ReplyFromDomain(apply.Reply)
		}
		return result, nil
	}

	result.Success = true
	result.CurrentVersion = apply.CurrentVersion
	payload := &dto.EntityDeleted{MapID: mapID, ID: apply.Reply.ID, Version: apply.CurrentVersion, UID: uid}
	return result, &BroadcastEvent{Action: dto.ReplyDeleted, Payload: payload}
}

// replayResult 幂等重放短路：操作此前已生效，返回账本中的快照，不再广播
func replayResult(result dto.OperationResult, replay *domain.History) dto.OperationResult {
	result.Success = true
	result.Idempotent = true
	result.Message = code.IdempotentReplay.Msg()
	result.CurrentVersion = replay.Version
	if replay.Snapshot != "" {
		result.Entity = json.RawMessage(replay.Snapshot)
	}
	return result
}

// failedResult 将错误码映射为操作失败分类
func failedResult(result dto.OperationResult, err error) dto.OperationResult {
	result.Success = false
	result.Error = classifyError(err)
	result.Message = err.Error()
	return result
}

// classifyError 把内部错误码折叠为面向客户端的失败分类
func classifyError(err error) string {
	var c *code.Code
	if !errors.As(err, &c) {
		return dto.OpErrorInternal
	}
	switch c.Code() {
	case code.ErrorEntityNotFound.Code(), code.ErrorMapNotFound.Code():
		return dto.OpErrorNotFound
	case code.ErrorUnauthorizedMutation.Code():
		return dto.OpErrorUnauthorized
	case code.ErrorInvalidParams.Code(), code.ErrorUnknownOperation.Code():
		return dto.OpErrorValidation
	case code.ErrorVersionConflict.Code():
		return dto.OpErrorConflict
	default:
		return dto.OpErrorInternal
	}
}
