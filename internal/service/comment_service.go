package service

import (
	"context"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/writequeue"

	"go.uber.org/zap"
)

// CommentService 评论与回复的单条变更与查询
type CommentService interface {
	CreateComment(ctx context.Context, uid int64, req *dto.CommentCreateRequest) (dto.OperationResult, *BroadcastEvent, error)
	UpdateComment(ctx context.Context, uid int64, req *dto.CommentUpdateRequest) (dto.OperationResult, *BroadcastEvent, error)
	DeleteComment(ctx context.Context, uid int64, req *dto.CommentDeleteRequest) (dto.OperationResult, *BroadcastEvent, error)

	CreateReply(ctx context.Context, uid int64, req *dto.ReplyCreateRequest) (dto.OperationResult, *BroadcastEvent, error)
	UpdateReply(ctx context.Context, uid int64, req *dto.ReplyUpdateRequest) (dto.OperationResult, *BroadcastEvent, error)
	DeleteReply(ctx context.Context, uid int64, req *dto.ReplyDeleteRequest) (dto.OperationResult, *BroadcastEvent, error)

	// ListComments 分页获取要素下的评论，每条评论附带全部回复
	ListComments(ctx context.Context, req *dto.CommentListRequest, page, pageSize int) ([]*dto.CommentWithReplies, int64, error)
}

type commentService struct {
	resolver ConflictResolver
	comments domain.CommentRepository
	replies  domain.ReplyRepository
	queue    *writequeue.Manager
	logger   *zap.Logger
}

var _ CommentService = (*commentService)(nil)

// NewCommentService 创建 CommentService 实例
func NewCommentService(resolver ConflictResolver, comments domain.CommentRepository, replies domain.ReplyRepository, queue *writequeue.Manager, lg *zap.Logger) CommentService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &commentService{resolver: resolver, comments: comments, replies: replies, queue: queue, logger: lg}
}

func (s *commentService) execute(ctx context.Context, mapID string, fn func() error) error {
	if s.queue != nil {
		return s.queue.Execute(ctx, mapID, fn)
	}
	return fn()
}

func (s *commentService) CreateComment(ctx context.Context, uid int64, req *dto.CommentCreateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpCommentCreate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.CreateComment(ctx, uid, req.MapID, req.OperationID, &ContentChange{
			ID:       req.CommentID,
			ParentID: req.FeatureID,
			Content:  req.Content,
		})
		result, event = commentOutcome(result, dto.CommentCreated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) UpdateComment(ctx context.Context, uid int64, req *dto.CommentUpdateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpCommentUpdate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.UpdateComment(ctx, uid, req.MapID, req.OperationID, &ContentChange{
			ID:          req.CommentID,
			BaseVersion: req.BaseVersion,
			Content:     req.Content,
		})
		result, event = commentOutcome(result, dto.CommentUpdated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) DeleteComment(ctx context.Context, uid int64, req *dto.CommentDeleteRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpCommentDelete}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.DeleteComment(ctx, uid, req.MapID, req.OperationID, req.CommentID, req.BaseVersion)
		result, event = commentDeleteOutcome(result, uid, req.MapID, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) CreateReply(ctx context.Context, uid int64, req *dto.ReplyCreateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpReplyCreate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.CreateReply(ctx, uid, req.MapID, req.OperationID, &ContentChange{
			ID:       req.ReplyID,
			ParentID: req.CommentID,
			Content:  req.Content,
		})
		result, event = replyOutcome(result, dto.ReplyCreated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) UpdateReply(ctx context.Context, uid int64, req *dto.ReplyUpdateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpReplyUpdate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.UpdateReply(ctx, uid, req.MapID, req.OperationID, &ContentChange{
			ID:          req.ReplyID,
			BaseVersion: req.BaseVersion,
			Content:     req.Content,
		})
		result, event = replyOutcome(result, dto.ReplyUpdated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) DeleteReply(ctx context.Context, uid int64, req *dto.ReplyDeleteRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpReplyDelete}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.DeleteReply(ctx, uid, req.MapID, req.OperationID, req.ReplyID, req.BaseVersion)
		result, event = replyDeleteOutcome(result, uid, req.MapID, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *commentService) ListComments(ctx context.Context, req *dto.CommentListRequest, page, pageSize int) ([]*dto.CommentWithReplies, int64, error) {
	comments, total, err := s.comments.ListByFeature(ctx, req.FeatureID, req.MapID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorEntityListFailed.WithDetails(err.Error())
	}

	out := make([]*dto.CommentWithReplies, 0, len(comments))
	for _, c := range comments {
		replies, err := s.replies.ListByComment(ctx, c.ID, req.MapID)
		if err != nil {
			return nil, 0, code.ErrorEntityListFailed.WithDetails(err.Error())
		}
		item := &dto.CommentWithReplies{
			Comment: dto.CommentFromDomain(c),
			Replies: make([]*dto.Reply, 0, len(replies)),
		}
		for _, r := range replies {
			item.Replies = append(item.Replies, dto.ReplyFromDomain(r))
		}
		out = append(out, item)
	}
	return out, total, nil
}
