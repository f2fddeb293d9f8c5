// Package service 实现业务逻辑层
package service

import (
	"context"
	"encoding/json"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/diff"
	"github.com/haierkeys/map-annotation-sync-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeatureChange 要素变更参数
type FeatureChange struct {
	FeatureID   string
	BaseVersion int64
	Type        string
	Geometry    string
	Properties  string
}

// ContentChange 评论或回复的变更参数
// ParentID 创建评论时为要素ID，创建回复时为评论ID
type ContentChange struct {
	ID          string
	ParentID    string
	BaseVersion int64
	Content     string
}

// ConflictResolver applies versioned mutations with optimistic concurrency.
// Every accepted mutation and its history record commit in one transaction,
// and the idempotency ledger is consulted before any write.
// ConflictResolver 以乐观并发方式应用带版本的变更。
// 每个被接受的变更与其历史记录在同一事务内提交，
// 任何写入之前都先查幂等账本。
//
// 版本冲突不是错误：Apply 结果携带服务器当前状态返回给客户端。
type ConflictResolver interface {
	CreateFeature(ctx context.Context, uid int64, mapID, operationID string, change *FeatureChange) (*domain.FeatureApply, *domain.History, error)
	UpdateFeature(ctx context.Context, uid int64, mapID, operationID string, change *FeatureChange) (*domain.FeatureApply, *domain.History, error)
	DeleteFeature(ctx context.Context, uid int64, mapID, operationID, featureID string, baseVersion int64) (*domain.FeatureApply, *domain.History, error)

	CreateComment(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.CommentApply, *domain.History, error)
	UpdateComment(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.CommentApply, *domain.History, error)
	DeleteComment(ctx context.Context, uid int64, mapID, operationID, commentID string, baseVersion int64) (*domain.CommentApply, *domain.History, error)

	CreateReply(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.ReplyApply, *domain.History, error)
	UpdateReply(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.ReplyApply, *domain.History, error)
	DeleteReply(ctx context.Context, uid int64, mapID, operationID, replyID string, baseVersion int64) (*domain.ReplyApply, *domain.History, error)
}

// conflictResolver 实现 ConflictResolver 接口
type conflictResolver struct {
	uow    domain.UnitOfWork
	logger *zap.Logger
}

var _ ConflictResolver = (*conflictResolver)(nil)

// NewConflictResolver 创建 ConflictResolver 实例
func NewConflictResolver(uow domain.UnitOfWork, lg *zap.Logger) ConflictResolver {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &conflictResolver{uow: uow, logger: lg}
}

// snapshotOf 生成实体的 JSON 快照
func snapshotOf(entity interface{}) string {
	b, err := json.Marshal(entity)
	if err != nil {
		return ""
	}
	return string(b)
}

// CreateFeature 创建要素
func (s *conflictResolver) CreateFeature(ctx context.Context, uid int64, mapID, operationID string, change *FeatureChange) (*domain.FeatureApply, *domain.History, error) {
	if !domain.IsValidFeatureType(domain.FeatureType(change.Type)) {
		return nil, nil, code.ErrorInvalidParams.WithDetails("unknown feature type " + change.Type)
	}
	bounds, err := computeBounds(change.Geometry)
	if err != nil {
		return nil, nil, code.ErrorInvalidParams.WithDetails(err.Error())
	}

	featureID := change.FeatureID
	if featureID == "" {
		featureID = uuid.NewString()
	}

	var apply *domain.FeatureApply
	var replay *domain.History

	err = s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		if err := s.mustMapExist(ctx, r, mapID); err != nil {
			return err
		}

		existing, err := r.Features.GetByID(ctx, featureID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if existing != nil {
			return code.ErrorInvalidParams.WithDetails("feature already exists: " + featureID)
		}

		created, err := r.Features.Create(ctx, &domain.Feature{
			ID:         featureID,
			MapID:      mapID,
			Type:       domain.FeatureType(change.Type),
			Geometry:   change.Geometry,
			Properties: change.Properties,
			MinLng:     bounds.MinLng,
			MinLat:     bounds.MinLat,
			MaxLng:     bounds.MaxLng,
			MaxLat:     bounds.MaxLat,
			CreatedBy:  uid,
			UpdatedBy:  uid,
		})
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityFeature,
			EntityID:          created.ID,
			Action:            domain.HistoryActionCreate,
			UID:               uid,
			Version:           created.Version,
			Snapshot:          snapshotOf(created),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.FeatureApply{Accepted: true, CurrentVersion: created.Version, Feature: created}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if apply != nil {
		s.logger.Info("feature created",
			zap.String(logger.FieldMapID, mapID),
			zap.String(logger.FieldEntityID, apply.Feature.ID),
			zap.String(logger.FieldOperationID, operationID),
			zap.Int64(logger.FieldUID, uid))
	}
	return apply, replay, nil
}

// UpdateFeature 更新要素，空字段保持原值
func (s *conflictResolver) UpdateFeature(ctx context.Context, uid int64, mapID, operationID string, change *FeatureChange) (*domain.FeatureApply, *domain.History, error) {
	var apply *domain.FeatureApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Features.GetByID(ctx, change.FeatureID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("feature " + change.FeatureID)
		}

		if current.Version != change.BaseVersion {
			apply = &domain.FeatureApply{Accepted: false, CurrentVersion: current.Version, Feature: current}
			return nil
		}

		next := *current
		if change.Type != "" {
			if !domain.IsValidFeatureType(domain.FeatureType(change.Type)) {
				return code.ErrorInvalidParams.WithDetails("unknown feature type " + change.Type)
			}
			next.Type = domain.FeatureType(change.Type)
		}
		if change.Geometry != "" {
			bounds, err := computeBounds(change.Geometry)
			if err != nil {
				return code.ErrorInvalidParams.WithDetails(err.Error())
			}
			next.Geometry = change.Geometry
			next.MinLng, next.MinLat = bounds.MinLng, bounds.MinLat
			next.MaxLng, next.MaxLat = bounds.MaxLng, bounds.MaxLat
		}
		if change.Properties != "" {
			next.Properties = change.Properties
		}
		next.UpdatedBy = uid

		ok, err := r.Features.UpdateIfVersion(ctx, &next, change.BaseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			// 同事务内版本已被抢先推进，按冲突处理
			latest, err := r.Features.GetByID(ctx, change.FeatureID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.FeatureApply{Accepted: false, CurrentVersion: versionOfFeature(latest), Feature: latest}
			return nil
		}

		updated, err := r.Features.GetByID(ctx, change.FeatureID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityFeature,
			EntityID:          updated.ID,
			Action:            domain.HistoryActionUpdate,
			UID:               uid,
			Version:           updated.Version,
			Snapshot:          snapshotOf(updated),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.FeatureApply{Accepted: true, CurrentVersion: updated.Version, Feature: updated}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if apply != nil && !apply.Accepted {
		s.logger.Info("feature update rejected by version check",
			zap.String(logger.FieldMapID, mapID),
			zap.String(logger.FieldEntityID, change.FeatureID),
			zap.Int64("baseVersion", change.BaseVersion),
			zap.Int64(logger.FieldVersion, apply.CurrentVersion))
	}
	return apply, replay, nil
}

// DeleteFeature 删除要素并级联清理其评论与回复
func (s *conflictResolver) DeleteFeature(ctx context.Context, uid int64, mapID, operationID, featureID string, baseVersion int64) (*domain.FeatureApply, *domain.History, error) {
	var apply *domain.FeatureApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Features.GetByID(ctx, featureID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("feature " + featureID)
		}

		if current.Version != baseVersion {
			apply = &domain.FeatureApply{Accepted: false, CurrentVersion: current.Version, Feature: current}
			return nil
		}

		ok, err := r.Features.DeleteIfVersion(ctx, featureID, mapID, baseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			latest, err := r.Features.GetByID(ctx, featureID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.FeatureApply{Accepted: false, CurrentVersion: versionOfFeature(latest), Feature: latest}
			return nil
		}

		// 级联删除评论与回复
		comments, _, err := r.Comments.ListByFeature(ctx, featureID, mapID, 1, 100000)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		for _, c := range comments {
			if _, err := r.Replies.DeleteByComment(ctx, c.ID, mapID); err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
		}
		if _, err := r.Comments.DeleteByFeature(ctx, featureID, mapID); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityFeature,
			EntityID:          featureID,
			Action:            domain.HistoryActionDelete,
			UID:               uid,
			Version:           current.Version,
			Snapshot:          snapshotOf(current),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.FeatureApply{Accepted: true, CurrentVersion: current.Version, Feature: current}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// CreateComment 创建评论
func (s *conflictResolver) CreateComment(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.CommentApply, *domain.History, error) {
	commentID := change.ID
	if commentID == "" {
		commentID = uuid.NewString()
	}

	var apply *domain.CommentApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		feature, err := r.Features.GetByID(ctx, change.ParentID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if feature == nil {
			return code.ErrorEntityNotFound.WithDetails("feature " + change.ParentID)
		}

		created, err := r.Comments.Create(ctx, &domain.Comment{
			ID:        commentID,
			MapID:     mapID,
			FeatureID: change.ParentID,
			AuthorUID: uid,
			Content:   change.Content,
		})
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityComment,
			EntityID:          created.ID,
			Action:            domain.HistoryActionCreate,
			UID:               uid,
			Version:           created.Version,
			Snapshot:          snapshotOf(created),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.CommentApply{Accepted: true, CurrentVersion: created.Version, Comment: created}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// UpdateComment 更新评论内容，仅作者可编辑
// 历史记录额外保存新旧内容的文本补丁
func (s *conflictResolver) UpdateComment(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.CommentApply, *domain.History, error) {
	var apply *domain.CommentApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Comments.GetByID(ctx, change.ID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("comment " + change.ID)
		}
		if current.AuthorUID != uid {
			return code.ErrorUnauthorizedMutation.WithDetails("comment belongs to another user")
		}

		if current.Version != change.BaseVersion {
			apply = &domain.CommentApply{Accepted: false, CurrentVersion: current.Version, Comment: current}
			return nil
		}

		next := *current
		next.Content = change.Content
		ok, err := r.Comments.UpdateIfVersion(ctx, &next, change.BaseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			latest, err := r.Comments.GetByID(ctx, change.ID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.CommentApply{Accepted: false, CurrentVersion: versionOfComment(latest), Comment: latest}
			return nil
		}

		updated, err := r.Comments.GetByID(ctx, change.ID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityComment,
			EntityID:          updated.ID,
			Action:            domain.HistoryActionUpdate,
			UID:               uid,
			Version:           updated.Version,
			Snapshot:          snapshotOf(updated),
			ContentDiff:       diff.PatchText(current.Content, change.Content),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.CommentApply{Accepted: true, CurrentVersion: updated.Version, Comment: updated}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// DeleteComment 删除评论及其回复，仅作者可删除
func (s *conflictResolver) DeleteComment(ctx context.Context, uid int64, mapID, operationID, commentID string, baseVersion int64) (*domain.CommentApply, *domain.History, error) {
	var apply *domain.CommentApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Comments.GetByID(ctx, commentID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("comment " + commentID)
		}
		if current.AuthorUID != uid {
			return code.ErrorUnauthorizedMutation.WithDetails("comment belongs to another user")
		}

		if current.Version != baseVersion {
			apply = &domain.CommentApply{Accepted: false, CurrentVersion: current.Version, Comment: current}
			return nil
		}

		ok, err := r.Comments.DeleteIfVersion(ctx, commentID, mapID, baseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			latest, err := r.Comments.GetByID(ctx, commentID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.CommentApply{Accepted: false, CurrentVersion: versionOfComment(latest), Comment: latest}
			return nil
		}

		if _, err := r.Replies.DeleteByComment(ctx, commentID, mapID); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityComment,
			EntityID:          commentID,
			Action:            domain.HistoryActionDelete,
			UID:               uid,
			Version:           current.Version,
			Snapshot:          snapshotOf(current),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.CommentApply{Accepted: true, CurrentVersion: current.Version, Comment: current}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// CreateReply 创建回复
func (s *conflictResolver) CreateReply(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.ReplyApply, *domain.History, error) {
	replyID := change.ID
	if replyID == "" {
		replyID = uuid.NewString()
	}

	var apply *domain.ReplyApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		comment, err := r.Comments.GetByID(ctx, change.ParentID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if comment == nil {
			return code.ErrorEntityNotFound.WithDetails("comment " + change.ParentID)
		}

		created, err := r.Replies.Create(ctx, &domain.Reply{
			ID:        replyID,
			MapID:     mapID,
			CommentID: change.ParentID,
			AuthorUID: uid,
			Content:   change.Content,
		})
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityReply,
			EntityID:          created.ID,
			Action:            domain.HistoryActionCreate,
			UID:               uid,
			Version:           created.Version,
			Snapshot:          snapshotOf(created),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.ReplyApply{Accepted: true, CurrentVersion: created.Version, Reply: created}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// UpdateReply 更新回复内容，仅作者可编辑
func (s *conflictResolver) UpdateReply(ctx context.Context, uid int64, mapID, operationID string, change *ContentChange) (*domain.ReplyApply, *domain.History, error) {
	var apply *domain.ReplyApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Replies.GetByID(ctx, change.ID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("reply " + change.ID)
		}
		if current.AuthorUID != uid {
			return code.ErrorUnauthorizedMutation.WithDetails("reply belongs to another user")
		}

		if current.Version != change.BaseVersion {
			apply = &domain.ReplyApply{Accepted: false, CurrentVersion: current.Version, Reply: current}
			return nil
		}

		next := *current
		next.Content = change.Content
		ok, err := r.Replies.UpdateIfVersion(ctx, &next, change.BaseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			latest, err := r.Replies.GetByID(ctx, change.ID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.ReplyApply{Accepted: false, CurrentVersion: versionOfReply(latest), Reply: latest}
			return nil
		}

		updated, err := r.Replies.GetByID(ctx, change.ID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityReply,
			EntityID:          updated.ID,
			Action:            domain.HistoryActionUpdate,
			UID:               uid,
			Version:           updated.Version,
			Snapshot:          snapshotOf(updated),
			ContentDiff:       diff.PatchText(current.Content, change.Content),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.ReplyApply{Accepted: true, CurrentVersion: updated.Version, Reply: updated}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// DeleteReply 删除回复，仅作者可删除
func (s *conflictResolver) DeleteReply(ctx context.Context, uid int64, mapID, operationID, replyID string, baseVersion int64) (*domain.ReplyApply, *domain.History, error) {
	var apply *domain.ReplyApply
	var replay *domain.History

	err := s.uow.Transaction(ctx, func(r *domain.Repositories) error {
		prior, err := r.Histories.GetByClientOperationID(ctx, operationID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if prior != nil {
			replay = prior
			return nil
		}

		current, err := r.Replies.GetByID(ctx, replyID, mapID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if current == nil {
			return code.ErrorEntityNotFound.WithDetails("reply " + replyID)
		}
		if current.AuthorUID != uid {
			return code.ErrorUnauthorizedMutation.WithDetails("reply belongs to another user")
		}

		if current.Version != baseVersion {
			apply = &domain.ReplyApply{Accepted: false, CurrentVersion: current.Version, Reply: current}
			return nil
		}

		ok, err := r.Replies.DeleteIfVersion(ctx, replyID, mapID, baseVersion)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !ok {
			latest, err := r.Replies.GetByID(ctx, replyID, mapID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			apply = &domain.ReplyApply{Accepted: false, CurrentVersion: versionOfReply(latest), Reply: latest}
			return nil
		}

		if _, err := r.Histories.Create(ctx, &domain.History{
			MapID:             mapID,
			ClientOperationID: operationID,
			EntityType:        domain.HistoryEntityReply,
			EntityID:          replyID,
			Action:            domain.HistoryActionDelete,
			UID:               uid,
			Version:           current.Version,
			Snapshot:          snapshotOf(current),
		}); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		apply = &domain.ReplyApply{Accepted: true, CurrentVersion: current.Version, Reply: current}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return apply, replay, nil
}

// mustMapExist 校验地图存在
func (s *conflictResolver) mustMapExist(ctx context.Context, r *domain.Repositories, mapID string) error {
	m, err := r.Maps.GetByID(ctx, mapID)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if m == nil {
		return code.ErrorMapNotFound.WithDetails("map " + mapID)
	}
	return nil
}

func versionOfFeature(f *domain.Feature) int64 {
	if f == nil {
		return 0
	}
	return f.Version
}

func versionOfComment(c *domain.Comment) int64 {
	if c == nil {
		return 0
	}
	return c.Version
}

func versionOfReply(r *domain.Reply) int64 {
	if r == nil {
		return 0
	}
	return r.Version
}
