package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/writequeue"

	"go.uber.org/zap"
)

// FeatureService 要素的单条变更与查询
// 单条变更与批量回放走同一个冲突解析与幂等账本
type FeatureService interface {
	Create(ctx context.Context, uid int64, req *dto.FeatureCreateRequest) (dto.OperationResult, *BroadcastEvent, error)
	Update(ctx context.Context, uid int64, req *dto.FeatureUpdateRequest) (dto.OperationResult, *BroadcastEvent, error)
	Delete(ctx context.Context, uid int64, req *dto.FeatureDeleteRequest) (dto.OperationResult, *BroadcastEvent, error)

	// List 获取地图要素，支持外包框过滤与增量同步
	List(ctx context.Context, req *dto.FeatureListRequest) ([]*dto.Feature, error)
}

type featureService struct {
	resolver ConflictResolver
	features domain.FeatureRepository
	queue    *writequeue.Manager
	logger   *zap.Logger
}

var _ FeatureService = (*featureService)(nil)

// NewFeatureService 创建 FeatureService 实例
func NewFeatureService(resolver ConflictResolver, features domain.FeatureRepository, queue *writequeue.Manager, lg *zap.Logger) FeatureService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &featureService{resolver: resolver, features: features, queue: queue, logger: lg}
}

// execute 单条变更也经过每地图写入队列，与批量回放共享顺序
func (s *featureService) execute(ctx context.Context, mapID string, fn func() error) error {
	if s.queue != nil {
		return s.queue.Execute(ctx, mapID, fn)
	}
	return fn()
}

func (s *featureService) Create(ctx context.Context, uid int64, req *dto.FeatureCreateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpFeatureCreate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.CreateFeature(ctx, uid, req.MapID, req.OperationID, &FeatureChange{
			FeatureID:  req.FeatureID,
			Type:       req.Type,
			Geometry:   req.Geometry,
			Properties: req.Properties,
		})
		result, event = featureOutcome(result, dto.FeatureCreated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *featureService) Update(ctx context.Context, uid int64, req *dto.FeatureUpdateRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpFeatureUpdate}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.UpdateFeature(ctx, uid, req.MapID, req.OperationID, &FeatureChange{
			FeatureID:   req.FeatureID,
			BaseVersion: req.BaseVersion,
			Type:        req.Type,
			Geometry:    req.Geometry,
			Properties:  req.Properties,
		})
		result, event = featureOutcome(result, dto.FeatureUpdated, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *featureService) Delete(ctx context.Context, uid int64, req *dto.FeatureDeleteRequest) (dto.OperationResult, *BroadcastEvent, error) {
	result := dto.OperationResult{OperationID: req.OperationID, Op: dto.OpFeatureDelete}
	var event *BroadcastEvent

	err := s.execute(ctx, req.MapID, func() error {
		apply, replay, err := s.resolver.DeleteFeature(ctx, uid, req.MapID, req.OperationID, req.FeatureID, req.BaseVersion)
		result, event = featureDeleteOutcome(result, uid, req.MapID, apply, replay, err)
		return nil
	})
	if err != nil {
		return result, nil, code.ErrorBatchFailed.WithDetails(err.Error())
	}
	return result, event, nil
}

func (s *featureService) List(ctx context.Context, req *dto.FeatureListRequest) ([]*dto.Feature, error) {
	var features []*domain.Feature
	var err error

	if req.Since > 0 {
		since := time.UnixMilli(req.Since)
		features, err = s.features.ListChangedSince(ctx, req.MapID, since)
	} else {
		var bbox *domain.BoundingBox
		bbox, err = parseBBox(req.BBox)
		if err != nil {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
		features, err = s.features.ListByMap(ctx, req.MapID, bbox)
	}
	if err != nil {
		return nil, code.ErrorEntityListFailed.WithDetails(err.Error())
	}

	out := make([]*dto.Feature, 0, len(features))
	for _, f := range features {
		out = append(out, dto.FeatureFromDomain(f))
	}
	return out, nil
}

// parseBBox 解析 "minLng,minLat,maxLng,maxLat" 格式的外包框
func parseBBox(raw string) (*domain.BoundingBox, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, strconv.ErrSyntax
	}
	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &domain.BoundingBox{MinLng: values[0], MinLat: values[1], MaxLng: values[2], MaxLat: values[3]}, nil
}
