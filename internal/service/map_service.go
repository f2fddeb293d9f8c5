package service

import (
	"context"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MapService 地图的创建与管理
type MapService interface {
	Create(ctx context.Context, uid int64, req *dto.MapCreateRequest) (*dto.Map, error)
	Update(ctx context.Context, uid int64, req *dto.MapUpdateRequest) (*dto.Map, error)
	Delete(ctx context.Context, uid int64, mapID string) error

	// Get 获取单张地图，并发的同键读取会被合并
	Get(ctx context.Context, mapID string) (*dto.Map, error)

	// ListByOwner 获取用户创建的地图列表
	ListByOwner(ctx context.Context, uid int64) ([]*dto.Map, error)
}

type mapService struct {
	maps   domain.MapRepository
	sf     singleflight.Group
	logger *zap.Logger
}

var _ MapService = (*mapService)(nil)

// NewMapService 创建 MapService 实例
func NewMapService(maps domain.MapRepository, lg *zap.Logger) MapService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &mapService{maps: maps, logger: lg}
}

func (s *mapService) Create(ctx context.Context, uid int64, req *dto.MapCreateRequest) (*dto.Map, error) {
	mapID := req.MapID
	if mapID == "" {
		mapID = uuid.NewString()
	}

	existing, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorInvalidParams.WithDetails("map already exists: " + mapID)
	}

	created, err := s.maps.Create(ctx, &domain.MapInfo{
		ID:          mapID,
		Title:       req.Title,
		Description: req.Description,
		OwnerUID:    uid,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("map created",
		zap.String(logger.FieldMapID, created.ID),
		zap.Int64(logger.FieldUID, uid))
	return dto.MapFromDomain(created), nil
}

func (s *mapService) Update(ctx context.Context, uid int64, req *dto.MapUpdateRequest) (*dto.Map, error) {
	current, err := s.maps.GetByID(ctx, req.MapID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if current == nil {
		return nil, code.ErrorMapNotFound.WithDetails("map " + req.MapID)
	}
	if current.OwnerUID != uid {
		return nil, code.ErrorUnauthorizedMutation.WithDetails("map belongs to another user")
	}

	current.Title = req.Title
	current.Description = req.Description
	if err := s.maps.Update(ctx, current); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.sf.Forget(req.MapID)
	return dto.MapFromDomain(current), nil
}

func (s *mapService) Delete(ctx context.Context, uid int64, mapID string) error {
	current, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	if current == nil {
		return code.ErrorMapNotFound.WithDetails("map " + mapID)
	}
	if current.OwnerUID != uid {
		return code.ErrorUnauthorizedMutation.WithDetails("map belongs to another user")
	}

	if err := s.maps.Delete(ctx, mapID, uid); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	s.sf.Forget(mapID)

	s.logger.Info("map deleted",
		zap.String(logger.FieldMapID, mapID),
		zap.Int64(logger.FieldUID, uid))
	return nil
}

func (s *mapService) Get(ctx context.Context, mapID string) (*dto.Map, error) {
	// 房间加入的瞬时读取洪峰会命中同一张地图，合并为一次查询
	v, err, _ := s.sf.Do(mapID, func() (interface{}, error) {
		return s.maps.GetByID(ctx, mapID)
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	m, _ := v.(*domain.MapInfo)
	if m == nil {
		return nil, code.ErrorMapNotFound.WithDetails("map " + mapID)
	}
	return dto.MapFromDomain(m), nil
}

func (s *mapService) ListByOwner(ctx context.Context, uid int64) ([]*dto.Map, error) {
	maps, err := s.maps.ListByOwner(ctx, uid)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	out := make([]*dto.Map, 0, len(maps))
	for _, m := range maps {
		out = append(out, dto.MapFromDomain(m))
	}
	return out, nil
}
