package dao

import (
	"context"
	"testing"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/gookit/goutil/dump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrateAll(db))

	return New(db, nil)
}

func TestFeatureVersionedUpdate(t *testing.T) {

	d := newTestDao(t)
	repo := NewFeatureRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Feature{
		ID:       uuid.NewString(),
		MapID:    "map-1",
		Type:     domain.FeatureTypeMarker,
		Geometry: `{"type":"Point","coordinates":[116.4,39.9]}`,
		MinLng:   116.4, MinLat: 39.9, MaxLng: 116.4, MaxLat: 39.9,
		CreatedBy: 1,
		UpdatedBy: 1,
	})
	require.NoError(t, err)
	dump.P(created)

	assert.Equal(t, int64(1), created.Version)

	// 版本匹配的更新应当成功并推进版本号
	created.Geometry = `{"type":"Point","coordinates":[116.5,39.9]}`
	ok, err := repo.UpdateIfVersion(ctx, created, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	current, err := repo.GetByID(ctx, created.ID, "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Version)

	// 基于过期版本的更新不应产生任何写入
	ok, err = repo.UpdateIfVersion(ctx, created, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err = repo.GetByID(ctx, created.ID, "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Version)
}

func TestFeatureVersionedDelete(t *testing.T) {

	d := newTestDao(t)
	repo := NewFeatureRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Feature{
		ID:    uuid.NewString(),
		MapID: "map-1",
		Type:  domain.FeatureTypePolygon,
	})
	require.NoError(t, err)

	// 过期版本的删除被拒绝
	ok, err := repo.DeleteIfVersion(ctx, created.ID, "map-1", 99)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteIfVersion(ctx, created.ID, "map-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	gone, err := repo.GetByID(ctx, created.ID, "map-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestFeatureListByMapWithBoundingBox(t *testing.T) {

	d := newTestDao(t)
	repo := NewFeatureRepository(d)
	ctx := context.Background()

	inside := &domain.Feature{
		ID: uuid.NewString(), MapID: "map-1", Type: domain.FeatureTypeMarker,
		MinLng: 116.40, MinLat: 39.90, MaxLng: 116.40, MaxLat: 39.90,
	}
	outside := &domain.Feature{
		ID: uuid.NewString(), MapID: "map-1", Type: domain.FeatureTypeMarker,
		MinLng: 10.0, MinLat: 10.0, MaxLng: 10.0, MaxLat: 10.0,
	}
	otherMap := &domain.Feature{
		ID: uuid.NewString(), MapID: "map-2", Type: domain.FeatureTypeMarker,
		MinLng: 116.40, MinLat: 39.90, MaxLng: 116.40, MaxLat: 39.90,
	}
	for _, f := range []*domain.Feature{inside, outside, otherMap} {
		_, err := repo.Create(ctx, f)
		require.NoError(t, err)
	}

	bbox := &domain.BoundingBox{MinLng: 116.0, MinLat: 39.0, MaxLng: 117.0, MaxLat: 40.0}
	features, err := repo.ListByMap(ctx, "map-1", bbox)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, inside.ID, features[0].ID)

	all, err := repo.ListByMap(ctx, "map-1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
