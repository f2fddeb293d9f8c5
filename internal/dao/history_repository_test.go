package dao

import (
	"context"
	"testing"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryClientOperationIDUnique(t *testing.T) {

	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	first := &domain.History{
		MapID:             "map-1",
		ClientOperationID: "client-op-1",
		EntityType:        domain.HistoryEntityFeature,
		EntityID:          "feature-1",
		Action:            domain.HistoryActionCreate,
		UID:               1,
		Version:           1,
	}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	// 相同 client_operation_id 的第二次写入必须被唯一约束拒绝
	dup := &domain.History{
		MapID:             "map-1",
		ClientOperationID: "client-op-1",
		EntityType:        domain.HistoryEntityFeature,
		EntityID:          "feature-1",
		Action:            domain.HistoryActionUpdate,
		UID:               1,
		Version:           2,
	}
	_, err = repo.Create(ctx, dup)
	assert.Error(t, err)

	found, err := repo.GetByClientOperationID(ctx, "client-op-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.HistoryActionCreate, found.Action)
	assert.Equal(t, int64(1), found.Version)

	missing, err := repo.GetByClientOperationID(ctx, "client-op-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryListByMapOrder(t *testing.T) {

	d := newTestDao(t)
	repo := NewHistoryRepository(d)
	ctx := context.Background()

	for i, opID := range []string{"op-a", "op-b", "op-c"} {
		_, err := repo.Create(ctx, &domain.History{
			MapID:             "map-1",
			ClientOperationID: opID,
			EntityType:        domain.HistoryEntityFeature,
			EntityID:          "feature-1",
			Action:            domain.HistoryActionUpdate,
			UID:               1,
			Version:           int64(i + 1),
		})
		require.NoError(t, err)
	}

	histories, total, err := repo.ListByMap(ctx, "map-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, histories, 3)

	// 最近的变更排在最前
	assert.Equal(t, "op-c", histories[0].ClientOperationID)
	assert.Equal(t, "op-a", histories[2].ClientOperationID)
}
