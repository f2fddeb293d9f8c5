package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/haierkeys/map-annotation-sync-service/internal/dao"
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const testGeometry = `{"type":"Point","coordinates":[116.40,39.90]}`

// newTestEnv 基于内存数据库构建冲突解析器及其仓储
func newTestEnv(t *testing.T) (ConflictResolver, *domain.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrateAll(db))

	d := dao.New(db, nil)
	return NewConflictResolver(dao.NewUnitOfWork(d), nil), d.Repos()
}

// seedMap 预置一张地图
func seedMap(t *testing.T, repos *domain.Repositories, mapID string) {
	t.Helper()
	_, err := repos.Maps.Create(context.Background(), &domain.MapInfo{
		ID: mapID, Title: "test map", OwnerUID: 1,
	})
	require.NoError(t, err)
}

func TestConflictResolverFeatureLifecycle(t *testing.T) {

	resolver, repos := newTestEnv(t)
	ctx := context.Background()
	seedMap(t, repos, "map-1")

	apply, replay, err := resolver.CreateFeature(ctx, 1, "map-1", "op-create", &FeatureChange{
		FeatureID: "feat-1",
		Type:      "marker",
		Geometry:  testGeometry,
	})
	require.NoError(t, err)
	require.Nil(t, replay)
	require.True(t, apply.Accepted)
	assert.Equal(t, int64(1), apply.CurrentVersion)

	// 基于正确版本的更新被接受，版本加一
	apply, replay, err = resolver.UpdateFeature(ctx, 2, "map-1", "op-update", &FeatureChange{
		FeatureID:   "feat-1",
		BaseVersion: 1,
		Properties:  `{"color":"red"}`,
	})
	require.NoError(t, err)
	require.Nil(t, replay)
	require.True(t, apply.Accepted)
	assert.Equal(t, int64(2), apply.CurrentVersion)
	assert.Equal(t, int64(2), apply.Feature.UpdatedBy)

	// 基于过期版本的更新被拒绝并携带服务器当前状态
	apply, replay, err = resolver.UpdateFeature(ctx, 3, "map-1", "op-stale", &FeatureChange{
		FeatureID:   "feat-1",
		BaseVersion: 1,
		Properties:  `{"color":"blue"}`,
	})
	require.NoError(t, err)
	require.Nil(t, replay)
	require.False(t, apply.Accepted)
	assert.Equal(t, int64(2), apply.CurrentVersion)
	assert.Equal(t, `{"color":"red"}`, apply.Feature.Properties)

	// 被拒绝的操作不进入幂等账本，可换新操作重试
	prior, err := repos.Histories.GetByClientOperationID(ctx, "op-stale")
	require.NoError(t, err)
	assert.Nil(t, prior)
}

func TestConflictResolverIdempotentReplay(t *testing.T) {

	resolver, repos := newTestEnv(t)
	ctx := context.Background()
	seedMap(t, repos, "map-1")

	apply, replay, err := resolver.CreateFeature(ctx, 1, "map-1", "op-1", &FeatureChange{
		FeatureID: "feat-1",
		Type:      "marker",
		Geometry:  testGeometry,
	})
	require.NoError(t, err)
	require.Nil(t, replay)
	require.True(t, apply.Accepted)

	// 相同操作ID重放：短路返回账本记录，不产生第二个要素
	apply, replay, err = resolver.CreateFeature(ctx, 1, "map-1", "op-1", &FeatureChange{
		FeatureID: "feat-other",
		Type:      "marker",
		Geometry:  testGeometry,
	})
	require.NoError(t, err)
	assert.Nil(t, apply)
	require.NotNil(t, replay)
	assert.Equal(t, "feat-1", replay.EntityID)

	count, err := repos.Features.CountByMap(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConflictResolverCommentAuthorOnly(t *testing.T) {

	resolver, repos := newTestEnv(t)
	ctx := context.Background()
	seedMap(t, repos, "map-1")

	_, _, err := resolver.CreateFeature(ctx, 1, "map-1", "op-f", &FeatureChange{
		FeatureID: "feat-1", Type: "marker", Geometry: testGeometry,
	})
	require.NoError(t, err)

	apply, _, err := resolver.CreateComment(ctx, 1, "map-1", "op-c", &ContentChange{
		ID: "cmt-1", ParentID: "feat-1", Content: "first",
	})
	require.NoError(t, err)
	require.True(t, apply.Accepted)

	// 非作者的更新被拒绝
	_, _, err = resolver.UpdateComment(ctx, 2, "map-1", "op-u", &ContentChange{
		ID: "cmt-1", BaseVersion: 1, Content: "hijacked",
	})
	require.Error(t, err)

	// 作者本人的更新成功，历史记录携带内容补丁
	apply, _, err = resolver.UpdateComment(ctx, 1, "map-1", "op-u2", &ContentChange{
		ID: "cmt-1", BaseVersion: 1, Content: "second",
	})
	require.NoError(t, err)
	require.True(t, apply.Accepted)
	assert.Equal(t, "second", apply.Comment.Content)

	entries, err := repos.Histories.ListByEntity(ctx, domain.HistoryEntityComment, "cmt-1", "map-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ContentDiff)
}

func TestConflictResolverDeleteFeatureCascades(t *testing.T) {

	resolver, repos := newTestEnv(t)
	ctx := context.Background()
	seedMap(t, repos, "map-1")

	_, _, err := resolver.CreateFeature(ctx, 1, "map-1", "op-f", &FeatureChange{
		FeatureID: "feat-1", Type: "marker", Geometry: testGeometry,
	})
	require.NoError(t, err)
	_, _, err = resolver.CreateComment(ctx, 1, "map-1", "op-c", &ContentChange{
		ID: "cmt-1", ParentID: "feat-1", Content: "note",
	})
	require.NoError(t, err)
	_, _, err = resolver.CreateReply(ctx, 1, "map-1", "op-r", &ContentChange{
		ID: "rpl-1", ParentID: "cmt-1", Content: "ack",
	})
	require.NoError(t, err)

	apply, _, err := resolver.DeleteFeature(ctx, 1, "map-1", "op-d", "feat-1", 1)
	require.NoError(t, err)
	require.True(t, apply.Accepted)

	comment, err := repos.Comments.GetByID(ctx, "cmt-1", "map-1")
	require.NoError(t, err)
	assert.Nil(t, comment)
	reply, err := repos.Replies.GetByID(ctx, "rpl-1", "map-1")
	require.NoError(t, err)
	assert.Nil(t, reply)

	// 删除后再次更新返回 not found
	_, _, err = resolver.UpdateFeature(ctx, 1, "map-1", "op-x", &FeatureChange{
		FeatureID: "feat-1", BaseVersion: 1, Properties: "{}",
	})
	require.Error(t, err)
}

// 属性测试：任意接受的更新序列下版本严格单调递增，
// 且任何基于过期版本的更新都不会改变服务器状态
func TestConflictResolverVersionMonotonicity(t *testing.T) {

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("accepted updates advance version by exactly one", prop.ForAll(
		func(staleFlags []bool) bool {
			resolver, repos := newTestEnv(t)
			ctx := context.Background()
			seedMap(t, repos, "map-p")

			_, _, err := resolver.CreateFeature(ctx, 1, "map-p", "op-seed", &FeatureChange{
				FeatureID: "feat-p", Type: "marker", Geometry: testGeometry,
			})
			if err != nil {
				return false
			}

			version := int64(1)
			for i, stale := range staleFlags {
				base := version
				if stale && version > 1 {
					base = version - 1
				}
				apply, _, err := resolver.UpdateFeature(ctx, 1, "map-p", fmt.Sprintf("op-%d", i), &FeatureChange{
					FeatureID:   "feat-p",
					BaseVersion: base,
					Properties:  fmt.Sprintf(`{"step":%d}`, i),
				})
				if err != nil {
					return false
				}
				if base == version {
					if !apply.Accepted || apply.CurrentVersion != version+1 {
						return false
					}
					version++
				} else {
					if apply.Accepted || apply.CurrentVersion != version {
						return false
					}
				}
			}

			current, err := repos.Features.GetByID(ctx, "feat-p", "map-p")
			return err == nil && current != nil && current.Version == version
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
