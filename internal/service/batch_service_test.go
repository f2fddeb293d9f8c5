package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/haierkeys/map-annotation-sync-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawOps(t *testing.T, ops ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(ops))
	for _, op := range ops {
		out = append(out, json.RawMessage(op))
	}
	return out
}

func TestBatchSubmitOrderedReplay(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	// 创建、更新、评论按客户端顺序依次生效
	resp, events, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-1","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
			`{"op":"feature.update","operationId":"op-2","featureId":"feat-1","baseVersion":1,"properties":"{\"color\":\"red\"}"}`,
			`{"op":"comment.create","operationId":"op-3","commentId":"cmt-1","featureId":"feat-1","content":"hello"}`,
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	for i, r := range resp.Results {
		assert.True(t, r.Success, "operation %d should succeed", i)
		assert.False(t, r.Idempotent)
	}
	assert.Equal(t, int64(2), resp.Results[1].CurrentVersion)

	// 每条成功的变更各产生一次广播
	require.Len(t, events, 3)
	assert.Equal(t, dto.FeatureCreated, events[0].Action)
	assert.Equal(t, dto.FeatureUpdated, events[1].Action)
	assert.Equal(t, dto.CommentCreated, events[2].Action)
}

func TestBatchSubmitReversedOrderFailsDependents(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	// 更新排在创建之前：更新失败为 not-found，创建仍然成功
	resp, events, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			`{"op":"feature.update","operationId":"op-1","featureId":"feat-1","baseVersion":1,"properties":"{}"}`,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-2","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, dto.OpErrorNotFound, resp.Results[0].Error)
	assert.True(t, resp.Results[1].Success)

	// 只有成功的创建被广播
	require.Len(t, events, 1)
	assert.Equal(t, dto.FeatureCreated, events[0].Action)
}

func TestBatchSubmitAtMostOnceReplay(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	batch := &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-1","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
			`{"op":"feature.update","operationId":"op-2","featureId":"feat-1","baseVersion":1,"properties":"{\"n\":1}"}`,
		),
	}

	resp, _, err := svc.Submit(context.Background(), 1, batch)
	require.NoError(t, err)
	require.True(t, resp.Results[0].Success)
	require.True(t, resp.Results[1].Success)

	// 整批重传：全部短路为幂等重放，版本不再推进，也不再广播
	resp, events, err := svc.Submit(context.Background(), 1, batch)
	require.NoError(t, err)
	for _, r := range resp.Results {
		assert.True(t, r.Success)
		assert.True(t, r.Idempotent)
	}
	assert.Empty(t, events)

	current, err := repos.Features.GetByID(context.Background(), "feat-1", "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Version)
}

func TestBatchSubmitConflictCarriesServerState(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	_, _, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-1","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
			`{"op":"feature.update","operationId":"op-2","featureId":"feat-1","baseVersion":1,"properties":"{\"n\":1}"}`,
		),
	})
	require.NoError(t, err)

	// 另一客户端基于过期版本提交：结果是冲突而不是错误
	resp, events, err := svc.Submit(context.Background(), 2, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			`{"op":"feature.update","operationId":"op-other","featureId":"feat-1","baseVersion":1,"properties":"{\"n\":9}"}`,
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	result := resp.Results[0]
	assert.False(t, result.Success)
	assert.Equal(t, dto.OpErrorConflict, result.Error)
	assert.Equal(t, int64(2), result.CurrentVersion)
	current, ok := result.Current.(*dto.Feature)
	require.True(t, ok)
	assert.Equal(t, `{"n":1}`, current.Properties)

	assert.Empty(t, events)
}

func TestBatchSubmitUnknownAndMalformedOperations(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	resp, events, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			`{"op":"feature.teleport","operationId":"op-1"}`,
			`{not json`,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-3","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, dto.OpErrorValidation, resp.Results[0].Error)
	assert.Equal(t, dto.OpErrorValidation, resp.Results[1].Error)
	assert.True(t, resp.Results[2].Success)
	assert.Len(t, events, 1)
}

func TestBatchSubmitRejectsMissingOperationID(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	// 两条都缺 operationId：必须逐条拒绝，
	// 否则第二条会命中第一条的账本记录被误判成幂等重放
	resp, events, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			fmt.Sprintf(`{"op":"feature.create","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
			fmt.Sprintf(`{"op":"feature.create","featureId":"feat-2","type":"marker","geometry":%q}`, testGeometry),
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	for i, r := range resp.Results {
		assert.False(t, r.Success, "operation %d must be rejected", i)
		assert.False(t, r.Idempotent, "operation %d must not be treated as a replay", i)
		assert.Equal(t, dto.OpErrorValidation, r.Error)
	}
	assert.Empty(t, events)

	// 无效操作不落库，账本里也没有空ID的记录
	for _, id := range []string{"feat-1", "feat-2"} {
		feature, err := repos.Features.GetByID(context.Background(), id, "map-1")
		require.NoError(t, err)
		assert.Nil(t, feature)
	}
	prior, err := repos.Histories.GetByClientOperationID(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, prior)
}

func TestBatchSubmitAuthorOnlyMutations(t *testing.T) {

	resolver, repos := newTestEnv(t)
	seedMap(t, repos, "map-1")
	svc := NewBatchService(resolver, nil, nil)

	_, _, err := svc.Submit(context.Background(), 1, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			fmt.Sprintf(`{"op":"feature.create","operationId":"op-1","featureId":"feat-1","type":"marker","geometry":%q}`, testGeometry),
			`{"op":"comment.create","operationId":"op-2","commentId":"cmt-1","featureId":"feat-1","content":"mine"}`,
		),
	})
	require.NoError(t, err)

	// 他人删除评论被拒绝为 unauthorized
	resp, _, err := svc.Submit(context.Background(), 2, &dto.BatchSubmitRequest{
		MapID: "map-1",
		Operations: rawOps(t,
			`{"op":"comment.delete","operationId":"op-x","commentId":"cmt-1","baseVersion":1}`,
		),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, dto.OpErrorUnauthorized, resp.Results[0].Error)

	comment, err := repos.Comments.GetByID(context.Background(), "cmt-1", "map-1")
	require.NoError(t, err)
	require.NotNil(t, comment)
}
