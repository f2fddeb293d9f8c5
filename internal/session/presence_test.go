package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceJoinAndExplicitLeave(t *testing.T) {

	p := NewPresenceTracker()
	now := time.Now()

	result := p.Join("sess-1", "", "map-1", 100, "alice", now)
	require.Len(t, result.Events, 1)
	assert.Equal(t, EventJoined, result.Events[0].Kind)
	assert.False(t, result.Rejoined)
	require.Len(t, result.Members, 1)
	assert.Equal(t, StatusActive, result.Members[0].Status)

	// 同一用户的第二个会话不再触发用户级事件
	result = p.Join("sess-2", "", "map-1", 100, "alice", now)
	assert.Empty(t, result.Events)
	assert.Len(t, result.Members, 1)

	// 还有存活会话时离开不触发 disconnected
	events := p.Leave("sess-1")
	assert.Empty(t, events)

	// 最后一个会话离开时恰好触发一次 disconnected
	events = p.Leave("sess-2")
	require.Len(t, events, 1)
	assert.Equal(t, EventDisconnected, events[0].Kind)
	assert.Equal(t, int64(100), events[0].UID)

	assert.Empty(t, p.Members("map-1"))
}

func TestPresenceAbruptDisconnectAndReconnect(t *testing.T) {

	p := NewPresenceTracker()
	now := time.Now()

	p.Join("sess-1", "", "map-1", 100, "alice", now)

	// 意外断开转入 away，而不是直接移除
	events := p.Disconnect("sess-1", now)
	require.Len(t, events, 1)
	assert.Equal(t, EventAway, events[0].Kind)

	members := p.Members("map-1")
	require.Len(t, members, 1)
	assert.Equal(t, StatusAway, members[0].Status)

	// 重复断开不再触发事件
	events = p.Disconnect("sess-1", now)
	assert.Empty(t, events)

	// 携带旧会话ID重连，恢复为 active 并触发 returned
	result := p.Join("sess-2", "sess-1", "map-1", 100, "alice", now.Add(time.Minute))
	assert.True(t, result.Rejoined)
	require.Len(t, result.Events, 1)
	assert.Equal(t, EventReturned, result.Events[0].Kind)
	// 重连结果携带旧会话的最后活动时间，客户端据此做增量拉取
	assert.Equal(t, now, result.LastActivity)

	members = p.Members("map-1")
	require.Len(t, members, 1)
	assert.Equal(t, StatusActive, members[0].Status)

	// 旧会话ID已失效
	_, _, ok := p.Lookup("sess-1")
	assert.False(t, ok)
	mapID, uid, ok := p.Lookup("sess-2")
	assert.True(t, ok)
	assert.Equal(t, "map-1", mapID)
	assert.Equal(t, int64(100), uid)
}

func TestPresenceStaleSweep(t *testing.T) {

	p := NewPresenceTracker()
	start := time.Now()
	maxAge := 4 * time.Hour

	p.Join("sess-1", "", "map-1", 100, "alice", start)
	p.Join("sess-2", "", "map-1", 200, "bob", start)

	p.Disconnect("sess-1", start)

	// 未到期的 away 会话不被清扫
	events := p.SweepStale(start.Add(time.Hour), maxAge)
	assert.Empty(t, events)
	assert.Len(t, p.Members("map-1"), 2)

	// 到期后移除并恰好触发一次 disconnected
	events = p.SweepStale(start.Add(maxAge+time.Minute), maxAge)
	require.Len(t, events, 1)
	assert.Equal(t, EventDisconnected, events[0].Kind)
	assert.Equal(t, int64(100), events[0].UID)

	// 再次清扫不产生重复事件
	events = p.SweepStale(start.Add(maxAge+2*time.Minute), maxAge)
	assert.Empty(t, events)

	members := p.Members("map-1")
	require.Len(t, members, 1)
	assert.Equal(t, int64(200), members[0].UID)
}

func TestPresenceSweepMeasuresFromLastSeen(t *testing.T) {

	p := NewPresenceTracker()
	start := time.Now()
	maxAge := 4 * time.Hour

	p.Join("sess-1", "", "map-1", 100, "alice", start)
	p.Touch("sess-1", start.Add(2*time.Hour))
	p.Disconnect("sess-1", start.Add(2*time.Hour))

	// 断开也是一次活动：从最后活动时间起算，4 小时未满不移除
	events := p.SweepStale(start.Add(4*time.Hour), maxAge)
	assert.Empty(t, events)

	events = p.SweepStale(start.Add(6*time.Hour+time.Minute), maxAge)
	require.Len(t, events, 1)
	assert.Equal(t, EventDisconnected, events[0].Kind)
}

func TestPresenceRejoinAfterStaleRemoveIsFreshJoin(t *testing.T) {

	p := NewPresenceTracker()
	start := time.Now()

	p.Join("sess-1", "", "map-1", 100, "alice", start)
	p.Disconnect("sess-1", start)
	p.SweepStale(start.Add(5*time.Hour), 4*time.Hour)

	// 过期移除后再携带旧会话ID加入，按全新加入处理
	result := p.Join("sess-2", "sess-1", "map-1", 100, "alice", start.Add(5*time.Hour))
	assert.False(t, result.Rejoined)
	require.Len(t, result.Events, 1)
	assert.Equal(t, EventJoined, result.Events[0].Kind)
}
