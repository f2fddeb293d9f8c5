package session

import (
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cursorCollector struct {
	mu      sync.Mutex
	updates []CursorUpdate
}

func (c *cursorCollector) emit(u CursorUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u)
}

func (c *cursorCollector) all() []CursorUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CursorUpdate, len(c.updates))
	copy(out, c.updates)
	return out
}

func TestCursorLargeMovementEmitsImmediately(t *testing.T) {

	collector := &cursorCollector{}
	th := NewCursorThrottler(CursorConfig{
		DistanceThreshold: 50,
		Debounce:          time.Hour, // 合并窗口不应被触发
		StaleAfter:        time.Hour,
	}, collector.emit)
	defer th.Shutdown()

	now := time.Now()

	// 首个位置立即广播
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.40, Lat: 39.90}, now)
	require.Len(t, collector.all(), 1)

	// 约 1.1 公里的移动超过阈值，立即广播
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.40, Lat: 39.91}, now)
	updates := collector.all()
	require.Len(t, updates, 2)
	assert.Equal(t, 39.91, updates[1].Position.Lat)
}

func TestCursorSmallMovementsAreCoalesced(t *testing.T) {

	collector := &cursorCollector{}
	th := NewCursorThrottler(CursorConfig{
		DistanceThreshold: 50,
		Debounce:          20 * time.Millisecond,
		StaleAfter:        time.Hour,
	}, collector.emit)
	defer th.Shutdown()

	now := time.Now()
	base := geo.Point{Lng: 116.400000, Lat: 39.900000}
	th.Submit("map-1", 100, "alice", base, now)

	// 连续 20 次亚阈值抖动，每次不到 1 米
	for i := 1; i <= 20; i++ {
		p := geo.Point{Lng: base.Lng + float64(i)*0.000001, Lat: base.Lat}
		th.Submit("map-1", 100, "alice", p, now)
	}

	// 合并窗口到期前只有首次广播
	assert.Len(t, collector.all(), 1)

	// 窗口到期后恰好多出一条，且位置是最后一次上报的
	assert.Eventually(t, func() bool {
		return len(collector.all()) == 2
	}, time.Second, 5*time.Millisecond)

	updates := collector.all()
	require.Len(t, updates, 2)
	assert.InDelta(t, base.Lng+20*0.000001, updates[1].Position.Lng, 1e-9)
}

func TestCursorThresholdCancelsPendingDebounce(t *testing.T) {

	collector := &cursorCollector{}
	th := NewCursorThrottler(CursorConfig{
		DistanceThreshold: 50,
		Debounce:          50 * time.Millisecond,
		StaleAfter:        time.Hour,
	}, collector.emit)
	defer th.Shutdown()

	now := time.Now()
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.40, Lat: 39.90}, now)
	// 亚阈值移动进入合并窗口
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.400001, Lat: 39.90}, now)
	// 大位移立即广播并取消挂起的合并
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.42, Lat: 39.90}, now)

	require.Len(t, collector.all(), 2)

	// 等待一个合并窗口，确认被取消的位置没有再发出
	time.Sleep(120 * time.Millisecond)
	assert.Len(t, collector.all(), 2)
}

func TestCursorSweepRemovesIdleEntries(t *testing.T) {

	collector := &cursorCollector{}
	th := NewCursorThrottler(CursorConfig{
		DistanceThreshold: 50,
		Debounce:          10 * time.Millisecond,
		StaleAfter:        30 * time.Second,
	}, collector.emit)
	defer th.Shutdown()

	now := time.Now()
	th.Submit("map-1", 100, "alice", geo.Point{Lng: 116.40, Lat: 39.90}, now)
	th.Submit("map-1", 200, "bob", geo.Point{Lng: 116.41, Lat: 39.90}, now.Add(20*time.Second))

	// 只有空闲超过 30 秒的条目被回收
	removed := th.Sweep(now.Add(35 * time.Second))
	assert.Equal(t, 1, removed)

	removed = th.Sweep(now.Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
}
