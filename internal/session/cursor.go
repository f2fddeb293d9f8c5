package session

import (
	"sync"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/pkg/geo"
)

// CursorUpdate 需要广播出去的光标位置
type CursorUpdate struct {
	MapID    string
	UID      int64
	Nickname string
	Position geo.Point
	At       time.Time
}

// CursorConfig 光标节流配置
type CursorConfig struct {
	// DistanceThreshold 位移超过该米数时立即广播
	DistanceThreshold float64
	// Debounce 小位移的合并窗口
	Debounce time.Duration
	// StaleAfter 光标条目的空闲回收时间
	StaleAfter time.Duration
}

// DefaultCursorConfig 返回默认节流配置
func DefaultCursorConfig() CursorConfig {
	return CursorConfig{
		DistanceThreshold: 50,
		Debounce:          100 * time.Millisecond,
		StaleAfter:        30 * time.Second,
	}
}

type cursorKey struct {
	mapID string
	uid   int64
}

// cursorState 单个协作者的光标节流状态
type cursorState struct {
	lastSent     geo.Point
	hasSent      bool
	lastActivity time.Time
	nickname     string
	// pending 等待合并窗口到期的最新位置
	pending      *geo.Point
	pendingTimer *time.Timer
}

// CursorThrottler throttles cursor broadcasts: large movements go out
// immediately, small jitters are coalesced into one debounced update.
// CursorThrottler 节流光标广播：大位移立即发出，小抖动在
// 合并窗口内只保留最后一个位置。
type CursorThrottler struct {
	mu     sync.Mutex
	config CursorConfig
	states map[cursorKey]*cursorState
	// emit 广播回调，由路由层注入
	emit func(CursorUpdate)
}

// NewCursorThrottler 创建光标节流器
func NewCursorThrottler(cfg CursorConfig, emit func(CursorUpdate)) *CursorThrottler {
	if cfg.DistanceThreshold <= 0 {
		cfg.DistanceThreshold = 50
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Second
	}
	return &CursorThrottler{
		config: cfg,
		states: make(map[cursorKey]*cursorState),
		emit:   emit,
	}
}

// Submit 上报一次光标位置
// 超过距离阈值立即广播并取消挂起的合并，否则进入合并窗口，
// 窗口内的后续位置覆盖之前的
func (t *CursorThrottler) Submit(mapID string, uid int64, nickname string, p geo.Point, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cursorKey{mapID: mapID, uid: uid}
	state, ok := t.states[key]
	if !ok {
		state = &cursorState{}
		t.states[key] = state
	}
	state.lastActivity = now
	state.nickname = nickname

	if !state.hasSent || geo.HaversineDistance(state.lastSent, p) >= t.config.DistanceThreshold {
		if state.pendingTimer != nil {
			state.pendingTimer.Stop()
			state.pendingTimer = nil
			state.pending = nil
		}
		state.lastSent = p
		state.hasSent = true
		t.emit(CursorUpdate{MapID: mapID, UID: uid, Nickname: nickname, Position: p, At: now})
		return
	}

	pos := p
	state.pending = &pos
	if state.pendingTimer != nil {
		state.pendingTimer.Stop()
	}
	state.pendingTimer = time.AfterFunc(t.config.Debounce, func() {
		t.flush(key)
	})
}

// flush 合并窗口到期，广播挂起的最新位置
func (t *CursorThrottler) flush(key cursorKey) {
	t.mu.Lock()
	state, ok := t.states[key]
	if !ok || state.pending == nil {
		t.mu.Unlock()
		return
	}
	pos := *state.pending
	nickname := state.nickname
	state.pending = nil
	state.pendingTimer = nil
	state.lastSent = pos
	state.hasSent = true
	t.mu.Unlock()

	t.emit(CursorUpdate{
		MapID:    key.mapID,
		UID:      key.uid,
		Nickname: nickname,
		Position: pos,
		At:       time.Now(),
	})
}

// Sweep 回收空闲超过 StaleAfter 的光标条目
func (t *CursorThrottler) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, state := range t.states {
		if now.Sub(state.lastActivity) >= t.config.StaleAfter {
			if state.pendingTimer != nil {
				state.pendingTimer.Stop()
			}
			delete(t.states, key)
			removed++
		}
	}
	return removed
}

// PurgeUser 用户离开房间时清掉其光标状态
func (t *CursorThrottler) PurgeUser(mapID string, uid int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cursorKey{mapID: mapID, uid: uid}
	if state, ok := t.states[key]; ok {
		if state.pendingTimer != nil {
			state.pendingTimer.Stop()
		}
		delete(t.states, key)
	}
}

// Shutdown 停止全部挂起的定时器
func (t *CursorThrottler) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, state := range t.states {
		if state.pendingTimer != nil {
			state.pendingTimer.Stop()
		}
		delete(t.states, key)
	}
}
