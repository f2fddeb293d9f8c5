package session

import (
	"sync"
	"time"
)

// MemberStatus 协作者在线状态
type MemberStatus string

const (
	// StatusActive 连接正常
	StatusActive MemberStatus = "active"
	// StatusAway 连接意外断开，等待重连
	StatusAway MemberStatus = "away"
)

// EventKind 在线状态变化事件类型
type EventKind string

const (
	EventJoined       EventKind = "joined"
	EventReturned     EventKind = "returned"
	EventAway         EventKind = "away"
	EventDisconnected EventKind = "disconnected"
)

// Event 在线状态变化事件，由调用方负责广播
type Event struct {
	Kind     EventKind
	MapID    string
	UID      int64
	Nickname string
}

// Member 房间内单个协作者的可见状态
type Member struct {
	UID          int64
	Nickname     string
	Status       MemberStatus
	LastActivity time.Time
}

// memberSession 单个连接会话的在线状态
type memberSession struct {
	sessionID string
	mapID     string
	uid       int64
	nickname  string
	status    MemberStatus
	// lastActivity 最后一次可观测的活动时间，断开本身也算一次活动，
	// away 会话的过期清扫按 now - lastActivity 判断
	lastActivity time.Time
}

// JoinResult 加入房间的结果
type JoinResult struct {
	// Rejoined 为 true 表示本次是重连恢复而非新加入
	Rejoined bool
	// LastActivity 重连时旧会话的最后活动时间，客户端据此做增量拉取
	LastActivity time.Time
	Events       []Event
	Members      []Member
}

// PresenceTracker 跟踪所有房间的会话在线状态
// 同一用户可以有多个会话，用户级事件只在首个会话加入
// 和最后一个会话移除时各触发一次
type PresenceTracker struct {
	mu       sync.Mutex
	sessions map[string]*memberSession
}

// NewPresenceTracker 创建在线状态跟踪器
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		sessions: make(map[string]*memberSession),
	}
}

// Join 将会话加入房间
// previousSessionID 不为空且可恢复时，迁移旧会话状态并标记为重连
func (p *PresenceTracker) Join(sessionID, previousSessionID, mapID string, uid int64, nickname string, now time.Time) JoinResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result JoinResult

	if previousSessionID != "" {
		if old, ok := p.sessions[previousSessionID]; ok && old.mapID == mapID && old.uid == uid {
			delete(p.sessions, previousSessionID)
			wasAway := old.status == StatusAway
			result.LastActivity = old.lastActivity
			old.sessionID = sessionID
			old.status = StatusActive
			old.nickname = nickname
			old.lastActivity = now
			p.sessions[sessionID] = old

			result.Rejoined = true
			if wasAway {
				result.Events = append(result.Events, Event{
					Kind: EventReturned, MapID: mapID, UID: uid, Nickname: nickname,
				})
			}
			result.Members = p.membersLocked(mapID)
			return result
		}
	}

	firstSession := !p.hasUserLocked(mapID, uid)

	p.sessions[sessionID] = &memberSession{
		sessionID:    sessionID,
		mapID:        mapID,
		uid:          uid,
		nickname:     nickname,
		status:       StatusActive,
		lastActivity: now,
	}

	if firstSession {
		result.Events = append(result.Events, Event{
			Kind: EventJoined, MapID: mapID, UID: uid, Nickname: nickname,
		})
	}
	result.Members = p.membersLocked(mapID)
	return result
}

// Leave 显式离开房间，立即移除会话
func (p *PresenceTracker) Leave(sessionID string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(sessionID)
}

// Disconnect 连接意外断开，会话转入 away 状态等待重连
func (p *PresenceTracker) Disconnect(sessionID string, now time.Time) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[sessionID]
	if !ok || s.status == StatusAway {
		return nil
	}

	s.status = StatusAway
	s.lastActivity = now

	// 同一用户还有活跃会话时不对外广播
	for _, other := range p.sessions {
		if other.sessionID != sessionID && other.mapID == s.mapID && other.uid == s.uid && other.status == StatusActive {
			return nil
		}
	}

	return []Event{{Kind: EventAway, MapID: s.mapID, UID: s.uid, Nickname: s.nickname}}
}

// Touch 更新会话活动时间
func (p *PresenceTracker) Touch(sessionID string, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[sessionID]; ok {
		s.lastActivity = now
	}
}

// SweepStale 移除不活跃超过 maxAge 的 away 会话
func (p *PresenceTracker) SweepStale(now time.Time, maxAge time.Duration) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []Event
	for id, s := range p.sessions {
		if s.status == StatusAway && now.Sub(s.lastActivity) >= maxAge {
			events = append(events, p.removeSessionLocked(id, s)...)
		}
	}
	return events
}

// Members 返回房间内全部协作者
func (p *PresenceTracker) Members(mapID string) []Member {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.membersLocked(mapID)
}

// Lookup 返回会话所在的房间，用于消息路由
func (p *PresenceTracker) Lookup(sessionID string) (mapID string, uid int64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, exists := p.sessions[sessionID]; exists {
		return s.mapID, s.uid, true
	}
	return "", 0, false
}

func (p *PresenceTracker) removeLocked(sessionID string) []Event {
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil
	}
	return p.removeSessionLocked(sessionID, s)
}

// removeSessionLocked 移除会话，用户的最后一个会话移除时发出
// 唯一一次 disconnected 事件
func (p *PresenceTracker) removeSessionLocked(sessionID string, s *memberSession) []Event {
	delete(p.sessions, sessionID)

	if p.hasUserLocked(s.mapID, s.uid) {
		return nil
	}
	return []Event{{Kind: EventDisconnected, MapID: s.mapID, UID: s.uid, Nickname: s.nickname}}
}

func (p *PresenceTracker) hasUserLocked(mapID string, uid int64) bool {
	for _, s := range p.sessions {
		if s.mapID == mapID && s.uid == uid {
			return true
		}
	}
	return false
}

// membersLocked 按用户去重，active 会话优先
func (p *PresenceTracker) membersLocked(mapID string) []Member {
	byUID := make(map[int64]*Member)
	for _, s := range p.sessions {
		if s.mapID != mapID {
			continue
		}
		m, ok := byUID[s.uid]
		if !ok {
			byUID[s.uid] = &Member{
				UID:          s.uid,
				Nickname:     s.nickname,
				Status:       s.status,
				LastActivity: s.lastActivity,
			}
			continue
		}
		if s.status == StatusActive {
			m.Status = StatusActive
		}
		if s.lastActivity.After(m.LastActivity) {
			m.LastActivity = s.lastActivity
		}
	}

	members := make([]Member, 0, len(byUID))
	for _, m := range byUID {
		members = append(members, *m)
	}
	return members
}
