// Package session 维护协作房间的在线状态与光标节流
package session

// RoomID 协作房间标识，一张地图对应一个房间
type RoomID struct {
	MapID string
}

// Channel 返回房间的广播通道名
func (r RoomID) Channel() string {
	return "map:" + r.MapID
}

// RoomForMap 根据地图ID构建房间标识
func RoomForMap(mapID string) RoomID {
	return RoomID{MapID: mapID}
}
