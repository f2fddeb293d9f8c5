package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldMapID 地图 ID 字段
	FieldMapID = "mapId"

	// FieldRoom 房间名称字段
	FieldRoom = "room"

	// FieldEntityID 实体 ID 字段
	FieldEntityID = "entityId"

	// FieldEntityType 实体类型字段
	FieldEntityType = "entityType"

	// FieldVersion 实体版本字段
	FieldVersion = "version"

	// FieldOperationID 客户端操作 ID 字段
	FieldOperationID = "operationId"

	// FieldSessionID 会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"
)
