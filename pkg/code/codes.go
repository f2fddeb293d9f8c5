package code

// Success codes
// 成功码
var (
	Success = NewSuss(200, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	IdempotentReplay = NewSuss(201, lang{
		en:    "Operation already applied",
		zh_cn: "操作已被应用",
	})
)

// Common error codes
// 通用错误码
var (
	ErrorServerInternal = NewError(10000, lang{
		en:    "Server internal error",
		zh_cn: "服务内部错误",
	})
	ErrorInvalidParams = NewError(10001, lang{
		en:    "Invalid request parameters",
		zh_cn: "入参错误",
	})
	ErrorNotFoundAPI = NewError(10002, lang{
		en:    "API not found",
		zh_cn: "找不到 API",
	})
	ErrorTooManyRequests = NewError(10003, lang{
		en:    "Too many requests",
		zh_cn: "请求过多",
	})
	ErrorDBQuery = NewError(10004, lang{
		en:    "Database query error",
		zh_cn: "数据库查询错误",
	})
)

// User and auth error codes
// 用户与认证错误码
var (
	ErrorNotUserAuthToken = NewError(20001, lang{
		en:    "Auth token missing",
		zh_cn: "缺少用户认证令牌",
	})
	ErrorInvalidUserAuthToken = NewError(20002, lang{
		en:    "Auth token invalid",
		zh_cn: "用户认证令牌无效",
	})
	ErrorUserRegisterFailed = NewError(20003, lang{
		en:    "User register failed",
		zh_cn: "用户注册失败",
	})
	ErrorUserLoginFailed = NewError(20004, lang{
		en:    "User login failed",
		zh_cn: "用户登录失败",
	})
	ErrorUserRegisterDisabled = NewError(20005, lang{
		en:    "User register is disabled",
		zh_cn: "用户注册已关闭",
	})
	ErrorUserNotExist = NewError(20006, lang{
		en:    "User does not exist",
		zh_cn: "用户不存在",
	})
)

// Map and room error codes
// 地图与房间错误码
var (
	ErrorMapNotFound = NewError(30001, lang{
		en:    "Map not found",
		zh_cn: "地图不存在",
	})
	ErrorRoomScopeMismatch = NewError(30002, lang{
		en:    "Operation map id does not match room",
		zh_cn: "操作的地图 ID 与房间不匹配",
	})
	ErrorNotInRoom = NewError(30003, lang{
		en:    "Join a room before submitting operations",
		zh_cn: "提交操作前请先加入房间",
	})
)

// Entity mutation error codes
// 实体变更错误码
var (
	ErrorEntityNotFound = NewError(40001, lang{
		en:    "Entity not found",
		zh_cn: "实体不存在",
	})
	ErrorVersionConflict = NewError(40002, lang{
		en:    "Version conflict, please rebase and retry",
		zh_cn: "版本冲突，请基于当前版本重试",
	})
	ErrorUnauthorizedMutation = NewError(40003, lang{
		en:    "Only the author may modify this entity",
		zh_cn: "只有作者可以修改该实体",
	})
	ErrorUnknownOperation = NewError(40004, lang{
		en:    "Unknown operation type",
		zh_cn: "未知的操作类型",
	})
	ErrorBatchFailed = NewError(40005, lang{
		en:    "Batch processing failed",
		zh_cn: "批量处理失败",
	})
	ErrorHistoryListFailed = NewError(40006, lang{
		en:    "History list failed",
		zh_cn: "历史记录查询失败",
	})
	ErrorEntityListFailed = NewError(40007, lang{
		en:    "Entity list failed",
		zh_cn: "实体列表查询失败",
	})
)
