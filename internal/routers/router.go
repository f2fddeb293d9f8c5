// Package routers 装配 HTTP 与 WebSocket 路由
package routers

import (
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/internal/middleware"
	"github.com/haierkeys/map-annotation-sync-service/internal/routers/api_router"
	"github.com/haierkeys/map-annotation-sync-service/internal/routers/websocket_router"
	"github.com/haierkeys/map-annotation-sync-service/internal/session"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/limiter"
	"github.com/haierkeys/map-annotation-sync-service/pkg/validator"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/user/register",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/api/user/login",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

// NewRouter 创建路由引擎
// 同时装配 WebSocket 协作通道与会话层的广播回调
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	cfg := appContainer.Config()

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,
			Recovery:            gws.Recovery,
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true},
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 4,
			WriteMaxPayloadSize: 1024 * 1024 * 4,
		},
		Logger:       appContainer.Logger(),
		TokenManager: appContainer.TokenManager,
		Validator:    validator.NewCustomValidator(),
	})

	// 授权时回查用户，保证 token 对应的用户仍然存在
	wss.UserDataSelectUse(func(c *pkgapp.WebsocketClient, uid int64) (*pkgapp.UserSelectEntity, error) {
		user, err := appContainer.Repos.Users.GetByUID(c.Ctx.Request.Context(), uid)
		if err != nil || user == nil {
			return nil, err
		}
		return &pkgapp.UserSelectEntity{
			UID:      user.UID,
			Email:    user.Email,
			Nickname: user.Nickname,
		}, nil
	})

	// 节流后的光标位置推送给房间内全部协作者
	registry := appContainer.InitSessionRegistry(func(u session.CursorUpdate) {
		payload := dto.CursorEvent{
			MapID:     u.MapID,
			UID:       u.UID,
			Nickname:  u.Nickname,
			Position:  u.Position,
			Timestamp: u.At.UnixMilli(),
		}
		content := pkgapp.Res{
			Code:    code.Success.Code(),
			Status:  true,
			Message: code.Success.Msg(),
			Data:    payload,
		}
		wss.BroadcastToRoom(session.RoomForMap(u.MapID).Channel(), dto.CursorMoved, content, nil)
	})

	// 后台任务（过期清扫等）通过该回调推送在线状态事件
	appContainer.SetRoomBroadcaster(func(mapID string, action string, payload interface{}) {
		content := pkgapp.Res{
			Code:    code.Success.Code(),
			Status:  true,
			Message: code.Success.Msg(),
			Data:    payload,
		}
		wss.BroadcastToRoom(session.RoomForMap(mapID).Channel(), action, content, nil)
	})

	// 关闭码 1000/1001 视为客户端显式断开，会话立即移除；
	// 其余情况转入 away 状态，等待重连恢复
	wss.OnCloseUse(func(c *pkgapp.WebsocketClient, closeErr error) {
		if pkgapp.IsNormalClosure(closeErr) {
			mapID, uid, ok := registry.Presence.Lookup(c.SessionID)
			if !ok {
				return
			}
			registry.Cursor.PurgeUser(mapID, uid)
			for _, ev := range registry.Presence.Leave(c.SessionID) {
				content := pkgapp.Res{
					Code:    code.Success.Code(),
					Status:  true,
					Message: code.Success.Msg(),
					Data: dto.PresenceEvent{
						MapID:    ev.MapID,
						UID:      ev.UID,
						Nickname: ev.Nickname,
					},
				}
				wss.BroadcastToRoom(session.RoomForMap(ev.MapID).Channel(), dto.UserDisconnected, content, nil)
			}
			return
		}

		events := registry.Presence.Disconnect(c.SessionID, time.Now())
		for _, ev := range events {
			content := pkgapp.Res{
				Code:    code.Success.Code(),
				Status:  true,
				Message: code.Success.Msg(),
				Data: dto.PresenceEvent{
					MapID:    ev.MapID,
					UID:      ev.UID,
					Nickname: ev.Nickname,
					Status:   string(session.StatusAway),
				},
			}
			wss.BroadcastToRoom(session.RoomForMap(ev.MapID).Channel(), dto.UserAway, content, nil)
		}
	})

	// 创建 WebSocket Handlers（注入 App Container）
	roomHandler := websocket_router.NewRoomHandler(appContainer, wss)
	batchWSHandler := websocket_router.NewBatchHandler(appContainer, wss)
	cursorHandler := websocket_router.NewCursorHandler(appContainer, wss)

	// 房间
	wss.Use(dto.JoinRoom, roomHandler.JoinRoom)
	wss.Use(dto.LeaveRoom, roomHandler.LeaveRoom)
	wss.Use(dto.PresenceList, roomHandler.PresenceList)
	// 批量回放
	wss.Use(dto.BatchSubmit, batchWSHandler.BatchSubmit)
	// 光标
	wss.Use(dto.CursorMove, cursorHandler.CursorMove)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(appContainer.Version().Version))
		api.Use(api_router.RequestMetrics())
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Header))
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		mapHandler := api_router.NewMapHandler(appContainer)
		featureHandler := api_router.NewFeatureHandler(appContainer, wss)
		commentHandler := api_router.NewCommentHandler(appContainer, wss)
		batchHandler := api_router.NewBatchHandler(appContainer, wss)
		historyHandler := api_router.NewHistoryHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		// WebSocket 协作通道
		api.GET("/user/sync", wss.Run())

		api.GET("/health", healthHandler.Check)

		auth := middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)

		api.Use(auth).GET("/user/info", userHandler.UserInfo)

		api.Use(auth).GET("/maps", mapHandler.List)
		api.Use(auth).GET("/map", mapHandler.Get)
		api.Use(auth).POST("/map", mapHandler.Create)
		api.Use(auth).PUT("/map", mapHandler.Update)
		api.Use(auth).DELETE("/map", mapHandler.Delete)

		api.Use(auth).GET("/features", featureHandler.List)
		api.Use(auth).POST("/feature", featureHandler.Create)
		api.Use(auth).PUT("/feature", featureHandler.Update)
		api.Use(auth).DELETE("/feature", featureHandler.Delete)

		api.Use(auth).GET("/comments", commentHandler.ListComments)
		api.Use(auth).POST("/comment", commentHandler.CreateComment)
		api.Use(auth).PUT("/comment", commentHandler.UpdateComment)
		api.Use(auth).DELETE("/comment", commentHandler.DeleteComment)
		api.Use(auth).POST("/reply", commentHandler.CreateReply)
		api.Use(auth).PUT("/reply", commentHandler.UpdateReply)
		api.Use(auth).DELETE("/reply", commentHandler.DeleteReply)

		api.Use(auth).POST("/batch", batchHandler.Submit)

		api.Use(auth).GET("/histories", historyHandler.ListByMap)
		api.Use(auth).GET("/history/entity", historyHandler.ListByEntity)
	}

	r.GET("/metrics", api_router.MetricsHandler())

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
