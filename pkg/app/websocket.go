package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	WebSocketServerPingInterval = 25
	WebSocketServerPingWait     = 40
)

// WebSocketMessage 按 "Action|payload" 格式拆分后的消息
type WebSocketMessage struct {
	Type string `json:"type"` // 操作类型，例如 "JoinRoom", "BatchSubmit", "CursorMove"
	Data []byte `json:"data"` // JSON 负载
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Logger       *zap.Logger
	TokenManager TokenManager
	Validator    *validator.CustomValidator
}

// WebsocketClient 结构体来存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn *gws.Conn
	done chan struct{}
	Ctx  *gin.Context
	User *UserEntity
	// SessionID 连接级会话标识，升级连接时分配
	SessionID string
	// RoomID 当前加入的房间，未加入时为空
	RoomID string
	SF     *singleflight.Group

	server *WebsocketServer
}

// BindAndValid WebSocket 版本参数绑定和验证工具函数
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	var errs ValidErrors

	if err := json.Unmarshal(data, obj); err != nil {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid message format",
		})
		return false, errs
	}

	if c.server.config.Validator == nil {
		return true, nil
	}

	if err := c.server.config.Validator.ValidateStruct(obj); err != nil {
		if validationErrors, ok := err.(validatorV10.ValidationErrors); ok {
			trans, hasTrans := c.Ctx.Value("trans").(ut.Translator)
			for _, validationErr := range validationErrors {
				msg := validationErr.Error()
				if hasTrans {
					msg = validationErr.Translate(trans)
				}
				errs = append(errs, &ValidError{
					Key:     validationErr.Field(),
					Message: msg,
				})
			}
		}
		return false, errs
	}
	return true, nil
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			c.server.log().Info("websocket client close ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				c.server.log().Error("websocket client ping failed", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action ...string) {

	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	c.send(actionType, content)
	codeObj.Reset()
}

// ToRoomBroadcast 将结果广播给当前房间内的客户端
// excludeSelf 为 true 时不回送给自己
func (c *WebsocketClient) ToRoomBroadcast(codeObj *code.Code, excludeSelf bool, action string) {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}

	var exclude *gws.Conn
	if excludeSelf {
		exclude = c.conn
	}
	c.server.BroadcastToRoom(c.RoomID, action, content, exclude)
	codeObj.Reset()
}

func (c *WebsocketClient) send(actionType string, content any) {
	responseBytes, _ := json.Marshal(content)
	if actionType != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))
	}
	c.conn.WriteMessage(gws.OpcodeText, responseBytes)
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

// UserSelectEntity 授权时由业务侧回查的用户数据
type UserSelectEntity struct {
	UID      int64  `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type WebsocketServer struct {
	handlers        map[string]func(*WebsocketClient, *WebSocketMessage)
	userDataHandler func(*WebsocketClient, int64) (*UserSelectEntity, error)
	closeHandler    func(*WebsocketClient, error)
	clients         ConnStorage
	roomClients     map[string]ConnStorage
	mu              sync.Mutex
	up              *gws.Upgrader
	config          *WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	wss := WebsocketServer{
		handlers:    make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:     make(ConnStorage),
		roomClients: make(map[string]ConnStorage),
		config:      &c,
	}
	return &wss
}

func (w *WebsocketServer) log() *zap.Logger {
	return w.config.Logger
}

func (w *WebsocketServer) Upgrade() {
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
}

func (w *WebsocketServer) Run() gin.HandlerFunc {

	return func(c *gin.Context) {

		w.Upgrade()
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.log().Error("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &WebsocketClient{
			conn:      socket,
			done:      make(chan struct{}),
			Ctx:       c,
			SessionID: uuid.NewString(),
			SF:        new(singleflight.Group),
			server:    w,
		}
		w.AddClient(client)
		w.log().Info("websocket connection established", zap.String("sessionId", client.SessionID))
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

func (w *WebsocketServer) UserDataSelectUse(handler func(*WebsocketClient, int64) (*UserSelectEntity, error)) {
	w.userDataHandler = handler
}

// OnCloseUse 注册连接关闭回调，err 为底层连接的关闭原因
// 会话层据此区分正常关闭与意外断开
func (w *WebsocketServer) OnCloseUse(handler func(*WebsocketClient, error)) {
	w.closeHandler = handler
}

// IsNormalClosure 判断连接是否为正常关闭（关闭码 1000/1001）
// 服务端主动 WriteClose(1000) 时底层存储的是状态码错误，按消息文本识别
func IsNormalClosure(err error) bool {
	if err == nil {
		return false
	}
	var ce *gws.CloseError
	if errors.As(err, &ce) {
		return ce.Code == 1000 || ce.Code == 1001
	}
	return err.Error() == "close normal"
}

func (w *WebsocketServer) Authorization(c *WebsocketClient, msg *WebSocketMessage) {

	user, err := w.config.TokenManager.Parse(string(msg.Data))
	if err != nil {
		w.log().Error("websocket authorization failed", zap.Error(err))
		c.ToResponse(code.ErrorInvalidUserAuthToken.Clone(), "Authorization")
		time.Sleep(2 * time.Second)
		c.conn.WriteClose(1000, []byte("AuthorizationFaild"))
		return
	}

	// 用户有效性强制验证
	userSelect, err := w.userDataHandler(c, user.UID)
	if userSelect == nil || err != nil {
		w.log().Error("websocket authorization failed, user not exist", zap.Error(err))
		c.ToResponse(code.ErrorInvalidUserAuthToken.Clone(), "Authorization")
		time.Sleep(2 * time.Second)
		c.conn.WriteClose(1000, []byte("AuthorizationFaild"))
		return
	}

	user.Nickname = userSelect.Nickname

	c.User = user
	c.ToResponse(code.Success.Clone().WithData(gin.H{"sessionId": c.SessionID}), "Authorization")
	w.log().Info("websocket user authorized",
		zap.Int64("uid", user.UID),
		zap.String("nickname", user.Nickname),
		zap.String("sessionId", c.SessionID))
	go c.PingLoop(w.config.PingInterval)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

// JoinRoom 将客户端挂到房间的连接表上
// 一个连接同一时间只属于一个房间，重复加入会先退出旧房间
func (w *WebsocketServer) JoinRoom(c *WebsocketClient, roomID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if c.RoomID != "" && c.RoomID != roomID {
		w.removeFromRoomLocked(c)
	}

	if w.roomClients[roomID] == nil {
		w.roomClients[roomID] = make(ConnStorage)
	}
	w.roomClients[roomID][c.conn] = c
	c.RoomID = roomID
}

// LeaveRoom 将客户端从当前房间的连接表上摘除
func (w *WebsocketServer) LeaveRoom(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeFromRoomLocked(c)
}

func (w *WebsocketServer) removeFromRoomLocked(c *WebsocketClient) {
	if c.RoomID == "" {
		return
	}
	if room, ok := w.roomClients[c.RoomID]; ok {
		delete(room, c.conn)
		if len(room) == 0 {
			delete(w.roomClients, c.RoomID)
		}
	}
	c.RoomID = ""
}

// RoomClientCount 返回房间内当前连接数
func (w *WebsocketServer) RoomClientCount(roomID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.roomClients[roomID])
}

// BroadcastToRoom 向房间内全部连接广播一条 "action|json" 消息
// exclude 不为 nil 时跳过该连接
func (w *WebsocketServer) BroadcastToRoom(roomID string, action string, content any, exclude *gws.Conn) {
	if roomID == "" {
		return
	}

	payload, _ := json.Marshal(content)
	if action != "" {
		payload = []byte(fmt.Sprintf(`%s|%s`, action, string(payload)))
	}

	w.mu.Lock()
	room := w.roomClients[roomID]
	conns := make([]*gws.Conn, 0, len(room))
	for conn := range room {
		if conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	w.mu.Unlock()

	if len(conns) == 0 {
		return
	}

	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()
	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	w.log().Info("websocket client connect", zap.Int("count", len(w.clients)))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	w.RemoveClient(conn)
	w.LeaveRoom(c)

	if c.User != nil {
		close(c.done)
		w.log().Info("websocket user leave",
			zap.Int64("uid", c.User.UID),
			zap.String("sessionId", c.SessionID))
		if w.closeHandler != nil {
			w.closeHandler(c, err)
		}
	}

	w.log().Info("websocket client leave", zap.Int("count", len(w.clients)))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Type = messageStr[:index]
		msg.Data = []byte(messageStr[index+1:])
	} else {
		w.log().Error("websocket message rejected",
			zap.String("reason", "illegal message format"),
			zap.String("sessionId", c.SessionID))
		return
	}

	if msg.Type == "Authorization" {
		w.Authorization(c, &msg)
		return
	}

	// 验证用户是否登录
	if c.User == nil {
		c.ToResponse(code.ErrorNotUserAuthToken.Clone())
		return
	}

	handler, exists := w.handlers[msg.Type]
	if exists {
		w.log().Info("websocket message", zap.String("action", msg.Type), zap.Int64("uid", c.User.UID))
		handler(c, &msg)
	} else {
		w.log().Error("websocket message rejected", zap.String("reason", "unknown action"), zap.String("action", msg.Type))
	}
}
