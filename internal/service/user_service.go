package service

import (
	"context"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	"github.com/haierkeys/map-annotation-sync-service/pkg/logger"
	"github.com/haierkeys/map-annotation-sync-service/pkg/util"

	"go.uber.org/zap"
)

// UserService 用户注册、登录与令牌签发
type UserService interface {
	Register(ctx context.Context, req *dto.UserRegisterRequest, clientIP string) (*dto.User, error)
	Login(ctx context.Context, req *dto.UserLoginRequest, clientIP string) (*dto.User, error)
	Get(ctx context.Context, uid int64) (*dto.User, error)
}

type userService struct {
	users           domain.UserRepository
	tokens          app.TokenManager
	registerEnabled bool
	logger          *zap.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService 创建 UserService 实例
func NewUserService(users domain.UserRepository, tokens app.TokenManager, registerEnabled bool, lg *zap.Logger) UserService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &userService{users: users, tokens: tokens, registerEnabled: registerEnabled, logger: lg}
}

// hashPassword 密码加盐哈希
func hashPassword(password, salt string) string {
	return util.EncodeSHA256(password + salt)
}

func (s *userService) Register(ctx context.Context, req *dto.UserRegisterRequest, clientIP string) (*dto.User, error) {
	if !s.registerEnabled {
		return nil, code.ErrorUserRegisterDisabled
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorUserRegisterFailed.WithDetails("email already registered")
	}

	salt := util.GetRandomString(16)
	created, err := s.users.Create(ctx, &domain.User{
		Email:    req.Email,
		Username: req.Email,
		Nickname: req.Nickname,
		Password: hashPassword(req.Password, salt),
		Salt:     salt,
	})
	if err != nil {
		return nil, code.ErrorUserRegisterFailed.WithDetails(err.Error())
	}

	token, err := s.tokens.Generate(created.UID, created.Nickname, clientIP)
	if err != nil {
		return nil, code.ErrorUserRegisterFailed.WithDetails(err.Error())
	}

	s.logger.Info("user registered", zap.Int64(logger.FieldUID, created.UID))

	out := dto.UserFromDomain(created)
	out.Token = token
	return out, nil
}

func (s *userService) Login(ctx context.Context, req *dto.UserLoginRequest, clientIP string) (*dto.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if user == nil || user.Password != hashPassword(req.Password, user.Salt) {
		// 不区分用户不存在与密码错误
		return nil, code.ErrorUserLoginFailed
	}

	token, err := s.tokens.Generate(user.UID, user.Nickname, clientIP)
	if err != nil {
		return nil, code.ErrorUserLoginFailed.WithDetails(err.Error())
	}

	s.logger.Info("user logged in", zap.Int64(logger.FieldUID, user.UID))

	out := dto.UserFromDomain(user)
	out.Token = token
	return out, nil
}

func (s *userService) Get(ctx context.Context, uid int64) (*dto.User, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if user == nil {
		return nil, code.ErrorUserNotExist
	}
	return dto.UserFromDomain(user), nil
}
