// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/model"
	"github.com/haierkeys/map-annotation-sync-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库连接配置，由应用层注入
type DatabaseConfig struct {
	Type         string `yaml:"type" default:"sqlite"`
	Path         string `yaml:"path" default:"storage/database/map-annotation.db"`
	Host         string `yaml:"host"`
	UserName     string `yaml:"username"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"ssl-mode" default:"disable"`
	TablePrefix  string `yaml:"table-prefix" default:"pre_"`
	MaxIdleConns int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int    `yaml:"max-open-conns" default:"30"`
	Debug        bool   `yaml:"debug"`
}

// Dao 持有数据库连接，所有仓储实现挂在其上
type Dao struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New 创建 Dao 实例
func New(db *gorm.DB, lg *zap.Logger) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{db: db, logger: lg}
}

// DB 返回底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// Repos 构建绑定到当前连接的仓储集合
func (d *Dao) Repos() *domain.Repositories {
	return &domain.Repositories{
		Features:  NewFeatureRepository(d),
		Comments:  NewCommentRepository(d),
		Replies:   NewReplyRepository(d),
		Maps:      NewMapRepository(d),
		Histories: NewHistoryRepository(d),
		Users:     NewUserRepository(d),
	}
}

// unitOfWork 基于 gorm 事务实现 domain.UnitOfWork
type unitOfWork struct {
	dao *Dao
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)

// NewUnitOfWork 创建事务边界实现
func NewUnitOfWork(d *Dao) domain.UnitOfWork {
	return &unitOfWork{dao: d}
}

// Transaction 在单个数据库事务内执行 fn
// fn 拿到的仓储集合全部绑定到事务连接上
func (u *unitOfWork) Transaction(ctx context.Context, fn func(r *domain.Repositories) error) error {
	return u.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txDao := &Dao{db: tx, logger: u.dao.logger}
		return fn(txDao.Repos())
	})
}

// NewDBEngine 根据配置初始化数据库连接
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {

	db, err := gorm.Open(dialector(c), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}
	if c.Debug {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	if err := model.AutoMigrateAll(db); err != nil {
		return nil, err
	}

	return db, nil
}

func dialector(c DatabaseConfig) gorm.Dialector {
	if c.Type == "postgres" {
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
			c.SSLMode,
		))
	} else if c.Type == "sqlite" {
		if !fileurl.IsExist(c.Path) {
			fileurl.CreatePath(c.Path, os.ModePerm)
		}
		return sqlite.Open(c.Path)
	}
	return nil
}
