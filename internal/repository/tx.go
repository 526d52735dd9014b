package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ctxKey context 中存储事务的键类型
type ctxKey string

const txKey ctxKey = "db_tx"

// WithTx 将事务注入 context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetDB 从 context 获取数据库连接
// 如果 context 中存在事务，返回事务连接；否则返回默认连接
func GetDB(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return defaultDB.WithContext(ctx)
}

// HasTx 检查 context 中是否存在事务
func HasTx(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return ok && tx != nil
}

// TxManager 事务管理器接口
type TxManager interface {
	// WithTransaction 在事务中执行函数，自动处理 commit/rollback
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// DB 获取数据库连接
	DB() *gorm.DB
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithTransaction 在事务中执行函数
// 如果 context 中已存在事务则复用（嵌套场景）；函数返回错误时回滚，否则提交
func (m *gormTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if HasTx(ctx) {
		return fn(ctx)
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}

	txCtx := WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("回滚事务失败: %v, 原始错误: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}

	return nil
}

func (m *gormTxManager) DB() *gorm.DB {
	return m.db
}
