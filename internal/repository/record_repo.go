package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/SkillPractice/internal/schema"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 指定 ID 的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrMultipleRows 唯一 ID 查询返回了多行，属于数据损坏
	ErrMultipleRows = errors.New("唯一 ID 对应多行记录")
)

// RecordStore 以 ID 为键、带名称列的负载存储
type RecordStore interface {
	Insert(ctx context.Context, kind schema.RecordKind, id *int64, name string, payload []byte) (int64, error)
	Update(ctx context.Context, kind schema.RecordKind, id int64, name string, payload []byte) error
	Delete(ctx context.Context, kind schema.RecordKind, id int64) error
	GetByID(ctx context.Context, kind schema.RecordKind, id int64) ([]byte, error)
	ListAll(ctx context.Context, kind schema.RecordKind) ([]schema.Record, error)
	ForEach(ctx context.Context, kind schema.RecordKind, fn func(rec schema.Record) error) error
	ExistsWithName(ctx context.Context, kind schema.RecordKind, name string) (bool, error)
	Clear(ctx context.Context) error
	Transaction(ctx context.Context, fn func(tx RecordStore) error) error
}

// RecordRepository 基于 gorm 的 RecordStore 实现
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository 创建仓储
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Insert 插入记录，id 为 nil 时由数据库分配
func (r *RecordRepository) Insert(ctx context.Context, kind schema.RecordKind, id *int64, name string, payload []byte) (int64, error) {
	var rowID int64
	if id != nil {
		rowID = *id
	}
	row, err := schema.NewRow(kind, rowID, name, payload)
	if err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, fmt.Errorf("插入 %s 失败: %w", kind, err)
	}
	return schema.RowID(row), nil
}

// Update 更新记录的名称与负载
func (r *RecordRepository) Update(ctx context.Context, kind schema.RecordKind, id int64, name string, payload []byte) error {
	table := kind.TableName()
	if table == "" {
		return fmt.Errorf("未知记录类型: %s", kind)
	}
	result := r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       name,
			"payload":    payload,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("更新 %s 失败: %w", kind, result.Error)
	}
	return checkAffected(kind, id, result.RowsAffected)
}

// Delete 删除记录
func (r *RecordRepository) Delete(ctx context.Context, kind schema.RecordKind, id int64) error {
	table := kind.TableName()
	if table == "" {
		return fmt.Errorf("未知记录类型: %s", kind)
	}
	result := r.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除 %s 失败: %w", kind, result.Error)
	}
	return checkAffected(kind, id, result.RowsAffected)
}

// GetByID 根据 ID 获取负载
func (r *RecordRepository) GetByID(ctx context.Context, kind schema.RecordKind, id int64) ([]byte, error) {
	var recs []schema.Record
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("id, name, payload").
		Where("id = ?", id).
		Limit(2).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询 %s 失败: %w", kind, err)
	}
	switch len(recs) {
	case 1:
		return recs[0].Payload, nil
	case 0:
		return nil, fmt.Errorf("%s id=%d: %w", kind, id, ErrNotFound)
	default:
		return nil, fmt.Errorf("%s id=%d: %w", kind, id, ErrMultipleRows)
	}
}

// ListAll 按名称升序获取全部记录
func (r *RecordRepository) ListAll(ctx context.Context, kind schema.RecordKind) ([]schema.Record, error) {
	var recs []schema.Record
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Select("id, name, payload").
		Order("name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询 %s 列表失败: %w", kind, err)
	}
	return recs, nil
}

// ForEach 以游标方式按名称升序遍历记录，fn 返回错误时中止遍历
func (r *RecordRepository) ForEach(ctx context.Context, kind schema.RecordKind, fn func(rec schema.Record) error) error {
	db := r.db.WithContext(ctx)
	rows, err := db.
		Table(kind.TableName()).
		Select("id, name, payload").
		Order("name ASC").
		Rows()
	if err != nil {
		return fmt.Errorf("遍历 %s 失败: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec schema.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Payload); err != nil {
			return fmt.Errorf("读取 %s 行失败: %w", kind, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("遍历 %s 失败: %w", kind, err)
	}
	return nil
}

// ExistsWithName 判断是否存在同名记录
func (r *RecordRepository) ExistsWithName(ctx context.Context, kind schema.RecordKind, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询 %s 名称失败: %w", kind, err)
	}
	return count > 0, nil
}

// Clear 清空所有记录表
func (r *RecordRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range []schema.RecordKind{schema.KindSkill, schema.KindSkillGroup, schema.KindSchedule} {
			if err := tx.Exec("DELETE FROM " + kind.TableName()).Error; err != nil {
				return fmt.Errorf("清空 %s 失败: %w", kind, err)
			}
		}
		return nil
	})
}

// Transaction 在事务中执行操作，fn 内必须只使用 tx
func (r *RecordRepository) Transaction(ctx context.Context, fn func(tx RecordStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RecordRepository{db: tx})
	})
}

func checkAffected(kind schema.RecordKind, id int64, affected int64) error {
	switch affected {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s id=%d: %w", kind, id, ErrNotFound)
	default:
		return fmt.Errorf("%s id=%d: %w", kind, id, ErrMultipleRows)
	}
}
