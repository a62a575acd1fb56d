package schema

import (
	"fmt"
	"time"
)

// RecordKind 存储中的记录类型
type RecordKind int

const (
	KindSkill RecordKind = iota + 1
	KindSkillGroup
	KindSchedule
)

func (k RecordKind) String() string {
	switch k {
	case KindSkill:
		return "skill"
	case KindSkillGroup:
		return "skill_group"
	case KindSchedule:
		return "schedule"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TableName 记录类型对应的表名
func (k RecordKind) TableName() string {
	switch k {
	case KindSkill:
		return SkillRow{}.TableName()
	case KindSkillGroup:
		return SkillGroupRow{}.TableName()
	case KindSchedule:
		return ScheduleRow{}.TableName()
	default:
		return ""
	}
}

// Record 通用记录视图：ID + 名称 + 序列化负载
type Record struct {
	ID      int64
	Name    string
	Payload []byte
}

// SkillRow 技能表
type SkillRow struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;index"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SkillRow) TableName() string {
	return "skills"
}

// SkillGroupRow 分组表，ID 由调用方给出（可以为 0 或负数）
type SkillGroupRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;index"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SkillGroupRow) TableName() string {
	return "skill_groups"
}

// ScheduleRow 练习计划表
type ScheduleRow struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;index"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ScheduleRow) TableName() string {
	return "schedules"
}

// NewRow 按记录类型构造表行
func NewRow(kind RecordKind, id int64, name string, payload []byte) (any, error) {
	switch kind {
	case KindSkill:
		return &SkillRow{ID: id, Name: name, Payload: payload}, nil
	case KindSkillGroup:
		return &SkillGroupRow{ID: id, Name: name, Payload: payload}, nil
	case KindSchedule:
		return &ScheduleRow{ID: id, Name: name, Payload: payload}, nil
	default:
		return nil, fmt.Errorf("未知记录类型: %s", kind)
	}
}

// RowID 读取 NewRow 构造的表行 ID（插入后由数据库回填）
func RowID(row any) int64 {
	switch r := row.(type) {
	case *SkillRow:
		return r.ID
	case *SkillGroupRow:
		return r.ID
	case *ScheduleRow:
		return r.ID
	default:
		return 0
	}
}
