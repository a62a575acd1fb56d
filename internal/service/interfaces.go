package service

import (
	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/repository"
)

// 仓储/外部依赖的最小接口集合（ISP）

// RecordStore 见 repository.RecordStore；gorm 实现为 repository.RecordRepository
type RecordStore = repository.RecordStore

// EventPublisher 写入成功后的事件通知，eventbus.Hub 实现该接口
type EventPublisher interface {
	Publish(evt eventbus.Event)
}
