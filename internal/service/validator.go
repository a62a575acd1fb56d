package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

// ValidatorOptions 校验策略
type ValidatorOptions struct {
	// RequireSlotGroup 为 true 时时间槽必须绑定分组；默认允许不绑定（匹配任意技能）
	RequireSlotGroup bool
}

// Validator 在写入前检查记录的结构与分组引用。
// 字段级规则由 struct tag 描述，分组有效性与成环检查依赖 GroupHierarchy。
// 名称唯一性需要查询存储，由 PracticeService 负责。
type Validator struct {
	validate  *validator.Validate
	hierarchy *GroupHierarchy
	opts      ValidatorOptions
}

// NewValidator 创建校验器
func NewValidator(hierarchy *GroupHierarchy, opts ValidatorOptions) *Validator {
	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		hierarchy: hierarchy,
		opts:      opts,
	}
}

// ValidateSkill 校验技能
func (v *Validator) ValidateSkill(skill *schema.Skill) error {
	const entity = "skill"
	if skill == nil {
		return invalidf(entity, "记录为空")
	}
	if err := v.validate.Struct(skill); err != nil {
		return fieldError(entity, err, skill.Priority)
	}
	for _, gid := range skill.GroupIDs {
		if !v.hierarchy.IsValidID(gid) {
			return invalidf(entity, "引用了不存在的分组 %d", gid)
		}
	}
	return nil
}

// ValidateSkillGroup 校验分组，包括父分组有效性与成环检查
func (v *Validator) ValidateSkillGroup(group *schema.SkillGroup) error {
	const entity = "skill_group"
	if group == nil {
		return invalidf(entity, "记录为空")
	}
	if err := v.validate.Struct(group); err != nil {
		return fieldError(entity, err, 0)
	}
	id := group.GroupID()
	for _, pid := range group.ParentIDs {
		if !v.hierarchy.IsValidID(pid) {
			return invalidf(entity, "父分组 %d 不存在", pid)
		}
	}
	for _, pid := range group.ParentIDs {
		cycle, err := v.hierarchy.WouldCreateCycle(id, pid)
		if err != nil {
			return err
		}
		if cycle {
			return invalidf(entity, "以 %d 作为 %d 的父分组会形成环", pid, id)
		}
	}
	return nil
}

// ValidateSchedule 校验练习计划
func (v *Validator) ValidateSchedule(sched *schema.Schedule) error {
	const entity = "schedule"
	if sched == nil {
		return invalidf(entity, "记录为空")
	}
	if err := v.validate.Struct(sched); err != nil {
		return fieldError(entity, err, 0)
	}
	for i, slot := range sched.Slots {
		if slot.GroupID == nil {
			if v.opts.RequireSlotGroup {
				return invalidf(entity, "时间槽 %d 未指定分组", i)
			}
			continue
		}
		if !v.hierarchy.IsValidID(*slot.GroupID) {
			return invalidf(entity, "时间槽 %d 引用了不存在的分组 %d", i, *slot.GroupID)
		}
	}
	return nil
}

// fieldError 将 validator 的字段错误转为可读原因
func fieldError(entity string, err error, priority int) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidf(entity, "%v", err)
	}
	fe := verrs[0]
	switch fe.StructField() {
	case "Name":
		return invalidf(entity, "缺少名称")
	case "Priority":
		if fe.Tag() == "required" {
			return invalidf(entity, "缺少优先级")
		}
		return invalidf(entity, "优先级超出范围: %d", priority)
	case "DateLastPracticed":
		return invalidf(entity, "最后练习时间为负数")
	case "ID":
		return invalidf(entity, "缺少 ID")
	case "Slots":
		return invalidf(entity, "练习计划为空")
	case "DurationInSecs":
		return invalidf(entity, "时间槽时长必须为正数: %v", fe.Value())
	default:
		return invalidf(entity, "字段 %s 不满足 %s", fe.Namespace(), fe.Tag())
	}
}
