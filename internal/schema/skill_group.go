package schema

// SkillGroup 技能分组，通过 ParentIDs 组成 DAG
type SkillGroup struct {
	ID        *int64  `json:"id" validate:"required"`   // 调用方分配（通常为名称指纹）
	Name      string  `json:"name" validate:"required"` // 名称，分组间唯一
	ParentIDs []int64 `json:"parent_ids,omitempty"`     // 父分组，可为空（根分组）
}

// GroupID 返回分组 ID，未设置时返回 0
func (g *SkillGroup) GroupID() int64 {
	if g == nil || g.ID == nil {
		return 0
	}
	return *g.ID
}

// Clone 深拷贝
func (g SkillGroup) Clone() SkillGroup {
	out := g
	if g.ID != nil {
		id := *g.ID
		out.ID = &id
	}
	out.ParentIDs = append([]int64(nil), g.ParentIDs...)
	return out
}

// Int64Ptr 返回指向 v 的指针
func Int64Ptr(v int64) *int64 {
	return &v
}
