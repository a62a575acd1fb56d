package schema

// 技能优先级范围
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = MaxPriority
)

// Skill 可练习的技能
// 数据量级：百级
type Skill struct {
	ID                         int64   `json:"-"`                                                        // 存储分配的行 ID
	Name                       string  `json:"name" validate:"required"`                                 // 名称，技能间唯一
	Priority                   int     `json:"priority" validate:"required,min=1,max=10"`                // 优先级: 1-10
	GroupIDs                   []int64 `json:"group_ids,omitempty"`                                      // 直接所属分组
	DateLastPracticed          *int64  `json:"date_last_practiced,omitempty" validate:"omitempty,min=0"` // 最后练习时间（Unix 秒）
	SecondsPracticed           int64   `json:"seconds_practiced,omitempty"`                              // 累计练习秒数
	EstSecondsPracticed100Days int64   `json:"est_seconds_practiced_100_days,omitempty"`                 // 近 100 天练习量估计
}

// NewSkill 创建带默认优先级的技能
func NewSkill(name string, groupIDs ...int64) *Skill {
	return &Skill{
		Name:     name,
		Priority: DefaultPriority,
		GroupIDs: NormalizeIDs(groupIDs),
	}
}

// Practiced 是否练习过
func (s *Skill) Practiced() bool {
	return s != nil && s.DateLastPracticed != nil
}

// Clone 深拷贝，避免调用方与缓存共享切片
func (s Skill) Clone() Skill {
	out := s
	out.GroupIDs = append([]int64(nil), s.GroupIDs...)
	if s.DateLastPracticed != nil {
		v := *s.DateLastPracticed
		out.DateLastPracticed = &v
	}
	return out
}
