package schema

// 时间槽时长范围（秒）
const (
	MinSlotDurationSecs     = 60
	MaxSlotDurationSecs     = 3600
	DefaultSlotDurationSecs = 600
)

// Schedule 练习计划：有序的时间槽列表
type Schedule struct {
	ID    int64  `json:"-"`
	Name  string `json:"name" validate:"required"`
	Slots []Slot `json:"slots" validate:"required,min=1,dive"`
}

// Slot 时间槽，GroupID 为空表示不限分组
type Slot struct {
	GroupID        *int64 `json:"group_id,omitempty"`
	DurationInSecs int    `json:"duration_in_secs" validate:"gt=0"`
}

// TotalSeconds 计划总时长
func (s *Schedule) TotalSeconds() int {
	total := 0
	for _, slot := range s.Slots {
		total += slot.DurationInSecs
	}
	return total
}

// Clone 深拷贝
func (s Schedule) Clone() Schedule {
	out := s
	out.Slots = make([]Slot, len(s.Slots))
	for i, slot := range s.Slots {
		out.Slots[i] = slot
		if slot.GroupID != nil {
			out.Slots[i].GroupID = Int64Ptr(*slot.GroupID)
		}
	}
	return out
}
