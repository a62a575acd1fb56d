package schema

import (
	"encoding/json"
	"fmt"
)

// 负载统一使用 JSON 序列化完整记录

func EncodeSkill(s *Skill) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("序列化技能失败: %w", err)
	}
	return b, nil
}

func DecodeSkill(id int64, payload []byte) (*Skill, error) {
	var s Skill
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("解析技能失败 (id=%d): %w", id, err)
	}
	s.ID = id
	return &s, nil
}

func EncodeSkillGroup(g *SkillGroup) ([]byte, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("序列化分组失败: %w", err)
	}
	return b, nil
}

func DecodeSkillGroup(payload []byte) (*SkillGroup, error) {
	var g SkillGroup
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, fmt.Errorf("解析分组失败: %w", err)
	}
	return &g, nil
}

func EncodeSchedule(s *Schedule) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("序列化练习计划失败: %w", err)
	}
	return b, nil
}

func DecodeSchedule(id int64, payload []byte) (*Schedule, error) {
	var s Schedule
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("解析练习计划失败 (id=%d): %w", id, err)
	}
	s.ID = id
	return &s, nil
}
