package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/yuqie6/SkillPractice/internal/schema"
)

// SeedDocument YAML 种子数据，引用一律使用名称
type SeedDocument struct {
	Groups    []SeedGroup    `yaml:"groups"`
	Skills    []SeedSkill    `yaml:"skills"`
	Schedules []SeedSchedule `yaml:"schedules"`
}

type SeedGroup struct {
	Name    string   `yaml:"name"`
	ID      *int64   `yaml:"id,omitempty"` // 缺省时由名称派生
	Parents []string `yaml:"parents,omitempty"`
}

type SeedSkill struct {
	Name                string   `yaml:"name"`
	Priority            int      `yaml:"priority,omitempty"`
	Groups              []string `yaml:"groups,omitempty"`
	SecondsPracticed    int64    `yaml:"seconds_practiced,omitempty"`
	HoursSincePracticed *float64 `yaml:"hours_since_practiced,omitempty"`
}

type SeedSchedule struct {
	Name  string     `yaml:"name"`
	Slots []SeedSlot `yaml:"slots"`
}

type SeedSlot struct {
	Group   string `yaml:"group,omitempty"`
	Minutes int    `yaml:"minutes"`
}

// SeedStats 导入计数
type SeedStats struct {
	Groups    int
	Skills    int
	Schedules int
}

// DemoSeed 内置示例数据
const DemoSeed = `
groups:
  - name: Warm-ups
    id: 0
  - name: Scales
    id: -1
    parents: [Warm-ups]
  - name: Etudes
    id: 1
skills:
  - name: Carcassi Op. 60 No. 7
    priority: 6
    groups: [Etudes]
    seconds_practiced: 345
    hours_since_practiced: 48
  - name: Shearer Scale p. 253
    priority: 2
    groups: [Scales]
    seconds_practiced: 34
    hours_since_practiced: 7
schedules:
  - name: Weekday
    slots:
      - group: Warm-ups
        minutes: 5
      - group: Etudes
        minutes: 20
`

// ParseSeed 解析 YAML 种子文档
func ParseSeed(r io.Reader) (*SeedDocument, error) {
	var doc SeedDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("解析种子数据失败: %w", err)
	}
	return &doc, nil
}

// ImportSeed 导入种子数据：分组按依赖顺序插入，之后是技能与练习计划。
// 每条记录都走常规的校验路径；中途失败时已导入的记录保留。
func (s *PracticeService) ImportSeed(ctx context.Context, r io.Reader) (SeedStats, error) {
	var stats SeedStats
	doc, err := ParseSeed(r)
	if err != nil {
		return stats, err
	}

	ids, err := s.groupIDsByName(ctx)
	if err != nil {
		return stats, err
	}
	for _, g := range doc.Groups {
		if _, dup := ids[g.Name]; dup {
			return stats, invalidf("skill_group", "分组名称重复: %s", g.Name)
		}
		if g.ID != nil {
			ids[g.Name] = *g.ID
		} else {
			ids[g.Name] = GroupIDForName(g.Name)
		}
	}
	resolve := func(names []string) ([]int64, error) {
		out := make([]int64, 0, len(names))
		for _, name := range names {
			id, ok := ids[name]
			if !ok {
				return nil, invalidf("seed", "未知分组: %s", name)
			}
			out = append(out, id)
		}
		return out, nil
	}

	pending := doc.Groups
	for len(pending) > 0 {
		var next []SeedGroup
		for _, g := range pending {
			parents, err := resolve(g.Parents)
			if err != nil {
				return stats, err
			}
			if !s.allValidGroupIDs(parents) {
				next = append(next, g)
				continue
			}
			group := &schema.SkillGroup{ID: schema.Int64Ptr(ids[g.Name]), Name: g.Name, ParentIDs: parents}
			if err := s.AddGroup(ctx, group); err != nil {
				return stats, err
			}
			stats.Groups++
		}
		if len(next) == len(pending) {
			names := make([]string, 0, len(next))
			for _, g := range next {
				names = append(names, g.Name)
			}
			return stats, invalidf("seed", "分组依赖无法满足: %s", strings.Join(names, ", "))
		}
		pending = next
	}

	now := s.now()
	for _, sk := range doc.Skills {
		groupIDs, err := resolve(sk.Groups)
		if err != nil {
			return stats, err
		}
		skill := schema.NewSkill(sk.Name, groupIDs...)
		if sk.Priority != 0 {
			skill.Priority = sk.Priority
		}
		skill.SecondsPracticed = sk.SecondsPracticed
		if sk.HoursSincePracticed != nil {
			last := now.Add(-time.Duration(*sk.HoursSincePracticed * float64(time.Hour))).Unix()
			skill.DateLastPracticed = &last
			skill.EstSecondsPracticed100Days = sk.SecondsPracticed
		}
		if _, err := s.AddSkill(ctx, skill); err != nil {
			return stats, err
		}
		stats.Skills++
	}

	for _, sc := range doc.Schedules {
		sched := &schema.Schedule{Name: sc.Name}
		for _, sl := range sc.Slots {
			slot := schema.Slot{DurationInSecs: sl.Minutes * 60}
			if sl.Group != "" {
				id, ok := ids[sl.Group]
				if !ok {
					return stats, invalidf("seed", "未知分组: %s", sl.Group)
				}
				slot.GroupID = schema.Int64Ptr(id)
			}
			sched.Slots = append(sched.Slots, slot)
		}
		if _, err := s.AddSchedule(ctx, sched); err != nil {
			return stats, err
		}
		stats.Schedules++
	}

	slog.Info("种子数据导入完成", "groups", stats.Groups, "skills", stats.Skills, "schedules", stats.Schedules)
	return stats, nil
}

func (s *PracticeService) groupIDsByName(ctx context.Context) (map[string]int64, error) {
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(groups))
	for i := range groups {
		ids[groups[i].Name] = groups[i].GroupID()
	}
	return ids, nil
}

func (s *PracticeService) allValidGroupIDs(ids []int64) bool {
	for _, id := range ids {
		if !s.IsValidGroupID(id) {
			return false
		}
	}
	return true
}
