package service

import (
	"fmt"
	"slices"

	"github.com/yuqie6/SkillPractice/internal/schema"
)

// GroupSet 分组 ID 集合
type GroupSet map[int64]struct{}

// Has 判断集合是否包含 id
func (s GroupSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted 返回升序排列的 ID 列表
func (s GroupSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// GroupHierarchy 分组 DAG 的内存缓存：分组 ID -> 父分组集合。
// 值为 nil 表示根分组。本类型不加锁，由 PracticeService 的读写锁保护。
type GroupHierarchy struct {
	parents map[int64]GroupSet
}

// NewGroupHierarchy 创建空缓存
func NewGroupHierarchy() *GroupHierarchy {
	return &GroupHierarchy{parents: make(map[int64]GroupSet)}
}

// Load 用全部分组替换缓存内容
func (h *GroupHierarchy) Load(groups []schema.SkillGroup) {
	h.parents = make(map[int64]GroupSet, len(groups))
	for i := range groups {
		h.set(&groups[i])
	}
}

// Len 缓存中的分组数量
func (h *GroupHierarchy) Len() int {
	return len(h.parents)
}

// IsValidID 分组 ID 是否存在
func (h *GroupHierarchy) IsValidID(id int64) bool {
	_, ok := h.parents[id]
	return ok
}

// OnGroupAdded 在分组持久化且校验通过后调用
func (h *GroupHierarchy) OnGroupAdded(g *schema.SkillGroup) {
	h.set(g)
}

// OnGroupUpdated 在分组更新持久化后调用
func (h *GroupHierarchy) OnGroupUpdated(g *schema.SkillGroup) {
	h.set(g)
}

// OnGroupRemoved 在分组删除后调用
func (h *GroupHierarchy) OnGroupRemoved(id int64) {
	delete(h.parents, id)
}

func (h *GroupHierarchy) set(g *schema.SkillGroup) {
	if len(g.ParentIDs) == 0 {
		h.parents[g.GroupID()] = nil
		return
	}
	ps := make(GroupSet, len(g.ParentIDs))
	for _, p := range g.ParentIDs {
		ps[p] = struct{}{}
	}
	h.parents[g.GroupID()] = ps
}

// ParentsOf 返回直接父分组（升序），根分组返回 nil
func (h *GroupHierarchy) ParentsOf(id int64) []int64 {
	ps := h.parents[id]
	if ps == nil {
		return nil
	}
	return ps.Sorted()
}

// AncestorsOf 广度优先收集 id 的全部祖先，每个节点只处理一次。
// 没有父分组时返回 nil（区别于空集合）；遍历回到 id 自身说明出现环，返回 InvariantError。
func (h *GroupHierarchy) AncestorsOf(id int64) (GroupSet, error) {
	if h.parents[id] == nil {
		return nil, nil
	}
	ancestors := GroupSet{}
	if _, err := h.walk(id, func(ancestor int64) bool {
		ancestors[ancestor] = struct{}{}
		return false
	}); err != nil {
		return nil, err
	}
	return ancestors, nil
}

// IsAncestorOf 判断 candidate 是否为 id 的祖先，命中即返回
func (h *GroupHierarchy) IsAncestorOf(candidate, id int64) (bool, error) {
	return h.walk(id, func(ancestor int64) bool {
		return ancestor == candidate
	})
}

// WouldCreateCycle 为 id 增加父分组 newParentID 是否会成环
func (h *GroupHierarchy) WouldCreateCycle(id, newParentID int64) (bool, error) {
	if id == newParentID {
		return true, nil
	}
	return h.IsAncestorOf(id, newParentID)
}

// EffectiveGroups 技能的有效分组：直接分组及其全部祖先
func (h *GroupHierarchy) EffectiveGroups(skill *schema.Skill) (GroupSet, error) {
	out := make(GroupSet)
	for _, gid := range skill.GroupIDs {
		out[gid] = struct{}{}
		ancestors, err := h.AncestorsOf(gid)
		if err != nil {
			return nil, err
		}
		for a := range ancestors {
			out[a] = struct{}{}
		}
	}
	return out, nil
}

// walk 沿父边做 BFS，对每个首次访问的祖先调用 visit；visit 返回 true 时提前结束并返回 true
func (h *GroupHierarchy) walk(id int64, visit func(ancestor int64) bool) (bool, error) {
	start := h.parents[id]
	if start == nil {
		return false, nil
	}
	queue := start.Sorted()
	visited := make(GroupSet, len(h.parents))
	for len(queue) > 0 {
		ancestor := queue[0]
		queue = queue[1:]
		if ancestor == id {
			return false, invariant("遍历祖先分组", fmt.Sprintf("分组 %d 出现父子环", id), nil)
		}
		if visited.Has(ancestor) {
			continue
		}
		visited[ancestor] = struct{}{}
		if visit(ancestor) {
			return true, nil
		}
		for p := range h.parents[ancestor] {
			if !visited.Has(p) {
				queue = append(queue, p)
			}
		}
	}
	return false, nil
}
