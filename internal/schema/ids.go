package schema

import "slices"

// NormalizeIDs 去重并按升序排列，空输入返回 nil
func NormalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ContainsID 判断 ids 是否包含 id
func ContainsID(ids []int64, id int64) bool {
	return slices.Contains(ids, id)
}

// ReplaceID 将 ids 中的 oldID 替换为 newID（newID 为 nil 时直接移除），结果按集合语义去重。
// 返回替换后的切片以及是否发生了变化。
func ReplaceID(ids []int64, oldID int64, newID *int64) ([]int64, bool) {
	if !ContainsID(ids, oldID) {
		return ids, false
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != oldID {
			out = append(out, id)
		}
	}
	if newID != nil {
		out = append(out, *newID)
	}
	return NormalizeIDs(out), true
}
