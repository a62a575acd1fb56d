package service

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/yuqie6/SkillPractice/internal/schema"
)

// GroupIDForName 由分组名称派生稳定 ID：MD5 前 8 字节按大端解释
func GroupIDForName(name string) int64 {
	sum := md5.Sum([]byte(name))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// NewSkillGroup 创建以名称指纹为 ID 的分组
func NewSkillGroup(name string, parentIDs ...int64) *schema.SkillGroup {
	return &schema.SkillGroup{
		ID:        schema.Int64Ptr(GroupIDForName(name)),
		Name:      name,
		ParentIDs: schema.NormalizeIDs(parentIDs),
	}
}
