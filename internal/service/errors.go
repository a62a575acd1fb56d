package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuqie6/SkillPractice/internal/repository"
)

var (
	// ErrValidation 记录未通过校验，操作未写入任何数据
	ErrValidation = errors.New("校验失败")
	// ErrNotFound 引用的记录不存在
	ErrNotFound = repository.ErrNotFound
	// ErrDuplicateName 同类记录中已存在该名称
	ErrDuplicateName = errors.New("名称已存在")
	// ErrInvariant 内部不变量被破坏（分组成环、唯一 ID 多行），属于程序缺陷
	ErrInvariant = errors.New("内部不变量被破坏")
)

// ValidationError 描述具体的校验失败原因
type ValidationError struct {
	Entity string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s 校验失败: %s", e.Entity, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidf(entity, format string, args ...any) error {
	return &ValidationError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// InvariantError 不可恢复的内部错误，正常运行中不应出现
type InvariantError struct {
	Op     string
	Detail string
	Err    error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrInvariant, e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvariant, e.Op, e.Detail)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func invariant(op, detail string, err error) error {
	e := &InvariantError{Op: op, Detail: detail, Err: err}
	slog.Error("内部不变量被破坏", "op", op, "detail", detail, "error", err)
	return e
}

// storeErr 将仓储层的多行错误提升为不变量错误，其余原样包装
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrMultipleRows) {
		return invariant(op, "唯一 ID 查询返回多行", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
