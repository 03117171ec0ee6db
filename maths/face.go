package maths

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrShape 矩阵维度不匹配
var ErrShape = errors.New("矩阵维度不匹配")

// Number 是一个约束，允许任何浮点或复数类型
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Abs 是一个泛型函数，返回任何支持的 Number 类型的绝对值。
func Abs[T Number](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// Sum 求和
func Sum[T Number](v []T) T {
	var s T
	for _, x := range v {
		s += x
	}
	return s
}

// Range 生成 start, start+1, ... 共 n 个索引
func Range(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
