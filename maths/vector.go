package maths

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DirectionCosines 线段在 x、y、z 方向上的方向余弦
func DirectionCosines(start, end []r3.Vec) (x, y, z []float64) {
	n := len(start)
	x, y, z = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range start {
		d := r3.Sub(end[i], start[i])
		l := r3.Norm(d)
		x[i], y[i], z[i] = d.X/l, d.Y/l, d.Z/l
	}
	return x, y, z
}

// Outer 外积 a*bᵀ
func Outer(a, b []float64) *mat.Dense {
	m := NewDense(len(a), len(b))
	for i := range a {
		for j := range b {
			m.Set(i, j, a[i]*b[j])
		}
	}
	return m
}

// CosineProduct 方向余弦乘积矩阵 xxᵀ+yyᵀ+zzᵀ，即两两线段夹角的余弦
func CosineProduct(x, y, z []float64) *mat.Dense {
	n := len(x)
	m := NewDense(n, n)
	for i := range n {
		for j := range n {
			m.Set(i, j, x[i]*x[j]+y[i]*y[j]+z[i]*z[j])
		}
	}
	return m
}
