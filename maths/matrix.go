package maths

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewDense 创建指定维度的零矩阵，维度为零时返回空矩阵
func NewDense(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

// Dims 矩阵维度，空矩阵返回 0,0
func Dims(m mat.Matrix) (int, int) {
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return 0, 0
	}
	return m.Dims()
}

// Clone 复制矩阵
func Clone(m mat.Matrix) *mat.Dense {
	r, c := Dims(m)
	out := NewDense(r, c)
	if r > 0 && c > 0 {
		out.Copy(m)
	}
	return out
}

// ExpandMatrix 取出第 i 行和第 i 列的前 end 个元素，复制 k 次追加到矩阵末尾
// 新增的右下角 k*k 块为零
func ExpandMatrix(m mat.Matrix, i, end, k int) *mat.Dense {
	n, _ := Dims(m)
	out := NewDense(n+k, n+k)
	for r := range n {
		for c := range n {
			out.Set(r, c, m.At(r, c))
		}
	}
	for j := range k {
		for c := range end {
			out.Set(n+j, c, m.At(i, c))
			out.Set(c, n+j, m.At(c, i))
		}
	}
	return out
}

// CopyAndExpand 将 n*n 矩阵按元素扩展为 nk*nk 矩阵，每个元素复制为 k*k 块，主对角块为零
func CopyAndExpand(m mat.Matrix, k int) *mat.Dense {
	n, _ := Dims(m)
	out := NewDense(n*k, n*k)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			v := m.At(i, j)
			for a := range k {
				for b := range k {
					out.Set(i*k+a, j*k+b, v)
				}
			}
		}
	}
	return out
}

func checkBlock(m mat.Matrix, rows, cols []int, sub mat.Matrix) error {
	r, c := Dims(sub)
	if r != len(rows) || c != len(cols) {
		return fmt.Errorf("子矩阵 %dx%d, 索引 %dx%d: %w", r, c, len(rows), len(cols), ErrShape)
	}
	mr, mc := Dims(m)
	for _, i := range rows {
		if i < 0 || i >= mr {
			return fmt.Errorf("行索引 %d 超出范围 %d: %w", i, mr, ErrShape)
		}
	}
	for _, j := range cols {
		if j < 0 || j >= mc {
			return fmt.Errorf("列索引 %d 超出范围 %d: %w", j, mc, ErrShape)
		}
	}
	return nil
}

// SetBlock 将子矩阵写入指定行列
func SetBlock(m *mat.Dense, rows, cols []int, sub mat.Matrix) error {
	if err := checkBlock(m, rows, cols, sub); err != nil {
		return err
	}
	for a, i := range rows {
		for b, j := range cols {
			m.Set(i, j, sub.At(a, b))
		}
	}
	return nil
}

// AddBlock 将子矩阵乘以系数后累加到指定行列
func AddBlock(m *mat.Dense, rows, cols []int, alpha float64, sub mat.Matrix) error {
	if err := checkBlock(m, rows, cols, sub); err != nil {
		return err
	}
	for a, i := range rows {
		for b, j := range cols {
			m.Set(i, j, m.At(i, j)+alpha*sub.At(a, b))
		}
	}
	return nil
}

// UpdateMatrix 用 m*m 子矩阵替换指定行列交叉区域
func UpdateMatrix(m *mat.Dense, idx []int, sub mat.Matrix) error {
	return SetBlock(m, idx, idx, sub)
}

// SubMatrix 取出指定行列组成的子矩阵
func SubMatrix(m mat.Matrix, rows, cols []int) *mat.Dense {
	out := NewDense(len(rows), len(cols))
	for a, i := range rows {
		for b, j := range cols {
			out.Set(a, b, m.At(i, j))
		}
	}
	return out
}

// UpdateAndSum 将π型电容矩阵转换为节点电容矩阵
// 第一列(行)取其余元素和的相反数，左上角取首行首列之和的 -0.5 倍
func UpdateAndSum(m mat.Matrix) *mat.Dense {
	out := Clone(m)
	n, _ := Dims(out)
	for i := 1; i < n; i++ {
		s := 0.0
		for j := 1; j < n; j++ {
			s += out.At(i, j)
		}
		out.Set(i, 0, -s)
	}
	for j := 1; j < n; j++ {
		s := 0.0
		for i := 1; i < n; i++ {
			s += out.At(i, j)
		}
		out.Set(0, j, -s)
	}
	if n > 0 {
		s := 0.0
		for k := 1; k < n; k++ {
			s += out.At(0, k) + out.At(k, 0)
		}
		out.Set(0, 0, -0.5*s)
	}
	return out
}

// BlockDiag 块对角矩阵
func BlockDiag(blocks ...mat.Matrix) *mat.Dense {
	rows, cols := 0, 0
	for _, b := range blocks {
		r, c := Dims(b)
		rows, cols = rows+r, cols+c
	}
	out := NewDense(rows, cols)
	ro, co := 0, 0
	for _, b := range blocks {
		r, c := Dims(b)
		for i := range r {
			for j := range c {
				out.Set(ro+i, co+j, b.At(i, j))
			}
		}
		ro, co = ro+r, co+c
	}
	return out
}

// Scalar 1*1 矩阵
func Scalar(v float64) *mat.Dense { return mat.NewDense(1, 1, []float64{v}) }

// DeleteRowsCols 删除指定的行和列
func DeleteRowsCols(m mat.Matrix, del []int) *mat.Dense {
	n, _ := Dims(m)
	skip := make(map[int]bool, len(del))
	for _, i := range del {
		skip[i] = true
	}
	keep := make([]int, 0, n)
	for i := range n {
		if !skip[i] {
			keep = append(keep, i)
		}
	}
	return SubMatrix(m, keep, keep)
}

// IsSymmetric 判断矩阵在相对容差内是否对称
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := Dims(m)
	if r != c {
		return false
	}
	for i := range r {
		for j := i + 1; j < c; j++ {
			a, b := m.At(i, j), m.At(j, i)
			if Abs(a-b) > tol*max(Abs(a), Abs(b), 1e-300) {
				return false
			}
		}
	}
	return true
}
