package field

import (
	"fmt"
	"math"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
)

// OverheadLineLC 架空线单位长度电感和电容的简化公式
// 自感 ln(2h/r)，互感 0.5*ln((d²+(h1+h2)²)/(d²+(h1-h2)²))，电容为电感逆矩阵除以光速平方
func OverheadLineLC(heights, offsets, radii []float64) (l, c *mat.Dense, err error) {
	n := len(heights)
	if len(offsets) != n || len(radii) != n {
		return nil, nil, fmt.Errorf("高度 %d, 偏置 %d, 半径 %d: %w", n, len(offsets), len(radii), maths.ErrShape)
	}
	if n == 0 {
		return maths.NewDense(0, 0), maths.NewDense(0, 0), nil
	}
	km := types.Mu0 / (2 * math.Pi)
	l = mat.NewDense(n, n, nil)
	for i := range n {
		l.Set(i, i, km*math.Log(2*heights[i]/radii[i]))
		for j := i + 1; j < n; j++ {
			d := math.Abs(offsets[i] - offsets[j])
			h1, h2 := heights[i], heights[j]
			v := km * 0.5 * math.Log((d*d+(h1+h2)*(h1+h2))/(d*d+(h1-h2)*(h1-h2)))
			l.Set(i, j, v)
			l.Set(j, i, v)
		}
	}
	c = mat.NewDense(n, n, nil)
	if err := c.Inverse(l); err != nil {
		return nil, nil, fmt.Errorf("架空线电感矩阵求逆: %w", err)
	}
	c.Scale(1/(types.Vair*types.Vair), c)
	return l, c, nil
}
