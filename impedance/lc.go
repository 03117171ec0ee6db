package impedance

import (
	"fmt"
	"math"

	"tower/types"

	"gonum.org/v1/gonum/mat"
)

const km0 = types.Mu0 / (2 * math.Pi)

// endZ 套管末端高度，取第一根芯线的终点
func endZ(t *types.TubeWire) float64 {
	if len(t.Cores) > 0 {
		return t.Cores[0].End.Pos.Z
	}
	return t.Sheath.End.Pos.Z
}

// CoreInductance 芯线电感矩阵，以外皮半径作为回路半径
func CoreInductance(t *types.TubeWire) *mat.Dense {
	n := len(t.Cores)
	if n == 0 {
		return &mat.Dense{}
	}
	r := t.Sheath.Radius
	r2 := r * r
	l := mat.NewDense(n, n, nil)
	for i, ci := range t.Cores {
		di := ci.Core.InnerOffset
		for j, cj := range t.Cores {
			if i == j {
				l.Set(i, i, km0*math.Log((r2-di*di)/(ci.Radius*r)))
				continue
			}
			dk := cj.Core.InnerOffset
			cost := math.Cos((ci.Core.InnerAngle - cj.Core.InnerAngle) * math.Pi / 180)
			didk := di * dk
			tmp1 := didk*didk + r2*r2 - 2*didk*cost*r2
			tmp2 := di*di + dk*dk - 2*didk*cost
			l.Set(i, j, km0*math.Log(math.Sqrt(tmp1/tmp2)/r))
		}
	}
	return l
}

// CoreCapacitance 芯线电容矩阵 C = L⁻¹/v²
// 外径与内径之比小于10时波速按第一根芯线的相对介电常数折减
func CoreCapacitance(t *types.TubeWire, lc mat.Matrix) (*mat.Dense, error) {
	if len(t.Cores) == 0 {
		return &mat.Dense{}, nil
	}
	vc := types.Vair
	if t.OuterRadius/t.InnerRadius < 10 {
		vc = types.Vair / math.Sqrt(t.Cores[0].Epr)
	}
	var c mat.Dense
	if err := c.Inverse(lc); err != nil {
		return nil, fmt.Errorf("套管 %s 芯线电感矩阵求逆: %w", t.Sheath.Name, err)
	}
	c.Scale(1/(vc*vc), &c)
	return &c, nil
}

// SheathInductance 外皮电感，按末端高度分为高空、架空、地表、埋地四种情况
func SheathInductance(t *types.TubeWire) float64 {
	z, rs := endZ(t), t.Sheath.Radius
	switch {
	case z >= types.Vduct:
		return 0
	case z > 0:
		return km0 * math.Log(2*z/rs)
	case z == 0:
		return km0 * math.Log(4*t.OuterRadius/rs)
	case z < 0:
		return km0 * math.Log(t.OuterRadius/rs)
	}
	return 0
}

// SheathCapacitance 外皮电容，埋地时波速按外皮相对介电常数折减
func SheathCapacitance(t *types.TubeWire, ls float64) float64 {
	z := endZ(t)
	if z >= types.Vduct || ls == 0 || math.IsNaN(z) {
		return 0
	}
	v := types.Vair
	if z < 0 {
		v = types.Vair / math.Sqrt(t.Sheath.Epr)
	}
	return 1 / (ls * v * v)
}
