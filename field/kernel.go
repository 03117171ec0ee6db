package field

import (
	"math"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CoefMode 积分内容
type CoefMode int

const (
	ModePotential  CoefMode = iota + 1 // 电位系数
	ModeInductance                     // 电感，结果乘以两线夹角余弦
)

// Kernel 线段间的诺依曼积分闭式解
// 行对应场线段，列对应源线段
func Kernel(src, fld Segments, mode CoefMode) *mat.Dense {
	out := maths.NewDense(fld.Len(), src.Len())
	for i := range fld.Len() {
		for j := range src.Len() {
			out.Set(i, j, pairIntegral(src.Start[j], src.End[j], src.Radius[j], fld.Start[i], fld.End[i], fld.Radius[i], mode))
		}
	}
	return out
}

// Inductance 线段间的部分电感积分
func Inductance(src, fld Segments) *mat.Dense { return Kernel(src, fld, ModeInductance) }

func sq(d r3.Vec) float64 { return r3.Dot(d, d) }

// atanhTerm 参数距1小于最小距离时置零
func atanhTerm(x float64) float64 {
	if math.Abs(x-1) < types.MinDistance {
		return 0
	}
	return math.Atanh(x)
}

// pairIntegral 一对线段的积分
// 按两线夹角区分异面、平行、共面三种情况
func pairIntegral(ps1, ps2 r3.Vec, rs float64, pf1, pf2 r3.Vec, rf float64, mode CoefMode) float64 {
	const (
		g0 = types.ParallelTol
		d0 = types.CoplanarTol
		r0 = types.MinDistance
	)
	ls2, lf2 := sq(r3.Sub(ps1, ps2)), sq(r3.Sub(pf1, pf2))
	ls, lf := math.Sqrt(ls2), math.Sqrt(lf2)

	R12 := sq(r3.Sub(pf2, ps2))
	R22 := sq(r3.Sub(pf1, ps2))
	R32 := sq(r3.Sub(pf1, ps1))
	R42 := sq(r3.Sub(pf2, ps1))

	a2 := R42 - R32 + R22 - R12
	cose := a2 / (2 * ls * lf)
	sine2 := 1 - cose*cose
	sine := math.Sqrt(math.Max(sine2, 0))

	par1, par2 := cose > 1-g0, cose < g0-1
	para := par1 || par2

	var u, v float64
	if para {
		v = -(R22 - R32 - ls2) / (2 * ls)
	} else {
		dis := 4*ls2*lf2 - a2*a2
		u = ls * (2*lf2*(R22-R32-ls2) + a2*(R42-R32-lf2)) / dis
		v = lf * (2*ls2*(R42-R32-lf2) + a2*(R22-R32-ls2)) / dis
	}
	d2 := math.Abs(R32 - u*u - v*v + 2*u*v*cose)
	d := math.Sqrt(d2)

	if para {
		sign := 1.0
		if par2 {
			sign = -1
		}
		out := math.Abs(lineIntegral(0, ls, rs, v, v+sign*lf, d, rf))
		if mode == ModeInductance {
			out *= cose
		}
		return out
	}

	R1 := math.Max(r0, math.Sqrt(R12))
	R2 := math.Max(r0, math.Sqrt(R22))
	R3 := math.Max(r0, math.Sqrt(R32))
	R4 := math.Max(r0, math.Sqrt(R42))

	// 异面非平行线的立体角项，共面时为零
	omg := 0.0
	if d >= d0 {
		omg = math.Atan((d2*cose+(u+ls)*(v+lf)*sine2)/(d*R1*sine)) -
			math.Atan((d2*cose+(u+ls)*v*sine2)/(d*R2*sine)) +
			math.Atan((d2*cose+u*v*sine2)/(d*R3*sine)) -
			math.Atan((d2*cose+u*(v+lf)*sine2)/(d*R4*sine))
	}

	integral := (u+ls)*atanhTerm(lf/(R1+R2)) +
		(v+lf)*atanhTerm(ls/(R1+R4)) -
		u*atanhTerm(lf/(R3+R4)) -
		v*atanhTerm(ls/(R2+R3))

	tp := 0.0
	if math.Abs(sine) >= g0 {
		tp = omg * d / sine
	}
	out := 2*integral - tp
	if mode == ModeInductance {
		out *= cose
	}
	return out
}

// lineIntegral 平行线段间的积分
// 源线段位于 [u1a,u1b]，场线段位于 [u2a,u2b]，两线间距为 d
func lineIntegral(u1a, u1b, r1, u2a, u2b, d, r2 float64) float64 {
	a2 := math.Max(r1, r2)
	a2 *= a2
	as := math.Max(d*d, a2)

	u13, u14 := u1a-u2a, u1a-u2b
	u23, u24 := u1b-u2a, u1b-u2b
	t13 := math.Sqrt(as + u13*u13)
	t14 := math.Sqrt(as + u14*u14)
	t23 := math.Sqrt(as + u23*u23)
	t24 := math.Sqrt(as + u24*u24)

	var i1 float64
	if u24+t24 < types.LogSwitch {
		i1 = u24*math.Log(t24-u24) + u13*math.Log(t13-u13) - u23*math.Log(t23-u23) - u14*math.Log(t14-u14)
	} else {
		i1 = -u24*math.Log(u24+t24) - u13*math.Log(u13+t13) + u23*math.Log(u23+t23) + u14*math.Log(u14+t14)
	}
	i2 := t24 + t13 - t23 - t14
	return i1 + i2
}
