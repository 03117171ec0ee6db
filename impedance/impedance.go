package impedance

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
)

// ErrFrequency 频率必须为正数
var ErrFrequency = errors.New("频率必须为正数")

// ErrNoCore 套管没有芯线
var ErrNoCore = errors.New("套管没有芯线")

// ValidateFrequency 检查频率均为有限正数
func ValidateFrequency(freqs ...float64) error {
	if len(freqs) == 0 {
		return fmt.Errorf("频率列表为空: %w", ErrFrequency)
	}
	for i, f := range freqs {
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("第 %d 个频率 %g: %w", i, f, ErrFrequency)
		}
	}
	return nil
}

func checkTube(t *types.TubeWire) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Cores) == 0 {
		return fmt.Errorf("套管 %s: %w", t.Sheath.Name, ErrNoCore)
	}
	return nil
}

// propagation 导体中的传播常数 γ = sqrt(jωμ(σ+jωε0))
func propagation(omega, mu, sigma float64) complex128 {
	return cmplx.Sqrt(complex(0, omega*mu) * complex(sigma, omega*types.Ep0))
}

// coth 实部绝对值较大时取极限值，避免 cosh/sinh 溢出
func coth(z complex128) complex128 {
	switch {
	case real(z) > 20:
		return 1
	case real(z) < -20:
		return -1
	}
	return cmplx.Cosh(z) / cmplx.Sinh(z)
}

// overBesselLimit 参数实部超过阈值时使用渐近近似
func overBesselLimit(z complex128) bool { return real(z) > types.BesselLimit }

// sheathArgs 外皮内外表面的贝塞尔函数参数
func sheathArgs(t *types.TubeWire, omega float64) (mus float64, rsa, rsb complex128) {
	mus = types.Mu0 * t.Sheath.Mur
	gs := propagation(omega, mus, t.Sheath.Sigma)
	return mus, complex(t.InnerRadius, 0) * gs, complex(t.Sheath.Radius, 0) * gs
}

// coreImpedance 单一频率下的芯线阻抗矩阵
// 对角为趋肤效应自阻抗，外加外皮内表面的邻近效应项及15阶谐波互阻抗项
func coreImpedance(t *types.TubeWire, f float64) *mat.CDense {
	n := len(t.Cores)
	omega := 2 * math.Pi * f
	z := mat.NewCDense(n, n, nil)
	for i, c := range t.Cores {
		muc := types.Mu0 * c.Mur
		gc := propagation(omega, muc, c.Sigma)
		rc := complex(c.Radius, 0) * gc
		zd := gc / complex(2*math.Pi*c.Radius*c.Sigma, 0)
		if !overBesselLimit(rc) {
			kc := complex(0, omega*muc) / (complex(2*math.Pi*c.Radius, 0) * gc)
			i0, i1, _, _ := maths.BesselIK01(rc)
			zd = kc * i0 / i1
		}
		z.Set(i, i, zd)
	}

	mus, rsa, _ := sheathArgs(t, omega)
	kr := make([]complex128, types.Harmonics)
	if overBesselLimit(rsa) {
		for k := range kr {
			kr[k] = maths.BesselK2(rsa, k, k+1)
		}
	} else {
		kn := maths.BesselKn(types.Harmonics, rsa)
		for k := range kr {
			kr[k] = kn[k] / kn[k+1]
		}
	}

	ks := complex(0, omega*mus/(2*math.Pi))
	proximity := ks * kr[0] / rsa
	rin2 := t.InnerRadius * t.InnerRadius
	for i, ci := range t.Cores {
		for j, cj := range t.Cores {
			v := z.At(i, j) + proximity
			didk := ci.Core.InnerOffset * cj.Core.InnerOffset / rin2
			angle := (ci.Core.InnerAngle - cj.Core.InnerAngle) * math.Pi / 180
			for k := range types.Harmonics {
				m := float64(k + 1)
				km := ks * 2 / (complex(m*(1+t.Sheath.Mur), 0) + rsa*kr[k])
				v += complex(math.Pow(didk, m)*math.Cos(m*angle), 0) * km
			}
			z.Set(i, j, v)
		}
	}
	return z
}

// sheathImpedance 单一频率下的外皮自阻抗
func sheathImpedance(t *types.TubeWire, f float64) complex128 {
	omega := 2 * math.Pi * f
	mus, rsa, rsb := sheathArgs(t, omega)
	ks := complex(0, omega*mus/(2*math.Pi)) / rsb
	zs := ks
	if dr := rsb - rsa; !overBesselLimit(dr) {
		zs = ks * coth(dr)
	}
	if !overBesselLimit(rsb) {
		_, ia1, _, ka1 := maths.BesselIK01(rsa)
		ib0, ib1, kb0, kb1 := maths.BesselIK01(rsb)
		zs = ks * (ib0*ka1 + ia1*kb0) / (ib1*ka1 - ia1*kb1)
	}
	return zs
}

// mutualImpedance 单一频率下芯线与外皮之间的互阻抗
func mutualImpedance(t *types.TubeWire, f float64) complex128 {
	omega := 2 * math.Pi * f
	mus, rsa, rsb := sheathArgs(t, omega)
	ks := complex(0, omega*mus/(2*math.Pi)) / (rsa * rsb)
	var z0 complex128
	if dr := rsb - rsa; !overBesselLimit(dr) {
		// 外皮很厚时指数项溢出，互阻抗趋于零
		if d := maths.BesselIK(rsa, 1, rsb, 1) - maths.BesselIK(rsb, 1, rsa, 1); !cmplx.IsInf(d) && !cmplx.IsNaN(d) {
			z0 = ks / d
		}
	}
	if !overBesselLimit(rsb) {
		_, ia1, _, ka1 := maths.BesselIK01(rsa)
		_, ib1, _, kb1 := maths.BesselIK01(rsb)
		z0 = ks / (ia1*kb1 - ib1*ka1)
	}
	return z0
}

// CoreImpedanceSweep 各频率下的芯线阻抗矩阵
func CoreImpedanceSweep(t *types.TubeWire, freqs []float64) ([]*mat.CDense, error) {
	if err := ValidateFrequency(freqs...); err != nil {
		return nil, err
	}
	if err := checkTube(t); err != nil {
		return nil, err
	}
	out := make([]*mat.CDense, len(freqs))
	for k, f := range freqs {
		out[k] = coreImpedance(t, f)
	}
	return out, nil
}

// CoreImpedance 单一频率下的芯线阻抗矩阵
func CoreImpedance(t *types.TubeWire, f float64) (*mat.CDense, error) {
	out, err := CoreImpedanceSweep(t, []float64{f})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// SheathImpedanceSweep 各频率下的外皮阻抗
func SheathImpedanceSweep(t *types.TubeWire, freqs []float64) ([]complex128, error) {
	if err := ValidateFrequency(freqs...); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := make([]complex128, len(freqs))
	for k, f := range freqs {
		out[k] = sheathImpedance(t, f)
	}
	return out, nil
}

// SheathImpedance 单一频率下的外皮阻抗
func SheathImpedance(t *types.TubeWire, f float64) (complex128, error) {
	out, err := SheathImpedanceSweep(t, []float64{f})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Mutual 芯线与外皮互阻抗，Zcs 为 n*1，Zsc 为 1*n
type Mutual struct {
	Zcs *mat.CDense
	Zsc *mat.CDense
}

func newMutual(n int, z0 complex128) Mutual {
	m := Mutual{Zcs: mat.NewCDense(n, 1, nil), Zsc: mat.NewCDense(1, n, nil)}
	for i := range n {
		m.Zcs.Set(i, 0, z0)
		m.Zsc.Set(0, i, z0)
	}
	return m
}

// MutualImpedanceSweep 各频率下的芯线与外皮互阻抗
func MutualImpedanceSweep(t *types.TubeWire, freqs []float64) ([]Mutual, error) {
	if err := ValidateFrequency(freqs...); err != nil {
		return nil, err
	}
	if err := checkTube(t); err != nil {
		return nil, err
	}
	out := make([]Mutual, len(freqs))
	for k, f := range freqs {
		out[k] = newMutual(len(t.Cores), mutualImpedance(t, f))
	}
	return out, nil
}

// MutualImpedance 单一频率下的芯线与外皮互阻抗
func MutualImpedance(t *types.TubeWire, f float64) (Mutual, error) {
	out, err := MutualImpedanceSweep(t, []float64{f})
	if err != nil {
		return Mutual{}, err
	}
	return out[0], nil
}

// GroundImpedanceSweep 各频率下的大地回路阻抗
// 架空(0<z<1e6)时使用复数深度公式，埋地(z<0)时只有自阻抗，高度取第一根导线
func GroundImpedanceSweep(g types.Ground, heights, offsets, radii []float64, freqs []float64) ([]*mat.CDense, error) {
	if err := ValidateFrequency(freqs...); err != nil {
		return nil, err
	}
	n := len(heights)
	if n == 0 || len(offsets) != n || len(radii) != n {
		return nil, fmt.Errorf("高度 %d, 偏置 %d, 半径 %d: %w", n, len(offsets), len(radii), maths.ErrShape)
	}
	out := make([]*mat.CDense, len(freqs))
	for k, f := range freqs {
		out[k] = groundImpedance(g, heights, offsets, radii, f)
	}
	return out, nil
}

// GroundImpedance 单一频率下的大地回路阻抗
func GroundImpedance(g types.Ground, heights, offsets, radii []float64, f float64) (*mat.CDense, error) {
	out, err := GroundImpedanceSweep(g, heights, offsets, radii, []float64{f})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func groundImpedance(g types.Ground, heights, offsets, radii []float64, f float64) *mat.CDense {
	n := len(heights)
	omega := 2 * math.Pi * f
	mug := g.Mur * types.Mu0
	gamma := cmplx.Sqrt(complex(0, omega*mug) * complex(g.Sigma, omega*g.Epr*types.Ep0))
	km := complex(0, omega*mug/(4*math.Pi))
	z := mat.NewCDense(n, n, nil)
	switch h0 := heights[0]; {
	case h0 > 0 && h0 < types.Vduct:
		for i := range n {
			for j := i; j < n; j++ {
				var v complex128
				if i == j {
					gh := gamma * complex(heights[i], 0)
					v = km * cmplx.Log((1+gh)*(1+gh)/(gh*gh))
				} else {
					d := complex(math.Abs(offsets[i]-offsets[j]), 0)
					hm := gamma * complex(heights[i]+heights[j], 0) / 2
					dg := d * gamma / 2
					v = km * cmplx.Log(((1+hm)*(1+hm)+dg*dg)/(hm*hm+dg*dg))
				}
				z.Set(i, j, v)
				z.Set(j, i, v)
			}
		}
	case h0 < 0:
		for i := range n {
			r0 := complex(radii[i], 0) * gamma
			z.Set(i, i, 2*km*cmplx.Log((1+r0)/r0))
		}
	}
	return z
}
