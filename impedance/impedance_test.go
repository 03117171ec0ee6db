package impedance

import (
	"math"
	"math/cmplx"
	"testing"

	"tower/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTube 三芯套管，外皮长 10m，末端高度 z
func newTube(t *testing.T, z float64, sheath types.WireParam, inner, outer float64) *types.TubeWire {
	t.Helper()
	s := types.NewWire("Y10", types.NewNode("X09", 0, 0, z), types.NewNode("X10", 10, 0, z), sheath)
	tube := types.NewTubeWire(s, inner, outer, 3)
	core := types.WireParam{Radius: 0.0087, Sigma: 5.8e7, Mur: 1, Epr: 1}
	for i, angle := range []float64{-5, 0, 5} {
		a := types.NewNode("X1"+string(rune('1'+2*i)), 0, 0, z)
		b := types.NewNode("X1"+string(rune('2'+2*i)), 10, 0, z)
		w := types.NewCoreWire("Y1"+string(rune('1'+i)), a, b, core, types.CoreGeometry{InnerOffset: 1.9, InnerAngle: angle})
		require.NoError(t, tube.AddCoreWire(w))
	}
	return tube
}

func defaultTube(t *testing.T) *types.TubeWire {
	return newTube(t, 10, types.WireParam{Radius: 2, Sigma: 1e7, Mur: 50, Epr: 1}, 1.99, 2.1)
}

func assertSymmetric(t *testing.T, z *mat.CDense, tol float64) {
	t.Helper()
	r, c := z.Dims()
	require.Equal(t, r, c)
	for i := range r {
		for j := range c {
			a, b := z.At(i, j), z.At(j, i)
			assert.LessOrEqual(t, cmplx.Abs(a-b), tol*cmplx.Abs(a), "(%d,%d)", i, j)
		}
	}
}

func TestFrequencyRejected(t *testing.T) {
	tube := defaultTube(t)
	_, err := CoreImpedanceSweep(tube, []float64{50, 0})
	assert.ErrorIs(t, err, ErrFrequency)
	_, err = CoreImpedanceSweep(tube, nil)
	assert.ErrorIs(t, err, ErrFrequency)
	_, err = SheathImpedance(tube, -1)
	assert.ErrorIs(t, err, ErrFrequency)
	_, err = MutualImpedance(tube, math.Inf(1))
	assert.ErrorIs(t, err, ErrFrequency)
	_, err = Prepare(tube, 0)
	assert.ErrorIs(t, err, ErrFrequency)
}

func TestEmptyTubeRejected(t *testing.T) {
	s := types.NewWire("Y10", types.NewNode("X09", 0, 0, 1), types.NewNode("X10", 1, 0, 1), types.WireParam{Radius: 0.1, Sigma: 1e7, Mur: 1})
	tube := types.NewTubeWire(s, 0.08, 0.12, 2)
	_, err := CoreImpedance(tube, 50)
	assert.ErrorIs(t, err, ErrNoCore)
}

func TestCoreImpedanceSweep(t *testing.T) {
	tube := defaultTube(t)
	freqs := []float64{50, 1e3, 1e6}
	zs, err := CoreImpedanceSweep(tube, freqs)
	require.NoError(t, err)
	require.Len(t, zs, len(freqs))
	for k, z := range zs {
		r, c := z.Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 3, c)
		assertSymmetric(t, z, 1e-12)
		for i := range 3 {
			assert.Positive(t, real(z.At(i, i)), "f=%g", freqs[k])
			assert.Positive(t, imag(z.At(i, i)), "f=%g", freqs[k])
		}
		// 单一频率与扫频结果一致
		single, err := CoreImpedance(tube, freqs[k])
		require.NoError(t, err)
		assert.True(t, mat.CEqual(z, single))
	}
	// 趋肤效应使电阻随频率增大
	assert.Greater(t, real(zs[2].At(0, 0)), real(zs[0].At(0, 0)))
}

func TestCoreImpedanceDC(t *testing.T) {
	// 低频下芯线自阻抗实部趋于直流电阻
	tube := newTube(t, 10, types.WireParam{Radius: 2, Sigma: 1e7, Mur: 1, Epr: 1}, 1.99, 2.1)
	z, err := CoreImpedance(tube, 1e-3)
	require.NoError(t, err)
	rdc := 1 / (5.8e7 * math.Pi * 0.0087 * 0.0087)
	for i := range 3 {
		assert.InEpsilon(t, rdc, real(z.At(i, i)), 1e-3)
	}
}

func TestSheathAndMutualDC(t *testing.T) {
	tube := newTube(t, 10, types.WireParam{Radius: 0.05, Sigma: 1e7, Mur: 1, Epr: 1}, 0.04, 0.06)
	rdc := 1 / (1e7 * math.Pi * (0.05*0.05 - 0.04*0.04))

	zs, err := SheathImpedance(tube, 1e-4)
	require.NoError(t, err)
	assert.InEpsilon(t, rdc, real(zs), 1e-3)

	m, err := MutualImpedance(tube, 1e-4)
	require.NoError(t, err)
	r, c := m.Zcs.Dims()
	assert.Equal(t, []int{3, 1}, []int{r, c})
	r, c = m.Zsc.Dims()
	assert.Equal(t, []int{1, 3}, []int{r, c})
	for i := range 3 {
		assert.Equal(t, m.Zcs.At(i, 0), m.Zsc.At(0, i))
		assert.InEpsilon(t, -rdc, real(m.Zcs.At(i, 0)), 1e-3)
	}
}

func TestSheathImpedanceSweep(t *testing.T) {
	tube := defaultTube(t)
	freqs := []float64{50, 1e4, 1e5, 1e6, 1e7}
	zs, err := SheathImpedanceSweep(tube, freqs)
	require.NoError(t, err)
	require.Len(t, zs, len(freqs))
	for k, z := range zs {
		assert.False(t, cmplx.IsNaN(z), "f=%g", freqs[k])
		assert.False(t, cmplx.IsInf(z), "f=%g", freqs[k])
	}
	ms, err := MutualImpedanceSweep(tube, freqs)
	require.NoError(t, err)
	require.Len(t, ms, len(freqs))
	for k, m := range ms {
		for i := range 3 {
			assert.False(t, cmplx.IsNaN(m.Zcs.At(i, 0)), "f=%g", freqs[k])
			assert.False(t, cmplx.IsInf(m.Zcs.At(i, 0)), "f=%g", freqs[k])
		}
	}
	// 外皮较厚时高频互阻抗衰减为零
	assert.Zero(t, ms[len(ms)-1].Zcs.At(0, 0))

	p, err := Prepare(tube, 1e6)
	require.NoError(t, err)
	for _, m := range []*mat.Dense{p.Rin, p.Rx, p.Lin, p.Lx} {
		r, c := m.Dims()
		for i := range r {
			for j := range c {
				assert.False(t, math.IsNaN(m.At(i, j)), "(%d,%d)", i, j)
			}
		}
	}
}

func TestTubeGeometryRejected(t *testing.T) {
	param := types.WireParam{Radius: 2, Sigma: 1e7, Mur: 50, Epr: 1}
	cases := []struct {
		name         string
		inner, outer float64
	}{
		{"内半径大于外皮半径", 2.05, 2.1},
		{"内半径等于外皮半径", 2, 2.1},
		{"整体外半径小于外皮半径", 1.99, 1.5},
		{"内半径为零", 0, 2.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tube := newTube(t, 10, param, tc.inner, tc.outer)
			_, err := CoreImpedance(tube, 50)
			assert.ErrorIs(t, err, types.ErrTubeGeometry)
			_, err = SheathImpedance(tube, 50)
			assert.ErrorIs(t, err, types.ErrTubeGeometry)
			_, err = MutualImpedanceSweep(tube, []float64{50, 1e6})
			assert.ErrorIs(t, err, types.ErrTubeGeometry)
			_, err = Prepare(tube, 1e6)
			assert.ErrorIs(t, err, types.ErrTubeGeometry)
		})
	}
}

func TestCoreInductance(t *testing.T) {
	tube := defaultTube(t)
	lc := CoreInductance(tube)
	r, c := lc.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	assert.True(t, mat.EqualApprox(lc, lc.T(), 1e-18))
	want := types.Mu0 / (2 * math.Pi) * math.Log((4-1.9*1.9)/(0.0087*2))
	for i := range 3 {
		assert.InEpsilon(t, want, lc.At(i, i), 1e-12)
	}
	assert.Positive(t, lc.At(0, 1))
	assert.Greater(t, lc.At(0, 1), lc.At(0, 2))
}

func TestCoreCapacitance(t *testing.T) {
	tube := defaultTube(t)
	lc := CoreInductance(tube)
	cc, err := CoreCapacitance(tube, lc)
	require.NoError(t, err)
	var prod mat.Dense
	prod.Mul(cc, lc)
	v2 := types.Vair * types.Vair
	for i := range 3 {
		for j := range 3 {
			want := 0.0
			if i == j {
				want = 1 / v2
			}
			assert.InDelta(t, want, prod.At(i, j), 1e-9/v2)
		}
	}
}

func TestSheathInductanceCapacitance(t *testing.T) {
	param := types.WireParam{Radius: 2, Sigma: 1e7, Mur: 50, Epr: 4}
	k := types.Mu0 / (2 * math.Pi)
	cases := []struct {
		name string
		z    float64
		ls   float64
		v    float64
	}{
		{"架空", 10, k * math.Log(20.0/2), types.Vair},
		{"地表", 0, k * math.Log(4*2.1/2), types.Vair},
		{"埋地", -1, k * math.Log(2.1/2), types.Vair / 2},
		{"高空", 2e6, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tube := newTube(t, tc.z, param, 1.99, 2.1)
			ls := SheathInductance(tube)
			assert.InDelta(t, tc.ls, ls, 1e-18)
			cs := SheathCapacitance(tube, ls)
			if tc.ls == 0 {
				assert.Zero(t, cs)
				return
			}
			assert.InEpsilon(t, 1/(tc.ls*tc.v*tc.v), cs, 1e-12)
		})
	}
}

func TestPrepare(t *testing.T) {
	tube := defaultTube(t)
	const f = 2e4
	p, err := Prepare(tube, f)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Size())

	omega := 2 * math.Pi * f
	zc, _ := CoreImpedance(tube, f)
	zs, _ := SheathImpedance(tube, f)
	m, _ := MutualImpedance(tube, f)
	length := tube.Length()

	assert.InEpsilon(t, real(zs)*length, p.Rin.At(0, 0), 1e-12)
	assert.InEpsilon(t, real(zc.At(0, 1))*length, p.Rin.At(1, 2), 1e-12)
	assert.InEpsilon(t, (imag(zs)/omega+SheathInductance(tube))*length, p.Lin.At(0, 0), 1e-12)
	assert.InEpsilon(t, real(m.Zsc.At(0, 1))*length, p.Rin.At(0, 2), 1e-12)
	assert.True(t, mat.EqualApprox(p.Rin, p.Rin.T(), 1e-12))
	assert.True(t, mat.EqualApprox(p.Lin, p.Lin.T(), 1e-12))

	// 外皮行列的耦合项为零
	for i := range 4 {
		assert.Zero(t, p.Rx.At(0, i))
		assert.Zero(t, p.Lx.At(i, 0))
	}
	assert.InEpsilon(t, 2*real(m.Zcs.At(0, 0))*length, p.Rx.At(1, 1), 1e-12)
	assert.InEpsilon(t, 2*imag(m.Zcs.At(0, 0))/omega*length, p.Lx.At(2, 3), 1e-12)
	assert.InEpsilon(t, SheathCapacitance(tube, SheathInductance(tube)), p.Cin.At(0, 0), 1e-12)
	assert.Zero(t, p.Cin.At(0, 1))
}

func TestGroundImpedance(t *testing.T) {
	g := types.Ground{Sigma: 1e-3, Mur: 1, Epr: 4}
	z, err := GroundImpedance(g, []float64{10, 12}, []float64{0, 2}, []float64{0.01, 0.01}, 50)
	require.NoError(t, err)
	assert.Equal(t, z.At(0, 1), z.At(1, 0))
	assert.Positive(t, real(z.At(0, 0)))
	assert.Greater(t, cmplx.Abs(z.At(0, 0)), cmplx.Abs(z.At(0, 1)))

	buried, err := GroundImpedance(g, []float64{-1, -1}, []float64{0, 2}, []float64{0.01, 0.02}, 50)
	require.NoError(t, err)
	assert.Zero(t, buried.At(0, 1))
	assert.NotZero(t, buried.At(1, 1))

	high, err := GroundImpedance(g, []float64{2e6}, []float64{0}, []float64{0.01}, 50)
	require.NoError(t, err)
	assert.Zero(t, high.At(0, 0))

	_, err = GroundImpedance(g, []float64{10}, []float64{0, 1}, []float64{0.01}, 50)
	assert.Error(t, err)
}

func TestGroundImpedanceSweep(t *testing.T) {
	g := types.Ground{Sigma: 1e-3, Mur: 1, Epr: 4}
	h, d, r := []float64{10, 12}, []float64{0, 2}, []float64{0.01, 0.01}
	freqs := []float64{50, 1e3, 1e6}
	zs, err := GroundImpedanceSweep(g, h, d, r, freqs)
	require.NoError(t, err)
	require.Len(t, zs, len(freqs))
	for k, f := range freqs {
		single, err := GroundImpedance(g, h, d, r, f)
		require.NoError(t, err)
		assert.True(t, mat.CEqual(zs[k], single), "f=%g", f)
	}

	_, err = GroundImpedanceSweep(g, h, d, r, []float64{50, 0})
	assert.ErrorIs(t, err, ErrFrequency)
}
