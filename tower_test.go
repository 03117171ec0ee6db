package tower

import (
	"io"
	"log/slog"
	"testing"

	"tower/field"
	"tower/impedance"
	"tower/maths"
	"tower/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	plain  = types.WireParam{Radius: 0.005, R: 1e-3, L: 1e-7, Sigma: 5.8e7, Mur: 1, Epr: 1}
	quiet  = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ground = types.Ground{Sigma: 1e-3, Mur: 1, Epr: 4, Model: types.GroundPerfect}
)

// tubeWires 一根架空线、一根 20m 三芯套管和一根地面导线，按 10m 分段
func tubeWires(t *testing.T) *types.Wires {
	t.Helper()
	x1 := types.NewNode("X01", 0, 0, 10)
	x2 := types.NewNode("X02", 10, 0, 10)
	x3 := types.NewNode("X03", 30, 0, 10)
	sheath := types.NewWire("Y02", x2, x3, types.WireParam{Radius: 0.05, Sigma: 1e7, Mur: 1, Epr: 1})
	tube := types.NewTubeWire(sheath, 0.04, 0.06, 3)
	core := types.WireParam{Radius: 0.005, Sigma: 5.8e7, Mur: 1, Epr: 2}
	for i, angle := range []float64{0, 120, 240} {
		a := types.NewNode("X1"+string(rune('1'+2*i)), 10, 0, 10)
		b := types.NewNode("X1"+string(rune('2'+2*i)), 30, 0, 10)
		w := types.NewCoreWire("Y1"+string(rune('1'+i)), a, b, core, types.CoreGeometry{InnerOffset: 0.02, InnerAngle: angle})
		require.NoError(t, tube.AddCoreWire(w))
	}

	ws := types.NewWires()
	ws.AddAir(types.NewWire("Y01", x1, x2, plain), sheath)
	ws.AddGround(types.NewWire("Y03", types.NewNode("X04", 0, 5, -1), types.NewNode("X05", 10, 5, -1), plain))
	ws.AddTube(tube)
	require.NoError(t, ws.SplitLongWires(10))
	return ws
}

func nodeIndex(ws *types.Wires) map[string]int {
	idx := make(map[string]int)
	for i, name := range ws.NodeNames() {
		idx[name] = i
	}
	return idx
}

func TestBuild(t *testing.T) {
	ws := tubeWires(t)
	tw := New(ws, ground, quiet, WithName("T1"))
	require.NoError(t, tw.Build(50))

	for m := Incidence; m < matrixCount; m++ {
		assert.Equal(t, PhaseFinalized, tw.Phase(m), m.String())
	}
	require.Equal(t, 10, ws.Count())
	require.Equal(t, 15, ws.CountDistinctPoints())

	r, c := tw.A.Dims()
	assert.Equal(t, []int{10, 15}, []int{r, c})
	for i := range r {
		row := mat.Row(nil, i, tw.A)
		assert.InDelta(t, 0, maths.Sum(row), 0, "支路 %d", i)
		assert.Equal(t, 2.0, countNonZero(row), "支路 %d", i)
		assert.Equal(t, -1.0, floats.Min(row))
		assert.Equal(t, 1.0, floats.Max(row))
	}

	for _, m := range []*mat.Dense{tw.R, tw.L} {
		r, c := m.Dims()
		assert.Equal(t, []int{10, 10}, []int{r, c})
	}
	for _, m := range []*mat.Dense{tw.P, tw.C} {
		r, c := m.Dims()
		assert.Equal(t, []int{15, 15}, []int{r, c})
	}
}

func countNonZero(v []float64) float64 {
	n := 0.0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

func TestBuildResistanceInductance(t *testing.T) {
	ws := tubeWires(t)
	tw := New(ws, ground, quiet)
	require.NoError(t, tw.Build(50))

	// 支路顺序: Y01, Y02_Splited_1, Y02_Splited_2, Y03, 第一段芯线, 第二段芯线
	assert.InDelta(t, 1e-3*10, tw.R.At(0, 0), 1e-15)
	assert.InDelta(t, 1e-3*10, tw.R.At(3, 3), 1e-15)
	assert.Zero(t, tw.R.At(0, 3))

	p0, err := impedance.Prepare(ws.Tube[0], 50)
	require.NoError(t, err)
	idx := []int{1, 4, 5, 6}
	for a, i := range idx {
		for b, j := range idx {
			assert.InDelta(t, p0.Rin.At(a, b)+p0.Rx.At(a, b), tw.R.At(i, j), 1e-15)
		}
	}
	// 两段套管之间没有内部电阻耦合
	assert.Zero(t, tw.R.At(4, 7))

	assert.True(t, maths.IsSymmetric(tw.L, 1e-9))
	// 芯线与外部导线的互感等于外皮的互感
	assert.Equal(t, tw.L.At(1, 0), tw.L.At(4, 0))
	assert.Equal(t, tw.L.At(1, 3), tw.L.At(6, 3))
	assert.Equal(t, tw.L.At(2, 0), tw.L.At(9, 0))

	ext := tw.L.At(4, 5) - p0.Lin.At(1, 2) - p0.Lx.At(1, 2)
	assert.InDelta(t, ext+p0.Lin.At(0, 0), tw.L.At(1, 1), 1e-15)
	assert.InDelta(t, ext+p0.Lin.At(2, 2)+p0.Lx.At(2, 2), tw.L.At(5, 5), 1e-15)
}

func TestBuildPotentialCapacitance(t *testing.T) {
	ws := tubeWires(t)
	tw := New(ws, ground, quiet)
	require.NoError(t, tw.Build(50))
	idx := nodeIndex(ws)

	ext, err := field.WithGround(ws, ground)
	require.NoError(t, err)
	for a, na := range ext.Nodes {
		for b, nb := range ext.Nodes {
			assert.Equal(t, ext.P.At(a, b), tw.P.At(idx[na.Name], idx[nb.Name]))
		}
	}
	for _, name := range []string{"X11", "Y11_MiddleNode_1", "X16"} {
		row := mat.Row(nil, idx[name], tw.P)
		assert.Zero(t, countNonZero(row), name)
	}

	// 套管链中间节点得到两段各一半，两端只得到一半
	start, mid, end := idx["X02"], idx["Y02_MiddleNode_1"], idx["X03"]
	assert.Positive(t, tw.C.At(start, start))
	assert.InEpsilon(t, 2*tw.C.At(start, start), tw.C.At(mid, mid), 1e-12)
	assert.InEpsilon(t, tw.C.At(start, start), tw.C.At(end, end), 1e-12)
	assert.Zero(t, tw.C.At(idx["X01"], idx["X01"]))
	assert.Zero(t, tw.C.At(start, end))

	p0, err := impedance.Prepare(ws.Tube[0], 50)
	require.NoError(t, err)
	cc := maths.SubMatrix(p0.Cin, maths.Range(1, 3), maths.Range(1, 3))
	total := 0.0
	for i := range 3 {
		for j := range 3 {
			total += cc.At(i, j)
		}
	}
	assert.InEpsilon(t, 0.5*10*total, tw.C.At(start, start), 1e-9)
	x11 := idx["X11"]
	assert.InEpsilon(t, 0.5*10*cc.At(0, 0), tw.C.At(x11, x11), 1e-12)
	assert.True(t, maths.IsSymmetric(tw.C, 1e-9))
}

func TestPhaseGuard(t *testing.T) {
	ws := tubeWires(t)
	tw := New(ws, ground, quiet)

	assert.ErrorIs(t, tw.AddInductance(nil), ErrPhase)
	assert.ErrorIs(t, tw.ExpandResistance(), ErrPhase)
	assert.ErrorIs(t, tw.UpdateResistanceByTubes(nil), ErrPhase)
	assert.ErrorIs(t, tw.AddPotential(nil), ErrPhase)
	assert.ErrorIs(t, tw.UpdateCapacitanceByTubes(nil), ErrPhase)

	require.NoError(t, tw.InitResistance())
	assert.Equal(t, PhaseSeeded, tw.Phase(Resistance))
	assert.ErrorIs(t, tw.InitResistance(), ErrPhase)
	assert.ErrorIs(t, tw.UpdateResistanceByTubes(nil), ErrPhase)
	require.NoError(t, tw.ExpandResistance())
	assert.ErrorIs(t, tw.UpdateResistanceByTubes(nil), maths.ErrShape)
	assert.Equal(t, PhaseExpanded, tw.Phase(Resistance))

	require.NoError(t, tw.InitInductance())
	assert.ErrorIs(t, tw.AddInductance(mat.NewDense(2, 2, nil)), maths.ErrShape)
	require.NoError(t, tw.ExpandInductance())
	assert.ErrorIs(t, tw.AddInductance(mat.NewDense(4, 4, nil)), ErrPhase)

	// 部分构建后不能直接重新构建
	assert.ErrorIs(t, tw.Build(50), ErrPhase)
	tw.Reset()
	assert.Equal(t, PhaseEmpty, tw.Phase(Resistance))
	require.NoError(t, tw.Build(50))
}

func TestRebuild(t *testing.T) {
	tw := New(tubeWires(t), ground, quiet)
	require.NoError(t, tw.Build(50))
	assert.True(t, tw.Finalized())
	r50 := mat.DenseCopyOf(tw.R)

	require.NoError(t, tw.Build(1e5))
	assert.True(t, tw.Finalized())
	assert.Equal(t, 1e5, tw.Frequency)
	// 套管内部电阻随频率变化
	assert.False(t, mat.Equal(r50, tw.R))

	// 非法频率不破坏上一次的结果
	assert.ErrorIs(t, tw.Build(0), impedance.ErrFrequency)
	assert.True(t, tw.Finalized())
	assert.Equal(t, 1e5, tw.Frequency)

	fresh := New(tubeWires(t), ground, quiet)
	require.NoError(t, fresh.Build(1e5))
	assert.True(t, mat.Equal(fresh.R, tw.R))
	assert.True(t, mat.Equal(fresh.L, tw.L))
}

func TestBuildRejectsFrequency(t *testing.T) {
	tw := New(tubeWires(t), ground, quiet)
	assert.ErrorIs(t, tw.Build(0), impedance.ErrFrequency)
	assert.Equal(t, PhaseEmpty, tw.Phase(Incidence))
}

func TestBuildWithoutTubes(t *testing.T) {
	ws := types.NewWires()
	ws.AddAir(
		types.NewWire("Y01", types.NewNode("X01", 0, 0, 10.5), types.NewNode("X02", 1000, 0, 10.5), plain),
		types.NewWire("Y02", types.NewNode("X03", 0, -0.4, 10), types.NewNode("X04", 1000, -0.4, 10), plain),
	)
	tw := New(ws, types.Ground{Model: types.GroundNone}, quiet)
	require.NoError(t, tw.Build(1e3))

	r, c := tw.R.Dims()
	assert.Equal(t, []int{2, 2}, []int{r, c})
	assert.InDelta(t, 1e-3*1000, tw.R.At(1, 1), 1e-12)
	assert.Equal(t, 0.0, mat.Sum(tw.C))
	assert.InDelta(t, 1e-7*1000+ext(t, ws).At(0, 0), tw.L.At(0, 0), 1e-15)
}

func ext(t *testing.T, ws *types.Wires) *mat.Dense {
	t.Helper()
	res, err := field.WithGround(ws, types.Ground{Model: types.GroundNone})
	require.NoError(t, err)
	return res.L
}
