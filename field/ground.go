package field

import (
	"errors"
	"fmt"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
)

// ErrSharedNode 空气导线与地面导线共用节点
var ErrSharedNode = errors.New("空气导线与地面导线共用节点")

// Result 考虑大地影响后的外部电感和电位系数
type Result struct {
	L     *mat.Dense    // 电感矩阵，行列对应 Segments
	P     *mat.Dense    // 电位系数矩阵，行列对应 Nodes
	Nodes []*types.Node // 电位系数矩阵的节点顺序
}

// hadamard 逐元素相乘
func hadamard(a, b mat.Matrix) *mat.Dense {
	r, c := maths.Dims(a)
	out := maths.NewDense(r, c)
	for i := range r {
		for j := range c {
			out.Set(i, j, a.At(i, j)*b.At(i, j))
		}
	}
	return out
}

// WithGround 计算导线集合的外部电感和电位系数矩阵
// 镜像法计算大地影响：理想大地直接减去空气导线的镜像项，有损大地按空气、地面分块修正
func WithGround(ws *types.Wires, ground types.Ground) (*Result, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	segs := ws.Segments()
	all := FromWires(segs)
	index := ws.BranchIndex()
	nodes := ws.CouplingNodes()

	nba, ngn := len(ws.Air), len(ws.Ground)
	nna, nng := ws.CountDistinctAirPoints(), ws.CountDistinctGroundPoints()
	if ground.Model == types.GroundLossy && len(ws.SharedAirGroundNodes()) > 0 {
		return nil, fmt.Errorf("有损大地模型: %w", ErrSharedNode)
	}

	// 自由空间
	lout := Inductance(all, all)
	pout, err := Potential(all, all, index, len(nodes))
	if err != nil {
		return nil, err
	}
	x, y, z := maths.DirectionCosines(all.Start, all.End)
	l0 := hadamard(lout, maths.CosineProduct(x, y, z))
	p0 := maths.Clone(pout)

	if ground.Model != types.GroundNone {
		image := all.Mirror()
		rb1, rn1 := maths.Range(0, nba), maths.Range(0, nna)

		// 空气导线与其镜像，没有空气导线时只有地面导线的修正
		var lai, pai *mat.Dense
		if nba > 0 {
			real1, image1 := all.Subset(rb1), image.Subset(rb1)
			lai = Inductance(real1, image1)
			if pai, err = Potential(real1, image1, index[:nba], nna); err != nil {
				return nil, fmt.Errorf("空气导线镜像: %w", err)
			}
		}

		switch ground.Model {
		case types.GroundPerfect:
			if nba == 0 {
				break
			}
			xa, ya, za := x[:nba], y[:nba], z[:nba]
			if err := maths.AddBlock(l0, rb1, rb1, -1, hadamard(lai, maths.CosineProduct(xa, ya, za))); err != nil {
				return nil, err
			}
			if err := maths.AddBlock(p0, rn1, rn1, -1, pai); err != nil {
				return nil, err
			}
		case types.GroundLossy:
			if err := lossy(l0, p0, lout, pout, all, image, index, z, nba, ngn, nna, nng, lai, pai); err != nil {
				return nil, err
			}
		}
	}

	if r, _ := maths.Dims(l0); r > 0 {
		l0.Scale(types.Km, l0)
	}
	if r, _ := maths.Dims(p0); r > 0 {
		p0.Scale(types.Ke, p0)
	}
	return &Result{L: l0, P: p0, Nodes: nodes}, nil
}

// lossy 有损大地四象限修正，电感和电位系数符号相反
func lossy(l0, p0, lout, pout *mat.Dense, all, image Segments, index []types.Branch, z []float64,
	nba, ngn, nna, nng int, lai, pai *mat.Dense) error {
	rb1, rb2 := maths.Range(0, nba), maths.Range(nba, ngn)
	rn1, rn2 := maths.Range(0, nna), maths.Range(nna, nng)
	za, zg := z[:nba], z[nba:nba+ngn]

	// 空气导线之间
	if nba > 0 {
		if err := maths.AddBlock(l0, rb1, rb1, 1, hadamard(lai, maths.Outer(za, za))); err != nil {
			return err
		}
		if err := maths.AddBlock(p0, rn1, rn1, -1, pai); err != nil {
			return err
		}
	}
	if nng == 0 || ngn == 0 {
		return nil
	}

	real2, image2 := all.Subset(rb2), image.Subset(rb2)
	lgi := Inductance(real2, image2)
	pgi, err := Potential(real2, image2, index[nba:nba+ngn], nng)
	if err != nil {
		return fmt.Errorf("地面导线镜像: %w", err)
	}

	type step struct {
		m          *mat.Dense
		rows, cols []int
		alpha      float64
		sub        mat.Matrix
	}
	steps := []step{
		{l0, rb2, rb2, -1, hadamard(lgi, maths.Outer(zg, zg))}, // 地面导线之间
		{p0, rn2, rn2, 1, pgi},
	}
	if nba > 0 {
		lag, lga := maths.SubMatrix(lout, rb1, rb2), maths.SubMatrix(lout, rb2, rb1)
		pag, pga := maths.SubMatrix(pout, rn1, rn2), maths.SubMatrix(pout, rn2, rn1)
		steps = append(steps,
			step{l0, rb2, rb1, 1, hadamard(lga, maths.Outer(zg, za))}, // 场在地面，源在空气
			step{p0, rn2, rn1, -1, pga},
			step{l0, rb1, rb2, -1, hadamard(lag, maths.Outer(za, zg))}, // 场在空气，源在地面
			step{p0, rn1, rn2, 1, pag},
		)
	}
	for _, s := range steps {
		if err := maths.AddBlock(s.m, s.rows, s.cols, s.alpha, s.sub); err != nil {
			return err
		}
	}
	return nil
}
