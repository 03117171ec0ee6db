package tower

import (
	"errors"
	"fmt"
	"log/slog"

	"tower/field"
	"tower/impedance"
	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
)

// ErrPhase 矩阵构建步骤顺序错误
var ErrPhase = errors.New("矩阵构建步骤顺序错误")

// Matrix 杆塔参数矩阵编号
type Matrix int

const (
	Incidence   Matrix = iota // 关联矩阵 A
	Resistance                // 电阻矩阵 R
	Inductance                // 电感矩阵 L
	Potential                 // 电位系数矩阵 P
	Capacitance               // 电容矩阵 C
	matrixCount
)

func (m Matrix) String() string {
	switch m {
	case Incidence:
		return "A"
	case Resistance:
		return "R"
	case Inductance:
		return "L"
	case Potential:
		return "P"
	case Capacitance:
		return "C"
	}
	return fmt.Sprintf("Matrix(%d)", int(m))
}

// Phase 矩阵构建阶段
type Phase int

const (
	PhaseEmpty     Phase = iota // 未初始化
	PhaseSeeded                 // 已初始化
	PhaseExpanded               // 已扩展芯线行列
	PhaseFinalized              // 已完成
)

func (p Phase) String() string {
	return [...]string{"Empty", "Seeded", "Expanded", "Finalized"}[p]
}

// Tower 杆塔
type Tower struct {
	Name      string
	Wires     *types.Wires
	Ground    types.Ground
	Frequency float64 // 最近一次构建使用的频率

	A *mat.Dense // 支路 × 节点
	R *mat.Dense // 支路 × 支路
	L *mat.Dense // 支路 × 支路
	P *mat.Dense // 节点 × 节点
	C *mat.Dense // 节点 × 节点

	phase  [matrixCount]Phase
	logger *slog.Logger
}

// Option 杆塔配置
type Option func(*Tower)

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(t *Tower) { t.logger = l }
}

// WithName 设置名称
func WithName(name string) Option {
	return func(t *Tower) { t.Name = name }
}

// New 创建杆塔，矩阵在各自的初始化步骤中创建
func New(wires *types.Wires, ground types.Ground, opts ...Option) *Tower {
	t := &Tower{Wires: wires, Ground: ground, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// Reset 清空全部矩阵
func (t *Tower) Reset() {
	t.A, t.R, t.L, t.P, t.C = &mat.Dense{}, &mat.Dense{}, &mat.Dense{}, &mat.Dense{}, &mat.Dense{}
	t.phase = [matrixCount]Phase{}
}

// Phase 矩阵当前阶段
func (t *Tower) Phase(m Matrix) Phase { return t.phase[m] }

// Matrix 按编号取矩阵
func (t *Tower) Matrix(m Matrix) *mat.Dense {
	return [...]*mat.Dense{t.A, t.R, t.L, t.P, t.C}[m]
}

func (t *Tower) require(m Matrix, want Phase, step string) error {
	if got := t.phase[m]; got != want {
		return fmt.Errorf("%s: %s 矩阵处于 %s 阶段, 需要 %s: %w", step, m, got, want, ErrPhase)
	}
	return nil
}

func (t *Tower) done(m Matrix, p Phase, step string) {
	t.phase[m] = p
	r, c := maths.Dims(t.Matrix(m))
	t.logger.Debug("矩阵构建步骤完成", "tower", t.Name, "step", step, "matrix", m.String(), "rows", r, "cols", c)
}

// tubeIndex 每个套管在支路编号中的位置，外皮在前，芯线按套管顺序追加在场耦合导线段之后
func (t *Tower) tubeIndex() ([][]int, error) {
	seg := t.Wires.SegmentIndex()
	next := len(seg)
	out := make([][]int, len(t.Wires.Tube))
	for k, tube := range t.Wires.Tube {
		i, ok := seg[tube.Sheath]
		if !ok {
			return nil, fmt.Errorf("套管 %s: %w", tube.Sheath.Name, types.ErrTubeSheath)
		}
		if len(tube.Cores) != tube.InnerNum {
			return nil, fmt.Errorf("套管 %s 芯线数量 %d, 容量 %d: %w", tube.Sheath.Name, len(tube.Cores), tube.InnerNum, maths.ErrShape)
		}
		idx := append([]int{i}, maths.Range(next, tube.InnerNum)...)
		next += tube.InnerNum
		out[k] = idx
	}
	return out, nil
}

func (t *Tower) checkParams(params []*impedance.TubeParameters) error {
	if len(params) != len(t.Wires.Tube) {
		return fmt.Errorf("套管参数 %d 组, 套管 %d 个: %w", len(params), len(t.Wires.Tube), maths.ErrShape)
	}
	for k, p := range params {
		if n := t.Wires.Tube[k].InnerNum + 1; p == nil || p.Size() != n {
			return fmt.Errorf("套管 %s 参数维度应为 %d: %w", t.Wires.Tube[k].Sheath.Name, n, maths.ErrShape)
		}
	}
	return nil
}

// diagonal 按单位长度参数和长度生成场耦合导线段的对角矩阵
func (t *Tower) diagonal(per func(*types.Wire) float64) *mat.Dense {
	segs := t.Wires.Segments()
	m := maths.NewDense(len(segs), len(segs))
	for i, w := range segs {
		m.Set(i, i, per(w)*w.Length())
	}
	return m
}

// BuildIncidence 关联矩阵，每条支路起点为 -1，终点为 1
func (t *Tower) BuildIncidence() error {
	const step = "BuildIncidence"
	if err := t.require(Incidence, PhaseEmpty, step); err != nil {
		return err
	}
	if _, err := t.tubeIndex(); err != nil {
		return err
	}
	branches := t.Wires.Branches()
	index := t.Wires.NodeIndex()
	a := maths.NewDense(len(branches), len(index))
	for i, w := range branches {
		a.Set(i, index[w.Start], -1)
		a.Set(i, index[w.End], 1)
	}
	t.A = a
	t.done(Incidence, PhaseFinalized, step)
	return nil
}

// InitResistance 电阻矩阵对角元为单位长度电阻乘以长度
func (t *Tower) InitResistance() error {
	const step = "InitResistance"
	if err := t.require(Resistance, PhaseEmpty, step); err != nil {
		return err
	}
	t.R = t.diagonal(func(w *types.Wire) float64 { return w.R })
	t.done(Resistance, PhaseSeeded, step)
	return nil
}

// ExpandResistance 为芯线预留零行列
func (t *Tower) ExpandResistance() error {
	const step = "ExpandResistance"
	if err := t.require(Resistance, PhaseSeeded, step); err != nil {
		return err
	}
	n := t.Wires.Count() - len(t.Wires.Segments())
	t.R = maths.BlockDiag(t.R, maths.NewDense(n, n))
	t.done(Resistance, PhaseExpanded, step)
	return nil
}

// UpdateResistanceByTubes 写入套管内部电阻 Rin+Rx
func (t *Tower) UpdateResistanceByTubes(params []*impedance.TubeParameters) error {
	const step = "UpdateResistanceByTubes"
	if err := t.require(Resistance, PhaseExpanded, step); err != nil {
		return err
	}
	if err := t.checkParams(params); err != nil {
		return err
	}
	index, err := t.tubeIndex()
	if err != nil {
		return err
	}
	for k, idx := range index {
		var sub mat.Dense
		sub.Add(params[k].Rin, params[k].Rx)
		if err := maths.UpdateMatrix(t.R, idx, &sub); err != nil {
			return fmt.Errorf("套管 %s: %w", t.Wires.Tube[k].Sheath.Name, err)
		}
	}
	t.done(Resistance, PhaseFinalized, step)
	return nil
}

// InitInductance 电感矩阵对角元为单位长度电感乘以长度
func (t *Tower) InitInductance() error {
	const step = "InitInductance"
	if err := t.require(Inductance, PhaseEmpty, step); err != nil {
		return err
	}
	t.L = t.diagonal(func(w *types.Wire) float64 { return w.L })
	t.done(Inductance, PhaseSeeded, step)
	return nil
}

// AddInductance 累加外部电感矩阵
func (t *Tower) AddInductance(l mat.Matrix) error {
	const step = "AddInductance"
	if err := t.require(Inductance, PhaseSeeded, step); err != nil {
		return err
	}
	n := len(t.Wires.Segments())
	if err := maths.AddBlock(t.L, maths.Range(0, n), maths.Range(0, n), 1, l); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	t.done(Inductance, PhaseSeeded, step)
	return nil
}

// ExpandInductance 芯线与外皮外部位置相同，复制外皮行列作为芯线的外部互感
func (t *Tower) ExpandInductance() error {
	const step = "ExpandInductance"
	if err := t.require(Inductance, PhaseSeeded, step); err != nil {
		return err
	}
	index, err := t.tubeIndex()
	if err != nil {
		return err
	}
	l := t.L
	for k, idx := range index {
		n, _ := maths.Dims(l)
		l = maths.ExpandMatrix(l, idx[0], n, t.Wires.Tube[k].InnerNum)
	}
	t.L = l
	t.done(Inductance, PhaseExpanded, step)
	return nil
}

// UpdateInductanceByTubes 写入套管内部电感
// 套管块内每个元素取外皮外部自感，再叠加 Lin 和 Lx
func (t *Tower) UpdateInductanceByTubes(params []*impedance.TubeParameters) error {
	const step = "UpdateInductanceByTubes"
	if err := t.require(Inductance, PhaseExpanded, step); err != nil {
		return err
	}
	if err := t.checkParams(params); err != nil {
		return err
	}
	index, err := t.tubeIndex()
	if err != nil {
		return err
	}
	for k, idx := range index {
		n := len(idx)
		sheath := t.L.At(idx[len(idx)-1], idx[0])
		sub := mat.NewDense(n, n, nil)
		for i := range n {
			for j := range n {
				sub.Set(i, j, sheath+params[k].Lin.At(i, j)+params[k].Lx.At(i, j))
			}
		}
		if err := maths.UpdateMatrix(t.L, idx, sub); err != nil {
			return fmt.Errorf("套管 %s: %w", t.Wires.Tube[k].Sheath.Name, err)
		}
	}
	t.done(Inductance, PhaseFinalized, step)
	return nil
}

// InitPotential 电位系数矩阵置零，维度为全部节点数
func (t *Tower) InitPotential() error {
	const step = "InitPotential"
	if err := t.require(Potential, PhaseEmpty, step); err != nil {
		return err
	}
	n := t.Wires.CountDistinctPoints()
	t.P = maths.NewDense(n, n)
	t.done(Potential, PhaseSeeded, step)
	return nil
}

// AddPotential 按节点累加外部电位系数矩阵
func (t *Tower) AddPotential(res *field.Result) error {
	const step = "AddPotential"
	if err := t.require(Potential, PhaseSeeded, step); err != nil {
		return err
	}
	index := t.Wires.NodeIndex()
	idx := make([]int, len(res.Nodes))
	for i, n := range res.Nodes {
		j, ok := index[n]
		if !ok {
			return fmt.Errorf("%s: 节点 %s 不在杆塔中: %w", step, n, maths.ErrShape)
		}
		idx[i] = j
	}
	if err := maths.AddBlock(t.P, idx, idx, 1, res.P); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	t.done(Potential, PhaseFinalized, step)
	return nil
}

// InitCapacitance 电容矩阵置零，维度为全部节点数
func (t *Tower) InitCapacitance() error {
	const step = "InitCapacitance"
	if err := t.require(Capacitance, PhaseEmpty, step); err != nil {
		return err
	}
	n := t.Wires.CountDistinctPoints()
	t.C = maths.NewDense(n, n)
	t.done(Capacitance, PhaseSeeded, step)
	return nil
}

// UpdateCapacitanceByTubes 写入芯线电容
// 芯线电容转换为节点电容后乘以长度，两端各计一半，套管链两端只得到一半
// 外皮对地电容已由电位系数矩阵表示
func (t *Tower) UpdateCapacitanceByTubes(params []*impedance.TubeParameters) error {
	const step = "UpdateCapacitanceByTubes"
	if err := t.require(Capacitance, PhaseSeeded, step); err != nil {
		return err
	}
	if err := t.checkParams(params); err != nil {
		return err
	}
	index := t.Wires.NodeIndex()
	for k, tube := range t.Wires.Tube {
		n := tube.InnerNum
		cc := maths.SubMatrix(params[k].Cin, maths.Range(1, n), maths.Range(1, n))
		nodal := maths.UpdateAndSum(maths.BlockDiag(maths.Scalar(0), cc))
		start, end := make([]int, 0, n+1), make([]int, 0, n+1)
		for _, w := range tube.Wires() {
			start = append(start, index[w.Start])
			end = append(end, index[w.End])
		}
		half := 0.5 * tube.Length()
		if err := maths.AddBlock(t.C, start, start, half, nodal); err != nil {
			return fmt.Errorf("套管 %s: %w", tube.Sheath.Name, err)
		}
		if err := maths.AddBlock(t.C, end, end, half, nodal); err != nil {
			return fmt.Errorf("套管 %s: %w", tube.Sheath.Name, err)
		}
	}
	t.done(Capacitance, PhaseFinalized, step)
	return nil
}

// Finalized 全部矩阵均已构建完成
func (t *Tower) Finalized() bool {
	for _, p := range t.phase {
		if p != PhaseFinalized {
			return false
		}
	}
	return true
}

// Build 在给定频率下按顺序构建全部矩阵
// 已完成构建的杆塔在新的结果计算成功后重新构建，部分构建的杆塔需先 Reset
func (t *Tower) Build(frequency float64) error {
	log := t.logger.With("tower", t.Name, "frequency", frequency)
	log.Info("开始构建杆塔参数矩阵", "branches", t.Wires.Count(), "nodes", t.Wires.CountDistinctPoints(), "cores", t.Wires.CountCores())
	if err := t.Wires.Validate(); err != nil {
		return err
	}
	if err := impedance.ValidateFrequency(frequency); err != nil {
		return err
	}

	params := make([]*impedance.TubeParameters, len(t.Wires.Tube))
	for k, tube := range t.Wires.Tube {
		p, err := impedance.Prepare(tube, frequency)
		if err != nil {
			return fmt.Errorf("套管 %s: %w", tube.Sheath.Name, err)
		}
		params[k] = p
	}

	ext, err := field.WithGround(t.Wires, t.Ground)
	if err != nil {
		return err
	}
	log.Debug("外部电感和电位系数计算完成", "ground", t.Ground.Model.String())
	if t.Finalized() {
		t.Reset()
	}

	steps := []struct {
		m   Matrix
		run func() error
	}{
		{Incidence, t.BuildIncidence},
		{Resistance, t.InitResistance},
		{Resistance, t.ExpandResistance},
		{Resistance, func() error { return t.UpdateResistanceByTubes(params) }},
		{Inductance, t.InitInductance},
		{Inductance, func() error { return t.AddInductance(ext.L) }},
		{Inductance, t.ExpandInductance},
		{Inductance, func() error { return t.UpdateInductanceByTubes(params) }},
		{Potential, t.InitPotential},
		{Potential, func() error { return t.AddPotential(ext) }},
		{Capacitance, t.InitCapacitance},
		{Capacitance, func() error { return t.UpdateCapacitanceByTubes(params) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return err
		}
		if t.phase[s.m] == PhaseFinalized {
			r, c := maths.Dims(t.Matrix(s.m))
			log.Info("矩阵构建完成", "matrix", s.m.String(), "rows", r, "cols", c)
		}
	}
	t.Frequency = frequency
	return nil
}
