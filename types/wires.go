package types

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrTubeSheath 套管外皮未加入空气导线列表
var ErrTubeSheath = errors.New("套管外皮不在空气导线列表中")

// Wires 导线集合
// 各列表的顺序决定了所有派生数组及矩阵的行列编号
type Wires struct {
	Air    []*Wire     // 空气中导线(含套管外皮)
	Ground []*Wire     // 地面导线
	A2G    []*Wire     // 空气-地面过渡导线
	Short  []*Wire     // 短接导线
	Tube   []*TubeWire // 套管
}

// NewWires 创建空导线集合
func NewWires() *Wires { return &Wires{} }

func (ws *Wires) AddAir(w ...*Wire)      { ws.Air = append(ws.Air, w...) }
func (ws *Wires) AddGround(w ...*Wire)   { ws.Ground = append(ws.Ground, w...) }
func (ws *Wires) AddA2G(w ...*Wire)      { ws.A2G = append(ws.A2G, w...) }
func (ws *Wires) AddShort(w ...*Wire)    { ws.Short = append(ws.Short, w...) }
func (ws *Wires) AddTube(t ...*TubeWire) { ws.Tube = append(ws.Tube, t...) }

// Segments 参与场耦合计算的导线段，顺序为 空气->地面->过渡->短接
// 套管外皮已在空气列表中，芯线与外皮外部位置相同，不再重复
func (ws *Wires) Segments() []*Wire {
	list := make([]*Wire, 0, len(ws.Air)+len(ws.Ground)+len(ws.A2G)+len(ws.Short))
	list = append(list, ws.Air...)
	list = append(list, ws.Ground...)
	list = append(list, ws.A2G...)
	return append(list, ws.Short...)
}

// Branches 全部支路，场耦合导线段之后依次为每个套管的芯线
func (ws *Wires) Branches() []*Wire {
	list := ws.Segments()
	for _, t := range ws.Tube {
		list = append(list, t.Cores...)
	}
	return list
}

// SegmentIndex 导线段在 Segments 中的位置
func (ws *Wires) SegmentIndex() map[*Wire]int {
	idx := make(map[*Wire]int)
	for i, w := range ws.Segments() {
		idx[w] = i
	}
	return idx
}

// StartPoints 起点坐标
func (ws *Wires) StartPoints() []r3.Vec {
	return collect(ws.Segments(), func(w *Wire) r3.Vec { return w.Start.Pos })
}

// EndPoints 终点坐标
func (ws *Wires) EndPoints() []r3.Vec {
	return collect(ws.Segments(), func(w *Wire) r3.Vec { return w.End.Pos })
}

// Radii 半径
func (ws *Wires) Radii() []float64 {
	return collect(ws.Segments(), func(w *Wire) float64 { return w.Radius })
}

// Lengths 长度
func (ws *Wires) Lengths() []float64 {
	return collect(ws.Segments(), (*Wire).Length)
}

// Offsets 偏移
func (ws *Wires) Offsets() []float64 {
	return collect(ws.Segments(), func(w *Wire) float64 { return w.Offset })
}

// Heights 平均高度
func (ws *Wires) Heights() []float64 {
	return collect(ws.Segments(), (*Wire).Height)
}

func collect[T any](list []*Wire, f func(*Wire) T) []T {
	out := make([]T, len(list))
	for i, w := range list {
		out[i] = f(w)
	}
	return out
}

// CouplingNodes 场耦合导线段的节点，按首次出现顺序去重
func (ws *Wires) CouplingNodes() []*Node {
	s := newNodeSet()
	s.addWires(ws.Segments())
	return s.list
}

// AllNodes 全部节点，顺序为 空气->地面->套管->过渡->短接，按首次出现顺序去重
// 套管贡献外皮端点及每根芯线的端点
func (ws *Wires) AllNodes() []*Node {
	s := newNodeSet()
	s.addWires(ws.Air)
	s.addWires(ws.Ground)
	for _, t := range ws.Tube {
		s.Add(t.Nodes()...)
	}
	s.addWires(ws.A2G)
	s.addWires(ws.Short)
	return s.list
}

// NodeIndex 节点在 AllNodes 中的位置
func (ws *Wires) NodeIndex() map[*Node]int {
	idx := make(map[*Node]int)
	for i, n := range ws.AllNodes() {
		idx[n] = i
	}
	return idx
}

// CountDistinctAirPoints 空气导线的不同节点数量
func (ws *Wires) CountDistinctAirPoints() int {
	s := newNodeSet()
	s.addWires(ws.Air)
	return len(s.list)
}

// CountDistinctGroundPoints 地面导线的不同节点数量
func (ws *Wires) CountDistinctGroundPoints() int {
	s := newNodeSet()
	s.addWires(ws.Ground)
	return len(s.list)
}

// CountDistinctPoints 全部不同节点数量
func (ws *Wires) CountDistinctPoints() int { return len(ws.AllNodes()) }

// Count 电气上独立的导线数量，外皮只在空气列表中计一次，芯线按容量计
func (ws *Wires) Count() int {
	n := len(ws.Air) + len(ws.Ground) + len(ws.A2G) + len(ws.Short)
	for _, t := range ws.Tube {
		n += t.InnerNum
	}
	return n
}

// CountCores 全部芯线数量
func (ws *Wires) CountCores() int {
	n := 0
	for _, t := range ws.Tube {
		n += len(t.Cores)
	}
	return n
}

// Branch 支路编号
type Branch struct {
	Segment int // 导线名称末尾编号
	Start   int // 起点编号
	End     int // 终点编号
}

// BranchIndex 场耦合导线段的支路编号
// 节点编号为节点在 CouplingNodes 中从1开始的位置，分段产生的中间节点名称末尾数字会重复，不能作为编号
func (ws *Wires) BranchIndex() []Branch {
	s := newNodeSet()
	segs := ws.Segments()
	s.addWires(segs)
	out := make([]Branch, len(segs))
	for i, w := range segs {
		out[i] = Branch{Segment: w.ID(), Start: s.index[w.Start] + 1, End: s.index[w.End] + 1}
	}
	return out
}

// NodeNames 全部节点名称
func (ws *Wires) NodeNames() []string {
	nodes := ws.AllNodes()
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

// NodeCoordinates 全部节点坐标
func (ws *Wires) NodeCoordinates() []r3.Vec {
	nodes := ws.AllNodes()
	pos := make([]r3.Vec, len(nodes))
	for i, n := range nodes {
		pos[i] = n.Pos
	}
	return pos
}

// NodePosition 按名称查找节点坐标
func (ws *Wires) NodePosition(name string) (r3.Vec, bool) {
	for _, n := range ws.AllNodes() {
		if n.Name == name {
			return n.Pos, true
		}
	}
	return r3.Vec{}, false
}

// BranchCoordinates 支路名称及起止节点名称
func (ws *Wires) BranchCoordinates() [][3]string {
	list := ws.Branches()
	out := make([][3]string, len(list))
	for i, w := range list {
		out[i] = [3]string{w.Name, w.Start.Name, w.End.Name}
	}
	return out
}

// Validate 检查导线集合
func (ws *Wires) Validate() error {
	for _, w := range ws.Branches() {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	idx := ws.SegmentIndex()
	for _, t := range ws.Tube {
		if _, ok := idx[t.Sheath]; !ok {
			return fmt.Errorf("套管 %s: %w", t.Sheath.Name, ErrTubeSheath)
		}
		if err := t.Validate(); err != nil {
			return err
		}
		if len(t.Cores) != t.InnerNum {
			return fmt.Errorf("套管 %s 芯线数量 %d, 容量 %d", t.Sheath.Name, len(t.Cores), t.InnerNum)
		}
	}
	return nil
}

// SharedAirGroundNodes 同时属于空气导线和地面导线的节点
func (ws *Wires) SharedAirGroundNodes() []*Node {
	air := newNodeSet()
	air.addWires(ws.Air)
	var shared []*Node
	seen := make(map[*Node]bool)
	for _, w := range ws.Ground {
		for _, n := range []*Node{w.Start, w.End} {
			if _, ok := air.index[n]; ok && !seen[n] {
				seen[n] = true
				shared = append(shared, n)
			}
		}
	}
	return shared
}
