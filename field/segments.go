package field

import (
	"math"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segments 线段集合
type Segments struct {
	Start  []r3.Vec  // 起点
	End    []r3.Vec  // 终点
	Radius []float64 // 半径
}

// FromWires 由导线生成线段集合
func FromWires(list []*types.Wire) Segments {
	s := Segments{
		Start:  make([]r3.Vec, len(list)),
		End:    make([]r3.Vec, len(list)),
		Radius: make([]float64, len(list)),
	}
	for i, w := range list {
		s.Start[i], s.End[i], s.Radius[i] = w.Start.Pos, w.End.Pos, w.Radius
	}
	return s
}

// Len 线段数量
func (s Segments) Len() int { return len(s.Start) }

// Length 第 i 段长度
func (s Segments) Length(i int) float64 { return r3.Norm(r3.Sub(s.End[i], s.Start[i])) }

// Subset 按索引取子集
func (s Segments) Subset(idx []int) Segments {
	out := Segments{
		Start:  make([]r3.Vec, len(idx)),
		End:    make([]r3.Vec, len(idx)),
		Radius: make([]float64, len(idx)),
	}
	for k, i := range idx {
		out.Start[k], out.End[k], out.Radius[k] = s.Start[i], s.End[i], s.Radius[i]
	}
	return out
}

// Mirror 以地面为镜面的镜像线段
// 镜像平均高度小于半径时，两端高度取 -2.2 倍半径
func (s Segments) Mirror() Segments {
	out := s.Subset(maths.Range(0, s.Len()))
	for i := range out.Start {
		out.Start[i].Z, out.End[i].Z = -out.Start[i].Z, -out.End[i].Z
		r := out.Radius[i]
		if 0.5*math.Abs(out.Start[i].Z+out.End[i].Z) < r {
			out.Start[i].Z, out.End[i].Z = -2.2*r, -2.2*r
		}
	}
	return out
}
