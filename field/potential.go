package field

import (
	"errors"
	"fmt"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNodeRange 支路节点编号超出范围
var ErrNodeRange = errors.New("节点编号超出范围")

// ErrNodePartition 节点没有相连的导线段
var ErrNodePartition = errors.New("节点没有相连的导线段")

// Potential 电位系数矩阵
// 每条线段在中点分为两个半段，节点的电位系数为与其相连的所有半段之和，再按相连总长度归一化。
// index 为每条源线段的起止节点编号，编号须覆盖从最小编号开始的连续 nodeCount 个节点
func Potential(src, fld Segments, index []types.Branch, nodeCount int) (*mat.Dense, error) {
	if len(index) != src.Len() || fld.Len() != src.Len() {
		return nil, fmt.Errorf("支路编号 %d, 源线段 %d, 场线段 %d: %w", len(index), src.Len(), fld.Len(), maths.ErrShape)
	}
	if nodeCount == 0 {
		return maths.NewDense(0, 0), nil
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("%d 个节点没有线段: %w", nodeCount, ErrNodePartition)
	}
	base := index[0].Start
	for _, b := range index {
		base = min(base, b.Start, b.End)
	}
	for i, b := range index {
		if b.Start-base >= nodeCount || b.End-base >= nodeCount {
			return nil, fmt.Errorf("支路 %d (%d,%d), 起始编号 %d, 节点数 %d: %w", i, b.Start, b.End, base, nodeCount, ErrNodeRange)
		}
	}

	// 按节点编号顺序收集半段：先是以该节点为起点的前半段，再是以该节点为终点的后半段
	n := 2 * src.Len()
	hs := Segments{Start: make([]r3.Vec, 0, n), End: make([]r3.Vec, 0, n), Radius: make([]float64, 0, n)}
	hf := Segments{Start: make([]r3.Vec, 0, n), End: make([]r3.Vec, 0, n), Radius: make([]float64, 0, n)}
	var ls, lf []float64
	count := make([]int, nodeCount)
	add := func(j int, first bool) {
		ms := r3.Scale(0.5, r3.Add(src.Start[j], src.End[j]))
		mf := r3.Scale(0.5, r3.Add(fld.Start[j], fld.End[j]))
		if first {
			hs.Start, hs.End = append(hs.Start, src.Start[j]), append(hs.End, ms)
			hf.Start, hf.End = append(hf.Start, fld.Start[j]), append(hf.End, mf)
		} else {
			hs.Start, hs.End = append(hs.Start, ms), append(hs.End, src.End[j])
			hf.Start, hf.End = append(hf.Start, mf), append(hf.End, fld.End[j])
		}
		hs.Radius = append(hs.Radius, src.Radius[j])
		hf.Radius = append(hf.Radius, fld.Radius[j])
		ls = append(ls, src.Length(j)/2)
		lf = append(lf, fld.Length(j)/2)
	}
	for k := range nodeCount {
		id := base + k
		for j, b := range index {
			if b.Start == id {
				add(j, true)
				count[k]++
			}
		}
		for j, b := range index {
			if b.End == id {
				add(j, false)
				count[k]++
			}
		}
		if count[k] == 0 {
			return nil, fmt.Errorf("节点编号 %d: %w", id, ErrNodePartition)
		}
	}

	integral := Kernel(hs, hf, ModePotential)

	// 合并同一节点的行列
	ofs := make([]int, nodeCount+1)
	nls := make([]float64, nodeCount)
	nlf := make([]float64, nodeCount)
	for k := range nodeCount {
		ofs[k+1] = ofs[k] + count[k]
		for h := ofs[k]; h < ofs[k+1]; h++ {
			nls[k] += ls[h]
			nlf[k] += lf[h]
		}
	}
	out := mat.NewDense(nodeCount, nodeCount, nil)
	for a := range nodeCount {
		for b := range nodeCount {
			s := 0.0
			for r := ofs[a]; r < ofs[a+1]; r++ {
				for c := ofs[b]; c < ofs[b+1]; c++ {
					s += integral.At(r, c)
				}
			}
			out.Set(a, b, s/(nls[a]*nlf[b]))
		}
	}
	return out, nil
}
