package types

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// splitCount 分段数量
func splitCount(length, maxLength float64) int {
	if length <= maxLength {
		return 1
	}
	return int(math.Ceil(length/maxLength - SplitEpsilon))
}

// splitWire 将导线均分为 num 段
// 中间节点由端点线性插值生成，首段起点和末段终点保留原节点
func splitWire(w *Wire, num int) []*Wire {
	if num <= 1 {
		return []*Wire{w}
	}
	d := w.Vector()
	nodes := make([]*Node, num+1)
	nodes[0], nodes[num] = w.Start, w.End
	for k := 1; k < num; k++ {
		pos := r3.Add(w.Start.Pos, r3.Scale(float64(k)/float64(num), d))
		nodes[k] = &Node{Name: fmt.Sprintf("%s_MiddleNode_%d", w.Name, k), Pos: pos}
	}
	out := make([]*Wire, num)
	for k := range num {
		out[k] = w.slice(fmt.Sprintf("%s_Splited_%d", w.Name, k+1), nodes[k], nodes[k+1])
	}
	return out
}

func checkSplit(w *Wire, maxLength float64) error {
	if maxLength <= 0 {
		return fmt.Errorf("最大分段长度必须为正数: %g", maxLength)
	}
	return w.Validate()
}

// SplitWires 切分超过最大长度的导线，未超过的导线原样保留
func SplitWires(list []*Wire, maxLength float64) ([]*Wire, error) {
	out := make([]*Wire, 0, len(list))
	for _, w := range list {
		if err := checkSplit(w, maxLength); err != nil {
			return nil, err
		}
		out = append(out, splitWire(w, splitCount(w.Length(), maxLength))...)
	}
	return out, nil
}

// SplitTubeWire 按外皮长度切分套管，外皮和每根芯线使用相同的分段位置
func SplitTubeWire(t *TubeWire, maxLength float64) ([]*TubeWire, error) {
	for _, w := range t.Wires() {
		if err := checkSplit(w, maxLength); err != nil {
			return nil, err
		}
	}
	num := splitCount(t.Sheath.Length(), maxLength)
	if num <= 1 {
		return []*TubeWire{t}, nil
	}
	sheaths := splitWire(t.Sheath, num)
	cores := make([][]*Wire, len(t.Cores))
	for i, c := range t.Cores {
		cores[i] = splitWire(c, num)
	}
	out := make([]*TubeWire, num)
	for k := range num {
		tube := NewTubeWire(sheaths[k], t.InnerRadius, t.OuterRadius, t.InnerNum)
		for i := range t.Cores {
			if err := tube.AddCoreWire(cores[i][k]); err != nil {
				return nil, err
			}
		}
		out[k] = tube
	}
	return out, nil
}

// SplitLongWires 切分全部导线
// 空气列表中的套管外皮替换为套管切分后的外皮链，使两处共享同一组节点
func (ws *Wires) SplitLongWires(maxLength float64) error {
	sheathChain := make(map[*Wire][]*Wire)
	tubes := make([]*TubeWire, 0, len(ws.Tube))
	for _, t := range ws.Tube {
		parts, err := SplitTubeWire(t, maxLength)
		if err != nil {
			return err
		}
		chain := make([]*Wire, len(parts))
		for i, p := range parts {
			chain[i] = p.Sheath
		}
		sheathChain[t.Sheath] = chain
		tubes = append(tubes, parts...)
	}
	air := make([]*Wire, 0, len(ws.Air))
	for _, w := range ws.Air {
		if chain, ok := sheathChain[w]; ok {
			air = append(air, chain...)
			continue
		}
		parts, err := SplitWires([]*Wire{w}, maxLength)
		if err != nil {
			return err
		}
		air = append(air, parts...)
	}
	ground, err := SplitWires(ws.Ground, maxLength)
	if err != nil {
		return err
	}
	a2g, err := SplitWires(ws.A2G, maxLength)
	if err != nil {
		return err
	}
	short, err := SplitWires(ws.Short, maxLength)
	if err != nil {
		return err
	}
	ws.Air, ws.Ground, ws.A2G, ws.Short, ws.Tube = air, ground, a2g, short, tubes
	return nil
}
