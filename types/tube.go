package types

import (
	"errors"
	"fmt"
)

// ErrCapacity 芯线数量超出套管容量
var ErrCapacity = errors.New("芯线数量超出套管容量")

// ErrTubeGeometry 套管半径不满足 0 < 内半径 < 外皮半径 <= 整体外半径
var ErrTubeGeometry = errors.New("套管半径关系错误")

// TubeWire 套管，由一根外皮导线和固定容量的芯线组成
type TubeWire struct {
	Sheath      *Wire   // 外皮
	Cores       []*Wire // 芯线
	InnerNum    int     // 芯线容量
	InnerRadius float64 // 外皮内半径
	OuterRadius float64 // 套管整体外半径
}

// NewTubeWire 创建套管
func NewTubeWire(sheath *Wire, innerRadius, outerRadius float64, innerNum int) *TubeWire {
	return &TubeWire{
		Sheath:      sheath,
		Cores:       make([]*Wire, 0, innerNum),
		InnerNum:    innerNum,
		InnerRadius: innerRadius,
		OuterRadius: outerRadius,
	}
}

// AddCoreWire 添加芯线
func (t *TubeWire) AddCoreWire(w *Wire) error {
	if !w.IsCore() {
		return fmt.Errorf("套管 %s 添加 %s: %w", t.Sheath.Name, w, ErrWireType)
	}
	if len(t.Cores) >= t.InnerNum {
		return fmt.Errorf("套管 %s 容量 %d: %w", t.Sheath.Name, t.InnerNum, ErrCapacity)
	}
	t.Cores = append(t.Cores, w)
	return nil
}

// Wires 外皮和全部芯线
func (t *TubeWire) Wires() []*Wire {
	return append([]*Wire{t.Sheath}, t.Cores...)
}

// Nodes 外皮端点及每根芯线的端点
func (t *TubeWire) Nodes() []*Node {
	list := make([]*Node, 0, 2*(len(t.Cores)+1))
	for _, w := range t.Wires() {
		list = append(list, w.Start, w.End)
	}
	return list
}

// Length 套管长度
func (t *TubeWire) Length() float64 { return t.Sheath.Length() }

// Validate 检查套管半径关系
func (t *TubeWire) Validate() error {
	r := t.Sheath.Radius
	if !(t.InnerRadius > 0 && t.InnerRadius < r && r <= t.OuterRadius) {
		return fmt.Errorf("套管 %s 内半径 %g, 外皮半径 %g, 整体外半径 %g: %w",
			t.Sheath.Name, t.InnerRadius, r, t.OuterRadius, ErrTubeGeometry)
	}
	return nil
}
