package types

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrZeroLength 导线长度为零
var ErrZeroLength = errors.New("导线长度为零")

// ErrRadius 导线半径不为正
var ErrRadius = errors.New("导线半径必须为正")

// ErrWireType 导线类型不匹配
var ErrWireType = errors.New("导线类型错误")

// VF 矢量拟合参数，核心计算不使用，原样传递
type VF struct {
	Order       int       `yaml:"odc" json:"odc"` // 拟合阶数
	Frequencies []float64 `yaml:"frq" json:"frq"` // 拟合采样频率
}

// WireParam 导线电气参数
type WireParam struct {
	Offset float64 // 偏移
	Radius float64 // 外半径
	R      float64 // 单位长度电阻
	L      float64 // 单位长度电感
	Sigma  float64 // 电导率
	Mur    float64 // 相对磁导率
	Epr    float64 // 相对介电常数
	VF     VF      // 矢量拟合参数
}

// CoreGeometry 芯线在套管内的位置
type CoreGeometry struct {
	InnerOffset float64 // 距套管轴线的距离
	InnerAngle  float64 // 角度(度)
}

// Wire 导线段
type Wire struct {
	WireParam
	Type  WireType     // 导线类型
	Name  string       // 名称
	Start *Node        // 起点
	End   *Node        // 终点
	Core  CoreGeometry // 芯线位置，仅 WireCore 有效
}

// NewWire 创建普通导线
func NewWire(name string, start, end *Node, param WireParam) *Wire {
	return &Wire{WireParam: param, Type: WirePlain, Name: name, Start: start, End: end}
}

// NewCoreWire 创建芯线
func NewCoreWire(name string, start, end *Node, param WireParam, core CoreGeometry) *Wire {
	return &Wire{WireParam: param, Type: WireCore, Name: name, Start: start, End: end, Core: core}
}

// Length 导线长度
func (w *Wire) Length() float64 { return r3.Norm(r3.Sub(w.End.Pos, w.Start.Pos)) }

// Height 两端平均高度
func (w *Wire) Height() float64 { return (w.Start.Pos.Z + w.End.Pos.Z) / 2 }

// Vector 起点指向终点的向量
func (w *Wire) Vector() r3.Vec { return r3.Sub(w.End.Pos, w.Start.Pos) }

// ID 名称末尾的数字编号
func (w *Wire) ID() int { return trailingID(w.Name) }

// IsCore 是否为芯线
func (w *Wire) IsCore() bool { return w.Type == WireCore }

// Validate 检查导线几何
func (w *Wire) Validate() error {
	if w.Start == nil || w.End == nil {
		return fmt.Errorf("导线 %s 缺少端点", w.Name)
	}
	if l := w.Length(); l == 0 || math.IsNaN(l) {
		return fmt.Errorf("导线 %s: %w", w.Name, ErrZeroLength)
	}
	if !(w.Radius > 0) {
		return fmt.Errorf("导线 %s 半径 %g: %w", w.Name, w.Radius, ErrRadius)
	}
	return nil
}

// slice 复制电气参数生成新的导线段
func (w *Wire) slice(name string, start, end *Node) *Wire {
	c := *w
	c.Name, c.Start, c.End = name, start, end
	return &c
}

func (w *Wire) String() string {
	return fmt.Sprintf("%s[%s](%s -> %s)", w.Name, w.Type, w.Start.Name, w.End.Name)
}
