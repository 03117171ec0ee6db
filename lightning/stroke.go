package lightning

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrStrokeType 不支持的脉冲类型
	ErrStrokeType = errors.New("脉冲类型必须为 CIGRE 或 Heidler")
	// ErrParameterSet 不存在的参数集
	ErrParameterSet = errors.New("脉冲参数集不存在")
	// ErrParameters 参数数量错误
	ErrParameters = errors.New("脉冲参数数量错误")
)

// StrokeType 脉冲类型
type StrokeType int

const (
	CIGRE StrokeType = iota
	Heidler
)

func (t StrokeType) String() string {
	switch t {
	case CIGRE:
		return "CIGRE"
	case Heidler:
		return "Heidler"
	}
	return fmt.Sprintf("StrokeType(%d)", int(t))
}

// ParseStrokeType 解析脉冲类型名称
func ParseStrokeType(name string) (StrokeType, error) {
	switch name {
	case "CIGRE":
		return CIGRE, nil
	case "Heidler":
		return Heidler, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrStrokeType)
}

// 参数顺序 tn, A, B, n, I1, t1, I2, t2, Ipi, Ipc
var cigreParameters = map[string][]float64{
	"0.25/100us": {0.25, 100, 6.4, 2, 0.9, 30, 0.5, 80, 2, 0.7},
	"8/20us":     {8, 20, 1.18, 2.6, 0.93, 19.9, 0.51, 50, 1.5, 0.4},
	"2.6/50us":   {2.6, 50, 2.56, 2.1, 0.92, 30, 0.5, 80, 1.8, 0.6},
	"10/350us":   {10, 350, 0.92, 2.1, 0.98, 45, 0.53, 160, 2, 0.7},
}

// 参数顺序 Ip, Tf, tau, n
var heidlerParameters = map[string][]float64{
	"0.25/100us": {0.9, 0.25, 100, 2},
	"8/20us":     {30.85, 8, 20, 2.4},
	"2.6/50us":   {16.83, 2.6, 50, 2.1},
	"10/350us":   {44.43, 10, 350, 2.1},
}

// ParameterSets 内置参数集名称
func ParameterSets() []string {
	return []string{"0.25/100us", "8/20us", "2.6/50us", "10/350us"}
}

// Stroke 雷电脉冲
type Stroke struct {
	Type       StrokeType
	Duration   float64   // 持续时间
	Calculated bool      // 是否参与计算
	Parameters []float64 // 波形参数
}

// NewStroke 创建脉冲，set 为内置参数集名称，params 非空时覆盖参数集
func NewStroke(typ StrokeType, duration float64, calculated bool, set string, params []float64) (*Stroke, error) {
	s := &Stroke{Type: typ, Duration: duration, Calculated: calculated}
	var table map[string][]float64
	want := 0
	switch typ {
	case CIGRE:
		table, want = cigreParameters, 10
	case Heidler:
		table, want = heidlerParameters, 4
	default:
		return nil, fmt.Errorf("%s: %w", typ, ErrStrokeType)
	}
	if set != "" {
		p, ok := table[set]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", typ, set, ErrParameterSet)
		}
		s.Parameters = append([]float64(nil), p...)
	}
	if len(params) > 0 {
		s.Parameters = append([]float64(nil), params...)
	}
	if len(s.Parameters) != want {
		return nil, fmt.Errorf("%s 需要 %d 个参数, 实际 %d: %w", typ, want, len(s.Parameters), ErrParameters)
	}
	return s, nil
}

func (s *Stroke) cigre(t float64) float64 {
	p := s.Parameters
	tn, n, i1, t1, t2, ipi, ipc := p[0], p[3], p[4], p[5], p[7], p[8], p[9]
	return i1*(math.Exp(-t/t1)-math.Exp(-t/t2)) + ipi*math.Pow(1-math.Exp(-t/tn), n) + ipc
}

func (s *Stroke) heidler(t float64) float64 {
	p := s.Parameters
	ip, tf, tau, n := p[0], p[1], p[2], p[3]
	x := math.Pow(t/tf, n)
	return ip * x * math.Exp(-x) / math.Pow(1+(t/tau)*(t/tau), n/2)
}

// Waveform 时刻 t 的电流，t 与参数使用相同的时间单位
// 不参与计算的脉冲恒为零
func (s *Stroke) Waveform(t float64) float64 {
	if !s.Calculated {
		return 0
	}
	if s.Type == Heidler {
		return s.heidler(t)
	}
	return s.cigre(t)
}

// Sample 在给定时刻序列上采样
func (s *Stroke) Sample(times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = s.Waveform(t)
	}
	return out
}

// TimeGrid 从 0 到 duration 的 n 个等间隔时刻
func TimeGrid(duration float64, n int) []float64 {
	if n < 2 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, duration)
}
