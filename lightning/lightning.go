package lightning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Kind 雷电类型
type Kind int

const (
	Direct   Kind = iota // 直击雷
	Indirect             // 感应雷
)

func (k Kind) String() string {
	if k == Indirect {
		return "Indirect"
	}
	return "Direct"
}

// ParseKind 解析雷电类型名称
func ParseKind(name string) (Kind, error) {
	switch name {
	case "Direct":
		return Direct, nil
	case "Indirect":
		return Indirect, nil
	}
	return 0, fmt.Errorf("雷电类型 %q 必须为 Direct 或 Indirect", name)
}

// Lightning 雷电，由若干脉冲叠加
type Lightning struct {
	ID      int
	Kind    Kind
	Strokes []*Stroke
}

// NewLightning 创建雷电
func NewLightning(id int, kind Kind, strokes ...*Stroke) *Lightning {
	return &Lightning{ID: id, Kind: kind, Strokes: strokes}
}

// AddStroke 添加脉冲
func (l *Lightning) AddStroke(s *Stroke) { l.Strokes = append(l.Strokes, s) }

// StrokeNumber 脉冲数量
func (l *Lightning) StrokeNumber() int { return len(l.Strokes) }

// TotalWaveform 时刻 t 全部脉冲电流之和
func (l *Lightning) TotalWaveform(t float64) float64 {
	total := 0.0
	for _, s := range l.Strokes {
		total += s.Waveform(t)
	}
	return total
}

// Sample 在给定时刻序列上采样总电流
func (l *Lightning) Sample(times []float64) []float64 {
	out := make([]float64, len(times))
	for _, s := range l.Strokes {
		floats.Add(out, s.Sample(times))
	}
	return out
}

// Duration 最长脉冲持续时间
func (l *Lightning) Duration() float64 {
	d := 0.0
	for _, s := range l.Strokes {
		d = max(d, s.Duration)
	}
	return d
}
