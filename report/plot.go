package report

import (
	"fmt"
	"io"
	"math/cmplx"

	"tower/maths"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series 一条阻抗频率曲线
type Series struct {
	Name   string
	Values []complex128
}

// Sweep 阻抗随频率变化
type Sweep struct {
	Title       string
	Frequencies []float64
	Series      []Series
}

// Plot 以对数坐标绘制阻抗模值
func (s *Sweep) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "|Z| (Ohm)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	positive := true
	for k, series := range s.Series {
		if len(series.Values) != len(s.Frequencies) {
			return nil, fmt.Errorf("曲线 %s 数值 %d, 频率 %d: %w", series.Name, len(series.Values), len(s.Frequencies), maths.ErrShape)
		}
		pts := make(plotter.XYs, len(s.Frequencies))
		for i, f := range s.Frequencies {
			pts[i].X, pts[i].Y = f, cmplx.Abs(series.Values[i])
			positive = positive && pts[i].Y > 0
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("曲线 %s: %w", series.Name, err)
		}
		line.Color = plotutil.Color(k)
		line.Dashes = plotutil.Dashes(k)
		p.Add(line)
		p.Legend.Add(series.Name, line)
	}
	if positive && len(s.Series) > 0 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	return p, nil
}

// WritePNG 输出 PNG 图片
func (s *Sweep) WritePNG(w io.Writer) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(16*vg.Centimeter, 10*vg.Centimeter, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save 按扩展名保存图片
func (s *Sweep) Save(path string) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	return p.Save(16*vg.Centimeter, 10*vg.Centimeter, path)
}
