package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"tower/lightning"
	"tower/report"

	"github.com/spf13/cobra"
)

type waveformOptions struct {
	kind     string
	typ      string
	set      string
	params   []float64
	duration float64
	points   int
	strokes  int
	out      string
	serve    string
}

func newWaveformCmd() *cobra.Command {
	o := &waveformOptions{}
	cmd := &cobra.Command{
		Use:   "waveform",
		Short: "绘制雷电流波形",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWaveform(o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.kind, "kind", "Direct", "雷击类型 Direct|Indirect")
	f.StringVar(&o.typ, "type", "CIGRE", "脉冲类型 CIGRE|Heidler")
	f.StringVar(&o.set, "set", "8/20us", "内置参数集")
	f.Float64SliceVar(&o.params, "params", nil, "自定义参数，覆盖参数集")
	f.Float64Var(&o.duration, "duration", 100, "持续时间(us)")
	f.IntVar(&o.points, "points", 1000, "采样点数")
	f.IntVar(&o.strokes, "strokes", 1, "相同脉冲的数量")
	f.StringVarP(&o.out, "out", "o", "out", "输出目录")
	f.StringVar(&o.serve, "serve", "", "在该地址发布网页，不写文件")
	return cmd
}

func runWaveform(o *waveformOptions) error {
	kind, err := lightning.ParseKind(o.kind)
	if err != nil {
		return err
	}
	typ, err := lightning.ParseStrokeType(o.typ)
	if err != nil {
		return err
	}
	set := o.set
	if len(o.params) > 0 {
		set = ""
	}
	l := lightning.NewLightning(1, kind)
	for range max(o.strokes, 1) {
		s, err := lightning.NewStroke(typ, o.duration, true, set, o.params)
		if err != nil {
			return err
		}
		l.AddStroke(s)
	}
	times := lightning.TimeGrid(l.Duration(), o.points)
	waves := make([]report.Wave, 0, l.StrokeNumber()+1)
	for i, s := range l.Strokes {
		waves = append(waves, report.Wave{Name: fmt.Sprintf("%s-%d", s.Type, i+1), Time: times, Values: s.Sample(times)})
	}
	waves = append(waves, report.Wave{Name: fmt.Sprintf("%s 合计", l.Kind), Time: times, Values: l.Sample(times)})
	c := &report.Charts{Waves: waves}

	if o.serve != "" {
		slog.Info("发布波形网页", "addr", o.serve)
		return http.ListenAndServe(o.serve, http.HandlerFunc(c.Handler))
	}
	name := fmt.Sprintf("%s_%s.html", typ, strings.ReplaceAll(o.set, "/", "_"))
	if set == "" {
		name = fmt.Sprintf("%s_custom.html", typ)
	}
	return writeFile(filepath.Join(o.out, name), c.Render)
}
