package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ErrWave 波形采样点数量不一致
var ErrWave = errors.New("波形采样点数量不一致")

// Wave 时域波形
type Wave struct {
	Name   string
	Time   []float64
	Values []float64
}

// Charts 杆塔参数网页报告
type Charts struct {
	*Record
	Waves []Wave // 雷电流波形，可为空
}

var legend = opts.Legend{
	Type:   "scroll",
	Orient: "vertical",
	Right:  "10",
	Top:    "20",
	Bottom: "20",
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "杆塔参数"
	if c.Record != nil {
		page.AddCharts(c.topology())
		for _, m := range Matrices {
			rows, cols := c.Axes(m)
			page.AddCharts(heatMap(fmt.Sprintf("%s 矩阵", m), fmt.Sprintf("%s f=%gHz", c.Name, c.Frequency), rows, cols, c.Matrix(m)))
		}
	}
	if len(c.Waves) > 0 {
		line, err := waveLine(c.Waves)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		slog.Error("报告输出失败", "error", err)
	}
}

const (
	branchColor = "#c71979b7"
	nodeColor   = "#1987c7b7"
)

// topology 导线连接网络图，节点和支路分为两类
func (c *Charts) topology() *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "杆塔导线连接",
			Subtitle: c.Name,
		}),
		charts.WithLegendOpts(legend),
	)
	nodes := make([]opts.GraphNode, 0, len(c.Nodes)+len(c.Branches))
	for _, n := range c.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:      n,
			Category:  1,
			ItemStyle: &opts.ItemStyle{Color: nodeColor},
			Tooltip:   &opts.Tooltip{Show: opts.Bool(true)},
		})
	}
	links := make([]opts.GraphLink, 0, 2*len(c.Branches))
	for _, b := range c.Branches {
		nodes = append(nodes, opts.GraphNode{
			Name:      b[0],
			Category:  0,
			ItemStyle: &opts.ItemStyle{Color: branchColor},
			Tooltip:   &opts.Tooltip{Show: opts.Bool(true)},
		})
		links = append(links,
			opts.GraphLink{Source: b[0], Target: b[1], Value: 1},
			opts.GraphLink{Source: b[0], Target: b[2], Value: 2},
		)
	}
	graph.AddSeries("导线列表", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Categories: []*opts.GraphCategory{
				{Name: "支路"},
				{Name: "节点"},
			},
			Roam:               opts.Bool(true),
			Force:              &opts.GraphForce{Repulsion: 80},
			EdgeLabel:          &opts.EdgeLabel{Show: opts.Bool(true)},
			FocusNodeAdjacency: opts.Bool(true),
		}))
	return graph
}

// heatMap 矩阵热力图，行从上到下排列
func heatMap(title, subtitle string, rows, cols []string, m [][]float64) *charts.HeatMap {
	hm := charts.NewHeatMap()
	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.HeatMapData, 0, len(rows)*len(cols))
	for i, row := range m {
		for j, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, len(m) - 1 - i, v}})
		}
	}
	if len(data) == 0 {
		lo, hi = 0, 0
	}
	yAxis := make([]string, len(rows))
	for i, r := range rows {
		yAxis[len(rows)-1-i] = r
	}
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      cols,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      yAxis,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#74add1", "#ffffbf", "#f46d43", "#a50026"},
			},
		}),
	)
	hm.SetXAxis(cols).AddSeries(title, data)
	return hm
}

// waveLine 波形曲线，全部波形共用第一个波形的时间轴
func waveLine(waves []Wave) (*charts.Line, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "雷电流波形",
			Subtitle: "电流随时间变化曲线",
		}),
		charts.WithLegendOpts(legend),
		charts.WithXAxisOpts(opts.XAxis{SplitNumber: 20}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	n := len(waves[0].Time)
	line.SetXAxis(waves[0].Time)
	for _, wave := range waves {
		if len(wave.Time) != n || len(wave.Values) != n {
			return nil, fmt.Errorf("波形 %s 时间 %d 数值 %d, 需要 %d: %w", wave.Name, len(wave.Time), len(wave.Values), n, ErrWave)
		}
		items := make([]opts.LineData, n)
		for i, v := range wave.Values {
			items[i].Value = v
		}
		line.AddSeries(wave.Name, items)
	}
	return line, nil
}
