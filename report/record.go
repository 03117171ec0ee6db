package report

import (
	"encoding/json"
	"fmt"
	"io"

	"tower"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record 杆塔参数矩阵记录
type Record struct {
	Name      string       `json:"name"`
	Frequency float64      `json:"frequency"`
	Ground    string       `json:"ground"`
	Branches  [][3]string  `json:"branches"` // 支路名称、起点、终点
	Nodes     []string     `json:"nodes"`
	Positions [][3]float64 `json:"positions"` // 节点坐标

	A [][]float64 `json:"A"`
	R [][]float64 `json:"R"`
	L [][]float64 `json:"L"`
	P [][]float64 `json:"P"`
	C [][]float64 `json:"C"`
}

// NewRecord 记录已完成构建的杆塔
func NewRecord(t *tower.Tower) (*Record, error) {
	for _, m := range Matrices {
		if p := t.Phase(m); p != tower.PhaseFinalized {
			return nil, fmt.Errorf("%s 矩阵处于 %s 阶段: %w", m, p, tower.ErrPhase)
		}
	}
	return &Record{
		Name:      t.Name,
		Frequency: t.Frequency,
		Ground:    t.Ground.Model.String(),
		Branches:  t.Wires.BranchCoordinates(),
		Nodes:     t.Wires.NodeNames(),
		Positions: positions(t.Wires.NodeCoordinates()),
		A:         rows(t.A),
		R:         rows(t.R),
		L:         rows(t.L),
		P:         rows(t.P),
		C:         rows(t.C),
	}, nil
}

// Matrices 记录中矩阵的输出顺序
var Matrices = []tower.Matrix{tower.Incidence, tower.Resistance, tower.Inductance, tower.Potential, tower.Capacitance}

// Matrix 按编号取矩阵数据
func (r *Record) Matrix(m tower.Matrix) [][]float64 {
	switch m {
	case tower.Incidence:
		return r.A
	case tower.Resistance:
		return r.R
	case tower.Inductance:
		return r.L
	case tower.Potential:
		return r.P
	case tower.Capacitance:
		return r.C
	}
	return nil
}

// Axes 矩阵的行列名称
func (r *Record) Axes(m tower.Matrix) (rows, cols []string) {
	branches := make([]string, len(r.Branches))
	for i, b := range r.Branches {
		branches[i] = b[0]
	}
	switch m {
	case tower.Incidence:
		return branches, r.Nodes
	case tower.Resistance, tower.Inductance:
		return branches, branches
	}
	return r.Nodes, r.Nodes
}

// Render 以 JSON 格式输出
func (r *Record) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func rows(m *mat.Dense) [][]float64 {
	if m == nil || m.IsEmpty() {
		return [][]float64{}
	}
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

func positions(list []r3.Vec) [][3]float64 {
	out := make([][3]float64, len(list))
	for i, p := range list {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}
