package main

import (
	"fmt"
	"log/slog"
	"math/cmplx"
	"path/filepath"

	"tower/impedance"
	"tower/load"
	"tower/report"
	"tower/types"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var config, out string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "计算套管在拟合频率下的内部阻抗和大地阻抗",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(config, out)
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "运行配置文件")
	cmd.Flags().StringVarP(&out, "out", "o", "", "输出目录，覆盖配置")
	cmd.MarkFlagRequired("config")
	return cmd
}

// tubeSweep 第一根芯线的自阻抗、外皮阻抗、互阻抗及外皮大地自阻抗
func tubeSweep(t *types.TubeWire, g types.Ground, freqs []float64) (*report.Sweep, error) {
	zc, err := impedance.CoreImpedanceSweep(t, freqs)
	if err != nil {
		return nil, err
	}
	zs, err := impedance.SheathImpedanceSweep(t, freqs)
	if err != nil {
		return nil, err
	}
	zm, err := impedance.MutualImpedanceSweep(t, freqs)
	if err != nil {
		return nil, err
	}
	zg, err := impedance.GroundImpedanceSweep(g, []float64{t.Sheath.End.Pos.Z}, []float64{0}, []float64{t.OuterRadius}, freqs)
	if err != nil {
		return nil, err
	}
	n := len(freqs)
	core, mutual, ground := make([]complex128, n), make([]complex128, n), make([]complex128, n)
	for k := range freqs {
		core[k] = zc[k].At(0, 0)
		mutual[k] = zm[k].Zcs.At(0, 0)
		ground[k] = zg[k].At(0, 0)
	}
	return &report.Sweep{
		Title:       t.Sheath.Name,
		Frequencies: freqs,
		Series: []report.Series{
			{Name: "Zc", Values: core},
			{Name: "Zs", Values: zs},
			{Name: "Zcs", Values: mutual},
			{Name: "Zg", Values: ground},
		},
	}, nil
}

func runSweep(config, out string) error {
	cfg, err := load.LoadConfig(config)
	if err != nil {
		return err
	}
	if out != "" {
		cfg.Report.Dir = out
	}
	m, err := cfg.LoadModel()
	if err != nil {
		return err
	}
	if len(m.Wires.Tube) == 0 {
		slog.Warn("杆塔中没有套管", "tower", m.Name)
		return nil
	}
	freqs := cfg.VF.Frequencies
	for _, t := range m.Wires.Tube {
		s, err := tubeSweep(t, m.Ground, freqs)
		if err != nil {
			return fmt.Errorf("套管 %s: %w", t.Sheath.Name, err)
		}
		last := len(freqs) - 1
		slog.Info("套管阻抗", "tube", t.Sheath.Name, "frequency", freqs[last],
			"Zc", cmplx.Abs(s.Series[0].Values[last]), "Zs", cmplx.Abs(s.Series[1].Values[last]))
		if cfg.Report.Plot {
			if err := s.Save(filepath.Join(cfg.Report.Dir, t.Sheath.Name+".png")); err != nil {
				return err
			}
		}
	}
	return nil
}
