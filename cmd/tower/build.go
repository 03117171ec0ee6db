package main

import (
	"log/slog"
	"path/filepath"

	"tower"
	"tower/load"
	"tower/report"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var config, out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "按配置构建 A R L P C 矩阵并输出报告",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(config, out)
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "运行配置文件")
	cmd.Flags().StringVarP(&out, "out", "o", "", "输出目录，覆盖配置")
	cmd.MarkFlagRequired("config")
	return cmd
}

func runBuild(config, out string) error {
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
	tw := tower.New(m.Wires, m.Ground, tower.WithName(m.Name), tower.WithLogger(slog.Default()))
	if err := tw.Build(cfg.Frequency); err != nil {
		return err
	}
	rec, err := report.NewRecord(tw)
	if err != nil {
		return err
	}
	base := filepath.Join(cfg.Report.Dir, m.Name)
	if err := writeFile(base+".json", rec.Render); err != nil {
		return err
	}
	if cfg.Report.HTML {
		c := &report.Charts{Record: rec}
		if err := writeFile(base+".html", c.Render); err != nil {
			return err
		}
	}
	return nil
}
