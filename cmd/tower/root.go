package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	logFormat string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tower",
		Short:         "杆塔导线网络参数计算",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), o.logFormat, o.verbose)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "text", "日志格式 text|json")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "输出调试日志")
	cmd.AddCommand(newBuildCmd(), newSweepCmd(), newWaveformCmd())
	return cmd
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("未知日志格式 %q", format)
}

// writeFile 创建目录并写入文件
func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("输出文件", "path", path)
	return nil
}
