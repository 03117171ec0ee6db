package load

import (
	"fmt"
	"os"
	"path/filepath"

	"tower/types"

	"gopkg.in/yaml.v3"
)

// Config 运行配置
type Config struct {
	Topology  string       `yaml:"topology" validate:"required"`
	MaxLength float64      `yaml:"max_length" validate:"gt=0"`
	Frequency float64      `yaml:"frequency" validate:"gt=0"`
	VF        VFConfig     `yaml:"vf"`
	Report    ReportConfig `yaml:"report"`
}

// VFConfig 矢量拟合参数，同时作为扫频频率
type VFConfig struct {
	Order       int       `yaml:"order" validate:"gte=0"`
	Frequencies []float64 `yaml:"frequencies" validate:"dive,gt=0"`
}

// Types 转换为导线使用的拟合参数
func (c VFConfig) Types() types.VF {
	return types.VF{Order: c.Order, Frequencies: append([]float64(nil), c.Frequencies...)}
}

// ReportConfig 输出配置
type ReportConfig struct {
	Dir  string `yaml:"dir"`
	HTML bool   `yaml:"html"`
	Plot bool   `yaml:"plot"`
}

// DefaultFrequencies 1Hz 至 90kHz 的默认扫频频率
func DefaultFrequencies() []float64 {
	var out []float64
	for _, r := range [][3]float64{{1, 91, 10}, {100, 1000, 100}, {1000, 10000, 1000}, {10000, 100000, 10000}} {
		for f := r[0]; f < r[1]; f += r[2] {
			out = append(out, f)
		}
	}
	return out
}

// DefaultConfig 默认运行配置
func DefaultConfig() Config {
	return Config{
		MaxLength: types.DefaultMaxLength,
		Frequency: 2e4,
		VF:        VFConfig{Order: 10, Frequencies: DefaultFrequencies()},
		Report:    ReportConfig{Dir: "out"},
	}
}

// LoadConfig 加载运行配置，未给出的项取默认值，拓扑文件路径相对于配置文件所在目录
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrConfig, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrConfig, err)
	}
	if !filepath.IsAbs(cfg.Topology) {
		cfg.Topology = filepath.Join(filepath.Dir(path), cfg.Topology)
	}
	return &cfg, nil
}

// LoadModel 按运行配置加载杆塔模型
func (c *Config) LoadModel() (*Model, error) {
	return LoadTowerFile(c.Topology, c.MaxLength, c.VF.Types())
}
