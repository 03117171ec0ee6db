package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tower/types"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfig 配置文件内容错误
var ErrConfig = errors.New("配置文件错误")

var validate = validator.New()

// Document 杆塔拓扑文件，JSON 文件按 YAML 解析
type Document struct {
	Tower TowerDoc `yaml:"Tower" validate:"required"`
}

// TowerDoc 杆塔
type TowerDoc struct {
	Name   string    `yaml:"name"`
	Wire   []WireDoc `yaml:"Wire" validate:"required,min=1,dive"`
	Ground GroundDoc `yaml:"ground" validate:"required"`
}

// WireDoc 导线
// 套管由 sheath 和 core 组成，外皮的 rs2 rs3 num 为内半径、外半径和芯线数量，芯线的 rs2 rs3 为偏移和角度
type WireDoc struct {
	Type  string    `yaml:"type" validate:"required,oneof=air ground a2g short tube sheath core"`
	Bran  string    `yaml:"bran" validate:"required_unless=Type tube"`
	Node1 string    `yaml:"node1" validate:"required_unless=Type tube"`
	Pos1  []float64 `yaml:"pos_1" validate:"omitempty,len=3"`
	Node2 string    `yaml:"node2" validate:"required_unless=Type tube"`
	Pos2  []float64 `yaml:"pos_2" validate:"omitempty,len=3"`
	Oft   float64   `yaml:"oft"`
	R0    float64   `yaml:"r0" validate:"required_unless=Type tube,gte=0"`
	R     float64   `yaml:"r"`
	L     float64   `yaml:"l"`
	Sig   float64   `yaml:"sig" validate:"gte=0"`
	Mur   float64   `yaml:"mur" validate:"gte=0"`
	Epr   float64   `yaml:"epr" validate:"gte=0"`
	Rs2   float64   `yaml:"rs2"`
	Rs3   float64   `yaml:"rs3"`
	Num   int       `yaml:"num" validate:"gte=0"`
	VF    types.VF  `yaml:"vf"`

	Sheath *WireDoc  `yaml:"sheath" validate:"required_if=Type tube"`
	Core   []WireDoc `yaml:"core" validate:"dive"`
}

// GroundDoc 大地
type GroundDoc struct {
	Sig                 float64 `yaml:"sig" validate:"gte=0"`
	Mur                 float64 `yaml:"mur" validate:"gte=0"`
	Epr                 float64 `yaml:"epr" validate:"gte=0"`
	Model               string  `yaml:"gnd_model" validate:"required,oneof=No Perfect Lossy"`
	IonisationIntensity string  `yaml:"ionisation_intensity"`
	IonisationModel     string  `yaml:"ionisation_model"`
}

// builder 按名称复用节点，使同名端点成为同一个节点
type builder struct {
	nodes map[string]*types.Node
	vf    types.VF
}

func (b *builder) node(name string, pos []float64) (*types.Node, error) {
	if len(pos) != 3 {
		return nil, fmt.Errorf("节点 %s 坐标维度 %d: %w", name, len(pos), ErrConfig)
	}
	if n, ok := b.nodes[name]; ok {
		if n.Pos.X != pos[0] || n.Pos.Y != pos[1] || n.Pos.Z != pos[2] {
			return nil, fmt.Errorf("节点 %s 坐标不一致 %v 与 %v: %w", name, n.Pos, pos, ErrConfig)
		}
		return n, nil
	}
	n := types.NewNode(name, pos[0], pos[1], pos[2])
	b.nodes[name] = n
	return n, nil
}

func (b *builder) wire(doc *WireDoc) (*types.Wire, error) {
	start, err := b.node(doc.Node1, doc.Pos1)
	if err != nil {
		return nil, err
	}
	end, err := b.node(doc.Node2, doc.Pos2)
	if err != nil {
		return nil, err
	}
	vf := doc.VF
	if vf.Order == 0 && len(vf.Frequencies) == 0 {
		vf = b.vf
	}
	param := types.WireParam{
		Offset: doc.Oft, Radius: doc.R0, R: doc.R, L: doc.L,
		Sigma: doc.Sig, Mur: doc.Mur, Epr: doc.Epr, VF: vf,
	}
	var w *types.Wire
	if doc.Type == "core" {
		w = types.NewCoreWire(doc.Bran, start, end, param, types.CoreGeometry{InnerOffset: doc.Rs2, InnerAngle: doc.Rs3})
	} else {
		w = types.NewWire(doc.Bran, start, end, param)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (b *builder) tube(doc *WireDoc) (*types.TubeWire, error) {
	if doc.Sheath.Type != "sheath" {
		return nil, fmt.Errorf("套管外皮类型 %q: %w", doc.Sheath.Type, ErrConfig)
	}
	sheath, err := b.wire(doc.Sheath)
	if err != nil {
		return nil, err
	}
	tube := types.NewTubeWire(sheath, doc.Sheath.Rs2, doc.Sheath.Rs3, doc.Sheath.Num)
	for i := range doc.Core {
		if doc.Core[i].Type != "core" {
			return nil, fmt.Errorf("套管 %s 芯线类型 %q: %w", sheath.Name, doc.Core[i].Type, ErrConfig)
		}
		core, err := b.wire(&doc.Core[i])
		if err != nil {
			return nil, err
		}
		if err := tube.AddCoreWire(core); err != nil {
			return nil, err
		}
	}
	return tube, nil
}

// Model 杆塔模型
type Model struct {
	Name   string
	Wires  *types.Wires
	Ground types.Ground
}

// Build 由拓扑文件创建导线集合和大地，套管外皮同时加入空气导线列表，超过 maxLength 的导线被切分
func (doc *Document) Build(maxLength float64, vf types.VF) (*Model, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	b := &builder{nodes: make(map[string]*types.Node), vf: vf}
	ws := types.NewWires()
	for i := range doc.Tower.Wire {
		wd := &doc.Tower.Wire[i]
		switch wd.Type {
		case "tube":
			tube, err := b.tube(wd)
			if err != nil {
				return nil, err
			}
			ws.AddAir(tube.Sheath)
			ws.AddTube(tube)
			continue
		case "sheath", "core":
			return nil, fmt.Errorf("%s 类型 %q 只能出现在套管中: %w", wd.Bran, wd.Type, ErrConfig)
		}
		w, err := b.wire(wd)
		if err != nil {
			return nil, err
		}
		switch wd.Type {
		case "air":
			ws.AddAir(w)
		case "ground":
			ws.AddGround(w)
		case "a2g":
			ws.AddA2G(w)
		case "short":
			ws.AddShort(w)
		}
	}
	if err := ws.SplitLongWires(maxLength); err != nil {
		return nil, err
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}

	g := doc.Tower.Ground
	model, err := types.ParseGroundModel(g.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &Model{
		Name:  doc.Tower.Name,
		Wires: ws,
		Ground: types.Ground{
			Sigma: g.Sig, Mur: g.Mur, Epr: g.Epr, Model: model,
			IonisationIntensity: g.IonisationIntensity, IonisationModel: g.IonisationModel,
		},
	}, nil
}

// LoadTowerString 加载杆塔拓扑
func LoadTowerString(s string, maxLength float64) (*Model, error) {
	return LoadTowerReader(strings.NewReader(s), maxLength, types.VF{})
}

// LoadTowerReader 加载杆塔拓扑，vf 为导线未指定拟合参数时的默认值
func LoadTowerReader(r io.Reader, maxLength float64, vf types.VF) (*Model, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return doc.Build(maxLength, vf)
}

// LoadTower 加载杆塔拓扑文件
func LoadTower(path string, maxLength float64) (*Model, error) {
	return LoadTowerFile(path, maxLength, types.VF{})
}

// LoadTowerFile 加载杆塔拓扑文件，未命名的杆塔以文件名命名
func LoadTowerFile(path string, maxLength float64, vf types.VF) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := LoadTowerReader(f, maxLength, vf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m, nil
}
