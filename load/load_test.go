package load

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tower"
	"tower/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTower(t *testing.T) {
	m, err := LoadTower("testdata/tower.json", 50)
	require.NoError(t, err)
	assert.Equal(t, "tower", m.Name)
	assert.Equal(t, types.GroundPerfect, m.Ground.Model)
	assert.Equal(t, "weak", m.Ground.IonisationIntensity)
	assert.Equal(t, 1e-3, m.Ground.Sigma)

	ws := m.Wires
	require.Len(t, ws.Air, 3)
	assert.Equal(t, "Y01_Splited_1", ws.Air[0].Name)
	assert.Equal(t, "Y01_Splited_2", ws.Air[1].Name)
	require.Len(t, ws.Tube, 1)
	assert.Same(t, ws.Tube[0].Sheath, ws.Air[2])
	assert.Same(t, ws.Air[1].End, ws.Tube[0].Sheath.Start)
	assert.Same(t, ws.Tube[0].Sheath.End, ws.A2G[0].Start)
	assert.Len(t, ws.Ground, 1)
	assert.Len(t, ws.Short, 1)

	tube := ws.Tube[0]
	assert.Equal(t, 0.04, tube.InnerRadius)
	assert.Equal(t, 0.06, tube.OuterRadius)
	require.Len(t, tube.Cores, 3)
	assert.Equal(t, types.CoreGeometry{InnerOffset: 0.02, InnerAngle: 120}, tube.Cores[1].Core)
	assert.True(t, tube.Cores[2].IsCore())

	assert.Equal(t, 9, ws.Count())
	assert.Equal(t, 14, ws.CountDistinctPoints())
}

func TestLoadAndBuild(t *testing.T) {
	m, err := LoadTower("testdata/tower.json", 10)
	require.NoError(t, err)
	tw := tower.New(m.Wires, m.Ground, tower.WithName(m.Name))
	require.NoError(t, tw.Build(2e4))
	r, c := tw.A.Dims()
	assert.Equal(t, m.Wires.Count(), r)
	assert.Equal(t, m.Wires.CountDistinctPoints(), c)
}

func TestLoadTowerErrors(t *testing.T) {
	valid, err := os.ReadFile("testdata/tower.json")
	require.NoError(t, err)
	doc := string(valid)

	cases := []struct {
		name string
		old  string
		new  string
		err  error
	}{
		{"未知类型", `"type": "short"`, `"type": "lump"`, ErrConfig},
		{"大地模型", `"gnd_model": "Perfect"`, `"gnd_model": "Rough"`, ErrConfig},
		{"芯线超出容量", `"num": 3`, `"num": 2`, types.ErrCapacity},
		{"节点坐标不一致", `"node1": "X06", "pos_1": [80, 0, 0]`, `"node1": "X06", "pos_1": [81, 0, 0]`, ErrConfig},
		{"芯线不在套管中", `"type": "short"`, `"type": "core"`, ErrConfig},
		{"长度为零", `"pos_2": [85, 0, 0]`, `"pos_2": [80, 0, 0]`, types.ErrZeroLength},
		{"坐标维度", `"pos_2": [85, 0, 0]`, `"pos_2": [85, 0]`, ErrConfig},
		{"半径为零", `"r0": 0.005, "r": 0.001`, `"r0": 0, "r": 0.001`, ErrConfig},
		{"套管内半径", `"rs2": 0.04`, `"rs2": 0.07`, types.ErrTubeGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := strings.Replace(doc, tc.old, tc.new, 1)
			require.NotEqual(t, doc, s)
			_, err := LoadTowerString(s, 50)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err = LoadTowerString("{", 50)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = LoadTower("testdata/missing.json", 50)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "tower.json"), cfg.Topology)
	assert.Equal(t, 10.0, cfg.MaxLength)
	assert.Equal(t, 2e4, cfg.Frequency)
	assert.Equal(t, types.VF{Order: 8, Frequencies: []float64{1, 10, 100}}, cfg.VF.Types())
	assert.True(t, cfg.Report.HTML)
	assert.False(t, cfg.Report.Plot)

	m, err := cfg.LoadModel()
	require.NoError(t, err)
	assert.Equal(t, 14, len(m.Wires.Segments()))
	assert.Equal(t, 20, m.Wires.Count())
	assert.Equal(t, 8, m.Wires.Air[0].VF.Order)
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topology: /data/tower.json\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/tower.json", cfg.Topology)
	assert.Equal(t, types.DefaultMaxLength, cfg.MaxLength)
	assert.Equal(t, 2e4, cfg.Frequency)
	assert.Equal(t, 10, cfg.VF.Order)
	assert.Len(t, cfg.VF.Frequencies, 36)
	assert.Equal(t, "out", cfg.Report.Dir)

	require.NoError(t, os.WriteFile(path, []byte("topology: a.json\nmax_length: 0\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)

	require.NoError(t, os.WriteFile(path, []byte("max_length: 5\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)
}
