package types

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Node 节点
// 节点创建后不再修改，相同节点以指针判定，坐标相同的节点不视为同一节点
type Node struct {
	Name string // 节点名称
	Pos  r3.Vec // 节点坐标
}

// NewNode 创建节点
func NewNode(name string, x, y, z float64) *Node {
	return &Node{Name: name, Pos: r3.Vec{X: x, Y: y, Z: z}}
}

// ID 名称末尾的数字编号，没有数字时返回-1
func (n *Node) ID() int { return trailingID(n.Name) }

func (n *Node) String() string {
	return fmt.Sprintf("%s(%g,%g,%g)", n.Name, n.Pos.X, n.Pos.Y, n.Pos.Z)
}

// trailingID 解析名称末尾的数字
func trailingID(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return -1
	}
	v, err := strconv.Atoi(name[i:])
	if err != nil {
		return -1
	}
	return v
}

// nodeSet 按首次出现顺序去重的节点集合
type nodeSet struct {
	index map[*Node]int
	list  []*Node
}

func newNodeSet() *nodeSet {
	return &nodeSet{index: make(map[*Node]int)}
}

// Add 添加节点，已存在时忽略
func (s *nodeSet) Add(nodes ...*Node) {
	for _, n := range nodes {
		if _, ok := s.index[n]; ok {
			continue
		}
		s.index[n] = len(s.list)
		s.list = append(s.list, n)
	}
}

// addWires 依次添加导线的起点和终点
func (s *nodeSet) addWires(list []*Wire) {
	for _, w := range list {
		s.Add(w.Start, w.End)
	}
}
