package types

import "fmt"

// WireType 导线类型
type WireType int

// 导线类型常量定义
const (
	WireUnknown WireType = iota // 未知类型
	WirePlain                   // 普通导线
	WireCore                    // 套管芯线
)

// wireTypeString 导线类型映射
var wireTypeString = map[WireType]string{
	WireUnknown: "Unknown",
	WirePlain:   "Plain",
	WireCore:    "Core",
}

// String 返回导线类型的字符串表示
func (t WireType) String() string {
	if name, ok := wireTypeString[t]; ok {
		return name
	}
	return "Unknown"
}

// GroundModel 大地模型
type GroundModel int

// 大地模型常量定义
const (
	GroundNone    GroundModel = iota // 不考虑大地
	GroundPerfect                    // 理想导体大地
	GroundLossy                      // 有损大地
)

var groundModelString = map[GroundModel]string{
	GroundNone:    "No",
	GroundPerfect: "Perfect",
	GroundLossy:   "Lossy",
}

// String 返回大地模型名称
func (m GroundModel) String() string {
	if name, ok := groundModelString[m]; ok {
		return name
	}
	return "Unknown"
}

// ParseGroundModel 解析大地模型名称
func ParseGroundModel(name string) (GroundModel, error) {
	for m, s := range groundModelString {
		if s == name {
			return m, nil
		}
	}
	return GroundNone, fmt.Errorf("未知大地模型: %q", name)
}
