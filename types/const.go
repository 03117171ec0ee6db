package types

import "math"

// 物理常数定义
const (
	Ep0   = 8.854187818e-12         // 真空介电常数
	Mu0   = 4 * math.Pi * 1e-7      // 真空磁导率
	Ke    = 1 / (4 * math.Pi * Ep0) // 电位系数常数
	Km    = Mu0 / (4 * math.Pi)     // 电感常数
	Vair  = 3e8                     // 空气中传播速度
	Vduct = 1e6                     // 高度哨兵值，不小于该值视为无回流路径
)

// 几何计算阈值
const (
	ParallelTol = 1e-5  // 平行判定容差(g0)
	CoplanarTol = 1e-6  // 共面判定距离(d0)
	MinDistance = 1e-10 // 最小距离(r0)
	LogSwitch   = 1e-9  // 平行线积分切换对数形式的阈值
	BesselLimit = 200.0 // 贝塞尔函数实部阈值，超出时使用渐近近似
	Harmonics   = 15    // 芯线互阻抗谐波项数
)

// 默认参数
const (
	DefaultMaxLength = 50.0 // 默认最大分段长度
	SplitEpsilon     = 1e-9 // 分段数量取整时的舍入容差
)
