package types

// Ground 大地参数
type Ground struct {
	Sigma float64     // 电导率
	Mur   float64     // 相对磁导率
	Epr   float64     // 相对介电常数
	Model GroundModel // 大地模型
	// 电离参数，计算中不使用
	IonisationIntensity string
	IonisationModel     string
}
