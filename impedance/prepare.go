package impedance

import (
	"math"

	"tower/maths"
	"tower/types"

	"gonum.org/v1/gonum/mat"
)

// TubeParameters 套管内部参数，行列顺序为 外皮, 芯线...
// Rin Lin Rx Lx 已乘以套管长度，Cin 为单位长度电容
type TubeParameters struct {
	Rin *mat.Dense
	Rx  *mat.Dense
	Lin *mat.Dense
	Lx  *mat.Dense
	Cin *mat.Dense
}

// Size 参数矩阵维度
func (p *TubeParameters) Size() int {
	n, _ := maths.Dims(p.Rin)
	return n
}

// Prepare 计算套管在给定频率下的内部电阻、电感和电容
func Prepare(t *types.TubeWire, f float64) (*TubeParameters, error) {
	zc, err := CoreImpedance(t, f)
	if err != nil {
		return nil, err
	}
	zs, _ := SheathImpedance(t, f)
	zm, _ := MutualImpedance(t, f)

	lc := CoreInductance(t)
	cc, err := CoreCapacitance(t, lc)
	if err != nil {
		return nil, err
	}
	ls := SheathInductance(t)
	cs := SheathCapacitance(t, ls)

	n := len(t.Cores)
	omega := 2 * math.Pi * f
	length := t.Length()

	// Zin = [[Zs, Zsc], [Zcs, Zc]]
	zin := mat.NewCDense(n+1, n+1, nil)
	zin.Set(0, 0, zs)
	for i := range n {
		zin.Set(0, i+1, zm.Zsc.At(0, i))
		zin.Set(i+1, 0, zm.Zcs.At(i, 0))
		for j := range n {
			zin.Set(i+1, j+1, zc.At(i, j))
		}
	}

	lext := maths.BlockDiag(maths.Scalar(ls), lc)
	p := &TubeParameters{
		Rin: mat.NewDense(n+1, n+1, nil),
		Lin: mat.NewDense(n+1, n+1, nil),
		Cin: maths.BlockDiag(maths.Scalar(cs), cc),
	}
	for i := range n + 1 {
		for j := range n + 1 {
			z := zin.At(i, j)
			p.Rin.Set(i, j, real(z)*length)
			p.Lin.Set(i, j, (imag(z)/omega+lext.At(i, j))*length)
		}
	}

	rx := mat.NewDense(n, n, nil)
	lx := mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			zcs, zsc := zm.Zcs.At(i, 0), zm.Zsc.At(0, j)
			rx.Set(i, j, (real(zsc)+real(zcs))*length)
			lx.Set(i, j, (imag(zcs)+imag(zsc))/omega*length)
		}
	}
	p.Rx = maths.BlockDiag(maths.Scalar(0), rx)
	p.Lx = maths.BlockDiag(maths.Scalar(0), lx)
	return p, nil
}
