package maths

import (
	"math"
	"math/cmplx"
)

const (
	eulerGamma  = 0.57721566490153286061
	besselEps   = 1e-15
	besselIter  = 100000
	seriesLimit = 2.0 // |z| 小于该值时使用幂级数
)

// BesselIK01 第一类与第二类修正贝塞尔函数 I0、I1、K0、K1，要求 Re(z) > 0
func BesselIK01(z complex128) (i0, i1, k0, k1 complex128) {
	if cmplx.Abs(z) < seriesLimit {
		return besselSeries(z)
	}
	k0, k1 = besselKSteed(z)
	// I1/I0 连分式，再由朗斯基行列式 I0*K1 + I1*K0 = 1/z 求 I0
	f := besselIRatio(z)
	i0 = 1 / (z * (k1 + f*k0))
	return i0, f * i0, k0, k1
}

// besselSeries 小参数幂级数
func besselSeries(z complex128) (i0, i1, k0, k1 complex128) {
	t := z * z / 4
	lg := cmplx.Log(z / 2)
	term0, term1 := complex(1, 0), complex(1, 0) // t^k/(k!)^2, t^k/(k!(k+1)!)
	psi1 := -eulerGamma                          // ψ(k+1)
	psi2 := 1 - eulerGamma                       // ψ(k+2)
	var s0, s1 complex128
	for k := 0; k < 500; k++ {
		i0 += term0
		i1 += term1
		s0 += complex(psi1, 0) * term0
		s1 += complex(psi1+psi2, 0) * term1
		if cmplx.Abs(term0) < besselEps*cmplx.Abs(i0) && cmplx.Abs(term1) < besselEps*cmplx.Abs(i1) {
			break
		}
		kf := float64(k + 1)
		term0 *= t / complex(kf*kf, 0)
		term1 *= t / complex(kf*(kf+1), 0)
		psi1 += 1 / kf
		psi2 += 1 / (kf + 1)
	}
	i1 *= z / 2
	k0 = -lg*i0 + s0
	k1 = 1/z + lg*i1 - z/4*s1
	return i0, i1, k0, k1
}

// besselKSteed Steed 连分式计算 K0、K1，适用于 |z| >= 2
func besselKSteed(z complex128) (k0, k1 complex128) {
	b := 2 * (1 + z)
	d := 1 / b
	h, delh := d, d
	q1, q2 := complex(0, 0), complex(1, 0)
	a1 := complex(0.25, 0)
	q, c := a1, a1
	a := -a1
	s := 1 + q*delh
	for i := 2; i <= besselIter; i++ {
		a -= complex(float64(2*(i-1)), 0)
		c = -a * c / complex(float64(i), 0)
		qnew := (q1 - b*q2) / a
		q1, q2 = q2, qnew
		q += c * qnew
		b += 2
		d = 1 / (b + a*d)
		delh = (b*d - 1) * delh
		h += delh
		dels := q * delh
		s += dels
		if cmplx.Abs(dels) < besselEps*cmplx.Abs(s) {
			break
		}
	}
	h = a1 * h
	k0 = cmplx.Sqrt(complex(math.Pi, 0)/(2*z)) * cmplx.Exp(-z) / s
	k1 = k0 * (z + 0.5 - h) / z
	return k0, k1
}

// besselIRatio I1(z)/I0(z)，改进的 Lentz 连分式
func besselIRatio(z complex128) complex128 {
	const tiny = 1e-300
	zi := 1 / z
	f := 2 * zi
	if f == 0 {
		f = tiny
	}
	c, d := f, complex(0, 0)
	for i := 2; i <= besselIter; i++ {
		bi := complex(float64(2*i), 0) * zi
		d = bi + d
		if d == 0 {
			d = tiny
		}
		c = bi + 1/c
		if c == 0 {
			c = tiny
		}
		d = 1 / d
		del := c * d
		f *= del
		if cmplx.Abs(del-1) < besselEps {
			break
		}
	}
	return 1 / f
}

// BesselI 修正第一类贝塞尔函数 I0、I1
func BesselI(n int, z complex128) complex128 {
	i0, i1, _, _ := BesselIK01(z)
	if n == 0 {
		return i0
	}
	return i1
}

// BesselKn 返回 K0...Kn，阶数向上递推 K(m+1) = K(m-1) + 2m/z*K(m)
func BesselKn(n int, z complex128) []complex128 {
	_, _, k0, k1 := BesselIK01(z)
	out := make([]complex128, n+1)
	out[0] = k0
	if n == 0 {
		return out
	}
	out[1] = k1
	for m := 1; m < n; m++ {
		out[m+1] = out[m-1] + complex(float64(2*m), 0)/z*out[m]
	}
	return out
}

// asymptotic 大参数渐近展开前四项 1 + a/(8z) + ...
func asymptotic(z complex128, n int) complex128 {
	mu := float64(4 * n * n)
	w := 8 * z
	a1 := complex(mu-1, 0)
	a2 := a1 * complex(mu-9, 0)
	a3 := a2 * complex(mu-25, 0)
	return 1 + a1/w + a2/(2*w*w) + a3/(6*w*w*w)
}

// BesselK2 大参数下 Kn1(z)/Kn2(z) 的近似
func BesselK2(z complex128, n1, n2 int) complex128 {
	return asymptotic(z, n1) / asymptotic(z, n2)
}

// BesselIK 大参数下 In1(z1)*Kn2(z2) 的近似
func BesselIK(z1 complex128, n1 int, z2 complex128, n2 int) complex128 {
	a := complex(float64(4*n1*n1-1), 0) / (8 * z1)
	b := complex(float64(4*n2*n2-1), 0) / (8 * z2)
	return cmplx.Exp(z1-z2) / 2 / cmplx.Sqrt(z1*z2) * (1 - a + b - a*b)
}
