package utils

import (
	"math"
)

const (
	NODETOL = 1.e-10
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		return math.Pow(x, float64(pp))
	}
	if p < 0 {
		p = -pp
		flipped = true
	}
	y = 1
	for i := 0; i < p; i++ {
		y *= x
	}
	if flipped {
		y = 1. / y
	}
	return
}
