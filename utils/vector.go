package utils

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V     *mat.VecDense
	DataP []float64
}

func NewVector(n int, dataO ...[]float64) (R Vector) {
	var v *mat.VecDense
	if n == 0 {
		// gonum refuses zero-length vectors
		return Vector{DataP: []float64{}}
	}
	if len(dataO) != 0 {
		v = mat.NewVecDense(n, dataO[0])
	} else {
		v = mat.NewVecDense(n, make([]float64, n))
	}
	R = Vector{
		V:     v,
		DataP: v.RawVector().Data,
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int {
	if v.V == nil {
		return 0
	}
	return v.V.Len()
}

// Chainable (extended) methods
func (v Vector) Set(i int, val float64) Vector {
	v.DataP[i] = val
	return v
}

func (v Vector) SetAll(val float64) Vector {
	for i := range v.DataP {
		v.DataP[i] = val
	}
	return v
}

func (v Vector) Copy() (R Vector) {
	R = NewVector(v.Len())
	copy(R.DataP, v.DataP)
	return
}

func (v Vector) Scale(a float64) Vector {
	for i := range v.DataP {
		v.DataP[i] *= a
	}
	return v
}

func (v Vector) AddScalar(a float64) Vector {
	for i := range v.DataP {
		v.DataP[i] += a
	}
	return v
}

func (v Vector) Apply(f func(float64) float64) Vector {
	for i, val := range v.DataP {
		v.DataP[i] = f(val)
	}
	return v
}

func (v Vector) Linspace(xmin, xmax float64) Vector {
	var (
		N  = v.Len()
		dx = (xmax - xmin) / float64(N-1)
	)
	for i := range v.DataP {
		v.DataP[i] = xmin + float64(i)*dx
	}
	return v
}

func (v Vector) Min() (min float64) {
	min = v.DataP[0]
	for _, val := range v.DataP {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	max = v.DataP[0]
	for _, val := range v.DataP {
		if val > max {
			max = val
		}
	}
	return
}
