package element

import (
	"math"

	"github.com/notargets/gomultigrid/utils"
)

// Simplex2DP evaluates the (i,j) Dubiner orthonormal basis term on the
// standard triangle (r,s in [-1,1], r+s <= 0) at each point of R,S.
func Simplex2DP(R, S utils.Vector, i, j int) (P []float64) {
	var (
		A, B = RStoAB(R, S)
		Np   = A.Len()
		bd   = B.DataP
	)
	h1 := JacobiP(A, 0, 0, i)
	h2 := JacobiP(B, float64(2*i+1), 0, j)
	P = make([]float64, Np)
	sq2 := math.Sqrt(2)
	for ii := range h1 {
		P[ii] = sq2 * h1[ii] * h2[ii] * utils.POW(1-bd[ii], i)
	}
	return
}

// Vandermonde2D builds the generalized Vandermonde matrix of the Dubiner
// basis up to total degree N at the points of R,S.
func Vandermonde2D(N int, R, S utils.Vector) (V2D utils.Matrix) {
	V2D = utils.NewMatrix(R.Len(), (N+1)*(N+2)/2)
	var sk int
	for i := 0; i <= N; i++ {
		for j := 0; j <= (N - i); j++ {
			V2D.SetCol(sk, Simplex2DP(R, S, i, j))
			sk++
		}
	}
	return
}

// RStoAB maps simplex coordinates to the collapsed tensor coordinates used
// by the Jacobi recurrences.
func RStoAB(R, S utils.Vector) (a, b utils.Vector) {
	var (
		Np     = R.Len()
		rd, sd = R.DataP, S.DataP
	)
	ad, bd := make([]float64, Np), make([]float64, Np)
	for n, sval := range sd {
		if sval != 1 {
			ad[n] = 2*(1+rd[n])/(1-sval) - 1
		} else {
			ad[n] = -1
		}
		bd[n] = sval
	}
	a, b = utils.NewVector(Np, ad), utils.NewVector(Np, bd)
	return
}
