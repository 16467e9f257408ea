package element

import (
	"github.com/notargets/gomultigrid/mesh"
)

// TensorBasis is the extruded element: a horizontal NodalBasis tensored with
// a vertical interval lattice of the same degree. Node n factors as
// n = h + H.Np*k with h the horizontal node and k the vertical node.
type TensorBasis struct {
	H  *NodalBasis
	V  *NodalBasis
	Np int
}

func NewTensorBasis(kind mesh.CellKind, degree int) (tb *TensorBasis, err error) {
	var (
		h, v *NodalBasis
	)
	if h, err = NewNodalBasis(kind, degree); err != nil {
		return
	}
	if v, err = NewNodalBasis(mesh.Interval, degree); err != nil {
		return
	}
	tb = &TensorBasis{
		H:  h,
		V:  v,
		Np: h.Np * v.Np,
	}
	return
}

func (tb *TensorBasis) Node(n int) (h, k int) {
	h, k = n%tb.H.Np, n/tb.H.Np
	return
}

// NodeCoord returns the unit reference coordinates of node n: horizontal
// (r,s) plus vertical z within the layer.
func (tb *TensorBasis) NodeCoord(n int) (r, s, z float64) {
	h, k := tb.Node(n)
	r = tb.H.R[h]
	if tb.H.S != nil {
		s = tb.H.S[h]
	}
	z = tb.V.R[k]
	return
}

// EvalBasis evaluates all tensor-product basis functions at horizontal
// reference point (r,s) and vertical point z.
func (tb *TensorBasis) EvalBasis(r, s, z float64) (phi []float64) {
	var (
		ph = tb.H.EvalBasis(r, s)
		pv = tb.V.EvalBasis(z, 0)
	)
	phi = make([]float64, tb.Np)
	for k := 0; k < tb.V.Np; k++ {
		for h := 0; h < tb.H.Np; h++ {
			phi[h+k*tb.H.Np] = ph[h] * pv[k]
		}
	}
	return
}
