package element

import (
	"fmt"

	"github.com/notargets/gomultigrid/mesh"
	"github.com/notargets/gomultigrid/utils"
)

// Family selects the continuity class of a Lagrange element.
type Family uint8

const (
	CG Family = iota // continuous Galerkin, DOFs shared at coincident entities
	DG               // discontinuous Galerkin, DOFs private per cell
)

func (f Family) String() string {
	if f == CG {
		return "CG"
	}
	return "DG"
}

func ParseFamily(s string) (f Family, err error) {
	switch s {
	case "CG", "cg", "Lagrange":
		f = CG
	case "DG", "dg", "Discontinuous Lagrange":
		f = DG
	default:
		err = fmt.Errorf("unknown element family %q", s)
	}
	return
}

// NodeEntityKind classifies a reference node by the topological entity it
// sits on, which determines DOF sharing for CG spaces.
type NodeEntityKind uint8

const (
	NodeVertex NodeEntityKind = iota
	NodeEdge
	NodeInterior
)

// NodeEntity carries the classification of one reference node: the local
// vertex or edge number and, for edge nodes, the lattice position measured
// from the edge's first local vertex.
type NodeEntity struct {
	Kind  NodeEntityKind
	Index int
	Param int
}

// NodalBasis is an equispaced-lattice Lagrange basis on the unit reference
// cell, with nodal evaluation at arbitrary reference points through the
// inverse of the orthogonal-basis Vandermonde matrix. Degree 0 places a
// single node at the centroid.
type NodalBasis struct {
	Kind     mesh.CellKind
	Degree   int
	Np       int
	R, S     []float64
	Entities []NodeEntity
	Vinv     utils.Matrix // interval and triangle
	Vinv1    utils.Matrix // quad 1D factor basis
}

func NewNodalBasis(kind mesh.CellKind, degree int) (nb *NodalBasis, err error) {
	if degree < 0 {
		err = fmt.Errorf("element degree must be non-negative, have %d", degree)
		return
	}
	nb = &NodalBasis{
		Kind:   kind,
		Degree: degree,
	}
	switch kind {
	case mesh.Interval:
		nb.buildInterval()
	case mesh.Triangle:
		nb.buildTriangle()
	case mesh.Quad:
		nb.buildQuad()
	default:
		return nil, fmt.Errorf("unsupported cell kind %v", kind)
	}
	return
}

func (nb *NodalBasis) buildInterval() {
	var (
		d = nb.Degree
	)
	if d == 0 {
		nb.Np = 1
		nb.R = []float64{0.5}
		nb.Entities = []NodeEntity{{Kind: NodeInterior}}
	} else {
		nb.Np = d + 1
		nb.R = make([]float64, nb.Np)
		nb.Entities = make([]NodeEntity, nb.Np)
		for i := 0; i <= d; i++ {
			nb.R[i] = float64(i) / float64(d)
			switch i {
			case 0:
				nb.Entities[i] = NodeEntity{Kind: NodeVertex, Index: 0}
			case d:
				nb.Entities[i] = NodeEntity{Kind: NodeVertex, Index: 1}
			default:
				nb.Entities[i] = NodeEntity{Kind: NodeInterior, Param: i}
			}
		}
	}
	V := Vandermonde1D(nb.Degree, unitToBi(nb.R))
	nb.Vinv = V.InverseWithCheck()
}

func (nb *NodalBasis) buildTriangle() {
	var (
		d = nb.Degree
	)
	if d == 0 {
		nb.Np = 1
		nb.R = []float64{1. / 3.}
		nb.S = []float64{1. / 3.}
		nb.Entities = []NodeEntity{{Kind: NodeInterior}}
	} else {
		nb.Np = (d + 1) * (d + 2) / 2
		for j := 0; j <= d; j++ {
			for i := 0; i <= d-j; i++ {
				nb.R = append(nb.R, float64(i)/float64(d))
				nb.S = append(nb.S, float64(j)/float64(d))
				nb.Entities = append(nb.Entities, classifyTriNode(i, j, d))
			}
		}
	}
	V := Vandermonde2D(nb.Degree, unitToBi(nb.R), unitToBi(nb.S))
	nb.Vinv = V.InverseWithCheck()
}

func classifyTriNode(i, j, d int) (ne NodeEntity) {
	switch {
	case i == 0 && j == 0:
		ne = NodeEntity{Kind: NodeVertex, Index: 0}
	case i == d && j == 0:
		ne = NodeEntity{Kind: NodeVertex, Index: 1}
	case i == 0 && j == d:
		ne = NodeEntity{Kind: NodeVertex, Index: 2}
	case j == 0:
		ne = NodeEntity{Kind: NodeEdge, Index: 0, Param: i}
	case i+j == d:
		ne = NodeEntity{Kind: NodeEdge, Index: 1, Param: j}
	case i == 0:
		ne = NodeEntity{Kind: NodeEdge, Index: 2, Param: j}
	default:
		ne = NodeEntity{Kind: NodeInterior, Param: i + j*(d+1)}
	}
	return
}

func (nb *NodalBasis) buildQuad() {
	var (
		d = nb.Degree
	)
	if d == 0 {
		nb.Np = 1
		nb.R = []float64{0.5}
		nb.S = []float64{0.5}
		nb.Entities = []NodeEntity{{Kind: NodeInterior}}
		nb.Vinv1 = Vandermonde1D(0, unitToBi([]float64{0.5})).InverseWithCheck()
		return
	}
	nb.Np = (d + 1) * (d + 1)
	line := make([]float64, d+1)
	for i := 0; i <= d; i++ {
		line[i] = float64(i) / float64(d)
	}
	for j := 0; j <= d; j++ {
		for i := 0; i <= d; i++ {
			nb.R = append(nb.R, line[i])
			nb.S = append(nb.S, line[j])
			nb.Entities = append(nb.Entities, classifyQuadNode(i, j, d))
		}
	}
	nb.Vinv1 = Vandermonde1D(d, unitToBi(line)).InverseWithCheck()
}

func classifyQuadNode(i, j, d int) (ne NodeEntity) {
	onX := i == 0 || i == d
	onY := j == 0 || j == d
	switch {
	case onX && onY:
		var v int
		switch {
		case i == 0 && j == 0:
			v = 0
		case i == d && j == 0:
			v = 1
		case i == d && j == d:
			v = 2
		default:
			v = 3
		}
		ne = NodeEntity{Kind: NodeVertex, Index: v}
	case j == 0:
		ne = NodeEntity{Kind: NodeEdge, Index: 0, Param: i}
	case i == d:
		ne = NodeEntity{Kind: NodeEdge, Index: 1, Param: j}
	case j == d:
		ne = NodeEntity{Kind: NodeEdge, Index: 2, Param: d - i}
	case i == 0:
		ne = NodeEntity{Kind: NodeEdge, Index: 3, Param: d - j}
	default:
		ne = NodeEntity{Kind: NodeInterior, Param: i + j*(d+1)}
	}
	return
}

// EvalBasis evaluates all nodal basis functions at the unit reference point
// (r,s); s is ignored for intervals.
func (nb *NodalBasis) EvalBasis(r, s float64) (phi []float64) {
	switch nb.Kind {
	case mesh.Interval:
		p := jacobiRow(2*r-1, nb.Degree)
		phi = applyVinv(p, nb.Vinv)
	case mesh.Triangle:
		R := utils.NewVector(1, []float64{2*r - 1})
		S := utils.NewVector(1, []float64{2*s - 1})
		p := make([]float64, nb.Np)
		var sk int
		for i := 0; i <= nb.Degree; i++ {
			for j := 0; j <= nb.Degree-i; j++ {
				p[sk] = Simplex2DP(R, S, i, j)[0]
				sk++
			}
		}
		phi = applyVinv(p, nb.Vinv)
	case mesh.Quad:
		lx := applyVinv(jacobiRow(2*r-1, nb.Degree), nb.Vinv1)
		ly := applyVinv(jacobiRow(2*s-1, nb.Degree), nb.Vinv1)
		phi = make([]float64, nb.Np)
		n1 := nb.Degree + 1
		for j := 0; j < n1; j++ {
			for i := 0; i < n1; i++ {
				phi[i+j*n1] = lx[i] * ly[j]
			}
		}
	}
	return
}

func jacobiRow(r float64, N int) (p []float64) {
	R := utils.NewVector(1, []float64{r})
	p = make([]float64, N+1)
	for j := 0; j <= N; j++ {
		p[j] = JacobiP(R, 0, 0, j)[0]
	}
	return
}

// applyVinv forms the nodal basis row phi = p * Vinv from the orthogonal
// basis row p.
func applyVinv(p []float64, Vinv utils.Matrix) (phi []float64) {
	var (
		nr, nc = Vinv.Dims()
	)
	phi = make([]float64, nc)
	for k := 0; k < nc; k++ {
		var sum float64
		for m := 0; m < nr; m++ {
			sum += p[m] * Vinv.At(m, k)
		}
		phi[k] = sum
	}
	return
}

func unitToBi(x []float64) (R utils.Vector) {
	R = utils.NewVector(len(x))
	for i, v := range x {
		R.DataP[i] = 2*v - 1
	}
	return
}
