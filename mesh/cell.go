package mesh

import (
	"fmt"
)

// CellKind enumerates the supported reference cell topologies. The set is
// closed: hierarchy construction rejects anything else up front.
type CellKind uint8

const (
	Interval CellKind = iota
	Triangle
	Quad
)

func (k CellKind) String() string {
	switch k {
	case Interval:
		return "interval"
	case Triangle:
		return "triangle"
	case Quad:
		return "quad"
	}
	return fmt.Sprintf("CellKind(%d)", uint8(k))
}

func (k CellKind) Dim() int {
	if k == Interval {
		return 1
	}
	return 2
}

func (k CellKind) NumVerts() int {
	switch k {
	case Interval:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	}
	return 0
}

func (k CellKind) NumChildren() int {
	if k == Interval {
		return 2
	}
	return 4
}

// RefVerts returns the reference-domain vertex coordinates of the unit cell:
// interval [0,1], triangle (0,0)-(1,0)-(0,1), quad [0,1]^2 counterclockwise.
func (k CellKind) RefVerts() [][2]float64 {
	switch k {
	case Interval:
		return [][2]float64{{0, 0}, {1, 0}}
	case Triangle:
		return [][2]float64{{0, 0}, {1, 0}, {0, 1}}
	case Quad:
		return [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	}
	return nil
}

// EdgeVerts returns the local vertex pairs bounding each edge of a 2D cell.
func (k CellKind) EdgeVerts() [][2]int {
	switch k {
	case Triangle:
		return [][2]int{{0, 1}, {1, 2}, {0, 2}}
	case Quad:
		return [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	}
	return nil
}

// Affine is a map p -> A p + B between reference domains, dimension 1 or 2.
type Affine struct {
	A   [2][2]float64
	B   [2]float64
	Dim int
}

func IdentityAffine(dim int) (a Affine) {
	a.Dim = dim
	a.A[0][0], a.A[1][1] = 1, 1
	return
}

func (a Affine) Apply(r, s float64) (pr, ps float64) {
	pr = a.A[0][0]*r + a.A[0][1]*s + a.B[0]
	ps = a.A[1][0]*r + a.A[1][1]*s + a.B[1]
	return
}

// Compose returns the map x -> a(inner(x)).
func (a Affine) Compose(inner Affine) (c Affine) {
	c.Dim = a.Dim
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			c.A[i][j] = a.A[i][0]*inner.A[0][j] + a.A[i][1]*inner.A[1][j]
		}
		c.B[i] = a.A[i][0]*inner.B[0] + a.A[i][1]*inner.B[1] + a.B[i]
	}
	return
}

// ChildCell describes one child produced by a single uniform refinement of
// its parent. Verts holds, per child vertex, the parent local vertex set
// whose average locates it (one id for a parent vertex, two for an edge
// midpoint, four for the quad center). ToParent maps child reference
// coordinates into the parent reference domain.
type ChildCell struct {
	Verts    [][]int
	ToParent Affine
}

// RefinementRule is the fixed subdivision table for one cell kind.
type RefinementRule struct {
	Kind     CellKind
	Children []ChildCell
}

func scaleShift(dim int, scale, bx, by float64) (a Affine) {
	a.Dim = dim
	a.A[0][0], a.A[1][1] = scale, scale
	a.B[0], a.B[1] = bx, by
	return
}

// RefinementRuleFor returns the uniform refinement rule for the given cell
// kind: bisection for intervals, four similarity children for triangles
// (three corner copies and the central midpoint triangle), per-axis
// bisection for quads.
func RefinementRuleFor(kind CellKind) (rule RefinementRule, err error) {
	rule.Kind = kind
	switch kind {
	case Interval:
		rule.Children = []ChildCell{
			{Verts: [][]int{{0}, {0, 1}}, ToParent: scaleShift(1, 0.5, 0, 0)},
			{Verts: [][]int{{0, 1}, {1}}, ToParent: scaleShift(1, 0.5, 0.5, 0)},
		}
	case Triangle:
		rule.Children = []ChildCell{
			{Verts: [][]int{{0}, {0, 1}, {0, 2}}, ToParent: scaleShift(2, 0.5, 0, 0)},
			{Verts: [][]int{{0, 1}, {1}, {1, 2}}, ToParent: scaleShift(2, 0.5, 0.5, 0)},
			{Verts: [][]int{{0, 2}, {1, 2}, {2}}, ToParent: scaleShift(2, 0.5, 0, 0.5)},
			// Central triangle: point reflection through the centroid,
			// scaled by 1/2, keeps positive orientation.
			{Verts: [][]int{{1, 2}, {0, 2}, {0, 1}}, ToParent: scaleShift(2, -0.5, 0.5, 0.5)},
		}
	case Quad:
		ctr := []int{0, 1, 2, 3}
		rule.Children = []ChildCell{
			{Verts: [][]int{{0}, {0, 1}, ctr, {3, 0}}, ToParent: scaleShift(2, 0.5, 0, 0)},
			{Verts: [][]int{{0, 1}, {1}, {1, 2}, ctr}, ToParent: scaleShift(2, 0.5, 0.5, 0)},
			{Verts: [][]int{ctr, {1, 2}, {2}, {2, 3}}, ToParent: scaleShift(2, 0.5, 0.5, 0.5)},
			{Verts: [][]int{{3, 0}, ctr, {2, 3}, {3}}, ToParent: scaleShift(2, 0.5, 0, 0.5)},
		}
	default:
		err = &ConfigurationError{Reason: fmt.Sprintf("unsupported cell kind %v", kind)}
	}
	return
}
