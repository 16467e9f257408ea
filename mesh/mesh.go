package mesh

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"

	"github.com/notargets/gomultigrid/utils"
)

// Mesh is an immutable set of cells of one topological kind with vertex
// coordinates and cell-to-vertex connectivity.
type Mesh struct {
	Kind   CellKind
	VX, VY utils.Vector // VY has zero length for interval meshes
	EToV   [][]int
}

func (m *Mesh) NumCells() int {
	return len(m.EToV)
}

func (m *Mesh) NumVerts() int {
	return m.VX.Len()
}

func (m *Mesh) VertCoord(v int) (x, y float64) {
	x = m.VX.AtVec(v)
	if m.Kind != Interval {
		y = m.VY.AtVec(v)
	}
	return
}

// PhysCoord maps reference coordinates (r,s) on cell k into physical space.
// Interval and triangle maps are affine; the quad map is bilinear.
func (m *Mesh) PhysCoord(k int, r, s float64) (x, y float64) {
	var (
		verts = m.EToV[k]
	)
	switch m.Kind {
	case Interval:
		xa := m.VX.AtVec(verts[0])
		xb := m.VX.AtVec(verts[1])
		x = xa + r*(xb-xa)
	case Triangle:
		x0, y0 := m.VertCoord(verts[0])
		x1, y1 := m.VertCoord(verts[1])
		x2, y2 := m.VertCoord(verts[2])
		x = x0 + r*(x1-x0) + s*(x2-x0)
		y = y0 + r*(y1-y0) + s*(y2-y0)
	case Quad:
		x0, y0 := m.VertCoord(verts[0])
		x1, y1 := m.VertCoord(verts[1])
		x2, y2 := m.VertCoord(verts[2])
		x3, y3 := m.VertCoord(verts[3])
		w0 := (1 - r) * (1 - s)
		w1 := r * (1 - s)
		w2 := r * s
		w3 := (1 - r) * s
		x = w0*x0 + w1*x1 + w2*x2 + w3*x3
		y = w0*y0 + w1*y1 + w2*y2 + w3*y3
	}
	return
}

// CellMeasure returns the length (1D) or area (2D) of cell k.
func (m *Mesh) CellMeasure(k int) (meas float64) {
	var (
		verts = m.EToV[k]
	)
	switch m.Kind {
	case Interval:
		meas = math.Abs(m.VX.AtVec(verts[1]) - m.VX.AtVec(verts[0]))
	case Triangle:
		x0, y0 := m.VertCoord(verts[0])
		x1, y1 := m.VertCoord(verts[1])
		x2, y2 := m.VertCoord(verts[2])
		meas = 0.5 * math.Abs((x1-x0)*(y2-y0)-(x2-x0)*(y1-y0))
	case Quad:
		// Shoelace over the four corners
		var sum float64
		n := len(verts)
		for i := 0; i < n; i++ {
			xi, yi := m.VertCoord(verts[i])
			xj, yj := m.VertCoord(verts[(i+1)%n])
			sum += xi*yj - xj*yi
		}
		meas = 0.5 * math.Abs(sum)
	}
	return
}

// Connect builds cell-to-cell and cell-to-face connectivity through a sparse
// face-to-vertex incidence product. Boundary faces carry -1 in EToE.
func (m *Mesh) Connect() (EToE, EToF [][]int) {
	var (
		K          = m.NumCells()
		Nv         = m.NumVerts()
		faceVerts  = m.faceVerts()
		NFaces     = len(faceVerts)
		NvPerFace  = len(faceVerts[0])
		TotalFaces = NFaces * K
	)
	SpFToVTmp := sparse.NewDOK(TotalFaces, Nv)
	var sk int
	for k := 0; k < K; k++ {
		for face := 0; face < NFaces; face++ {
			for _, lv := range faceVerts[face] {
				SpFToVTmp.Set(sk, m.EToV[k][lv], 1)
			}
			sk++
		}
	}
	SpFToV := SpFToVTmp.ToCSR()
	SpFToF := sparse.NewCSR(TotalFaces, TotalFaces, nil, nil, nil)
	SpFToF.Mul(SpFToV, SpFToV.T())

	EToE = make([][]int, K)
	EToF = make([][]int, K)
	for k := 0; k < K; k++ {
		EToE[k] = make([]int, NFaces)
		EToF[k] = make([]int, NFaces)
		for f := 0; f < NFaces; f++ {
			EToE[k][f] = -1
			EToF[k][f] = f
		}
	}
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if i == j || int(v) != NvPerFace {
			return
		}
		k1, f1 := i/NFaces, i%NFaces
		k2, f2 := j/NFaces, j%NFaces
		EToE[k1][f1] = k2
		EToF[k1][f1] = f2
	})
	return
}

func (m *Mesh) faceVerts() (fv [][]int) {
	switch m.Kind {
	case Interval:
		fv = [][]int{{0}, {1}}
	default:
		for _, e := range m.Kind.EdgeVerts() {
			fv = append(fv, []int{e[0], e[1]})
		}
	}
	return
}

// NewUnitIntervalMesh splits [0,1] into n equal cells.
func NewUnitIntervalMesh(n int) (m *Mesh) {
	if n < 1 {
		panic(fmt.Errorf("interval mesh needs at least one cell, have %d", n))
	}
	m = &Mesh{
		Kind: Interval,
		VX:   utils.NewVector(n + 1).Linspace(0, 1),
		VY:   utils.NewVector(0, []float64{}),
		EToV: make([][]int, n),
	}
	for k := 0; k < n; k++ {
		m.EToV[k] = []int{k, k + 1}
	}
	return
}

// NewUnitSquareMesh triangulates the unit square into an nx x ny grid with
// each grid square split along its lower-left to upper-right diagonal.
func NewUnitSquareMesh(nx, ny int) (m *Mesh) {
	VX, VY, vid := gridVerts(nx, ny)
	m = &Mesh{
		Kind: Triangle,
		VX:   VX,
		VY:   VY,
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v11, v01 := vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)
			m.EToV = append(m.EToV, []int{v00, v10, v11})
			m.EToV = append(m.EToV, []int{v00, v11, v01})
		}
	}
	return
}

// NewUnitQuadMesh covers the unit square with an nx x ny grid of quads.
func NewUnitQuadMesh(nx, ny int) (m *Mesh) {
	VX, VY, vid := gridVerts(nx, ny)
	m = &Mesh{
		Kind: Quad,
		VX:   VX,
		VY:   VY,
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m.EToV = append(m.EToV, []int{vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)})
		}
	}
	return
}

func gridVerts(nx, ny int) (VX, VY utils.Vector, vid func(i, j int) int) {
	if nx < 1 || ny < 1 {
		panic(fmt.Errorf("grid mesh needs at least one cell per axis, have %d x %d", nx, ny))
	}
	var (
		Nv = (nx + 1) * (ny + 1)
	)
	VX, VY = utils.NewVector(Nv), utils.NewVector(Nv)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			n := i + (nx+1)*j
			VX.DataP[n] = float64(i) / float64(nx)
			VY.DataP[n] = float64(j) / float64(ny)
		}
	}
	vid = func(i, j int) int { return i + (nx+1)*j }
	return
}
