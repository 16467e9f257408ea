package space

import (
	"fmt"

	"github.com/notargets/gomultigrid/element"
	"github.com/notargets/gomultigrid/mesh"
	"github.com/notargets/gomultigrid/utils"
)

// FunctionSpace is a mesh plus an element descriptor with a concrete DOF
// numbering. CG spaces share scalar node ids across cells at coincident
// topological entities through an entity-keyed arena; DG spaces number each
// cell's nodes privately. Vector values interleave components per node.
type FunctionSpace struct {
	Mesh *mesh.Mesh         // nil when extruded
	Ext  *mesh.ExtrudedMesh // nil when planar

	Family     element.Family
	Degree     int
	Components int

	Basis  *element.NodalBasis  // planar
	TBasis *element.TensorBasis // extruded

	CellDofs []utils.Index // per cell: local node -> scalar node id
	Owned    []utils.Index // per cell: local nodes first numbered by this cell
	NumNodes int

	Hier  *FunctionSpaceHierarchy
	Level int
}

func (fs *FunctionSpace) NumCells() int {
	if fs.Ext != nil {
		return fs.Ext.NumCells()
	}
	return fs.Mesh.NumCells()
}

// NumDofs is the total scalar coefficient count including components.
func (fs *FunctionSpace) NumDofs() int {
	return fs.NumNodes * fs.Components
}

// NodesPerCell is the scalar node count of one cell.
func (fs *FunctionSpace) NodesPerCell() int {
	if fs.Ext != nil {
		return fs.TBasis.Np
	}
	return fs.Basis.Np
}

// dofKey identifies a shared DOF slot by topological entity. The kind tag
// separates vertex, edge and interior entities for planar and extruded
// spaces so keys never collide across classes.
type dofKey struct {
	kind       uint8
	a, b, c, d int
}

func newSpace(m *mesh.Mesh, family element.Family, degree, components int) (fs *FunctionSpace, err error) {
	if err = checkElement(family, degree); err != nil {
		return
	}
	var basis *element.NodalBasis
	if basis, err = element.NewNodalBasis(m.Kind, degree); err != nil {
		return nil, &mesh.ConfigurationError{Reason: err.Error()}
	}
	fs = &FunctionSpace{
		Mesh:       m,
		Family:     family,
		Degree:     degree,
		Components: components,
		Basis:      basis,
	}
	fs.numberDofs()
	return
}

func newExtrudedSpace(em *mesh.ExtrudedMesh, family element.Family, degree, components int) (fs *FunctionSpace, err error) {
	if err = checkElement(family, degree); err != nil {
		return
	}
	var tb *element.TensorBasis
	if tb, err = element.NewTensorBasis(em.Base.Kind, degree); err != nil {
		return nil, &mesh.ConfigurationError{Reason: err.Error()}
	}
	fs = &FunctionSpace{
		Ext:        em,
		Family:     family,
		Degree:     degree,
		Components: components,
		TBasis:     tb,
	}
	fs.numberDofs()
	return
}

func checkElement(family element.Family, degree int) (err error) {
	if degree < 0 {
		return &mesh.ConfigurationError{Reason: fmt.Sprintf("negative element degree %d", degree)}
	}
	if family == element.CG && degree == 0 {
		return &mesh.ConfigurationError{Reason: "continuous elements need degree >= 1"}
	}
	return
}

func (fs *FunctionSpace) numberDofs() {
	var (
		K  = fs.NumCells()
		Np = fs.NodesPerCell()
	)
	fs.CellDofs = make([]utils.Index, K)
	fs.Owned = make([]utils.Index, K)
	if fs.Family == element.DG {
		for k := 0; k < K; k++ {
			fs.CellDofs[k] = utils.NewRange(k*Np, (k+1)*Np-1)
			fs.Owned[k] = utils.NewRange(0, Np-1)
		}
		fs.NumNodes = K * Np
		return
	}
	arena := make(map[dofKey]int)
	for k := 0; k < K; k++ {
		fs.CellDofs[k] = utils.NewIndex(Np)
		for n := 0; n < Np; n++ {
			key := fs.nodeKey(k, n)
			id, ok := arena[key]
			if !ok {
				id = len(arena)
				arena[key] = id
				fs.Owned[k] = append(fs.Owned[k], n)
			}
			fs.CellDofs[k][n] = id
		}
	}
	fs.NumNodes = len(arena)
}

// nodeKey builds the sharing key of a CG node. Edge keys orient the lattice
// parameter from the smaller global vertex id so neighboring cells agree.
func (fs *FunctionSpace) nodeKey(k, n int) (key dofKey) {
	if fs.Ext != nil {
		return fs.extrudedNodeKey(k, n)
	}
	var (
		ent = fs.Basis.Entities[n]
	)
	switch ent.Kind {
	case element.NodeVertex:
		key = dofKey{kind: 0, a: fs.Mesh.EToV[k][ent.Index]}
	case element.NodeEdge:
		a, b, t := fs.orientEdge(fs.Mesh, k, ent)
		key = dofKey{kind: 1, a: a, b: b, c: t}
	default:
		key = dofKey{kind: 2, a: k, b: n}
	}
	return
}

func (fs *FunctionSpace) extrudedNodeKey(cc, n int) (key dofKey) {
	var (
		bc, layer = fs.Ext.CellColumn(cc)
		h, kv     = fs.TBasis.Node(n)
		ent       = fs.TBasis.H.Entities[h]
		vg        = layer*fs.Degree + kv
	)
	switch ent.Kind {
	case element.NodeVertex:
		key = dofKey{kind: 3, a: fs.Ext.Base.EToV[bc][ent.Index], d: vg}
	case element.NodeEdge:
		a, b, t := fs.orientEdge(fs.Ext.Base, bc, ent)
		key = dofKey{kind: 4, a: a, b: b, c: t, d: vg}
	default:
		key = dofKey{kind: 5, a: bc, b: h, d: vg}
	}
	return
}

func (fs *FunctionSpace) orientEdge(m *mesh.Mesh, k int, ent element.NodeEntity) (a, b, t int) {
	var (
		pair = m.Kind.EdgeVerts()[ent.Index]
	)
	a, b = m.EToV[k][pair[0]], m.EToV[k][pair[1]]
	t = ent.Param
	if a > b {
		a, b = b, a
		t = fs.Degree - t
	}
	return
}

// NodeCoords returns the unit reference coordinates of local node n; z is
// zero for planar spaces.
func (fs *FunctionSpace) NodeCoords(n int) (r, s, z float64) {
	if fs.Ext != nil {
		return fs.TBasis.NodeCoord(n)
	}
	r = fs.Basis.R[n]
	if fs.Basis.S != nil {
		s = fs.Basis.S[n]
	}
	return
}

// PhysCoords returns the physical coordinates of local node n of cell k,
// sized to the space's geometric dimension.
func (fs *FunctionSpace) PhysCoords(k, n int) (x []float64) {
	r, s, z := fs.NodeCoords(n)
	if fs.Ext != nil {
		px, py, pz := fs.Ext.PhysCoord(k, r, s, z)
		if fs.Ext.Base.Kind == mesh.Interval {
			return []float64{px, pz}
		}
		return []float64{px, py, pz}
	}
	px, py := fs.Mesh.PhysCoord(k, r, s)
	if fs.Mesh.Kind == mesh.Interval {
		return []float64{px}
	}
	return []float64{px, py}
}
