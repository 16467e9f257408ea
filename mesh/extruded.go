package mesh

import (
	"fmt"
)

// ExtrudedMesh stacks Layers uniform copies of a base mesh along an extra
// vertical dimension, total height 1. Cell cc covers base cell cc/Layers at
// layer cc%Layers.
type ExtrudedMesh struct {
	Base   *Mesh
	Layers int
}

func (em *ExtrudedMesh) NumCells() int {
	return em.Base.NumCells() * em.Layers
}

func (em *ExtrudedMesh) CellColumn(cc int) (baseCell, layer int) {
	baseCell, layer = cc/em.Layers, cc%em.Layers
	return
}

// Dim is the geometric dimension including the vertical direction.
func (em *ExtrudedMesh) Dim() int {
	return em.Base.Kind.Dim() + 1
}

// PhysCoord maps reference coordinates (r,s) on the horizontal footprint and
// z in [0,1] within the layer to physical space. For an extruded interval
// the horizontal coordinate is x and y is unused.
func (em *ExtrudedMesh) PhysCoord(cc int, r, s, z float64) (x, y, zp float64) {
	baseCell, layer := em.CellColumn(cc)
	x, y = em.Base.PhysCoord(baseCell, r, s)
	zp = (float64(layer) + z) / float64(em.Layers)
	return
}

// ExtrudedMeshHierarchy wraps a MeshHierarchy with a layer count that is
// identical at every level: refinement applies only to the horizontal base.
type ExtrudedMeshHierarchy struct {
	Base   *MeshHierarchy
	Layers int
	Meshes []*ExtrudedMesh
}

func NewExtrudedMeshHierarchy(base *MeshHierarchy, layers int) (emh *ExtrudedMeshHierarchy, err error) {
	if layers < 1 {
		err = &ConfigurationError{Reason: fmt.Sprintf("extruded mesh needs at least one layer, have %d", layers)}
		return
	}
	emh = &ExtrudedMeshHierarchy{
		Base:   base,
		Layers: layers,
	}
	for _, m := range base.Meshes {
		emh.Meshes = append(emh.Meshes, &ExtrudedMesh{Base: m, Layers: layers})
	}
	return
}

func (emh *ExtrudedMeshHierarchy) NumLevels() int {
	return len(emh.Meshes)
}
