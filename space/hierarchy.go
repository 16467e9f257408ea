package space

import (
	log "github.com/sirupsen/logrus"

	"github.com/notargets/gomultigrid/element"
	"github.com/notargets/gomultigrid/mesh"
)

// FunctionSpaceHierarchy instantiates one FunctionSpace per mesh level, all
// sharing the same element descriptor. Spaces are ordered coarsest to
// finest and immutable after construction.
type FunctionSpaceHierarchy struct {
	MeshH *mesh.MeshHierarchy
	ExtH  *mesh.ExtrudedMeshHierarchy

	Family     element.Family
	Degree     int
	Components int

	Spaces []*FunctionSpace
}

func (h *FunctionSpaceHierarchy) NumLevels() int {
	return len(h.Spaces)
}

func (h *FunctionSpaceHierarchy) Space(level int) *FunctionSpace {
	return h.Spaces[level]
}

// NewFunctionSpaceHierarchy builds a scalar CG/DG space on every level of
// the mesh hierarchy.
func NewFunctionSpaceHierarchy(mh *mesh.MeshHierarchy, family element.Family, degree int) (*FunctionSpaceHierarchy, error) {
	return newHierarchy(mh, family, degree, 1)
}

// NewVectorFunctionSpaceHierarchy builds a vector-valued hierarchy with one
// component per geometric dimension.
func NewVectorFunctionSpaceHierarchy(mh *mesh.MeshHierarchy, family element.Family, degree int) (*FunctionSpaceHierarchy, error) {
	return newHierarchy(mh, family, degree, mh.Meshes[0].Kind.Dim())
}

func newHierarchy(mh *mesh.MeshHierarchy, family element.Family, degree, components int) (h *FunctionSpaceHierarchy, err error) {
	h = &FunctionSpaceHierarchy{
		MeshH:      mh,
		Family:     family,
		Degree:     degree,
		Components: components,
	}
	for l, m := range mh.Meshes {
		var fs *FunctionSpace
		if fs, err = newSpace(m, family, degree, components); err != nil {
			return nil, err
		}
		fs.Hier, fs.Level = h, l
		h.Spaces = append(h.Spaces, fs)
		log.Debugf("%s%d space level %d: %d nodes, %d components",
			family, degree, l, fs.NumNodes, components)
	}
	return
}

// NewExtrudedFunctionSpaceHierarchy builds a scalar space hierarchy over an
// extruded mesh hierarchy; the vertical layer structure is identical at
// every level.
func NewExtrudedFunctionSpaceHierarchy(emh *mesh.ExtrudedMeshHierarchy, family element.Family, degree int) (*FunctionSpaceHierarchy, error) {
	return newExtrudedHierarchy(emh, family, degree, 1)
}

// NewExtrudedVectorFunctionSpaceHierarchy builds a vector-valued extruded
// hierarchy with one component per geometric dimension including the
// vertical.
func NewExtrudedVectorFunctionSpaceHierarchy(emh *mesh.ExtrudedMeshHierarchy, family element.Family, degree int) (*FunctionSpaceHierarchy, error) {
	return newExtrudedHierarchy(emh, family, degree, emh.Meshes[0].Dim())
}

func newExtrudedHierarchy(emh *mesh.ExtrudedMeshHierarchy, family element.Family, degree, components int) (h *FunctionSpaceHierarchy, err error) {
	h = &FunctionSpaceHierarchy{
		ExtH:       emh,
		Family:     family,
		Degree:     degree,
		Components: components,
	}
	for l, em := range emh.Meshes {
		var fs *FunctionSpace
		if fs, err = newExtrudedSpace(em, family, degree, components); err != nil {
			return nil, err
		}
		fs.Hier, fs.Level = h, l
		h.Spaces = append(h.Spaces, fs)
	}
	return
}

// parents returns the fine-to-coarse cell map between base-mesh levels
// coarseLevel and coarseLevel+1.
func (h *FunctionSpaceHierarchy) parents(coarseLevel int) []mesh.CellParent {
	if h.ExtH != nil {
		return h.ExtH.Base.Parents[coarseLevel]
	}
	return h.MeshH.Parents[coarseLevel]
}
