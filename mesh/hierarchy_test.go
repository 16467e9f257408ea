package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeshHierarchy(t *testing.T) {
	// interval: cells double per level, child ordinals alternate
	{
		mh, err := NewMeshHierarchy(NewUnitIntervalMesh(4), 2, 1)
		assert.NoError(t, err)
		assert.Equal(t, 3, mh.NumLevels())
		assert.Equal(t, 4, mh.Meshes[0].NumCells())
		assert.Equal(t, 8, mh.Meshes[1].NumCells())
		assert.Equal(t, 16, mh.Meshes[2].NumCells())
		for f, cp := range mh.Parents[0] {
			assert.Equal(t, f/2, cp.Cell)
			assert.Equal(t, f%2, cp.Child)
		}
	}
	// triangle: 4 children per cell, shared edge midpoints dedup exactly
	{
		mh, err := NewMeshHierarchy(NewUnitSquareMesh(1, 1), 1, 1)
		assert.NoError(t, err)
		fine := mh.Meshes[1]
		assert.Equal(t, 8, fine.NumCells())
		// 4 corner verts plus one midpoint per unique edge (5 edges)
		assert.Equal(t, 9, fine.NumVerts())
	}
	// quad: 4 children, shared edge midpoints and one center per cell
	{
		mh, err := NewMeshHierarchy(NewUnitQuadMesh(2, 2), 1, 1)
		assert.NoError(t, err)
		fine := mh.Meshes[1]
		assert.Equal(t, 16, fine.NumCells())
		// 9 corners + 12 edge midpoints + 4 centers
		assert.Equal(t, 25, fine.NumVerts())
	}
	// parent maps carry fine vertices onto the same physical points
	{
		for _, base := range []*Mesh{
			NewUnitIntervalMesh(3),
			NewUnitSquareMesh(2, 2),
			NewUnitQuadMesh(2, 2),
		} {
			mh, err := NewMeshHierarchy(base, 2, 1)
			assert.NoError(t, err)
			for l := 0; l < 2; l++ {
				coarse, fine := mh.Meshes[l], mh.Meshes[l+1]
				for f, cp := range mh.Parents[l] {
					for vi, rv := range fine.Kind.RefVerts() {
						pr, ps := cp.Map.Apply(rv[0], rv[1])
						px, py := coarse.PhysCoord(cp.Cell, pr, ps)
						fx, fy := fine.VertCoord(fine.EToV[f][vi])
						assert.True(t, nearAbs(px, fx))
						assert.True(t, nearAbs(py, fy))
					}
				}
			}
		}
	}
}

func TestRefinementsPerLevel(t *testing.T) {
	// two steps per level give the same fine mesh as two single-step levels
	{
		base := NewUnitSquareMesh(2, 2)
		single, err := NewMeshHierarchy(base, 2, 1)
		assert.NoError(t, err)
		double, err := NewMeshHierarchy(base, 1, 2)
		assert.NoError(t, err)
		assert.Equal(t, 2, double.NumLevels())
		f1, f2 := single.Meshes[2], double.Meshes[1]
		assert.Equal(t, f1.NumCells(), f2.NumCells())
		assert.Equal(t, f1.NumVerts(), f2.NumVerts())
		assert.Equal(t, f1.EToV, f2.EToV)
	}
	// the composed parent map lands fine vertices on the ancestor exactly
	{
		base := NewUnitIntervalMesh(2)
		mh, err := NewMeshHierarchy(base, 1, 3)
		assert.NoError(t, err)
		fine := mh.Meshes[1]
		assert.Equal(t, 16, fine.NumCells())
		for f, cp := range mh.Parents[0] {
			assert.Equal(t, f/8, cp.Cell)
			assert.Equal(t, f%8, cp.Child)
			pr, _ := cp.Map.Apply(0, 0)
			px, _ := base.PhysCoord(cp.Cell, pr, 0)
			fx, _ := fine.VertCoord(fine.EToV[f][0])
			assert.True(t, nearAbs(px, fx))
		}
	}
}

func TestHierarchyConfigErrors(t *testing.T) {
	{
		_, err := NewMeshHierarchy(NewUnitIntervalMesh(2), -1, 1)
		assert.Error(t, err)
		assert.IsType(t, &ConfigurationError{}, err)
	}
	{
		_, err := NewMeshHierarchy(NewUnitIntervalMesh(2), 1, 0)
		assert.Error(t, err)
		assert.IsType(t, &ConfigurationError{}, err)
	}
	{
		_, err := NewExtrudedMeshHierarchy(&MeshHierarchy{}, 0)
		assert.Error(t, err)
	}
}

func TestExtrudedMesh(t *testing.T) {
	{
		mh, err := NewMeshHierarchy(NewUnitIntervalMesh(2), 1, 1)
		assert.NoError(t, err)
		emh, err := NewExtrudedMeshHierarchy(mh, 3)
		assert.NoError(t, err)
		assert.Equal(t, 2, emh.NumLevels())
		em := emh.Meshes[0]
		assert.Equal(t, 6, em.NumCells())
		assert.Equal(t, 2, em.Dim())
		baseCell, layer := em.CellColumn(5)
		assert.Equal(t, 1, baseCell)
		assert.Equal(t, 2, layer)
		// vertical coordinate spans the unit interval across layers
		_, _, z0 := em.PhysCoord(0, 0, 0, 0)
		_, _, z1 := em.PhysCoord(2, 0, 0, 1)
		assert.True(t, nearAbs(z0, 0))
		assert.True(t, nearAbs(z1, 1))
		x, _, zm := em.PhysCoord(4, 0.5, 0, 0.5)
		assert.True(t, nearAbs(x, 0.75))
		assert.True(t, nearAbs(zm, 0.5))
	}
}
