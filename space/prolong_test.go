package space

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomultigrid/element"
	"github.com/notargets/gomultigrid/mesh"
)

// fieldOfDegree builds a polynomial of total degree d replicated across
// components with a per-component factor, so transfers that are exact for
// degree d fields must reproduce it on every level.
func fieldOfDegree(d, components int) func(x []float64) []float64 {
	return func(x []float64) []float64 {
		v := 1.
		for _, xi := range x {
			v += math.Pow(xi, float64(d))
		}
		vals := make([]float64, components)
		for c := range vals {
			vals[c] = v * float64(c+1)
		}
		return vals
	}
}

// prolongChain interpolates on the coarsest level and prolongs through all
// levels, returning the finest-level function.
func prolongChain(t *testing.T, h *FunctionSpaceHierarchy, fn func(x []float64) []float64) (f *Function) {
	f = NewFunction(h.Space(0))
	assert.NoError(t, f.Interpolate(fn))
	for level := 1; level < h.NumLevels(); level++ {
		fine := NewFunction(h.Space(level))
		assert.NoError(t, Prolong(f, fine))
		f = fine
	}
	return
}

// assertMatchesInterpolant requires f to equal the direct interpolation of
// fn on its own space, entry by entry.
func assertMatchesInterpolant(t *testing.T, f *Function, fn func(x []float64) []float64) {
	want := NewFunction(f.Space)
	assert.NoError(t, want.Interpolate(fn))
	var maxDiff float64
	for i := range f.Data {
		if d := math.Abs(f.Data[i] - want.Data[i]); d > maxDiff {
			maxDiff = d
		}
	}
	assert.True(t, maxDiff < 1.e-08, "max deviation %g", maxDiff)
}

func TestProlongExactness(t *testing.T) {
	// degree-d fields survive two rounds of prolongation exactly, for all
	// mesh kinds, both families and scalar plus vector values
	bases := []*mesh.Mesh{
		mesh.NewUnitIntervalMesh(3),
		mesh.NewUnitSquareMesh(2, 2),
		mesh.NewUnitQuadMesh(2, 2),
	}
	cases := []struct {
		family  element.Family
		degrees []int
	}{
		{element.CG, []int{1, 2, 3}},
		{element.DG, []int{0, 1, 2}},
	}
	for _, base := range bases {
		mh, err := mesh.NewMeshHierarchy(base, 2, 1)
		assert.NoError(t, err)
		for _, tc := range cases {
			for _, d := range tc.degrees {
				// scalar
				h, err := NewFunctionSpaceHierarchy(mh, tc.family, d)
				assert.NoError(t, err)
				fn := fieldOfDegree(d, 1)
				f := prolongChain(t, h, fn)
				assertMatchesInterpolant(t, f, fn)
				// vector
				hv, err := NewVectorFunctionSpaceHierarchy(mh, tc.family, d)
				assert.NoError(t, err)
				fnv := fieldOfDegree(d, hv.Components)
				fv := prolongChain(t, hv, fnv)
				assertMatchesInterpolant(t, fv, fnv)
			}
		}
	}
}

func TestProlongIntervalCG2(t *testing.T) {
	// x^2 on ten cells passes through two levels bit-accurately at the nodes
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(10), 2, 1)
		assert.NoError(t, err)
		h, err := NewFunctionSpaceHierarchy(mh, element.CG, 2)
		assert.NoError(t, err)
		fn := func(x []float64) []float64 { return []float64{x[0] * x[0]} }
		f := prolongChain(t, h, fn)
		fs := f.Space
		for k := 0; k < fs.NumCells(); k++ {
			for n := 0; n < fs.NodesPerCell(); n++ {
				x := fs.PhysCoords(k, n)
				assert.True(t, nearAbs(f.Data[fs.CellDofs[k][n]], x[0]*x[0]))
			}
		}
	}
}

func TestProlongDG0Constant(t *testing.T) {
	// a piecewise constant 1.0 stays exactly 1.0 on every child cell
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(4, 4), 1, 1)
		assert.NoError(t, err)
		h, err := NewFunctionSpaceHierarchy(mh, element.DG, 0)
		assert.NoError(t, err)
		coarse := NewFunction(h.Space(0))
		for i := range coarse.Data {
			coarse.Data[i] = 1.0
		}
		fine := NewFunction(h.Space(1))
		assert.NoError(t, Prolong(coarse, fine))
		for _, v := range fine.Data {
			assert.True(t, nearAbs(v, 1.0))
		}
	}
}

func TestProlongComponentIndependence(t *testing.T) {
	// each vector component transfers as if it were a scalar field
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(2, 2), 1, 1)
		assert.NoError(t, err)
		hs, err := NewFunctionSpaceHierarchy(mh, element.CG, 2)
		assert.NoError(t, err)
		hv, err := NewVectorFunctionSpaceHierarchy(mh, element.CG, 2)
		assert.NoError(t, err)
		scalar := func(x []float64) float64 { return 1 + x[0]*x[0] - 2*x[0]*x[1] }
		f := prolongChain(t, hs, func(x []float64) []float64 {
			return []float64{scalar(x)}
		})
		fv := prolongChain(t, hv, func(x []float64) []float64 {
			return []float64{scalar(x), -3 * scalar(x)}
		})
		fs, fvs := f.Space, fv.Space
		assert.Equal(t, fs.NumNodes, fvs.NumNodes)
		for gid := 0; gid < fs.NumNodes; gid++ {
			assert.True(t, nearAbs(fv.Data[2*gid], f.Data[gid]))
			assert.True(t, nearAbs(fv.Data[2*gid+1], -3*f.Data[gid]))
		}
	}
}

func TestProlongMultipleRefinementsPerLevel(t *testing.T) {
	// one level containing two refinement steps matches two single-step
	// levels prolonged in sequence
	{
		base := mesh.NewUnitSquareMesh(2, 2)
		single, err := mesh.NewMeshHierarchy(base, 2, 1)
		assert.NoError(t, err)
		double, err := mesh.NewMeshHierarchy(base, 1, 2)
		assert.NoError(t, err)
		hs, err := NewFunctionSpaceHierarchy(single, element.CG, 2)
		assert.NoError(t, err)
		hd, err := NewFunctionSpaceHierarchy(double, element.CG, 2)
		assert.NoError(t, err)
		fn := fieldOfDegree(2, 1)
		fSingle := prolongChain(t, hs, fn)
		fDouble := prolongChain(t, hd, fn)
		assert.Equal(t, len(fSingle.Data), len(fDouble.Data))
		assertMatchesInterpolant(t, fDouble, fn)
		assertMatchesInterpolant(t, fSingle, fn)
	}
	// three refinement steps folded into a single level, both families
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(10), 1, 3)
		assert.NoError(t, err)
		assert.Equal(t, 80, mh.Meshes[1].NumCells())
		for _, tc := range []struct {
			family element.Family
			degree int
		}{
			{element.CG, 2},
			{element.DG, 1},
		} {
			h, err := NewFunctionSpaceHierarchy(mh, tc.family, tc.degree)
			assert.NoError(t, err)
			fn := fieldOfDegree(tc.degree, 1)
			f := prolongChain(t, h, fn)
			assertMatchesInterpolant(t, f, fn)
		}
	}
	// triangle mesh, vector valued, three steps per level
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(2, 2), 1, 3)
		assert.NoError(t, err)
		h, err := NewVectorFunctionSpaceHierarchy(mh, element.CG, 2)
		assert.NoError(t, err)
		fn := fieldOfDegree(2, 2)
		f := prolongChain(t, h, fn)
		assertMatchesInterpolant(t, f, fn)
	}
}

func TestProlongExtruded(t *testing.T) {
	// horizontal refinement with layers untouched, scalar and vector
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(2), 2, 1)
		assert.NoError(t, err)
		emh, err := mesh.NewExtrudedMeshHierarchy(mh, 3)
		assert.NoError(t, err)
		for _, tc := range []struct {
			family element.Family
			degree int
		}{
			{element.CG, 1},
			{element.CG, 2},
			{element.DG, 0},
			{element.DG, 1},
		} {
			h, err := NewExtrudedFunctionSpaceHierarchy(emh, tc.family, tc.degree)
			assert.NoError(t, err)
			fn := fieldOfDegree(tc.degree, 1)
			f := prolongChain(t, h, fn)
			assertMatchesInterpolant(t, f, fn)
		}
	}
	// triangle base extruded, vector valued over three dimensions
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(2, 2), 1, 1)
		assert.NoError(t, err)
		emh, err := mesh.NewExtrudedMeshHierarchy(mh, 3)
		assert.NoError(t, err)
		h, err := NewExtrudedVectorFunctionSpaceHierarchy(emh, element.CG, 2)
		assert.NoError(t, err)
		assert.Equal(t, 3, h.Components)
		fn := fieldOfDegree(2, 3)
		f := prolongChain(t, h, fn)
		assertMatchesInterpolant(t, f, fn)
	}
	// extrusion over a base hierarchy with two refinement steps per level
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(3), 2, 2)
		assert.NoError(t, err)
		emh, err := mesh.NewExtrudedMeshHierarchy(mh, 3)
		assert.NoError(t, err)
		h, err := NewExtrudedFunctionSpaceHierarchy(emh, element.CG, 2)
		assert.NoError(t, err)
		fn := fieldOfDegree(2, 1)
		f := prolongChain(t, h, fn)
		assertMatchesInterpolant(t, f, fn)
	}
}

func TestProlongExtrudedLayerFactorization(t *testing.T) {
	// layers never mix: a field that differs per layer transfers within
	// each layer as if the others did not exist
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(2), 1, 1)
		assert.NoError(t, err)
		emh, err := mesh.NewExtrudedMeshHierarchy(mh, 2)
		assert.NoError(t, err)
		h, err := NewExtrudedFunctionSpaceHierarchy(emh, element.DG, 1)
		assert.NoError(t, err)
		scale := []float64{1, 10}
		coarse := NewFunction(h.Space(0))
		cs := coarse.Space
		for cc := 0; cc < cs.NumCells(); cc++ {
			_, layer := cs.Ext.CellColumn(cc)
			for n := 0; n < cs.NodesPerCell(); n++ {
				x := cs.PhysCoords(cc, n)
				coarse.Data[cs.CellDofs[cc][n]] = scale[layer] * x[0]
			}
		}
		fine := NewFunction(h.Space(1))
		assert.NoError(t, Prolong(coarse, fine))
		fs := fine.Space
		for cc := 0; cc < fs.NumCells(); cc++ {
			_, layer := fs.Ext.CellColumn(cc)
			for n := 0; n < fs.NodesPerCell(); n++ {
				x := fs.PhysCoords(cc, n)
				assert.True(t, nearAbs(fine.Data[fs.CellDofs[cc][n]], scale[layer]*x[0]))
			}
		}
	}
}

func TestProlongValidation(t *testing.T) {
	mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(4), 2, 1)
	assert.NoError(t, err)
	h1, err := NewFunctionSpaceHierarchy(mh, element.CG, 1)
	assert.NoError(t, err)
	h2, err := NewFunctionSpaceHierarchy(mh, element.CG, 2)
	assert.NoError(t, err)
	// mismatched element: error reported, fine data untouched
	{
		coarse := NewFunction(h1.Space(0))
		_ = coarse.InterpolateScalar(func(x []float64) float64 { return x[0] })
		fine := NewFunction(h2.Space(1))
		sentinel := -7.5
		for i := range fine.Data {
			fine.Data[i] = sentinel
		}
		err := Prolong(coarse, fine)
		assert.Error(t, err)
		assert.IsType(t, &mesh.ConfigurationError{}, err)
		for _, v := range fine.Data {
			assert.Equal(t, sentinel, v)
		}
	}
	// non-adjacent levels rejected
	{
		coarse := NewFunction(h1.Space(0))
		fine := NewFunction(h1.Space(2))
		assert.Error(t, Prolong(coarse, fine))
	}
	// wrong direction rejected
	{
		coarse := NewFunction(h1.Space(1))
		fine := NewFunction(h1.Space(0))
		assert.Error(t, Prolong(coarse, fine))
	}
	// different hierarchies over the same mesh rejected
	{
		other, err := NewFunctionSpaceHierarchy(mh, element.CG, 1)
		assert.NoError(t, err)
		coarse := NewFunction(h1.Space(0))
		fine := NewFunction(other.Space(1))
		assert.Error(t, Prolong(coarse, fine))
	}
}

func TestProlongWithCheck(t *testing.T) {
	// a smooth field agrees at shared DOFs from every adjacent cell
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(2, 2), 1, 1)
		assert.NoError(t, err)
		h, err := NewFunctionSpaceHierarchy(mh, element.CG, 2)
		assert.NoError(t, err)
		coarse := NewFunction(h.Space(0))
		fn := fieldOfDegree(2, 1)
		assert.NoError(t, coarse.Interpolate(fn))
		fine := NewFunction(h.Space(1))
		diag, err := ProlongWithCheck(coarse, fine)
		assert.NoError(t, err)
		assert.True(t, diag.SharedChecks > 0)
		assert.Equal(t, 0, diag.Mismatches)
		assert.True(t, diag.MaxDelta < SharedDofTol)
	}
	// DG has no shared DOFs, so nothing to check
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(4), 1, 1)
		assert.NoError(t, err)
		h, err := NewFunctionSpaceHierarchy(mh, element.DG, 1)
		assert.NoError(t, err)
		coarse := NewFunction(h.Space(0))
		_ = coarse.InterpolateScalar(func(x []float64) float64 { return x[0] })
		fine := NewFunction(h.Space(1))
		diag, err := ProlongWithCheck(coarse, fine)
		assert.NoError(t, err)
		assert.Equal(t, 0, diag.SharedChecks)
	}
}

func TestProlongMixed(t *testing.T) {
	// vector CG2 paired with scalar CG1, prolonged per component space
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitSquareMesh(2, 2), 1, 1)
		assert.NoError(t, err)
		h, err := NewMixedFunctionSpaceHierarchy(mh, []SubElement{
			{Family: element.CG, Degree: 2, Components: 2},
			{Family: element.CG, Degree: 1, Components: 1},
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, h.NumLevels())
		// vector part quadratic, scalar part linear, all exactly
		// representable on both levels
		fn := func(x []float64) []float64 {
			return []float64{
				x[0]*x[0] + x[1],
				x[0] * x[1],
				1 - x[0] + 2*x[1],
			}
		}
		coarse := h.NewMixedFunction(0)
		assert.NoError(t, coarse.Interpolate(fn))
		fine := h.NewMixedFunction(1)
		assert.NoError(t, ProlongMixed(coarse, fine))
		parts := fine.Split()
		assert.Equal(t, 2, len(parts))
		assertMatchesInterpolant(t, parts[0], func(x []float64) []float64 {
			return []float64{x[0]*x[0] + x[1], x[0] * x[1]}
		})
		assertMatchesInterpolant(t, parts[1], func(x []float64) []float64 {
			return []float64{1 - x[0] + 2*x[1]}
		})
		// concatenated data covers both parts
		assert.Equal(t, len(parts[0].Data)+len(parts[1].Data), len(fine.Data()))
	}
	// level mismatch rejected
	{
		mh, err := mesh.NewMeshHierarchy(mesh.NewUnitIntervalMesh(2), 1, 1)
		assert.NoError(t, err)
		h, err := NewMixedFunctionSpaceHierarchy(mh, []SubElement{
			{Family: element.CG, Degree: 1, Components: 1},
		})
		assert.NoError(t, err)
		coarse := h.NewMixedFunction(1)
		fine := h.NewMixedFunction(0)
		assert.Error(t, ProlongMixed(coarse, fine))
	}
}
