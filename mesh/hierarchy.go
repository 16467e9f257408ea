package mesh

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gomultigrid/utils"
)

// CellParent locates a fine cell's ancestor on the next-coarser hierarchy
// level: the ancestor cell id, this cell's ordinal among the ancestor's
// descendants, and the composed affine map from fine reference coordinates
// into the ancestor's reference domain.
type CellParent struct {
	Cell  int
	Child int
	Map   Affine
}

// MeshHierarchy is an ordered sequence of meshes, coarsest to finest,
// related by uniform refinement. Parents[l] maps each cell of Meshes[l+1]
// to its ancestor in Meshes[l]; when RefinementsPerLevel > 1 the map is the
// composition of the intermediate single-step maps.
type MeshHierarchy struct {
	Meshes              []*Mesh
	Parents             [][]CellParent
	RefinementsPerLevel int
}

func (mh *MeshHierarchy) NumLevels() int {
	return len(mh.Meshes)
}

// NewMeshHierarchy refines base nLevels times, applying refinementsPerLevel
// uniform refinement steps per hierarchy level. Geometric consistency is
// checked at every intermediate step.
func NewMeshHierarchy(base *Mesh, nLevels, refinementsPerLevel int) (mh *MeshHierarchy, err error) {
	if _, err = RefinementRuleFor(base.Kind); err != nil {
		return
	}
	if nLevels < 0 {
		err = &ConfigurationError{Reason: fmt.Sprintf("negative refinement level count %d", nLevels)}
		return
	}
	if refinementsPerLevel < 1 {
		err = &ConfigurationError{Reason: fmt.Sprintf("refinements per level must be >= 1, have %d", refinementsPerLevel)}
		return
	}
	mh = &MeshHierarchy{
		Meshes:              []*Mesh{base},
		RefinementsPerLevel: refinementsPerLevel,
	}
	for l := 0; l < nLevels; l++ {
		var (
			cur          = mh.Meshes[l]
			levelParents []CellParent
		)
		for step := 0; step < refinementsPerLevel; step++ {
			var (
				next        *Mesh
				stepParents []CellParent
			)
			if next, stepParents, err = refineOnce(cur); err != nil {
				return nil, err
			}
			if step == 0 {
				levelParents = stepParents
			} else {
				levelParents = composeParents(mh.Meshes[l].NumCells(), levelParents, stepParents)
			}
			cur = next
		}
		mh.Meshes = append(mh.Meshes, cur)
		mh.Parents = append(mh.Parents, levelParents)
		log.Debugf("mesh hierarchy level %d: %d cells, %d verts",
			l+1, cur.NumCells(), cur.NumVerts())
	}
	return
}

// composeParents folds one additional refinement step into an existing
// level-to-level parent map.
func composeParents(numCoarse int, levelParents, stepParents []CellParent) (composed []CellParent) {
	var (
		childCount = make([]int, numCoarse)
	)
	composed = make([]CellParent, len(stepParents))
	for f, sp := range stepParents {
		anc := levelParents[sp.Cell]
		composed[f] = CellParent{
			Cell:  anc.Cell,
			Child: childCount[anc.Cell],
			Map:   anc.Map.Compose(sp.Map),
		}
		childCount[anc.Cell]++
	}
	return
}

// refineOnce applies one uniform refinement step. New vertices are keyed by
// the sorted parent vertex ids that define them, so vertices shared between
// adjacent cells coincide exactly.
func refineOnce(m *Mesh) (fine *Mesh, parents []CellParent, err error) {
	var (
		rule   RefinementRule
		K      = m.NumCells()
		nv     = m.NumVerts()
		is2D   = m.Kind != Interval
		vx     = append([]float64{}, m.VX.DataP...)
		vy     []float64
		lookup = make(map[[4]int]int)
		eToV   [][]int
	)
	if rule, err = RefinementRuleFor(m.Kind); err != nil {
		return
	}
	if is2D {
		vy = append([]float64{}, m.VY.DataP...)
	}
	for k := 0; k < K; k++ {
		for ci, child := range rule.Children {
			verts := make([]int, len(child.Verts))
			for vi, recipe := range child.Verts {
				if len(recipe) == 1 {
					verts[vi] = m.EToV[k][recipe[0]]
					continue
				}
				key := [4]int{-1, -1, -1, -1}
				for i, lv := range recipe {
					key[i] = m.EToV[k][lv]
				}
				sortKey(&key, len(recipe))
				if id, ok := lookup[key]; ok {
					verts[vi] = id
					continue
				}
				var x, y float64
				for _, gv := range key[:len(recipe)] {
					x += m.VX.AtVec(gv)
					if is2D {
						y += m.VY.AtVec(gv)
					}
				}
				inv := 1. / float64(len(recipe))
				vx = append(vx, x*inv)
				if is2D {
					vy = append(vy, y*inv)
				}
				lookup[key] = nv
				verts[vi] = nv
				nv++
			}
			eToV = append(eToV, verts)
			parents = append(parents, CellParent{Cell: k, Child: ci, Map: child.ToParent})
		}
	}
	fine = &Mesh{
		Kind: m.Kind,
		VX:   utils.NewVector(len(vx), vx),
		EToV: eToV,
	}
	if is2D {
		fine.VY = utils.NewVector(len(vy), vy)
	} else {
		fine.VY = utils.NewVector(0, []float64{})
	}
	err = checkRefinement(m, fine, parents)
	return
}

func sortKey(key *[4]int, n int) {
	for i := 1; i < n; i++ {
		for j := i; j > 0 && key[j] < key[j-1]; j-- {
			key[j], key[j-1] = key[j-1], key[j]
		}
	}
}

// checkRefinement enforces the tiling invariant: each parent's children
// cover it exactly (measures sum to the parent measure), and each child
// vertex lands where the recorded child-to-parent map says it should.
func checkRefinement(coarse, fine *Mesh, parents []CellParent) (err error) {
	var (
		sums     = make([]float64, coarse.NumCells())
		refVerts = fine.Kind.RefVerts()
	)
	for f := 0; f < fine.NumCells(); f++ {
		cp := parents[f]
		sums[cp.Cell] += fine.CellMeasure(f)
		for vi, rv := range refVerts {
			pr, ps := cp.Map.Apply(rv[0], rv[1])
			px, py := coarse.PhysCoord(cp.Cell, pr, ps)
			fx, fy := fine.VertCoord(fine.EToV[f][vi])
			if math.Abs(px-fx) > utils.NODETOL || math.Abs(py-fy) > utils.NODETOL {
				return &GeometricConsistencyError{
					Reason: fmt.Sprintf("fine cell %d vertex %d at (%g,%g) maps to (%g,%g) in parent cell %d",
						f, vi, fx, fy, px, py, cp.Cell),
				}
			}
		}
	}
	for k, sum := range sums {
		meas := coarse.CellMeasure(k)
		if math.Abs(sum-meas) > utils.NODETOL*math.Max(1, meas) {
			return &GeometricConsistencyError{
				Reason: fmt.Sprintf("children of cell %d cover measure %g of parent measure %g", k, sum, meas),
			}
		}
	}
	return
}
