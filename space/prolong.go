package space

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gomultigrid/mesh"
	"github.com/notargets/gomultigrid/utils"
)

// SharedDofTol bounds the disagreement allowed between owning cells when a
// CG-shared fine DOF is re-evaluated from a second cell. Larger deviations
// are surfaced as diagnostics, not errors: they indicate a latent geometry
// or numbering bug upstream, never a reason to abandon the transfer.
// Adjustable by callers that need a looser or tighter check.
var SharedDofTol = 1.e-9

// Diagnostics reports shared-DOF agreement collected by ProlongWithCheck.
type Diagnostics struct {
	SharedChecks int
	Mismatches   int
	MaxDelta     float64
}

// Prolong fills fine's DOF array with the same field coarse represents,
// re-expressed in the fine space's basis. Both functions must belong to
// adjacent levels of the same hierarchy; validation happens before any DOF
// is written. Each fine DOF is computed independently from one owning cell,
// so the work parallelizes freely over cells.
func Prolong(coarse, fine *Function) (err error) {
	if err = validateTransfer(coarse, fine); err != nil {
		return
	}
	prolongCore(coarse, fine)
	return
}

// ProlongWithCheck prolongs and then re-evaluates every CG-shared fine DOF
// from its non-owning cells, reporting disagreements beyond SharedDofTol as
// a warning diagnostic.
func ProlongWithCheck(coarse, fine *Function) (diag Diagnostics, err error) {
	if err = validateTransfer(coarse, fine); err != nil {
		return
	}
	prolongCore(coarse, fine)
	diag = verifySharedDofs(coarse, fine)
	if diag.Mismatches > 0 {
		log.Warnf("prolongation: %d of %d shared DOF evaluations disagree beyond %g (max delta %g)",
			diag.Mismatches, diag.SharedChecks, SharedDofTol, diag.MaxDelta)
	}
	return
}

func validateTransfer(coarse, fine *Function) (err error) {
	var (
		cs, fs = coarse.Space, fine.Space
	)
	if cs.Hier == nil || cs.Hier != fs.Hier {
		return &mesh.ConfigurationError{Reason: "prolongation between functions from different hierarchies"}
	}
	if fs.Level != cs.Level+1 {
		return &mesh.ConfigurationError{
			Reason: fmt.Sprintf("prolongation requires adjacent levels, have coarse level %d and fine level %d",
				cs.Level, fs.Level),
		}
	}
	if cs.Family != fs.Family || cs.Degree != fs.Degree || cs.Components != fs.Components {
		return &mesh.ConfigurationError{
			Reason: fmt.Sprintf("element mismatch: coarse %s%d/%d components, fine %s%d/%d components",
				cs.Family, cs.Degree, cs.Components, fs.Family, fs.Degree, fs.Components),
		}
	}
	return
}

func prolongCore(coarse, fine *Function) {
	var (
		fs      = fine.Space
		K       = fs.NumCells()
		NP      = runtime.NumCPU()
		wg      = sync.WaitGroup{}
		parents = fs.Hier.parents(coarse.Space.Level)
	)
	if NP > K {
		NP = K
	}
	pm := utils.NewPartitionMap(NP, K)
	for n := 0; n < NP; n++ {
		wg.Add(1)
		go func(bn int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(bn)
			for k := kMin; k < kMax; k++ {
				for _, node := range fs.Owned[k] {
					writeFineNode(coarse, fine, parents, k, node)
				}
			}
		}(n)
	}
	wg.Wait()
}

// writeFineNode evaluates the coarse function at the parent-domain image of
// fine cell k's node and stores the result.
func writeFineNode(coarse, fine *Function, parents []mesh.CellParent, k, node int) {
	var (
		fs  = fine.Space
		gid = fs.CellDofs[k][node]
		C   = fs.Components
	)
	vals := evalCoarseAtNode(coarse, parents, k, node)
	for c := 0; c < C; c++ {
		fine.Data[gid*C+c] = vals[c]
	}
}

// evalCoarseAtNode performs steps 2-4 of the transfer: resolve the fine
// node's reference location, map it through the recorded refinement affine
// into the parent cell, and evaluate the coarse basis expansion there. On
// extruded meshes the vertical coordinate passes through unchanged.
func evalCoarseAtNode(coarse *Function, parents []mesh.CellParent, k, node int) (vals []float64) {
	var (
		fs  = coarse.Space.Hier.Spaces[coarse.Space.Level+1]
		cs  = coarse.Space
		C   = cs.Components
		phi []float64
		pd  utils.Index
	)
	r, s, z := fs.NodeCoords(node)
	if fs.Ext != nil {
		bc, layer := fs.Ext.CellColumn(k)
		cp := parents[bc]
		pr, ps := cp.Map.Apply(r, s)
		phi = cs.TBasis.EvalBasis(pr, ps, z)
		pd = cs.CellDofs[cp.Cell*cs.Ext.Layers+layer]
	} else {
		cp := parents[k]
		pr, ps := cp.Map.Apply(r, s)
		phi = cs.Basis.EvalBasis(pr, ps)
		pd = cs.CellDofs[cp.Cell]
	}
	vals = make([]float64, C)
	for j, p := range phi {
		base := pd[j] * C
		for c := 0; c < C; c++ {
			vals[c] += p * coarse.Data[base+c]
		}
	}
	return
}

// verifySharedDofs re-evaluates fine DOFs from every non-owning cell and
// compares against the stored value.
func verifySharedDofs(coarse, fine *Function) (diag Diagnostics) {
	var (
		fs      = fine.Space
		C       = fs.Components
		parents = fs.Hier.parents(coarse.Space.Level)
	)
	for k := 0; k < fs.NumCells(); k++ {
		owned := make(map[int]bool, len(fs.Owned[k]))
		for _, n := range fs.Owned[k] {
			owned[n] = true
		}
		for n := 0; n < fs.NodesPerCell(); n++ {
			if owned[n] {
				continue
			}
			diag.SharedChecks++
			gid := fs.CellDofs[k][n]
			vals := evalCoarseAtNode(coarse, parents, k, n)
			var delta float64
			for c := 0; c < C; c++ {
				delta = math.Max(delta, math.Abs(vals[c]-fine.Data[gid*C+c]))
			}
			if delta > SharedDofTol {
				diag.Mismatches++
			}
			if delta > diag.MaxDelta {
				diag.MaxDelta = delta
			}
		}
	}
	return
}
