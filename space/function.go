package space

import (
	"fmt"

	"github.com/notargets/gomultigrid/mesh"
)

// Function is a FunctionSpace plus a dense DOF array, one entry per scalar
// node per component, components interleaved per node. Mutation happens
// only through Assign, Interpolate and Prolong.
type Function struct {
	Space *FunctionSpace
	Data  []float64
}

func NewFunction(fs *FunctionSpace) *Function {
	return &Function{
		Space: fs,
		Data:  make([]float64, fs.NumDofs()),
	}
}

// Assign copies src's DOF values; both functions must live on the same
// space.
func (f *Function) Assign(src *Function) error {
	if f.Space != src.Space {
		return &mesh.ConfigurationError{Reason: "assign between functions on different spaces"}
	}
	copy(f.Data, src.Data)
	return nil
}

// Interpolate fills the DOF array by evaluating fn at every node's physical
// coordinates. fn must return one value per component. CG-shared nodes are
// written once per owning cell with identical arguments, so the result is
// well defined.
func (f *Function) Interpolate(fn func(x []float64) []float64) error {
	var (
		fs = f.Space
		C  = fs.Components
	)
	for k := 0; k < fs.NumCells(); k++ {
		for n := 0; n < fs.NodesPerCell(); n++ {
			vals := fn(fs.PhysCoords(k, n))
			if len(vals) != C {
				return &mesh.ConfigurationError{
					Reason: fmt.Sprintf("interpolation callback returned %d values for %d components", len(vals), C),
				}
			}
			gid := fs.CellDofs[k][n]
			for c := 0; c < C; c++ {
				f.Data[gid*C+c] = vals[c]
			}
		}
	}
	return nil
}

// InterpolateScalar is the single-component convenience form of
// Interpolate.
func (f *Function) InterpolateScalar(fn func(x []float64) float64) error {
	return f.Interpolate(func(x []float64) []float64 {
		return []float64{fn(x)}
	})
}
