package space

import (
	"fmt"

	"github.com/notargets/gomultigrid/element"
	"github.com/notargets/gomultigrid/mesh"
)

// SubElement describes one component space of a mixed space: family,
// degree, and value components (1 for scalar, d for vector).
type SubElement struct {
	Family     element.Family
	Degree     int
	Components int
}

// MixedFunctionSpaceHierarchy is a fixed-arity list of component space
// hierarchies over one mesh hierarchy, resolved once at construction.
// A mixed function's DOF array is the concatenation of its component
// arrays; transfer operations decompose and recompose per component.
type MixedFunctionSpaceHierarchy struct {
	MeshH *mesh.MeshHierarchy
	Subs  []*FunctionSpaceHierarchy
}

func NewMixedFunctionSpaceHierarchy(mh *mesh.MeshHierarchy, elements []SubElement) (h *MixedFunctionSpaceHierarchy, err error) {
	if len(elements) == 0 {
		err = &mesh.ConfigurationError{Reason: "mixed space needs at least one component element"}
		return
	}
	h = &MixedFunctionSpaceHierarchy{
		MeshH: mh,
	}
	for _, el := range elements {
		var sub *FunctionSpaceHierarchy
		if el.Components < 1 {
			return nil, &mesh.ConfigurationError{
				Reason: fmt.Sprintf("component count must be >= 1, have %d", el.Components),
			}
		}
		if sub, err = newHierarchy(mh, el.Family, el.Degree, el.Components); err != nil {
			return nil, err
		}
		h.Subs = append(h.Subs, sub)
	}
	return
}

func (h *MixedFunctionSpaceHierarchy) NumLevels() int {
	return h.MeshH.NumLevels()
}

// NewMixedFunction allocates a mixed function on the given level, one
// component function per sub-space.
func (h *MixedFunctionSpaceHierarchy) NewMixedFunction(level int) (mf *MixedFunction) {
	mf = &MixedFunction{Hier: h, Level: level}
	for _, sub := range h.Subs {
		mf.Subs = append(mf.Subs, NewFunction(sub.Space(level)))
	}
	return
}

// MixedFunction stores one component Function per sub-space of a mixed
// hierarchy level.
type MixedFunction struct {
	Hier  *MixedFunctionSpaceHierarchy
	Level int
	Subs  []*Function
}

// Split exposes the component functions.
func (mf *MixedFunction) Split() []*Function {
	return mf.Subs
}

// Data returns the concatenated DOF array, component spaces in order.
func (mf *MixedFunction) Data() (data []float64) {
	for _, sub := range mf.Subs {
		data = append(data, sub.Data...)
	}
	return
}

func (mf *MixedFunction) Assign(src *MixedFunction) (err error) {
	if mf.Hier != src.Hier || mf.Level != src.Level {
		return &mesh.ConfigurationError{Reason: "assign between mixed functions on different spaces"}
	}
	for i, sub := range mf.Subs {
		if err = sub.Assign(src.Subs[i]); err != nil {
			return
		}
	}
	return
}

// Interpolate evaluates fn at each node and distributes the returned values
// across component functions in order: fn must return the total component
// count of the mixed space.
func (mf *MixedFunction) Interpolate(fn func(x []float64) []float64) (err error) {
	var (
		total int
		offs  []int
	)
	for _, sub := range mf.Subs {
		offs = append(offs, total)
		total += sub.Space.Components
	}
	for i, sub := range mf.Subs {
		lo, n := offs[i], sub.Space.Components
		err = sub.Interpolate(func(x []float64) []float64 {
			vals := fn(x)
			if len(vals) != total {
				return vals[:0]
			}
			return vals[lo : lo+n]
		})
		if err != nil {
			return
		}
	}
	return
}

// ProlongMixed prolongs each component independently; components never
// couple.
func ProlongMixed(coarse, fine *MixedFunction) (err error) {
	if coarse.Hier == nil || coarse.Hier != fine.Hier {
		return &mesh.ConfigurationError{Reason: "prolongation between mixed functions from different hierarchies"}
	}
	if len(coarse.Subs) != len(fine.Subs) {
		return &mesh.ConfigurationError{
			Reason: fmt.Sprintf("mixed component count mismatch: %d vs %d", len(coarse.Subs), len(fine.Subs)),
		}
	}
	for i := range coarse.Subs {
		if err = Prolong(coarse.Subs[i], fine.Subs[i]); err != nil {
			return
		}
	}
	return
}
