package kinematics

import (
	"sort"

	"go.uber.org/multierr"
)

// Group is a named view over a subset of one model's joints, e.g. one limb.
// It is built once from the model's group declarations and immutable after;
// derived groups from Union and Difference are views too and are not
// registered on the model.
type Group struct {
	model *Model
	name  string

	joints     []int // arena indices, in model state order
	stateIndex []int // group-local coordinate position to global position
	dof        int
	bounds     []float64 // [min0, max0, ...] group-local

	roots        []int // joints whose parent joint is outside the group
	updatedLinks []int // links below any group joint, in update order
}

// newGroup builds a group view from joint names. Unknown names fail with
// ConfigurationError, all of them reported together.
func (m *Model) newGroup(name string, jointNames []string) (*Group, error) {
	var result error
	member := make(map[int]bool, len(jointNames))
	for _, jn := range jointNames {
		idx, ok := m.jointIndex[jn]
		if !ok {
			multierr.AppendInto(&result, NewConfigurationErrorf("group %q references unknown joint %q", name, jn))
			continue
		}
		member[idx] = true
	}
	if result != nil {
		return nil, result
	}

	g := &Group{model: m, name: name}
	for _, ji := range m.jointOrder {
		if !member[ji] {
			continue
		}
		j := m.joints[ji]
		g.joints = append(g.joints, ji)
		for k := 0; k < j.dof; k++ {
			g.stateIndex = append(g.stateIndex, j.stateIndex+k)
			g.bounds = append(g.bounds, m.bounds[2*(j.stateIndex+k)], m.bounds[2*(j.stateIndex+k)+1])
		}
	}
	g.dof = len(g.stateIndex)

	// A group root is a joint whose immediate parent joint, if any, is not
	// in the group.
	for _, ji := range g.joints {
		j := m.joints[ji]
		if j.parentLink == -1 || !member[m.links[j.parentLink].parentJoint] {
			g.roots = append(g.roots, ji)
		}
	}

	// Updated links: every link at or below a group joint's child link. Link
	// arena indices double as update-order positions.
	reached := map[int]bool{}
	var descend func(li int)
	descend = func(li int) {
		if reached[li] {
			return
		}
		reached[li] = true
		for _, ji := range m.links[li].childJoints {
			descend(m.joints[ji].childLink)
		}
	}
	for _, ji := range g.joints {
		descend(m.joints[ji].childLink)
	}
	for li := range reached {
		g.updatedLinks = append(g.updatedLinks, li)
	}
	sort.Ints(g.updatedLinks)

	return g, nil
}

// Name returns the group's name.
func (g *Group) Name() string {
	return g.name
}

// Dimension returns the number of generalized coordinates the group
// addresses.
func (g *Group) Dimension() int {
	return g.dof
}

// Bounds returns a copy of the group-local bounds vector, laid out as
// [min0, max0, ...] by group-local coordinate position.
func (g *Group) Bounds() []float64 {
	out := make([]float64, len(g.bounds))
	copy(out, g.bounds)
	return out
}

// JointNames returns the group's joint names in model state order.
func (g *Group) JointNames() []string {
	out := make([]string, 0, len(g.joints))
	for _, ji := range g.joints {
		out = append(out, g.model.joints[ji].name)
	}
	return out
}

// Has reports whether the named joint is in the group. External coordinate
// names resolve to their owning joint.
func (g *Group) Has(jointName string) bool {
	idx, ok := g.model.jointIndex[jointName]
	if !ok {
		return false
	}
	for _, ji := range g.joints {
		if ji == idx {
			return true
		}
	}
	return false
}

// JointPosition returns the group-local coordinate position of the named
// joint's first coordinate.
func (g *Group) JointPosition(jointName string) (int, error) {
	idx, ok := g.model.jointIndex[jointName]
	if !ok {
		return 0, NewNotFoundError("joint", jointName)
	}
	pos := 0
	for _, ji := range g.joints {
		if ji == idx {
			return pos, nil
		}
		pos += g.model.joints[ji].dof
	}
	return 0, NewNotFoundError("group joint", jointName)
}

// RootJointNames returns the names of the group's root joints, the joints
// whose parent joint is outside the group.
func (g *Group) RootJointNames() []string {
	out := make([]string, 0, len(g.roots))
	for _, ji := range g.roots {
		out = append(out, g.model.joints[ji].name)
	}
	return out
}

// UpdatedLinkNames returns, in update order, the links whose poses change
// when the group's coordinates change.
func (g *Group) UpdatedLinkNames() []string {
	out := make([]string, 0, len(g.updatedLinks))
	for _, li := range g.updatedLinks {
		out = append(out, g.model.links[li].name)
	}
	return out
}

// Contains reports whether every joint of other is also in g. Both groups
// must view the same model.
func (g *Group) Contains(other *Group) bool {
	if g.model != other.model {
		return false
	}
	member := make(map[int]bool, len(g.joints))
	for _, ji := range g.joints {
		member[ji] = true
	}
	for _, ji := range other.joints {
		if !member[ji] {
			return false
		}
	}
	return true
}

// Union builds a derived group over the joints of g and other.
func (g *Group) Union(name string, other *Group) (*Group, error) {
	if g.model != other.model {
		return nil, NewConfigurationErrorf("groups %q and %q view different models", g.name, other.name)
	}
	member := map[int]bool{}
	for _, ji := range g.joints {
		member[ji] = true
	}
	for _, ji := range other.joints {
		member[ji] = true
	}
	return g.model.newGroup(name, jointNamesFor(g.model, member))
}

// Difference builds a derived group over the joints of g that are not in
// other.
func (g *Group) Difference(name string, other *Group) (*Group, error) {
	if g.model != other.model {
		return nil, NewConfigurationErrorf("groups %q and %q view different models", g.name, other.name)
	}
	member := map[int]bool{}
	for _, ji := range g.joints {
		member[ji] = true
	}
	for _, ji := range other.joints {
		delete(member, ji)
	}
	return g.model.newGroup(name, jointNamesFor(g.model, member))
}

func jointNamesFor(m *Model, member map[int]bool) []string {
	names := make([]string, 0, len(member))
	for _, ji := range m.jointOrder {
		if member[ji] {
			names = append(names, m.joints[ji].name)
		}
	}
	return names
}
