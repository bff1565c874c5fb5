// Package kinematics builds articulated-body kinematic models from parsed
// robot descriptions and computes link poses from generalized coordinate
// vectors. A Model is immutable after construction except for attached
// bodies; many States may read one Model concurrently under its shared lock.
package kinematics

import (
	"sort"
	"sync"

	"github.com/edaniels/golog"
)

// Model owns every Link and Joint of one articulated body. Links and joints
// live in arenas and refer to each other by index; the structures never hold
// pointers into each other. All read operations take the shared lock; the
// sole mutation surface, attached bodies, takes the exclusive lock.
type Model struct {
	mu sync.RWMutex

	name   string
	links  []*Link
	joints []*Joint

	linkIndex map[string]int
	// jointIndex maps joint names and every external coordinate name to the
	// owning joint's arena index.
	jointIndex map[string]int

	jointOrder []int // joints in state order
	linkOrder  []int // links in update order
	rootJoint  int
	dof        int

	bounds []float64 // [min0, max0, min1, max1, ...] by coordinate position
	wrap   []bool    // per coordinate, wrap at ±π instead of clamping

	groups map[string]*Group

	logger golog.Logger
}

// SharedLock takes the model's lock for reading. Any number of readers may
// hold it at once.
func (m *Model) SharedLock() {
	m.mu.RLock()
}

// SharedUnlock releases a shared hold on the model's lock.
func (m *Model) SharedUnlock() {
	m.mu.RUnlock()
}

// ExclusiveLock takes the model's lock for writing, blocking until all
// readers have released it.
func (m *Model) ExclusiveLock() {
	m.mu.Lock()
}

// ExclusiveUnlock releases an exclusive hold on the model's lock.
func (m *Model) ExclusiveUnlock() {
	m.mu.Unlock()
}

// Name returns the model's name.
func (m *Model) Name() string {
	return m.name
}

// Dimension returns the length of the model's global coordinate vector.
func (m *Model) Dimension() int {
	return m.dof
}

// Bounds returns a copy of the combined bounds vector, laid out as
// [min0, max0, min1, max1, ...] by coordinate position.
func (m *Model) Bounds() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, len(m.bounds))
	copy(out, m.bounds)
	return out
}

// Joint looks up a joint by name. External coordinate names of multi-DOF
// joints resolve to their owning joint.
func (m *Model) Joint(name string) (*Joint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.joint(name)
}

func (m *Model) joint(name string) (*Joint, error) {
	idx, ok := m.jointIndex[name]
	if !ok {
		return nil, NewNotFoundError("joint", name)
	}
	return m.joints[idx], nil
}

// HasJoint reports whether a joint or external coordinate name exists.
func (m *Model) HasJoint(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.jointIndex[name]
	return ok
}

// Link looks up a link by name.
func (m *Model) Link(name string) (*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.link(name)
}

func (m *Model) link(name string) (*Link, error) {
	idx, ok := m.linkIndex[name]
	if !ok {
		return nil, NewNotFoundError("link", name)
	}
	return m.links[idx], nil
}

// HasLink reports whether a link with the given name exists.
func (m *Model) HasLink(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.linkIndex[name]
	return ok
}

// JointNames returns the joint names in state order, the order in which
// their coordinate slices appear in the global vector.
func (m *Model) JointNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.jointOrder))
	for _, ji := range m.jointOrder {
		out = append(out, m.joints[ji].name)
	}
	return out
}

// LinkNames returns the link names in update order.
func (m *Model) LinkNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.linkOrder))
	for _, li := range m.linkOrder {
		out = append(out, m.links[li].name)
	}
	return out
}

// CoordinateNames returns the external name of every generalized coordinate
// in state order.
func (m *Model) CoordinateNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coordinateNames()
}

func (m *Model) coordinateNames() []string {
	out := make([]string, 0, m.dof)
	for _, ji := range m.jointOrder {
		out = append(out, m.joints[ji].ExternalNames()...)
	}
	return out
}

// RootJoint returns the joint at the root of the tree, the one joint with no
// parent link.
func (m *Model) RootJoint() *Joint {
	return m.joints[m.rootJoint]
}

// RootLink returns the root joint's child link, the root of the link tree.
func (m *Model) RootLink() *Link {
	return m.links[m.joints[m.rootJoint].childLink]
}

// ChildLinks returns the named link and every link below it, in update
// order.
func (m *Model) ChildLinks(name string) ([]*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start, err := m.link(name)
	if err != nil {
		return nil, err
	}
	var out []*Link
	queue := []int{start.index}
	for len(queue) > 0 {
		li := queue[0]
		queue = queue[1:]
		link := m.links[li]
		out = append(out, link)
		for _, ji := range link.childJoints {
			queue = append(queue, m.joints[ji].childLink)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out, nil
}

// Group looks up a joint model group by name.
func (m *Model) Group(name string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[name]
	if !ok {
		return nil, NewNotFoundError("group", name)
	}
	return g, nil
}

// HasGroup reports whether a group with the given name exists.
func (m *Model) HasGroup(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.groups[name]
	return ok
}

// GroupNames returns the declared group names, sorted.
func (m *Model) GroupNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.groups))
	for name := range m.groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AttachBody rigidly fixes a body to the named link.
func (m *Model) AttachBody(linkName string, body *AttachedBody) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, err := m.link(linkName)
	if err != nil {
		return err
	}
	body.link = link.index
	link.attached = append(link.attached, body)
	return nil
}

// ReplaceAttachedBodies swaps the named link's attached bodies for the given
// set in one exclusive critical section.
func (m *Model) ReplaceAttachedBodies(linkName string, bodies []*AttachedBody) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, err := m.link(linkName)
	if err != nil {
		return err
	}
	replacement := make([]*AttachedBody, len(bodies))
	copy(replacement, bodies)
	for _, body := range replacement {
		body.link = link.index
	}
	link.attached = replacement
	return nil
}

// ClearAttachedBodies removes every body attached to the named link.
func (m *Model) ClearAttachedBodies(linkName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, err := m.link(linkName)
	if err != nil {
		return err
	}
	for _, body := range link.attached {
		body.link = -1
	}
	link.attached = nil
	return nil
}

// ClearAllAttachedBodies removes every attached body from every link.
func (m *Model) ClearAllAttachedBodies() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		for _, body := range link.attached {
			body.link = -1
		}
		link.attached = nil
	}
}

// AttachedBodies returns a copy of the named link's attached body list.
func (m *Model) AttachedBodies(linkName string) ([]*AttachedBody, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, err := m.link(linkName)
	if err != nil {
		return nil, err
	}
	out := make([]*AttachedBody, len(link.attached))
	copy(out, link.attached)
	return out, nil
}
