package kinematics

import (
	"sort"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/NTangjzt/arm-navigation/spatialmath"
)

// NewModel builds a kinematic model from a parsed description, a set of
// named groups (group name to ordered joint names), and multi-DOF joint
// configurations. Construction validates the tree before building it; on any
// error no model is returned.
//
// A multi-DOF config whose ChildFrame names the description's root link adds
// a planar or floating root joint; without one the root link is anchored by
// a fixed joint named "<root>_root". Coordinate state indices are assigned in
// pre-order traversal of the tree, following joint declaration order within
// each link.
func NewModel(
	cfg ModelConfig,
	groups map[string][]string,
	multiDOF []MultiDOFConfig,
	logger golog.Logger,
) (*Model, error) {
	if logger == nil {
		logger = golog.Global()
	}

	rootName, err := validateTopology(cfg)
	if err != nil {
		return nil, err
	}

	b := &modelBuilder{
		m: &Model{
			name:       cfg.Name,
			linkIndex:  map[string]int{},
			jointIndex: map[string]int{},
			rootJoint:  0,
			groups:     map[string]*Group{},
			logger:     logger,
		},
		linkCfg:     map[string]LinkConfig{},
		childJoints: map[string][]JointConfig{},
		logger:      logger,
	}
	for _, lc := range cfg.Links {
		b.linkCfg[lc.Name] = lc
	}
	for _, jc := range cfg.Joints {
		b.childJoints[jc.Parent] = append(b.childJoints[jc.Parent], jc)
	}

	rootJoint, err := b.makeRootJoint(rootName, multiDOF)
	if err != nil {
		return nil, err
	}
	rootJointIdx, err := b.addJoint(rootJoint)
	if err != nil {
		return nil, err
	}
	if err := b.addLink(rootName, rootJointIdx); err != nil {
		return nil, err
	}

	if err := b.applyMultiDOF(rootName, multiDOF); err != nil {
		return nil, err
	}
	if err := b.indexCoordinateNames(); err != nil {
		return nil, err
	}
	b.assignBounds()

	var groupErr error
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		g, err := b.m.newGroup(name, groups[name])
		if multierr.AppendInto(&groupErr, err) {
			continue
		}
		b.m.groups[name] = g
		logger.Debugw("built joint model group",
			"group", name, "dof", g.dof, "roots", len(g.roots), "updatedLinks", len(g.updatedLinks))
	}
	if groupErr != nil {
		return nil, groupErr
	}

	logger.Debugw("built kinematic model",
		"model", cfg.Name, "links", len(b.m.links), "joints", len(b.m.joints), "dof", b.m.dof)
	return b.m, nil
}

// validateTopology checks the flat description with a directed graph before
// any recursion: links unique, joints referencing known links, every link at
// most one parent joint, acyclic, exactly one root. Returns the root link
// name.
func validateTopology(cfg ModelConfig) (string, error) {
	if len(cfg.Links) == 0 {
		return "", NewTopologyErrorf("description has no links")
	}
	linkIDs := make(map[string]int64, len(cfg.Links))
	for i, lc := range cfg.Links {
		if _, ok := linkIDs[lc.Name]; ok {
			return "", NewTopologyErrorf("duplicate link name %q", lc.Name)
		}
		linkIDs[lc.Name] = int64(i)
	}

	g := simple.NewDirectedGraph()
	for _, id := range linkIDs {
		g.AddNode(simple.Node(id))
	}
	jointNames := make(map[string]bool, len(cfg.Joints))
	parentOf := make(map[string]bool, len(cfg.Joints))
	for _, jc := range cfg.Joints {
		if jointNames[jc.Name] {
			return "", NewTopologyErrorf("duplicate joint name %q", jc.Name)
		}
		jointNames[jc.Name] = true
		if _, _, err := ParseKind(jc.Kind); err != nil {
			return "", err
		}
		pid, ok := linkIDs[jc.Parent]
		if !ok {
			return "", NewTopologyErrorf("joint %q references unknown parent link %q", jc.Name, jc.Parent)
		}
		cid, ok := linkIDs[jc.Child]
		if !ok {
			return "", NewTopologyErrorf("joint %q references unknown child link %q", jc.Name, jc.Child)
		}
		if pid == cid {
			return "", NewTopologyErrorf("joint %q connects link %q to itself", jc.Name, jc.Parent)
		}
		if parentOf[jc.Child] {
			return "", NewTopologyErrorf("link %q has more than one parent joint", jc.Child)
		}
		parentOf[jc.Child] = true
		g.SetEdge(g.NewEdge(simple.Node(pid), simple.Node(cid)))
	}

	if _, err := topo.Sort(g); err != nil {
		return "", NewTopologyErrorf("description contains a cycle: %v", err)
	}

	var roots []string
	for _, lc := range cfg.Links {
		if g.To(linkIDs[lc.Name]).Len() == 0 {
			roots = append(roots, lc.Name)
		}
	}
	if len(roots) != 1 {
		return "", NewTopologyErrorf("found %d root links, need exactly 1", len(roots))
	}
	return roots[0], nil
}

type modelBuilder struct {
	m           *Model
	linkCfg     map[string]LinkConfig
	childJoints map[string][]JointConfig
	logger      golog.Logger
}

// makeRootJoint constructs the joint anchoring the root link. A multi-DOF
// config whose ChildFrame is the root link supplies it; otherwise the root
// is fixed in place.
func (b *modelBuilder) makeRootJoint(rootName string, multiDOF []MultiDOFConfig) (*Joint, error) {
	var rootCfg *MultiDOFConfig
	for i := range multiDOF {
		if multiDOF[i].ChildFrame != rootName {
			continue
		}
		if rootCfg != nil {
			b.logger.Warnw("duplicate multi-DOF config for root frame, keeping first",
				"frame", rootName, "kept", rootCfg.Name, "ignored", multiDOF[i].Name)
			continue
		}
		rootCfg = &multiDOF[i]
	}

	if rootCfg == nil {
		j := newJoint(rootName+"_root", KindFixed, false, r3.Vector{})
		j.childFrame = rootName
		return j, nil
	}

	kind, _, err := ParseKind(rootCfg.Kind)
	if err != nil {
		return nil, err
	}
	if kind != KindPlanar && kind != KindFloating {
		return nil, NewConfigurationErrorf("root joint %q must be planar or floating, got %q", rootCfg.Name, rootCfg.Kind)
	}
	j := newJoint(rootCfg.Name, kind, false, r3.Vector{})
	j.parentFrame = rootCfg.ParentFrame
	j.childFrame = rootCfg.ChildFrame
	if err := applyEquivalents(j, rootCfg.NameEquivalents); err != nil {
		return nil, err
	}
	return j, nil
}

// addJoint appends a joint to the arena, assigning its state index as the
// running DOF total.
func (b *modelBuilder) addJoint(j *Joint) (int, error) {
	if _, ok := b.m.jointIndex[j.name]; ok {
		return 0, NewTopologyErrorf("duplicate joint name %q", j.name)
	}
	idx := len(b.m.joints)
	j.stateIndex = b.m.dof
	b.m.dof += j.dof
	b.m.joints = append(b.m.joints, j)
	b.m.jointIndex[j.name] = idx
	b.m.jointOrder = append(b.m.jointOrder, idx)
	return idx, nil
}

// addLink recursively constructs the named link and everything below it. The
// link's arena index is its update-order position, since recursion appends
// links in topological visit order.
func (b *modelBuilder) addLink(name string, parentJoint int) error {
	lc := b.linkCfg[name]
	li := len(b.m.links)
	link := &Link{
		name:            name,
		index:           li,
		parentJoint:     parentJoint,
		jointOrigin:     lc.JointOrigin,
		collisionOrigin: lc.CollisionOrigin,
		shape:           lc.Shape,
	}
	if link.jointOrigin == nil || li == 0 {
		// The root link is anchored directly at the tree origin.
		link.jointOrigin = spatialmath.NewZeroPose()
	}
	if link.collisionOrigin == nil {
		link.collisionOrigin = spatialmath.NewZeroPose()
	}
	b.m.links = append(b.m.links, link)
	b.m.linkIndex[name] = li
	b.m.linkOrder = append(b.m.linkOrder, li)
	b.m.joints[parentJoint].childLink = li

	for _, jc := range b.childJoints[name] {
		kind, continuous, err := ParseKind(jc.Kind)
		if err != nil {
			return err
		}
		j := newJoint(jc.Name, kind, continuous, jc.Axis)
		if (kind == KindPrismatic || kind == KindRevolute) && !continuous {
			j.bounds[0] = Limit{Min: jc.Min, Max: jc.Max}
		}
		j.parentFrame = jc.Parent
		j.childFrame = jc.Child
		j.parentLink = li
		ji, err := b.addJoint(j)
		if err != nil {
			return err
		}
		link.childJoints = append(link.childJoints, ji)
		if err := b.addLink(jc.Child, ji); err != nil {
			return err
		}
	}
	return nil
}

// applyMultiDOF resolves non-root multi-DOF configs against the built tree.
// Each config binds to the joint whose child link matches its ChildFrame;
// duplicates for one frame keep the first and log a warning.
func (b *modelBuilder) applyMultiDOF(rootName string, multiDOF []MultiDOFConfig) error {
	var result error
	seen := map[string]string{}
	for i := range multiDOF {
		mc := &multiDOF[i]
		if mc.ChildFrame == rootName {
			continue
		}
		if kept, ok := seen[mc.ChildFrame]; ok {
			b.logger.Warnw("duplicate multi-DOF config for frame, keeping first",
				"frame", mc.ChildFrame, "kept", kept, "ignored", mc.Name)
			continue
		}
		li, ok := b.m.linkIndex[mc.ChildFrame]
		if !ok {
			multierr.AppendInto(&result,
				NewConfigurationErrorf("multi-DOF config %q references unknown frame %q", mc.Name, mc.ChildFrame))
			continue
		}
		seen[mc.ChildFrame] = mc.Name
		j := b.m.joints[b.m.links[li].parentJoint]
		kind, _, err := ParseKind(mc.Kind)
		if err != nil {
			multierr.AppendInto(&result, err)
			continue
		}
		if kind != j.kind {
			multierr.AppendInto(&result,
				NewConfigurationErrorf("multi-DOF config %q declares kind %q but joint %q is %v",
					mc.Name, mc.Kind, j.name, j.kind))
			continue
		}
		j.parentFrame = mc.ParentFrame
		j.childFrame = mc.ChildFrame
		multierr.AppendInto(&result, applyEquivalents(j, mc.NameEquivalents))
	}
	return result
}

func applyEquivalents(j *Joint, equivalents map[string]string) error {
	var result error
	locals := make([]string, 0, len(equivalents))
	for local := range equivalents {
		locals = append(locals, local)
	}
	sort.Strings(locals)
	for _, local := range locals {
		multierr.AppendInto(&result, j.setEquivalent(local, equivalents[local]))
	}
	return result
}

// indexCoordinateNames registers every external coordinate name in the joint
// map so lookups by coordinate name resolve to the owning joint.
func (b *modelBuilder) indexCoordinateNames() error {
	var result error
	for idx, j := range b.m.joints {
		for _, ext := range j.ExternalNames() {
			if prev, ok := b.m.jointIndex[ext]; ok && prev != idx {
				multierr.AppendInto(&result,
					NewConfigurationErrorf("coordinate name %q of joint %q is already in use", ext, j.name))
				continue
			}
			b.m.jointIndex[ext] = idx
		}
	}
	return result
}

// assignBounds flattens per-joint limits into the model's combined bounds
// vector, [min0, max0, ...] in state order, alongside the per-coordinate
// wrap flags.
func (b *modelBuilder) assignBounds() {
	b.m.bounds = make([]float64, 0, 2*b.m.dof)
	b.m.wrap = make([]bool, 0, b.m.dof)
	for _, ji := range b.m.jointOrder {
		j := b.m.joints[ji]
		for _, lim := range j.bounds {
			b.m.bounds = append(b.m.bounds, lim.Min, lim.Max)
		}
		b.m.wrap = append(b.m.wrap, j.wrapFlags()...)
	}
}
