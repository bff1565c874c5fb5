package kinematics

import (
	"github.com/pkg/errors"

	"github.com/NTangjzt/arm-navigation/spatialmath"
)

// LinkPoses maps link names to their global poses after a forward kinematics
// pass.
type LinkPoses map[string]spatialmath.Pose

// Poses computes every link's global pose from the state's coordinate
// vector in a single linear pass over the model's update order. offset is an
// optional external root offset; nil means identity. The pass runs under the
// model's shared lock, so any number of states may compute poses against one
// model concurrently.
func (s *State) Poses(offset spatialmath.Pose) (LinkPoses, error) {
	if offset == nil {
		offset = spatialmath.NewZeroPose()
	}
	m := s.model
	m.SharedLock()
	defer m.SharedUnlock()

	poses := make(LinkPoses, len(m.links))
	for _, li := range m.linkOrder {
		pose, err := s.linkPose(m.links[li], offset, poses)
		if err != nil {
			return nil, err
		}
		poses[m.links[li].name] = pose
	}
	return poses, nil
}

// PosesForGroup recomputes only the named group's updated links, writing
// into poses. Every updated link's ancestors must already be current in
// poses; a missing ancestor pose is an error and leaves poses partially
// updated only up to the failing link.
func (s *State) PosesForGroup(groupName string, offset spatialmath.Pose, poses LinkPoses) error {
	if offset == nil {
		offset = spatialmath.NewZeroPose()
	}
	m := s.model
	g, err := m.Group(groupName)
	if err != nil {
		return err
	}
	m.SharedLock()
	defer m.SharedUnlock()

	for _, li := range g.updatedLinks {
		link := m.links[li]
		if link.parentJoint != m.rootJoint {
			parentName := m.links[m.joints[link.parentJoint].parentLink].name
			if _, ok := poses[parentName]; !ok {
				return errors.Errorf("pose of ancestor link %q is not available; compute it before the group pass", parentName)
			}
		}
		pose, err := s.linkPose(link, offset, poses)
		if err != nil {
			return err
		}
		poses[link.name] = pose
	}
	return nil
}

// linkPose computes one link's global pose given its ancestors' poses. The
// root link's pose is offset ∘ root joint transform; every other link's is
// parent ∘ joint origin ∘ joint transform.
func (s *State) linkPose(link *Link, offset spatialmath.Pose, poses LinkPoses) (spatialmath.Pose, error) {
	m := s.model
	j := m.joints[link.parentJoint]
	local, err := j.Transform(s.params[j.stateIndex : j.stateIndex+j.dof])
	if err != nil {
		return nil, err
	}
	if link.parentJoint == m.rootJoint {
		return spatialmath.Compose(offset, local), nil
	}
	parent := poses[m.links[j.parentLink].name]
	return spatialmath.Compose(spatialmath.Compose(parent, link.jointOrigin), local), nil
}

// CollisionPose returns the named link's collision geometry pose, the link's
// global pose composed with its constant collision-origin transform.
func CollisionPose(m *Model, linkName string, poses LinkPoses) (spatialmath.Pose, error) {
	link, err := m.Link(linkName)
	if err != nil {
		return nil, err
	}
	pose, ok := poses[linkName]
	if !ok {
		return nil, errors.Errorf("pose of link %q is not available", linkName)
	}
	return spatialmath.Compose(pose, link.collisionOrigin), nil
}

// AttachedBodyPoses returns, per attached body of the named link, the global
// poses of the body's shapes.
func AttachedBodyPoses(m *Model, linkName string, poses LinkPoses) (map[string][]spatialmath.Pose, error) {
	pose, ok := poses[linkName]
	if !ok {
		return nil, errors.Errorf("pose of link %q is not available", linkName)
	}
	bodies, err := m.AttachedBodies(linkName)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]spatialmath.Pose, len(bodies))
	for _, body := range bodies {
		out[body.Name()] = body.Poses(pose)
	}
	return out, nil
}
