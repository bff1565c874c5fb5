package kinematics

import (
	"github.com/NTangjzt/arm-navigation/spatialmath"
)

// Link is a rigid body in the kinematic tree. Links and joints are owned by
// the model's arenas; parent and child references are arena indices. A link's
// index doubles as its update-order position, since links are appended to the
// arena in topological visit order.
type Link struct {
	name  string
	index int

	parentJoint int // joint connecting this link to its parent
	childJoints []int

	jointOrigin     spatialmath.Pose
	collisionOrigin spatialmath.Pose
	shape           spatialmath.Geometry

	attached []*AttachedBody
}

// Name returns the link's name.
func (l *Link) Name() string {
	return l.name
}

// UpdateOrderPosition returns the link's position in the model's update
// order. It strictly increases along every root-to-leaf path.
func (l *Link) UpdateOrderPosition() int {
	return l.index
}

// JointOrigin returns the constant transform from the parent link frame to
// this link's joint frame.
func (l *Link) JointOrigin() spatialmath.Pose {
	return l.jointOrigin
}

// CollisionOrigin returns the constant transform from the link frame to its
// collision geometry.
func (l *Link) CollisionOrigin() spatialmath.Pose {
	return l.collisionOrigin
}

// Shape returns the link's collision geometry, or nil if it has none. The
// shape is opaque to this package.
func (l *Link) Shape() spatialmath.Geometry {
	return l.shape
}

// AttachedBody is auxiliary geometry rigidly fixed to a link after model
// construction, e.g. a grasped object. Bodies are attached and detached
// explicitly under the model's exclusive lock, never by forward kinematics.
type AttachedBody struct {
	name            string
	link            int // owning link arena index, set on attach
	shapes          []spatialmath.Geometry
	fixedTransforms []spatialmath.Pose
	touchLinks      []string
}

// NewAttachedBody creates a body from shapes and their per-shape fixed
// transforms relative to the owning link. touchLinks names the links the body
// may contact, consumed but not interpreted here.
func NewAttachedBody(
	name string,
	shapes []spatialmath.Geometry,
	fixedTransforms []spatialmath.Pose,
	touchLinks []string,
) (*AttachedBody, error) {
	if len(shapes) != len(fixedTransforms) {
		return nil, NewDimensionMismatchError(len(shapes), len(fixedTransforms))
	}
	body := &AttachedBody{
		name:            name,
		link:            -1,
		shapes:          make([]spatialmath.Geometry, len(shapes)),
		fixedTransforms: make([]spatialmath.Pose, len(fixedTransforms)),
		touchLinks:      make([]string, len(touchLinks)),
	}
	copy(body.shapes, shapes)
	copy(body.fixedTransforms, fixedTransforms)
	copy(body.touchLinks, touchLinks)
	return body, nil
}

// Name returns the body's id.
func (b *AttachedBody) Name() string {
	return b.name
}

// Shapes returns a copy of the body's shape list.
func (b *AttachedBody) Shapes() []spatialmath.Geometry {
	out := make([]spatialmath.Geometry, len(b.shapes))
	copy(out, b.shapes)
	return out
}

// TouchLinks returns a copy of the link names the body may contact.
func (b *AttachedBody) TouchLinks() []string {
	out := make([]string, len(b.touchLinks))
	copy(out, b.touchLinks)
	return out
}

// Poses returns the global pose of each of the body's shapes given the
// owning link's global pose.
func (b *AttachedBody) Poses(linkPose spatialmath.Pose) []spatialmath.Pose {
	out := make([]spatialmath.Pose, 0, len(b.fixedTransforms))
	for _, trans := range b.fixedTransforms {
		out = append(out, spatialmath.Compose(linkPose, trans))
	}
	return out
}
