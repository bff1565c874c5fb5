package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/NTangjzt/arm-navigation/spatialmath"
	"github.com/NTangjzt/arm-navigation/utils"
)

// Kind identifies a joint's parameterization.
type Kind uint8

// Supported joint kinds.
const (
	KindFixed Kind = iota
	KindPlanar
	KindFloating
	KindPrismatic
	KindRevolute
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindPlanar:
		return "planar"
	case KindFloating:
		return "floating"
	case KindPrismatic:
		return "prismatic"
	case KindRevolute:
		return "revolute"
	default:
		return "unknown"
	}
}

// ParseKind maps a declared kind string to a joint kind. The "continuous"
// alias parses as a revolute joint whose angle wraps instead of clamping.
func ParseKind(s string) (Kind, bool, error) {
	switch s {
	case "fixed":
		return KindFixed, false, nil
	case "planar":
		return KindPlanar, false, nil
	case "floating":
		return KindFloating, false, nil
	case "prismatic":
		return KindPrismatic, false, nil
	case "revolute":
		return KindRevolute, false, nil
	case "continuous":
		return KindRevolute, true, nil
	default:
		return 0, false, NewTopologyErrorf("unknown joint kind %q", s)
	}
}

// Limit is the inclusive allowed range of a single generalized coordinate.
type Limit struct {
	Min float64
	Max float64
}

// Joint is a parameterized connector between two links. Parent and child
// links are referred to by index into the owning model's link arena; the root
// joint has no parent link. Each joint owns a contiguous slice of the global
// coordinate vector starting at its state index.
type Joint struct {
	name       string
	kind       Kind
	axis       r3.Vector
	continuous bool
	dof        int
	stateIndex int

	parentLink  int // arena index, -1 for the root joint
	childLink   int
	parentFrame string
	childFrame  string

	localNames      []string
	localToExternal map[string]string
	externalToLocal map[string]string
	bounds          []Limit
}

func newJoint(name string, kind Kind, continuous bool, axis r3.Vector) *Joint {
	j := &Joint{
		name:            name,
		kind:            kind,
		continuous:      continuous,
		dof:             strategies[kind].dof,
		parentLink:      -1,
		childLink:       -1,
		localToExternal: map[string]string{},
		externalToLocal: map[string]string{},
	}
	switch kind {
	case KindPlanar:
		j.localNames = []string{"planar_x", "planar_y", "planar_th"}
		j.bounds = []Limit{
			{math.Inf(-1), math.Inf(1)},
			{math.Inf(-1), math.Inf(1)},
			{-math.Pi, math.Pi},
		}
	case KindFloating:
		j.localNames = []string{
			"floating_trans_x", "floating_trans_y", "floating_trans_z",
			"floating_rot_x", "floating_rot_y", "floating_rot_z", "floating_rot_w",
		}
		j.bounds = []Limit{
			{math.Inf(-1), math.Inf(1)},
			{math.Inf(-1), math.Inf(1)},
			{math.Inf(-1), math.Inf(1)},
			{-1, 1}, {-1, 1}, {-1, 1}, {-1, 1},
		}
	case KindPrismatic, KindRevolute:
		if norm := axis.Norm(); norm > 0 {
			j.axis = axis.Mul(1 / norm)
		} else {
			j.axis = r3.Vector{X: 0, Y: 0, Z: 1}
		}
		j.localNames = []string{name}
		if continuous {
			j.bounds = []Limit{{-math.Pi, math.Pi}}
		} else {
			j.bounds = []Limit{{math.Inf(-1), math.Inf(1)}}
		}
	}
	for _, ln := range j.localNames {
		j.localToExternal[ln] = ln
		j.externalToLocal[ln] = ln
	}
	return j
}

// setEquivalent renames the external name of one local coordinate, keeping
// both direction maps in sync.
func (j *Joint) setEquivalent(local, external string) error {
	old, ok := j.localToExternal[local]
	if !ok {
		return NewConfigurationErrorf("joint %q has no coordinate named %q", j.name, local)
	}
	delete(j.externalToLocal, old)
	j.localToExternal[local] = external
	j.externalToLocal[external] = local
	return nil
}

// Name returns the joint's name.
func (j *Joint) Name() string {
	return j.name
}

// Kind returns the joint's parameterization kind.
func (j *Joint) Kind() Kind {
	return j.kind
}

// DOF returns the number of generalized coordinates the joint uses.
func (j *Joint) DOF() int {
	return j.dof
}

// StateIndex returns the position of the joint's first coordinate in the
// global coordinate vector.
func (j *Joint) StateIndex() int {
	return j.stateIndex
}

// Axis returns the joint axis for prismatic and revolute joints, normalized.
func (j *Joint) Axis() r3.Vector {
	return j.axis
}

// Continuous reports whether a revolute joint wraps at ±π rather than
// clamping to hard bounds.
func (j *Joint) Continuous() bool {
	return j.continuous
}

// ParentFrame returns the external parent frame name for joints configured
// against a frame pair, otherwise the parent link name.
func (j *Joint) ParentFrame() string {
	return j.parentFrame
}

// ChildFrame returns the external child frame name, otherwise the child link
// name.
func (j *Joint) ChildFrame() string {
	return j.childFrame
}

// Bounds returns a copy of the per-coordinate limits in local order.
func (j *Joint) Bounds() []Limit {
	out := make([]Limit, len(j.bounds))
	copy(out, j.bounds)
	return out
}

// LocalNames returns a copy of the joint's local coordinate names in order.
func (j *Joint) LocalNames() []string {
	out := make([]string, len(j.localNames))
	copy(out, j.localNames)
	return out
}

// ExternalNames returns the externally visible coordinate names in local
// coordinate order.
func (j *Joint) ExternalNames() []string {
	out := make([]string, 0, len(j.localNames))
	for _, ln := range j.localNames {
		out = append(out, j.localToExternal[ln])
	}
	return out
}

// ExternalName resolves a local coordinate name to its external name.
func (j *Joint) ExternalName(local string) (string, bool) {
	ext, ok := j.localToExternal[local]
	return ext, ok
}

// LocalName resolves an external coordinate name back to its local name.
func (j *Joint) LocalName(external string) (string, bool) {
	local, ok := j.externalToLocal[external]
	return local, ok
}

// hasExternalName reports whether the joint owns a coordinate addressed by
// the given external name.
func (j *Joint) hasExternalName(external string) bool {
	_, ok := j.externalToLocal[external]
	return ok
}

// wrapFlags reports, per coordinate, whether bounds enforcement wraps the
// value at ±π instead of clamping it.
func (j *Joint) wrapFlags() []bool {
	flags := make([]bool, j.dof)
	if j.kind == KindRevolute && j.continuous {
		flags[0] = true
	}
	return flags
}

// Transform converts the joint's coordinate slice into its local rigid
// transform. The slice length must equal the joint's DOF count.
func (j *Joint) Transform(coords []float64) (spatialmath.Pose, error) {
	if len(coords) != j.dof {
		return nil, NewDimensionMismatchError(j.dof, len(coords))
	}
	return strategies[j.kind].forward(j, coords), nil
}

// CoordsFromTransform recovers the coordinate slice reproducing the given
// local transform. Fixed joints return an empty slice. For floating joints
// the recovered quaternion represents the same rotation as the input but may
// differ in sign.
func (j *Joint) CoordsFromTransform(pose spatialmath.Pose) []float64 {
	return strategies[j.kind].inverse(j, pose)
}

// transformStrategy holds the per-kind coordinate math. Each strategy is a
// pure function of its own coordinate slice, independent of sibling joints,
// which is what lets forward kinematics be a single linear pass.
type transformStrategy struct {
	dof     int
	forward func(j *Joint, coords []float64) spatialmath.Pose
	inverse func(j *Joint, pose spatialmath.Pose) []float64
}

var strategies = map[Kind]transformStrategy{
	KindFixed: {
		dof: 0,
		forward: func(j *Joint, coords []float64) spatialmath.Pose {
			return spatialmath.NewZeroPose()
		},
		inverse: func(j *Joint, pose spatialmath.Pose) []float64 {
			return []float64{}
		},
	},
	KindPlanar: {
		dof: 3,
		forward: func(j *Joint, coords []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromAxisAngle(
				r3.Vector{X: coords[0], Y: coords[1], Z: 0},
				spatialmath.R4AA{Theta: coords[2], RX: 0, RY: 0, RZ: 1},
			)
		},
		inverse: func(j *Joint, pose spatialmath.Pose) []float64 {
			pt := pose.Point()
			aa := spatialmath.QuatToR4AA(pose.Rotation())
			return []float64{pt.X, pt.Y, aa.Theta * aa.RZ}
		},
	},
	KindFloating: {
		dof: 7,
		forward: func(j *Joint, coords []float64) spatialmath.Pose {
			// The quaternion is passed through as given; callers own
			// normalization.
			return spatialmath.NewPoseFromQuaternion(
				r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]},
				quat.Number{Real: coords[6], Imag: coords[3], Jmag: coords[4], Kmag: coords[5]},
			)
		},
		inverse: func(j *Joint, pose spatialmath.Pose) []float64 {
			pt := pose.Point()
			q := pose.Rotation()
			return []float64{pt.X, pt.Y, pt.Z, q.Imag, q.Jmag, q.Kmag, q.Real}
		},
	},
	KindPrismatic: {
		dof: 1,
		forward: func(j *Joint, coords []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromPoint(j.axis.Mul(coords[0]))
		},
		inverse: func(j *Joint, pose spatialmath.Pose) []float64 {
			return []float64{pose.Point().Dot(j.axis)}
		},
	},
	KindRevolute: {
		dof: 1,
		forward: func(j *Joint, coords []float64) spatialmath.Pose {
			angle := coords[0]
			if j.continuous {
				angle = utils.AngleNorm(angle)
			}
			return spatialmath.NewPoseFromAxisAngle(
				r3.Vector{},
				spatialmath.R4AA{Theta: angle, RX: j.axis.X, RY: j.axis.Y, RZ: j.axis.Z},
			)
		},
		inverse: func(j *Joint, pose spatialmath.Pose) []float64 {
			aa := spatialmath.QuatToR4AA(pose.Rotation())
			return []float64{aa.Theta * j.axis.Dot(r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ})}
		},
	},
}
