// Package spatialmath defines spatial mathematical operations.
// Rigid transformations are represented as dual quaternions, which compose
// cheaply and do not accumulate the scaling errors of matrix chains.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/NTangjzt/arm-navigation/utils"
)

const defaultEpsilon = 1e-8

// Pose represents a rigid transformation in 3D space: a rotation followed by
// a translation.
type Pose interface {
	// Point returns the translation component.
	Point() r3.Vector

	// Rotation returns the rotation component as a quaternion.
	Rotation() quat.Number
}

// dualQuaternion is the Pose implementation. The real part holds the rotation
// quaternion r and the dual part holds (t/2)*r for translation t.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose with no translation or rotation.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

// NewPoseFromPoint takes a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in reference to.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(point)
	return q
}

// NewPoseFromQuaternion creates a pose from a point and a rotation quaternion.
// The quaternion is stored as given; callers must supply valid rotations.
func NewPoseFromQuaternion(point r3.Vector, rotation quat.Number) Pose {
	q := newDualQuaternion()
	q.Real = rotation
	q.setTranslation(point)
	return q
}

// NewPoseFromAxisAngle creates a pose from a point and an R4 axis angle.
func NewPoseFromAxisAngle(point r3.Vector, aa R4AA) Pose {
	return NewPoseFromQuaternion(point, aa.ToQuat())
}

// setTranslation correctly sets the translation against the rotation.
func (q *dualQuaternion) setTranslation(pt r3.Vector) {
	q.Dual = quat.Mul(quat.Number{Real: 0, Imag: pt.X / 2, Jmag: pt.Y / 2, Kmag: pt.Z / 2}, q.Real)
}

// Point returns the translation component.
func (q *dualQuaternion) Point() r3.Vector {
	tq := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: tq.Imag, Y: tq.Jmag, Z: tq.Kmag}
}

// Rotation returns the rotation component.
func (q *dualQuaternion) Rotation() quat.Number {
	return q.Real
}

// Compose treats Poses as functions A(x) and B(x) and returns A(B(x)),
// the pose of B within the frame of A.
func Compose(a, b Pose) Pose {
	result := &dualQuaternion{dualquat.Mul(dualQuaternionFromPose(a).Number, dualQuaternionFromPose(b).Number)}
	// Defend against accumulated floating point drift in the rotation.
	if vecLen := quat.Abs(result.Real); vecLen != 1 {
		result.Real = quat.Scale(1/vecLen, result.Real)
	}
	return result
}

// TransformPoint applies a pose to a point: rotates it, then translates it.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	r := p.Rotation()
	ptQ := quat.Number{Real: 0, Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	rotated := quat.Mul(quat.Mul(r, ptQ), quat.Conj(r))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}.Add(p.Point())
}

func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	q := newDualQuaternion()
	q.Real = p.Rotation()
	q.setTranslation(p.Point())
	return q
}

// PoseAlmostEqual checks if two poses are within a small epsilon of each
// other. The quaternions q and -q represent the same rotation and compare as
// equal.
func PoseAlmostEqual(a, b Pose) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), defaultEpsilon) &&
		QuatAlmostEqual(a.Rotation(), b.Rotation(), defaultEpsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects for near-equality.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}

// QuatAlmostEqual compares two quaternions for near-equality up to sign.
func QuatAlmostEqual(a, b quat.Number, epsilon float64) bool {
	diff := quat.Sub(a, b)
	sum := quat.Add(a, b)
	return quat.Abs(diff) <= epsilon || quat.Abs(sum) <= epsilon
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the squares of
// the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing
// the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++
// Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return R4AA{angle, 1, 0, 0}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}
