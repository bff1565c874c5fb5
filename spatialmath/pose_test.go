package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestZeroPose(t *testing.T) {
	p := NewZeroPose()
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, p.Rotation(), test.ShouldResemble, quat.Number{Real: 1})
}

func TestPointRoundTrip(t *testing.T) {
	pt := r3.Vector{X: 1, Y: 2, Z: 3}
	p := NewPoseFromPoint(pt)
	test.That(t, p.Point(), test.ShouldResemble, pt)

	// A rotation must not disturb the stored translation.
	aa := R4AA{math.Pi / 2, 0, 0, 1}
	p = NewPoseFromAxisAngle(pt, aa)
	got := p.Point()
	test.That(t, got.X, test.ShouldAlmostEqual, pt.X)
	test.That(t, got.Y, test.ShouldAlmostEqual, pt.Y)
	test.That(t, got.Z, test.ShouldAlmostEqual, pt.Z)
}

func TestCompose(t *testing.T) {
	// Rotate 90 degrees about Z at (1,2,0), then step forward one unit in X.
	a := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 0}, R4AA{math.Pi / 2, 0, 0, 1})
	b := NewPoseFromPoint(r3.Vector{X: 1, Y: 0, Z: 0})
	c := Compose(a, b)
	pt := c.Point()
	test.That(t, pt.X, test.ShouldAlmostEqual, 1)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 3)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 0)

	// Composing with identity changes nothing.
	d := Compose(a, NewZeroPose())
	test.That(t, PoseAlmostEqual(a, d), test.ShouldBeTrue)
	d = Compose(NewZeroPose(), a)
	test.That(t, PoseAlmostEqual(a, d), test.ShouldBeTrue)
}

func TestTransformPoint(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 0, Y: 0, Z: 1}, R4AA{math.Pi, 0, 0, 1})
	pt := TransformPoint(p, r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, pt.X, test.ShouldAlmostEqual, -1)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 1)
}

func TestQuatAlmostEqualSign(t *testing.T) {
	q := (&R4AA{math.Pi / 3, 0, 1, 0}).ToQuat()
	test.That(t, QuatAlmostEqual(q, Flip(q), 1e-8), test.ShouldBeTrue)
}

func TestQuatAxisAngleRoundTrip(t *testing.T) {
	aa := R4AA{1.3, 0, 0, 1}
	got := QuatToR4AA(aa.ToQuat())
	test.That(t, got.Theta, test.ShouldAlmostEqual, 1.3)
	test.That(t, got.RX, test.ShouldAlmostEqual, 0)
	test.That(t, got.RY, test.ShouldAlmostEqual, 0)
	test.That(t, got.RZ, test.ShouldAlmostEqual, 1)

	// Identity rotation has a well defined angle even with a degenerate axis.
	got = QuatToR4AA(quat.Number{Real: 1})
	test.That(t, got.Theta, test.ShouldAlmostEqual, 0)
}

func TestAxisNormalize(t *testing.T) {
	aa := R4AA{1, 0, 0, 10}
	aa.Normalize()
	test.That(t, aa.RZ, test.ShouldAlmostEqual, 1)

	aa = R4AA{0, 0, 0, 0}
	aa.Normalize()
	test.That(t, aa.RZ, test.ShouldAlmostEqual, 1)
}
