package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
)

func TestSetGetRoundTrip(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)

	vals := make([]float64, m.Dimension())
	floats.Span(vals, -0.4, 0.4)
	changed, err := s.SetParams(vals)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeTrue)

	// Values come back exactly as written; no enforcement is applied by set.
	test.That(t, s.Params(), test.ShouldResemble, vals)

	// Writing identical values to already-seen coordinates is a no-op.
	changed, err = s.SetParams(vals)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeFalse)

	// Writing the same value to an unseen coordinate still counts as a
	// change, since the seen flag flips.
	s.Reset()
	changed, err = s.SetParams(vals)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeTrue)
}

func TestSetDimensionMismatch(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)
	before := s.Params()

	_, err := s.SetParams([]float64{1, 2})
	var dimErr *DimensionMismatchError
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	test.That(t, dimErr.Expected, test.ShouldEqual, 5)

	// Rejected before any mutation: values and seen flags are untouched.
	test.That(t, s.Params(), test.ShouldResemble, before)
	test.That(t, s.SeenAll(), test.ShouldBeFalse)

	_, err = s.SetJointParams("j1", []float64{1, 2})
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	_, err = s.SetGroupParams("arm", []float64{1})
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	_, err = s.SetGroupParams("leg", []float64{1})
	var nfErr *NotFoundError
	test.That(t, errors.As(err, &nfErr), test.ShouldBeTrue)
}

func TestSeenTracking(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)

	test.That(t, s.SeenAll(), test.ShouldBeFalse)
	test.That(t, s.Missing(), test.ShouldHaveLength, 5)

	s.DefaultParams()
	test.That(t, s.SeenAll(), test.ShouldBeTrue)
	test.That(t, s.Missing(), test.ShouldHaveLength, 0)

	s.Reset()
	test.That(t, s.SeenAll(), test.ShouldBeFalse)

	_, err := s.SetJointParams("j3", []float64{0.5})
	test.That(t, err, test.ShouldBeNil)
	seen, err := s.SeenJoint("j3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen, test.ShouldBeTrue)
	seen, err = s.SeenJoint("j1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen, test.ShouldBeFalse)

	seen, err = s.SeenAllGroup("arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen, test.ShouldBeFalse)
	test.That(t, s.SetAllGroup("arm", 0.1), test.ShouldBeNil)
	seen, err = s.SeenAllGroup("arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen, test.ShouldBeTrue)

	test.That(t, s.String(), test.ShouldContainSubstring, "unseen")
}

func TestDefaultParams(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)
	s.DefaultParams()

	// Zero lies within every fixture joint's bounds.
	for _, v := range s.Params() {
		test.That(t, v, test.ShouldEqual, 0.0)
	}

	// A coordinate whose bounds exclude zero defaults to the midpoint.
	cfg := ModelConfig{
		Name:  "lift",
		Links: []LinkConfig{{Name: "base"}, {Name: "carriage"}},
		Joints: []JointConfig{{
			Name: "lift", Kind: "prismatic", Parent: "base", Child: "carriage",
			Axis: r3.Vector{X: 0, Y: 0, Z: 1}, Min: 2, Max: 5,
		}},
	}
	lift, err := NewModel(cfg, nil, nil, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	ls := NewState(lift)
	ls.DefaultParams()
	test.That(t, ls.Params()[0], test.ShouldAlmostEqual, 3.5)
}

func TestRandomParamsWithinBounds(t *testing.T) {
	m := newTestMobile(t)
	s := NewStateWithRandom(m, rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		s.RandomParams()
		test.That(t, s.CheckBounds(), test.ShouldBeTrue)
		// Unbounded planar translations sample within the default range.
		vals := s.Params()
		test.That(t, math.Abs(vals[0]), test.ShouldBeLessThanOrEqualTo, 999.0)
		test.That(t, math.Abs(vals[1]), test.ShouldBeLessThanOrEqualTo, 999.0)
	}
	test.That(t, s.SeenAll(), test.ShouldBeTrue)
}

func TestPerturbLeavesSeenUntouched(t *testing.T) {
	m := newTestArm(t)
	s := NewStateWithRandom(m, rand.New(rand.NewSource(7)))

	// Perturbing unseen coordinates keeps them unseen; this is deliberately
	// different from direct assignment.
	s.PerturbParams(0.1)
	test.That(t, s.SeenAll(), test.ShouldBeFalse)

	s.DefaultParams()
	s.PerturbParams(0.1)
	test.That(t, s.SeenAll(), test.ShouldBeTrue)
	// Perturbed values stay within bounds because the perturbation clamps.
	test.That(t, s.CheckBounds(), test.ShouldBeTrue)

	// Group form only moves the group's coordinates.
	before := s.Params()
	test.That(t, s.PerturbGroupParams("arm", 0.05), test.ShouldBeNil)
	after := s.Params()
	test.That(t, after[0], test.ShouldEqual, before[0])
	test.That(t, after[2], test.ShouldEqual, before[2])
	test.That(t, after[4], test.ShouldEqual, before[4])
}

func TestEnforceBoundsClamp(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)

	// A bounded revolute set past its limit clamps to the limit.
	_, err := s.SetJointParams("j1", []float64{2.0})
	test.That(t, err, test.ShouldBeNil)
	vals, err := s.JointParams("j1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vals[0], test.ShouldEqual, 2.0)
	test.That(t, s.CheckBounds(), test.ShouldBeFalse)

	s.EnforceBounds()
	vals, err = s.JointParams("j1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vals[0], test.ShouldEqual, 1.0)
	test.That(t, s.CheckBounds(), test.ShouldBeTrue)

	// Enforcement is idempotent.
	once := s.Params()
	s.EnforceBounds()
	test.That(t, s.Params(), test.ShouldResemble, once)
}

func TestContinuousWrapNotClamp(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)

	// j4 is continuous: any value is in bounds, and enforcement wraps.
	_, err := s.SetJointParams("j4", []float64{2*math.Pi + 0.5})
	test.That(t, err, test.ShouldBeNil)
	ok, err := s.CheckJointBounds("j4")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, s.EnforceJointBounds("j4"), test.ShouldBeNil)
	vals, err := s.JointParams("j4")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vals[0], test.ShouldAlmostEqual, 0.5)

	ok, err = s.CheckJointsBounds([]string{"j1", "j4"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	_, err = s.CheckJointsBounds([]string{"j1", "j9"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGroupIsolation(t *testing.T) {
	m := newTestArm(t)
	s := NewState(m)

	changed, err := s.SetGroupParams("arm", []float64{0.25, 0.75})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeTrue)

	// Only the two addressed global coordinates moved; the other three are
	// untouched and still unseen.
	test.That(t, s.Params(), test.ShouldResemble, []float64{0, 0.25, 0, 0.75, 0})
	for _, jn := range []string{"j1", "j3", "j5"} {
		seen, err := s.SeenJoint(jn)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, seen, test.ShouldBeFalse)
	}

	got, err := s.GroupParams("arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, []float64{0.25, 0.75})

	// Group-scoped reset clears only the group's flags.
	test.That(t, s.ResetGroup("arm"), test.ShouldBeNil)
	seen, err := s.SeenAllGroup("arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seen, test.ShouldBeFalse)
}

func TestStateCopyAndEquality(t *testing.T) {
	m := newTestArm(t)
	s := NewStateWithRandom(m, rand.New(rand.NewSource(3)))
	s.RandomParams()

	c := s.Copy()
	test.That(t, c.Model(), test.ShouldEqual, m)
	test.That(t, s.AlmostEqual(c), test.ShouldBeTrue)
	test.That(t, c.SeenAll(), test.ShouldBeTrue)

	// Copies are independent.
	_, err := c.SetJointParams("j1", []float64{0.123})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.AlmostEqual(c), test.ShouldBeFalse)
	vals, err := s.JointParams("j1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vals[0], test.ShouldNotEqual, 0.123)

	// States of different dimension are never equal.
	other := NewState(newTestMobile(t))
	test.That(t, s.AlmostEqual(other), test.ShouldBeFalse)
}

func TestCopyHasOwnRandomSource(t *testing.T) {
	m := newTestArm(t)

	// Draws on a copy must not advance the original's sequence, so that
	// per-request copies can sample independently. Copy itself takes one
	// value from the parent source to seed the copy's own source.
	refSrc := rand.New(rand.NewSource(5))
	_ = refSrc.Int63()
	reference := NewStateWithRandom(m, refSrc)
	reference.RandomParams()
	want := reference.Params()

	s := NewStateWithRandom(m, rand.New(rand.NewSource(5)))
	c := s.Copy()
	c.RandomParams()
	c.PerturbParams(0.1)
	s.RandomParams()
	test.That(t, s.Params(), test.ShouldResemble, want)
}
