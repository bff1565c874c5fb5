package kinematics

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestGroupStructure(t *testing.T) {
	m := newTestArm(t)
	g, err := m.Group("arm")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, g.Name(), test.ShouldEqual, "arm")
	test.That(t, g.Dimension(), test.ShouldEqual, 2)
	test.That(t, g.JointNames(), test.ShouldResemble, []string{"j2", "j4"})
	test.That(t, g.Has("j2"), test.ShouldBeTrue)
	test.That(t, g.Has("j1"), test.ShouldBeFalse)
	test.That(t, g.Has("j9"), test.ShouldBeFalse)

	// Group-local bounds follow the member joints in state order.
	test.That(t, g.Bounds(), test.ShouldHaveLength, 4)
	test.That(t, g.Bounds()[0], test.ShouldEqual, -2.0)
	test.That(t, g.Bounds()[1], test.ShouldEqual, 2.0)

	pos, err := g.JointPosition("j4")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 1)
	_, err = g.JointPosition("j1")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGroupRootsAndUpdatedLinks(t *testing.T) {
	m := newTestArm(t)
	g, err := m.Group("arm")
	test.That(t, err, test.ShouldBeNil)

	// Neither j2's parent (j1) nor j4's parent (j3) is in the group, so both
	// members are group roots.
	test.That(t, g.RootJointNames(), test.ShouldResemble, []string{"j2", "j4"})

	// Updated links: everything at or below j2's child link, in update order.
	test.That(t, g.UpdatedLinkNames(), test.ShouldResemble, []string{"l2", "l3", "l4", "l5"})
}

func TestGroupRootsChain(t *testing.T) {
	m, err := NewModel(testArmConfig(), map[string][]string{
		"wrist": {"j4", "j5"},
	}, nil, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	g, err := m.Group("wrist")
	test.That(t, err, test.ShouldBeNil)

	// j5's parent joint j4 is in the group, so only j4 is a root.
	test.That(t, g.RootJointNames(), test.ShouldResemble, []string{"j4"})
	test.That(t, g.UpdatedLinkNames(), test.ShouldResemble, []string{"l4", "l5"})
}

func TestGroupSetOperations(t *testing.T) {
	m, err := NewModel(testArmConfig(), map[string][]string{
		"arm":   {"j2", "j4"},
		"wrist": {"j4", "j5"},
	}, nil, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	arm, err := m.Group("arm")
	test.That(t, err, test.ShouldBeNil)
	wrist, err := m.Group("wrist")
	test.That(t, err, test.ShouldBeNil)

	union, err := arm.Union("arm_wrist", wrist)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, union.JointNames(), test.ShouldResemble, []string{"j2", "j4", "j5"})
	test.That(t, union.Contains(arm), test.ShouldBeTrue)
	test.That(t, union.Contains(wrist), test.ShouldBeTrue)
	test.That(t, arm.Contains(union), test.ShouldBeFalse)

	diff, err := arm.Difference("arm_only", wrist)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.JointNames(), test.ShouldResemble, []string{"j2"})

	// Derived groups are views, not registered on the model.
	test.That(t, m.HasGroup("arm_wrist"), test.ShouldBeFalse)
}
