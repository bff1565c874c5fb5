package kinematics

import (
	"github.com/golang/geo/r3"

	"github.com/NTangjzt/arm-navigation/spatialmath"
)

// ModelConfig is the already-parsed robot description consumed by NewModel.
// Link and joint lists are flat and unordered; each joint names its parent
// and child link.
type ModelConfig struct {
	Name   string        `json:"name"`
	Links  []LinkConfig  `json:"links"`
	Joints []JointConfig `json:"joints"`
}

// LinkConfig describes one rigid body. JointOrigin is the constant transform
// from the parent link frame to this link's joint frame; CollisionOrigin is
// the constant transform from the link frame to its collision geometry. A nil
// pose means identity. Shape is carried opaquely for downstream collision
// checking.
type LinkConfig struct {
	Name            string               `json:"name"`
	Shape           spatialmath.Geometry `json:"-"`
	JointOrigin     spatialmath.Pose     `json:"-"`
	CollisionOrigin spatialmath.Pose     `json:"-"`
}

// JointConfig describes one joint connecting Parent to Child. Axis applies to
// prismatic and revolute joints; Min and Max bound single-DOF joints. Kind is
// one of "fixed", "planar", "floating", "prismatic", "revolute", or
// "continuous" (a revolute joint whose angle wraps instead of clamping).
type JointConfig struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Parent string    `json:"parent"`
	Child  string    `json:"child"`
	Axis   r3.Vector `json:"axis"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// MultiDOFConfig configures a multi-DOF joint against an external frame pair,
// e.g. base within world. A config whose ChildFrame is the root link adds a
// planar or floating root joint named Name; other configs attach external
// coordinate names to the joint whose child link matches ChildFrame.
// NameEquivalents maps a joint-local coordinate name (e.g. "planar_x") to the
// externally visible name callers address it by (e.g. "base_x").
type MultiDOFConfig struct {
	Name            string            `json:"name"`
	Kind            string            `json:"kind"`
	ParentFrame     string            `json:"parent_frame"`
	ChildFrame      string            `json:"child_frame"`
	NameEquivalents map[string]string `json:"name_equivalents"`
}
