package kinematics

import "fmt"

// TopologyError reports a malformed kinematic tree found during model
// construction: zero or multiple roots, cycles, dangling link references, or
// an unknown joint kind. No partial model is returned alongside one.
type TopologyError struct {
	Reason string
}

// NewTopologyErrorf returns a TopologyError with a formatted reason.
func NewTopologyErrorf(format string, args ...interface{}) *TopologyError {
	return &TopologyError{Reason: fmt.Sprintf(format, args...)}
}

func (e *TopologyError) Error() string {
	return "topology error: " + e.Reason
}

// ConfigurationError reports a group or multi-DOF declaration that references
// a name absent from the built tree, or otherwise cannot be applied to it.
type ConfigurationError struct {
	Reason string
}

// NewConfigurationErrorf returns a ConfigurationError with a formatted reason.
func NewConfigurationErrorf(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NotFoundError reports a lookup of a link, joint, or group by an unknown
// name. It is local to the call; the model is unaffected.
type NotFoundError struct {
	Kind string
	Name string
}

// NewNotFoundError returns a NotFoundError for the named entity, where kind
// is one of "link", "joint", or "group".
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with name %q", e.Kind, e.Name)
}

// DimensionMismatchError reports a coordinate vector whose length does not
// match the addressed joint, group, or model dimension. It is always returned
// before any mutation occurs.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

// NewDimensionMismatchError returns a DimensionMismatchError.
func NewDimensionMismatchError(expected, got int) *DimensionMismatchError {
	return &DimensionMismatchError{Expected: expected, Got: got}
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("length of input (%d) does not match expected dimension (%d)", e.Got, e.Expected)
}
