package kinematics

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/NTangjzt/arm-navigation/utils"
)

const (
	// Coordinates with an infinite bound sample and perturb within this
	// range instead.
	defaultRandomRange = 999.0

	// Two states are equal when every coordinate differs by less than this.
	stateEqualityEpsilon = 0x1p-52
)

// State is a mutable coordinate vector bound to one model for its lifetime.
// Alongside each coordinate it tracks whether the value was explicitly
// assigned ("seen"), letting callers distinguish supplied values from
// defaulted ones and top up incomplete states from a fallback source. A
// State is not internally synchronized; use one per in-flight computation.
type State struct {
	model  *Model
	params []float64
	seen   []bool
	rnd    *rand.Rand
}

// NewState creates a state of the model's dimension, all zeros and all
// unseen, with a time-seeded random source.
func NewState(m *Model) *State {
	//nolint:gosec // sampling joint values, not secrets
	return NewStateWithRandom(m, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewStateWithRandom creates a state drawing random and perturbed values
// from the given source. Useful for deterministic tests.
func NewStateWithRandom(m *Model, rnd *rand.Rand) *State {
	return &State{
		model:  m,
		params: make([]float64, m.Dimension()),
		seen:   make([]bool, m.Dimension()),
		rnd:    rnd,
	}
}

// Model returns the model this state is bound to.
func (s *State) Model() *Model {
	return s.model
}

// Dimension returns the length of the coordinate vector.
func (s *State) Dimension() int {
	return len(s.params)
}

// Copy returns an independent state with the same coordinate and seen
// vectors, bound to the same model. The copy gets its own random source so
// per-request copies can sample from separate goroutines.
func (s *State) Copy() *State {
	out := &State{
		model:  s.model,
		params: make([]float64, len(s.params)),
		seen:   make([]bool, len(s.seen)),
		//nolint:gosec // sampling joint values, not secrets
		rnd: rand.New(rand.NewSource(s.rnd.Int63())),
	}
	copy(out.params, s.params)
	copy(out.seen, s.seen)
	return out
}

// AlmostEqual reports whether the two states have the same dimension and
// every coordinate differs by less than machine epsilon. Seen flags are not
// compared.
func (s *State) AlmostEqual(other *State) bool {
	if len(s.params) != len(other.params) {
		return false
	}
	for i, v := range s.params {
		if math.Abs(v-other.params[i]) >= stateEqualityEpsilon {
			return false
		}
	}
	return true
}

// index resolution helpers. Whole-state operations address every coordinate;
// group operations address the group's global positions; joint operations
// address the joint's contiguous slice.

func (s *State) groupIndices(groupName string) ([]int, error) {
	g, err := s.model.Group(groupName)
	if err != nil {
		return nil, err
	}
	return g.stateIndex, nil
}

func (s *State) jointIndices(jointName string) ([]int, error) {
	j, err := s.model.Joint(jointName)
	if err != nil {
		return nil, err
	}
	idx := make([]int, j.dof)
	for k := range idx {
		idx[k] = j.stateIndex + k
	}
	return idx, nil
}

func (s *State) allIndices() []int {
	idx := make([]int, len(s.params))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// SetParams overwrites the whole coordinate vector, marking every coordinate
// seen. It reports whether anything actually changed (a value differed, or a
// coordinate was previously unseen), letting callers detect no-op writes.
// Values are stored exactly as given; no bounds enforcement is applied.
func (s *State) SetParams(values []float64) (bool, error) {
	return s.setIndices(values, s.allIndices())
}

// SetGroupParams overwrites the named group's coordinates, in group-local
// order.
func (s *State) SetGroupParams(groupName string, values []float64) (bool, error) {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return false, err
	}
	return s.setIndices(values, idx)
}

// SetJointParams overwrites the named joint's coordinate slice.
func (s *State) SetJointParams(jointName string, values []float64) (bool, error) {
	idx, err := s.jointIndices(jointName)
	if err != nil {
		return false, err
	}
	return s.setIndices(values, idx)
}

func (s *State) setIndices(values []float64, idx []int) (bool, error) {
	if len(values) != len(idx) {
		return false, NewDimensionMismatchError(len(idx), len(values))
	}
	changed := false
	for k, i := range idx {
		if s.params[i] != values[k] || !s.seen[i] {
			changed = true
		}
		s.params[i] = values[k]
		s.seen[i] = true
	}
	return changed, nil
}

// SetAll sets every coordinate to the same value, marking all seen.
func (s *State) SetAll(value float64) {
	for i := range s.params {
		s.params[i] = value
		s.seen[i] = true
	}
}

// SetAllGroup sets every coordinate of the named group to the same value,
// marking them seen.
func (s *State) SetAllGroup(groupName string, value float64) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	for _, i := range idx {
		s.params[i] = value
		s.seen[i] = true
	}
	return nil
}

// Params returns a copy of the whole coordinate vector.
func (s *State) Params() []float64 {
	out := make([]float64, len(s.params))
	copy(out, s.params)
	return out
}

// GroupParams returns a copy of the named group's coordinates in group-local
// order.
func (s *State) GroupParams(groupName string) ([]float64, error) {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return nil, err
	}
	return s.gather(idx), nil
}

// JointParams returns a copy of the named joint's coordinate slice.
func (s *State) JointParams(jointName string) ([]float64, error) {
	idx, err := s.jointIndices(jointName)
	if err != nil {
		return nil, err
	}
	return s.gather(idx), nil
}

func (s *State) gather(idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = s.params[i]
	}
	return out
}

// DefaultParams sets every coordinate to zero if zero lies within its
// bounds, otherwise to the bound midpoint, marking all seen.
func (s *State) DefaultParams() {
	s.defaultIndices(s.allIndices())
}

// DefaultGroupParams applies default values to the named group only.
func (s *State) DefaultGroupParams(groupName string) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	s.defaultIndices(idx)
	return nil
}

func (s *State) defaultIndices(idx []int) {
	for _, i := range idx {
		lo, hi := s.model.bounds[2*i], s.model.bounds[2*i+1]
		if lo <= 0 && hi >= 0 {
			s.params[i] = 0
		} else {
			s.params[i] = (lo + hi) / 2
		}
		s.seen[i] = true
	}
}

// RandomParams draws every coordinate uniformly within its bounds, marking
// all seen. Unbounded coordinates draw from ±999.
func (s *State) RandomParams() {
	s.randomIndices(s.allIndices())
}

// RandomGroupParams draws random values for the named group only.
func (s *State) RandomGroupParams(groupName string) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	s.randomIndices(idx)
	return nil
}

func (s *State) randomIndices(idx []int) {
	for _, i := range idx {
		lo, hi := s.boundedRange(i)
		s.params[i] = lo + s.rnd.Float64()*(hi-lo)
		s.seen[i] = true
	}
}

// PerturbParams adds factor * range * U(-1,1) to every coordinate, then
// enforces bounds on it. Seen flags are deliberately left untouched: a
// perturbed unseen coordinate stays unseen, unlike direct assignment.
func (s *State) PerturbParams(factor float64) {
	s.perturbIndices(factor, s.allIndices())
}

// PerturbGroupParams perturbs the named group's coordinates only.
func (s *State) PerturbGroupParams(groupName string, factor float64) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	s.perturbIndices(factor, idx)
	return nil
}

func (s *State) perturbIndices(factor float64, idx []int) {
	for _, i := range idx {
		lo, hi := s.boundedRange(i)
		s.params[i] += factor * (hi - lo) * (2*s.rnd.Float64() - 1)
		s.enforceIndex(i)
	}
}

// boundedRange returns the coordinate's bounds with infinities clamped to
// the default sampling range.
func (s *State) boundedRange(i int) (float64, float64) {
	lo, hi := s.model.bounds[2*i], s.model.bounds[2*i+1]
	if math.IsInf(lo, -1) {
		lo = -defaultRandomRange
	}
	if math.IsInf(hi, 1) {
		hi = defaultRandomRange
	}
	return lo, hi
}

// EnforceBounds clamps every coordinate into its bounds. Continuous revolute
// coordinates wrap into (-π, π] instead of clamping.
func (s *State) EnforceBounds() {
	for i := range s.params {
		s.enforceIndex(i)
	}
}

// EnforceGroupBounds clamps the named group's coordinates only.
func (s *State) EnforceGroupBounds(groupName string) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	for _, i := range idx {
		s.enforceIndex(i)
	}
	return nil
}

// EnforceJointBounds clamps the named joint's coordinate slice only.
func (s *State) EnforceJointBounds(jointName string) error {
	idx, err := s.jointIndices(jointName)
	if err != nil {
		return err
	}
	for _, i := range idx {
		s.enforceIndex(i)
	}
	return nil
}

func (s *State) enforceIndex(i int) {
	if s.model.wrap[i] {
		s.params[i] = utils.AngleNorm(s.params[i])
		return
	}
	if lo := s.model.bounds[2*i]; s.params[i] < lo {
		s.params[i] = lo
	}
	if hi := s.model.bounds[2*i+1]; s.params[i] > hi {
		s.params[i] = hi
	}
}

// CheckBounds reports whether every coordinate lies within its bounds.
// Continuous revolute coordinates are always in bounds. Never mutates.
func (s *State) CheckBounds() bool {
	return s.checkIndices(s.allIndices())
}

// CheckGroupBounds checks the named group's coordinates only.
func (s *State) CheckGroupBounds(groupName string) (bool, error) {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return false, err
	}
	return s.checkIndices(idx), nil
}

// CheckJointBounds checks the named joint's coordinate slice only.
func (s *State) CheckJointBounds(jointName string) (bool, error) {
	idx, err := s.jointIndices(jointName)
	if err != nil {
		return false, err
	}
	return s.checkIndices(idx), nil
}

// CheckJointsBounds checks each named joint in turn, failing fast on an
// unknown name.
func (s *State) CheckJointsBounds(jointNames []string) (bool, error) {
	for _, jn := range jointNames {
		ok, err := s.CheckJointBounds(jn)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *State) checkIndices(idx []int) bool {
	for _, i := range idx {
		if s.model.wrap[i] {
			continue
		}
		if s.params[i] < s.model.bounds[2*i] || s.params[i] > s.model.bounds[2*i+1] {
			return false
		}
	}
	return true
}

// Reset clears every seen flag without changing values.
func (s *State) Reset() {
	for i := range s.seen {
		s.seen[i] = false
	}
}

// ResetGroup clears the named group's seen flags only.
func (s *State) ResetGroup(groupName string) error {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return err
	}
	for _, i := range idx {
		s.seen[i] = false
	}
	return nil
}

// SeenAll reports whether every coordinate has been explicitly assigned.
func (s *State) SeenAll() bool {
	for _, ok := range s.seen {
		if !ok {
			return false
		}
	}
	return true
}

// SeenAllGroup reports whether every coordinate of the named group has been
// explicitly assigned.
func (s *State) SeenAllGroup(groupName string) (bool, error) {
	idx, err := s.groupIndices(groupName)
	if err != nil {
		return false, err
	}
	for _, i := range idx {
		if !s.seen[i] {
			return false, nil
		}
	}
	return true, nil
}

// SeenJoint reports whether every coordinate of the named joint has been
// explicitly assigned.
func (s *State) SeenJoint(jointName string) (bool, error) {
	idx, err := s.jointIndices(jointName)
	if err != nil {
		return false, err
	}
	for _, i := range idx {
		if !s.seen[i] {
			return false, nil
		}
	}
	return true, nil
}

// Missing returns the external names of every unseen coordinate, in state
// order.
func (s *State) Missing() []string {
	names := s.model.CoordinateNames()
	var out []string
	for i, ok := range s.seen {
		if !ok {
			out = append(out, names[i])
		}
	}
	return out
}

// String renders the coordinate vector with external names, flagging unseen
// coordinates.
func (s *State) String() string {
	names := s.model.CoordinateNames()
	var sb strings.Builder
	fmt.Fprintf(&sb, "state of %q (%d dof):\n", s.model.Name(), len(s.params))
	for i, name := range names {
		mark := ""
		if !s.seen[i] {
			mark = " (unseen)"
		}
		fmt.Fprintf(&sb, "  %s = %v%s\n", name, s.params[i], mark)
	}
	return sb.String()
}
