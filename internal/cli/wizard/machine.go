// Package wizard implements the multi-step flows behind dataset upload and
// query construction as explicit step machines. The machines are free of
// terminal I/O so every transition rule can be exercised in tests; the
// commands layer drives them with survey prompts.
package wizard

import "fmt"

// Validator checks the named step's collected state. A nil error admits the
// transition; a non-nil error blocks it and carries the message shown to
// the user.
type Validator func() error

// Machine is a linear sequence of validated steps. Forward movement is
// gated by the current step's validator; moving back from the first step
// signals the caller to leave the flow.
type Machine struct {
	steps      []string
	validators []Validator
	current    int
}

// NewMachine builds a machine over the given step labels. Validators are
// positional; a nil validator admits unconditionally.
func NewMachine(steps []string, validators []Validator) *Machine {
	if len(steps) != len(validators) {
		panic("wizard: steps and validators must align")
	}
	return &Machine{steps: steps, validators: validators}
}

// Step returns the current step index.
func (m *Machine) Step() int { return m.current }

// StepName returns the current step's label.
func (m *Machine) StepName() string { return m.steps[m.current] }

// Steps returns the step labels, for rendering a progress header.
func (m *Machine) Steps() []string { return m.steps }

// AtFinal reports whether the machine sits on its last step.
func (m *Machine) AtFinal() bool { return m.current == len(m.steps)-1 }

// Validate runs the current step's validator.
func (m *Machine) Validate() error {
	if v := m.validators[m.current]; v != nil {
		return v()
	}
	return nil
}

// Advance validates the current step and, when it passes and a next step
// exists, moves onto it. On the final step a passing Advance stays put; the
// caller performs the completing action.
func (m *Machine) Advance() error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.AtFinal() {
		m.current++
	}
	return nil
}

// Retreat moves one step back. The false return on the first step tells
// the caller to exit the flow.
func (m *Machine) Retreat() bool {
	if m.current == 0 {
		return false
	}
	m.current--
	return true
}

// Jump moves directly to the target step after validating the step before
// it, matching the gate a stepwise walk would have hit last.
func (m *Machine) Jump(target int) error {
	if target < 0 || target >= len(m.steps) {
		return fmt.Errorf("no such step %d", target)
	}
	if target > 0 {
		if v := m.validators[target-1]; v != nil {
			if err := v(); err != nil {
				return err
			}
		}
	}
	m.current = target
	return nil
}
