// Package wizard drives multi-step forms: one step is active, Next validates it, Submit runs on
// the final step only.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
)

// Form is the data a wizard edits. Implementations are pointer types.
type Form interface {
	// Assign stores value into the named field.
	Assign(field string, value any) error
	// ValidateStep returns the violations of the fields owned by step.
	ValidateStep(step string) validation.Violations
}

// State is the serialisable part of a machine, persisted as a draft between requests.
type State[F Form] struct {
	Step      int                   `json:"step"`
	Form      F                     `json:"form"`
	Errors    validation.Violations `json:"errors,omitempty"`
	Submitted bool                  `json:"submitted,omitempty"`
}

// Machine is a step-wise form editor.
type Machine[F Form] struct {
	steps []string
	state State[F]
}

// New starts a machine on its first step.
func New[F Form](steps []string, form F) *Machine[F] {
	return &Machine[F]{steps: steps, state: State[F]{Form: form, Errors: validation.Violations{}}}
}

// Restore rebuilds a machine from a persisted state.
func Restore[F Form](steps []string, state State[F]) *Machine[F] {
	if state.Errors == nil {
		state.Errors = validation.Violations{}
	}
	if state.Step < 0 || state.Step >= len(steps) {
		state.Step = 0
	}
	return &Machine[F]{steps: steps, state: state}
}

func (m *Machine[F]) Steps() []string {
	return append([]string(nil), m.steps...)
}

// Step returns the name of the active step.
func (m *Machine[F]) Step() string {
	return m.steps[m.state.Step]
}

func (m *Machine[F]) Index() int {
	return m.state.Step
}

// IsLast reports whether the active step is the final one.
func (m *Machine[F]) IsLast() bool {
	return m.state.Step == len(m.steps)-1
}

func (m *Machine[F]) Form() F {
	return m.state.Form
}

// Errors returns a copy of the current field errors.
func (m *Machine[F]) Errors() validation.Violations {
	out := validation.Violations{}
	for k, v := range m.state.Errors {
		out[k] = v
	}
	return out
}

func (m *Machine[F]) Submitted() bool {
	return m.state.Submitted
}

// State returns the persisted view of the machine.
func (m *Machine[F]) State() State[F] {
	state := m.state
	state.Errors = m.Errors()
	return state
}

// Set assigns a field and clears the errors recorded for it.
func (m *Machine[F]) Set(field string, value any) error {
	if err := m.state.Form.Assign(field, value); err != nil {
		m.state.Errors[field] = "Valeur invalide"
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid value for %s", field)).
			WithDetails(map[string]string{field: "Valeur invalide"})
	}
	m.clearErrors(field)
	return nil
}

// Next validates the active step and advances when it is clean. It returns false when the step
// has errors or is already the last one.
func (m *Machine[F]) Next() bool {
	violations := m.state.Form.ValidateStep(m.Step())
	if !violations.Empty() {
		m.state.Errors.Merge(violations)
		return false
	}
	if m.IsLast() {
		return false
	}
	m.state.Step++
	return true
}

// Back moves to the previous step without validation.
func (m *Machine[F]) Back() bool {
	if m.state.Step == 0 {
		return false
	}
	m.state.Step--
	return true
}

// Submit validates every step and calls submit with the form. It is only allowed on the final step.
// Field errors returned by the backend are recorded like local ones.
func (m *Machine[F]) Submit(ctx context.Context, submit func(context.Context, F) error) error {
	if !m.IsLast() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submit is only allowed on the final step")
	}
	if m.state.Submitted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
	}
	all := validation.Violations{}
	for _, step := range m.steps {
		all.Merge(m.state.Form.ValidateStep(step))
	}
	if !all.Empty() {
		m.state.Errors.Merge(all)
		return all.Err()
	}
	if err := submit(ctx, m.state.Form); err != nil {
		for field, msg := range apiclient.FieldErrorsOf(err) {
			m.state.Errors.Add(field, msg)
		}
		return err
	}
	m.state.Submitted = true
	m.state.Errors = validation.Violations{}
	return nil
}

// ClearErrors drops the errors recorded for field and its nested entries.
func (m *Machine[F]) ClearErrors(field string) {
	m.clearErrors(field)
}

func (m *Machine[F]) clearErrors(field string) {
	for key := range m.state.Errors {
		if key == field || strings.HasPrefix(key, field+".") || strings.HasPrefix(key, field+"[") {
			delete(m.state.Errors, key)
		}
	}
}

// Assign decodes value into target. value may be raw JSON, a string holding JSON for non-string
// targets, or any value with the same JSON shape as target.
func Assign(target any, value any) error {
	var raw []byte
	switch v := value.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = encoded
	}
	return json.Unmarshal(raw, target)
}
