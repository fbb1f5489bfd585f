package domain

import (
	"fmt"
	"slices"
	"sort"
)

// Condition is a named precondition of a transition, evaluated against the
// snapshot the transition runs in.
type Condition struct {
	// Name is the stable identifier reported in PreconditionError.
	Name string
	// Reason explains the failure to a person, e.g. "scores not yet entered".
	Reason string
	Check  func(s *Snapshot, id string) bool
}

// Transition is one row of a transition table.
type Transition[S Status] struct {
	Name       string
	Sources    []S
	Target     S
	Conditions []Condition
}

// Machine is a declarative finite-state machine for one entity type. It only
// guards transitions; side effects are run by the caller once Fire succeeds.
type Machine[S Status] struct {
	entity      string
	transitions map[string]Transition[S]
}

// NewMachine builds a Machine from a transition table. It panics on a
// duplicate transition name since tables are package-level declarations.
func NewMachine[S Status](entity string, table ...Transition[S]) *Machine[S] {
	m := &Machine[S]{entity: entity, transitions: make(map[string]Transition[S], len(table))}
	for _, t := range table {
		if _, dup := m.transitions[t.Name]; dup {
			panic(fmt.Sprintf("%s machine: duplicate transition %q", entity, t.Name))
		}
		m.transitions[t.Name] = t
	}
	return m
}

// Entity returns the entity type the machine guards.
func (m *Machine[S]) Entity() string { return m.entity }

// Transitions returns the names of every transition in the table, sorted.
func (m *Machine[S]) Transitions() []string {
	names := make([]string, 0, len(m.transitions))
	for n := range m.transitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fire checks that transition name may run for entity id currently in status
// current. It returns the target status, a *TransitionError when current is
// not a source status, or a *PreconditionError naming the first failing
// condition.
func (m *Machine[S]) Fire(s *Snapshot, id, name string, current S) (S, error) {
	t, ok := m.transitions[name]
	if !ok {
		return current, &TransitionError{Entity: m.entity, ID: id, Transition: name, Current: current.String()}
	}
	if !slices.Contains(t.Sources, current) {
		allowed := make([]string, len(t.Sources))
		for i, src := range t.Sources {
			allowed[i] = src.String()
		}
		return current, &TransitionError{
			Entity:     m.entity,
			ID:         id,
			Transition: name,
			Current:    current.String(),
			Allowed:    allowed,
		}
	}
	for _, c := range t.Conditions {
		if !c.Check(s, id) {
			return current, &PreconditionError{
				Entity:     m.entity,
				ID:         id,
				Transition: name,
				Condition:  c.Name,
				Reason:     c.Reason,
			}
		}
	}
	return t.Target, nil
}

// Available returns the transitions that would currently succeed, sorted.
func (m *Machine[S]) Available(s *Snapshot, id string, current S) []string {
	var names []string
	for _, n := range m.Transitions() {
		if _, err := m.Fire(s, id, n, current); err == nil {
			names = append(names, n)
		}
	}
	return names
}
