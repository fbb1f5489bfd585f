package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Shuffler permutes n elements through swap. It is the draw strategy used
// when contestants are registered and their first-round order is set.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// SeededShuffler produces the same permutation for the same seed and input
// size on every call.
type SeededShuffler struct {
	Seed uint64
}

// Shuffle implements Shuffler.
func (s SeededShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.New(rand.NewPCG(s.Seed, s.Seed)).Shuffle(n, swap)
}

// RandomShuffler draws from the process-wide random source.
type RandomShuffler struct{}

// Shuffle implements Shuffler.
func (RandomShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Env carries the collaborators a transition needs beyond the snapshot
// itself. NewID is required; the remaining fields fall back to defaults.
type Env struct {
	NewID    func() string
	Now      func() time.Time
	Shuffle  Shuffler
	Outliers OutlierPolicy
	// ForEach runs fn for i in [0, n) and returns the first error. The
	// default runs sequentially; fn must only write to index-owned state.
	ForEach func(n int, fn func(i int) error) error
}

func (e Env) withDefaults() Env {
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Shuffle == nil {
		e.Shuffle = RandomShuffler{}
	}
	if e.ForEach == nil {
		e.ForEach = sequential
	}
	return e
}

func sequential(n int, fn func(i int) error) error {
	for i := range n {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

// TransitionResult describes a committed status change.
type TransitionResult struct {
	Entity     string `json:"entity"`
	ID         string `json:"id"`
	Transition string `json:"transition"`
	From       string `json:"from"`
	To         string `json:"to"`
	Message    string `json:"message"`
	// Notify marks transitions that carry an optional notice for an external
	// hook.
	Notify bool `json:"notify,omitempty"`
	// Effects lists the child transitions fired as part of this one, in the
	// order they ran.
	Effects []TransitionResult `json:"effects,omitempty"`
}

// Walk calls fn for r and, depth first, for every effect it carries.
func (r TransitionResult) Walk(fn func(TransitionResult)) {
	fn(r)
	for _, e := range r.Effects {
		e.Walk(fn)
	}
}

// Notice is the payload handed to notification hooks.
type Notice struct {
	Entity     string
	ID         string
	Transition string
	Message    string
}

// Notice returns the notice for r, or false when r carries none.
func (r TransitionResult) Notice() (Notice, bool) {
	if !r.Notify {
		return Notice{}, false
	}
	return Notice{Entity: r.Entity, ID: r.ID, Transition: r.Transition, Message: r.Message}, true
}

func result[S Status](entity, id, transition string, from, to S, past string) TransitionResult {
	return TransitionResult{
		Entity:     entity,
		ID:         id,
		Transition: transition,
		From:       from.String(),
		To:         to.String(),
		Message:    fmt.Sprintf("%s %s", titleEntity(entity), past),
	}
}

func titleEntity(entity string) string {
	if entity == "" {
		return entity
	}
	return string(entity[0]-'a'+'A') + entity[1:]
}
