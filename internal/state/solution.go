package state

import (
	"sync/atomic"

	"fleetopt/internal/model"
)

// SolutionState is the single mutable slot holding the current plan. The
// coordinator is the only writer; replacement is one reference swap, so any
// number of readers see a complete solution without a lock.
type SolutionState struct {
	cur atomic.Pointer[model.Solution]
}

func NewSolutionState() *SolutionState {
	s := &SolutionState{}
	s.cur.Store(&model.Solution{Routes: []model.Route{}})
	return s
}

// Install replaces the current solution. Single writer only.
func (s *SolutionState) Install(sol *model.Solution) {
	if sol == nil {
		return
	}
	s.cur.Store(sol)
}

// Read returns the current solution. Callers must not mutate it.
func (s *SolutionState) Read() *model.Solution {
	return s.cur.Load()
}
