// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package symbolic

import (
	"fmt"
	"math"

	"github.com/consensys/go-probai/pkg/domain"
)

// Branch identifies which side of the most recent conditional a partition was
// routed to.
type Branch uint8

const (
	// NONE indicates the partition has not passed through a conditional.
	NONE Branch = iota
	// BODY indicates the partition satisfied the most recent condition.
	BODY
	// ORELSE indicates the partition failed the most recent condition.
	ORELSE
)

func (b Branch) String() string {
	switch b {
	case NONE:
		return "none"
	case BODY:
		return "body"
	case ORELSE:
		return "orelse"
	default:
		return fmt.Sprintf("branch(%d)", uint8(b))
	}
}

// SymbolTable describes one partition of the reachable state space: a box
// over-approximating the program variables, an upper bound on the probability
// mass of the partition, and the trajectory recorded so far.  Symbol tables
// are immutable; every modification returns a new table, leaving the original
// untouched.
type SymbolTable struct {
	// Domain value for the program variables.
	state domain.Box
	// Upper bound on the probability of this partition.
	probability float64
	// Interval projections of tracked variables, one entry per recorded step.
	trajectory [][]domain.Interval
	// Branch of the most recent conditional.
	branch Branch
	// Concrete sample points falling within this partition (optional).
	points [][]float64
	// Number of samples represented by this partition (optional).
	count float64
}

// NewSymbolTable constructs the symbol table for program entry, which has
// probability one and an empty trajectory.
func NewSymbolTable(state domain.Box) SymbolTable {
	return SymbolTable{state: state.Clone(), probability: 1}
}

// State returns (a copy of) the domain value of this partition.
func (p SymbolTable) State() domain.Box {
	return p.state.Clone()
}

// Probability returns the upper bound on the probability of this partition.
func (p SymbolTable) Probability() float64 {
	return p.probability
}

// Branch returns the branch of the most recent conditional.
func (p SymbolTable) Branch() Branch {
	return p.branch
}

// Trajectory returns the trajectory recorded for this partition.
func (p SymbolTable) Trajectory() [][]domain.Interval {
	return append([][]domain.Interval(nil), p.trajectory...)
}

// PointCloud returns the sample points within this partition, and the count of
// samples they represent.
func (p SymbolTable) PointCloud() ([][]float64, float64) {
	return p.points, p.count
}

// WithState returns a copy of this table with the given domain value.  The
// table takes ownership of the box, which must not be modified afterwards.
func (p SymbolTable) WithState(state domain.Box) SymbolTable {
	p.state = state
	return p
}

// WithProbability returns a copy of this table with the given probability.
// Note this will panic if the probability is outside of [0,1].
func (p SymbolTable) WithProbability(probability float64) SymbolTable {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		panic(fmt.Sprintf("invalid probability %v", probability))
	}
	//
	p.probability = probability
	//
	return p
}

// WithBranch returns a copy of this table tagged with the given branch.
func (p SymbolTable) WithBranch(branch Branch) SymbolTable {
	p.branch = branch
	return p
}

// WithPointCloud returns a copy of this table with the given sample points,
// representing count samples.
func (p SymbolTable) WithPointCloud(points [][]float64, count float64) SymbolTable {
	p.points = points
	p.count = count
	//
	return p
}

// AppendTrajectory returns a copy of this table whose trajectory is extended
// with the given entry.  Entries already recorded are shared, since they are
// never modified.
func (p SymbolTable) AppendTrajectory(entry []domain.Interval) SymbolTable {
	trajectory := make([][]domain.Interval, len(p.trajectory), len(p.trajectory)+1)
	copy(trajectory, p.trajectory)
	p.trajectory = append(trajectory, entry)
	//
	return p
}

func (p SymbolTable) String() string {
	return fmt.Sprintf("%s@%g(%s)", p.state.String(), p.probability, p.branch.String())
}

// AbstractState is a sequence of symbol tables, each describing one
// (over-approximated) partition of the reachable states at a program point.
type AbstractState []SymbolTable

// AbstractStateList is a sequence of abstract states reaching the same
// program point along different paths.  These are kept separate, rather than
// joined, to retain precision.
type AbstractStateList []AbstractState

// NewEntryStates constructs the abstract state list at program entry,
// consisting of a single partition with probability one.
func NewEntryStates(state domain.Box) AbstractStateList {
	return AbstractStateList{AbstractState{NewSymbolTable(state)}}
}

// NewPartitionedStates constructs the abstract state list at program entry,
// where the given coordinate is divided into n equal-width partitions.  Inputs
// are taken to be uniformly distributed, hence each partition has probability
// 1/n.
func NewPartitionedStates(state domain.Box, coordinate int, n uint, k domain.Constants) (AbstractStateList, error) {
	if coordinate < 0 || coordinate >= state.Dim() {
		return nil, domain.NewShapeError("partition", state.Dim(), coordinate+1)
	}
	//
	parts := state.Interval(coordinate).Split(n, k)
	tables := make(AbstractState, len(parts))
	//
	for i, ith := range parts {
		box := state.Clone()
		// Cannot fail, since the coordinate was checked above.
		_ = box.SetFromIndex([]int{coordinate}, ith.GetBox())
		tables[i] = NewSymbolTable(box).WithProbability(1 / float64(n))
	}
	//
	return AbstractStateList{tables}, nil
}

// Tables returns the total number of symbol tables across all abstract states.
func (p AbstractStateList) Tables() int {
	count := 0
	for _, state := range p {
		count += len(state)
	}
	//
	return count
}

// Flatten returns every symbol table across all abstract states, in order.
func (p AbstractStateList) Flatten() []SymbolTable {
	tables := make([]SymbolTable, 0, p.Tables())
	for _, state := range p {
		tables = append(tables, state...)
	}
	//
	return tables
}
