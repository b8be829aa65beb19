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

	"github.com/consensys/go-probai/pkg/domain"
	log "github.com/sirupsen/logrus"
)

// Statement represents a program statement which transforms an abstract state
// list.  Statements never modify their input.
type Statement interface {
	// Execute this statement on the given states.
	Execute(cfg Config, states AbstractStateList) (Result, error)
}

// Function is a transformation on domain values, such as a network layer or
// arithmetic expression.
type Function func(domain.Box) (domain.Box, error)

// Threshold maps the raw test value of a conditional to the threshold actually
// compared against.
type Threshold func(float64) float64

// ============================================================================
// Skip
// ============================================================================

// Skip is a statement which does nothing.
type Skip struct{}

// Execute implementation for the Statement interface.
func (p Skip) Execute(_ Config, states AbstractStateList) (Result, error) {
	return complete(states), nil
}

// ============================================================================
// Sequence
// ============================================================================

// Sequence executes statements one after the other.
type Sequence []Statement

// Execute implementation for the Statement interface.
func (p Sequence) Execute(cfg Config, states AbstractStateList) (Result, error) {
	var truncations []Truncation
	//
	for _, stmt := range p {
		res, err := stmt.Execute(cfg, states)
		if err != nil {
			return Result{}, err
		}
		//
		states = res.States
		truncations = append(truncations, res.Truncations...)
	}
	//
	return Result{states, truncations}, nil
}

// ============================================================================
// Assign
// ============================================================================

// Assign applies a function to selected coordinates of every partition, and
// writes the result into the target coordinates.  Probabilities, branches and
// trajectories are unchanged.
type Assign struct {
	targets   []int
	arguments []int
	fn        Function
}

// NewAssign constructs an assignment of fn(arguments) to targets.
func NewAssign(targets []int, arguments []int, fn Function) *Assign {
	return &Assign{targets, arguments, fn}
}

// Execute implementation for the Statement interface.
func (p *Assign) Execute(_ Config, states AbstractStateList) (Result, error) {
	nstates := make(AbstractStateList, len(states))
	//
	for i, state := range states {
		nstate := make(AbstractState, len(state))
		//
		for j, table := range state {
			args, err := table.state.SelectFromIndex(p.arguments)
			if err != nil {
				return Result{}, err
			}
			//
			value, err := p.fn(args)
			if err != nil {
				return Result{}, err
			}
			//
			updated := table.state.Clone()
			if err := updated.SetFromIndex(p.targets, value); err != nil {
				return Result{}, err
			}
			//
			nstate[j] = table.WithState(updated)
		}
		//
		nstates[i] = nstate
	}
	//
	return complete(nstates), nil
}

// ============================================================================
// IfElse
// ============================================================================

// IfElse splits partitions on the condition "x <= f(test)" and executes the
// body and orelse on the respective partitions.  The results are concatenated,
// with those of the partitions at or below the threshold first.
type IfElse struct {
	coordinate int
	test       float64
	threshold  Threshold
	body       Statement
	orelse     Statement
	// Condition is "x > f(test)" instead.
	negated bool
}

// NewIfElse constructs a conditional on coordinate x.  A nil threshold is the
// identity, and a nil branch does nothing.
func NewIfElse(coordinate int, test float64, threshold Threshold, body Statement, orelse Statement) *IfElse {
	if threshold == nil {
		threshold = func(x float64) float64 { return x }
	}
	//
	if body == nil {
		body = Skip{}
	}
	//
	if orelse == nil {
		orelse = Skip{}
	}
	//
	return &IfElse{coordinate, test, threshold, body, orelse, false}
}

// Negate returns the conditional on "x > f(test)" with the same branches.  The
// body then executes on partitions above the threshold, and these are tagged
// BODY.
func (p *IfElse) Negate() *IfElse {
	return &IfElse{p.coordinate, p.test, p.threshold, p.body, p.orelse, !p.negated}
}

// Execute implementation for the Statement interface.
func (p *IfElse) Execute(cfg Config, states AbstractStateList) (Result, error) {
	var (
		result    AbstractStateList
		truncated []Truncation
	)
	//
	lower, upper, err := SplitStates(cfg, states, p.coordinate, p.threshold(p.test))
	if err != nil {
		return Result{}, err
	}
	//
	below, above := p.body, p.orelse
	//
	if p.negated {
		below, above = p.orelse, p.body
		lower, upper = relabel(lower, ORELSE), relabel(upper, BODY)
	}
	//
	if len(lower) > 0 {
		res, err := below.Execute(cfg, lower)
		if err != nil {
			return Result{}, err
		}
		//
		result = append(result, res.States...)
		truncated = append(truncated, res.Truncations...)
	}
	//
	if len(upper) > 0 {
		res, err := above.Execute(cfg, upper)
		if err != nil {
			return Result{}, err
		}
		//
		result = append(result, res.States...)
		truncated = append(truncated, res.Truncations...)
	}
	//
	return Result{result, truncated}, nil
}

// Tag every partition with a given branch, in place.
func relabel(states AbstractStateList, branch Branch) AbstractStateList {
	for _, state := range states {
		for i := range state {
			state[i] = state[i].WithBranch(branch)
		}
	}
	//
	return states
}

// ============================================================================
// While
// ============================================================================

// While repeatedly splits partitions on the condition "x <= test", executing
// the body on those satisfying it.  Partitions failing the condition exit the
// loop, and are accumulated in the order encountered.  Should partitions remain
// after the configured number of iterations, the loop is abandoned and the
// result records a truncation.
type While struct {
	coordinate int
	test       float64
	body       Statement
}

// NewWhile constructs a loop on coordinate x.
func NewWhile(coordinate int, test float64, body Statement) *While {
	if body == nil {
		body = Skip{}
	}
	//
	return &While{coordinate, test, body}
}

// Execute implementation for the Statement interface.
func (p *While) Execute(cfg Config, states AbstractStateList) (Result, error) {
	var (
		result    AbstractStateList
		truncated []Truncation
	)
	//
	for iteration := uint(0); len(states) > 0; iteration++ {
		body, orelse, err := SplitStates(cfg, states, p.coordinate, p.test)
		if err != nil {
			return Result{}, err
		}
		//
		result = append(result, orelse...)
		//
		if len(body) == 0 {
			break
		} else if iteration >= cfg.MaxIterations {
			t := Truncation{iteration, body.Tables(), probabilityOf(body)}
			log.Warnf("loop on coordinate %d %s", p.coordinate, t.String())
			//
			truncated = append(truncated, t)
			//
			break
		}
		//
		log.Debugf("loop iteration %d with %d partitions", iteration, body.Tables())
		//
		res, err := p.body.Execute(cfg, body)
		if err != nil {
			return Result{}, err
		}
		//
		states = res.States
		truncated = append(truncated, res.Truncations...)
	}
	//
	return Result{result, truncated}, nil
}

// probabilityOf returns an upper bound on the probability mass of a set of
// states, clamped at one.
func probabilityOf(states AbstractStateList) float64 {
	sum := 0.0
	//
	for _, table := range states.Flatten() {
		sum += table.probability
	}
	//
	return min(1, sum)
}

// ============================================================================
// Trajectory
// ============================================================================

// Trajectory records the current intervals of the tracked coordinates in the
// trajectory of every partition.
type Trajectory struct {
	coordinates []int
}

// NewTrajectory constructs a statement recording the given coordinates.
func NewTrajectory(coordinates ...int) *Trajectory {
	return &Trajectory{coordinates}
}

// Execute implementation for the Statement interface.
func (p *Trajectory) Execute(_ Config, states AbstractStateList) (Result, error) {
	nstates := make(AbstractStateList, len(states))
	//
	for i, state := range states {
		nstate := make(AbstractState, len(state))
		//
		for j, table := range state {
			entry := make([]domain.Interval, len(p.coordinates))
			//
			for k, c := range p.coordinates {
				if c < 0 || c >= table.state.Dim() {
					return Result{}, domain.NewShapeError("trajectory", table.state.Dim(), c+1)
				}
				//
				ith := table.state.Interval(c)
				// Catches NaN bounds as well
				if !(ith.Left() <= ith.Right()) {
					return Result{}, domain.NewDomainError("trajectory", ith,
						fmt.Sprintf("coordinate %d is not a valid interval", c))
				}
				//
				entry[k] = ith
			}
			//
			nstate[j] = table.AppendTrajectory(entry)
		}
		//
		nstates[i] = nstate
	}
	//
	return complete(nstates), nil
}
