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
package program

import (
	"fmt"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/symbolic"
	"github.com/consensys/go-probai/pkg/verify"
)

// BOX_EXPRESSIONS evaluates assignment expressions using interval arithmetic.
const BOX_EXPRESSIONS = "box"

// ZONOTOPE_EXPRESSIONS evaluates assignment expressions in the zonotope
// domain, retaining correlations between variables.
const ZONOTOPE_EXPRESSIONS = "zonotope"

// Options controls how programs are compiled.
type Options struct {
	// Domain used for evaluating assignment expressions.
	Expressions string
	// Range parameter for sigmoid-linear layers.
	SigmoidRange float64
}

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{BOX_EXPRESSIONS, 1}
}

// Program is a compiled probabilistic program, ready for symbolic execution.
type Program struct {
	// Variable names, in coordinate order
	variables []string
	// Range of each variable on entry
	inputs domain.Box
	// Statements making up the program
	body symbolic.Sequence
	// Coordinates recorded by trajectory statements
	tracked []int
	// Safe region to be checked
	region verify.SafeRegion
}

// Variables returns the variable names of this program, in coordinate order.
func (p *Program) Variables() []string {
	return p.variables
}

// Inputs returns the range of every variable on entry.
func (p *Program) Inputs() domain.Box {
	return p.inputs.Clone()
}

// Body returns the statement to be executed.
func (p *Program) Body() symbolic.Statement {
	return p.body
}

// Tracked returns the coordinates recorded in trajectories.
func (p *Program) Tracked() []int {
	return p.tracked
}

// Region returns the declared safe region.
func (p *Program) Region() verify.SafeRegion {
	return p.region
}

// Execute this program from its entry state, where the first variable is
// divided into the given number of equal partitions.  Sample points (if any)
// are distributed amongst the partitions containing them, for use by the point
// cloud estimator.
func (p *Program) Execute(cfg symbolic.Config, partitions uint, points [][]float64) (symbolic.Result, error) {
	states, err := p.EntryStates(cfg, partitions, points)
	if err != nil {
		return symbolic.Result{}, err
	}
	//
	return p.body.Execute(cfg, states)
}

// EntryStates constructs the abstract states on entry to this program.
func (p *Program) EntryStates(cfg symbolic.Config, partitions uint, points [][]float64) (symbolic.AbstractStateList,
	error) {
	var states = symbolic.NewEntryStates(p.inputs)
	//
	if partitions > 1 {
		var err error
		if states, err = symbolic.NewPartitionedStates(p.inputs, 0, partitions, cfg.Constants); err != nil {
			return nil, err
		}
	}
	//
	if len(points) == 0 {
		return states, nil
	}
	//
	for _, state := range states {
		for i, table := range state {
			var (
				box     = table.State()
				matched [][]float64
			)
			//
			for _, point := range points {
				if ok, err := box.ContainsPoint(point); err != nil {
					return nil, err
				} else if ok {
					matched = append(matched, point)
				}
			}
			//
			state[i] = table.WithPointCloud(matched, float64(len(matched)))
		}
	}
	//
	return states, nil
}

// SampleInputs draws n points uniformly from the input ranges of this program,
// using the given source of randomness (which returns values in [0,1)).
func (p *Program) SampleInputs(n uint, random func() float64) [][]float64 {
	points := make([][]float64, n)
	//
	for i := range points {
		point := make([]float64, p.inputs.Dim())
		//
		for j := range point {
			ith := p.inputs.Interval(j)
			point[j] = ith.Left() + random()*(ith.Right()-ith.Left())
		}
		//
		points[i] = point
	}
	//
	return points
}

// Variable returns the coordinate of a named variable, or an error if no such
// variable exists.
func (p *Program) Variable(name string) (int, error) {
	for i, v := range p.variables {
		if v == name {
			return i, nil
		}
	}
	//
	return 0, fmt.Errorf("unknown variable %s", name)
}
