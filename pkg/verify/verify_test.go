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
package verify

import (
	"errors"
	"testing"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Classify_01(t *testing.T) {
	bound := domain.NewInterval(-1, 1)
	//
	assert.Equal(t, SAFE, classify(domain.NewInterval(-1, 1), bound))
	assert.Equal(t, SAFE, classify(domain.NewPoint(0), bound))
	assert.Equal(t, UNKNOWN, classify(domain.NewInterval(0, 2), bound))
	assert.Equal(t, UNKNOWN, classify(domain.NewInterval(-2, 2), bound))
	assert.Equal(t, UNSAFE, classify(domain.NewInterval(1.5, 2), bound))
	assert.Equal(t, UNSAFE, classify(domain.NewInterval(-3, -2), bound))
}

func Test_Check_Final(t *testing.T) {
	res := symbolic.Result{States: symbolic.AbstractStateList{{
		table(0.5, domain.NewInterval(0, 1)),
		table(0.25, domain.NewInterval(0.5, 3)),
		table(0.125, domain.NewInterval(4, 5)),
	}}}
	//
	report := check(t, region(0, -1, 2), nil, 0.5, res)
	assert.Equal(t, 1, report.Count(SAFE))
	assert.Equal(t, 1, report.Count(UNKNOWN))
	assert.Equal(t, 1, report.Count(UNSAFE))
	assert.Equal(t, 0.375, report.Violation)
	assert.True(t, report.Verified())
	//
	report = check(t, region(0, -1, 2), nil, 0.25, res)
	assert.False(t, report.Verified())
}

// A partition ending in the safe region may still have left it earlier.
func Test_Check_Trajectory(t *testing.T) {
	inner := table(1, domain.NewInterval(0, 1)).AppendTrajectory([]domain.Interval{domain.NewInterval(5, 6)})
	res := symbolic.Result{States: symbolic.AbstractStateList{{inner}}}
	//
	report := check(t, region(0, -1, 2), []int{0}, 0, res)
	assert.Equal(t, UNSAFE, report.Partitions[0].Verdict)
	assert.Equal(t, 1.0, report.Violation)
	// Untracked coordinates only consider the final state
	report = check(t, region(0, -1, 2), []int{1}, 0, res)
	assert.Equal(t, SAFE, report.Partitions[0].Verdict)
	assert.True(t, report.Verified())
}

func Test_Check_Clamped(t *testing.T) {
	res := symbolic.Result{States: symbolic.AbstractStateList{{
		table(1, domain.NewInterval(4, 5)),
		table(1, domain.NewInterval(3, 5)),
	}}}
	//
	report := check(t, region(0, -1, 2), nil, 0.1, res)
	assert.Equal(t, 1.0, report.Violation)
}

func Test_Check_Truncated(t *testing.T) {
	res := symbolic.Result{
		States:      symbolic.AbstractStateList{{table(1, domain.NewInterval(0, 1))}},
		Truncations: []symbolic.Truncation{{Iterations: 10, Pending: 1, Probability: 0.25}},
	}
	//
	report := check(t, region(0, -1, 2), nil, 0.1, res)
	assert.Equal(t, 0.25, report.Truncated)
	assert.Equal(t, 0.25, report.Violation)
	assert.False(t, report.Verified())
}

func Test_Check_Errors(t *testing.T) {
	_, err := NewChecker(SafeRegion{[]int{0}, nil}, nil, 0.1)
	assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
	_, err = NewChecker(region(0, 1, -1), nil, 0.1)
	assert.Error(t, err)
	_, err = NewChecker(region(0, -1, 1), nil, 2)
	assert.Error(t, err)
	//
	checker, err := NewChecker(region(3, -1, 1), nil, 0.1)
	require.NoError(t, err)
	_, err = checker.Check(symbolic.Result{States: symbolic.AbstractStateList{{table(1, domain.NewPoint(0))}}})
	assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
}

// ============================================================================
// Helpers
// ============================================================================

func check(t *testing.T, region SafeRegion, tracked []int, threshold float64, res symbolic.Result) Report {
	t.Helper()
	//
	checker, err := NewChecker(region, tracked, threshold)
	require.NoError(t, err)
	report, err := checker.Check(res)
	require.NoError(t, err)
	//
	return report
}

func region(coordinate int, lo float64, hi float64) SafeRegion {
	var r SafeRegion
	r.Add(coordinate, domain.NewInterval(lo, hi))
	//
	return r
}

func table(probability float64, intervals ...domain.Interval) symbolic.SymbolTable {
	return symbolic.NewSymbolTable(domain.NewBoxFromIntervals(intervals...)).WithProbability(probability)
}
