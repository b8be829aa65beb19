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
	"errors"
	"math"
	"testing"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Split_Below(t *testing.T) {
	table := NewSymbolTable(box(0, 1, 5, 6)).WithProbability(0.5)
	body, orelse, err := SplitSymbolTable(DefaultConfig(), table, 0, 1)
	//
	require.NoError(t, err)
	require.NotNil(t, body)
	assert.Nil(t, orelse)
	assert.Equal(t, 0.5, body.Probability())
	assert.Equal(t, BODY, body.Branch())
	assert.True(t, body.State().Interval(0).Equal(domain.NewInterval(0, 1)))
}

func Test_Split_Above(t *testing.T) {
	table := NewSymbolTable(box(2, 3))
	body, orelse, err := SplitSymbolTable(DefaultConfig(), table, 0, 1)
	//
	require.NoError(t, err)
	assert.Nil(t, body)
	require.NotNil(t, orelse)
	assert.Equal(t, 1.0, orelse.Probability())
	assert.Equal(t, ORELSE, orelse.Branch())
}

// Left bound equal to the threshold still straddles, giving a point body.
func Test_Split_Boundary(t *testing.T) {
	table := NewSymbolTable(box(1, 3))
	body, orelse, err := SplitSymbolTable(DefaultConfig(), table, 0, 1)
	//
	require.NoError(t, err)
	require.NotNil(t, body)
	require.NotNil(t, orelse)
	assert.True(t, body.State().Interval(0).IsPoint())
	assert.True(t, orelse.State().Interval(0).Equal(domain.NewInterval(1, 3)))
}

func Test_Split_Bisect(t *testing.T) {
	table := NewSymbolTable(box(-1, 1, 10, 20))
	body, orelse, err := SplitSymbolTable(DefaultConfig(), table, 0, 0)
	//
	require.NoError(t, err)
	require.NotNil(t, body)
	require.NotNil(t, orelse)
	// Sound splitting keeps the full parent probability on both sides
	assert.Equal(t, 1.0, body.Probability())
	assert.Equal(t, 1.0, orelse.Probability())
	//
	assert.True(t, body.State().Interval(0).Equal(domain.NewInterval(-1, 0)))
	assert.True(t, orelse.State().Interval(0).Equal(domain.NewInterval(0, 1)))
	// Other coordinates untouched
	assert.True(t, body.State().Interval(1).Equal(domain.NewInterval(10, 20)))
	assert.True(t, orelse.State().Interval(1).Equal(domain.NewInterval(10, 20)))
	// Parent untouched
	assert.True(t, table.State().Interval(0).Equal(domain.NewInterval(-1, 1)))
	assert.Equal(t, NONE, table.Branch())
}

func Test_Split_Volume(t *testing.T) {
	cfg := DefaultConfig().WithEstimator(VolumeEstimator{})
	table := NewSymbolTable(box(0, 4)).WithProbability(0.8)
	body, orelse, err := SplitSymbolTable(cfg, table, 0, 1)
	//
	require.NoError(t, err)
	assert.InDelta(t, 0.2, body.Probability(), 1e-12)
	assert.InDelta(t, 0.6, orelse.Probability(), 1e-12)
}

func Test_Split_PointCloud(t *testing.T) {
	cfg := DefaultConfig().WithEstimator(PointCloudEstimator{})
	points := [][]float64{{0.5}, {1.5}, {2.5}, {3.5}}
	table := NewSymbolTable(box(0, 4)).WithPointCloud(points, 4)
	//
	body, orelse, err := SplitSymbolTable(cfg, table, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, body.Probability(), 1e-12)
	assert.InDelta(t, 0.75, orelse.Probability(), 1e-12)
	//
	pts, count := orelse.PointCloud()
	assert.Equal(t, 3.0, count)
	assert.Equal(t, points[1:], pts)
}

func Test_Split_PointCloudEmpty(t *testing.T) {
	cfg := DefaultConfig().WithEstimator(PointCloudEstimator{})
	table := NewSymbolTable(box(0, 4)).WithPointCloud([][]float64{{3}}, 1)
	//
	body, _, err := SplitSymbolTable(cfg, table, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, cfg.Constants.SmallProbability, body.Probability())
}

func Test_Split_Shape(t *testing.T) {
	_, _, err := SplitSymbolTable(DefaultConfig(), NewSymbolTable(box(0, 1)), 1, 0)
	assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
	//
	_, _, err = SplitSymbolTable(DefaultConfig(), NewSymbolTable(box(0, 1)), 0, math.NaN())
	assert.True(t, errors.Is(err, domain.ErrDomain))
}

func Test_Split_States(t *testing.T) {
	states := AbstractStateList{
		AbstractState{NewSymbolTable(box(-2, -1)), NewSymbolTable(box(-1, 1))},
		AbstractState{NewSymbolTable(box(3, 4))},
	}
	//
	body, orelse, err := SplitStates(DefaultConfig(), states, 0, 0)
	require.NoError(t, err)
	// Second abstract state has nothing in the body
	assert.Len(t, body, 1)
	assert.Equal(t, 2, body.Tables())
	assert.Len(t, orelse, 2)
	assert.Equal(t, 2, orelse.Tables())
	//
	checkProbabilityBound(t, states, body)
	checkProbabilityBound(t, states, orelse)
}

func Test_Split_Partitioned(t *testing.T) {
	k := domain.DefaultConstants()
	states, err := NewPartitionedStates(box(0, 1, 5, 5), 0, 4, k)
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.Len(t, states[0], 4)
	//
	for i, table := range states[0] {
		assert.Equal(t, 0.25, table.Probability())
		assert.InDelta(t, float64(i)*0.25, table.State().Interval(0).Left(), 1e-12)
		assert.True(t, table.State().Interval(1).Equal(domain.NewPoint(5)))
	}
	//
	_, err = NewPartitionedStates(box(0, 1), 2, 4, k)
	assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
}

func Test_Estimator_Lookup(t *testing.T) {
	for _, name := range []string{"sound", "volume", "pointcloud"} {
		e, ok := LookupEstimator(name)
		require.True(t, ok)
		assert.Equal(t, name, e.Name())
	}
	//
	_, ok := LookupEstimator("magic")
	assert.False(t, ok)
}

// ============================================================================
// Helpers
// ============================================================================

// Construct a box from pairs of bounds.
func box(bounds ...float64) domain.Box {
	intervals := make([]domain.Interval, len(bounds)/2)
	for i := range intervals {
		intervals[i] = domain.NewInterval(bounds[2*i], bounds[2*i+1])
	}
	//
	return domain.NewBoxFromIntervals(intervals...)
}

// Check no partition carries more probability than the largest input one.
func checkProbabilityBound(t *testing.T, before AbstractStateList, after AbstractStateList) {
	t.Helper()
	//
	bound := 0.0
	for _, table := range before.Flatten() {
		bound = math.Max(bound, table.Probability())
	}
	//
	for _, table := range after.Flatten() {
		if table.Probability() > bound {
			t.Errorf("probability %g exceeds %g", table.Probability(), bound)
		}
	}
}
