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
package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intervalComparer = cmp.Comparer(func(a, b Interval) bool {
	return a.Equal(b)
})

func Test_Box_Construct(t *testing.T) {
	assert.Panics(t, func() { NewBox([]float64{0}, []float64{-1}) })
	assert.Panics(t, func() { NewBox([]float64{0, 1}, []float64{1}) })
	assert.Panics(t, func() { NewBoxFromIntervals(NewInterval(1, 0)) })
}

func Test_Box_Intervals(t *testing.T) {
	box := NewBoxFromIntervals(NewInterval(0, 2), NewInterval(-1, 1))
	expected := []Interval{NewInterval(0, 2), NewInterval(-1, 1)}
	//
	if diff := cmp.Diff(expected, box.Intervals(), intervalComparer); diff != "" {
		t.Errorf("unexpected intervals (-want +got):\n%s", diff)
	}
	//
	assert.Equal(t, []float64{0, -1}, box.Left())
	assert.Equal(t, []float64{2, 1}, box.Right())
}

func Test_Box_AddSub(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 2), NewInterval(-1, 1))
	y := NewBoxFromIntervals(NewInterval(1, 3), NewInterval(0, 4))
	//
	sum, err := x.Add(y)
	require.NoError(t, err)
	checkBox(t, sum, NewInterval(1, 5), NewInterval(-1, 5))
	//
	diff, err := x.Sub(y)
	require.NoError(t, err)
	checkBox(t, diff, NewInterval(-3, 1), NewInterval(-5, 1))
	//
	rdiff, err := x.SubFrom(y)
	require.NoError(t, err)
	checkBox(t, rdiff, NewInterval(-1, 3), NewInterval(-1, 5))
	//
	shifted, err := x.Add(Scalar(1))
	require.NoError(t, err)
	checkBox(t, shifted, NewInterval(1, 3), NewInterval(0, 2))
	//
	biased, err := x.Add(Vector{1, -1})
	require.NoError(t, err)
	checkBox(t, biased, NewInterval(1, 3), NewInterval(-2, 0))
}

func Test_Box_IntervalBroadcast(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 1), NewInterval(2, 3))
	y := NewInterval(-1, 1)
	//
	sum, err := x.Add(y)
	require.NoError(t, err)
	checkBox(t, sum, NewInterval(-1, 2), NewInterval(1, 4))
	//
	diff, err := x.Sub(y)
	require.NoError(t, err)
	checkBox(t, diff, NewInterval(-1, 2), NewInterval(1, 4))
	//
	rdiff, err := x.SubFrom(NewInterval(4, 6))
	require.NoError(t, err)
	checkBox(t, rdiff, NewInterval(3, 6), NewInterval(1, 4))
	//
	prod, err := x.Mul(y)
	require.NoError(t, err)
	checkBox(t, prod, NewInterval(-1, 1), NewInterval(-3, 3))
	//
	upper, err := x.Max(NewInterval(0.5, 2.5))
	require.NoError(t, err)
	checkBox(t, upper, NewInterval(0.5, 2.5), NewInterval(2, 3))
}

func Test_Box_ShapeMismatch(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 2), NewInterval(-1, 1))
	y := NewBoxFromIntervals(NewInterval(1, 3))
	//
	_, err := x.Add(y)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = x.Mul(Vector{1, 2, 3})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = x.CheckIn(y)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = x.Matmul([][]float64{{1}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func Test_Box_MulDiv(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(-2, 3), NewInterval(1, 2))
	y := NewBoxFromIntervals(NewInterval(-5, 4), NewInterval(2, 4))
	//
	prod, err := x.Mul(y)
	require.NoError(t, err)
	checkBox(t, prod, NewInterval(-15, 12), NewInterval(2, 8))
	// Division by a coordinate containing zero
	_, err = x.DivFrom(Scalar(1))
	assert.True(t, errors.Is(err, ErrDomain))
	//
	quot, err := y.Sub(Vector{-6, 0})
	require.NoError(t, err)
	res, err := quot.DivFrom(Scalar(10))
	require.NoError(t, err)
	checkBox(t, res, NewInterval(1, 10), NewInterval(2.5, 5))
}

func Test_Box_Matmul(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 2), NewInterval(-1, 1))
	res, err := x.Matmul([][]float64{{1, 2}, {-1, 0}})
	require.NoError(t, err)
	// y0 = x0 - x1, y1 = 2 x0
	checkBox(t, res, NewInterval(-1, 3), NewInterval(0, 4))
}

func Test_Box_CheckIn(t *testing.T) {
	outer := NewBoxFromIntervals(NewInterval(0, 10), NewInterval(-5, 5))
	inner := NewBoxFromIntervals(NewInterval(1, 2), NewInterval(-5, 0))
	//
	ok, err := outer.CheckIn(inner)
	require.NoError(t, err)
	assert.True(t, ok)
	//
	ok, err = inner.CheckIn(outer)
	require.NoError(t, err)
	assert.False(t, ok)
	//
	ok, err = outer.ContainsPoint([]float64{10, -5})
	require.NoError(t, err)
	assert.True(t, ok)
	//
	ok, err = outer.ContainsPoint([]float64{10.5, 0})
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Box_Join(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 1), NewInterval(4, 5))
	y := NewBoxFromIntervals(NewInterval(2, 3), NewInterval(-1, 0))
	res, err := x.Join(y)
	require.NoError(t, err)
	checkBox(t, res, NewInterval(0, 3), NewInterval(-1, 5))
}

func Test_Box_SelectSet(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(0, 1), NewInterval(2, 3), NewInterval(4, 5))
	//
	sel, err := x.SelectFromIndex([]int{2, 0})
	require.NoError(t, err)
	checkBox(t, sel, NewInterval(4, 5), NewInterval(0, 1))
	//
	y := x.Clone()
	require.NoError(t, y.SetFromIndex([]int{1}, NewInterval(-1, 1).GetBox()))
	checkBox(t, y, NewInterval(0, 1), NewInterval(-1, 1), NewInterval(4, 5))
	// Original is untouched
	checkBox(t, x, NewInterval(0, 1), NewInterval(2, 3), NewInterval(4, 5))
	//
	_, err = x.SelectFromIndex([]int{3})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	assert.True(t, errors.Is(y.SetFromIndex([]int{0, 1}, NewPointBox(1)), ErrShapeMismatch))
	assert.True(t, errors.Is(y.SetFromIndex([]int{7}, NewPointBox(1)), ErrShapeMismatch))
}

func Test_Box_Cos(t *testing.T) {
	x := NewBoxFromIntervals(NewInterval(-1, 1), NewInterval(0, 7), NewInterval(0, 0))
	res := x.Cos()
	//
	assert.InDelta(t, math.Cos(1), res.Interval(0).Left(), 1e-9)
	assert.InDelta(t, 1.0, res.Interval(0).Right(), 1e-12)
	assert.InDelta(t, -1.0, res.Interval(1).Left(), 1e-12)
	assert.InDelta(t, 1.0, res.Interval(1).Right(), 1e-12)
	assert.InDelta(t, 1.0, res.Interval(2).Left(), 1e-12)
}

func Test_Box_SoundRelu(t *testing.T) {
	checkMonotone(t, relu, func(b Box) Box { return b.Relu() })
}

func Test_Box_SoundSigmoid(t *testing.T) {
	checkMonotone(t, sigmoid, func(b Box) Box { return b.Sigmoid() })
}

func Test_Box_SoundTanh(t *testing.T) {
	checkMonotone(t, math.Tanh, func(b Box) Box { return b.Tanh() })
}

func Test_Box_SoundExp(t *testing.T) {
	checkMonotone(t, math.Exp, func(b Box) Box { return b.Exp() })
}

func Test_Box_SoundSigmoidLinear(t *testing.T) {
	fn := func(x float64) float64 { return clamp01(x*0.5/3 + 0.5) }
	checkMonotone(t, fn, func(b Box) Box { return b.SigmoidLinear(3) })
}

func Test_Box_SigmoidLinearClamp(t *testing.T) {
	res := NewBoxFromIntervals(NewInterval(-10, 10)).SigmoidLinear(1)
	checkBox(t, res, NewInterval(0, 1))
}

// ============================================================================
// Helpers
// ============================================================================

func checkBox(t *testing.T, box Box, expected ...Interval) {
	t.Helper()
	//
	if diff := cmp.Diff(expected, box.Intervals(), intervalComparer); diff != "" {
		t.Errorf("unexpected box (-want +got):\n%s", diff)
	}
}

func checkMonotone(t *testing.T, fn func(float64) float64, op func(Box) Box) {
	intervals := make([]Interval, len(unaryIntervals))
	for i, b := range unaryIntervals {
		intervals[i] = NewInterval(b[0], b[1])
	}
	//
	box := NewBoxFromIntervals(intervals...)
	res := op(box)
	//
	for i, ith := range intervals {
		for _, x := range samples(ith) {
			y := fn(x)
			lo := res.Center(i) - res.Delta(i)
			hi := res.Center(i) + res.Delta(i)
			//
			if y < lo-SLACK*math.Max(1, math.Abs(y)) || y > hi+SLACK*math.Max(1, math.Abs(y)) {
				t.Errorf("f(%v) = %v not in %s", x, y, res.Interval(i).String())
				break
			}
		}
	}
}
