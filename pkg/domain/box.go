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
	"math"
	"strings"
)

// Box is a vector of ranges in center/radius form, where coordinate i
// represents the interval [center[i]-delta[i], center[i]+delta[i]].  Every
// delta is non-negative and, hence, a box cannot represent the empty set.
// Boxes are used for the program state, with one coordinate per program
// variable.  Operations never modify their operands, with the sole exception
// of SetFromIndex.
type Box struct {
	center []float64
	delta  []float64
}

// NewBox constructs a box from the given centers and radii.  Note that this
// will panic if the arrays differ in length, or any radius is negative.
func NewBox(center []float64, delta []float64) Box {
	if len(center) != len(delta) {
		panic("box center and delta have different dimensions")
	}
	//
	for i, d := range delta {
		if !(d >= 0) || math.IsNaN(center[i]) {
			panic("invalid box")
		}
	}
	//
	return Box{center, delta}
}

// NewBoxFromIntervals constructs a box covering exactly the given intervals,
// one coordinate per interval.  Note that this will panic if any interval is
// empty.
func NewBoxFromIntervals(intervals ...Interval) Box {
	var (
		center = make([]float64, len(intervals))
		delta  = make([]float64, len(intervals))
	)
	//
	for i, ith := range intervals {
		if ith.IsEmpty() {
			panic("box cannot represent an empty interval")
		}
		//
		center[i] = ith.Center()
		delta[i] = ith.Delta()
	}
	//
	return Box{center, delta}
}

// NewPointBox constructs a box containing exactly one point.
func NewPointBox(values ...float64) Box {
	center := make([]float64, len(values))
	copy(center, values)
	//
	return Box{center, make([]float64, len(values))}
}

// Dim returns the number of coordinates in this box.
func (p Box) Dim() int {
	return len(p.center)
}

// Clone returns a deep copy of this box.
func (p Box) Clone() Box {
	return Box{cloneFloats(p.center), cloneFloats(p.delta)}
}

// Center returns the center of the ith coordinate.
func (p Box) Center(i int) float64 {
	return p.center[i]
}

// Delta returns the radius of the ith coordinate.
func (p Box) Delta(i int) float64 {
	return p.delta[i]
}

// Left returns the lower bound of every coordinate.
func (p Box) Left() []float64 {
	res := make([]float64, len(p.center))
	for i := range res {
		res[i] = p.center[i] - p.delta[i]
	}
	//
	return res
}

// Right returns the upper bound of every coordinate.
func (p Box) Right() []float64 {
	res := make([]float64, len(p.center))
	for i := range res {
		res[i] = p.center[i] + p.delta[i]
	}
	//
	return res
}

// Interval returns the range of the ith coordinate.
func (p Box) Interval(i int) Interval {
	return Interval{p.center[i] - p.delta[i], p.center[i] + p.delta[i]}
}

// Intervals returns the range of every coordinate.
func (p Box) Intervals() []Interval {
	res := make([]Interval, len(p.center))
	for i := range res {
		res[i] = p.Interval(i)
	}
	//
	return res
}

// GetInterval returns the range of a one dimensional box.  Note this will
// panic if the box has more than one coordinate.
func (p Box) GetInterval() Interval {
	if len(p.center) != 1 {
		panic("box is not one dimensional")
	}
	//
	return p.Interval(0)
}

// CheckIn determines whether every coordinate of other lies within the
// corresponding coordinate of this box.
func (p Box) CheckIn(other Box) (bool, error) {
	if err := p.checkDim("CheckIn", other.Dim()); err != nil {
		return false, err
	}
	//
	for i := range p.center {
		if !other.Interval(i).Within(p.Interval(i)) {
			return false, nil
		}
	}
	//
	return true, nil
}

// ContainsPoint determines whether a concrete point lies within this box.
func (p Box) ContainsPoint(point []float64) (bool, error) {
	if err := p.checkDim("ContainsPoint", len(point)); err != nil {
		return false, err
	}
	//
	for i, x := range point {
		if !p.Interval(i).Contains(x) {
			return false, nil
		}
	}
	//
	return true, nil
}

// SelectFromIndex returns a new box made up from the given coordinates of this
// box, in the order given.
func (p Box) SelectFromIndex(indices []int) (Box, error) {
	var (
		center = make([]float64, len(indices))
		delta  = make([]float64, len(indices))
	)
	//
	for i, index := range indices {
		if index < 0 || index >= len(p.center) {
			return Box{}, NewShapeError("SelectFromIndex", len(p.center), index+1)
		}
		//
		center[i] = p.center[index]
		delta[i] = p.delta[index]
	}
	//
	return Box{center, delta}, nil
}

// SetFromIndex overwrites the given coordinates of this box with those of
// other, such that coordinate indices[i] receives other's ith coordinate.  This
// is the only operation which modifies a box in place, and it must only be
// applied to a privately owned box.
func (p *Box) SetFromIndex(indices []int, other Box) error {
	if len(indices) != other.Dim() {
		return NewShapeError("SetFromIndex", len(indices), other.Dim())
	}
	// Sanity check all indices before touching anything.
	for _, index := range indices {
		if index < 0 || index >= len(p.center) {
			return NewShapeError("SetFromIndex", len(p.center), index+1)
		}
	}
	//
	for i, index := range indices {
		p.center[index] = other.center[i]
		p.delta[index] = other.delta[i]
	}
	//
	return nil
}

// Join returns the smallest box enclosing both boxes.
func (p Box) Join(other Box) (Box, error) {
	if err := p.checkDim("Join", other.Dim()); err != nil {
		return Box{}, err
	}
	//
	res := make([]Interval, len(p.center))
	for i := range res {
		res[i] = p.Interval(i).Join(other.Interval(i))
	}
	//
	return NewBoxFromIntervals(res...), nil
}

// Add returns p + y.  Radii accumulate since the operands contribute
// independent uncertainty.
func (p Box) Add(y Operand) (Box, error) {
	return p.affine("Add", y, 1, 1)
}

// Sub returns p - y.
func (p Box) Sub(y Operand) (Box, error) {
	return p.affine("Sub", y, 1, -1)
}

// SubFrom returns y - p.
func (p Box) SubFrom(y Operand) (Box, error) {
	return p.affine("SubFrom", y, -1, 1)
}

// Mul returns p * y, computed coordinate-wise using interval arithmetic.
func (p Box) Mul(y Operand) (Box, error) {
	return p.pointwise("Mul", y, func(x Interval, y Operand) (Interval, error) {
		return x.Mul(y), nil
	})
}

// DivFrom returns y / p, computed coordinate-wise using interval arithmetic.
// This fails if any coordinate of p contains zero.
func (p Box) DivFrom(y Operand) (Box, error) {
	return p.pointwise("DivFrom", y, func(x Interval, y Operand) (Interval, error) {
		return x.DivFrom(y)
	})
}

// Max returns the coordinate-wise maximum of p and y.
func (p Box) Max(y Operand) (Box, error) {
	return p.pointwise("Max", y, func(x Interval, y Operand) (Interval, error) {
		return x.Max(y), nil
	})
}

// Min returns the coordinate-wise minimum of p and y.
func (p Box) Min(y Operand) (Box, error) {
	return p.pointwise("Min", y, func(x Interval, y Operand) (Interval, error) {
		return x.Min(y), nil
	})
}

// Matmul returns p·W, where W has one row per coordinate of p.  Each output
// center is the product of the centers, whilst each radius is the product of
// the radii with |W|.
func (p Box) Matmul(weights [][]float64) (Box, error) {
	if err := p.checkDim("Matmul", len(weights)); err != nil {
		return Box{}, err
	} else if len(weights) == 0 {
		return Box{}, nil
	}
	//
	n := len(weights[0])
	center := make([]float64, n)
	delta := make([]float64, n)
	//
	for i, row := range weights {
		if len(row) != n {
			return Box{}, NewShapeError("Matmul", n, len(row))
		}
		//
		for j, w := range row {
			center[j] += p.center[i] * w
			delta[j] += p.delta[i] * math.Abs(w)
		}
	}
	//
	return Box{center, delta}, nil
}

// Exp returns e^p.  In center form this is center e^c·cosh(d) and radius
// e^c·sinh(d).
func (p Box) Exp() Box {
	center := make([]float64, len(p.center))
	delta := make([]float64, len(p.center))
	//
	for i, c := range p.center {
		a := math.Exp(p.delta[i])
		b := math.Exp(-p.delta[i])
		center[i] = math.Exp(c) * (a + b) / 2
		delta[i] = math.Exp(c) * (a - b) / 2
	}
	//
	return Box{center, delta}
}

// Cos returns the cosine of p, computed coordinate-wise using interval
// arithmetic.
func (p Box) Cos() Box {
	res := make([]Interval, len(p.center))
	for i := range res {
		res[i] = p.Interval(i).Cos()
	}
	//
	return NewBoxFromIntervals(res...)
}

// Sin returns the sine of p, computed coordinate-wise using interval
// arithmetic.
func (p Box) Sin() Box {
	res := make([]Interval, len(p.center))
	for i := range res {
		res[i] = p.Interval(i).Sin()
	}
	//
	return NewBoxFromIntervals(res...)
}

// Sqrt returns the square root of p.  This fails if any coordinate includes
// negative values.
func (p Box) Sqrt() (Box, error) {
	var err error
	//
	res := make([]Interval, len(p.center))
	for i := range res {
		if res[i], err = p.Interval(i).Sqrt(); err != nil {
			return Box{}, err
		}
	}
	//
	return NewBoxFromIntervals(res...), nil
}

// Sigmoid applies the logistic function.
func (p Box) Sigmoid() Box {
	return p.monotone(sigmoid)
}

// Tanh applies the hyperbolic tangent.
func (p Box) Tanh() Box {
	return p.monotone(math.Tanh)
}

// Relu applies the rectified linear unit.
func (p Box) Relu() Box {
	return p.monotone(relu)
}

// SigmoidLinear applies a piecewise linear approximation of the logistic
// function which rises from 0 at -sigRange to 1 at +sigRange.
func (p Box) SigmoidLinear(sigRange float64) Box {
	a := 0.5 / sigRange
	x := Box{make([]float64, len(p.center)), make([]float64, len(p.center))}
	// x = p * a + 0.5
	for i, c := range p.center {
		x.center[i] = c*a + 0.5
		x.delta[i] = p.delta[i] * math.Abs(a)
	}
	//
	return x.monotone(clamp01)
}

func (p Box) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i := range p.center {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(p.Interval(i).String())
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

// Apply a monotone non-decreasing function.  Since f is monotone, its image of
// [c-d, c+d] is exactly [f(c-d), f(c+d)].
func (p Box) monotone(f func(float64) float64) Box {
	center := make([]float64, len(p.center))
	delta := make([]float64, len(p.center))
	//
	for i, c := range p.center {
		top := f(c + p.delta[i])
		bottom := f(c - p.delta[i])
		center[i] = (top + bottom) / 2
		delta[i] = (top - bottom) / 2
	}
	//
	return Box{center, delta}
}

// Compute sx*p + sy*y, where the radius of each operand is accumulated.
func (p Box) affine(op string, y Operand, sx float64, sy float64) (Box, error) {
	center := make([]float64, len(p.center))
	delta := cloneFloats(p.delta)
	//
	switch y := y.(type) {
	case Scalar:
		for i, c := range p.center {
			center[i] = sx*c + sy*float64(y)
		}
	case Vector:
		if err := p.checkDim(op, len(y)); err != nil {
			return Box{}, err
		}
		//
		for i, c := range p.center {
			center[i] = sx*c + sy*y[i]
		}
	case Interval:
		for i, c := range p.center {
			center[i] = sx*c + sy*y.Center()
			delta[i] += y.Delta()
		}
	case Box:
		if err := p.checkDim(op, y.Dim()); err != nil {
			return Box{}, err
		}
		//
		for i, c := range p.center {
			center[i] = sx*c + sy*y.center[i]
			delta[i] += y.delta[i]
		}
	default:
		panic(unsupportedOperand(op, "Box", y))
	}
	//
	return Box{center, delta}, nil
}

// Apply a binary interval operation coordinate-wise.
func (p Box) pointwise(op string, y Operand, fn func(Interval, Operand) (Interval, error)) (Box, error) {
	var (
		res  = make([]Interval, len(p.center))
		err  error
		args []Operand
	)
	// Determine the operand for each coordinate
	switch y := y.(type) {
	case Vector:
		if err := p.checkDim(op, len(y)); err != nil {
			return Box{}, err
		}
		//
		args = make([]Operand, len(y))
		for i, v := range y {
			args[i] = Scalar(v)
		}
	case Scalar, Interval:
		args = repeatOperand(y, len(p.center))
	case Box:
		if err := p.checkDim(op, y.Dim()); err != nil {
			return Box{}, err
		}
		//
		args = make([]Operand, y.Dim())
		for i := range args {
			args[i] = y.Interval(i)
		}
	default:
		panic(unsupportedOperand(op, "Box", y))
	}
	//
	for i := range res {
		if res[i], err = fn(p.Interval(i), args[i]); err != nil {
			return Box{}, err
		}
	}
	//
	return NewBoxFromIntervals(res...), nil
}

func (p Box) checkDim(op string, n int) error {
	if len(p.center) != n {
		return NewShapeError(op, len(p.center), n)
	}
	//
	return nil
}

func repeatOperand(y Operand, n int) []Operand {
	items := make([]Operand, n)
	for i := range items {
		items[i] = y
	}
	//
	return items
}

func cloneFloats(items []float64) []float64 {
	res := make([]float64, len(items))
	copy(res, items)
	//
	return res
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func relu(x float64) float64 {
	return math.Max(0, x)
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
