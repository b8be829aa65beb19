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
	"fmt"
	"math"
	"strconv"
)

// Interval represents a closed range of real numbers [left, right].  Every
// arithmetic operation on intervals is sound: applying the concrete operation
// to any values drawn from the operands yields a value contained in the
// result.  An interval whose right bound is below its left bound is empty.
// Bounds may be infinite.
type Interval struct {
	left  float64
	right float64
}

// NewInterval constructs an interval with the given bounds.  Note that this
// will panic if either bound is NaN.  Giving a right bound which is less than
// the left bound constructs an empty interval.
func NewInterval(left float64, right float64) Interval {
	// sanity check
	if math.IsNaN(left) || math.IsNaN(right) {
		panic("invalid interval")
	}
	//
	return Interval{left, right}
}

// NewPoint constructs an interval containing exactly one value.
func NewPoint(x float64) Interval {
	return NewInterval(x, x)
}

// Left returns the lower bound of this interval.
func (p Interval) Left() float64 {
	return p.left
}

// Right returns the upper bound of this interval.
func (p Interval) Right() float64 {
	return p.right
}

// Center returns the midpoint of this interval.
func (p Interval) Center() float64 {
	return (p.left + p.right) / 2
}

// Delta returns the half-width of this interval.
func (p Interval) Delta() float64 {
	return (p.right - p.left) / 2
}

// GetBox converts this interval into a (one dimensional) box.  Note this will
// panic for an empty interval, since boxes cannot represent the empty set.
func (p Interval) GetBox() Box {
	if p.IsEmpty() {
		panic("box cannot represent an empty interval")
	}
	//
	return NewBox([]float64{p.Center()}, []float64{p.Delta()})
}

// GetZonotope converts this interval into a zonotope with a single noise term.
func (p Interval) GetZonotope() Zonotope {
	return NewZonotope(p.Center(), p.Delta())
}

// IsEmpty checks whether this interval contains no values.
func (p Interval) IsEmpty() bool {
	return p.right < p.left
}

// IsPoint checks whether this interval contains exactly one value.
func (p Interval) IsPoint() bool {
	return p.right == p.left
}

// Equal checks whether two intervals have exactly the same bounds.
func (p Interval) Equal(other Interval) bool {
	return p.left == other.left && p.right == other.right
}

// Contains checks whether a given value is contained within this interval.
func (p Interval) Contains(x float64) bool {
	return p.left <= x && x <= p.right
}

// Within checks whether this interval is contained within the given interval.
func (p Interval) Within(other Interval) bool {
	return p.left >= other.left && p.right <= other.right
}

// Length returns the width of this interval, which is never below the
// configured epsilon for a non-empty interval and is zero for an empty one.
func (p Interval) Length(k Constants) float64 {
	if p.IsEmpty() {
		return 0
	}
	//
	return math.Max(k.Epsilon, p.right-p.left)
}

// Volume is a synonym for Length, since intervals are one dimensional.
func (p Interval) Volume(k Constants) float64 {
	return p.Length(k)
}

// Split this interval into n equal-width sub-intervals in left-to-right order.
// Consecutive sub-intervals share their boundary.  Splitting an empty interval
// returns no sub-intervals.
func (p Interval) Split(n uint, k Constants) []Interval {
	if n == 0 || p.IsEmpty() {
		return nil
	}
	//
	unit := p.Volume(k) / float64(n)
	items := make([]Interval, n)
	left := p.left
	//
	for i := uint(0); i < n; i++ {
		right := p.left + float64(i+1)*unit
		// Pin the final bound to avoid drift from rounding.
		if i+1 == n && p.right-p.left >= k.Epsilon {
			right = p.right
		}
		//
		items[i] = Interval{left, right}
		left = right
	}
	// Done
	return items
}

// Join returns the smallest interval enclosing both intervals.  This is always
// sound, though not necessarily tight.
func (p Interval) Join(other Interval) Interval {
	return Interval{math.Min(p.left, other.left), math.Max(p.right, other.right)}
}

// Add returns p + y.
func (p Interval) Add(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		return Interval{p.left + float64(y), p.right + float64(y)}
	case Interval:
		return Interval{p.left + y.left, p.right + y.right}
	default:
		panic(unsupportedOperand("Add", "Interval", y))
	}
}

// Sub returns p - y.
func (p Interval) Sub(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		return Interval{p.left - float64(y), p.right - float64(y)}
	case Interval:
		return Interval{p.left - y.right, p.right - y.left}
	default:
		panic(unsupportedOperand("Sub", "Interval", y))
	}
}

// SubFrom returns y - p.
func (p Interval) SubFrom(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		return Interval{float64(y) - p.right, float64(y) - p.left}
	case Interval:
		return Interval{y.left - p.right, y.right - p.left}
	default:
		panic(unsupportedOperand("SubFrom", "Interval", y))
	}
}

// Neg returns -p.
func (p Interval) Neg() Interval {
	return Interval{-p.right, -p.left}
}

// Mul returns p * y.  When both operands are ranges, the result is bounded by
// the extremes of the four corner products.
func (p Interval) Mul(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		a := mulBound(p.left, float64(y))
		b := mulBound(p.right, float64(y))
		//
		return Interval{math.Min(a, b), math.Max(a, b)}
	case Interval:
		x1 := mulBound(p.left, y.left)
		x2 := mulBound(p.left, y.right)
		x3 := mulBound(p.right, y.left)
		x4 := mulBound(p.right, y.right)
		// Compute min / max
		lo := math.Min(math.Min(x1, x2), math.Min(x3, x4))
		hi := math.Max(math.Max(x1, x2), math.Max(x3, x4))
		//
		return Interval{lo, hi}
	default:
		panic(unsupportedOperand("Mul", "Interval", y))
	}
}

// Reciprocal returns 1 / p.  An interval containing zero has no bounded
// reciprocal, hence an error is returned in that case.
func (p Interval) Reciprocal() (Interval, error) {
	if p.Contains(0) {
		return Interval{}, NewDomainError("reciprocal", p, "interval contains zero")
	}
	//
	return Interval{1 / p.right, 1 / p.left}, nil
}

// DivFrom returns y / p, computed as (1 / p) * y.  This fails if p contains
// zero.
func (p Interval) DivFrom(y Operand) (Interval, error) {
	inv, err := p.Reciprocal()
	if err != nil {
		return Interval{}, NewDomainError("div", p, "division by interval containing zero")
	}
	//
	return inv.Mul(y), nil
}

// Exp returns e^p.
func (p Interval) Exp() Interval {
	return Interval{math.Exp(p.left), math.Exp(p.right)}
}

// Sqrt returns the square root of p.  This fails if p includes negative
// values.
func (p Interval) Sqrt() (Interval, error) {
	if p.left < 0 {
		return Interval{}, NewDomainError("sqrt", p, "interval includes negative values")
	}
	//
	return Interval{math.Sqrt(p.left), math.Sqrt(p.right)}, nil
}

// Max returns the elementwise maximum of p and y.
func (p Interval) Max(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		return Interval{math.Max(p.left, float64(y)), math.Max(p.right, float64(y))}
	case Interval:
		return Interval{math.Max(p.left, y.left), math.Max(p.right, y.right)}
	default:
		panic(unsupportedOperand("Max", "Interval", y))
	}
}

// Min returns the elementwise minimum of p and y.
func (p Interval) Min(y Operand) Interval {
	switch y := y.(type) {
	case Scalar:
		return Interval{math.Min(p.left, float64(y)), math.Min(p.right, float64(y))}
	case Interval:
		return Interval{math.Min(p.left, y.left), math.Min(p.right, y.right)}
	default:
		panic(unsupportedOperand("Min", "Interval", y))
	}
}

// Fmod reduces this interval by a multiple of y such that the result is
// aligned, as closely as possible, with [0, y).  When p.left is negative the
// quotient is taken with respect to the left bound of y, otherwise the right
// bound.  A non-positive quotient is rounded up, whilst a positive one is
// rounded down.
func (p Interval) Fmod(y Operand) Interval {
	var yi Interval
	//
	switch y := y.(type) {
	case Scalar:
		yi = NewPoint(float64(y))
	case Interval:
		yi = y
	default:
		panic(unsupportedOperand("Fmod", "Interval", y))
	}
	//
	yb := yi.right
	if p.left < 0 {
		yb = yi.left
	}
	//
	n := p.left / yb
	if n <= 0 {
		n = math.Ceil(n)
	} else {
		n = math.Floor(n)
	}
	//
	return p.Sub(yi.Mul(Scalar(n)))
}

// Cos returns the cosine of p.  The interval is first shifted so that its
// left bound is non-negative, then reduced modulo 2π.  Intervals spanning a
// whole period give [-1,1].  Intervals starting in [π,2π) are handled as
// -cos(t-π).  Otherwise cos is decreasing on [0,π] and has its minimum at π,
// from which the bounds follow.
func (p Interval) Cos() Interval {
	t := shiftNonNegative(p).Fmod(Scalar(PiTwice))
	//
	if t.right-t.left >= PiTwice || math.IsNaN(t.right-t.left) {
		return Interval{-1, 1}
	} else if t.left < 0 || t.left >= PiTwice {
		// Reduction lost precision (e.g. huge bounds)
		return Interval{-1, 1}
	} else if t.left >= Pi {
		return t.Sub(Scalar(Pi)).Cos().Neg()
	}
	//
	tl := math.Cos(t.right)
	tr := math.Cos(t.left)
	//
	switch {
	case t.right <= Pi:
		return Interval{tl, tr}
	case t.right <= PiTwice:
		return Interval{-1, math.Max(tl, tr)}
	default:
		return Interval{-1, 1}
	}
}

// Sin returns the sine of p, computed as cos(p - π/2).
func (p Interval) Sin() Interval {
	return p.Sub(Scalar(PiHalf)).Cos()
}

func (p Interval) String() string {
	return fmt.Sprintf("[%s, %s]", formatBound(p.left), formatBound(p.right))
}

// Shift an interval with a negative left bound by the smallest multiple of 2π
// which makes that bound non-negative.  An unbounded left bound cannot be
// shifted, so [0,+∞) is returned instead.
func shiftNonNegative(p Interval) Interval {
	if p.left >= 0 {
		return p
	} else if math.IsInf(p.left, -1) {
		return Interval{0, math.Inf(1)}
	}
	//
	n := math.Ceil(-p.left / PiTwice)
	//
	return p.Add(Scalar(PiTwice * n))
}

// Multiply two bounds, taking 0 * ∞ to be 0.
func mulBound(a float64, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	//
	return a * b
}

func formatBound(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "+∞"
	case math.IsInf(x, -1):
		return "-∞"
	default:
		return strconv.FormatFloat(x, 'g', 6, 64)
	}
}
