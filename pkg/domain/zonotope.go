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
	"strings"
)

// Zonotope is an affine form c + Σ aᵢ·εᵢ where each noise symbol εᵢ ranges
// independently over [-1,1].  Addition and subtraction preserve the affine
// structure, such that shared noise symbols cancel.  All other operations
// project onto an interval, apply the interval operation and lift the result
// back into a zonotope with a single noise term.
type Zonotope struct {
	center float64
	noise  []float64
}

// NewZonotope constructs a zonotope from a center and zero or more noise
// coefficients.
func NewZonotope(center float64, noise ...float64) Zonotope {
	return Zonotope{center, cloneFloats(noise)}
}

// Center returns the center of this zonotope.
func (p Zonotope) Center() float64 {
	return p.center
}

// Noise returns the coefficient of the ith noise symbol, or zero if there is
// no such symbol.
func (p Zonotope) Noise(i int) float64 {
	if i < len(p.noise) {
		return p.noise[i]
	}
	//
	return 0
}

// CoefLength returns the number of noise symbols in this zonotope.
func (p Zonotope) CoefLength() int {
	return len(p.noise)
}

// GetInterval returns the interval enclosing this zonotope.
func (p Zonotope) GetInterval() Interval {
	radius := 0.0
	for _, a := range p.noise {
		radius += math.Abs(a)
	}
	//
	return Interval{p.center - radius, p.center + radius}
}

// Length returns the length of the enclosing interval.
func (p Zonotope) Length(k Constants) float64 {
	return p.GetInterval().Length(k)
}

// Volume returns the volume of the enclosing interval.
func (p Zonotope) Volume(k Constants) float64 {
	return p.GetInterval().Volume(k)
}

// Split the enclosing interval into n equal-width parts, each lifted back into
// a single-term zonotope.
func (p Zonotope) Split(n uint, k Constants) []Zonotope {
	intervals := p.GetInterval().Split(n, k)
	items := make([]Zonotope, len(intervals))
	//
	for i, ith := range intervals {
		items[i] = ith.GetZonotope()
	}
	//
	return items
}

// Add returns p + y.  For a zonotope operand, coefficients of matching noise
// symbols are summed with the shorter sequence padded with zeros.  An interval
// operand is given its own noise symbol.
func (p Zonotope) Add(y Operand) Zonotope {
	switch y := y.(type) {
	case Scalar:
		return Zonotope{p.center + float64(y), cloneFloats(p.noise)}
	case Interval:
		return p.withRange(y, 1, 1)
	case Zonotope:
		return combine(p, y, 1, 1)
	default:
		panic(unsupportedOperand("Add", "Zonotope", y))
	}
}

// Sub returns p - y.
func (p Zonotope) Sub(y Operand) Zonotope {
	switch y := y.(type) {
	case Scalar:
		return Zonotope{p.center - float64(y), cloneFloats(p.noise)}
	case Interval:
		return p.withRange(y, 1, -1)
	case Zonotope:
		return combine(p, y, 1, -1)
	default:
		panic(unsupportedOperand("Sub", "Zonotope", y))
	}
}

// SubFrom returns y - p.
func (p Zonotope) SubFrom(y Operand) Zonotope {
	switch y := y.(type) {
	case Scalar:
		return combine(p, Zonotope{float64(y), nil}, -1, 1)
	case Interval:
		return p.withRange(y, -1, 1)
	case Zonotope:
		return combine(p, y, -1, 1)
	default:
		panic(unsupportedOperand("SubFrom", "Zonotope", y))
	}
}

// Mul returns p * y.  This degrades to interval multiplication, hence any
// correlation between noise symbols is lost.
func (p Zonotope) Mul(y Operand) Zonotope {
	return p.GetInterval().Mul(toInterval("Mul", y)).GetZonotope()
}

// MulAffine returns p * y for a zonotope operand, retaining the shared noise
// symbols.  Writing p = a₀ + Σ aᵢεᵢ and y = b₀ + Σ bᵢεᵢ, the result has center
// a₀b₀, coefficients a₀bᵢ + b₀aᵢ and one fresh symbol with coefficient
// Σ|aᵢ|·Σ|bᵢ| bounding the quadratic remainder.
func (p Zonotope) MulAffine(y Zonotope) Zonotope {
	n := max(len(p.noise), len(y.noise))
	noise := make([]float64, n+1)
	u, v := 0.0, 0.0
	//
	for i := 0; i < n; i++ {
		noise[i] = p.center*y.Noise(i) + y.center*p.Noise(i)
		u += math.Abs(p.Noise(i))
		v += math.Abs(y.Noise(i))
	}
	//
	noise[n] = u * v
	//
	return Zonotope{p.center * y.center, noise}
}

// DivFrom returns y / p.  This fails if the enclosing interval of p contains
// zero.
func (p Zonotope) DivFrom(y Operand) (Zonotope, error) {
	inv, err := p.GetInterval().Reciprocal()
	if err != nil {
		return Zonotope{}, NewDomainError("div", p.GetInterval(), "division by interval containing zero")
	}
	//
	return inv.GetZonotope().Mul(y), nil
}

// Exp returns e^p.
func (p Zonotope) Exp() Zonotope {
	return p.GetInterval().Exp().GetZonotope()
}

// Sin returns the sine of p.
func (p Zonotope) Sin() Zonotope {
	return p.GetInterval().Sin().GetZonotope()
}

// Cos returns the cosine of p.
func (p Zonotope) Cos() Zonotope {
	return p.GetInterval().Cos().GetZonotope()
}

// Max returns the maximum of p and y.
func (p Zonotope) Max(y Operand) Zonotope {
	return p.GetInterval().Max(toInterval("Max", y)).GetZonotope()
}

// Min returns the minimum of p and y.
func (p Zonotope) Min(y Operand) Zonotope {
	return p.GetInterval().Min(toInterval("Min", y)).GetZonotope()
}

func (p Zonotope) String() string {
	var builder strings.Builder
	//
	builder.WriteString(formatBound(p.center))
	//
	for i, a := range p.noise {
		builder.WriteString(fmt.Sprintf(" + %sε%d", formatBound(a), i))
	}
	//
	return builder.String()
}

// Compute sx*p + sy*y coefficient-wise.
func combine(p Zonotope, y Zonotope, sx float64, sy float64) Zonotope {
	n := max(len(p.noise), len(y.noise))
	noise := make([]float64, n)
	//
	for i := range noise {
		noise[i] = sx*p.Noise(i) + sy*y.Noise(i)
	}
	//
	return Zonotope{sx*p.center + sy*y.center, noise}
}

// Compute sx*p + sy*y, where the radius of y is placed on a new noise symbol
// following those of p.  An interval shares no noise symbols with p.
func (p Zonotope) withRange(y Interval, sx float64, sy float64) Zonotope {
	noise := make([]float64, len(p.noise)+1)
	//
	for i, a := range p.noise {
		noise[i] = sx * a
	}
	//
	noise[len(p.noise)] = y.Delta()
	//
	return Zonotope{sx*p.center + sy*y.Center(), noise}
}

// Project an operand onto the interval domain.
func toInterval(op string, y Operand) Operand {
	switch y := y.(type) {
	case Scalar, Interval:
		return y
	case Zonotope:
		return y.GetInterval()
	default:
		panic(unsupportedOperand(op, "Zonotope", y))
	}
}
