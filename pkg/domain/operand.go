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

import "fmt"

// Operand is the second argument of a binary domain operation.  This is either
// a concrete value (Scalar, or Vector for batched boxes) which is broadcast
// over the range, or a range value of some domain (Interval, Box or Zonotope).
// An Interval operand is broadcast over every coordinate of a Box, and is
// uncorrelated with the noise symbols of a Zonotope.  The set of
// implementations is closed, so operations can switch exhaustively over it.
type Operand interface {
	isOperand()
}

// Scalar is a single concrete real number.
type Scalar float64

// Vector is a concrete value with one real number per coordinate of a Box.
type Vector []float64

func (Scalar) isOperand()   {}
func (Vector) isOperand()   {}
func (Interval) isOperand() {}
func (Box) isOperand()      {}
func (Zonotope) isOperand() {}

func unsupportedOperand(op string, kind string, y Operand) string {
	return fmt.Sprintf("unsupported operand for %s.%s (%T)", kind, op, y)
}
