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
	"fmt"
)

// ErrDomain indicates an operation was applied outside of the region on which
// it can return a sound result (e.g. division by an interval containing zero).
var ErrDomain = errors.New("operand outside of domain")

// ErrShapeMismatch indicates the operands of an operation have incompatible
// dimensions.
var ErrShapeMismatch = errors.New("shape mismatch")

// DomainError reports an operation applied to an operand for which no sound
// result can be given.
type DomainError struct {
	// Op is the name of the operation.
	Op string
	// Operand is the offending value.
	Operand Interval
	// Reason explains what precondition failed.
	Reason string
}

// NewDomainError constructs a new domain error.
func NewDomainError(op string, operand Interval, reason string) *DomainError {
	return &DomainError{op, operand, reason}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s%s: %s", e.Op, e.Operand.String(), e.Reason)
}

// Unwrap returns ErrDomain so that errors.Is can be used.
func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// ShapeError reports operands whose dimensions don't agree.
type ShapeError struct {
	Op       string
	Expected int
	Actual   int
}

// NewShapeError constructs a new shape error.
func NewShapeError(op string, expected int, actual int) *ShapeError {
	return &ShapeError{op, expected, actual}
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected dimension %d, got %d", e.Op, e.Expected, e.Actual)
}

// Unwrap returns ErrShapeMismatch so that errors.Is can be used.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
