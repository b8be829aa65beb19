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

import "math"

// Pi is the constant π.
const Pi = math.Pi

// PiTwice is the constant 2π, i.e. the period of sin and cos.
const PiTwice = 2 * math.Pi

// PiHalf is the constant π/2.
const PiHalf = math.Pi / 2

// DEFAULT_EPSILON is the default minimum non-zero width of an interval.
const DEFAULT_EPSILON = 1e-6

// DEFAULT_SMALL_PROBABILITY is the default probability assigned to a partition
// for which no sample matched.
const DEFAULT_SMALL_PROBABILITY = 1e-10

// PosInfinity returns the positive infinity sentinel.
func PosInfinity() float64 {
	return math.Inf(1)
}

// NegInfinity returns the negative infinity sentinel.
func NegInfinity() float64 {
	return math.Inf(-1)
}

// Constants captures the numeric parameters which the abstract domains
// consult.  A single value is constructed at start up and then passed
// explicitly to those operations which need it.
type Constants struct {
	// Epsilon is the minimum width reported for any non-empty interval.
	Epsilon float64
	// SmallProbability is the probability substituted when a split leaves a
	// partition with no matching samples.
	SmallProbability float64
}

// DefaultConstants returns the default set of constants.
func DefaultConstants() Constants {
	return Constants{DEFAULT_EPSILON, DEFAULT_SMALL_PROBABILITY}
}
