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

import "github.com/consensys/go-probai/pkg/domain"

// MAX_ITERATIONS is the default bound on the number of times a loop body is
// executed.
const MAX_ITERATIONS = 1000

// Config provides the parameters under which statements are executed.  A
// config is never modified once constructed.
type Config struct {
	// Numeric constants used by the domains.
	Constants domain.Constants
	// Bound on the number of iterations of any one loop.
	MaxIterations uint
	// Strategy for assigning probabilities to the two halves of a split.
	Estimator Estimator
}

// DefaultConfig returns the default configuration, which performs sound
// certification.
func DefaultConfig() Config {
	return Config{domain.DefaultConstants(), MAX_ITERATIONS, SoundEstimator{}}
}

// WithEstimator returns a copy of this config using the given estimator.
func (p Config) WithEstimator(estimator Estimator) Config {
	p.Estimator = estimator
	return p
}

// WithMaxIterations returns a copy of this config using the given loop bound.
func (p Config) WithMaxIterations(n uint) Config {
	p.MaxIterations = n
	return p
}
