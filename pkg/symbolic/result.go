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

import "fmt"

// Truncation records that a loop reached its iteration bound whilst some
// partitions still satisfied the loop condition.  Those partitions are not
// present in the result, hence it under-approximates the reachable states.
type Truncation struct {
	// Number of iterations executed before giving up.
	Iterations uint
	// Number of partitions still in the loop when it was abandoned.
	Pending int
	// Upper bound on the probability mass abandoned.
	Probability float64
}

func (p Truncation) String() string {
	return fmt.Sprintf("truncated after %d iterations (%d partitions pending, p <= %g)", p.Iterations, p.Pending,
		p.Probability)
}

// Result is the outcome of executing a statement.  A result is complete when
// no loop was truncated during execution.
type Result struct {
	States      AbstractStateList
	Truncations []Truncation
}

// Complete indicates whether or not the result accounts for every reachable
// partition.
func (p Result) Complete() bool {
	return len(p.Truncations) == 0
}

// complete constructs a result without truncations.
func complete(states AbstractStateList) Result {
	return Result{states, nil}
}
