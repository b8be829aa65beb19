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
package verify

import (
	"fmt"
	"math"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/symbolic"
	log "github.com/sirupsen/logrus"
)

// Verdict classifies a partition against a safe region.
type Verdict uint8

const (
	// SAFE indicates every reachable value lies within the safe region.
	SAFE Verdict = iota
	// UNKNOWN indicates some reachable values may lie outside the region.
	UNKNOWN
	// UNSAFE indicates the partition definitely leaves the region.
	UNSAFE
)

func (p Verdict) String() string {
	switch p {
	case SAFE:
		return "safe"
	case UNKNOWN:
		return "unknown"
	default:
		return "unsafe"
	}
}

// SafeRegion bounds a set of coordinates, such that Bounds[i] is the safe
// range for Coordinates[i].
type SafeRegion struct {
	Coordinates []int
	Bounds      []domain.Interval
}

// Add a bound for a given coordinate to this region.
func (p *SafeRegion) Add(coordinate int, bound domain.Interval) {
	p.Coordinates = append(p.Coordinates, coordinate)
	p.Bounds = append(p.Bounds, bound)
}

// Classify an interval against a safe bound.
func classify(value domain.Interval, bound domain.Interval) Verdict {
	if value.Within(bound) {
		return SAFE
	} else if value.Right() < bound.Left() || value.Left() > bound.Right() {
		return UNSAFE
	}
	//
	return UNKNOWN
}

// Partition records the verdict for one symbol table.
type Partition struct {
	Table   symbolic.SymbolTable
	Verdict Verdict
}

// Report summarises the outcome of checking a result against a safe region.
type Report struct {
	Partitions []Partition
	// Upper bound on the probability of leaving the safe region.
	Violation float64
	// Probability mass abandoned by truncated loops, included in Violation.
	Truncated float64
	// Maximum acceptable violation probability.
	Threshold float64
}

// Verified indicates whether the probability of violation is within the
// threshold.
func (p Report) Verified() bool {
	return p.Violation <= p.Threshold
}

// Count returns the number of partitions with the given verdict.
func (p Report) Count(verdict Verdict) int {
	count := 0
	//
	for _, ith := range p.Partitions {
		if ith.Verdict == verdict {
			count++
		}
	}
	//
	return count
}

// Checker checks symbolic execution results against a safe region.
type Checker struct {
	region SafeRegion
	// Coordinates recorded by trajectory statements, in recording order.
	tracked []int
	// Maximum acceptable violation probability.
	threshold float64
}

// NewChecker constructs a checker for the given region.  The tracked
// coordinates identify the position of each coordinate within trajectory
// entries, and may be empty if no trajectory is recorded.
func NewChecker(region SafeRegion, tracked []int, threshold float64) (*Checker, error) {
	if len(region.Coordinates) != len(region.Bounds) {
		return nil, domain.NewShapeError("SafeRegion", len(region.Coordinates), len(region.Bounds))
	} else if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid violation threshold %v", threshold)
	}
	//
	for i, bound := range region.Bounds {
		if bound.IsEmpty() {
			return nil, fmt.Errorf("empty safe bound %s for coordinate %d", bound.String(), region.Coordinates[i])
		}
	}
	//
	return &Checker{region, tracked, threshold}, nil
}

// Check every partition of a result against the safe region.  A partition is
// checked on its final state, and on each trajectory entry recorded for it.
func (p *Checker) Check(result symbolic.Result) (Report, error) {
	var report = Report{Threshold: p.threshold}
	//
	for _, table := range result.States.Flatten() {
		verdict, err := p.checkTable(table)
		if err != nil {
			return report, err
		}
		//
		if verdict != SAFE {
			log.Debugf("%s partition %s", verdict.String(), table.String())
			report.Violation += table.Probability()
		}
		//
		report.Partitions = append(report.Partitions, Partition{table, verdict})
	}
	// Abandoned partitions could do anything
	for _, t := range result.Truncations {
		report.Truncated += t.Probability
	}
	//
	report.Truncated = math.Min(1, report.Truncated)
	report.Violation = math.Min(1, report.Violation+report.Truncated)
	//
	return report, nil
}

func (p *Checker) checkTable(table symbolic.SymbolTable) (Verdict, error) {
	var (
		verdict = SAFE
		state   = table.State()
	)
	//
	for i, c := range p.region.Coordinates {
		if c < 0 || c >= state.Dim() {
			return SAFE, domain.NewShapeError("Check", state.Dim(), c+1)
		}
		//
		verdict = max(verdict, classify(state.Interval(c), p.region.Bounds[i]))
		//
		if position := p.position(c); position >= 0 {
			for _, entry := range table.Trajectory() {
				if position < len(entry) {
					verdict = max(verdict, classify(entry[position], p.region.Bounds[i]))
				}
			}
		}
	}
	//
	return verdict, nil
}

// Determine the position of a coordinate within trajectory entries, or -1 if
// it is not tracked.
func (p *Checker) position(coordinate int) int {
	for i, c := range p.tracked {
		if c == coordinate {
			return i
		}
	}
	//
	return -1
}
