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

import (
	"math"

	"github.com/consensys/go-probai/pkg/domain"
)

// Estimate captures the probability (and, optionally, point cloud) assigned to
// one descendant of a split.
type Estimate struct {
	Probability float64
	Points      [][]float64
	Count       float64
}

// Estimator determines the probability assigned to a descendant produced by
// splitting a partition in two along a given coordinate.  Implementations
// must never return a probability above that of the parent.
type Estimator interface {
	// Estimate the probability of the descendant whose domain value is child,
	// obtained by splitting parent along the given coordinate.
	Estimate(parent SymbolTable, child domain.Box, coordinate int, k domain.Constants) Estimate
	// Name identifies this estimator in reports.
	Name() string
}

// SoundEstimator gives each descendant the full probability of its parent.
// The sum of probabilities across a state can therefore exceed one, but every
// partition carries a valid upper bound.  This is required for certification.
type SoundEstimator struct{}

// Estimate implementation for the Estimator interface.
func (p SoundEstimator) Estimate(parent SymbolTable, _ domain.Box, _ int, _ domain.Constants) Estimate {
	points, count := parent.PointCloud()
	return Estimate{parent.Probability(), points, count}
}

// Name implementation for the Estimator interface.
func (p SoundEstimator) Name() string {
	return "sound"
}

// VolumeEstimator divides the probability of a parent between its descendants
// in proportion to their width along the split coordinate.  This assumes the
// partition is uniformly distributed, and is not sound in general.
type VolumeEstimator struct{}

// Estimate implementation for the Estimator interface.
func (p VolumeEstimator) Estimate(parent SymbolTable, child domain.Box, coordinate int, k domain.Constants) Estimate {
	var (
		points, count = parent.PointCloud()
		prob          = parent.Probability()
		whole         = parent.state.Interval(coordinate).Volume(k)
		part          = child.Interval(coordinate).Volume(k)
	)
	//
	if whole > 0 && !math.IsInf(whole, 0) {
		prob = prob * math.Min(1, part/whole)
	}
	//
	return Estimate{prob, points, count}
}

// Name implementation for the Estimator interface.
func (p VolumeEstimator) Name() string {
	return "volume"
}

// PointCloudEstimator assigns probabilities according to the fraction of a
// parent's sample points which fall within each descendant.  A descendant
// containing no sample points is assigned a small (but non-zero) probability.
type PointCloudEstimator struct{}

// Estimate implementation for the Estimator interface.
func (p PointCloudEstimator) Estimate(parent SymbolTable, child domain.Box, _ int, k domain.Constants) Estimate {
	var (
		points, count = parent.PointCloud()
		matched       [][]float64
	)
	//
	for _, point := range points {
		// Points of the wrong dimension are simply ignored
		if ok, err := child.ContainsPoint(point); err == nil && ok {
			matched = append(matched, point)
		}
	}
	//
	if len(matched) == 0 || count <= 0 {
		return Estimate{math.Min(k.SmallProbability, parent.Probability()), nil, 0}
	}
	//
	ratio := math.Min(1, float64(len(matched))/count)
	//
	return Estimate{parent.Probability() * ratio, matched, float64(len(matched))}
}

// Name implementation for the Estimator interface.
func (p PointCloudEstimator) Name() string {
	return "pointcloud"
}

// LookupEstimator returns the estimator with the given name, or false if no
// such estimator exists.
func LookupEstimator(name string) (Estimator, bool) {
	switch name {
	case "sound":
		return SoundEstimator{}, true
	case "volume":
		return VolumeEstimator{}, true
	case "pointcloud":
		return PointCloudEstimator{}, true
	default:
		return nil, false
	}
}
