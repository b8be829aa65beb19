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
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/program"
	"github.com/consensys/go-probai/pkg/symbolic"
	"gopkg.in/yaml.v3"
)

// Config represents the analysis settings which can be given in a
// configuration file.  Keys which are missing from the file keep their default
// values.
type Config struct {
	// Minimum width reported for any non-empty interval.
	Epsilon float64 `yaml:"epsilon"`
	// Probability substituted when a split leaves a partition without samples.
	SmallProbability float64 `yaml:"small_probability"`
	// Maximum number of iterations of any loop.
	MaxIterations uint `yaml:"max_iterations"`
	// Name of the probability estimator (sound, volume or pointcloud).
	Estimator string `yaml:"estimator"`
	// Number of sample points drawn for the point cloud estimator.
	Samples uint `yaml:"samples"`
	// Seed for drawing sample points.
	Seed int64 `yaml:"seed"`
	// Range parameter for sigmoid-linear layers.
	SigmoidRange float64 `yaml:"sigmoid_range"`
	// Maximum acceptable probability of leaving the safe region.
	ViolationBound float64 `yaml:"violation_bound"`
	// Domain used for evaluating assignment expressions (box or zonotope).
	Expressions string `yaml:"expressions"`
	// Number of partitions of the first input on entry.
	Partitions uint `yaml:"partitions"`
}

// Default returns the default configuration.
func Default() Config {
	k := domain.DefaultConstants()
	//
	return Config{
		Epsilon:          k.Epsilon,
		SmallProbability: k.SmallProbability,
		MaxIterations:    symbolic.MAX_ITERATIONS,
		Estimator:        symbolic.SoundEstimator{}.Name(),
		Samples:          1000,
		Seed:             0,
		SigmoidRange:     1,
		ViolationBound:   0,
		Expressions:      program.BOX_EXPRESSIONS,
		Partitions:       1,
	}
}

// Load reads a configuration file, overlaying its contents on the default
// configuration.
func Load(filename string) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, err
	}
	//
	defer f.Close()
	//
	cfg, err := Parse(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return cfg, nil
}

// Parse a configuration from a given reader.  Unknown keys are rejected, and
// the resulting configuration is validated.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	//
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	// An empty file decodes to nothing at all
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	//
	return cfg, cfg.Validate()
}

// Validate checks every setting lies within its permitted range.
func (p Config) Validate() error {
	switch {
	case !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 0):
		return fmt.Errorf("epsilon must be positive (was %v)", p.Epsilon)
	case !(p.SmallProbability > 0 && p.SmallProbability <= 1):
		return fmt.Errorf("small_probability must be in (0,1] (was %v)", p.SmallProbability)
	case p.MaxIterations == 0:
		return errors.New("max_iterations must be positive")
	case !(p.SigmoidRange > 0) || math.IsInf(p.SigmoidRange, 0):
		return fmt.Errorf("sigmoid_range must be positive (was %v)", p.SigmoidRange)
	case !(p.ViolationBound >= 0 && p.ViolationBound <= 1):
		return fmt.Errorf("violation_bound must be in [0,1] (was %v)", p.ViolationBound)
	case p.Expressions != program.BOX_EXPRESSIONS && p.Expressions != program.ZONOTOPE_EXPRESSIONS:
		return fmt.Errorf("unknown expression domain %s", p.Expressions)
	case p.Partitions == 0:
		return errors.New("partitions must be positive")
	}
	//
	if _, ok := symbolic.LookupEstimator(p.Estimator); !ok {
		return fmt.Errorf("unknown estimator %s", p.Estimator)
	} else if p.NeedsSamples() && p.Samples == 0 {
		return fmt.Errorf("estimator %s requires samples", p.Estimator)
	}
	//
	return nil
}

// Constants returns the numeric constants for the abstract domains.
func (p Config) Constants() domain.Constants {
	return domain.Constants{Epsilon: p.Epsilon, SmallProbability: p.SmallProbability}
}

// Symbolic returns the configuration for symbolic execution.
func (p Config) Symbolic() (symbolic.Config, error) {
	estimator, ok := symbolic.LookupEstimator(p.Estimator)
	if !ok {
		return symbolic.Config{}, fmt.Errorf("unknown estimator %s", p.Estimator)
	}
	//
	return symbolic.Config{
		Constants:     p.Constants(),
		MaxIterations: p.MaxIterations,
		Estimator:     estimator,
	}, nil
}

// Options returns the options for compiling programs.
func (p Config) Options() program.Options {
	return program.Options{Expressions: p.Expressions, SigmoidRange: p.SigmoidRange}
}

// NeedsSamples indicates whether sample points must be drawn for the chosen
// estimator.
func (p Config) NeedsSamples() bool {
	return p.Estimator == symbolic.PointCloudEstimator{}.Name()
}
