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
package layer

import (
	"fmt"

	"github.com/consensys/go-probai/pkg/domain"
)

// Layer represents a (sound) transformation of boxes, such as one layer of a
// neural network controller.
type Layer interface {
	// Apply this layer to a given box.
	Apply(domain.Box) (domain.Box, error)
	// Inputs returns the number of coordinates this layer accepts, or zero if
	// it accepts any number.
	Inputs() uint
}

// Linear is a fully connected layer computing x·W + b.
type Linear struct {
	// Weights with one row per input, and one column per output.
	weights [][]float64
	// Bias with one entry per output.
	bias []float64
}

// NewLinear constructs a new linear layer.  The bias may be nil, in which case
// it is zero.  This fails if the weights are ragged, or the bias has the wrong
// length.
func NewLinear(weights [][]float64, bias []float64) (*Linear, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("linear layer requires at least one input")
	}
	//
	outputs := len(weights[0])
	//
	for _, row := range weights {
		if len(row) != outputs {
			return nil, domain.NewShapeError("Linear", outputs, len(row))
		}
	}
	//
	if bias == nil {
		bias = make([]float64, outputs)
	} else if len(bias) != outputs {
		return nil, domain.NewShapeError("Linear", outputs, len(bias))
	}
	//
	return &Linear{weights, bias}, nil
}

// Inputs implementation for the Layer interface.
func (p *Linear) Inputs() uint {
	return uint(len(p.weights))
}

// Outputs returns the number of coordinates produced by this layer.
func (p *Linear) Outputs() uint {
	return uint(len(p.bias))
}

// Apply implementation for the Layer interface.
func (p *Linear) Apply(box domain.Box) (domain.Box, error) {
	res, err := box.Matmul(p.weights)
	if err != nil {
		return domain.Box{}, err
	}
	//
	return res.Add(domain.Vector(p.bias))
}

// Activation is a monotone non-decreasing function applied coordinate-wise.
type Activation uint8

const (
	// SIGMOID is the logistic function.
	SIGMOID Activation = iota
	// TANH is the hyperbolic tangent.
	TANH
	// RELU is max(0,x).
	RELU
)

// Inputs implementation for the Layer interface.
func (p Activation) Inputs() uint {
	return 0
}

// Apply implementation for the Layer interface.
func (p Activation) Apply(box domain.Box) (domain.Box, error) {
	switch p {
	case SIGMOID:
		return box.Sigmoid(), nil
	case TANH:
		return box.Tanh(), nil
	case RELU:
		return box.Relu(), nil
	default:
		panic(fmt.Sprintf("unknown activation %d", p))
	}
}

func (p Activation) String() string {
	switch p {
	case SIGMOID:
		return "sigmoid"
	case TANH:
		return "tanh"
	case RELU:
		return "relu"
	default:
		return fmt.Sprintf("activation(%d)", uint8(p))
	}
}

// SigmoidLinear is a piecewise linear approximation of the sigmoid, which is
// linear over [-r,r] and clamped to [0,1] outside.
type SigmoidLinear struct {
	Range float64
}

// Inputs implementation for the Layer interface.
func (p SigmoidLinear) Inputs() uint {
	return 0
}

// Apply implementation for the Layer interface.
func (p SigmoidLinear) Apply(box domain.Box) (domain.Box, error) {
	if !(p.Range > 0) {
		return domain.Box{}, fmt.Errorf("invalid sigmoid range %v", p.Range)
	}
	//
	return box.SigmoidLinear(p.Range), nil
}

// Chain applies a sequence of layers one after the other.
type Chain []Layer

// Inputs implementation for the Layer interface.
func (p Chain) Inputs() uint {
	for _, l := range p {
		if n := l.Inputs(); n != 0 {
			return n
		}
	}
	//
	return 0
}

// Apply implementation for the Layer interface.
func (p Chain) Apply(box domain.Box) (domain.Box, error) {
	var err error
	//
	for i, l := range p {
		if box, err = l.Apply(box); err != nil {
			return domain.Box{}, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	//
	return box, nil
}
