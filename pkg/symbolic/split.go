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
	log "github.com/sirupsen/logrus"
)

// SplitSymbolTable routes a partition according to the condition "x <= test",
// where x is the given coordinate.  A partition lying entirely at or below the
// threshold goes to the body; one lying entirely above goes to the orelse.
// Otherwise, the partition is divided into [lo,test] for the body and
// [test,hi] for the orelse, with probabilities determined by the estimator.
// Either result may be absent, but never both.
func SplitSymbolTable(cfg Config, table SymbolTable, coordinate int, test float64) (*SymbolTable, *SymbolTable, error) {
	if coordinate < 0 || coordinate >= table.state.Dim() {
		return nil, nil, domain.NewShapeError("split", table.state.Dim(), coordinate+1)
	}
	//
	target := table.state.Interval(coordinate)
	//
	if math.IsNaN(target.Left()) || math.IsNaN(target.Right()) {
		return nil, nil, domain.NewDomainError("split", target, "bounds are not numbers")
	} else if math.IsNaN(test) {
		return nil, nil, domain.NewDomainError("split", target, "threshold is not a number")
	} else if target.Right() <= test {
		body := table.WithBranch(BODY)
		return &body, nil, nil
	} else if target.Left() > test {
		orelse := table.WithBranch(ORELSE)
		return nil, &orelse, nil
	}
	// Straddles the threshold
	log.Debugf("splitting %s at %g on coordinate %d", target.String(), test, coordinate)
	//
	body := descendant(cfg, table, coordinate, domain.NewInterval(target.Left(), test), BODY)
	orelse := descendant(cfg, table, coordinate, domain.NewInterval(test, target.Right()), ORELSE)
	//
	return &body, &orelse, nil
}

func descendant(cfg Config, parent SymbolTable, coordinate int, part domain.Interval, branch Branch) SymbolTable {
	state := parent.state.Clone()
	// Cannot fail, since the coordinate was already checked.
	_ = state.SetFromIndex([]int{coordinate}, part.GetBox())
	//
	estimate := cfg.Estimator.Estimate(parent, state, coordinate, cfg.Constants)
	//
	return parent.WithState(state).
		WithProbability(estimate.Probability).
		WithPointCloud(estimate.Points, estimate.Count).
		WithBranch(branch)
}

// SplitAbstractState routes every partition of an abstract state, returning
// the partitions for the body and orelse respectively.  Either may be empty.
// The relative order of partitions is preserved on both sides.
func SplitAbstractState(cfg Config, state AbstractState, coordinate int, test float64) (AbstractState, AbstractState, error) {
	var body, orelse AbstractState
	//
	for _, table := range state {
		b, o, err := SplitSymbolTable(cfg, table, coordinate, test)
		if err != nil {
			return nil, nil, err
		}
		//
		if b != nil {
			body = append(body, *b)
		}
		//
		if o != nil {
			orelse = append(orelse, *o)
		}
	}
	//
	return body, orelse, nil
}

// SplitStates routes every abstract state in a list.  Abstract states which
// end up with no partitions on one side are omitted from that side.
func SplitStates(cfg Config, states AbstractStateList, coordinate int, test float64) (AbstractStateList,
	AbstractStateList, error) {
	var body, orelse AbstractStateList
	//
	for _, state := range states {
		b, o, err := SplitAbstractState(cfg, state, coordinate, test)
		if err != nil {
			return nil, nil, err
		}
		//
		if len(b) > 0 {
			body = append(body, b)
		}
		//
		if len(o) > 0 {
			orelse = append(orelse, o)
		}
	}
	//
	log.Debugf("split %d partitions into %d (body) and %d (orelse)", states.Tables(), body.Tables(),
		orelse.Tables())
	//
	return body, orelse, nil
}
