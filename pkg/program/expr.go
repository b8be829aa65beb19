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
package program

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-probai/pkg/domain"
)

// Expr represents an arithmetic expression over program variables, which can
// be evaluated soundly over a given state.
type Expr interface {
	// EvalBox evaluates this expression over a state using interval
	// arithmetic, returning a one dimensional box.
	EvalBox(state domain.Box) (domain.Box, error)
	// evalZonotope evaluates this expression over a state lifted into the
	// zonotope domain.
	evalZonotope(env *zonotopeEnv) (domain.Zonotope, error)
	// String returns a parseable representation of this expression.
	String() string
}

// Constant is a literal number.
type Constant struct {
	Value float64
}

// EvalBox implementation for Expr interface.
func (p *Constant) EvalBox(domain.Box) (domain.Box, error) {
	return domain.NewPointBox(p.Value), nil
}

func (p *Constant) evalZonotope(*zonotopeEnv) (domain.Zonotope, error) {
	return domain.NewZonotope(p.Value), nil
}

func (p *Constant) String() string {
	return strconv.FormatFloat(p.Value, 'g', -1, 64)
}

// Variable reads a given coordinate of the state.
type Variable struct {
	Name  string
	Index int
}

// EvalBox implementation for Expr interface.
func (p *Variable) EvalBox(state domain.Box) (domain.Box, error) {
	return state.SelectFromIndex([]int{p.Index})
}

func (p *Variable) evalZonotope(env *zonotopeEnv) (domain.Zonotope, error) {
	if p.Index >= len(env.variables) {
		return domain.Zonotope{}, domain.NewShapeError("variable", len(env.variables), p.Index+1)
	}
	//
	return env.variables[p.Index], nil
}

func (p *Variable) String() string {
	return p.Name
}

// Operator identifies an arithmetic operation.
type Operator uint8

const (
	// ADD is n-ary addition.
	ADD Operator = iota
	// SUB is n-ary subtraction, or negation when unary.
	SUB
	// MUL is n-ary multiplication.
	MUL
	// DIV is binary division.
	DIV
	// MAX is the binary maximum.
	MAX
	// MIN is the binary minimum.
	MIN
	// EXP is the exponential function.
	EXP
	// SIN is the sine function.
	SIN
	// COS is the cosine function.
	COS
	// SQRT is the square root.
	SQRT
	// SIGMOID is the logistic function.
	SIGMOID
	// TANH is the hyperbolic tangent.
	TANH
	// RELU is max(0,x).
	RELU
)

var operators = []struct {
	name  string
	arity int // zero means variadic
}{
	{"+", 0}, {"-", 0}, {"*", 0}, {"/", 2}, {"max", 2}, {"min", 2},
	{"exp", 1}, {"sin", 1}, {"cos", 1}, {"sqrt", 1}, {"sigmoid", 1}, {"tanh", 1}, {"relu", 1},
}

func (p Operator) String() string {
	return operators[p].name
}

// Apply applies an operator to one or more arguments.
type Apply struct {
	Op   Operator
	Args []Expr
}

// NewApply constructs an application of the named operator, checking the
// number of arguments.
func NewApply(name string, args []Expr) (*Apply, error) {
	for i, op := range operators {
		if op.name != name {
			continue
		} else if op.arity != 0 && len(args) != op.arity {
			return nil, fmt.Errorf("%s expects %d argument(s), found %d", name, op.arity, len(args))
		} else if len(args) == 0 {
			return nil, fmt.Errorf("%s expects at least one argument", name)
		}
		//
		return &Apply{Operator(i), args}, nil
	}
	//
	return nil, fmt.Errorf("unknown operation %s", name)
}

// EvalBox implementation for Expr interface.
func (p *Apply) EvalBox(state domain.Box) (domain.Box, error) {
	args := make([]domain.Box, len(p.Args))
	//
	for i, arg := range p.Args {
		var err error
		if args[i], err = arg.EvalBox(state); err != nil {
			return domain.Box{}, err
		}
	}
	//
	switch p.Op {
	case ADD:
		return foldBox(args, domain.Box.Add)
	case SUB:
		if len(args) == 1 {
			return args[0].SubFrom(domain.Scalar(0))
		}
		//
		return foldBox(args, domain.Box.Sub)
	case MUL:
		return foldBox(args, domain.Box.Mul)
	case DIV:
		return args[1].DivFrom(args[0])
	case MAX:
		return args[0].Max(args[1])
	case MIN:
		return args[0].Min(args[1])
	case EXP:
		return args[0].Exp(), nil
	case SIN:
		return args[0].Sin(), nil
	case COS:
		return args[0].Cos(), nil
	case SQRT:
		return args[0].Sqrt()
	case SIGMOID:
		return args[0].Sigmoid(), nil
	case TANH:
		return args[0].Tanh(), nil
	case RELU:
		return args[0].Relu(), nil
	default:
		panic(fmt.Sprintf("unknown operator %d", p.Op))
	}
}

func (p *Apply) evalZonotope(env *zonotopeEnv) (domain.Zonotope, error) {
	args := make([]domain.Zonotope, len(p.Args))
	//
	for i, arg := range p.Args {
		var err error
		if args[i], err = arg.evalZonotope(env); err != nil {
			return domain.Zonotope{}, err
		}
	}
	//
	switch p.Op {
	case ADD:
		return foldZonotope(args, func(x, y domain.Zonotope) domain.Zonotope { return x.Add(y) }), nil
	case SUB:
		if len(args) == 1 {
			return args[0].SubFrom(domain.Scalar(0)), nil
		}
		//
		return foldZonotope(args, func(x, y domain.Zonotope) domain.Zonotope { return x.Sub(y) }), nil
	case MUL:
		return foldZonotope(args, env.mul), nil
	case DIV:
		res, err := args[1].DivFrom(args[0])
		if err != nil {
			return domain.Zonotope{}, err
		}
		//
		return env.fresh(res), nil
	case MAX:
		return env.fresh(args[0].Max(args[1])), nil
	case MIN:
		return env.fresh(args[0].Min(args[1])), nil
	case EXP:
		return env.fresh(args[0].Exp()), nil
	case SIN:
		return env.fresh(args[0].Sin()), nil
	case COS:
		return env.fresh(args[0].Cos()), nil
	case SQRT:
		res, err := args[0].GetInterval().Sqrt()
		if err != nil {
			return domain.Zonotope{}, err
		}
		//
		return env.fresh(res.GetZonotope()), nil
	case SIGMOID:
		return env.fresh(args[0].GetInterval().GetBox().Sigmoid().GetInterval().GetZonotope()), nil
	case TANH:
		return env.fresh(args[0].GetInterval().GetBox().Tanh().GetInterval().GetZonotope()), nil
	case RELU:
		return env.fresh(args[0].GetInterval().GetBox().Relu().GetInterval().GetZonotope()), nil
	default:
		panic(fmt.Sprintf("unknown operator %d", p.Op))
	}
}

func (p *Apply) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(p.Op.String())
	//
	for _, arg := range p.Args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

func foldBox(args []domain.Box, fn func(domain.Box, domain.Operand) (domain.Box, error)) (domain.Box, error) {
	var (
		acc = args[0]
		err error
	)
	//
	for _, arg := range args[1:] {
		if acc, err = fn(acc, arg); err != nil {
			return domain.Box{}, err
		}
	}
	//
	return acc, nil
}

func foldZonotope(args []domain.Zonotope, fn func(domain.Zonotope, domain.Zonotope) domain.Zonotope) domain.Zonotope {
	acc := args[0]
	//
	for _, arg := range args[1:] {
		acc = fn(acc, arg)
	}
	//
	return acc
}

// ============================================================================
// Zonotope evaluation
// ============================================================================

// EvalZonotope evaluates an expression over a state lifted into the zonotope
// domain, where each variable has its own noise symbol.  This retains
// correlations between occurrences of the same variable (e.g. x - x is
// exactly zero), and the result is projected back into a one dimensional box.
func EvalZonotope(e Expr, state domain.Box) (domain.Box, error) {
	env := newZonotopeEnv(state)
	//
	res, err := e.evalZonotope(env)
	if err != nil {
		return domain.Box{}, err
	}
	//
	return res.GetInterval().GetBox(), nil
}

// Evaluation environment which allocates noise symbols.  Every operation which
// introduces new uncertainty must place it on a fresh symbol, as otherwise it
// would be correlated with some unrelated variable.
type zonotopeEnv struct {
	variables []domain.Zonotope
	// Next unused noise symbol
	next int
}

func newZonotopeEnv(state domain.Box) *zonotopeEnv {
	n := state.Dim()
	variables := make([]domain.Zonotope, n)
	//
	for i := range variables {
		noise := make([]float64, n)
		noise[i] = state.Delta(i)
		variables[i] = domain.NewZonotope(state.Center(i), noise...)
	}
	//
	return &zonotopeEnv{variables, n}
}

// Lift a degraded (single symbol) zonotope onto a fresh noise symbol.
func (p *zonotopeEnv) fresh(z domain.Zonotope) domain.Zonotope {
	noise := make([]float64, p.next+1)
	noise[p.next] = z.Noise(0)
	p.next++
	//
	return domain.NewZonotope(z.Center(), noise...)
}

// Multiply two zonotopes, such that the remainder term lands on a fresh noise
// symbol.
func (p *zonotopeEnv) mul(x domain.Zonotope, y domain.Zonotope) domain.Zonotope {
	res := pad(x, p.next).MulAffine(pad(y, p.next))
	p.next++
	//
	return res
}

// Pad a zonotope with zero coefficients up to n noise symbols.
func pad(z domain.Zonotope, n int) domain.Zonotope {
	noise := make([]float64, max(n, z.CoefLength()))
	for i := range noise {
		noise[i] = z.Noise(i)
	}
	//
	return domain.NewZonotope(z.Center(), noise...)
}
