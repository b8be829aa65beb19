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
	"math"
	"slices"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/layer"
	"github.com/consensys/go-probai/pkg/symbolic"
	"github.com/consensys/go-probai/pkg/util/source"
	"github.com/consensys/go-probai/pkg/util/source/sexp"
	"github.com/consensys/go-probai/pkg/verify"
	log "github.com/sirupsen/logrus"
)

// Compile a given source file into a program, or produce one or more syntax
// errors.
func Compile(srcfile *source.File, opts Options) (*Program, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(srcfile)
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	if opts.Expressions != BOX_EXPRESSIONS && opts.Expressions != ZONOTOPE_EXPRESSIONS {
		msg := fmt.Sprintf("unknown expression domain %s", opts.Expressions)
		return nil, []source.SyntaxError{*srcfile.SyntaxError(source.NewSpan(0, 0), msg)}
	}
	//
	return newCompiler(srcmap, opts).compile(terms)
}

type compiler struct {
	srcmap *source.Map[sexp.SExp]
	opts   Options
	// Declared variable names, in coordinate order
	names []string
	// Declared variable ranges, in coordinate order
	bounds []domain.Interval
	// Variables recorded in trajectories (if any)
	tracked []int
	// Safe region declared so far
	region verify.SafeRegion
	// Translator for arithmetic expressions
	exprs *sexp.Translator[Expr]
}

func newCompiler(srcmap *source.Map[sexp.SExp], opts Options) *compiler {
	c := &compiler{srcmap: srcmap, opts: opts}
	c.exprs = sexp.NewTranslator[Expr](srcmap)
	// Numbers
	c.exprs.AddSymbolRule(func(s string) (Expr, bool, error) {
		if v, ok := sexp.NewSymbol(s).Number(); ok {
			return &Constant{v}, true, nil
		}
		//
		return nil, false, nil
	})
	// Variables
	c.exprs.AddSymbolRule(func(s string) (Expr, bool, error) {
		if index := slices.Index(c.names, s); index >= 0 {
			return &Variable{s, index}, true, nil
		}
		//
		return nil, true, fmt.Errorf("unknown variable %s", s)
	})
	// Operators
	for _, op := range operators {
		c.exprs.AddRecursiveListRule(op.name, func(name string, args []Expr) (Expr, error) {
			e, err := NewApply(name, args)
			if err != nil {
				return nil, err
			}
			//
			return e, nil
		})
	}
	//
	return c
}

func (c *compiler) compile(terms []sexp.SExp) (*Program, []source.SyntaxError) {
	var (
		body    symbolic.Sequence
		errors  []source.SyntaxError
		started bool
	)
	//
	for _, term := range terms {
		var errs []source.SyntaxError
		//
		switch l := term.AsList(); {
		case l == nil:
			errs = c.errors(term, "expected declaration or statement")
		case l.Head() == "input" && started:
			errs = c.errors(term, "inputs must be declared before any statement")
		case l.Head() == "input":
			errs = c.compileInputs(l)
		case l.Head() == "safe":
			errs = c.compileSafe(l)
		default:
			var stmt symbolic.Statement
			//
			started = true
			//
			if stmt, errs = c.compileStatement(l); len(errs) == 0 {
				body = append(body, stmt)
			}
		}
		//
		errors = append(errors, errs...)
	}
	//
	if len(errors) == 0 && len(c.names) == 0 {
		errors = append(errors, *c.srcmap.Source().SyntaxError(source.NewSpan(0, 0), "missing input declaration"))
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	log.Debugf("compiled %d statements over variables %v", len(body), c.names)
	//
	return &Program{
		variables: c.names,
		inputs:    domain.NewBoxFromIntervals(c.bounds...),
		body:      body,
		tracked:   c.tracked,
		region:    c.region,
	}, nil
}

// ============================================================================
// Declarations
// ============================================================================

// (input (x lo hi) ...)
func (c *compiler) compileInputs(l *sexp.List) []source.SyntaxError {
	var errors []source.SyntaxError
	//
	for _, decl := range l.Elements[1:] {
		d := decl.AsList()
		//
		if d == nil || d.Len() != 3 || d.Get(0).AsSymbol() == nil {
			errors = append(errors, c.errors(decl, "expected (name lo hi)")...)
			continue
		}
		//
		name := d.Get(0).AsSymbol().Value
		bound, errs := c.compileRange(d.Get(1), d.Get(2))
		//
		if len(errs) > 0 {
			errors = append(errors, errs...)
		} else if slices.Contains(c.names, name) {
			errors = append(errors, c.errors(d.Get(0), fmt.Sprintf("variable %s already declared", name))...)
		} else if _, ok := sexp.NewSymbol(name).Number(); ok {
			errors = append(errors, c.errors(d.Get(0), "invalid variable name")...)
		} else {
			c.names = append(c.names, name)
			c.bounds = append(c.bounds, bound)
		}
	}
	//
	return errors
}

// (safe x lo hi)
func (c *compiler) compileSafe(l *sexp.List) []source.SyntaxError {
	if l.Len() != 4 {
		return c.errors(l, "expected (safe name lo hi)")
	}
	//
	index, errs := c.compileVariable(l.Get(1))
	if len(errs) > 0 {
		return errs
	}
	//
	bound, errs := c.compileRange(l.Get(2), l.Get(3))
	if len(errs) > 0 {
		return errs
	}
	//
	c.region.Add(index, bound)
	//
	return nil
}

func (c *compiler) compileRange(lo sexp.SExp, hi sexp.SExp) (domain.Interval, []source.SyntaxError) {
	left, errs1 := c.compileFiniteNumber(lo)
	right, errs2 := c.compileFiniteNumber(hi)
	//
	if errs := append(errs1, errs2...); len(errs) > 0 {
		return domain.Interval{}, errs
	} else if left > right {
		return domain.Interval{}, c.errors(hi, "upper bound below lower bound")
	}
	//
	return domain.NewInterval(left, right), nil
}

// ============================================================================
// Statements
// ============================================================================

func (c *compiler) compileStatement(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	switch l.Head() {
	case "assign":
		return c.compileAssign(l)
	case "linear":
		return c.compileLinear(l)
	case "network":
		return c.compileNetwork(l)
	case "if":
		return c.compileIf(l)
	case "while":
		return c.compileWhile(l)
	case "trajectory":
		return c.compileTrajectory(l)
	case "skip":
		return symbolic.Skip{}, nil
	case "input", "safe":
		return nil, c.errors(l, fmt.Sprintf("%s must be declared at the top level", l.Head()))
	default:
		return nil, c.errors(l, "unknown statement")
	}
}

func (c *compiler) compileBlock(elements []sexp.SExp) (symbolic.Sequence, []source.SyntaxError) {
	var (
		block  symbolic.Sequence
		errors []source.SyntaxError
	)
	//
	for _, e := range elements {
		if l := e.AsList(); l == nil {
			errors = append(errors, c.errors(e, "expected statement")...)
		} else if stmt, errs := c.compileStatement(l); len(errs) > 0 {
			errors = append(errors, errs...)
		} else {
			block = append(block, stmt)
		}
	}
	//
	return block, errors
}

// (assign x expr)
func (c *compiler) compileAssign(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	if l.Len() != 3 {
		return nil, c.errors(l, "expected (assign name expr)")
	}
	//
	target, errs1 := c.compileVariable(l.Get(1))
	expr, errs2 := c.exprs.Translate(l.Get(2))
	//
	if errs := append(errs1, errs2...); len(errs) > 0 {
		return nil, errs
	}
	//
	fn := expr.EvalBox
	//
	if c.opts.Expressions == ZONOTOPE_EXPRESSIONS {
		fn = func(state domain.Box) (domain.Box, error) {
			return EvalZonotope(expr, state)
		}
	}
	// Expressions are evaluated over the whole state
	all := make([]int, len(c.names))
	for i := range all {
		all[i] = i
	}
	//
	return symbolic.NewAssign([]int{target}, all, fn), nil
}

// (linear (outs...) (ins...) [[w...]...] [b...])
func (c *compiler) compileLinear(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	if l.Len() != 5 {
		return nil, c.errors(l, "expected (linear (outputs) (inputs) weights bias)")
	}
	//
	outs, errs1 := c.compileVariables(l.Get(1))
	ins, errs2 := c.compileVariables(l.Get(2))
	lin, errs3 := c.compileLinearLayer(l.Get(3), l.Get(4))
	//
	if errs := append(append(errs1, errs2...), errs3...); len(errs) > 0 {
		return nil, errs
	} else if int(lin.Inputs()) != len(ins) {
		return nil, c.errors(l.Get(3), fmt.Sprintf("expected %d rows, found %d", len(ins), lin.Inputs()))
	} else if int(lin.Outputs()) != len(outs) {
		return nil, c.errors(l.Get(3), fmt.Sprintf("expected %d columns, found %d", len(outs), lin.Outputs()))
	}
	//
	return symbolic.NewAssign(outs, ins, lin.Apply), nil
}

// (network (outs...) (ins...) layer...)
func (c *compiler) compileNetwork(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	var (
		chain  layer.Chain
		errors []source.SyntaxError
	)
	//
	if l.Len() < 4 {
		return nil, c.errors(l, "expected (network (outputs) (inputs) layers...)")
	}
	//
	outs, errs1 := c.compileVariables(l.Get(1))
	ins, errs2 := c.compileVariables(l.Get(2))
	//
	if errs := append(errs1, errs2...); len(errs) > 0 {
		return nil, errs
	}
	// Width of the values flowing between layers
	width := len(ins)
	//
	for _, e := range l.Elements[3:] {
		ith, errs := c.compileLayer(e)
		//
		if len(errs) > 0 {
			errors = append(errors, errs...)
			continue
		} else if lin, ok := ith.(*layer.Linear); ok {
			if int(lin.Inputs()) != width {
				errors = append(errors, c.errors(e, fmt.Sprintf("expected %d rows, found %d", width, lin.Inputs()))...)
			}
			//
			width = int(lin.Outputs())
		}
		//
		chain = append(chain, ith)
	}
	//
	if len(errors) == 0 && width != len(outs) {
		errors = c.errors(l.Get(1), fmt.Sprintf("network produces %d outputs", width))
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return symbolic.NewAssign(outs, ins, chain.Apply), nil
}

// (linear W b) | (relu) | (sigmoid) | (tanh) | (sigmoid-linear)
func (c *compiler) compileLayer(e sexp.SExp) (layer.Layer, []source.SyntaxError) {
	l := e.AsList()
	//
	if l == nil {
		return nil, c.errors(e, "expected layer")
	} else if l.Head() == "linear" && l.Len() == 3 {
		return c.compileLinearLayer(l.Get(1), l.Get(2))
	} else if l.Len() != 1 {
		return nil, c.errors(e, "unknown layer")
	}
	//
	switch l.Head() {
	case "relu":
		return layer.RELU, nil
	case "sigmoid":
		return layer.SIGMOID, nil
	case "tanh":
		return layer.TANH, nil
	case "sigmoid-linear":
		return layer.SigmoidLinear{Range: c.opts.SigmoidRange}, nil
	default:
		return nil, c.errors(e, "unknown layer")
	}
}

func (c *compiler) compileLinearLayer(weights sexp.SExp, bias sexp.SExp) (*layer.Linear, []source.SyntaxError) {
	var errors []source.SyntaxError
	//
	rows := weights.AsArray()
	if rows == nil || rows.Len() == 0 {
		return nil, c.errors(weights, "expected weight matrix")
	}
	//
	matrix := make([][]float64, rows.Len())
	//
	for i, row := range rows.Elements {
		var errs []source.SyntaxError
		//
		matrix[i], errs = c.compileVector(row)
		errors = append(errors, errs...)
	}
	//
	vector, errs := c.compileVector(bias)
	//
	if errors = append(errors, errs...); len(errors) > 0 {
		return nil, errors
	}
	//
	lin, err := layer.NewLinear(matrix, vector)
	if err != nil {
		return nil, c.errors(weights, err.Error())
	}
	//
	return lin, nil
}

// (if (<= x c) (body ...) (else ...)) or (if (> x c) ...)
func (c *compiler) compileIf(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	var (
		body, orelse symbolic.Sequence
		errors       []source.SyntaxError
	)
	//
	if l.Len() != 3 && l.Len() != 4 {
		return nil, c.errors(l, "expected (if condition (body ...) (else ...))")
	}
	//
	coordinate, test, negated, errs := c.compileCondition(l.Get(1))
	errors = append(errors, errs...)
	//
	body, errs = c.compileBranch(l.Get(2), "body")
	errors = append(errors, errs...)
	//
	if l.Len() == 4 {
		orelse, errs = c.compileBranch(l.Get(3), "else")
		errors = append(errors, errs...)
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	stmt := symbolic.NewIfElse(coordinate, test, nil, body, orelse)
	if negated {
		return stmt.Negate(), nil
	}
	//
	return stmt, nil
}

func (c *compiler) compileBranch(e sexp.SExp, name string) (symbolic.Sequence, []source.SyntaxError) {
	l := e.AsList()
	if l == nil || l.Head() != name {
		return nil, c.errors(e, fmt.Sprintf("expected (%s ...)", name))
	}
	//
	return c.compileBlock(l.Elements[1:])
}

// (while (<= x c) ...)
func (c *compiler) compileWhile(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	if l.Len() < 2 {
		return nil, c.errors(l, "expected (while condition ...)")
	}
	//
	coordinate, test, negated, errs := c.compileCondition(l.Get(1))
	if len(errs) > 0 {
		return nil, errs
	} else if negated {
		return nil, c.errors(l.Get(1), "loop condition must have the form (<= name number)")
	}
	//
	body, errs := c.compileBlock(l.Elements[2:])
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return symbolic.NewWhile(coordinate, test, body), nil
}

// (trajectory x ...)
func (c *compiler) compileTrajectory(l *sexp.List) (symbolic.Statement, []source.SyntaxError) {
	coordinates, errs := c.compileVariableList(l, l.Elements[1:])
	//
	if len(errs) > 0 {
		return nil, errs
	} else if c.tracked != nil && !slices.Equal(c.tracked, coordinates) {
		return nil, c.errors(l, "every trajectory must record the same variables")
	}
	//
	c.tracked = coordinates
	//
	return symbolic.NewTrajectory(coordinates...), nil
}

// Compile a condition (<= x c) or (> x c), where the latter is reported as
// negated.
func (c *compiler) compileCondition(e sexp.SExp) (int, float64, bool, []source.SyntaxError) {
	l := e.AsList()
	//
	if l == nil || l.Len() != 3 || (l.Head() != "<=" && l.Head() != ">") {
		return 0, 0, false, c.errors(e, "expected (<= name number) or (> name number)")
	}
	//
	coordinate, errs1 := c.compileVariable(l.Get(1))
	test, errs2 := c.compileNumber(l.Get(2))
	//
	return coordinate, test, l.Head() == ">", append(errs1, errs2...)
}

// ============================================================================
// Terminals
// ============================================================================

func (c *compiler) compileVariable(e sexp.SExp) (int, []source.SyntaxError) {
	if s := e.AsSymbol(); s == nil {
		return 0, c.errors(e, "expected variable")
	} else if index := slices.Index(c.names, s.Value); index >= 0 {
		return index, nil
	}
	//
	return 0, c.errors(e, fmt.Sprintf("unknown variable %s", e.String()))
}

// (x y ...)
func (c *compiler) compileVariables(e sexp.SExp) ([]int, []source.SyntaxError) {
	l := e.AsList()
	//
	if l == nil || l.Len() == 0 {
		return nil, c.errors(e, "expected (name ...)")
	}
	//
	return c.compileVariableList(l, l.Elements)
}

func (c *compiler) compileVariableList(enclosing sexp.SExp, elements []sexp.SExp) ([]int, []source.SyntaxError) {
	var (
		indices = make([]int, 0, len(elements))
		errors  []source.SyntaxError
	)
	//
	for _, e := range elements {
		index, errs := c.compileVariable(e)
		//
		if len(errs) > 0 {
			errors = append(errors, errs...)
		} else if slices.Contains(indices, index) {
			errors = append(errors, c.errors(e, "duplicate variable")...)
		} else {
			indices = append(indices, index)
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	} else if len(indices) == 0 {
		return nil, c.errors(enclosing, "expected at least one variable")
	}
	//
	return indices, nil
}

func (c *compiler) compileNumber(e sexp.SExp) (float64, []source.SyntaxError) {
	if s := e.AsSymbol(); s != nil {
		if v, ok := s.Number(); ok {
			return v, nil
		}
	}
	//
	return 0, c.errors(e, "expected number")
}

func (c *compiler) compileFiniteNumber(e sexp.SExp) (float64, []source.SyntaxError) {
	v, errs := c.compileNumber(e)
	if len(errs) == 0 && math.IsInf(v, 0) {
		return 0, c.errors(e, "expected finite number")
	}
	//
	return v, errs
}

// [v ...]
func (c *compiler) compileVector(e sexp.SExp) ([]float64, []source.SyntaxError) {
	var errors []source.SyntaxError
	//
	a := e.AsArray()
	if a == nil {
		return nil, c.errors(e, "expected [number ...]")
	}
	//
	vector := make([]float64, a.Len())
	//
	for i, ith := range a.Elements {
		var errs []source.SyntaxError
		//
		vector[i], errs = c.compileNumber(ith)
		errors = append(errors, errs...)
	}
	//
	return vector, errors
}

func (c *compiler) errors(e sexp.SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*c.srcmap.SyntaxError(e, msg)}
}
