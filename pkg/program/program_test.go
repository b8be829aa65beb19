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
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/consensys/go-probai/pkg/symbolic"
	"github.com/consensys/go-probai/pkg/util/source"
	"github.com/consensys/go-probai/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test programs.
const TestDir = "../../testdata/program"

// ===================================================================
// Valid Programs
// ===================================================================

func Test_Valid_Counter(t *testing.T) {
	program, report := CheckValid(t, "counter", symbolic.DefaultConfig())
	tables := report.Partitions
	//
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"x"}, program.Variables())
	assert.Equal(t, domain.NewPoint(10), tables[0].Table.State().Interval(0))
	assert.Equal(t, 1.0, tables[0].Table.Probability())
	assert.True(t, report.Verified())
}

func Test_Valid_Branch(t *testing.T) {
	program, report := CheckValid(t, "branch", symbolic.DefaultConfig())
	//
	require.Len(t, report.Partitions, 2)
	assert.Equal(t, []int{0, 1}, program.Tracked())
	// Body comes first
	body := report.Partitions[0].Table
	assert.Equal(t, symbolic.BODY, body.Branch())
	assert.Equal(t, domain.NewInterval(-1, 0), body.State().Interval(0))
	assert.Equal(t, domain.NewInterval(0, 1), body.State().Interval(1))
	require.Len(t, body.Trajectory(), 1)
	assert.Equal(t, domain.NewInterval(0, 1), body.Trajectory()[0][1])
	//
	orelse := report.Partitions[1].Table
	assert.Equal(t, symbolic.ORELSE, orelse.Branch())
	assert.Equal(t, domain.NewInterval(0, 1), orelse.State().Interval(1))
	//
	assert.Equal(t, 2, report.Count(verify.SAFE))
	assert.True(t, report.Verified())
}

func Test_Valid_Above(t *testing.T) {
	_, report := CheckValid(t, "above", symbolic.DefaultConfig())
	//
	require.Len(t, report.Partitions, 2)
	// Partitions below the threshold come first, and run the else branch
	orelse := report.Partitions[0].Table
	assert.Equal(t, symbolic.ORELSE, orelse.Branch())
	assert.Equal(t, domain.NewInterval(-1, 0), orelse.State().Interval(0))
	assert.Equal(t, domain.NewPoint(2), orelse.State().Interval(1))
	// Partitions above the threshold run the body
	body := report.Partitions[1].Table
	assert.Equal(t, symbolic.BODY, body.Branch())
	assert.Equal(t, domain.NewInterval(0, 1), body.State().Interval(0))
	assert.Equal(t, domain.NewPoint(1), body.State().Interval(1))
	//
	assert.True(t, report.Verified())
}

func Test_Valid_Network(t *testing.T) {
	_, report := CheckValid(t, "network", symbolic.DefaultConfig())
	//
	require.Len(t, report.Partitions, 1)
	assert.Equal(t, domain.NewInterval(0, 2), report.Partitions[0].Table.State().Interval(2))
	assert.True(t, report.Verified())
}

func Test_Valid_Thermostat(t *testing.T) {
	_, report := CheckValid(t, "thermostat", symbolic.DefaultConfig())
	//
	assert.NotEmpty(t, report.Partitions)
	assert.Equal(t, len(report.Partitions), report.Count(verify.SAFE))
	//
	for _, p := range report.Partitions {
		table := p.Table
		assert.Equal(t, domain.NewPoint(5), table.State().Interval(2))
		assert.Len(t, table.Trajectory(), 5)
		assert.True(t, table.State().Interval(0).Within(domain.NewInterval(55, 69)))
	}
}

func Test_Valid_Unsafe(t *testing.T) {
	_, report := CheckValid(t, "unsafe", symbolic.DefaultConfig())
	// Without an estimator, both partitions carry the full probability.
	require.Len(t, report.Partitions, 2)
	assert.Equal(t, verify.SAFE, report.Partitions[0].Verdict)
	assert.Equal(t, verify.UNSAFE, report.Partitions[1].Verdict)
	assert.Equal(t, 1.0, report.Violation)
	assert.False(t, report.Verified())
}

func Test_Valid_Unsafe_Volume(t *testing.T) {
	cfg := symbolic.DefaultConfig().WithEstimator(symbolic.VolumeEstimator{})
	_, report := CheckValid(t, "unsafe", cfg)
	//
	assert.Equal(t, 1, report.Count(verify.UNSAFE))
	assert.InDelta(t, 0.5, report.Violation, 1e-12)
	assert.False(t, report.Verified())
}

func Test_Valid_Truncated(t *testing.T) {
	cfg := symbolic.DefaultConfig().WithMaxIterations(5)
	_, report := CheckValid(t, "counter", cfg)
	// Loop abandoned before x reached 10
	assert.Empty(t, report.Partitions)
	assert.Equal(t, 1.0, report.Truncated)
	assert.False(t, report.Verified())
}

func Test_Valid_Partitioned(t *testing.T) {
	program := CompileValid(t, "branch", DefaultOptions())
	//
	result, err := program.Execute(symbolic.DefaultConfig(), 4, nil)
	require.NoError(t, err)
	assert.True(t, result.Complete())
	// Only the partition starting on the boundary straddles the condition, and
	// is split into the boundary point and the remainder.
	assert.Equal(t, 5, result.States.Tables())
	//
	for _, table := range result.States.Flatten() {
		assert.Equal(t, 0.25, table.Probability())
	}
}

func Test_Valid_PointCloud(t *testing.T) {
	program := CompileValid(t, "unsafe", DefaultOptions())
	points := [][]float64{{0.5, 0}, {1.5, 0}, {1.75, 0}, {1.9, 0}}
	cfg := symbolic.DefaultConfig().WithEstimator(symbolic.PointCloudEstimator{})
	//
	result, err := program.Execute(cfg, 1, points)
	require.NoError(t, err)
	//
	tables := result.States.Flatten()
	require.Len(t, tables, 2)
	assert.InDelta(t, 0.25, tables[0].Probability(), 1e-12)
	assert.InDelta(t, 0.75, tables[1].Probability(), 1e-12)
}

func Test_Program_SampleInputs(t *testing.T) {
	program := CompileValid(t, "thermostat", DefaultOptions())
	next := 0.0
	// Deterministic source of "randomness"
	random := func() float64 {
		next += 0.25
		return next - 0.25
	}
	//
	points := program.SampleInputs(2, random)
	require.Len(t, points, 2)
	assert.Equal(t, []float64{60, 0, 0}, points[0])
	assert.Equal(t, []float64{63, 0, 0}, points[1])
}

func Test_Program_Variable(t *testing.T) {
	program := CompileValid(t, "thermostat", DefaultOptions())
	//
	index, err := program.Variable("i")
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	//
	_, err = program.Variable("y")
	assert.Error(t, err)
}

// ===================================================================
// Invalid Programs
// ===================================================================

func Test_Invalid_UnknownVariable(t *testing.T) {
	CheckInvalid(t, "unknown_variable")
}

func Test_Invalid_BadArity(t *testing.T) {
	CheckInvalid(t, "bad_arity")
}

func Test_Invalid_MissingInput(t *testing.T) {
	CheckInvalid(t, "missing_input")
}

func Test_Invalid_LateInput(t *testing.T) {
	CheckInvalid(t, "late_input")
}

func Test_Invalid_BadRange(t *testing.T) {
	CheckInvalid(t, "bad_range")
}

func Test_Invalid_InfiniteRange(t *testing.T) {
	CheckInvalid(t, "infinite_range")
}

func Test_Invalid_LinearShape(t *testing.T) {
	CheckInvalid(t, "linear_shape")
}

func Test_Invalid_TrajectoryMismatch(t *testing.T) {
	CheckInvalid(t, "trajectory_mismatch")
}

func Test_Invalid_WhileNegated(t *testing.T) {
	CheckInvalid(t, "while_negated")
}

func Test_Invalid_Unbalanced(t *testing.T) {
	CheckInvalid(t, "unbalanced")
}

func Test_Invalid_UnknownStatement(t *testing.T) {
	CheckInvalid(t, "unknown_statement")
}

func Test_Invalid_Nested(t *testing.T) {
	CheckInvalid(t, "nested")
}

func Test_Invalid_Empty(t *testing.T) {
	_, errs := Compile(source.NewSourceFile("empty.lisp", []byte("; nothing")), DefaultOptions())
	require.Len(t, errs, 1)
	assert.Equal(t, "missing input declaration", errs[0].Message())
}

func Test_Invalid_Expressions(t *testing.T) {
	opts := Options{"polyhedra", 1}
	_, errs := Compile(source.NewSourceFile("test.lisp", []byte("(input (x 0 1))")), opts)
	require.Len(t, errs, 1)
	assert.Equal(t, "unknown expression domain polyhedra", errs[0].Message())
}

// ===================================================================
// Test Helpers
// ===================================================================

// CompileValid compiles a test program which is expected to be valid.
func CompileValid(t *testing.T, test string, opts Options) *Program {
	t.Helper()
	//
	filename := fmt.Sprintf("%s/valid/%s.lisp", TestDir, test)
	// Read program file
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	program, errs := Compile(srcfile, opts)
	for _, e := range errs {
		t.Errorf("%s", e.Error())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return program
}

// CheckValid compiles and executes a valid test program, and then checks the
// outcome against its safe region.
func CheckValid(t *testing.T, test string, cfg symbolic.Config) (*Program, verify.Report) {
	t.Helper()
	//
	program := CompileValid(t, test, DefaultOptions())
	//
	result, err := program.Execute(cfg, 1, nil)
	require.NoError(t, err)
	//
	checker, err := verify.NewChecker(program.Region(), program.Tracked(), 0)
	require.NoError(t, err)
	//
	report, err := checker.Check(result)
	require.NoError(t, err)
	//
	return program, report
}

// CheckInvalid compiles an invalid test program, and checks the errors
// reported match those embedded at the start of the file.
func CheckInvalid(t *testing.T, test string) {
	filename := fmt.Sprintf("%s/invalid/%s.lisp", TestDir, test)
	// Enable testing each program in parallel
	t.Parallel()
	// Read program file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	// Package up as source file
	srcfile := source.NewSourceFile(filename, bytes)
	// Attempt to compile the program
	_, errs := Compile(srcfile, DefaultOptions())
	// Extract expected errors for comparison
	expectedErrs, lineOffsets := extractExpectedErrors(bytes)
	// Check program did not compile!
	if len(errs) == 0 {
		t.Fatalf("Error %s should not have compiled\n", filename)
	}
	//
	failed := false
	// Construct initial message
	msg := fmt.Sprintf("Error %s\n", filename)
	//
	for i := 0; i < max(len(errs), len(expectedErrs)); i++ {
		if i < len(errs) && i < len(expectedErrs) {
			expected := expectedErrs[i]
			actual := errs[i]
			// Check whether message OK
			if expected.msg == actual.Message() && expected.span == actual.Span() {
				continue
			}
		}
		//
		failed = true
		//
		if i < len(errs) {
			actual := errs[i]
			msg = fmt.Sprintf("%s unexpected error %s:%s\n", msg, spanToString(actual.Span(), lineOffsets), actual.Message())
		}
		//
		if i < len(expectedErrs) {
			expected := expectedErrs[i]
			msg = fmt.Sprintf("%s   expected error %s:%s\n", msg, spanToString(expected.span, lineOffsets), expected.msg)
		}
	}
	//
	if failed {
		t.Fatal(msg)
	}
}

// expectedError captures key information about an expected error
type expectedError struct {
	// The range of characters in the original file to which this error is
	// associated.
	span source.Span
	// The error message reported.
	msg string
}

func extractExpectedErrors(bytes []byte) ([]expectedError, []int) {
	// Calculate the character offset of each line
	offsets, lines := splitFileLines(bytes)
	// Now construct errors
	errors := make([]expectedError, 0)
	// scan file line-by-line until no more errors found
	for _, line := range lines {
		error := extractSyntaxError(line, offsets)
		// Keep going until no more errors
		if error == nil {
			return errors, offsets
		}
		//
		errors = append(errors, *error)
	}
	//
	return errors, offsets
}

// Split out a given file into the line contents and the line offsets.  Both
// are measured in runes, so they align with spans.
func splitFileLines(bytes []byte) ([]int, []string) {
	contents := []rune(string(bytes))
	offsets := make([]int, 1)
	lines := make([]string, 0)
	start := 0
	//
	for i := 0; i <= len(contents); i++ {
		if i == len(contents) || contents[i] == '\n' {
			offsets = append(offsets, i+1)
			lines = append(lines, string(contents[start:i]))
			//
			start = i + 1
		}
	}
	//
	return offsets, lines
}

// Extract the syntax error from a given line in the source file, or return nil
// if it does not describe an error.
func extractSyntaxError(line string, offsets []int) *expectedError {
	if strings.HasPrefix(line, ";;error") {
		splits := strings.Split(line, ":")
		span := determineFileSpan(splits[1], splits[2], offsets)
		msg := strings.Join(splits[3:], ":")
		//
		return &expectedError{span, msg}
	}
	//
	return nil
}

// Determine the span that the given line string and span string corresponds
// to.  Columns are numbered from 1, and the end column is exclusive.
func determineFileSpan(lineStr string, spanStr string, offsets []int) source.Span {
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		panic(err)
	}
	//
	splits := strings.Split(spanStr, "-")
	//
	start, err := strconv.Atoi(splits[0])
	if err != nil {
		panic(err)
	} else if start == 0 {
		panic("columns numbered from 1")
	}
	//
	end, err := strconv.Atoi(splits[1])
	if err != nil {
		panic(err)
	}
	// Add line offset
	start += offsets[line-1]
	end += offsets[line-1]
	// Sanity check
	if start >= offsets[line] || end > offsets[line] {
		panic("span overflows to following line")
	}
	//
	return source.NewSpan(start-1, end-1)
}

// Convert a span into a human readable string.
func spanToString(span source.Span, offsets []int) string {
	line := 0
	last := 0
	start := span.Start()
	end := span.End()
	//
	for i, o := range offsets {
		if o > start {
			break
		}
		//
		last = o
		line = i + 1
	}
	//
	return fmt.Sprintf("%d:%d-%d", line, 1+start-last, 1+end-last)
}
