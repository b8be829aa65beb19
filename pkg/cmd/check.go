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
package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/consensys/go-probai/pkg/config"
	"github.com/consensys/go-probai/pkg/program"
	"github.com/consensys/go-probai/pkg/symbolic"
	"github.com/consensys/go-probai/pkg/util"
	"github.com/consensys/go-probai/pkg/util/termio"
	"github.com/consensys/go-probai/pkg/verify"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] program_file",
	Short: "Check a program remains within its safe region.",
	Long: `Check a program remains within its safe region.
	The program is executed symbolically from its declared inputs, and every
	resulting partition is checked against the declared safe region.  The
	program is verified when the probability of leaving the safe region is
	within the given bound.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg := readConfig(cmd)
		strict := getFlag(cmd, "strict")
		stats := util.NewPerfStats()
		// Compile program
		prog := readProgramFile(args[0], cfg.Options())
		// Go!
		result, report, err := analyse(prog, cfg)
		if err != nil {
			fmt.Println(errorStyle.Sprint(err.Error()))
			os.Exit(2)
		}
		//
		stats.Log("Checking program")
		//
		printReport(prog, result, report)
		//
		if !report.Verified() || (strict && !result.Complete()) {
			os.Exit(1)
		}
	},
}

// Construct the configuration from the configuration file (if given), after
// which any flags given explicitly take precedence.
func readConfig(cmd *cobra.Command) config.Config {
	var (
		cfg = config.Default()
		err error
	)
	//
	if filename := getString(cmd, "config"); filename != "" {
		if cfg, err = config.Load(filename); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	//
	flags := cmd.Flags()
	//
	if flags.Changed("estimator") {
		cfg.Estimator = getString(cmd, "estimator")
	}
	//
	if flags.Changed("samples") {
		cfg.Samples = getUint(cmd, "samples")
	}
	//
	if flags.Changed("seed") {
		cfg.Seed = getInt64(cmd, "seed")
	}
	//
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = getUint(cmd, "max-iterations")
	}
	//
	if flags.Changed("bound") {
		cfg.ViolationBound = getFloat(cmd, "bound")
	}
	//
	if flags.Changed("partitions") {
		cfg.Partitions = getUint(cmd, "partitions")
	}
	//
	if flags.Changed("expressions") {
		cfg.Expressions = getString(cmd, "expressions")
	}
	//
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return cfg
}

// Execute a program under a given configuration, and check the outcome
// against its safe region.
func analyse(prog *program.Program, cfg config.Config) (symbolic.Result, verify.Report, error) {
	var points [][]float64
	//
	scfg, err := cfg.Symbolic()
	if err != nil {
		return symbolic.Result{}, verify.Report{}, err
	}
	//
	if cfg.NeedsSamples() {
		seed := uint64(cfg.Seed)
		rng := rand.New(rand.NewPCG(seed, seed))
		points = prog.SampleInputs(cfg.Samples, rng.Float64)
		//
		log.Debugf("drew %d sample points (seed %d)", len(points), cfg.Seed)
	}
	//
	result, err := prog.Execute(scfg, cfg.Partitions, points)
	if err != nil {
		return result, verify.Report{}, err
	}
	//
	checker, err := verify.NewChecker(prog.Region(), prog.Tracked(), cfg.ViolationBound)
	if err != nil {
		return result, verify.Report{}, err
	}
	//
	report, err := checker.Check(result)
	//
	return result, report, err
}

// Print the partitions of a report, followed by a summary and the verdict.
func printReport(prog *program.Program, result symbolic.Result, report verify.Report) {
	table := reportTable(prog, report)
	table.AnsiEscapes(termio.IsTerminal(os.Stdout))
	// Clip columns which would overflow the terminal
	if width, ok := termio.TerminalWidth(os.Stdout); ok && table.TotalWidth() > width {
		table.SetMaxWidths(max(8, width/table.Width()) - 3)
	}
	//
	table.Print(os.Stdout)
	fmt.Println()
	//
	for _, t := range result.Truncations {
		fmt.Printf("%s loop %s\n", warningStyle.Sprint("warning:"), t.String())
	}
	//
	fmt.Printf("%d partitions (%d safe, %d unknown, %d unsafe)\n", len(report.Partitions),
		report.Count(verify.SAFE), report.Count(verify.UNKNOWN), report.Count(verify.UNSAFE))
	fmt.Printf("violation probability <= %g (bound %g)\n", report.Violation, report.Threshold)
	//
	if report.Verified() {
		fmt.Println(successStyle.Sprint("VERIFIED"))
	} else {
		fmt.Println(errorStyle.Sprint("NOT VERIFIED"))
	}
}

// Construct a table with one row per partition, showing its probability,
// branch, final state and verdict.
func reportTable(prog *program.Program, report verify.Report) *termio.TablePrinter {
	var (
		variables = prog.Variables()
		width     = uint(len(variables) + 4)
		height    = uint(len(report.Partitions) + 1)
		table     = termio.NewTablePrinter(width, height)
	)
	// Header
	table.Set(0, 0, "#")
	table.Set(1, 0, "probability")
	table.Set(2, 0, "branch")
	//
	for i, v := range variables {
		table.Set(uint(i+3), 0, v)
	}
	//
	table.Set(width-1, 0, "verdict")
	// Partitions
	for i, p := range report.Partitions {
		row := uint(i + 1)
		state := p.Table.State()
		//
		table.Set(0, row, fmt.Sprintf("%d", i))
		table.Set(1, row, fmt.Sprintf("%g", p.Table.Probability()))
		table.Set(2, row, p.Table.Branch().String())
		//
		for j := range variables {
			table.Set(uint(j+3), row, state.Interval(j).String())
		}
		//
		table.Set(width-1, row, p.Verdict.String())
		table.SetEscape(width-1, row, verdictStyle(p.Verdict))
	}
	//
	return table
}

func verdictStyle(verdict verify.Verdict) *color.Color {
	switch verdict {
	case verify.SAFE:
		return successStyle
	case verify.UNKNOWN:
		return warningStyle
	default:
		return errorStyle
	}
}

func init() {
	checkCmd.Flags().String("config", "", "read settings from a YAML configuration file")
	checkCmd.Flags().String("estimator", "sound", "probability estimator (sound, volume or pointcloud)")
	checkCmd.Flags().Uint("samples", 1000, "number of sample points for the pointcloud estimator")
	checkCmd.Flags().Int64("seed", 0, "seed for drawing sample points")
	checkCmd.Flags().Uint("max-iterations", symbolic.MAX_ITERATIONS, "maximum number of iterations of any loop")
	checkCmd.Flags().Float64("bound", 0, "maximum acceptable probability of leaving the safe region")
	checkCmd.Flags().Uint("partitions", 1, "number of partitions of the first input on entry")
	checkCmd.Flags().String("expressions", program.BOX_EXPRESSIONS, "domain for evaluating expressions (box or zonotope)")
	checkCmd.Flags().Bool("strict", false, "fail when any loop is truncated")
	rootCmd.AddCommand(checkCmd)
}
