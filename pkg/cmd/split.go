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
	"os"
	"strconv"

	"github.com/consensys/go-probai/pkg/domain"
	"github.com/spf13/cobra"
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split [flags] lo hi n",
	Short: "Split an interval into equal partitions.",
	Long: `Split an interval into n equal partitions.
	This shows the partitions used when the first input of a program is
	divided on entry.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 3 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		parts, err := splitInterval(args[0], args[1], args[2], getFloat(cmd, "epsilon"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		for _, p := range parts {
			fmt.Println(p.String())
		}
	},
}

// Parse the bounds of an interval and the number of partitions, and then split
// the interval accordingly.
func splitInterval(lo string, hi string, n string, epsilon float64) ([]domain.Interval, error) {
	left, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lower bound %q", lo)
	}
	//
	right, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid upper bound %q", hi)
	}
	//
	count, err := strconv.ParseUint(n, 10, 32)
	if err != nil || count == 0 {
		return nil, fmt.Errorf("invalid number of partitions %q", n)
	} else if !(left <= right) {
		return nil, fmt.Errorf("upper bound %s below lower bound %s", hi, lo)
	}
	//
	k := domain.DefaultConstants()
	k.Epsilon = epsilon
	//
	return domain.NewInterval(left, right).Split(uint(count), k), nil
}

func init() {
	splitCmd.Flags().Float64("epsilon", domain.DEFAULT_EPSILON, "minimum width of any partition")
	rootCmd.AddCommand(splitCmd)
}
