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
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version of probai, set at link time with -ldflags "-X".
var Version string

var rootCmd = &cobra.Command{
	Use:   "probai",
	Short: "An abstract interpreter for probabilistic programs.",
	Long: `An abstract interpreter for probabilistic programs.
	Programs are executed symbolically over boxes of intervals, splitting
	on conditionals, and the resulting partitions are checked against a
	safe region.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Printf("probai %s\n", versionString(Version))
		} else {
			fmt.Println(cmd.UsageString())
		}
	},
}

// Determine the reported version, falling back to the module version recorded
// in the binary.
func versionString(version string) string {
	if version != "" {
		return version
	} else if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	//
	return "(unknown version)"
}

// Execute runs the probai command line, exiting with status 1 when a command
// fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of probai")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log each split and iteration")
}
