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
package termio

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func Test_Table_01(t *testing.T) {
	table := NewTablePrinter(2, 2)
	table.SetRow(0, "x", "[-1, 1]")
	table.SetRow(1, "y", "[0, 10]")
	//
	assert.Equal(t, " x | [-1, 1] |\n y | [0, 10] |\n", render(table))
	assert.Equal(t, uint(14), table.TotalWidth())
}

func Test_Table_02(t *testing.T) {
	table := NewTablePrinter(1, 1)
	table.Set(0, 0, "0.123456789")
	table.SetMaxWidth(0, 6)
	//
	assert.Equal(t, " 0.12.. |\n", render(table))
}

func Test_Table_03(t *testing.T) {
	table := NewTablePrinter(1, 1)
	table.Set(0, 0, "SAFE")
	table.SetEscape(0, 0, color.New(color.FgGreen))
	table.AnsiEscapes(false)
	//
	assert.Equal(t, " SAFE |\n", render(table))
	assert.Equal(t, "SAFE", table.Get(0, 0))
}

func render(table *TablePrinter) string {
	var builder strings.Builder
	//
	table.Print(&builder)
	//
	return builder.String()
}
