// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package results

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Render draws rows as a table on a terminal.
func Render(w io.Writer, header string, rows []Row) {
	output := tablewriter.NewWriter(w)
	output.SetHeader(HeaderFields(header))
	for _, row := range rows {
		output.Append(row.Fields())
	}
	output.Render()
}
