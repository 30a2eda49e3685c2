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
	"math"
	"strconv"
	"strings"
)

const (
	// Header is the default results table header.
	Header = "type, cores, size, time (s)"
	// SpeedColumn is appended to the header when throughput is derived.
	SpeedColumn = "speed (pixels/s)"

	// FieldSeparator joins header and row fields.
	FieldSeparator = ", "
)

// Row is one aggregated run.
type Row struct {
	Kind  string
	Cores int
	Size  int
	// Time is the mean of trial times in seconds.
	Time float64
	// Speed is valid only when HasSpeed is set.
	Speed    float64
	HasSpeed bool
}

// Fields returns the row as table fields.
func (r Row) Fields() []string {
	fields := []string{
		r.Kind,
		strconv.Itoa(r.Cores),
		strconv.Itoa(r.Size),
		FormatFloat(r.Time),
	}
	if r.HasSpeed {
		fields = append(fields, FormatFloat(r.Speed))
	}
	return fields
}

// String returns the row as a table line without newline.
func (r Row) String() string {
	return strings.Join(r.Fields(), FieldSeparator)
}

// FormatFloat prints f in shortest round trip form which always carries a
// decimal point or an exponent: 2.0, 0.5, 1e-05, 1.5e+16.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	formatted := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}

// HeaderFields splits a header line into column names.
func HeaderFields(header string) []string {
	fields := strings.Split(header, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
