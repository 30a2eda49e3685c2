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

package logparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/pkg/errors"
)

// DefaultMarker starts every structured result line.
const DefaultMarker = "@result"

var requiredKeys = []string{"kind", "cores", "size", "time"}

// KeyValue parses self describing result lines such as
//
//	@result kind=MPI cores=8 size=1000 time=0.25
//
// Every result line is one trial. Lines without the marker are ignored.
type KeyValue struct {
	// Marker defaults to DefaultMarker.
	Marker string
	// Speed derives throughput from size and time.
	Speed bool
}

type keyValueRecord struct {
	kind  string
	cores int
	size  int
}

func (r keyValueRecord) String() string {
	return fmt.Sprintf("kind=%s cores=%d size=%d", r.kind, r.cores, r.size)
}

// Parse implements Parser.
func (kv KeyValue) Parse(name string, lines []string) (results.Row, error) {
	marker := kv.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	pattern := marker + " " + strings.Join(requiredKeys, "=.. ") + "=.."

	var (
		first     *keyValueRecord
		firstLine int
		times     []float64
	)
	for index, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != marker {
			continue
		}

		values := map[string]string{}
		for _, field := range fields[1:] {
			key, value, ok := strings.Cut(field, "=")
			if !ok || key == "" {
				return results.Row{}, &MismatchError{File: name, Line: index, Pattern: pattern, Text: line}
			}
			values[key] = value
		}
		for _, key := range requiredKeys {
			if values[key] == "" {
				return results.Row{}, &MismatchError{File: name, Line: index, Pattern: pattern, Text: line}
			}
		}

		cores, coresErr := strconv.Atoi(values["cores"])
		size, sizeErr := strconv.Atoi(values["size"])
		time, timeErr := strconv.ParseFloat(values["time"], 64)
		if coresErr != nil || sizeErr != nil || timeErr != nil {
			return results.Row{}, &MismatchError{File: name, Line: index, Pattern: pattern, Text: line}
		}

		record := keyValueRecord{kind: values["kind"], cores: cores, size: size}
		if first == nil {
			first = &record
			firstLine = index
		} else if record != *first {
			return results.Row{}, &MismatchError{
				File:    name,
				Line:    index,
				Pattern: pattern,
				Text:    line,
				Reason:  fmt.Sprintf("describes %s, line %d describes %s", record, firstLine+1, *first),
			}
		}
		times = append(times, time)
	}

	if first == nil {
		return results.Row{}, &MismatchError{File: name, Line: len(lines), Pattern: pattern, Missing: true}
	}

	mean, err := Average(times)
	if err != nil {
		return results.Row{}, errors.Wrap(err, name)
	}

	row := results.Row{Kind: first.kind, Cores: first.cores, Size: first.size, Time: mean}
	if kv.Speed {
		if row.Speed, err = Speed(first.size, mean); err != nil {
			return results.Row{}, &MismatchError{File: name, Line: firstLine, Pattern: pattern, Text: lines[firstLine], Reason: err.Error()}
		}
		row.HasSpeed = true
	}
	return row, nil
}
