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
	"math"
	"strings"

	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Parser turns the lines of one log file into a result row.
type Parser interface {
	Parse(name string, lines []string) (results.Row, error)
}

// MismatchError is returned when an expected line is missing or does not
// match its pattern.
type MismatchError struct {
	File string
	// Line is a zero based line index.
	Line    int
	Pattern string
	Text    string
	Missing bool
	// Reason replaces the pattern in the message when the line matched but its value is unusable.
	Reason string
}

func (e *MismatchError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: line %d is missing, expected %q", e.File, e.Line+1, e.Pattern)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: line %d %q %s", e.File, e.Line+1, e.Text, e.Reason)
	}
	return fmt.Sprintf("%s: line %d %q does not match %q", e.File, e.Line+1, e.Text, e.Pattern)
}

// IsMismatch reports whether err was caused by a log layout mismatch.
func IsMismatch(err error) bool {
	var mismatch *MismatchError
	return errors.As(err, &mismatch)
}

func matchNotFound(match []string) bool {
	return match == nil || len(match) < 2 || len(match[1]) == 0
}

// SplitLines splits file content into lines without line terminators.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}

// Average returns the arithmetic mean of trial times.
func Average(times []float64) (float64, error) {
	if len(times) == 0 {
		return 0, errors.New("no trial times to average")
	}
	mean, err := stats.Mean(stats.Float64Data(times))
	if err != nil {
		return 0, errors.Wrap(err, "cannot average trial times")
	}
	return mean, nil
}

// Speed derives pixel throughput: size squared per second.
// Time must be positive.
func Speed(size int, time float64) (float64, error) {
	if !(time > 0) || math.IsInf(time, 1) {
		return 0, errors.Errorf("cannot derive speed from time %s", results.FormatFloat(time))
	}
	return float64(size*size) / time, nil
}
