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
	"os"
	"path/filepath"
	"strings"

	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/hpc-bench/benchsweep/pkg/utils/err_collection"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Policy decides what happens to a log which does not fit its layout.
type Policy int

const (
	// Abort stops the aggregation and leaves the table untouched.
	Abort Policy = iota
	// Skip leaves the log out of the table and carries on.
	Skip
)

func (p Policy) String() string {
	if p == Skip {
		return "skip"
	}
	return "abort"
}

// Aggregator turns a directory of logs into a results table.
type Aggregator struct {
	Parser    Parser
	LogsDir   string
	TablePath string
	Header    string
	Policy    Policy
}

// Summary describes one aggregation pass.
type Summary struct {
	// Rows are in directory order, one per parsed log.
	Rows []results.Row
	// Files is the number of logs scanned.
	Files int
	// Skipped holds errors of logs left out under Skip.
	Skipped error
}

// Collect parses every log of the directory without writing the table.
func (a *Aggregator) Collect() (Summary, error) {
	summary := Summary{}
	if a.Parser == nil {
		return summary, errors.New("no log parser configured")
	}

	entries, err := os.ReadDir(a.LogsDir)
	if err != nil {
		return summary, errors.Wrapf(err, "cannot list logs in %q", a.LogsDir)
	}

	skipped := &errcollection.ErrorCollection{}
	for _, entry := range entries {
		path := filepath.Join(a.LogsDir, entry.Name())
		if entry.IsDir() || a.isTable(path) {
			continue
		}
		summary.Files++

		content, err := os.ReadFile(path)
		if err != nil {
			return summary, errors.Wrapf(err, "cannot read log %q", path)
		}

		row, err := a.Parser.Parse(entry.Name(), SplitLines(string(content)))
		if err != nil {
			if a.Policy == Skip {
				log.Warnf("Skipping log %q: %v", path, err)
				skipped.Add(err)
				continue
			}
			return summary, errors.Wrapf(err, "cannot aggregate %q", a.LogsDir)
		}
		log.Debugf("Parsed %q: %s", path, row)
		summary.Rows = append(summary.Rows, row)
	}

	summary.Skipped = skipped.GetErrIfAny()
	return summary, nil
}

// Run parses every log and rewrites the table from scratch.
// On error the previous table is left untouched.
func (a *Aggregator) Run() (Summary, error) {
	summary, err := a.Collect()
	if err != nil {
		return summary, err
	}

	header := a.Header
	if header == "" {
		header = results.Header
	}
	if err := results.WriteFile(a.TablePath, header, summary.Rows); err != nil {
		return summary, err
	}

	log.Infof("Wrote %d rows from %d logs to %q", len(summary.Rows), summary.Files, a.TablePath)
	return summary, nil
}

// isTable reports whether path is the results table or one of its temporary files.
func (a *Aggregator) isTable(path string) bool {
	if a.TablePath == "" {
		return false
	}
	if sameFile(path, a.TablePath) {
		return true
	}

	if filepath.Dir(filepath.Clean(path)) != filepath.Dir(filepath.Clean(a.TablePath)) {
		return false
	}
	prefix := strings.TrimSuffix(results.TempPattern(a.TablePath), "*")
	return strings.HasPrefix(filepath.Base(path), prefix)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
