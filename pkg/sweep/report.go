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

package sweep

import (
	"fmt"
	"strings"

	"github.com/hpc-bench/benchsweep/pkg/scheduler"
)

// Entry is the record of one submitted combination.
type Entry struct {
	Family     string
	Variant    string
	JobName    string
	Parameters string
	scheduler.Submission
}

// Report lists submissions in the order they were made.
type Report struct {
	Entries []Entry
}

// Add appends an entry.
func (r *Report) Add(entry Entry) {
	r.Entries = append(r.Entries, entry)
}

// Count returns the number of entries with given status.
func (r *Report) Count(status scheduler.Status) (count int) {
	for _, entry := range r.Entries {
		if entry.Status == status {
			count++
		}
	}
	return count
}

var reportedStatuses = []scheduler.Status{
	scheduler.StatusSubmitted,
	scheduler.StatusRejected,
	scheduler.StatusUnavailable,
	scheduler.StatusDryRun,
}

// Summary returns a one line digest, e.g. "12 jobs: 10 submitted, 2 rejected".
func (r *Report) Summary() string {
	var parts []string
	for _, status := range reportedStatuses {
		if count := r.Count(status); count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, status))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d jobs", len(r.Entries))
	}
	return fmt.Sprintf("%d jobs: %s", len(r.Entries), strings.Join(parts, ", "))
}

// Failed reports whether any submission was not accepted.
func (r *Report) Failed() bool {
	return r.Count(scheduler.StatusRejected)+r.Count(scheduler.StatusUnavailable) > 0
}
