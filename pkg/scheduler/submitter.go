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

package scheduler

// Status is the outcome of handing a descriptor to the scheduler.
type Status string

const (
	// StatusSubmitted means the scheduler accepted the job.
	StatusSubmitted Status = "submitted"
	// StatusRejected means the submit command ran and refused the descriptor.
	StatusRejected Status = "rejected"
	// StatusUnavailable means the submit command could not be run at all.
	StatusUnavailable Status = "scheduler-unavailable"
	// StatusDryRun means the descriptor was staged but never submitted.
	StatusDryRun Status = "dry-run"
)

// Submission describes one submit call.
type Submission struct {
	// Path of the staged descriptor.
	Path   string
	Status Status
	// JobID is set only when the scheduler reported one.
	JobID string
	// Output holds the tail of the submit command output.
	Output string
}

// Submitter hands staged descriptors to a batch scheduler.
// Submit does not wait for the job itself.
type Submitter interface {
	Submit(descriptorPath string) (Submission, error)
}
