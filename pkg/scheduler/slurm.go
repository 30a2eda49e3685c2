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

import (
	"regexp"
	"strings"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/executor"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultSubmitCommand is the Slurm submit binary.
	DefaultSubmitCommand = "sbatch"
	// DefaultJobIDPattern matches the sbatch acknowledgement line.
	DefaultJobIDPattern = `Submitted batch job (\d+)`

	// DefaultSubmitTimeout bounds a single submit command.
	DefaultSubmitTimeout = 1 * time.Minute

	commandNotFound = 127
	outputTailLines = 5
)

// BatchSubmitter runs a submit command (sbatch by default) through an executor.
type BatchSubmitter struct {
	executor      executor.Executor
	command       string
	jobIDPattern  *regexp.Regexp
	submitTimeout time.Duration
}

// Option configures a BatchSubmitter.
type Option func(*BatchSubmitter)

// SubmitTimeout bounds every submit command. Zero means no timeout.
func SubmitTimeout(timeout time.Duration) Option {
	return func(s *BatchSubmitter) {
		s.submitTimeout = timeout
	}
}

// NewBatchSubmitter returns a submitter running `command <descriptor>` on the given executor.
// The first capture group of jobIDPattern is taken as the job id.
func NewBatchSubmitter(exec executor.Executor, command string, jobIDPattern string, options ...Option) (*BatchSubmitter, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("submit command is empty")
	}
	if jobIDPattern == "" {
		jobIDPattern = DefaultJobIDPattern
	}
	pattern, err := regexp.Compile(jobIDPattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid job id pattern %q", jobIDPattern)
	}

	submitter := &BatchSubmitter{
		executor:      exec,
		command:       command,
		jobIDPattern:  pattern,
		submitTimeout: DefaultSubmitTimeout,
	}
	for _, option := range options {
		option(submitter)
	}
	return submitter, nil
}

// Submit runs the submit command once and classifies its outcome.
// A non-nil error is returned only when the outcome is unknown.
func (s *BatchSubmitter) Submit(descriptorPath string) (Submission, error) {
	submission := Submission{Path: descriptorPath}
	command := s.command + " " + shellQuote(descriptorPath)

	handle, err := executor.RunAndWait(s.executor, command, s.submitTimeout)
	if handle == nil {
		log.Errorf("Cannot run %q on %q: %v", command, s.executor.Name(), err)
		submission.Status = StatusUnavailable
		submission.Output = err.Error()
		return submission, nil
	}
	defer handle.EraseOutput()
	defer handle.Clean()

	if err != nil {
		submission.Status = StatusUnavailable
		return submission, err
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return submission, errors.Wrapf(err, "cannot get exit code of %q", command)
	}

	stdout := executor.OutputTail(handle.StdoutFile, outputTailLines)
	stderr := executor.OutputTail(handle.StderrFile, outputTailLines)
	submission.Output = strings.TrimSpace(stdout + stderr)

	switch {
	case exitCode == 0:
		submission.Status = StatusSubmitted
		if match := s.jobIDPattern.FindStringSubmatch(stdout); len(match) > 1 {
			submission.JobID = match[1]
		}
		log.Debugf("Submitted %q as job %q", descriptorPath, submission.JobID)
	case exitCode == commandNotFound:
		submission.Status = StatusUnavailable
		executor.LogUnsuccessfulExecution(command, s.executor.Name(), handle)
	default:
		submission.Status = StatusRejected
		executor.LogUnsuccessfulExecution(command, s.executor.Name(), handle)
	}

	return submission, nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// DryRun stages descriptors without submitting them.
type DryRun struct{}

// Submit only reports the staged descriptor.
func (DryRun) Submit(descriptorPath string) (Submission, error) {
	log.Infof("Dry run: %q staged and not submitted", descriptorPath)
	return Submission{Path: descriptorPath, Status: StatusDryRun}, nil
}
