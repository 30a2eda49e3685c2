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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/executor"
	"github.com/hpc-bench/benchsweep/pkg/executor/mocks"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func stageTestDescriptor() string {
	scratch, err := os.MkdirTemp("", "scratch")
	So(err, ShouldBeNil)
	path, err := Stage(scratch, Descriptor{JobName: "job", Commands: []string{"true"}})
	So(err, ShouldBeNil)
	return path
}

func TestBatchSubmitter(t *testing.T) {
	Convey("While submitting descriptors with a batch submitter", t, func() {
		path := stageTestDescriptor()
		defer os.RemoveAll(filepath.Dir(path))

		Convey("Accepted job should be reported with its id", func() {
			submitter, err := NewBatchSubmitter(executor.NewLocal(), "echo Submitted batch job 4242", "")
			So(err, ShouldBeNil)

			submission, err := submitter.Submit(path)
			So(err, ShouldBeNil)
			So(submission.Status, ShouldEqual, StatusSubmitted)
			So(submission.JobID, ShouldEqual, "4242")
			So(submission.Path, ShouldEqual, path)
		})

		Convey("Refused job should be reported as rejected", func() {
			submitter, err := NewBatchSubmitter(executor.NewLocal(), "sh -c 'echo invalid partition >&2; exit 1'", "")
			So(err, ShouldBeNil)

			submission, err := submitter.Submit(path)
			So(err, ShouldBeNil)
			So(submission.Status, ShouldEqual, StatusRejected)
			So(submission.JobID, ShouldBeEmpty)
			So(submission.Output, ShouldContainSubstring, "invalid partition")
		})

		Convey("Missing submit binary should be reported as unavailable", func() {
			submitter, err := NewBatchSubmitter(executor.NewLocal(), "sbatchThatDoesNotExist", "")
			So(err, ShouldBeNil)

			submission, err := submitter.Submit(path)
			So(err, ShouldBeNil)
			So(submission.Status, ShouldEqual, StatusUnavailable)
		})

		Convey("Hanging submit command should be stopped after the submit timeout", func() {
			submitter, err := NewBatchSubmitter(executor.NewLocal(), "sh -c 'sleep 10'", "", SubmitTimeout(50*time.Millisecond))
			So(err, ShouldBeNil)

			started := time.Now()
			submission, err := submitter.Submit(path)
			So(err, ShouldNotBeNil)
			So(submission.Status, ShouldEqual, StatusUnavailable)
			So(time.Since(started), ShouldBeLessThan, 5*time.Second)
		})

		Convey("Executor failure should be reported as unavailable", func() {
			mockedExecutor := new(mocks.Executor)
			mockedExecutor.On("Execute", "sbatch '"+path+"'").Return(nil, errors.New("connection refused")).Once()
			mockedExecutor.On("Name").Return("Remote")

			submitter, err := NewBatchSubmitter(mockedExecutor, DefaultSubmitCommand, DefaultJobIDPattern)
			So(err, ShouldBeNil)

			submission, err := submitter.Submit(path)
			So(err, ShouldBeNil)
			So(submission.Status, ShouldEqual, StatusUnavailable)
			So(submission.Output, ShouldContainSubstring, "connection refused")
			mockedExecutor.AssertExpectations(t)
		})

		Convey("Invalid configuration should be rejected", func() {
			_, err := NewBatchSubmitter(executor.NewLocal(), " ", "")
			So(err, ShouldNotBeNil)
			_, err = NewBatchSubmitter(executor.NewLocal(), "sbatch", "(")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Dry run should never submit", t, func() {
		submission, err := DryRun{}.Submit("/scratch/job.sh")
		So(err, ShouldBeNil)
		So(submission.Status, ShouldEqual, StatusDryRun)
		So(submission.Path, ShouldEqual, "/scratch/job.sh")
	})
}
