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

package executor

import (
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	log "github.com/sirupsen/logrus"
)

func readAll(open func() (string, error)) string {
	output, err := open()
	So(err, ShouldBeNil)
	return output
}

func stdoutOf(handle TaskHandle) func() (string, error) {
	return func() (string, error) {
		file, err := handle.StdoutFile()
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		return string(data), err
	}
}

// testExecutor tests the execution of process for given executor.
// This test can be used inside any Executor implementation test.
func testExecutor(t *testing.T, executor Executor) {
	log.SetLevel(log.DebugLevel)

	Convey("When blocking infinitively sleep command is executed", func() {
		task, err := executor.Execute("sleep inf")
		So(err, ShouldBeNil)

		defer task.EraseOutput()
		defer task.Clean()
		defer task.Stop()

		Convey("Task should be still running", func() {
			So(task.Status(), ShouldEqual, RUNNING)
			_, err := task.ExitCode()
			So(err, ShouldNotBeNil)
		})

		Convey("When we wait for task termination with the 1ms timeout", func() {
			isTaskTerminated := task.Wait(1 * time.Millisecond)

			Convey("The timeout appears and the task should not be terminated", func() {
				So(isTaskTerminated, ShouldBeFalse)
				So(task.Status(), ShouldEqual, RUNNING)
			})
		})

		Convey("When we stop the task", func() {
			So(task.Stop(), ShouldBeNil)

			Convey("The task should be terminated and the exit code should point SIGTERM", func() {
				So(task.Status(), ShouldEqual, TERMINATED)
				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, -15)
			})

			Convey("Stopping it again should be a no-op", func() {
				So(task.Stop(), ShouldBeNil)
			})
		})
	})

	Convey("When command `echo output` is executed and we wait for it", func() {
		task, err := executor.Execute("echo output")
		So(err, ShouldBeNil)
		defer task.EraseOutput()
		defer task.Clean()

		So(task.Wait(0), ShouldBeTrue)

		Convey("The task should be terminated with exit code 0 and stdout 'output'", func() {
			So(task.Status(), ShouldEqual, TERMINATED)
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(readAll(stdoutOf(task)), ShouldEqual, "output\n")
		})
	})

	Convey("When command which does not exists is executed", func() {
		task, err := executor.Execute("commandThatDoesNotExists")
		So(err, ShouldBeNil)
		defer task.EraseOutput()
		defer task.Clean()

		So(task.Wait(0), ShouldBeTrue)

		Convey("The exit code should be 127", func() {
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 127)
		})
	})

	Convey("When we execute two tasks in the same time", func() {
		task1, err1 := executor.Execute("echo output1")
		task2, err2 := executor.Execute("echo output2")
		So(err1, ShouldBeNil)
		So(err2, ShouldBeNil)
		defer task1.EraseOutput()
		defer task2.EraseOutput()

		task1.Wait(0)
		task2.Wait(0)

		Convey("The commands stdouts need to match 'output1' & 'output2'", func() {
			So(readAll(stdoutOf(task1)), ShouldEqual, "output1\n")
			So(readAll(stdoutOf(task2)), ShouldEqual, "output2\n")
		})
	})

	Convey("When empty command is executed, an error is returned", func() {
		_, err := executor.Execute("")
		So(err, ShouldNotBeNil)
	})
}
