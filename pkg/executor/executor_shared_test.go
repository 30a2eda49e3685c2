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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRunAndWait(t *testing.T) {
	Convey("While running commands synchronously", t, func() {
		local := NewLocal()

		Convey("Successful command should pass exit code check", func() {
			handle, err := RunAndWait(local, "true", 10*time.Second)
			So(err, ShouldBeNil)
			defer handle.EraseOutput()
			So(CheckExitCode("true", local.Name(), handle), ShouldBeNil)
		})

		Convey("Failing command should not pass exit code check", func() {
			handle, err := RunAndWait(local, "echo broken >&2; exit 3", 10*time.Second)
			So(err, ShouldBeNil)
			defer handle.EraseOutput()
			So(CheckExitCode("exit 3", local.Name(), handle), ShouldNotBeNil)
			So(OutputTail(handle.StderrFile, 3), ShouldEqual, "broken\n")
		})

		Convey("Command exceeding timeout should be stopped", func() {
			handle, err := RunAndWait(local, "sleep 10", 10*time.Millisecond)
			So(err, ShouldNotBeNil)
			So(handle.Status(), ShouldEqual, TERMINATED)
			handle.EraseOutput()
		})
	})
}
