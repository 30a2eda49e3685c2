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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKeyValue(t *testing.T) {
	Convey("While parsing structured result lines", t, func() {
		parser := KeyValue{}

		Convey("Every result line should be averaged as a trial", func() {
			row, err := parser.Parse("mpi.out", []string{
				"starting",
				"@result kind=MPI cores=8 size=1000 time=1.0",
				"some noise",
				"@result kind=MPI cores=8 size=1000 time=2.0",
				"@result   kind=MPI  size=1000 cores=8 time=3.0 iterations=100",
			})
			So(err, ShouldBeNil)
			So(row.String(), ShouldEqual, "MPI, 8, 1000, 2.0")
		})

		Convey("Throughput can be derived", func() {
			parser.Speed = true
			row, err := parser.Parse("seq.out", []string{"@result kind=Sequential cores=1 size=10 time=0.5"})
			So(err, ShouldBeNil)
			So(row.String(), ShouldEqual, "Sequential, 1, 10, 0.5, 200.0")
		})

		Convey("Custom marker should be honoured", func() {
			parser.Marker = "RESULT"
			row, err := parser.Parse("seq.out", []string{"RESULT kind=seq cores=1 size=10 time=4"})
			So(err, ShouldBeNil)
			So(row.Time, ShouldEqual, 4.0)
		})

		Convey("Malformed lines should be reported as mismatch", func() {
			for _, line := range []string{
				"@result kind=MPI cores=8 size=1000",
				"@result kind=MPI cores=eight size=1000 time=1",
				"@result kind=MPI cores=8 size=1000 time=fast",
				"@result kind=MPI cores=8 size=1000 time=1 broken",
			} {
				_, err := parser.Parse("broken.out", []string{line})
				So(IsMismatch(err), ShouldBeTrue)
			}
		})

		Convey("Log without result lines should be reported as mismatch", func() {
			_, err := parser.Parse("empty.out", []string{"nothing here"})
			So(IsMismatch(err), ShouldBeTrue)
		})

		Convey("Trials describing different runs should be rejected", func() {
			_, err := parser.Parse("mixed.out", []string{
				"@result kind=MPI cores=8 size=1000 time=1.0",
				"@result kind=MPI cores=4 size=1000 time=1.0",
			})
			So(IsMismatch(err), ShouldBeTrue)
			mismatch := err.(*MismatchError)
			So(mismatch.Line, ShouldEqual, 1)
			So(err.Error(), ShouldContainSubstring, "describes kind=MPI cores=4 size=1000, line 1 describes kind=MPI cores=8 size=1000")
		})

		Convey("Zero time should not derive a speed", func() {
			parser.Speed = true
			_, err := parser.Parse("fast.out", []string{"@result kind=MPI cores=8 size=10 time=0"})
			So(IsMismatch(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "cannot derive speed from time 0.0")
		})
	})
}
