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
	"testing"

	"github.com/hpc-bench/benchsweep/pkg/results"
	. "github.com/smartystreets/goconvey/convey"
)

func writeLog(dir, name string, lines []string) {
	So(os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")), 0644), ShouldBeNil)
}

func TestAggregator(t *testing.T) {
	Convey("While aggregating a directory of logs", t, func() {
		dir, err := os.MkdirTemp("", "outputs")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		tablePath := filepath.Join(dir, "stats.csv")
		aggregator := &Aggregator{
			Parser:    fractalLayout.MustCompile(),
			LogsDir:   dir,
			TablePath: tablePath,
			Header:    results.Header,
		}

		writeLog(dir, "a_seq.out", fractalLog("Sequential", 1000, "", 2, 2, 2, 2, 2))
		writeLog(dir, "b_pthread.out", fractalLog("Pthread", 1000, "Thread Number: 8", 1, 1, 1, 1, 1))
		writeLog(dir, "c_mpi.out", fractalLog("MPI", 1000, "Process Number: 4", 0.5, 0.5, 0.5, 0.5, 0.5))
		So(os.Mkdir(filepath.Join(dir, "archive"), 0755), ShouldBeNil)

		expected := "type, cores, size, time (s)\n" +
			"Sequential, 1, 1000, 2.0\n" +
			"Pthread, 8, 1000, 1.0\n" +
			"MPI, 4, 1000, 0.5\n"

		Convey("One row per log should be written in directory order", func() {
			summary, err := aggregator.Run()
			So(err, ShouldBeNil)
			So(summary.Files, ShouldEqual, 3)
			So(summary.Rows, ShouldHaveLength, 3)
			So(summary.Skipped, ShouldBeNil)

			content, err := os.ReadFile(tablePath)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, expected)

			Convey("And running again should produce byte identical table", func() {
				_, err := aggregator.Run()
				So(err, ShouldBeNil)

				again, err := os.ReadFile(tablePath)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, content)
			})
		})

		Convey("Empty directory should give header only table", func() {
			empty, err := os.MkdirTemp("", "empty")
			So(err, ShouldBeNil)
			defer os.RemoveAll(empty)

			aggregator.LogsDir = empty
			aggregator.TablePath = filepath.Join(empty, "stats.csv")
			aggregator.Header = ""
			summary, err := aggregator.Run()
			So(err, ShouldBeNil)
			So(summary.Files, ShouldEqual, 0)

			content, err := os.ReadFile(aggregator.TablePath)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, results.Header+"\n")
		})

		Convey("When one log does not match its layout", func() {
			broken := fractalLog("Pthread", 1000, "Thread Number: 8", 1, 1, 1, 1, 1)
			broken[6] = "Threads: 8"
			writeLog(dir, "b_broken.out", broken)

			Convey("The whole pass should abort and the previous table should stay", func() {
				So(os.WriteFile(tablePath, []byte("previous\n"), 0644), ShouldBeNil)

				_, err := aggregator.Run()
				So(err, ShouldNotBeNil)
				So(IsMismatch(err), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "b_broken.out")

				content, err := os.ReadFile(tablePath)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "previous\n")

				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 6)
			})

			Convey("No table should be created when none existed", func() {
				_, err := aggregator.Run()
				So(err, ShouldNotBeNil)
				_, err = os.Stat(tablePath)
				So(os.IsNotExist(err), ShouldBeTrue)
			})

			Convey("Skip policy should leave the log out and report it", func() {
				aggregator.Policy = Skip
				summary, err := aggregator.Run()
				So(err, ShouldBeNil)
				So(summary.Files, ShouldEqual, 4)
				So(summary.Rows, ShouldHaveLength, 3)
				So(summary.Skipped, ShouldNotBeNil)
				So(summary.Skipped.Error(), ShouldContainSubstring, "b_broken.out")

				content, err := os.ReadFile(tablePath)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, expected)
			})
		})

		Convey("Leftover temporary table should not be parsed", func() {
			So(os.WriteFile(filepath.Join(dir, ".stats.csv.tmp-123"), []byte("garbage"), 0644), ShouldBeNil)
			_, err := aggregator.Run()
			So(err, ShouldBeNil)
		})

		Convey("Missing directory should be reported", func() {
			aggregator.LogsDir = filepath.Join(dir, "missing")
			_, err := aggregator.Run()
			So(err, ShouldNotBeNil)
		})

		Convey("Policies should have readable names", func() {
			So(Abort.String(), ShouldEqual, "abort")
			So(Skip.String(), ShouldEqual, "skip")
		})
	})
}
