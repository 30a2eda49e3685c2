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

package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpc-bench/benchsweep/pkg/conf"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunDir(t *testing.T) {
	Convey("While creating run directory", t, func() {
		dir, err := os.MkdirTemp("", "runs")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		os.Setenv("BENCHSWEEP_LOG_DIR", dir)
		defer os.Unsetenv("BENCHSWEEP_LOG_DIR")
		So(conf.ParseEnv(), ShouldBeNil)

		runDir, logFile, err := CreateRunDir("1234", "./bin/sweep")
		So(err, ShouldBeNil)
		defer logFile.Close()

		So(runDir, ShouldEqual, filepath.Join(dir, "sweep", "1234"))
		So(logFile.Name(), ShouldEqual, filepath.Join(runDir, MasterLogName))

		Convey("Creating it again should append to the same log", func() {
			_, again, err := CreateRunDir("1234", "sweep")
			So(err, ShouldBeNil)
			So(again.Close(), ShouldBeNil)
		})
	})
}

func TestJournalFlags(t *testing.T) {
	Convey("Without journal path", t, func() {
		os.Unsetenv("BENCHSWEEP_JOURNAL")
		So(conf.ParseEnv(), ShouldBeNil)

		Convey("Journal should be disabled", func() {
			j, err := OpenJournal()
			So(err, ShouldBeNil)
			So(j, ShouldBeNil)
		})

		Convey("Flags cannot be restored", func() {
			_, err := RecordedFlags("1234")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("With journal path", t, func() {
		dir, err := os.MkdirTemp("", "journal")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		os.Setenv("BENCHSWEEP_JOURNAL", filepath.Join(dir, "runs.db"))
		defer os.Unsetenv("BENCHSWEEP_JOURNAL")
		So(conf.ParseEnv(), ShouldBeNil)

		j, err := OpenJournal()
		So(err, ShouldBeNil)
		So(j, ShouldNotBeNil)
		So(RecordFlags(j, "1234"), ShouldBeNil)
		So(j.Close(), ShouldBeNil)

		Convey("Recorded flags should be restored", func() {
			flags, err := RecordedFlags("1234")
			So(err, ShouldBeNil)
			So(flags["journal"], ShouldEqual, filepath.Join(dir, "runs.db"))
			So(flags["log"], ShouldEqual, "error")
		})

		Convey("Unknown runs should not be restored", func() {
			_, err := RecordedFlags("5678")
			So(err, ShouldNotBeNil)
		})
	})
}
