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
	"fmt"
	"os"

	"github.com/hpc-bench/benchsweep/pkg/conf"
	"github.com/hpc-bench/benchsweep/pkg/journal"
	"github.com/hpc-bench/benchsweep/pkg/utils/errutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// Flags with dashes are excluded from dumping.
	dumpConfigFlag      = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)
	dumpConfigRunIDFlag = conf.NewStringFlag("config-dump-run-id", "Dump configuration recorded in the journal for given run ID.", "")

	// JournalFlag points to the run journal database.
	JournalFlag = conf.NewStringFlag("journal", "Path of SQLite run journal. Empty disables journaling.", "")
	// LogDirFlag is the parent of per run log directories.
	LogDirFlag = conf.NewStringFlag("log_dir", "Directory for per run logs. Defaults to the system temporary directory.", "")
)

// Configure handles configuration parsing, generation and restoration based on config-* flags.
// Returns true when only errors are logged, so progress can be shown instead.
// Note: exits if configuration generation was requested.
func Configure() bool {
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		if previousRunID := dumpConfigRunIDFlag.Value(); previousRunID != "" {
			flags, err := RecordedFlags(previousRunID)
			errutil.CheckWithContext(err, "Cannot restore configuration")
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}

	return conf.LogLevel() == logrus.ErrorLevel
}

// OpenJournal opens the configured journal. Returns nil when journaling is disabled.
func OpenJournal() (*journal.Journal, error) {
	path := JournalFlag.Value()
	if path == "" {
		return nil, nil
	}
	return journal.Open(path)
}

// RecordFlags stores current flag values of the application under runID.
func RecordFlags(j *journal.Journal, runID string) error {
	return j.RecordFlags(runID, conf.AppName(), conf.GetFlags())
}

// RecordedFlags returns flags stored in the journal for given run ID.
func RecordedFlags(runID string) (map[string]string, error) {
	j, err := OpenJournal()
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, errors.Errorf("cannot restore run %q: flag %q is empty", runID, JournalFlag.Model().Name)
	}
	defer j.Close()

	return j.Flags(runID)
}
