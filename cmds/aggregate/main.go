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

package main

import (
	"os"

	"github.com/hpc-bench/benchsweep/pkg/conf"
	"github.com/hpc-bench/benchsweep/pkg/experiment"
	"github.com/hpc-bench/benchsweep/pkg/experiment/logger"
	"github.com/hpc-bench/benchsweep/pkg/families"
	"github.com/hpc-bench/benchsweep/pkg/logparse"
	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/hpc-bench/benchsweep/pkg/utils/errutil"
	"github.com/hpc-bench/benchsweep/pkg/utils/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	appName = os.Args[0]

	familyFlag           = conf.NewStringFlag("family", "Benchmark family whose logs are aggregated.", "oddeven-sort")
	profileFlag          = conf.NewStringFlag("profile", "YAML file with additional families. Families with built-in names replace them.", "")
	logsDirFlag          = conf.NewStringFlag("logs_dir", "Directory with job logs.", "logs")
	resultsTableFlag     = conf.NewStringFlag("results_table", "Path of the results table to rewrite.", "stats.csv")
	skipMalformedFlag    = conf.NewBoolFlag("skip_malformed", "Leave malformed logs out of the table instead of aborting.", false)
	printFlag            = conf.NewBoolFlag("print", "Print the aggregated table.", false)
	trialRepeatCountFlag = conf.NewIntFlag("trial_repeat_count", "Number of trials in every log. Family default when 0.", 0)
)

func main() {
	conf.SetAppName("aggregate")
	conf.SetHelp("Parses a directory of benchmark logs and rewrites the results table.")
	experiment.Configure()

	runID := uuid.New()
	logger.Initialize(appName, runID)

	os.Exit(run(runID))
}

func run(runID string) int {
	family, err := families.Lookup(familyFlag.Value(), profileFlag.Value())
	errutil.CheckWithContext(err, "Cannot find benchmark family")

	aggregator, err := newAggregator(family)
	errutil.CheckWithContext(err, "Cannot build log parser")

	summary, err := aggregator.Run()
	if err != nil {
		if logparse.IsMismatch(err) {
			log.Errorf("Aggregation aborted, %q left untouched: %v", aggregator.TablePath, err)
		} else {
			log.Errorf("Aggregation failed: %v", err)
		}
		return exitCode(err)
	}
	if summary.Skipped != nil {
		log.Warnf("Skipped malformed logs: %v", summary.Skipped)
	}

	j, err := experiment.OpenJournal()
	errutil.CheckWithContext(err, "Cannot open journal")
	if j != nil {
		defer j.Close()
		err = experiment.RecordFlags(j, runID)
		errutil.CheckWithContext(err, "Cannot record configuration in journal")
		err = j.ReplaceResults(family.Name, summary.Rows)
		errutil.CheckWithContext(err, "Cannot store results in journal")
	}

	if printFlag.Value() {
		results.Render(os.Stdout, aggregator.Header, summary.Rows)
	}
	return 0
}

// newAggregator resolves flags against family defaults.
func newAggregator(family families.Family) (*logparse.Aggregator, error) {
	parser, err := family.Parser(trialRepeatCountFlag.Value())
	if err != nil {
		return nil, err
	}

	policy := logparse.Abort
	if skipMalformedFlag.Value() {
		policy = logparse.Skip
	}

	return &logparse.Aggregator{
		Parser:    parser,
		LogsDir:   logsDirFlag.Value(),
		TablePath: resultsTableFlag.Value(),
		Header:    family.TableHeader(),
		Policy:    policy,
	}, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case logparse.IsMismatch(err):
		return experiment.ExDataErr
	default:
		return experiment.ExSoftware
	}
}
