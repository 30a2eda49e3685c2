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
	"fmt"
	"os"

	"github.com/hpc-bench/benchsweep/pkg/conf"
	"github.com/hpc-bench/benchsweep/pkg/executor"
	"github.com/hpc-bench/benchsweep/pkg/experiment"
	"github.com/hpc-bench/benchsweep/pkg/experiment/logger"
	"github.com/hpc-bench/benchsweep/pkg/families"
	"github.com/hpc-bench/benchsweep/pkg/inputs"
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/hpc-bench/benchsweep/pkg/sweep"
	"github.com/hpc-bench/benchsweep/pkg/utils/errutil"
	"github.com/hpc-bench/benchsweep/pkg/utils/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

var (
	appName = os.Args[0]

	familyFlag           = conf.NewStringFlag("family", "Benchmark family to sweep: a built-in one or one defined in the profile.", "oddeven-sort")
	profileFlag          = conf.NewStringFlag("profile", "YAML file with additional families. Families with built-in names replace them.", "")
	variantsFlag         = conf.NewSliceFlag("variants", "Variants of the family to sweep. All when empty.")
	trialRepeatCountFlag = conf.NewIntFlag("trial_repeat_count", "Number of trials in every job. Family default when 0.", 0)
	scratchDirFlag       = conf.NewStringFlag("scratch_dir", "Directory for staged job descriptors. Must be visible to the scheduler.", "scratch")
	buildDirFlag         = conf.NewStringFlag("build_dir", "Directory with benchmark binaries. Family default when empty.", "")
	inputDirFlag         = conf.NewStringFlag("input_dir", "Directory with input files. Family default when empty.", "")
	inputTimeoutFlag     = conf.NewDurationFlag("input_timeout", "Maximum time of generating a single input file.", inputs.DefaultTimeout)
	submitCommandFlag    = conf.NewStringFlag("submit_command", "Batch scheduler submit command.", scheduler.DefaultSubmitCommand)
	submitTimeoutFlag    = conf.NewDurationFlag("submit_timeout", "Maximum time of a single submit command. 0 waits forever.", scheduler.DefaultSubmitTimeout)
	jobIDPatternFlag     = conf.NewStringFlag("job_id_pattern", "Regular expression extracting job ID from submit command output.", scheduler.DefaultJobIDPattern)
	dryRunFlag           = conf.NewBoolFlag("dry_run", "Stage job descriptors without submitting them.", false)
	progressFlag         = conf.NewBoolFlag("progress", "Show progress bar when log level is error.", true)
	remoteHostFlag       = conf.NewStringFlag("remote_host", "Cluster login node to submit from over SSH. Local submission when empty.", "")
	remoteUserFlag       = conf.NewStringFlag("remote_user", "SSH user on the login node. Current user when empty.", "")
	remotePortFlag       = conf.NewIntFlag("remote_port", "SSH port of the login node.", executor.DefaultSSHPort)
)

func main() {
	conf.SetAppName("sweep")
	conf.SetHelp("Renders, stages and submits batch jobs for every combination of a benchmark family's parameters.")
	errorLevelEnabled := experiment.Configure()

	runID := uuid.New()
	logger.Initialize(appName, runID)

	os.Exit(run(runID, errorLevelEnabled && progressFlag.Value()))
}

func run(runID string, showProgress bool) int {
	family, err := families.Lookup(familyFlag.Value(), profileFlag.Value())
	errutil.CheckWithContext(err, "Cannot find benchmark family")

	variants, err := family.SweepVariants(variantsFlag.Value())
	errutil.CheckWithContext(err, "Cannot select variants")

	shell, err := executor.NewShell(remoteHostFlag.Value(), remotePortFlag.Value(), remoteUserFlag.Value())
	errutil.CheckWithContext(err, "Cannot create executor for submission")

	submitter, err := newSubmitter(shell)
	errutil.CheckWithContext(err, "Cannot create batch submitter")

	generator, err := newGenerator(family, shell, submitter)
	errutil.CheckWithContext(err, "Cannot prepare sweep parameters")

	j, err := experiment.OpenJournal()
	errutil.CheckWithContext(err, "Cannot open journal")
	if j != nil {
		defer j.Close()
		err = experiment.RecordFlags(j, runID)
		errutil.CheckWithContext(err, "Cannot record configuration in journal")
	}

	var bar *pb.ProgressBar
	if showProgress {
		bar = pb.StartNew(generator.Total(variants))
		bar.ShowCounters = false
		bar.ShowTimeLeft = true
	}

	generator.OnSubmission = func(entry sweep.Entry) {
		if bar != nil {
			bar.Increment()
		}
		log.Infof("Job %q (%s) %s %s", entry.JobName, entry.Parameters, entry.Status, entry.JobID)
		if j == nil {
			return
		}
		if err := j.RecordSubmission(runID, entry); err != nil {
			log.Errorf("Cannot record submission of %q: %v", entry.Path, err)
		}
	}

	log.Infof("Sweeping %d jobs of %q on %s with %d trials each", generator.Total(variants), family.Name, shell.Name(), generator.TrialRepeatCount)
	report, err := generator.Run(variants)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		log.Errorf("Sweep of %q stopped: %v", family.Name, err)
		fmt.Fprintln(os.Stderr, report.Summary())
	} else {
		fmt.Println(report.Summary())
	}
	return exitCode(report, err)
}

// newSubmitter returns the dry run submitter or a batch submitter running on shell.
func newSubmitter(shell executor.Executor) (scheduler.Submitter, error) {
	if dryRunFlag.Value() {
		return scheduler.DryRun{}, nil
	}
	return scheduler.NewBatchSubmitter(shell, submitCommandFlag.Value(), jobIDPatternFlag.Value(),
		scheduler.SubmitTimeout(submitTimeoutFlag.Value()))
}

// newGenerator resolves flags against family defaults.
func newGenerator(family families.Family, shell executor.Executor, submitter scheduler.Submitter) (*sweep.Generator, error) {
	extra, err := family.Extra()
	if err != nil {
		return nil, err
	}

	buildDir := buildDirFlag.Value()
	if buildDir == "" {
		buildDir = family.BuildDir
	}
	trials := trialRepeatCountFlag.Value()
	if trials == 0 {
		trials = family.Trials()
	}

	return &sweep.Generator{
		Family:           family.Name,
		JobName:          family.JobName,
		Sizes:            family.Sizes,
		Extra:            extra,
		TrialRepeatCount: trials,
		BuildDir:         buildDir,
		ScratchDir:       scratchDirFlag.Value(),
		Inputs:           family.Inputs(shell, inputDirFlag.Value(), buildDir, inputTimeoutFlag.Value()),
		Submitter:        submitter,
	}, nil
}

func exitCode(report *sweep.Report, err error) int {
	if err != nil {
		return experiment.ExSoftware
	}
	if report.Failed() {
		for _, entry := range report.Entries {
			if entry.Status == scheduler.StatusRejected || entry.Status == scheduler.StatusUnavailable {
				log.Errorf("Job %q was not accepted (%s): %s", entry.JobName, entry.Status, entry.Output)
			}
		}
		return experiment.ExUnavailable
	}
	return 0
}
