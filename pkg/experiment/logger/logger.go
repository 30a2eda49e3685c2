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

package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/hpc-bench/benchsweep/pkg/experiment"
	"github.com/hpc-bench/benchsweep/pkg/utils/errutil"
	"github.com/sirupsen/logrus"
)

// Initialize sets up logging to stderr and to the master log of the run and prints the run ID.
func Initialize(appName, runID string) {
	// Create run directory
	runDirectory, logFile, err := experiment.CreateRunDir(runID, appName)
	errutil.CheckWithContext(err, "Cannot create run logs directory")

	// Setup logging set to both output and logFile.
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.100"})
	logrus.Infof("Working directory %q", runDirectory)
	logrus.SetOutput(io.MultiWriter(logFile, os.Stderr))

	// Logging and outputting run ID.
	logrus.Info("Starting ", appName, " with run id ", runID)
	fmt.Println(runID)
}
