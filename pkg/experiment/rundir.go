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

	"github.com/hpc-bench/benchsweep/pkg/conf"
	"github.com/pkg/errors"
)

// MasterLogName is the name of the log file in every run directory.
const MasterLogName = "master.log"

// RunDir returns the log directory for given run.
func RunDir(runID, appName string) string {
	parent := LogDirFlag.Value()
	if parent == "" {
		parent = filepath.Join(os.TempDir(), conf.AppName())
	}
	return filepath.Join(parent, filepath.Base(appName), runID)
}

// CreateRunDir creates unique directory for run logs and opens master log in it.
func CreateRunDir(runID, appName string) (string, *os.File, error) {
	directory := RunDir(runID, appName)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", nil, errors.Wrapf(err, "cannot create run directory %q", directory)
	}

	logFile, err := os.OpenFile(filepath.Join(directory, MasterLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create master log in %q", directory)
	}
	return directory, logFile, nil
}
