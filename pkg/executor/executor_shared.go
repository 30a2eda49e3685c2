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
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RunAndWait executes command and blocks until it terminates or timeout passes.
// Zero timeout means no timeout. On timeout the task is stopped and an error is returned.
// The returned handle is terminated and must be cleaned by the caller.
func RunAndWait(executor Executor, command string, timeout time.Duration) (TaskHandle, error) {
	handle, err := executor.Execute(command)
	if err != nil {
		return nil, err
	}

	if !handle.Wait(timeout) {
		log.Errorf("task %q launched on %q did not finish within %s", command, executor.Name(), timeout)
		if stopErr := handle.Stop(); stopErr != nil {
			log.Errorf("cannot stop %q: %v", command, stopErr)
		}
		return handle, errors.Errorf("task %q launched on %q timed out after %s", command, executor.Name(), timeout)
	}

	return handle, nil
}

// CheckExitCode returns an error when terminated task ended with non-zero exit code.
// Output of failed tasks is logged.
func CheckExitCode(command string, executorName string, handle TaskHandle) error {
	exitCode, err := handle.ExitCode()
	if err != nil {
		log.Errorf("task %q launched on %q failed, cannot get exit code: %s", command, executorName, err.Error())
		return errors.Wrapf(err, "task %q launched on %q failed", command, executorName)
	}
	if exitCode != 0 {
		LogUnsuccessfulExecution(command, executorName, handle)
		return errors.Errorf("task %q launched on %q failed with exit code %d", command, executorName, exitCode)
	}

	log.Debugf("task %q launched on %q has ended successfully", command, executorName)
	return nil
}
