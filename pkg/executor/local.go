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
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const killTimeout = 5 * time.Second

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct{}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	log.Debug("Starting ", command)

	stdoutFile, stderrFile, err := createExecutorOutputFiles(command, "local")
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("sh", "-c", command)
	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to kill all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "cannot start %q", command)
	}

	log.Debug("Started with pid ", cmd.Process.Pid)

	taskHandle := &localTaskHandle{
		outputHandle: newOutputHandle(stdoutFile, stderrFile),
		command:      command,
		pid:          cmd.Process.Pid,
	}

	// Wait for local task in goroutine.
	go func() {
		// NOTE: Wait() returns an error. We grab the process state in any case
		// (success or failure) below, so the error object matters less in the
		// status handling for now.
		cmd.Wait()

		var exitCode int
		waitStatus := cmd.ProcessState.Sys().(syscall.WaitStatus)
		if waitStatus.Exited() {
			exitCode = waitStatus.ExitStatus()
		} else {
			// Show what signal caused the termination.
			exitCode = -int(waitStatus.Signal())
		}

		log.Debugf("Ended %q with output in %q and status code %d", command, stdoutFile.Name(), exitCode)
		taskHandle.complete(exitCode)
	}()

	return taskHandle, nil
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	outputHandle
	command string
	pid     int
}

// Stop terminates the local task.
func (t *localTaskHandle) Stop() error {
	if t.isTerminated() {
		return nil
	}

	// We signal the entire process group.
	// The kill syscall interprets a negated PID N as the process group N belongs to.
	log.Debug("Sending SIGTERM to PID ", -t.pid)
	if err := syscall.Kill(-t.pid, syscall.SIGTERM); err != nil {
		if err == syscall.ESRCH {
			// Process group is already gone.
			t.Wait(0)
			return nil
		}
		return errors.Wrapf(err, "cannot terminate %q", t.command)
	}

	if t.Wait(killTimeout) {
		return nil
	}

	log.Debug("Sending SIGKILL to PID ", -t.pid)
	if err := syscall.Kill(-t.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot kill %q", t.command)
	}
	t.Wait(0)
	return nil
}

// Address returns address where task was located.
func (t *localTaskHandle) Address() string {
	return "127.0.0.1"
}
