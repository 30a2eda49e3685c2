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
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// OutputDirectory is the parent of per-task output directories. Empty means os.TempDir().
var OutputDirectory = ""

func getBinaryNameFromCommand(command string) (string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", errors.Errorf("failed to extract command name from %q", command)
	}
	return path.Base(fields[0]), nil
}

func createExecutorOutputFiles(command, prefix string) (stdout, stderr *os.File, err error) {
	if len(command) == 0 {
		return nil, nil, errors.New("empty command string")
	}

	commandName, err := getBinaryNameFromCommand(command)
	if err != nil {
		return nil, nil, err
	}

	parent := OutputDirectory
	if parent == "" {
		parent = os.TempDir()
	}
	outputDir, err := os.MkdirTemp(parent, prefix+"_"+commandName+"_")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output directory for %q", commandName)
	}

	stdoutFileName := filepath.Join(outputDir, "stdout")
	stdout, err = os.Create(stdoutFileName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %q", stdoutFileName)
	}

	stderrFileName := filepath.Join(outputDir, "stderr")
	stderr, err = os.Create(stderrFileName)
	if err != nil {
		stdout.Close()
		os.Remove(stdoutFileName)
		return nil, nil, errors.Wrapf(err, "failed to create %q", stderrFileName)
	}

	return stdout, stderr, nil
}

// outputHandle keeps task output files and termination state shared by
// local and remote task handles.
type outputHandle struct {
	stdoutFile *os.File
	stderrFile *os.File

	// hasProcessExited is closed once exitCode is set.
	hasProcessExited chan struct{}
	exitCode         int
}

func newOutputHandle(stdout, stderr *os.File) outputHandle {
	return outputHandle{
		stdoutFile:       stdout,
		stderrFile:       stderr,
		hasProcessExited: make(chan struct{}),
	}
}

func (h *outputHandle) complete(exitCode int) {
	h.exitCode = exitCode
	close(h.hasProcessExited)
}

func (h *outputHandle) isTerminated() bool {
	select {
	case <-h.hasProcessExited:
		return true
	default:
		return false
	}
}

// Status returns a state of the task.
func (h *outputHandle) Status() TaskState {
	if h.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns exit code of terminated task.
func (h *outputHandle) ExitCode() (int, error) {
	if !h.isTerminated() {
		return -1, errors.New("task is not terminated")
	}
	return h.exitCode, nil
}

// Wait blocks until process is terminated or timeout appeared.
// Returns true when process terminates before timeout, otherwise false.
func (h *outputHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-h.hasProcessExited
		return true
	}

	select {
	case <-h.hasProcessExited:
		return true
	case <-time.After(timeout):
		return false
	}
}

// StdoutFile returns a fresh read handle to the stdout file.
func (h *outputHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(h.stdoutFile)
}

// StderrFile returns a fresh read handle to the stderr file.
func (h *outputHandle) StderrFile() (*os.File, error) {
	return openOutputFile(h.stderrFile)
}

func openOutputFile(file *os.File) (*os.File, error) {
	if file == nil {
		return nil, errors.New("output file is not available")
	}
	readHandle, err := os.Open(file.Name())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", file.Name())
	}
	return readHandle, nil
}

// Clean closes task output files.
func (h *outputHandle) Clean() error {
	if err := h.stdoutFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrapf(err, "cannot close %q", h.stdoutFile.Name())
	}
	if err := h.stderrFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrapf(err, "cannot close %q", h.stderrFile.Name())
	}
	return nil
}

// EraseOutput removes task output directory.
func (h *outputHandle) EraseOutput() error {
	outputDir := filepath.Dir(h.stdoutFile.Name())
	if err := os.RemoveAll(outputDir); err != nil {
		return errors.Wrapf(err, "cannot remove %q", outputDir)
	}
	return nil
}
