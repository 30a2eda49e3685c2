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
	"net"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// Remote provisioning is responsible for providing the execution environment
// on remote machine via ssh.
type Remote struct {
	sshConfig *SSHConfig
}

// NewRemote returns a Remote instance.
func NewRemote(sshConfig *SSHConfig) Remote {
	return Remote{sshConfig: sshConfig}
}

// Name returns user-friendly name of executor.
func (remote Remote) Name() string {
	return "Remote"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (remote Remote) Execute(command string) (TaskHandle, error) {
	address := net.JoinHostPort(remote.sshConfig.Host, strconv.Itoa(remote.sshConfig.Port))
	log.Debugf("Starting %q on %q", command, address)

	connection, err := ssh.Dial("tcp", address, remote.sshConfig.ClientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %q", address)
	}

	session, err := connection.NewSession()
	if err != nil {
		connection.Close()
		return nil, errors.Wrapf(err, "cannot open session on %q", address)
	}

	stdoutFile, stderrFile, err := createExecutorOutputFiles(command, "remote")
	if err != nil {
		session.Close()
		connection.Close()
		return nil, err
	}
	session.Stdout = stdoutFile
	session.Stderr = stderrFile

	if err := session.Start(command); err != nil {
		session.Close()
		connection.Close()
		return nil, errors.Wrapf(err, "cannot start %q on %q", command, address)
	}

	taskHandle := &remoteTaskHandle{
		outputHandle: newOutputHandle(stdoutFile, stderrFile),
		session:      session,
		host:         remote.sshConfig.Host,
	}

	go func() {
		defer connection.Close()
		defer session.Close()

		exitCode := 0
		if err := session.Wait(); err != nil {
			exitErr, ok := err.(*ssh.ExitError)
			if ok {
				exitCode = exitErr.ExitStatus()
			} else {
				log.Errorf("Waiting for %q on %q failed: %v", command, address, err)
				exitCode = -1
			}
		}

		log.Debugf("Ended %q on %q with status code %d", command, address, exitCode)
		taskHandle.complete(exitCode)
	}()

	return taskHandle, nil
}

// remoteTaskHandle implements TaskHandle interface.
type remoteTaskHandle struct {
	outputHandle
	session *ssh.Session
	host    string
}

// Stop terminates the remote task.
func (t *remoteTaskHandle) Stop() error {
	if t.isTerminated() {
		return nil
	}

	if err := t.session.Signal(ssh.SIGKILL); err != nil {
		return errors.Wrapf(err, "cannot kill task on %q", t.host)
	}

	if !t.Wait(killTimeout) {
		// Closing the session makes Wait in the background return.
		t.session.Close()
		t.Wait(0)
	}
	return nil
}

// Address returns address where task was located.
func (t *remoteTaskHandle) Address() string {
	return t.host
}
