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
	"os/user"

	"github.com/pkg/errors"
)

// NewShell is a wrapper constructor for NewLocal or NewRemote executor depending on host provided.
func NewShell(host string, port int, username string) (Executor, error) {
	if host == "" || host == "127.0.0.1" || host == "localhost" {
		return NewLocal(), nil
	}

	// Keys are always taken from the local user's home directory.
	current, err := user.Current()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine ssh user")
	}
	sshUser := *current
	if username != "" {
		sshUser.Username = username
	}

	sshConfig, err := NewSSHConfig(host, port, &sshUser)
	if err != nil {
		return nil, err
	}
	return NewRemote(sshConfig), nil
}
