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

package scheduler

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Stage writes the rendered descriptor to a new file in dir and returns its path.
// The file is synced and closed before Stage returns, so a submitter never
// observes a partial descriptor.
func Stage(dir string, descriptor Descriptor) (path string, err error) {
	content, err := descriptor.Render()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create scratch directory %q", dir)
	}

	file, err := os.CreateTemp(dir, stagedName(descriptor.JobName)+"_*.sh")
	if err != nil {
		return "", errors.Wrapf(err, "cannot create descriptor file in %q", dir)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if _, err = file.Write(content); err != nil {
		return "", errors.Wrapf(err, "cannot write %q", file.Name())
	}
	if err = file.Sync(); err != nil {
		return "", errors.Wrapf(err, "cannot sync %q", file.Name())
	}
	if err = file.Close(); err != nil {
		return "", errors.Wrapf(err, "cannot close %q", file.Name())
	}

	return file.Name(), nil
}

// stagedName turns a job name into a file name prefix. Slurm accepts path
// separators in job names, file names cannot hold them.
func stagedName(jobName string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, jobName)
}
