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

package fs

import (
	"os"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"
)

// ReadTail returns last lineCount lines of the file.
func ReadTail(filePath string, lineCount int) (tail string, err error) {
	output, err := exec.Command("tail", "-n", strconv.Itoa(lineCount), filePath).CombinedOutput()

	if err != nil {
		return "", errors.Wrapf(err, "could not read tail of %q", filePath)
	}

	return string(output), nil
}

// Exists reports whether a regular file exists at given path.
func Exists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "could not stat %q", filePath)
	}
	if info.IsDir() {
		return false, errors.Errorf("%q is a directory", filePath)
	}
	return true, nil
}
