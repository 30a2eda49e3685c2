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

package results

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Write writes the header line followed by one line per row.
func Write(w io.Writer, header string, rows []Row) error {
	buffered := bufio.NewWriter(w)
	if _, err := buffered.WriteString(header + "\n"); err != nil {
		return errors.Wrap(err, "cannot write table header")
	}
	for _, row := range rows {
		if _, err := buffered.WriteString(row.String() + "\n"); err != nil {
			return errors.Wrapf(err, "cannot write row %q", row.String())
		}
	}
	return errors.Wrap(buffered.Flush(), "cannot flush table")
}

// TempPattern is the pattern of temporary files created next to the table.
func TempPattern(path string) string {
	return "." + filepath.Base(path) + ".tmp-*"
}

// WriteFile replaces the table at path with a freshly written one.
// The new table is written next to the old one and renamed over it, so
// readers see either the old or the complete new table.
func WriteFile(path string, header string, rows []Row) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "cannot create %q", dir)
	}

	file, err := os.CreateTemp(dir, TempPattern(path))
	if err != nil {
		return errors.Wrapf(err, "cannot create temporary table in %q", dir)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err = Write(file, header, rows); err != nil {
		return err
	}
	if err = file.Sync(); err != nil {
		return errors.Wrapf(err, "cannot sync %q", file.Name())
	}
	if err = file.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %q", file.Name())
	}
	if err = os.Chmod(file.Name(), 0644); err != nil {
		return errors.Wrapf(err, "cannot change mode of %q", file.Name())
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return errors.Wrapf(err, "cannot replace %q", path)
	}
	return nil
}
