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

package inputs

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/executor"
	"github.com/hpc-bench/benchsweep/pkg/utils/fs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single input generation.
const DefaultTimeout = 10 * time.Minute

// Generator provides input files per problem size and creates missing ones.
type Generator struct {
	Executor executor.Executor
	// Dir holds the input files.
	Dir string
	// Pattern is the file name template, e.g. "{{.Size}}.in".
	Pattern string
	// Command is the generation command template, e.g. "{{.Build}}/gen {{.Size}} {{.Path}}".
	// Without Command missing inputs are an error.
	Command string
	Build   string
	Timeout time.Duration
}

type templateData struct {
	Size  int
	Path  string
	Build string
}

func render(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, "cannot parse %s template %q", name, text)
	}
	buffer := &bytes.Buffer{}
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", errors.Wrapf(err, "cannot render %s template %q", name, text)
	}
	return buffer.String(), nil
}

// Path returns the input file path for size without touching the filesystem.
func (g *Generator) Path(size int) (string, error) {
	name, err := render("input file", g.Pattern, templateData{Size: size, Build: g.Build})
	if err != nil {
		return "", err
	}
	return filepath.Join(g.Dir, name), nil
}

// Resolve returns the input file for size, generating it first when missing.
func (g *Generator) Resolve(size int) (string, error) {
	path, err := g.Path(size)
	if err != nil {
		return "", err
	}

	exists, err := fs.Exists(path)
	if err != nil {
		return "", err
	}
	if exists {
		return path, nil
	}

	if g.Command == "" {
		return "", errors.Errorf("input %q does not exist and no generator is configured", path)
	}
	if g.Executor == nil {
		return "", errors.New("no executor configured for input generation")
	}

	command, err := render("input generator", g.Command, templateData{Size: size, Path: path, Build: g.Build})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create input directory for %q", path)
	}

	timeout := g.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	log.Infof("Generating input %q with %q", path, command)
	handle, err := executor.RunAndWait(g.Executor, command, timeout)
	if err != nil {
		if handle != nil {
			handle.EraseOutput()
		}
		return "", errors.Wrapf(err, "cannot generate input %q", path)
	}
	defer handle.EraseOutput()
	defer handle.Clean()

	if err := executor.CheckExitCode(command, g.Executor.Name(), handle); err != nil {
		return "", errors.Wrapf(err, "cannot generate input %q", path)
	}

	exists, err = fs.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Errorf("generator %q succeeded but %q was not created", command, path)
	}
	return path, nil
}
