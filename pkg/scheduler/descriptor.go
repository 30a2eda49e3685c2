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
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Resources is the resource request shape of a single batch job.
// Zero values are left out of the rendered descriptor.
type Resources struct {
	Nodes       int    `yaml:"nodes"`
	Tasks       int    `yaml:"ntasks"`
	CPUsPerTask int    `yaml:"cpus_per_task"`
	Memory      string `yaml:"mem"`
	TimeLimit   string `yaml:"time"`
	Partition   string `yaml:"partition"`
	GRES        string `yaml:"gres"`
	GPUsPerTask int    `yaml:"gpus_per_task"`
}

// Merge returns r with every zero field taken from defaults.
func (r Resources) Merge(defaults Resources) Resources {
	if r.Nodes == 0 {
		r.Nodes = defaults.Nodes
	}
	if r.Tasks == 0 {
		r.Tasks = defaults.Tasks
	}
	if r.CPUsPerTask == 0 {
		r.CPUsPerTask = defaults.CPUsPerTask
	}
	if r.Memory == "" {
		r.Memory = defaults.Memory
	}
	if r.TimeLimit == "" {
		r.TimeLimit = defaults.TimeLimit
	}
	if r.Partition == "" {
		r.Partition = defaults.Partition
	}
	if r.GRES == "" {
		r.GRES = defaults.GRES
	}
	if r.GPUsPerTask == 0 {
		r.GPUsPerTask = defaults.GPUsPerTask
	}
	return r
}

// Descriptor is a batch job: a header of scheduler directives followed by
// the invocation lines.
type Descriptor struct {
	JobName   string
	Resources Resources
	Commands  []string
}

var descriptorTemplate = template.Must(template.New("sbatch").Parse(`#!/bin/bash
#SBATCH --job-name={{.JobName}}
{{- with .Resources}}
{{- if .GRES}}
#SBATCH --gres={{.GRES}}
{{- end}}
{{- if .Nodes}}
#SBATCH --nodes={{.Nodes}}
{{- end}}
{{- if .Tasks}}
#SBATCH --ntasks={{.Tasks}}
{{- end}}
{{- if .CPUsPerTask}}
#SBATCH --cpus-per-task={{.CPUsPerTask}}
{{- end}}
{{- if .GPUsPerTask}}
#SBATCH --gpus-per-task={{.GPUsPerTask}}
{{- end}}
{{- if .Memory}}
#SBATCH --mem={{.Memory}}
{{- end}}
{{- if .TimeLimit}}
#SBATCH --time={{.TimeLimit}}
{{- end}}
{{- if .Partition}}
#SBATCH --partition={{.Partition}}
{{- end}}
{{- end}}

{{range .Commands}}{{.}}
{{end}}`))

// Validate checks that the descriptor renders into well formed directives.
func (d Descriptor) Validate() error {
	if err := checkDirectiveValue("job-name", d.JobName); err != nil {
		return err
	}
	if d.JobName == "" {
		return errors.New("job name is empty")
	}

	for name, value := range map[string]string{
		"mem":       d.Resources.Memory,
		"time":      d.Resources.TimeLimit,
		"partition": d.Resources.Partition,
		"gres":      d.Resources.GRES,
	} {
		if err := checkDirectiveValue(name, value); err != nil {
			return err
		}
	}

	for name, value := range map[string]int{
		"nodes":         d.Resources.Nodes,
		"ntasks":        d.Resources.Tasks,
		"cpus-per-task": d.Resources.CPUsPerTask,
		"gpus-per-task": d.Resources.GPUsPerTask,
	} {
		if value < 0 {
			return errors.Errorf("directive %q has negative value %d", name, value)
		}
	}

	if len(d.Commands) == 0 {
		return errors.Errorf("job %q has no invocation lines", d.JobName)
	}
	for _, command := range d.Commands {
		if strings.TrimSpace(command) == "" {
			return errors.Errorf("job %q has an empty invocation line", d.JobName)
		}
		if strings.ContainsAny(command, "\r\n") {
			return errors.Errorf("invocation line %q of job %q spans several lines", command, d.JobName)
		}
	}
	return nil
}

func checkDirectiveValue(name, value string) error {
	if strings.ContainsAny(value, " \t\r\n#") {
		return errors.Errorf("directive %q has malformed value %q", name, value)
	}
	return nil
}

// Render returns the descriptor as a batch script.
func (d Descriptor) Render() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err := descriptorTemplate.Execute(buffer, d); err != nil {
		return nil, errors.Wrapf(err, "cannot render descriptor of job %q", d.JobName)
	}
	return buffer.Bytes(), nil
}
