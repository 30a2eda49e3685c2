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

package sweep

import (
	"bytes"
	"text/template"

	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultJobName names jobs after their family, variant and parameters.
	DefaultJobName = "{{.Family}}_{{.Variant}}_{{.Size}}_{{.Cores}}"
	// DefaultTrialRepeatCount is the number of invocation lines per job.
	DefaultTrialRepeatCount = 5

	// CoresAsTasks maps the core count to the number of tasks (processes).
	CoresAsTasks = "ntasks"
	// CoresAsCPUs maps the core count to cpus per task (threads).
	CoresAsCPUs = "cpus-per-task"
)

// Variant is one implementation of a benchmark family.
type Variant struct {
	Name string
	// Command is the invocation line template.
	Command string
	// Cores defaults to a single core.
	Cores []int
	// CoresAs tells which resource field receives the core count.
	CoresAs   string
	Resources scheduler.Resources
}

// InputResolver returns the path of the input file for a problem size.
type InputResolver interface {
	Resolve(size int) (string, error)
}

// Generator renders, stages and submits one job per combination of a variant space.
type Generator struct {
	Family string
	// JobName is a template, DefaultJobName when empty.
	JobName          string
	Sizes            []int
	Extra            []Axis
	TrialRepeatCount int
	BuildDir         string
	ScratchDir       string
	// Inputs is optional.
	Inputs    InputResolver
	Submitter scheduler.Submitter
	// OnSubmission is called after every submit call.
	OnSubmission func(Entry)
}

type templateData struct {
	Family  string
	Variant string
	Size    int
	Cores   int
	Input   string
	Build   string

	combination Combination
}

// Param returns the value of an extra axis.
func (d templateData) Param(name string) (string, error) {
	value, ok := d.combination.Value(name)
	if !ok {
		return "", errors.Errorf("no parameter %q", name)
	}
	return value, nil
}

// Space returns the sweep space of the variant: cores, size and extra axes.
func (g *Generator) Space(variant Variant) Space {
	cores := variant.Cores
	if len(cores) == 0 {
		cores = []int{1}
	}

	axes := []Axis{IntAxis(AxisCores, cores...), IntAxis(AxisSize, g.Sizes...)}
	return Space{Axes: append(axes, g.Extra...)}
}

// Total returns the number of jobs Run would submit.
func (g *Generator) Total(variants []Variant) (total int) {
	for _, variant := range variants {
		total += g.Space(variant).Count()
	}
	return total
}

// Render builds the descriptor of a single combination.
func (g *Generator) Render(variant Variant, combination Combination) (scheduler.Descriptor, error) {
	size, err := combination.Int(AxisSize)
	if err != nil {
		return scheduler.Descriptor{}, err
	}
	cores, err := combination.Int(AxisCores)
	if err != nil {
		return scheduler.Descriptor{}, err
	}

	data := templateData{
		Family:      g.Family,
		Variant:     variant.Name,
		Size:        size,
		Cores:       cores,
		Build:       g.BuildDir,
		combination: combination,
	}
	if g.Inputs != nil {
		if data.Input, err = g.Inputs.Resolve(size); err != nil {
			return scheduler.Descriptor{}, err
		}
	}

	jobNameTemplate := g.JobName
	if jobNameTemplate == "" {
		jobNameTemplate = DefaultJobName
	}
	jobName, err := renderTemplate("job name", jobNameTemplate, data)
	if err != nil {
		return scheduler.Descriptor{}, err
	}
	command, err := renderTemplate("command of "+variant.Name, variant.Command, data)
	if err != nil {
		return scheduler.Descriptor{}, err
	}

	resources := variant.Resources
	switch variant.CoresAs {
	case CoresAsTasks:
		resources.Tasks = cores
	case CoresAsCPUs:
		resources.CPUsPerTask = cores
	case "":
	default:
		return scheduler.Descriptor{}, errors.Errorf("variant %q maps cores to unknown resource %q", variant.Name, variant.CoresAs)
	}

	commands := make([]string, g.TrialRepeatCount)
	for i := range commands {
		commands[i] = command
	}

	return scheduler.Descriptor{
		JobName:   jobName,
		Resources: resources,
		Commands:  commands,
	}, nil
}

func renderTemplate(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, "cannot parse %s template", name)
	}

	buffer := &bytes.Buffer{}
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", errors.Wrapf(err, "cannot render %s template", name)
	}
	return buffer.String(), nil
}

// Run submits every combination of every variant, one after another.
// Submission failures are recorded in the report; rendering and staging
// failures stop the sweep.
func (g *Generator) Run(variants []Variant) (*Report, error) {
	report := &Report{}

	if g.TrialRepeatCount < 1 {
		return report, errors.Errorf("trial repeat count must be positive, got %d", g.TrialRepeatCount)
	}
	if g.Submitter == nil {
		return report, errors.New("no submitter configured")
	}
	if len(variants) == 0 {
		return report, errors.Errorf("family %q has no variants to sweep", g.Family)
	}
	for _, variant := range variants {
		if variant.Name == "" {
			return report, errors.Errorf("family %q has a variant without name", g.Family)
		}
		if err := g.Space(variant).Validate(); err != nil {
			return report, errors.Wrapf(err, "variant %q", variant.Name)
		}
	}

	for _, variant := range variants {
		err := g.Space(variant).Each(func(combination Combination) error {
			descriptor, err := g.Render(variant, combination)
			if err != nil {
				return errors.Wrapf(err, "variant %q, %s", variant.Name, combination)
			}

			path, err := scheduler.Stage(g.ScratchDir, descriptor)
			if err != nil {
				return err
			}

			submission, err := g.Submitter.Submit(path)
			if err != nil {
				log.Errorf("Submitting %q failed: %v", path, err)
				if submission.Status == "" {
					submission.Status = scheduler.StatusUnavailable
				}
			}
			submission.Path = path

			entry := Entry{
				Family:     g.Family,
				Variant:    variant.Name,
				JobName:    descriptor.JobName,
				Parameters: combination.String(),
				Submission: submission,
			}
			report.Add(entry)
			log.Debugf("Job %q (%s): %s %s", entry.JobName, entry.Parameters, submission.Status, submission.JobID)

			if g.OnSubmission != nil {
				g.OnSubmission(entry)
			}
			return nil
		})
		if err != nil {
			return report, err
		}
	}

	return report, nil
}
