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

package families

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/executor"
	"github.com/hpc-bench/benchsweep/pkg/inputs"
	"github.com/hpc-bench/benchsweep/pkg/logparse"
	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/hpc-bench/benchsweep/pkg/sweep"
	"github.com/pkg/errors"
)

// Parameter is an extra sweep axis given as a set or range spec.
type Parameter struct {
	Name   string `yaml:"name"`
	Values string `yaml:"values"`
}

// Input describes input files shared by all variants of a family.
type Input struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
	// Command generates a missing input file.
	Command string `yaml:"command"`
}

// Variant is one implementation of the benchmark.
type Variant struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	// Cores is a set or range spec, a single core when empty.
	Cores     string              `yaml:"cores"`
	CoresAs   string              `yaml:"cores_as"`
	Resources scheduler.Resources `yaml:"resources"`
}

// Family is an experiment: how to sweep it and how to read its logs.
type Family struct {
	Name             string              `yaml:"name"`
	Description      string              `yaml:"description"`
	BuildDir         string              `yaml:"build_dir"`
	JobName          string              `yaml:"job_name"`
	TrialRepeatCount int                 `yaml:"trial_repeat_count"`
	Sizes            []int               `yaml:"sizes"`
	Parameters       []Parameter         `yaml:"parameters"`
	Resources        scheduler.Resources `yaml:"resources"`
	Input            *Input              `yaml:"input"`
	Variants         []Variant           `yaml:"variants"`
	// Layout describes positional logs. Without it logs carry key=value result lines.
	Layout *logparse.Layout `yaml:"layout"`
	Speed  bool             `yaml:"speed"`
	Header string           `yaml:"header"`
}

// Trials returns the number of trials per job, defaulting to sweep.DefaultTrialRepeatCount.
func (f Family) Trials() int {
	if f.TrialRepeatCount > 0 {
		return f.TrialRepeatCount
	}
	return sweep.DefaultTrialRepeatCount
}

// SweepVariants returns the named variants ready for sweeping, all of them when names is empty.
func (f Family) SweepVariants(names []string) ([]sweep.Variant, error) {
	selected := map[string]bool{}
	for _, name := range names {
		selected[name] = false
	}

	var variants []sweep.Variant
	for _, variant := range f.Variants {
		if len(names) > 0 {
			if _, ok := selected[variant.Name]; !ok {
				continue
			}
			selected[variant.Name] = true
		}

		sweepVariant := sweep.Variant{
			Name:      variant.Name,
			Command:   variant.Command,
			CoresAs:   variant.CoresAs,
			Resources: variant.Resources.Merge(f.Resources),
		}
		if variant.Cores != "" {
			axis, err := sweep.ParseAxis(sweep.AxisCores, variant.Cores)
			if err != nil {
				return nil, errors.Wrapf(err, "family %q, variant %q", f.Name, variant.Name)
			}
			for _, value := range axis.Values {
				cores, err := strconv.Atoi(value)
				if err != nil {
					return nil, errors.Wrapf(err, "family %q, variant %q", f.Name, variant.Name)
				}
				sweepVariant.Cores = append(sweepVariant.Cores, cores)
			}
		}
		variants = append(variants, sweepVariant)
	}

	var unknown []string
	for name, found := range selected {
		if !found {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Errorf("family %q has no variants %s", f.Name, strings.Join(unknown, ", "))
	}
	return variants, nil
}

// Extra returns the extra sweep axes.
func (f Family) Extra() ([]sweep.Axis, error) {
	var axes []sweep.Axis
	for _, parameter := range f.Parameters {
		axis, err := sweep.ParseAxis(parameter.Name, parameter.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "family %q", f.Name)
		}
		axes = append(axes, axis)
	}
	return axes, nil
}

// Inputs returns the input resolver of the family, nil when it takes no input files.
// A non empty dir overrides the family input directory. Zero timeout means inputs.DefaultTimeout.
func (f Family) Inputs(exec executor.Executor, dir, build string, timeout time.Duration) sweep.InputResolver {
	if f.Input == nil {
		return nil
	}
	if dir == "" {
		dir = f.Input.Dir
	}
	return &inputs.Generator{
		Executor: exec,
		Dir:      dir,
		Pattern:  f.Input.Pattern,
		Command:  f.Input.Command,
		Build:    build,
		Timeout:  timeout,
	}
}

// Parser returns the log parser of the family. Positive trials override the
// family trial count of positional layouts.
func (f Family) Parser(trials int) (logparse.Parser, error) {
	if f.Layout == nil {
		return logparse.KeyValue{Speed: f.Speed}, nil
	}

	layout := *f.Layout
	layout.Speed = layout.Speed || f.Speed
	switch {
	case trials > 0:
		layout.Trials = trials
	case layout.Trials == 0:
		layout.Trials = f.Trials()
	}

	parser, err := layout.Compile()
	if err != nil {
		return nil, errors.Wrapf(err, "family %q", f.Name)
	}
	return parser, nil
}

// TableHeader returns the results table header of the family.
func (f Family) TableHeader() string {
	if f.Header != "" {
		return f.Header
	}
	if f.Speed || (f.Layout != nil && f.Layout.Speed) {
		return results.Header + results.FieldSeparator + results.SpeedColumn
	}
	return results.Header
}

// Validate checks that the family can be swept and aggregated.
func (f Family) Validate() error {
	if f.Name == "" {
		return errors.New("family has no name")
	}
	names := map[string]bool{}
	for _, variant := range f.Variants {
		if variant.Name == "" {
			return errors.Errorf("family %q has a variant without name", f.Name)
		}
		if names[variant.Name] {
			return errors.Errorf("family %q defines variant %q twice", f.Name, variant.Name)
		}
		names[variant.Name] = true
		if variant.Command == "" {
			return errors.Errorf("variant %q of family %q has no command", variant.Name, f.Name)
		}
	}
	if _, err := f.SweepVariants(nil); err != nil {
		return err
	}
	if _, err := f.Extra(); err != nil {
		return err
	}
	if _, err := f.Parser(0); err != nil {
		return err
	}
	return nil
}
