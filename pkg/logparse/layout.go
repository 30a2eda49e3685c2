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

package logparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/pkg/errors"
)

// Rule extracts capture group 1 of Pattern from line Line.
// An empty Pattern takes the whole trimmed line.
type Rule struct {
	Line    int    `yaml:"line"`
	Pattern string `yaml:"pattern"`
}

// CoresRule is either a fixed core count or a Rule.
type CoresRule struct {
	Fixed int `yaml:"fixed"`
	Rule  `yaml:",inline"`
}

// Layout describes a log format with fields at fixed line positions.
type Layout struct {
	// Trials is the number of repeated runs in a single log.
	Trials int `yaml:"trials"`
	// Stride is the number of lines between two trials.
	Stride int `yaml:"stride"`
	// Time is the rule of the first trial.
	Time Rule `yaml:"time"`
	Kind Rule `yaml:"kind"`
	// Kinds maps kind markers to reported kinds. Markers missing here are
	// reported as DefaultKind, or verbatim when DefaultKind is empty.
	Kinds       map[string]string    `yaml:"kinds"`
	DefaultKind string               `yaml:"default_kind"`
	Size        Rule                 `yaml:"size"`
	Cores       CoresRule            `yaml:"cores"`
	CoresByKind map[string]CoresRule `yaml:"cores_by_kind"`
	// Speed derives throughput from size and time.
	Speed bool `yaml:"speed"`
}

type compiledRule struct {
	line    int
	pattern string
	re      *regexp.Regexp
}

func compileRule(name string, rule Rule, required bool) (compiledRule, error) {
	if rule.Line < 0 {
		return compiledRule{}, errors.Errorf("%s rule has negative line %d", name, rule.Line)
	}
	if rule.Pattern == "" {
		if required {
			return compiledRule{}, errors.Errorf("%s rule has no pattern", name)
		}
		return compiledRule{line: rule.Line}, nil
	}

	// Patterns match from the line start.
	re, err := regexp.Compile("^(?:" + rule.Pattern + ")")
	if err != nil {
		return compiledRule{}, errors.Wrapf(err, "invalid %s pattern %q", name, rule.Pattern)
	}
	if re.NumSubexp() < 1 {
		return compiledRule{}, errors.Errorf("%s pattern %q has no capture group", name, rule.Pattern)
	}
	return compiledRule{line: rule.Line, pattern: rule.Pattern, re: re}, nil
}

func (r compiledRule) extract(file string, lines []string, line int) (string, error) {
	if line >= len(lines) {
		return "", &MismatchError{File: file, Line: line, Pattern: r.pattern, Missing: true}
	}
	text := lines[line]

	if r.re == nil {
		return strings.TrimSpace(text), nil
	}

	match := r.re.FindStringSubmatch(text)
	if matchNotFound(match) {
		return "", &MismatchError{File: file, Line: line, Pattern: r.pattern, Text: text}
	}
	return match[1], nil
}

type compiledCoresRule struct {
	fixed int
	rule  compiledRule
}

func compileCoresRule(name string, rule CoresRule) (compiledCoresRule, error) {
	if rule.Fixed < 0 {
		return compiledCoresRule{}, errors.Errorf("%s has negative fixed core count", name)
	}
	if rule.Fixed > 0 {
		return compiledCoresRule{fixed: rule.Fixed}, nil
	}
	compiled, err := compileRule(name, rule.Rule, true)
	return compiledCoresRule{rule: compiled}, err
}

// Positional is a compiled Layout.
type Positional struct {
	layout      Layout
	time        compiledRule
	kind        compiledRule
	size        compiledRule
	cores       *compiledCoresRule
	coresByKind map[string]compiledCoresRule
}

// Compile validates the layout and compiles its patterns.
func (l Layout) Compile() (*Positional, error) {
	if l.Trials < 1 {
		return nil, errors.Errorf("layout needs at least one trial, got %d", l.Trials)
	}
	if l.Trials > 1 && l.Stride < 1 {
		return nil, errors.Errorf("layout with %d trials needs a positive stride", l.Trials)
	}

	var err error
	positional := &Positional{layout: l, coresByKind: map[string]compiledCoresRule{}}
	if positional.time, err = compileRule("time", l.Time, true); err != nil {
		return nil, err
	}
	if positional.kind, err = compileRule("kind", l.Kind, false); err != nil {
		return nil, err
	}
	if positional.size, err = compileRule("size", l.Size, true); err != nil {
		return nil, err
	}

	if l.Cores != (CoresRule{}) {
		cores, err := compileCoresRule("cores", l.Cores)
		if err != nil {
			return nil, err
		}
		positional.cores = &cores
	}
	for kind, rule := range l.CoresByKind {
		cores, err := compileCoresRule("cores of "+kind, rule)
		if err != nil {
			return nil, err
		}
		positional.coresByKind[kind] = cores
	}
	if positional.cores == nil && len(positional.coresByKind) == 0 {
		return nil, errors.New("layout has no cores rule")
	}

	return positional, nil
}

// MustCompile is like Compile but panics on invalid layouts.
func (l Layout) MustCompile() *Positional {
	positional, err := l.Compile()
	if err != nil {
		panic(err)
	}
	return positional
}

// Trials returns the number of trials expected in every log.
func (p *Positional) Trials() int {
	return p.layout.Trials
}

// Parse implements Parser.
func (p *Positional) Parse(name string, lines []string) (results.Row, error) {
	times := make([]float64, 0, p.layout.Trials)
	for trial := 0; trial < p.layout.Trials; trial++ {
		line := p.time.line + trial*p.layout.Stride
		value, err := p.time.extract(name, lines, line)
		if err != nil {
			return results.Row{}, err
		}
		time, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return results.Row{}, &MismatchError{File: name, Line: line, Pattern: p.time.pattern, Text: lines[line]}
		}
		times = append(times, time)
	}
	mean, err := Average(times)
	if err != nil {
		return results.Row{}, errors.Wrap(err, name)
	}

	marker, err := p.kind.extract(name, lines, p.kind.line)
	if err != nil {
		return results.Row{}, err
	}
	kind := p.resolveKind(marker)

	sizeValue, err := p.size.extract(name, lines, p.size.line)
	if err != nil {
		return results.Row{}, err
	}
	size, err := strconv.Atoi(sizeValue)
	if err != nil {
		return results.Row{}, &MismatchError{File: name, Line: p.size.line, Pattern: p.size.pattern, Text: lines[p.size.line]}
	}

	cores, err := p.extractCores(name, lines, kind)
	if err != nil {
		return results.Row{}, err
	}

	row := results.Row{Kind: kind, Cores: cores, Size: size, Time: mean}
	if p.layout.Speed {
		if row.Speed, err = Speed(size, mean); err != nil {
			return results.Row{}, &MismatchError{File: name, Line: p.time.line, Pattern: p.time.pattern, Text: lines[p.time.line], Reason: err.Error()}
		}
		row.HasSpeed = true
	}
	return row, nil
}

func (p *Positional) resolveKind(marker string) string {
	if kind, ok := p.layout.Kinds[marker]; ok {
		return kind
	}
	if p.layout.DefaultKind != "" {
		return p.layout.DefaultKind
	}
	return marker
}

func (p *Positional) extractCores(name string, lines []string, kind string) (int, error) {
	rule, ok := p.coresByKind[kind]
	if !ok {
		if p.cores == nil {
			return 0, errors.Errorf("%s: no cores rule for kind %q", name, kind)
		}
		rule = *p.cores
	}

	if rule.fixed > 0 {
		return rule.fixed, nil
	}

	value, err := rule.rule.extract(name, lines, rule.rule.line)
	if err != nil {
		return 0, err
	}
	cores, err := strconv.Atoi(value)
	if err != nil {
		return 0, &MismatchError{File: name, Line: rule.rule.line, Pattern: rule.rule.pattern, Text: lines[rule.rule.line]}
	}
	return cores, nil
}
