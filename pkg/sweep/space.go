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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Space is the cross product of its axes.
type Space struct {
	Axes []Axis
}

// Validate rejects spaces which would produce no combination.
func (s Space) Validate() error {
	if len(s.Axes) == 0 {
		return errors.New("sweep space has no axes")
	}

	seen := map[string]bool{}
	for _, axis := range s.Axes {
		if axis.Name == "" {
			return errors.New("sweep axis has no name")
		}
		if seen[axis.Name] {
			return errors.Errorf("sweep axis %q is defined twice", axis.Name)
		}
		seen[axis.Name] = true

		if len(axis.Values) == 0 {
			return errors.Errorf("sweep axis %q is empty", axis.Name)
		}
	}
	return nil
}

// Count returns the number of combinations in the space.
func (s Space) Count() int {
	if len(s.Axes) == 0 {
		return 0
	}

	count := 1
	for _, axis := range s.Axes {
		count *= len(axis.Values)
	}
	return count
}

// Each calls fn for every combination, first axis varying slowest.
// Iteration stops at the first error returned by fn.
func (s Space) Each(fn func(Combination) error) error {
	if err := s.Validate(); err != nil {
		return err
	}

	names := make([]string, len(s.Axes))
	for i, axis := range s.Axes {
		names[i] = axis.Name
	}

	indexes := make([]int, len(s.Axes))
	for {
		values := make([]string, len(s.Axes))
		for i, axis := range s.Axes {
			values[i] = axis.Values[indexes[i]]
		}
		if err := fn(Combination{names: names, values: values}); err != nil {
			return err
		}

		// Odometer increment from the last axis.
		i := len(indexes) - 1
		for ; i >= 0; i-- {
			indexes[i]++
			if indexes[i] < len(s.Axes[i].Values) {
				break
			}
			indexes[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// Combination is one point of a Space.
type Combination struct {
	names  []string
	values []string
}

// Value returns the value of the named axis.
func (c Combination) Value(name string) (string, bool) {
	for i, n := range c.names {
		if n == name {
			return c.values[i], true
		}
	}
	return "", false
}

// Int returns the value of the named axis as an integer.
func (c Combination) Int(name string) (int, error) {
	value, ok := c.Value(name)
	if !ok {
		return 0, errors.Errorf("combination %s has no axis %q", c, name)
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "axis %q of combination %s is not an integer", name, c)
	}
	return i, nil
}

// String returns "name=value" pairs in axis order.
func (c Combination) String() string {
	pairs := make([]string, len(c.names))
	for i := range c.names {
		pairs[i] = c.names[i] + "=" + c.values[i]
	}
	return strings.Join(pairs, ",")
}
