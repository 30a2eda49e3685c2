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

// Well-known axis names.
const (
	AxisCores = "cores"
	AxisSize  = "size"
)

// Axis is a named, finite list of parameter values.
type Axis struct {
	Name   string
	Values []string
}

// IntAxis builds an axis of integer values.
func IntAxis(name string, values ...int) Axis {
	axis := Axis{Name: name}
	for _, v := range values {
		axis.Values = append(axis.Values, strconv.Itoa(v))
	}
	return axis
}

// ParseAxis builds an axis from a set spec ("1,2,4"), a range spec ("1-20")
// or a mix of both ("1,2,8-10").
func ParseAxis(name string, spec string) (Axis, error) {
	axis := Axis{Name: name}
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if isRangeSpec(item) {
			from, to, err := parseRangeSpec(item)
			if err != nil {
				return Axis{}, errors.Wrapf(err, "axis %q", name)
			}
			for i := from; i <= to; i++ {
				axis.Values = append(axis.Values, strconv.Itoa(i))
			}
			continue
		}
		axis.Values = append(axis.Values, item)
	}

	if len(axis.Values) == 0 {
		return Axis{}, errors.Errorf("axis %q has no values in %q", name, spec)
	}
	return axis, nil
}

func isRangeSpec(spec string) bool {
	return strings.Contains(spec, "-") && !strings.HasPrefix(spec, "-")
}

func parseRangeSpec(rangeSpec string) (from, to int, err error) {
	boundaries := strings.SplitN(rangeSpec, "-", 2)
	from, err = strconv.Atoi(strings.TrimSpace(boundaries[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %q", rangeSpec)
	}
	to, err = strconv.Atoi(strings.TrimSpace(boundaries[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %q", rangeSpec)
	}
	if to < from {
		return 0, 0, errors.Errorf("invalid range %q: %d is lower than %d", rangeSpec, to, from)
	}
	return from, to, nil
}
