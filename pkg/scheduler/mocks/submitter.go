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

package mocks

import (
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/stretchr/testify/mock"
)

// Submitter is a mock of scheduler.Submitter.
type Submitter struct {
	mock.Mock
}

// Submit provides a mock function with given fields: descriptorPath
func (_m *Submitter) Submit(descriptorPath string) (scheduler.Submission, error) {
	ret := _m.Called(descriptorPath)

	var r0 scheduler.Submission
	if rf, ok := ret.Get(0).(func(string) scheduler.Submission); ok {
		r0 = rf(descriptorPath)
	} else {
		r0 = ret.Get(0).(scheduler.Submission)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(descriptorPath)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
