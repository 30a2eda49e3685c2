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

package experiment

// Exit codes as in sysexits.h.
const (
	// ExUsage means the command was used incorrectly.
	ExUsage = 64
	// ExDataErr means the input data was incorrect.
	ExDataErr = 65
	// ExUnavailable means a required service is unavailable.
	ExUnavailable = 69
	// ExSoftware means an internal software error.
	ExSoftware = 70
)
