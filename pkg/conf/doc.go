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

/*
Package conf wraps kingpin flags to provide:
- environment parsing with the BENCHSWEEP_ prefix,
- config dump as a shell script (grouped by registration order),
- ability to extract current values of registered flags,
- SliceFlag accepting repeated and comma separated values,
- predefined log level flag (logrus integration).
*/
package conf
