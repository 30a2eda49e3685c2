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
	"github.com/hpc-bench/benchsweep/pkg/logparse"
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/hpc-bench/benchsweep/pkg/sweep"
)

var (
	sequentialResources = scheduler.Resources{Nodes: 1, Tasks: 1, CPUsPerTask: 1, Memory: "1000mb", TimeLimit: "00:10:00", Partition: "Debug"}
	parallelResources   = scheduler.Resources{Nodes: 1, Tasks: 1, CPUsPerTask: 1, Memory: "1000mb", TimeLimit: "00:10:00", Partition: "Project"}
	gpuResources        = scheduler.Resources{Tasks: 1, GRES: "gpu:1", GPUsPerTask: 1, TimeLimit: "0-00:10:00", Partition: "Project"}
)

const (
	wideCores = "1,2,4,8,16,32,40"
)

// OddEvenSort runs a sequential and an MPI odd-even transposition sort.
func OddEvenSort() Family {
	return Family{
		Name:             "oddeven-sort",
		Description:      "Odd-even transposition sort, sequential and MPI",
		BuildDir:         "build",
		TrialRepeatCount: 1,
		Sizes: []int{
			100, 200, 300, 400, 500,
			10000, 20000, 30000, 40000, 50000,
			100000, 200000, 300000, 400000, 500000,
		},
		Input: &Input{
			Dir:     "test_data",
			Pattern: "{{.Size}}.in",
			Command: "{{.Build}}/gen {{.Size}} {{.Path}}",
		},
		Variants: []Variant{
			{
				Name:      "seq",
				Command:   "{{.Build}}/ssort {{.Size}} {{.Input}}",
				Resources: scheduler.Resources{TimeLimit: "00:60:00"}.Merge(sequentialResources),
			},
			{
				Name:      "par",
				Command:   "mpirun -np={{.Cores}} {{.Build}}/psort {{.Size}} {{.Input}}",
				Cores:     "1,2,4,8,16",
				CoresAs:   sweep.CoresAsTasks,
				Resources: parallelResources,
			},
		},
		Header: "type, cores, array size, time (s)",
		Layout: &logparse.Layout{
			Time:        logparse.Rule{Line: 5, Pattern: `Run Time: (.+) seconds`},
			Kind:        logparse.Rule{Line: 0},
			Kinds:       map[string]string{"seq": "seq"},
			DefaultKind: "par",
			Size:        logparse.Rule{Line: 1, Pattern: `actual number of elements:(\d+)`},
			CoresByKind: map[string]logparse.CoresRule{
				"seq": {Fixed: 1},
				"par": {Rule: logparse.Rule{Line: 7, Pattern: `Process Number: (\d+)`}},
			},
		},
	}
}

// Mandelbrot renders the Mandelbrot set sequentially, with pthreads and with MPI.
func Mandelbrot() Family {
	return Family{
		Name:        "mandelbrot",
		Description: "Mandelbrot set, sequential, pthread and MPI",
		BuildDir:    "cmake-build-release",
		JobName:     `{{.Family}}_{{.Variant}}_{{.Size}}_{{.Param "iterations"}}_{{.Cores}}`,
		Sizes:       []int{800, 1600, 3200},
		Parameters:  []Parameter{{Name: "iterations", Values: "100"}},
		Variants: []Variant{
			{
				Name:      "sequential",
				Command:   `{{.Build}}/sequential {{.Size}} {{.Size}} {{.Param "iterations"}}`,
				Resources: sequentialResources,
			},
			{
				Name:      "pthread",
				Command:   `{{.Build}}/pthread {{.Size}} {{.Size}} {{.Param "iterations"}} {{.Cores}}`,
				Cores:     "1,2,4,8,16,20",
				CoresAs:   sweep.CoresAsCPUs,
				Resources: parallelResources,
			},
			{
				Name:      "mpi",
				Command:   `mpirun -np={{.Cores}} {{.Build}}/mpi {{.Size}} {{.Size}} {{.Param "iterations"}}`,
				Cores:     "1-20",
				CoresAs:   sweep.CoresAsTasks,
				Resources: parallelResources,
			},
		},
		Speed: true,
		Layout: &logparse.Layout{
			Stride:      7,
			Time:        logparse.Rule{Line: 3, Pattern: `Run Time: (.+) seconds`},
			Kind:        logparse.Rule{Line: 2, Pattern: `Assignment 2: (.+)`},
			Kinds:       map[string]string{"Sequential": "Sequential", "Pthread": "Pthread"},
			DefaultKind: "MPI",
			Size:        logparse.Rule{Line: 4, Pattern: `Problem Size: (\d+) \* \d+, \d+`},
			CoresByKind: map[string]logparse.CoresRule{
				"Sequential": {Fixed: 1},
				"Pthread":    {Rule: logparse.Rule{Line: 6, Pattern: `Thread Number: (\d+)`}},
				"MPI":        {Rule: logparse.Rule{Line: 6, Pattern: `Process Number: (\d+)`}},
			},
		},
	}
}

// NBody simulates gravitating bodies in every supported parallel model.
func NBody() Family {
	return Family{
		Name:        "nbody",
		Description: "N-body simulation, sequential, pthread, OpenMP, MPI and CUDA",
		BuildDir:    "build-release/src",
		Sizes:       []int{200, 1000, 5000},
		Parameters:  []Parameter{{Name: "iterations", Values: "100"}},
		Variants: []Variant{
			{
				Name:      "sequential",
				Command:   `{{.Build}}/sequential {{.Size}} {{.Param "iterations"}}`,
				Resources: sequentialResources,
			},
			{
				Name:      "pthread",
				Command:   `{{.Build}}/pthread {{.Size}} {{.Param "iterations"}} {{.Cores}}`,
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsCPUs,
				Resources: parallelResources,
			},
			{
				Name:      "openmp",
				Command:   `{{.Build}}/openmp {{.Size}} {{.Param "iterations"}} {{.Cores}}`,
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsCPUs,
				Resources: parallelResources,
			},
			{
				Name:      "mpi",
				Command:   `mpirun -np={{.Cores}} {{.Build}}/mpi {{.Size}} {{.Param "iterations"}}`,
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsTasks,
				Resources: parallelResources,
			},
			{
				Name:      "cuda",
				Command:   `{{.Build}}/cuda {{.Size}} {{.Param "iterations"}}`,
				Resources: gpuResources,
			},
		},
		Layout: &logparse.Layout{
			Stride: 106,
			Time:   logparse.Rule{Line: 100, Pattern: `Total time: (.+)`},
			Kind:   logparse.Rule{Line: 103, Pattern: `Assignment 2: N Body Simulation (.+) Implementation`},
			Size:   logparse.Rule{Line: 104, Pattern: `Number of Bodies: (\d+)`},
			Cores:  logparse.CoresRule{Rule: logparse.Rule{Line: 105, Pattern: `Number of Cores: (\d+)`}},
		},
	}
}

// Heat simulates heat distribution on a square plate.
func Heat() Family {
	return Family{
		Name:        "heat",
		Description: "Heat distribution, sequential, pthread, OpenMP, MPI, MPI+OpenMP and CUDA",
		BuildDir:    "build-release-nogui/src",
		Sizes:       []int{4000},
		Variants: []Variant{
			{
				Name:      "sequential",
				Command:   "{{.Build}}/sequential {{.Size}}",
				Resources: sequentialResources,
			},
			{
				Name:      "pthread",
				Command:   "{{.Build}}/pthread {{.Size}} {{.Cores}}",
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsCPUs,
				Resources: parallelResources,
			},
			{
				Name:      "openmp",
				Command:   "{{.Build}}/openmp {{.Size}} {{.Cores}}",
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsTasks,
				Resources: parallelResources,
			},
			{
				Name:      "mpi",
				Command:   "mpirun -np={{.Cores}} {{.Build}}/mpi {{.Size}}",
				Cores:     wideCores,
				CoresAs:   sweep.CoresAsTasks,
				Resources: parallelResources,
			},
			{
				Name:      "mpiomp",
				Command:   "mpirun -np={{.Cores}} {{.Build}}/mpiomp {{.Size}} 4",
				Cores:     "1,2,4,8,10",
				CoresAs:   sweep.CoresAsTasks,
				Resources: scheduler.Resources{CPUsPerTask: 4}.Merge(parallelResources),
			},
			{
				Name:      "cuda",
				Command:   "{{.Build}}/cuda {{.Size}}",
				Resources: gpuResources,
			},
		},
		Layout: &logparse.Layout{
			Stride: 6,
			Time:   logparse.Rule{Line: 0, Pattern: `Converge after \d+ iterations, elapsed time: (.+), average computation time: (.+)`},
			Kind:   logparse.Rule{Line: 3, Pattern: `Assignment 4: Heat Distribution (.+) Implementation`},
			Size:   logparse.Rule{Line: 4, Pattern: `Problem Size: (\d+)`},
			Cores:  logparse.CoresRule{Rule: logparse.Rule{Line: 5, Pattern: `Number of Cores: (\d+)`}},
		},
	}
}

// Structured reads self describing "@result key=value" lines and has no
// built-in variants; profiles add them.
func Structured() Family {
	return Family{
		Name:        "structured",
		Description: "Any benchmark printing @result kind=.. cores=.. size=.. time=.. lines",
	}
}

// Builtins returns every built-in family.
func Builtins() []Family {
	return []Family{OddEvenSort(), Mandelbrot(), NBody(), Heat(), Structured()}
}
