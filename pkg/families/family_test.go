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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hpc-bench/benchsweep/pkg/inputs"
	"github.com/hpc-bench/benchsweep/pkg/results"
	"github.com/hpc-bench/benchsweep/pkg/scheduler"
	"github.com/hpc-bench/benchsweep/pkg/sweep"
	. "github.com/smartystreets/goconvey/convey"
)

func nbodyLog(kind string, bodies, cores int, times ...float64) []string {
	var lines []string
	for _, time := range times {
		block := make([]string, 106)
		for i := range block {
			block[i] = fmt.Sprintf("Iteration %d", i)
		}
		block[100] = fmt.Sprintf("Total time: %v", time)
		block[101] = "Student ID: 000000000"
		block[102] = "Name: Student"
		block[103] = fmt.Sprintf("Assignment 2: N Body Simulation %s Implementation", kind)
		block[104] = fmt.Sprintf("Number of Bodies: %d", bodies)
		block[105] = fmt.Sprintf("Number of Cores: %d", cores)
		lines = append(lines, block...)
	}
	return lines
}

func heatLog(kind string, size, cores int, times ...float64) []string {
	var lines []string
	for _, time := range times {
		lines = append(lines,
			fmt.Sprintf("Converge after 1234 iterations, elapsed time: %v, average computation time: 0.001", time),
			"Student ID: 000000000",
			"Name: Student",
			fmt.Sprintf("Assignment 4: Heat Distribution %s Implementation", kind),
			fmt.Sprintf("Problem Size: %d", size),
			fmt.Sprintf("Number of Cores: %d", cores),
		)
	}
	return lines
}

func TestBuiltins(t *testing.T) {
	Convey("Every built-in family should be valid", t, func() {
		for _, family := range Builtins() {
			So(family.Validate(), ShouldBeNil)
		}
	})

	Convey("Registry should expose built-in families by name", t, func() {
		registry := NewRegistry()
		So(registry.Names(), ShouldResemble, []string{"heat", "mandelbrot", "nbody", "oddeven-sort", "structured"})

		_, err := registry.Get("quicksort")
		So(err, ShouldNotBeNil)
	})

	Convey("Odd-even sort sweep should match the cluster scripts", t, func() {
		family := OddEvenSort()
		variants, err := family.SweepVariants(nil)
		So(err, ShouldBeNil)
		So(variants, ShouldHaveLength, 2)

		generator := &sweep.Generator{
			Family:           family.Name,
			Sizes:            family.Sizes,
			TrialRepeatCount: family.Trials(),
			BuildDir:         family.BuildDir,
		}
		So(generator.Total(variants), ShouldEqual, 15+15*5)

		var descriptors []scheduler.Descriptor
		err = generator.Space(variants[1]).Each(func(c sweep.Combination) error {
			descriptor, err := generator.Render(variants[1], c)
			descriptors = append(descriptors, descriptor)
			return err
		})
		So(err, ShouldBeNil)

		last := descriptors[len(descriptors)-1]
		So(last.Commands, ShouldResemble, []string{"mpirun -np=16 build/psort 500000 "})
		So(last.Resources, ShouldResemble, scheduler.Resources{
			Nodes: 1, Tasks: 16, CPUsPerTask: 1, Memory: "1000mb", TimeLimit: "00:10:00", Partition: "Project",
		})

		So(variants[0].Resources.TimeLimit, ShouldEqual, "00:60:00")
		So(variants[0].Resources.Partition, ShouldEqual, "Debug")
	})

	Convey("Sort logs should be parsed with one trial", t, func() {
		family := OddEvenSort()
		parser, err := family.Parser(0)
		So(err, ShouldBeNil)

		log := strings.Split("par\nactual number of elements:20000\n\n\n\nRun Time: 0.125 seconds\n\nProcess Number: 8\n", "\n")
		row, err := parser.Parse("par.out", log)
		So(err, ShouldBeNil)
		So(row.String(), ShouldEqual, "par, 8, 20000, 0.125")
		So(family.TableHeader(), ShouldEqual, "type, cores, array size, time (s)")
	})

	Convey("Mandelbrot should derive speed", t, func() {
		family := Mandelbrot()
		So(family.TableHeader(), ShouldEqual, "type, cores, size, time (s), speed (pixels/s)")

		variants, err := family.SweepVariants([]string{"mpi"})
		So(err, ShouldBeNil)
		So(variants, ShouldHaveLength, 1)
		So(variants[0].Cores, ShouldHaveLength, 20)

		extra, err := family.Extra()
		So(err, ShouldBeNil)
		So(extra, ShouldResemble, []sweep.Axis{{Name: "iterations", Values: []string{"100"}}})

		parser, err := family.Parser(0)
		So(err, ShouldBeNil)
		var log []string
		for trial := 0; trial < 5; trial++ {
			log = append(log,
				"Student ID: 000000000", "Name: Student", "Assignment 2: Pthread",
				"Run Time: 0.5 seconds", "Problem Size: 800 * 800, 100", "", "Thread Number: 4")
		}
		row, err := parser.Parse("pthread.out", log)
		So(err, ShouldBeNil)
		So(row.String(), ShouldEqual, "Pthread, 4, 800, 0.5, 1280000.0")
	})

	Convey("N-body logs should be parsed at a 106 lines stride", t, func() {
		family := NBody()
		parser, err := family.Parser(0)
		So(err, ShouldBeNil)

		row, err := parser.Parse("mpi.out", nbodyLog("MPI", 1000, 8, 2, 4, 6, 8, 10))
		So(err, ShouldBeNil)
		So(row, ShouldResemble, results.Row{Kind: "MPI", Cores: 8, Size: 1000, Time: 6.0})
	})

	Convey("Heat logs should be parsed at a 6 lines stride", t, func() {
		family := Heat()
		parser, err := family.Parser(0)
		So(err, ShouldBeNil)

		row, err := parser.Parse("seq.out", heatLog("Sequential", 4000, 1, 1, 1, 1, 1, 1))
		So(err, ShouldBeNil)
		So(row.String(), ShouldEqual, "Sequential, 1, 4000, 1.0")

		Convey("Trial count can be overridden", func() {
			parser, err := family.Parser(2)
			So(err, ShouldBeNil)
			row, err := parser.Parse("omp.out", heatLog("OpenMP", 4000, 8, 1, 3))
			So(err, ShouldBeNil)
			So(row.String(), ShouldEqual, "OpenMP, 8, 4000, 2.0")
		})

		Convey("MPI with OpenMP should request four cpus per task", func() {
			variants, err := family.SweepVariants([]string{"mpiomp"})
			So(err, ShouldBeNil)
			So(variants[0].Resources.CPUsPerTask, ShouldEqual, 4)
			So(variants[0].CoresAs, ShouldEqual, sweep.CoresAsTasks)
		})
	})

	Convey("Unknown variants should be rejected", t, func() {
		_, err := Heat().SweepVariants([]string{"mpi", "fortran", "opencl"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "fortran, opencl")
	})

	Convey("Structured family should read key=value records", t, func() {
		parser, err := Structured().Parser(0)
		So(err, ShouldBeNil)
		row, err := parser.Parse("any.out", []string{"@result kind=MPI cores=2 size=10 time=1.5"})
		So(err, ShouldBeNil)
		So(row.String(), ShouldEqual, "MPI, 2, 10, 1.5")
	})

	Convey("Inputs should be provided only for families with input files", t, func() {
		So(Heat().Inputs(nil, "", "build", 0), ShouldBeNil)

		resolver := OddEvenSort().Inputs(nil, "/data", "build", 2*time.Minute)
		So(resolver, ShouldNotBeNil)
		generator := resolver.(*inputs.Generator)
		So(generator.Dir, ShouldEqual, "/data")
		So(generator.Timeout, ShouldEqual, 2*time.Minute)

		resolver = OddEvenSort().Inputs(nil, "", "build", 0)
		So(resolver.(*inputs.Generator).Dir, ShouldEqual, "test_data")
	})
}

const profile = `
families:
  - name: heat
    build_dir: bin
    trial_repeat_count: 3
    sizes: [1000, 2000]
    resources:
      nodes: 1
      mem: 2000mb
      time: "00:05:00"
      partition: Project
    variants:
      - name: mpi
        command: "mpirun -np={{.Cores}} {{.Build}}/heat_mpi {{.Size}}"
        cores: "1-4"
        cores_as: ntasks
    layout:
      stride: 6
      time: {line: 0, pattern: 'Converge after \d+ iterations, elapsed time: (.+), average'}
      kind: {line: 3, pattern: 'Assignment 4: Heat Distribution (.+) Implementation'}
      size: {line: 4, pattern: 'Problem Size: (\d+)'}
      cores: {line: 5, pattern: 'Number of Cores: (\d+)'}
  - name: stencil
    sizes: [64]
    speed: true
    variants:
      - name: cuda
        command: "{{.Build}}/stencil {{.Size}}"
        resources: {ntasks: 1, gres: "gpu:1", gpus_per_task: 1}
`

func TestProfile(t *testing.T) {
	Convey("While loading a profile", t, func() {
		dir, err := os.MkdirTemp("", "profile")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "families.yaml")
		So(os.WriteFile(path, []byte(profile), 0644), ShouldBeNil)

		Convey("Families should be decoded", func() {
			loaded, err := LoadProfile(path)
			So(err, ShouldBeNil)
			So(loaded, ShouldHaveLength, 2)

			heat := loaded[0]
			So(heat.Trials(), ShouldEqual, 3)
			variants, err := heat.SweepVariants(nil)
			So(err, ShouldBeNil)
			So(variants[0].Cores, ShouldResemble, []int{1, 2, 3, 4})
			So(variants[0].Resources, ShouldResemble, scheduler.Resources{
				Nodes: 1, Memory: "2000mb", TimeLimit: "00:05:00", Partition: "Project",
			})

			parser, err := heat.Parser(0)
			So(err, ShouldBeNil)
			row, err := parser.Parse("mpi.out", heatLog("MPI", 1000, 4, 3, 3, 3))
			So(err, ShouldBeNil)
			So(row.String(), ShouldEqual, "MPI, 4, 1000, 3.0")

			stencil := loaded[1]
			So(stencil.Layout, ShouldBeNil)
			So(stencil.TableHeader(), ShouldEndWith, "speed (pixels/s)")
			So(stencil.Variants[0].Resources.GRES, ShouldEqual, "gpu:1")
		})

		Convey("Profile families should replace built-ins of the same name", func() {
			family, err := Lookup("heat", path)
			So(err, ShouldBeNil)
			So(family.BuildDir, ShouldEqual, "bin")

			family, err = Lookup("stencil", path)
			So(err, ShouldBeNil)
			So(family.Name, ShouldEqual, "stencil")

			family, err = Lookup("nbody", path)
			So(err, ShouldBeNil)
			So(family.BuildDir, ShouldEqual, "build-release/src")
		})

		Convey("Invalid profiles should be rejected", func() {
			for _, content := range []string{
				"families: [",
				"families:\n  - sizes: [1]\n",
				"families:\n  - name: a\n    variants:\n      - name: x\n",
				"families:\n  - name: a\n  - name: a\n",
				"families:\n  - name: a\n    variants:\n      - {name: x, command: y, cores: '4-1'}\n",
				"families:\n  - name: a\n    layout: {trials: 1, time: {line: 0, pattern: '('}}\n",
			} {
				_, err := ParseProfile([]byte(content))
				So(err, ShouldNotBeNil)
			}

			_, err := Lookup("heat", filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
