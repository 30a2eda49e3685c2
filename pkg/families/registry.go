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
	"os"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Profile is a YAML file describing families.
type Profile struct {
	Families []Family `yaml:"families"`
}

// LoadProfile reads and validates families from a YAML profile.
func LoadProfile(path string) ([]Family, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read profile %q", path)
	}
	return ParseProfile(content)
}

// ParseProfile parses and validates families from YAML content.
func ParseProfile(content []byte) ([]Family, error) {
	profile := Profile{}
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return nil, errors.Wrap(err, "cannot parse profile")
	}

	seen := map[string]bool{}
	for _, family := range profile.Families {
		if err := family.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid profile")
		}
		if seen[family.Name] {
			return nil, errors.Errorf("invalid profile: family %q is defined twice", family.Name)
		}
		seen[family.Name] = true
	}
	return profile.Families, nil
}

// Registry holds families by name.
type Registry struct {
	families map[string]Family
}

// NewRegistry returns a registry of built-in families.
func NewRegistry() *Registry {
	registry := &Registry{families: map[string]Family{}}
	for _, family := range Builtins() {
		registry.families[family.Name] = family
	}
	return registry
}

// Load adds families of a profile, replacing families of the same name.
func (r *Registry) Load(path string) error {
	loaded, err := LoadProfile(path)
	if err != nil {
		return err
	}
	for _, family := range loaded {
		if _, ok := r.families[family.Name]; ok {
			log.Infof("Family %q from %q replaces the built-in one", family.Name, path)
		}
		r.families[family.Name] = family
	}
	return nil
}

// Get returns the named family.
func (r *Registry) Get(name string) (Family, error) {
	family, ok := r.families[name]
	if !ok {
		return Family{}, errors.Errorf("unknown family %q, available: %v", name, r.Names())
	}
	return family, nil
}

// Names returns sorted family names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named family from built-ins and the optional profile.
func Lookup(name, profilePath string) (Family, error) {
	registry := NewRegistry()
	if profilePath != "" {
		if err := registry.Load(profilePath); err != nil {
			return Family{}, err
		}
	}
	return registry.Get(name)
}
