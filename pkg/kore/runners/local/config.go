// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package local

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinkercat/gremlin-kore/pkg/kore/core/computer"
	"github.com/tinkercat/gremlin-kore/pkg/kore/internal/errors"
)

// Config holds the runner settings that can be read from a YAML document.
// Zero values leave the computer defaults in place.
//
//	workers: 4
//	maxIterations: 20
//	resultGraph: new
//	persist: vertexProperties
//	metrics: true
type Config struct {
	Workers       int    `yaml:"workers"`
	MaxIterations int    `yaml:"maxIterations"`
	ResultGraph   string `yaml:"resultGraph"`
	Persist       string `yaml:"persist"`
	Metrics       bool   `yaml:"metrics"`
}

// ParseConfig decodes a Config from r. Unknown keys are an error.
func ParseConfig(r io.Reader) (Config, error) {
	var c Config
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decoding runner config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and decodes the Config in the named file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "opening runner config %v", path)
	}
	defer f.Close()
	c, err := ParseConfig(f)
	return c, errors.WithContextf(err, "loading %v", path)
}

// Validate checks that the configured values are in range and that the
// result graph and persist names parse.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.MaxIterations < 0 {
		return errors.Errorf("maxIterations must be non-negative, got %d", c.MaxIterations)
	}
	if c.ResultGraph != "" {
		if _, err := computer.ParseResultGraph(c.ResultGraph); err != nil {
			return err
		}
	}
	if c.Persist != "" {
		if _, err := computer.ParsePersist(c.Persist); err != nil {
			return err
		}
	}
	return nil
}

// Apply configures gc with the non-zero values of c.
func (c Config) Apply(gc *Computer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Workers > 0 {
		gc.Workers(c.Workers)
	}
	if c.MaxIterations > 0 {
		gc.MaxIterations(c.MaxIterations)
	}
	if c.ResultGraph != "" {
		r, _ := computer.ParseResultGraph(c.ResultGraph)
		gc.Result(r)
	}
	if c.Persist != "" {
		p, _ := computer.ParsePersist(c.Persist)
		gc.Persist(p)
	}
	if c.Metrics {
		gc.WithMetrics(DefaultMetrics())
	}
	return nil
}
