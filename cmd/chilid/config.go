// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// config is the optional bootstrap file loaded via --config: table
// roots to load_par_df at startup and jobs to register before the
// scheduler starts ticking. It is not mandatory for --dir/--interval
// to work; it exists so a deployment can restate table roots and
// recurring jobs declaratively instead of via a --kwargs script.
type config struct {
	Tables []string `yaml:"tables"`
	Jobs []jobConfig `yaml:"jobs"`
}

type jobConfig struct {
	Name string `yaml:"name"`
	IntervalMs int64 `yaml:"interval_ms"`
	Description string `yaml:"description"`
}

func loadConfig(path string) (*config, error) {
	if path == "" {
		return &config{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
