// Copyright 2024 The Termcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import "github.com/BurntSushi/toml"

// demoConfig is the demo binary's own on-disk configuration: which scene
// to run and at what frame rate. The termcore library itself persists
// nothing (spec §6); this file format lives entirely at the demo's edge.
type demoConfig struct {
	Scene string `toml:"scene"`
	FPS   int    `toml:"fps"`
}

// defaultDemoConfig is used when no config file is given or it can't be
// read.
func defaultDemoConfig() demoConfig {
	return demoConfig{Scene: "hello", FPS: 30}
}

// loadDemoConfig reads path as TOML, falling back to defaultDemoConfig
// for any field the file doesn't set and returning the defaults
// unmodified if path can't be opened at all.
func loadDemoConfig(path string) demoConfig {
	cfg := defaultDemoConfig()
	if path == "" {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return defaultDemoConfig()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultDemoConfig().FPS
	}
	return cfg
}
