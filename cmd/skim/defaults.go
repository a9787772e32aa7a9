// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package main

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/SnellerInc/skim/pipe"
	"github.com/SnellerInc/skim/rank"
)

// defaults is the optional YAML file named by
// $SKIM_CONFIG. It only supplies defaults for the
// presentation options; anything given on the command
// line wins, and a default never participates in the
// option-exclusion rules (a configured head default is
// ignored for sampling and aggregation runs rather than
// rejected).
type defaults struct {
	Table    bool `json:"table"`
	NoHeader bool `json:"no-header"`
	Head     *int `json:"head"`
}

func applyDefaults(cfg *pipe.Config, seen *explicit, path string) error {
	if path == "" {
		return nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %s", err)
	}
	var d defaults
	if err := yaml.UnmarshalStrict(buf, &d); err != nil {
		return fmt.Errorf("config %s: %s", path, err)
	}
	if d.Table && !seen.table {
		cfg.Table = true
	}
	if d.NoHeader && !seen.noHeader {
		cfg.NoHeader = true
	}
	if d.Head != nil && !seen.head && *d.Head >= 0 {
		// head is a hard exclusion for sampling and
		// aggregation, so a configured default only
		// applies where --head itself could
		if cfg.SampleN == 0 && len(cfg.Aggs) == 0 {
			cfg.Head = *d.Head
			if cfg.Top != "" && cfg.Head > rank.MaxLimit {
				cfg.Head = rank.MaxLimit
			}
		}
	}
	return nil
}
