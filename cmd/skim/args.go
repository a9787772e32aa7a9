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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/skim/aggr"
	"github.com/SnellerInc/skim/filter"
	"github.com/SnellerInc/skim/pipe"
	"github.com/SnellerInc/skim/rank"
)

// the arguments are lexed by hand: -n/--head takes an
// OPTIONAL value (defaulting to 10 when the next token is
// another flag or absent), which neither flag nor pflag
// can express for a non-boolean flag

var (
	errHelp    = errors.New("help requested")
	errVersion = errors.New("version requested")
)

// explicit records which options appeared on the command
// line, so that config-file defaults never override them
// and never trip the exclusion checks on their own.
type explicit struct {
	head, table, noHeader bool
}

func parseArgs(argv []string) (*pipe.Config, *explicit, error) {
	cfg := &pipe.Config{Head: -1}
	seen := &explicit{}
	i := 0
	next := func(name string) (string, error) {
		if i == len(argv) {
			return "", fmt.Errorf("option %s needs a value", name)
		}
		v := argv[i]
		i++
		return v, nil
	}
	for i < len(argv) {
		arg := argv[i]
		i++
		name, inline, hasInline := cutEq(arg)
		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			return next(name)
		}
		switch name {
		case "-s", "--select":
			v, err := value()
			if err != nil {
				return nil, nil, err
			}
			cfg.Select = append(cfg.Select, strings.Split(v, ",")...)
		case "-f", "--filter":
			v, err := value()
			if err != nil {
				return nil, nil, err
			}
			p, err := filter.Parse(v)
			if err != nil {
				return nil, nil, err
			}
			cfg.Filters = append(cfg.Filters, p)
		case "-n", "--head":
			seen.head = true
			switch {
			case hasInline:
				n, err := parseCount(inline)
				if err != nil {
					return nil, nil, fmt.Errorf("bad head count %q", inline)
				}
				cfg.Head = n
			case i < len(argv) && isCount(argv[i]):
				n, _ := parseCount(argv[i])
				i++
				cfg.Head = n
			default:
				cfg.Head = pipe.DefaultLimit
			}
		case "--top":
			v, err := value()
			if err != nil {
				return nil, nil, err
			}
			cfg.Top = v
		case "--sample":
			v, err := value()
			if err != nil {
				return nil, nil, err
			}
			n, err := parseCount(v)
			if err != nil || n < 1 {
				return nil, nil, fmt.Errorf("bad sample size %q", v)
			}
			cfg.SampleN = n
		case "--agg":
			v, err := value()
			if err != nil {
				return nil, nil, err
			}
			a, err := aggr.Parse(v)
			if err != nil {
				return nil, nil, err
			}
			cfg.Aggs = append(cfg.Aggs, a)
		case "-t", "--table":
			seen.table = true
			cfg.Table = true
		case "--no-header":
			seen.noHeader = true
			cfg.NoHeader = true
		case "-h", "--help":
			return nil, nil, errHelp
		case "--version":
			return nil, nil, errVersion
		default:
			if strings.HasPrefix(name, "-") {
				return nil, nil, fmt.Errorf("unknown option %q", name)
			}
			return nil, nil, fmt.Errorf("unexpected argument %q (input is always stdin)", arg)
		}
	}
	if err := checkExclusions(cfg, seen); err != nil {
		return nil, nil, err
	}
	if cfg.Top != "" && cfg.Head > rank.MaxLimit {
		// the ranking buffer is hard-capped
		cfg.Head = rank.MaxLimit
	}
	return cfg, seen, nil
}

func checkExclusions(cfg *pipe.Config, seen *explicit) error {
	if len(cfg.Aggs) > 0 {
		if cfg.Top != "" {
			return errors.New("--agg cannot be combined with --top")
		}
		if seen.head {
			return errors.New("--agg cannot be combined with --head")
		}
	}
	if cfg.SampleN > 0 {
		switch {
		case cfg.Top != "":
			return errors.New("--sample cannot be combined with --top")
		case len(cfg.Aggs) > 0:
			return errors.New("--sample cannot be combined with --agg")
		case seen.head:
			return errors.New("--sample cannot be combined with --head")
		}
	}
	return nil
}

// cutEq splits "--flag=value" forms.
func cutEq(arg string) (name, value string, ok bool) {
	if !strings.HasPrefix(arg, "-") {
		return arg, "", false
	}
	name, value, ok = strings.Cut(arg, "=")
	return name, value, ok
}

func isCount(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseCount(s string) (int, error) {
	if !isCount(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}
