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

// Command skim is a streaming filter for comma-separated
// data: it projects, filters, ranks, samples, and
// aggregates a CSV stream from stdin in constant memory.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/SnellerInc/skim/compr"
	"github.com/SnellerInc/skim/pipe"
)

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func usage(w *os.File) {
	fmt.Fprintf(w, "usage: skim [options] < input.csv\n")
	fmt.Fprintf(w, "options:\n")
	fmt.Fprintf(w, "  -s, --select <col,...>   project and reorder columns (name or 1-based index)\n")
	fmt.Fprintf(w, "  -f, --filter <expr>      keep rows matching \"field op value\"; repeatable, ANDed\n")
	fmt.Fprintf(w, "                           op is one of = != < > <= >= ~ (glob)\n")
	fmt.Fprintf(w, "  -n, --head [N]           emit at most N rows (default 10)\n")
	fmt.Fprintf(w, "      --top <col>          rank by this column, descending; keeps head rows\n")
	fmt.Fprintf(w, "      --sample <N>         uniform random sample of N rows\n")
	fmt.Fprintf(w, "      --agg <func:col>     aggregate; func is sum, min, max, count or mean; repeatable\n")
	fmt.Fprintf(w, "  -t, --table              aligned table output\n")
	fmt.Fprintf(w, "      --no-header          omit the header row from the output\n")
	fmt.Fprintf(w, "      --version            print the build version\n")
	fmt.Fprintf(w, "  -h, --help               this text\n")
	fmt.Fprintf(w, "\ninput is always stdin; gzip- and zstd-compressed streams are\ndetected and decompressed transparently\n")
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(unknown)"
}

func main() {
	cfg, seen, err := parseArgs(os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errHelp):
		usage(os.Stdout)
		os.Exit(0)
	case errors.Is(err, errVersion):
		fmt.Println(version())
		os.Exit(0)
	default:
		exitf("skim: %s\n", err)
	}
	if err := applyDefaults(cfg, seen, os.Getenv("SKIM_CONFIG")); err != nil {
		exitf("skim: %s\n", err)
	}
	in, err := compr.Reader(os.Stdin)
	if err != nil {
		exitf("skim: reading input: %s\n", err)
	}
	if err := pipe.Run(cfg, in, os.Stdout, os.Stderr); err != nil {
		exitf("skim: %s\n", err)
	}
}
