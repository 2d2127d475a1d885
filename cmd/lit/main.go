// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Command lit is the lit interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
	"nickandperla.net/lit/internal/parse"
	"nickandperla.net/lit/pkg/lit"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr   = fs.String("e", "", "Evaluate lit string")
		file      = fs.String("f", "", "Execute lit file")
		dbPath    = fs.String("db", "", "SQLite database path for snapshots")
		heapSize  = fs.Int("heap", 0, "Initial heap size in bytes (0 for the default)")
		fixedHeap = fs.Bool("fixed-heap", false, "Fail instead of growing the heap")
		autoMode  = fs.String("auto", "off", "Auto-typing: off, classify, or commit")
		maxDepth  = fs.Int("max-depth", parse.DefaultMaxDepth, "Maximum group nesting (0 for no limit)")
		noStdlib  = fs.Bool("no-stdlib", false, "Disable the default operators and prelude")
		restore   = fs.Bool("restore", false, "Load the snapshot in -db before running")
		save      = fs.Bool("save", false, "Persist a snapshot to -db after running")
		trace     = fs.Bool("trace", false, "Log every reduction step to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, ok := parse.ParseAutoType(*autoMode)
	if !ok {
		fmt.Fprintf(stderr, "Unknown auto mode: %s (use off, classify, or commit)\n", *autoMode)
		return 2
	}
	if (*restore || *save) && *dbPath == "" {
		fmt.Fprintln(stderr, "-restore and -save need -db")
		return 2
	}

	opts := []lit.Option{
		lit.WithHeapSize(*heapSize),
		lit.WithAutoType(mode),
		lit.WithMaxDepth(*maxDepth),
	}
	if *dbPath != "" {
		opts = append(opts, lit.WithSQLiteStore(*dbPath))
	}
	if *fixedHeap {
		opts = append(opts, lit.WithFixedHeap())
	}
	if *noStdlib {
		opts = append(opts, lit.WithNoStdlib())
	}
	if *restore {
		opts = append(opts, lit.WithRestore())
	}
	if *trace {
		opts = append(opts, lit.WithLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	runtime, err := lit.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	status := 0
	switch {
	case *file != "" || *evalStr != "":
		// File runs first so -e can use what it binds.
		if *file != "" {
			if !printResult(runtime, stdout, stderr, func() (lit.Literal, error) { return runtime.EvalFile(*file) }) {
				return 1
			}
		}
		if *evalStr != "" {
			if !printResult(runtime, stdout, stderr, func() (lit.Literal, error) { return runtime.Eval(*evalStr) }) {
				return 1
			}
		}
	case !isTerminal(stdin):
		status = runBasicREPL(runtime, stdin, stdout, stderr, false)
	default:
		status = runREPL(runtime, stdout, stderr)
	}

	if *save {
		if err := runtime.Persist(); err != nil {
			fmt.Fprintf(stderr, "Error saving snapshot: %v\n", err)
			return 1
		}
	}
	return status
}

func printResult(runtime *lit.Runtime, stdout, stderr io.Writer, eval func() (lit.Literal, error)) bool {
	result, err := eval()
	if err == nil {
		var text string
		if text, err = runtime.Format(result); err == nil {
			fmt.Fprintln(stdout, text)
			return true
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return false
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
