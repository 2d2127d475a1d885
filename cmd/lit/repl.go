// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/peterh/liner"

	"nickandperla.net/lit/internal/token"
	"nickandperla.net/lit/pkg/lit"
)

const historyFile = ".lit_history"

var commands = []string{":quit", ":ops", ":syms", ":heap", ":save", ":forget", ":tree"}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "lit REPL (Ctrl+D to exit)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  :ops   list operators      :syms  list bindings")
	fmt.Fprintln(w, "  :heap  heap usage          :save  persist a snapshot")
	fmt.Fprintln(w, "  :tree <src>  show the parse tree of src")
	fmt.Fprintln(w, "  :forget <name>  unbind name and drop it from the store")
	fmt.Fprintln(w, "  :quit  exit")
	fmt.Fprintln(w)
}

// runREPL runs the line-editing REPL on the controlling terminal.
func runREPL(runtime *lit.Runtime, stdout, stderr io.Writer) int {
	printBanner(stdout)
	if !liner.TerminalSupported() {
		return runBasicREPL(runtime, os.Stdin, stdout, stderr, true)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string { return complete(runtime, line) })

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readGroup(func(cont bool) (string, error) {
			if cont {
				return ln.Prompt("... ")
			}
			return ln.Prompt(">>> ")
		})
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if isQuit(src) {
			return 0
		}
		evalLine(runtime, src, stdout, stderr)
	}
}

// runBasicREPL reads lines from r, for piped input or a terminal liner
// cannot drive. It returns 1 if any line failed.
func runBasicREPL(runtime *lit.Runtime, r io.Reader, stdout, stderr io.Writer, prompt bool) int {
	reader := bufio.NewReader(r)
	status := 0
	for {
		src, ok := readGroup(func(cont bool) (string, error) {
			if prompt {
				if cont {
					fmt.Fprint(stdout, "... ")
				} else {
					fmt.Fprint(stdout, ">>> ")
				}
			}
			line, err := reader.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			return strings.TrimRight(line, "\r\n"), err
		})
		if !ok {
			return status
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if isQuit(src) {
			return status
		}
		if evalLine(runtime, src, stdout, stderr) != 0 {
			status = 1
		}
	}
}

// readGroup reads lines until every '(' is closed. A trailing backslash
// also continues the input.
func readGroup(next func(cont bool) (string, error)) (string, bool) {
	var b strings.Builder
	for {
		line, err := next(b.Len() > 0)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}

		cont := strings.HasSuffix(line, "\\")
		line = strings.TrimSuffix(line, "\\")
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !cont && depth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

func depth(src string) int {
	d := 0
	for _, r := range src {
		switch r {
		case '(':
			d++
		case ')':
			d--
		}
	}
	return d
}

func isQuit(src string) bool {
	return strings.TrimSpace(src) == ":quit"
}

// evalLine evaluates src or runs a REPL command. It returns 1 on failure.
func evalLine(runtime *lit.Runtime, src string, stdout, stderr io.Writer) int {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		if err := command(runtime, trimmed, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	if !printResult(runtime, stdout, stderr, func() (lit.Literal, error) { return runtime.Eval(src) }) {
		return 1
	}
	return 0
}

func command(runtime *lit.Runtime, line string, w io.Writer) error {
	name, arg, _ := strings.Cut(line, " ")
	switch strings.ToLower(name) {
	case ":quit":
		return nil
	case ":ops":
		for _, op := range runtime.Ops().Operands() {
			fmt.Fprintf(w, "%-12s %s\n", op.Name, op.Kind)
		}
	case ":syms":
		for _, name := range runtime.Symbols().Names() {
			l, _ := runtime.Lookup(name)
			text, err := runtime.Format(l)
			if err != nil {
				text = l.String()
			}
			fmt.Fprintf(w, "%s = %s\n", name, text)
		}
	case ":heap":
		h := runtime.Heap()
		mode := "growable"
		if h.Fixed() {
			mode = "fixed"
		}
		fmt.Fprintf(w, "%s used of %s (%s, %d bytes)\n",
			humanize.Bytes(uint64(h.Len())), humanize.Bytes(uint64(h.Cap())), mode, h.Len())
	case ":save":
		if err := runtime.Persist(); err != nil {
			return err
		}
		fmt.Fprintf(w, "saved %s bindings\n", humanize.Comma(int64(len(runtime.Symbols().Names()))))
	case ":forget":
		if arg == "" {
			return fmt.Errorf("usage: :forget <name>")
		}
		found, err := runtime.Forget(arg)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s is not bound", arg)
		}
		fmt.Fprintf(w, "forgot %s\n", arg)
	case ":tree":
		tree, err := runtime.Parse(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, lit.Detail(tree))
	default:
		if near := fuzzy.RankFindFold(name, commands); len(near) > 0 {
			sort.Sort(near)
			return fmt.Errorf("unknown command %s (did you mean %s?)", name, near[0].Target)
		}
		return fmt.Errorf("unknown command %s. Type :quit to exit", name)
	}
	return nil
}

// complete offers operator, symbol and command names for the last word
// of line, best fuzzy match first.
func complete(runtime *lit.Runtime, line string) []string {
	cut := strings.LastIndexFunc(line, token.IsDelimiter) + 1
	prefix, word := line[:cut], line[cut:]
	if word == "" {
		return nil
	}
	candidates := append(runtime.Ops().Names(), runtime.Symbols().Names()...)
	if prefix == "" {
		candidates = append(candidates, commands...)
	}
	ranks := fuzzy.RankFindFold(word, candidates)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, prefix+r.Target)
	}
	return out
}
