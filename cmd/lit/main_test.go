// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/lit/pkg/lit"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEvalFlag(t *testing.T) {
	code, out, errOut := runCLI(t, "", "-e", "( 3 + 4 )")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "7\n" {
		t.Errorf("expected '7', got %q", out)
	}
}

func TestFileThenEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.lit")
	if err := os.WriteFile(path, []byte("r = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "", "-f", path, "-e", "r * r")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "3\n9\n" {
		t.Errorf("expected file result then 9, got %q", out)
	}
}

func TestPipedInput(t *testing.T) {
	input := "x = 2\nx + 3\n( 1 +\n  2 )\n:quit\nnever\n"
	code, out, errOut := runCLI(t, input)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "2\n5\n3\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPipedErrorsContinue(t *testing.T) {
	code, out, errOut := runCLI(t, "1 / 0\n4 * 4\n")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if out != "16\n" {
		t.Errorf("expected later lines to run, got %q", out)
	}
	if !strings.Contains(errOut, "division by zero") {
		t.Errorf("expected division error, got %q", errOut)
	}
}

func TestParseErrorSnippet(t *testing.T) {
	code, _, errOut := runCLI(t, "", "-e", "1 + 2 )")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "PARSE ERROR at 1:7") || !strings.Contains(errOut, "^") {
		t.Errorf("expected caret snippet, got %q", errOut)
	}
}

func TestBadFlags(t *testing.T) {
	if code, _, _ := runCLI(t, "", "-auto", "sometimes"); code != 2 {
		t.Errorf("bad -auto: exit %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "", "-save"); code != 2 {
		t.Errorf("-save without -db: exit %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "", "-nope"); code != 2 {
		t.Errorf("unknown flag: exit %d, want 2", code)
	}
}

func TestNoStdlib(t *testing.T) {
	code, out, _ := runCLI(t, "", "-no-stdlib", "-e", "3 + 4")
	if code != 0 || out != "( 3 + 4 )\n" {
		t.Errorf("exit %d, out %q", code, out)
	}
}

func TestAutoCommitAndHeap(t *testing.T) {
	code, out, errOut := runCLI(t, "1.5 + 1\n:heap\n", "-auto", "commit")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "2.5\n") {
		t.Errorf("expected the pointer result formatted as 2.5, got %q", out)
	}
	// Prelude: 2 and TAU. Input: 1.5, 1 and the sum.
	if !strings.Contains(out, "28 B used of") || !strings.Contains(out, "(growable, 28 bytes)") {
		t.Errorf("expected heap usage line, got %q", out)
	}
}

func TestCommands(t *testing.T) {
	input := "y = 4\n:syms\n:ops\n:tree ( a b )\n:qit\n"
	code, out, errOut := runCLI(t, input)
	if code != 1 {
		t.Errorf("expected exit 1 from the unknown command, got %d", code)
	}
	for _, want := range []string{
		"y = 4\n",
		"TAU = 6.283185307179586\n",
		"sum          FUNCTION\n",
		"(EXP: (EXP: (WORD: a) (WORD: b)))\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "did you mean :quit?") {
		t.Errorf("expected a suggestion, got %q", errOut)
	}
}

func TestSaveRestore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lit.db")
	if code, _, errOut := runCLI(t, "", "-db", db, "-auto", "commit", "-save", "-e", "v = 2.5"); code != 0 {
		t.Fatalf("save run: exit %d: %s", code, errOut)
	}
	code, out, errOut := runCLI(t, "", "-db", db, "-restore", "-e", "v * 2")
	if code != 0 {
		t.Fatalf("restore run: exit %d: %s", code, errOut)
	}
	if out != "5\n" {
		t.Errorf("expected 5, got %q", out)
	}

	// Forgetting and saving again leaves nothing to restore.
	code, out, errOut = runCLI(t, ":forget v\n:forget v\n", "-db", db, "-restore", "-save")
	if code != 1 {
		t.Errorf("expected exit 1 from the second :forget, got %d", code)
	}
	if !strings.Contains(out, "forgot v\n") || !strings.Contains(errOut, "v is not bound") {
		t.Errorf("forget output %q, errors %q", out, errOut)
	}
	code, out, errOut = runCLI(t, "", "-db", db, "-restore", "-e", "v")
	if code != 0 || out != "v\n" {
		t.Errorf("after forget: exit %d, out %q, errors %q", code, out, errOut)
	}
}

func TestComplete(t *testing.T) {
	r, err := lit.New()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := complete(r, "1 + su")
	if len(got) == 0 || got[0] != "1 + sum" {
		t.Errorf("complete = %v", got)
	}
	got = complete(r, ":he")
	if len(got) == 0 || got[0] != ":heap" {
		t.Errorf("complete commands = %v", got)
	}
	if got := complete(r, "1 + "); got != nil {
		t.Errorf("complete on empty word = %v", got)
	}
}

func TestReadGroup(t *testing.T) {
	lines := []string{"( a", "b \\", "c )", "tail"}
	i := 0
	next := func(bool) (string, error) {
		line := lines[i]
		i++
		return line, nil
	}
	src, ok := readGroup(next)
	if !ok || src != "( a\nb \nc )" {
		t.Errorf("readGroup = %q, %v", src, ok)
	}
	if depth("( ( )") != 1 {
		t.Error("depth miscounted")
	}
}
