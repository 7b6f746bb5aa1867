package spadetool

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"spade.dev/execenv"
)

func TestParseGrepLine(t *testing.T) {
	tests := []struct {
		line string
		want GrepMatch
		ok   bool
	}{
		{"file1.ts:10:test match", GrepMatch{Path: "file1.ts", LineNumber: 10, Line: "test match"}, true},
		// only the first two colons delimit
		{"file1.ts:10:a:b:c", GrepMatch{Path: "file1.ts", LineNumber: 10, Line: "a:b:c"}, true},
		{"file1.ts:10:", GrepMatch{Path: "file1.ts", LineNumber: 10, Line: ""}, true},
		{"file1.ts:abc:content", GrepMatch{}, false},
		{"file1.ts:0:content", GrepMatch{}, false},
		{"file1.ts:-3:content", GrepMatch{}, false},
		{"no delimiters here", GrepMatch{}, false},
		{"one:colon", GrepMatch{}, false},
	}
	for _, tt := range tests {
		got, ok := parseGrepLine(tt.line)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseGrepLine(%q) = %+v, %v; want %+v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

// noIgnoreMock returns a Mock whose unscripted commands fail softly,
// which makes gitignore resolution come back empty.
func noIgnoreMock() *execenv.Mock {
	return execenv.NewMock()
}

func TestGrepExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("Batching", func(t *testing.T) {
		var files []string
		var findOut strings.Builder
		for i := 0; i < 150; i++ {
			f := fmt.Sprintf("f%03d.txt", i)
			files = append(files, f)
			fmt.Fprintf(&findOut, "./%s\n", f)
		}
		m := noIgnoreMock()
		m.HandleOutput("find '.' -type f | sort", findOut.String())
		m.HandleOutput(grepCommand("TODO", files[0:50]), "f000.txt:10:TODO one\n")
		m.Handle(grepCommand("TODO", files[50:100]), execenv.Result{ExitCode: 1})
		m.HandleOutput(grepCommand("TODO", files[100:150]), "f100.txt:5:TODO two\n")
		g := &GrepTool{Env: m}

		res, err := g.Execute(ctx, GrepInput{RegexpPattern: "TODO"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var grepCalls int
		for _, call := range m.Calls() {
			if strings.HasPrefix(call, "grep ") {
				grepCalls++
			}
		}
		if grepCalls != 3 {
			t.Errorf("grep invocations = %d, want 3", grepCalls)
		}
		want := []GrepMatch{
			{Path: "f000.txt", LineNumber: 10, Line: "TODO one"},
			{Path: "f100.txt", LineNumber: 5, Line: "TODO two"},
		}
		if !reflect.DeepEqual(res.Matches, want) {
			t.Errorf("matches = %+v, want %+v", res.Matches, want)
		}
	})

	t.Run("NoFilesNoGrep", func(t *testing.T) {
		m := noIgnoreMock()
		m.HandleOutput("find '.' -type f | sort", "")
		g := &GrepTool{Env: m}

		res, err := g.Execute(ctx, GrepInput{RegexpPattern: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Matches) != 0 {
			t.Errorf("matches = %v", res.Matches)
		}
		for _, call := range m.Calls() {
			if strings.HasPrefix(call, "grep ") {
				t.Errorf("grep ran with no files discovered: %q", call)
			}
		}
	})

	t.Run("GrepHardFailureIsFatal", func(t *testing.T) {
		m := noIgnoreMock()
		m.HandleOutput("find '.' -type f | sort", "./a.txt\n")
		m.Handle(grepCommand("x", []string{"a.txt"}), execenv.Result{
			ExitCode: 2,
			Stderr:   "grep: a.txt: Input/output error\n",
		})
		g := &GrepTool{Env: m}
		_, err := g.Execute(ctx, GrepInput{RegexpPattern: "x"})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "grep -n -H -I -E 'x'") || !strings.Contains(err.Error(), "Input/output error") {
			t.Errorf("error should carry command and stderr, got: %v", err)
		}
	})

	t.Run("UnparseableLinesAreDroppedWithDiagnostics", func(t *testing.T) {
		m := noIgnoreMock()
		m.HandleOutput("find '.' -type f | sort", "./a.txt\n")
		m.HandleOutput(grepCommand("x", []string{"a.txt"}), "a.txt:1:good\na.txt:bogus:bad\n")
		g := &GrepTool{Env: m}

		res, err := g.Execute(ctx, GrepInput{RegexpPattern: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Matches) != 1 || res.Matches[0].Line != "good" {
			t.Errorf("matches = %+v", res.Matches)
		}
		if len(res.Diagnostics) != 1 {
			t.Errorf("diagnostics = %v", res.Diagnostics)
		}
	})

	t.Run("ContextLines", func(t *testing.T) {
		m := noIgnoreMock()
		m.HandleOutput("find '.' -type f | sort", "./a.txt\n./b.txt\n")
		m.HandleOutput(grepCommand("needle", []string{"a.txt", "b.txt"}),
			"a.txt:2:needle here\nb.txt:1:needle there\n")
		m.AddFile("a.txt", "before\nneedle here\nafter\nmore\n")
		// b.txt is unreadable; its match survives without context.
		g := &GrepTool{Env: m}

		res, err := g.Execute(ctx, GrepInput{RegexpPattern: "needle", ContextLines: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Matches) != 2 {
			t.Fatalf("matches = %+v", res.Matches)
		}
		a := res.Matches[0]
		if !reflect.DeepEqual(a.Before, []string{"before"}) || !reflect.DeepEqual(a.After, []string{"after", "more"}) {
			t.Errorf("context = %v / %v", a.Before, a.After)
		}
		b := res.Matches[1]
		if b.Before != nil || b.After != nil {
			t.Errorf("unreadable file should have no context, got %v / %v", b.Before, b.After)
		}
		if len(res.Diagnostics) != 1 {
			t.Errorf("diagnostics = %v", res.Diagnostics)
		}
	})

	t.Run("RejectsBadPattern", func(t *testing.T) {
		g := &GrepTool{Env: noIgnoreMock()}
		if _, err := g.Execute(ctx, GrepInput{RegexpPattern: ""}); err == nil {
			t.Errorf("expected error for empty pattern")
		}
		if _, err := g.Execute(ctx, GrepInput{RegexpPattern: "("}); err == nil {
			t.Errorf("expected error for invalid regexp")
		}
	})
}

func TestFormatGrepMatches(t *testing.T) {
	got := formatGrepMatches([]GrepMatch{
		{Path: "a.txt", LineNumber: 2, Line: "hit", Before: []string{"b"}, After: []string{"a"}},
	})
	want := "a.txt-1- b\na.txt:2: hit\na.txt-3- a"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
