package spadetool

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"spade.dev/execenv"
)

func TestStructureExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("ListsSorted", func(t *testing.T) {
		m := execenv.NewMock()
		m.HandleOutput("find '.' -type f | sort", "./README.md\n./src/main.go\n")
		s := &StructureTool{Env: m}

		res, err := s.Execute(ctx, StructureInput{ExcludeGitIgnored: boolPtr(false)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"README.md", "src/main.go"}
		if !reflect.DeepEqual(res.Files, want) {
			t.Errorf("files = %v, want %v", res.Files, want)
		}
	})

	t.Run("GitignoreExclusions", func(t *testing.T) {
		m := execenv.NewMock()
		m.HandleOutput("pwd", "/repo\n")
		m.HandleOutput("cat '/repo/.gitignore'", "dist/\n")
		m.Fallback = func(cmd string) (*execenv.Result, error) {
			if strings.Contains(cmd, ".gitignore") && strings.Contains(cmd, "dir=$(pwd)") {
				return &execenv.Result{Command: cmd, Stdout: "/repo\n"}, nil
			}
			return &execenv.Result{Command: cmd, ExitCode: 127}, nil
		}
		m.HandleOutput("find '.' -type f -not -path '*/dist/*' | sort", "./a.go\n")
		s := &StructureTool{Env: m}

		res, err := s.Execute(ctx, StructureInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"a.go"}; !reflect.DeepEqual(res.Files, want) {
			t.Errorf("files = %v, want %v", res.Files, want)
		}
	})

	t.Run("FindFailureIsFatal", func(t *testing.T) {
		m := execenv.NewMock()
		m.Handle("find 'missing' -type f | sort", execenv.Result{
			ExitCode: 1,
			Stderr:   "find: 'missing': No such file or directory\n",
		})
		s := &StructureTool{Env: m}

		_, err := s.Execute(ctx, StructureInput{Path: "missing", ExcludeGitIgnored: boolPtr(false)})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !strings.Contains(err.Error(), "find 'missing'") || !strings.Contains(err.Error(), "No such file") {
			t.Errorf("error should carry command and stderr, got: %v", err)
		}
	})

	t.Run("RejectsUnsafePath", func(t *testing.T) {
		s := &StructureTool{Env: execenv.NewMock()}
		if _, err := s.Execute(ctx, StructureInput{Path: "../up"}); err == nil {
			t.Errorf("expected error for escaping path")
		}
	})
}

func TestStructureToolRun(t *testing.T) {
	m := execenv.NewMock()
	m.HandleOutput("find '.' -type f | sort", "./b.txt\n./a.txt\n")
	st := NewStructureTool(m)

	out, err := st.Run(context.Background(), json.RawMessage(`{"exclude_git_ignored":false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "├── **a.txt**\n└── **b.txt**"
	if out != want {
		t.Errorf("out:\n%s\nwant:\n%s", out, want)
	}
}
