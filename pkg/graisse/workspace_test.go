package graisse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manifolded/graisse-prompt-versioning/pkg/core"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func scanDir(t *testing.T, dir string, ignore ...string) (*WorkingSet, error) {
	t.Helper()
	return Scan(&Config{Dir: dir, Extension: ".j2", Ignore: ignore})
}

func TestScanOrdersByPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"02_body.j2":  "Body",
		"01_intro.j2": "Intro",
		"03_outro.j2": "Outro",
		"notes.txt":   "ignored entirely",
	})

	ws, err := scanDir(t, dir)
	if err != nil {
		t.Fatal(err)
	}
	var types []string
	for _, c := range ws.Candidates {
		types = append(types, c.Type)
	}
	if got := strings.Join(types, ","); got != "intro,body,outro" {
		t.Fatalf("order = %s", got)
	}
	if !ws.Backed["body"] || len(ws.Backed) != 3 {
		t.Fatalf("backed = %v", ws.Backed)
	}
}

func TestScanEmptyDir(t *testing.T) {
	ws, err := scanDir(t, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.Candidates) != 0 {
		t.Fatalf("candidates = %v", ws.Candidates)
	}
}

func TestScanRejectsBadPrefixes(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "non-numeric",
			files: map[string]string{"ab_intro.j2": "x"},
			want:  "non-numeric",
		},
		{
			name:  "mixed width",
			files: map[string]string{"1_intro.j2": "x", "02_body.j2": "y"},
			want:  "inconsistent prefix format",
		},
		{
			name:  "duplicate",
			files: map[string]string{"01_intro.j2": "x", "01_body.j2": "y"},
			want:  "duplicate prefix",
		},
		{
			name:  "gap",
			files: map[string]string{"01_intro.j2": "x", "03_body.j2": "y"},
			want:  "consecutive",
		},
		{
			name:  "not starting at one",
			files: map[string]string{"02_intro.j2": "x", "03_body.j2": "y"},
			want:  "consecutive",
		},
		{
			name:  "no underscore",
			files: map[string]string{"intro.j2": "x"},
			want:  "must look like",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tc.files)
			_, err := scanDir(t, dir)
			var verr *core.ValidationError
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
			if !errors.As(err, &verr) {
				t.Fatalf("err = %T, want ValidationError", err)
			}
		})
	}
}

func TestScanIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"01_intro.j2":  "Intro",
		"draft_wip.j2": "not ready",
	})

	ws, err := scanDir(t, dir, "draft_*")
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.Candidates) != 1 || ws.Candidates[0].Type != "intro" {
		t.Fatalf("candidates = %+v", ws.Candidates)
	}
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"01_intro.j2": "Intro",
		"02_body.j2":  "Body",
	})
	ws, err := scanDir(t, dir)
	if err != nil {
		t.Fatal(err)
	}

	picked, err := ws.Select([]string{filepath.Join(dir, "02_body.j2")})
	if err != nil {
		t.Fatal(err)
	}
	if len(picked) != 1 || picked[0].Type != "body" {
		t.Fatalf("picked = %+v", picked)
	}

	if _, err := ws.Select([]string{"09_missing.j2"}); err == nil {
		t.Fatal("expected error for unknown path")
	}
}

func TestTypeFilename(t *testing.T) {
	cases := []struct {
		typ          string
		index, total int
		want         string
	}{
		{"intro", 0, 3, "01_intro.j2"},
		{"body", 1, 3, "02_body.j2"},
		{"outro", 9, 120, "010_outro.j2"},
	}
	for _, tc := range cases {
		if got := TypeFilename(tc.typ, tc.index, tc.total, ".j2"); got != tc.want {
			t.Errorf("TypeFilename(%s, %d, %d) = %s, want %s", tc.typ, tc.index, tc.total, got, tc.want)
		}
	}
}
