package compiler

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const squares = `program squares is
	variable i : integer;
	variable ok : bool;
	procedure square : integer (variable n : integer)
	begin
		return n * n;
	end procedure;
begin
	for (i := 1; i <= 5)
		ok := putinteger(square(i));
		i := i + 1;
	end for;
end program.
`

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCompile(t *testing.T) {
	u := Compile("squares.src", squares)
	if !u.OK() {
		t.Fatalf("Compile failed:\n%s", u.Report())
	}
	if got := u.ArtifactName(); got != "squares.ir" {
		t.Errorf("ArtifactName = %q", got)
	}
	ir := u.IR()
	for _, want := range []string{
		"; module squares.src",
		"declare i32 @putinteger(i64)",
		"define i64 @square(i64 %arg0) {",
		"define void @main() {",
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("IR missing %q:\n%s", want, ir)
		}
	}
}

func TestCompileReportsErrors(t *testing.T) {
	src := "program broken is\nbegin\n\tx := 1;\nend program.\n"
	u := Compile("broken.src", src)
	if u.OK() {
		t.Fatal("expected errors")
	}
	report := u.Report()
	if !strings.Contains(report, `line 3: error: symbol "x" not found`) {
		t.Errorf("unexpected report:\n%s", report)
	}
	if !strings.Contains(report, "  |> x := 1;") {
		t.Errorf("report should quote the source line:\n%s", report)
	}
	if _, err := u.WriteArtifact(t.TempDir()); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("WriteArtifact error = %v, want ErrNotCompiled", err)
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	u, err := CompileFile(writeSource(t, dir, "input.src", squares))
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	path, err := u.WriteArtifact(dir)
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if filepath.Base(path) != "squares.ir" {
		t.Errorf("artifact named %s, want squares.ir", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != u.IR() {
		t.Error("artifact content differs from the module text")
	}
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "nope.src"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a", "b", "c", "d"} {
		src := "program " + name + " is variable v : integer; begin v := 1; end program."
		paths = append(paths, writeSource(t, dir, name+".src", src))
	}
	paths = append(paths, writeSource(t, dir, "bad.src", "program bad is begin end"))

	units, err := CompileAll(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if len(units) != len(paths) {
		t.Fatalf("got %d units", len(units))
	}
	for i, u := range units[:4] {
		if u.Path != paths[i] {
			t.Errorf("unit %d has path %s, want %s", i, u.Path, paths[i])
		}
		if !u.OK() {
			t.Errorf("%s failed:\n%s", u.Path, u.Report())
		}
		if want := string(rune('a' + i)); u.Result.Program != want {
			t.Errorf("unit %d program %q, want %q", i, u.Result.Program, want)
		}
	}
	if units[4].OK() {
		t.Error("bad.src should have errors")
	}
}

func TestCompileAllReadError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSource(t, dir, "ok.src", "program ok is begin end program."),
		filepath.Join(dir, "missing.src"),
	}
	_, err := CompileAll(context.Background(), paths, 0)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestCompileAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CompileAll(ctx, []string{"unused.src"}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
