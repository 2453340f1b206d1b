package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"imlang/pkg/backend"
	"imlang/pkg/parser"
)

// ArtifactExt is the extension of written IR files.
const ArtifactExt = ".ir"

// ErrNotCompiled is returned when an artifact is requested for a unit that
// failed to parse.
var ErrNotCompiled = errors.New("unit has errors")

// Unit is one compiled source file.
type Unit struct {
	Path   string // empty for in-memory sources
	Source string
	Result *parser.Result
	Module *backend.Module
}

// OK reports whether the unit compiled without errors.
func (u *Unit) OK() bool { return u.Result.OK() }

// IR returns the generated module text.
func (u *Unit) IR() string { return u.Module.String() }

// Report renders the unit's diagnostics against its source.
func (u *Unit) Report() string { return u.Result.Diagnostics.Format(u.Source) }

// Compile parses and generates one program held in memory.
func Compile(name, src string) *Unit {
	m := backend.NewModule(name)
	return &Unit{
		Source: src,
		Result: parser.Parse(src, m),
		Module: m,
	}
}

// CompileFile reads path and compiles it. Only reading the file can fail;
// problems in the program itself are in the unit's diagnostics.
func CompileFile(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	u := Compile(filepath.Base(path), string(data))
	u.Path = path
	return u, nil
}

// ArtifactName returns the file name of the unit's artifact, derived from the
// declared program name.
func (u *Unit) ArtifactName() string {
	return u.Result.Program + ArtifactExt
}

// WriteArtifact writes the IR into dir and returns the file path.
func (u *Unit) WriteArtifact(dir string) (string, error) {
	if !u.OK() || u.Result.Program == "" {
		return "", ErrNotCompiled
	}
	path := filepath.Join(dir, u.ArtifactName())
	if err := os.WriteFile(path, []byte(u.IR()), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// CompileAll compiles every path concurrently, at most limit at a time
// (limit <= 0 means no limit). Each unit gets its own parser and module.
// Units come back in path order. The first file that cannot be read stops
// the units not yet started.
func CompileAll(ctx context.Context, paths []string, limit int) ([]*Unit, error) {
	units := make([]*Unit, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := CompileFile(path)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return units, err
	}
	return units, nil
}
