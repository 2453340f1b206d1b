// Command imlc compiles source files to IR. Each program's IR is written to
// the current directory as <program>.ir.
//
// Usage:
//
//	imlc [file.src ...]
//
// With no arguments it compiles testdata/sample.src.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"imlang/pkg/compiler"
)

const defaultSource = "testdata/sample.src"

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{defaultSource}
	}

	units, err := compiler.CompileAll(context.Background(), paths, runtime.NumCPU())
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	failed := false
	for _, u := range units {
		if len(units) > 1 {
			fmt.Fprintf(os.Stderr, "== %s\n", u.Path)
		}
		fmt.Fprint(os.Stderr, u.Report())
		if !u.OK() {
			fmt.Fprint(os.Stderr, u.Result.Dump())
			failed = true
			continue
		}
		out, err := u.WriteArtifact(".")
		if err != nil {
			log.Fatalf("Failed to write artifact: %v", err)
		}
		fmt.Println(out)
	}
	if failed {
		os.Exit(1)
	}
}
