// Command imltok prints the token stream of source files, or of each line
// typed at an interactive prompt when no file is given.
//
// Usage:
//
//	imltok [-lines] [file.src ...]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"imlang/pkg/lexer"
)

const (
	historyFile = ".imltok_history"
	prompt      = "tok> "
)

func main() {
	lines := flag.Bool("lines", false, "print only the line number and text of each token")
	flag.Parse()

	if flag.NArg() == 0 {
		repl(*lines)
		return
	}
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read source file: %v", err)
		}
		dump(os.Stdout, string(data), *lines)
	}
}

// dump writes the tokens of src to w, followed by any lexical diagnostics.
func dump(w io.Writer, src string, lines bool) {
	toks, diags := lexer.Lex(src)
	for _, tok := range toks {
		if lines {
			fmt.Fprintf(w, "%4d %s\n", tok.Line, tok.Text)
			continue
		}
		fmt.Fprintf(w, "  %s\n", tok)
	}
	if diags.Len() > 0 {
		fmt.Fprint(w, diags.Format(src))
	}
}

func repl(lines bool) {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

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
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		dump(os.Stdout, line, lines)
	}
}
