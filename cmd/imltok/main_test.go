package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpLines(t *testing.T) {
	var buf bytes.Buffer
	dump(&buf, "x := 1;\ny := x", true)

	want := "   1 x\n   1 :=\n   1 1\n   1 ;\n   2 y\n   2 :=\n   2 x\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDumpReportsLexicalErrors(t *testing.T) {
	var buf bytes.Buffer
	dump(&buf, "a @ b", false)

	out := buf.String()
	if strings.Count(out, "line 1\n") != 3 {
		t.Errorf("expected three tokens on line 1:\n%s", out)
	}
	if !strings.Contains(out, `line 1: error: unrecognized token "@"`) {
		t.Errorf("missing lexer diagnostic:\n%s", out)
	}
	if !strings.Contains(out, "  |> a @ b") {
		t.Errorf("diagnostic should quote the source line:\n%s", out)
	}
}
