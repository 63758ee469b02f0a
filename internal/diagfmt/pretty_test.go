package diagfmt_test

import (
	"strings"
	"testing"

	"siergen/internal/diag"
	"siergen/internal/diagfmt"
	"siergen/internal/source"
)

func TestPretty_Heading(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ll", []byte("define i32 @f() {\n  bogus\n}\n"))

	bag := diag.NewBag(10)
	// "bogus" starts at byte 20, line 2 col 3.
	bag.Add(diag.NewError(diag.SynExpectLabel, source.Span{File: id, Start: 20, End: 25}, "expected block label"))

	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{})
	got := sb.String()

	want := "main.ll:2:3: ERROR SG2004: expected block label\n"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_Context(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ll", []byte("  %x = add %a, 1\n"))

	bag := diag.NewBag(10)
	// The span covers "%a" at bytes 11..13.
	bag.Add(diag.NewError(diag.SynExpectType, source.Span{File: id, Start: 11, End: 13}, "expected type"))

	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{Context: true})
	lines := strings.Split(sb.String(), "\n")

	if len(lines) < 3 {
		t.Fatalf("expected heading, source line and underline, got %q", sb.String())
	}
	if lines[1] != "    %x = add %a, 1" {
		t.Errorf("source line: %q", lines[1])
	}
	if lines[2] != "             ^~" {
		t.Errorf("underline: %q", lines[2])
	}
}

func TestPretty_Notes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ll", []byte("entry:\nentry:\n"))

	d := diag.NewError(diag.SynDuplicateLabel, source.Span{File: id, Start: 7, End: 12}, "duplicate label").
		WithNote(source.Span{File: id, Start: 0, End: 5}, "first defined here")

	bag := diag.NewBag(10)
	bag.Add(d)

	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{})
	got := sb.String()

	if !strings.Contains(got, "main.ll:2:1: ERROR") {
		t.Errorf("missing primary heading: %q", got)
	}
	if !strings.Contains(got, "main.ll:1:1: INFO") || !strings.Contains(got, "first defined here") {
		t.Errorf("missing note heading: %q", got)
	}
}
