package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.ll", []byte("one\ntwo\nthree\n"))

	tests := []struct {
		offset    uint32
		line, col uint32
	}{
		{0, 1, 1},  // 'o' of one
		{3, 1, 4},  // the newline
		{4, 2, 1},  // 't' of two
		{8, 3, 1},  // 't' of three
		{12, 3, 5}, // 'e' of three
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.offset, End: tt.offset})
		if start.Line != tt.line || start.Col != tt.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", tt.offset, start.Line, start.Col, tt.line, tt.col)
		}
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.ll", []byte("one\ntwo\nthree"))
	f := fs.Get(id)

	if got := f.GetLine(1); got != "one" {
		t.Errorf("line 1 = %q", got)
	}
	if got := f.GetLine(2); got != "two" {
		t.Errorf("line 2 = %q", got)
	}
	if got := f.GetLine(3); got != "three" {
		t.Errorf("line 3 = %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Errorf("line 4 = %q, want empty", got)
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("line 0 = %q, want empty", got)
	}
}

func TestFileSet_LoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.ll")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFone\r\ntwo\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)
	if string(f.Content) != "one\ntwo\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %v", f.Flags)
	}
}

func TestFileSet_GetByPath(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("a.ll", []byte("x"))

	if f, ok := fs.GetByPath("a.ll"); !ok || f.Path != "a.ll" {
		t.Errorf("GetByPath: ok=%v f=%+v", ok, f)
	}
	if _, ok := fs.GetByPath("missing.ll"); ok {
		t.Error("missing path should not resolve")
	}
	if fs.Len() != 1 {
		t.Errorf("Len = %d", fs.Len())
	}
}

func TestSpan_Cover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Errorf("Cover = %+v", got)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("cross-file Cover must leave the span untouched: %+v", got)
	}

	if !(Span{File: 1, Start: 3, End: 3}).Empty() {
		t.Error("zero-length span should be empty")
	}
	if (Span{Start: 2, End: 7}).Len() != 5 {
		t.Error("Len should be End-Start")
	}
}
