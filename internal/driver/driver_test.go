package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"siergen/internal/driver"
	"siergen/internal/lower"
	"siergen/internal/source"
)

const sample = `define i32 @pick(i32 %a, i32 %b) {
entry:
  %cmp = icmp eq i32 %a, %b
  br i1 %cmp, label %same, label %diff
same:
  ret i32 1
diff:
  ret i32 0
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLowerFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pick.ll", sample)

	fs := source.NewFileSet()
	results, err := driver.LowerFiles(context.Background(), fs, []string{path}, driver.Options{
		Lower: lower.DefaultOptions(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("unit failed: %v", res.Err)
	}
	if res.Cached {
		t.Error("first run must not be a cache hit")
	}
	if res.Program == nil || len(res.Program.Statements) == 0 {
		t.Fatal("expected a lowered program")
	}
	if len(res.Program.Funcs) != 1 || res.Program.Funcs[0].Name != "pick" {
		t.Errorf("entry points: %+v", res.Program.Funcs)
	}
}

func TestLowerFiles_CacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pick.ll", sample)

	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Lower: lower.DefaultOptions(), Cache: cache}

	first, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Err != nil {
		t.Fatal(first[0].Err)
	}
	if first[0].Cached {
		t.Error("first run must miss")
	}

	second, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Err != nil {
		t.Fatal(second[0].Err)
	}
	if !second[0].Cached {
		t.Error("second run must hit the cache")
	}
	if got, want := len(second[0].Program.Statements), len(first[0].Program.Statements); got != want {
		t.Errorf("cached program has %d statements, fresh one %d", got, want)
	}

	// Different predicate options must not reuse the cached entry.
	opts.Lower.Predicates = map[string]string{"eq": "eq", "ne": "ne"}
	third, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Error("changed lowering options must invalidate the cache key")
	}
}

func TestLowerFiles_ParseFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.ll", "define i32 @f( {\n")
	good := writeFile(t, dir, "good.ll", sample)

	results, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{bad, good}, driver.Options{
		Lower: lower.DefaultOptions(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil || !results[0].Bag.HasErrors() {
		t.Error("malformed input should fail its unit with diagnostics")
	}
	if results[1].Err != nil {
		t.Errorf("a failed unit must not poison the next: %v", results[1].Err)
	}
}

func TestLowerFiles_MissingFile(t *testing.T) {
	results, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{"/does/not/exist.ll"}, driver.Options{
		Lower: lower.DefaultOptions(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil {
		t.Fatal("expected a load error")
	}
	if !errors.Is(results[0].Err, os.ErrNotExist) {
		t.Errorf("load error should wrap the OS error: %v", results[0].Err)
	}
}

func TestLowerFiles_CacheKeepsSkipReport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "skip.ll", `define i32 @f(i32 %a) {
entry:
  store i32 %a, i32 %a
  ret i32 %a
}
`)

	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Lower: lower.DefaultOptions(), Cache: cache}

	cold, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if cold[0].Err != nil {
		t.Fatal(cold[0].Err)
	}
	if len(cold[0].Report.Skipped) != 1 {
		t.Fatalf("cold run should report 1 skipped instruction, got %+v", cold[0].Report.Skipped)
	}

	warm, err := driver.LowerFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !warm[0].Cached {
		t.Fatal("second run must hit the cache")
	}
	// The skip report travels with the cached program; warm runs surface
	// the same warnings as cold ones.
	if len(warm[0].Report.Skipped) != 1 {
		t.Fatalf("warm run should report 1 skipped instruction, got %+v", warm[0].Report.Skipped)
	}
	sk := warm[0].Report.Skipped[0]
	if sk.Mnemonic != "store" || sk.Func != "f" || sk.Block != "entry" {
		t.Errorf("unexpected skip record: %+v", sk)
	}
}

func TestDiskCache_NilSafe(t *testing.T) {
	var c *driver.DiskCache
	if err := c.Put([32]byte{}, nil, nil); err != nil {
		t.Errorf("nil cache Put: %v", err)
	}
	if _, _, ok, err := c.Get([32]byte{}); ok || err != nil {
		t.Errorf("nil cache Get: ok=%v err=%v", ok, err)
	}
}
