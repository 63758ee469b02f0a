package diag

import (
	"testing"

	"siergen/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBag_Limit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(SynUnexpectedToken, span(1, 0, 1), "one")) {
		t.Error("first add should succeed")
	}
	if !b.Add(NewError(SynUnexpectedToken, span(1, 1, 2), "two")) {
		t.Error("second add should succeed")
	}
	if b.Add(NewError(SynUnexpectedToken, span(1, 2, 3), "three")) {
		t.Error("add past the limit should be rejected")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestBag_HasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, LowSkippedInstruction, span(1, 0, 1), "skipped"))
	if b.HasErrors() {
		t.Error("warnings alone are not errors")
	}
	b.Add(NewError(SynUndefinedLabel, span(1, 0, 1), "bad"))
	if !b.HasErrors() {
		t.Error("error severity should flip HasErrors")
	}
}

func TestBag_Sort(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SynUnexpectedToken, span(2, 0, 1), "later file"))
	b.Add(NewError(SynUnexpectedToken, span(1, 8, 9), "later offset"))
	b.Add(New(SevWarning, LowSkippedInstruction, span(1, 3, 4), "warn"))
	b.Add(NewError(SynExpectValue, span(1, 3, 4), "same span, error first"))
	b.Sort()

	items := b.Items()
	if items[0].Severity != SevError || items[0].Primary.Start != 3 {
		t.Errorf("item 0: %+v", items[0])
	}
	if items[1].Severity != SevWarning {
		t.Errorf("item 1 should be the warning at the same span: %+v", items[1])
	}
	if items[2].Primary.Start != 8 {
		t.Errorf("item 2: %+v", items[2])
	}
	if items[3].Primary.File != 2 {
		t.Errorf("item 3: %+v", items[3])
	}
}

func TestBag_Dedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SynUndefinedLabel, span(1, 5, 9), "undefined label"))
	b.Add(NewError(SynUndefinedLabel, span(1, 5, 9), "undefined label"))
	b.Add(NewError(SynUndefinedLabel, span(1, 7, 9), "different span"))
	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2 after dedup", b.Len())
	}
}

func TestBag_Merge(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(SynUnexpectedToken, span(1, 0, 1), "a"))
	c := NewBag(2)
	c.Add(NewError(SynUnexpectedToken, span(1, 1, 2), "b"))
	c.Add(NewError(SynUnexpectedToken, span(1, 2, 3), "c"))

	a.Merge(c)
	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after merge", a.Len())
	}
	// Merge grows the limit only to fit the merged items.
	if a.Add(NewError(SynUnexpectedToken, span(1, 3, 4), "d")) {
		t.Error("add past the grown limit should be rejected")
	}
}

func TestCode_String(t *testing.T) {
	if got := SynUnexpectedToken.String(); got != "SG2001" {
		t.Errorf("SynUnexpectedToken = %q", got)
	}
	if got := LowSkippedInstruction.String(); got != "SG3001" {
		t.Errorf("LowSkippedInstruction = %q", got)
	}
}
