package codec

import (
	"bytes"
	"testing"
)

func buildArticle(t *testing.T) *EntryData {
	t.Helper()
	e, err := New("article")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.CheckAndInsert("title", "The Title"); err != nil {
		t.Fatalf("insert title: %v", err)
	}
	if err := e.CheckAndInsert("year", "2023"); err != nil {
		t.Fatalf("insert year: %v", err)
	}
	return e
}

// S1: encode(entry_type="article", fields={"title":"The Title","year":"2023"})
func TestEncodeS1(t *testing.T) {
	e := buildArticle(t)
	got, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{
		0x00, 0x07, 'a', 'r', 't', 'i', 'c', 'l', 'e',
		0x05, 0x09, 0x00, 't', 'i', 't', 'l', 'e', 'T', 'h', 'e', ' ', 'T', 'i', 't', 'l', 'e',
		0x04, 0x04, 0x00, 'y', 'e', 'a', 'r', '2', '0', '2', '3',
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = %#v, want %#v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	e := buildArticle(t)
	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := Validate(b); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	v, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.EntryType() != "article" {
		t.Errorf("EntryType() = %q, want article", v.EntryType())
	}
	if got, ok := v.Get("title"); !ok || got != "The Title" {
		t.Errorf("Get(title) = %q, %v", got, ok)
	}
	if got, ok := v.Get("year"); !ok || got != "2023" {
		t.Errorf("Get(year) = %q, %v", got, ok)
	}
	if _, ok := v.Get("missing"); ok {
		t.Errorf("Get(missing) should miss")
	}
	fields := v.Fields()
	if len(fields) != 2 || fields[0].Key != "title" || fields[1].Key != "year" {
		t.Errorf("Fields() = %+v, want sorted [title year]", fields)
	}
}

func TestSortedKeysEnforced(t *testing.T) {
	e, err := New("misc")
	if err != nil {
		t.Fatal(err)
	}
	_ = e.CheckAndInsert("zeta", "1")
	_ = e.CheckAndInsert("alpha", "2")
	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	v, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fields := v.Fields()
	if fields[0].Key != "alpha" || fields[1].Key != "zeta" {
		t.Fatalf("fields not sorted: %+v", fields)
	}
}

func TestDuplicateKeyRejected(t *testing.T) {
	e, _ := New("misc")
	if err := e.CheckAndInsert("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := e.CheckAndInsert("a", "2"); err == nil {
		t.Fatal("expected error inserting duplicate key")
	}
}

func TestValidateRejectsUppercaseKey(t *testing.T) {
	// Hand-construct bytes with an uppercase field key, which CheckAndInsert
	// would never allow, to exercise Validate's own byte-level check.
	b := []byte{0x00, 0x04, 'm', 'i', 's', 'c', 0x01, 0x01, 0x00, 'A', 'x'}
	err := Validate(b)
	if err == nil {
		t.Fatal("expected validation error for uppercase key")
	}
	var ibe *InvalidBytesError
	if !asInvalidBytes(err, &ibe) {
		t.Fatalf("expected *InvalidBytesError, got %T: %v", err, err)
	}
}

func TestValidateRejectsUnbalancedBraces(t *testing.T) {
	b := []byte{0x00, 0x04, 'm', 'i', 's', 'c', 0x01, 0x01, 0x00, 'a', '{'}
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error for unbalanced braces")
	}
}

func TestValidateRejectsWrongVersion(t *testing.T) {
	b := []byte{0x01, 0x04, 'm', 'i', 's', 'c'}
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error for unsupported version")
	}
}

func TestValidateRejectsTrailingGarbage(t *testing.T) {
	e := buildArticle(t)
	b, _ := Encode(e)
	b = append(b, 0xFF)
	if err := Validate(b); err == nil {
		t.Fatal("expected validation error for trailing bytes")
	}
}

func asInvalidBytes(err error, target **InvalidBytesError) bool {
	if ibe, ok := err.(*InvalidBytesError); ok {
		*target = ibe
		return true
	}
	return false
}
