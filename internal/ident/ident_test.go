package ident

import "testing"

func TestClassifyAlias(t *testing.T) {
	a, r, err := NewRecordId("  mykey  ").Classify()
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if a.Name() != "mykey" || r != (RemoteId{}) {
		t.Fatalf("got alias=%q remote=%+v", a.Name(), r)
	}
}

func TestClassifyRemoteId(t *testing.T) {
	_, r, err := NewRecordId("zbmath:06346461").Classify()
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if r.Provider != "zbmath" || r.SubID != "06346461" {
		t.Fatalf("got %+v", r)
	}
	if r.Name() != "zbmath:06346461" {
		t.Fatalf("Name() = %q", r.Name())
	}
}

func TestClassifyEmptyAlias(t *testing.T) {
	_, _, err := NewRecordId("   ").Classify()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrEmptyAlias {
		t.Fatalf("expected ErrEmptyAlias, got %v", err)
	}
}

func TestClassifyEmptyProvider(t *testing.T) {
	_, _, err := NewRecordId(":1234").Classify()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrEmptyProvider {
		t.Fatalf("expected ErrEmptyProvider, got %v", err)
	}
}

func TestClassifyEmptySubID(t *testing.T) {
	_, _, err := NewRecordId("zbmath:").Classify()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrEmptySubID {
		t.Fatalf("expected ErrEmptySubID, got %v", err)
	}
}

func TestAliasRejectsColon(t *testing.T) {
	if _, err := NewAlias("a:b"); err == nil {
		t.Fatal("expected error for alias containing colon")
	}
}

func TestMappedKeyDisplay(t *testing.T) {
	r, _ := NewRemoteId("zbmath", "06346461")
	mk := Rewritten(r, "zbMATH06346461")
	want := "zbmath:06346461 (converted from 'zbMATH06346461')"
	if mk.String() != want {
		t.Fatalf("String() = %q, want %q", mk.String(), want)
	}

	direct := Direct(r)
	if direct.String() != "zbmath:06346461" {
		t.Fatalf("String() = %q", direct.String())
	}
}
