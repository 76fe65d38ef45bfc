package engine_test

import (
	"testing"

	eng "github.com/reoring/goalps/internal/engine"
)

func TestIndex_RegisterRejectsDuplicates(t *testing.T) {
	x := eng.NewIndex[string]()
	if !x.Register("http://e/x", "first") {
		t.Fatalf("first registration must succeed")
	}
	if x.Register("http://e/x", "second") {
		t.Fatalf("duplicate registration must fail")
	}
	if v, ok := x.Lookup("http://e/x"); !ok || v != "first" {
		t.Fatalf("duplicate must leave the index untouched, got %q", v)
	}
	if !x.Register("http://e/y", "other") || x.Len() != 2 {
		t.Fatalf("expected two entries, got %d", x.Len())
	}
	if _, ok := x.Lookup("missing"); ok {
		t.Fatalf("lookup of unknown id must fail")
	}
}

func TestPath_Pointer(t *testing.T) {
	cases := []struct {
		p    eng.Path
		want string
	}{
		{eng.Root(), "/"},
		{eng.Root().Field("alps").Field("descriptor").Index(2).Field("id"), "/alps/descriptor/2/id"},
		{eng.Root().Field("a/b").Field("c~d"), "/a~1b/c~0d"},
	}
	for _, c := range cases {
		if got := c.p.Pointer(); got != c.want {
			t.Fatalf("got %q want %q", got, c.want)
		}
	}
}

func TestPath_IsImmutable(t *testing.T) {
	base := eng.Root().Field("a")
	x := base.Field("x")
	y := base.Field("y")
	if x.String() != "/a/x" || y.String() != "/a/y" || base.String() != "/a" {
		t.Fatalf("paths share state: %s %s %s", base, x, y)
	}
}
