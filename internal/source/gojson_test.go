package source_test

import (
	"io"
	"testing"

	eng "github.com/reoring/goalps/internal/engine"
	"github.com/reoring/goalps/internal/source"
)

func TestJSONSource_TokenKinds(t *testing.T) {
	src := source.NewJSONBytes([]byte(`{"k":["s",1,true,null,{}]}`))
	want := []eng.Kind{
		eng.KindBeginObject, eng.KindKey, eng.KindBeginArray,
		eng.KindString, eng.KindNumber, eng.KindBool, eng.KindNull,
		eng.KindBeginObject, eng.KindEndObject,
		eng.KindEndArray, eng.KindEndObject,
	}
	for i, k := range want {
		tok, err := src.NextToken()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if tok.Kind != k {
			t.Fatalf("token %d: got kind %d want %d", i, tok.Kind, k)
		}
		if k == eng.KindKey && tok.String != "k" {
			t.Fatalf("expected key k, got %q", tok.String)
		}
		if k == eng.KindNumber && tok.Number != "1" {
			t.Fatalf("expected number literal 1, got %q", tok.Number)
		}
	}
	if _, err := src.NextToken(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if src.Location() <= 0 {
		t.Fatalf("expected a positive offset, got %d", src.Location())
	}
}

func TestJSONSource_StringValueIsNotKey(t *testing.T) {
	src := source.NewJSONBytes([]byte(`{"a":"b","c":"d"}`))
	var kinds []eng.Kind
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []eng.Kind{eng.KindBeginObject, eng.KindKey, eng.KindString, eng.KindKey, eng.KindString, eng.KindEndObject}
	if len(kinds) != len(want) {
		t.Fatalf("got %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %d want %d", i, kinds[i], want[i])
		}
	}
}
