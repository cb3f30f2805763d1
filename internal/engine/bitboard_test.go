// path: evochess/internal/engine/bitboard_test.go
package engine

import (
	"encoding/json"
	"testing"
)

func TestBitboardSetOperations(t *testing.T) {
	var bb Bitboard
	if !bb.Empty() {
		t.Fatalf("zero bitboard should be empty")
	}

	a1 := mustSquare(t, "a1")
	e4 := mustSquare(t, "e4")
	h8 := mustSquare(t, "h8")

	bb = bb.Add(a1).Add(e4).Add(h8).Add(e4)
	if bb.Count() != 3 {
		t.Fatalf("count = %d, want 3", bb.Count())
	}
	if !bb.Has(e4) || bb.Has(mustSquare(t, "d4")) {
		t.Fatalf("membership checks failed for %v", bb.Squares())
	}

	bb = bb.Remove(e4)
	if bb.Has(e4) {
		t.Fatalf("e4 should be removed")
	}
	bb = bb.Remove(e4)
	if bb.Count() != 2 {
		t.Fatalf("double remove changed the set, count = %d", bb.Count())
	}
}

func TestBitboardIterationAscends(t *testing.T) {
	bb := BB(mustSquare(t, "h8")) | BB(mustSquare(t, "a1")) | BB(mustSquare(t, "d4"))

	want := []Square{mustSquare(t, "a1"), mustSquare(t, "d4"), mustSquare(t, "h8")}
	got := bb.Squares()
	if len(got) != len(want) {
		t.Fatalf("squares = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("squares = %v, want %v", got, want)
		}
	}

	sq, rest := bb.PopLSB()
	if sq != want[0] {
		t.Fatalf("PopLSB returned %s, want %s", sq, want[0])
	}
	if rest.Count() != 2 || rest.Has(want[0]) {
		t.Fatalf("PopLSB remainder wrong: %v", rest.Squares())
	}

	if sq, rest := Bitboard(0).PopLSB(); sq != 0 || rest != 0 {
		t.Fatalf("PopLSB on empty set returned %d/%d", sq, rest)
	}
}

func TestBitboardJSONCodec(t *testing.T) {
	bb := BB(mustSquare(t, "a1")) | BB(mustSquare(t, "h8"))

	data, err := json.Marshal(bb)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a1","h8"]` {
		t.Fatalf("marshal produced %s", data)
	}

	var decoded Bitboard
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != bb {
		t.Fatalf("round trip produced %v, want %v", decoded.Squares(), bb.Squares())
	}

	if err := json.Unmarshal([]byte(`["z9"]`), &decoded); err == nil {
		t.Fatalf("expected invalid coordinate to be rejected")
	}
}
