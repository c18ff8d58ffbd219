package content

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

func seqIDs(t *testing.T) {
	t.Helper()
	n := 0
	prev := newID
	newID = func() string {
		n++
		return "b" + strconv.Itoa(n)
	}
	t.Cleanup(func() { newID = prev })
}

func ids(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAppendAddsBlockAtEnd(t *testing.T) {
	seqIDs(t)
	blocks := Append(nil, Text, "hello")
	blocks = Append(blocks, Video, "https://example.com/watch?v=abc123")
	if len(blocks) != 2 {
		t.Fatalf("len = %d, want 2", len(blocks))
	}
	last := blocks[1]
	if last.Kind != Video || last.Payload != "https://example.com/watch?v=abc123" {
		t.Errorf("last block = %+v", last)
	}
	if blocks[0].ID == blocks[1].ID {
		t.Errorf("block ids should be unique, both %q", blocks[0].ID)
	}
}

func TestAppendIgnoresBlankPayload(t *testing.T) {
	seqIDs(t)
	start := Append(nil, Text, "kept")
	for _, payload := range []string{"", "   ", "\n\t "} {
		got := Append(start, Image, payload)
		if !equalIDs(ids(got), ids(start)) {
			t.Errorf("Append(%q) changed blocks: %v", payload, ids(got))
		}
	}
}

func TestAppendIgnoresUnknownKind(t *testing.T) {
	got := Append(nil, Kind("audio"), "x")
	if len(got) != 0 {
		t.Fatalf("expected no block for unknown kind, got %v", got)
	}
}

func TestAppendDoesNotAliasInput(t *testing.T) {
	seqIDs(t)
	base := make([]Block, 1, 4)
	base[0] = Block{ID: "a", Kind: Text, Payload: "a"}
	one := Append(base, Text, "one")
	two := Append(base, Text, "two")
	if one[1].Payload != "one" || two[1].Payload != "two" {
		t.Fatalf("appends share storage: %v / %v", one, two)
	}
}

func TestAppendRemoveRoundTrip(t *testing.T) {
	seqIDs(t)
	start := Append(Append(nil, Text, "a"), GIF, "https://example.com/a.gif")
	added := Append(start, Image, "https://example.com/b.png")
	newest := added[len(added)-1].ID
	got := Remove(added, newest)
	if !equalIDs(ids(got), ids(start)) {
		t.Errorf("round trip = %v, want %v", ids(got), ids(start))
	}
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	seqIDs(t)
	start := Append(nil, Text, "a")
	got := Remove(start, "missing")
	if !equalIDs(ids(got), ids(start)) {
		t.Errorf("Remove(missing) = %v", ids(got))
	}
}

func TestMove(t *testing.T) {
	blocks := []Block{
		{ID: "A", Kind: Text, Payload: "a"},
		{ID: "B", Kind: Text, Payload: "b"},
		{ID: "C", Kind: Text, Payload: "c"},
	}
	tests := []struct {
		name string
		id   string
		dir  Direction
		want []string
	}{
		{"middle up", "B", Up, []string{"B", "A", "C"}},
		{"middle down", "B", Down, []string{"A", "C", "B"}},
		{"first up", "A", Up, []string{"A", "B", "C"}},
		{"last down", "C", Down, []string{"A", "B", "C"}},
		{"missing", "Z", Up, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		got := Move(blocks, tt.id, tt.dir)
		if !equalIDs(ids(got), tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, ids(got), tt.want)
		}
	}
	if !equalIDs(ids(blocks), []string{"A", "B", "C"}) {
		t.Errorf("input mutated: %v", ids(blocks))
	}
}

func TestMoveUpThenDownRestoresOrder(t *testing.T) {
	blocks := []Block{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	up := Move(blocks, "B", Up)
	if !equalIDs(ids(up), []string{"B", "A", "C"}) {
		t.Fatalf("after up = %v", ids(up))
	}
	down := Move(up, "B", Down)
	if !equalIDs(ids(down), []string{"A", "B", "C"}) {
		t.Fatalf("after down = %v", ids(down))
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("audio"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(audio) err = %v, want ErrUnknownKind", err)
	}
}

func TestBlockJSONRejectsUnknownKind(t *testing.T) {
	var b Block
	if err := json.Unmarshal([]byte(`{"id":"1","type":"video","content":"x"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Kind != Video || b.Payload != "x" {
		t.Errorf("decoded %+v", b)
	}
	if err := json.Unmarshal([]byte(`{"id":"1","type":"audio","content":"x"}`), &b); err == nil {
		t.Error("expected error for unknown kind")
	}
}
