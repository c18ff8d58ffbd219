package content

import "testing"

func TestNewItem(t *testing.T) {
	it := NewItem()
	if !it.IsDraft {
		t.Error("new item should start as draft")
	}
	if it.Content == nil || len(it.Content) != 0 {
		t.Errorf("Content = %v, want empty non-nil", it.Content)
	}
	if !it.IsNew() {
		t.Error("new item should report IsNew")
	}
}

func TestParseCollection(t *testing.T) {
	tests := []struct {
		input string
		want  Collection
		ok    bool
	}{
		{"blogs", Blogs, true},
		{"Games", Games, true},
		{" projects ", Projects, true},
		{"posts", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCollection(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCollection(%q) = %q, %v", tt.input, got, ok)
		}
	}
}

func TestCollectionLabels(t *testing.T) {
	if got := Projects.Label(); got != "Projects" {
		t.Errorf("Label = %q", got)
	}
	if got := Games.Singular(); got != "Game" {
		t.Errorf("Singular = %q", got)
	}
	if got := Blogs.Path(); got != "/blogs/" {
		t.Errorf("Path() = %q", got)
	}
	if got := Blogs.Path("hello"); got != "/blogs/hello/" {
		t.Errorf("Path(hello) = %q", got)
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" go, web ,,Go ")
	want := []string{"go", "web", "Go"}
	if len(got) != len(want) {
		t.Fatalf("ParseTags = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d = %q, want %q", i, got[i], want[i])
		}
	}
	if got := ParseTags(""); got == nil || len(got) != 0 {
		t.Errorf("ParseTags(\"\") = %v, want empty", got)
	}
}

func TestHasTag(t *testing.T) {
	it := Item{Tags: []string{"Go", "web"}}
	if !it.HasTag("go") || !it.HasTag(" WEB ") {
		t.Error("expected case-insensitive match")
	}
	if it.HasTag("rust") {
		t.Error("unexpected match")
	}
}
