package content

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My First Post!!", "my-first-post"},
		{"Hello World", "hello-world"},
		{"padded   title", "padded-title"},
		{"  padded  ", "-padded-"},
		{"dash - separated", "dash-separated"},
		{"--leading and trailing--", "-leading-and-trailing-"},
		{"Rock -", "rock-"},
		{"- Intro", "-intro"},
		{"v1.0 - beta -", "v10-beta-"},
		{"snake_case stays", "snake_case-stays"},
		{"Go 1.24 released", "go-124-released"},
		{"Café au lait", "caf-au-lait"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
		{"!!!", ""},
		{"   ", ""},
		{"", ""},
		{"_-_", ""},
	}
	for _, tt := range tests {
		got := Slugify(tt.input)
		if got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"My First Post!!",
		"a  --  b",
		"Unicode ✓ title",
		"__init__ explained",
		"2024: A Year",
		"- edges -",
	}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify(Slugify(%q)) = %q, want %q", in, twice, once)
		}
	}
}
