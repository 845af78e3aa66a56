package content

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestSlugify_FileBaseNames(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jetpack_Compose", "jetpack-compose"},
		{"Kotlin", "kotlin"},
		{"C# Basics", "c-basics"},
		{"  spaced   out  ", "spaced-out"},
		{"already-a-slug", "already-a-slug"},
		{"Mixed_Sep-arators here", "mixed-sep-arators-here"},
		{"trailing_", "trailing"},
		{"__", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify_CapsLength(t *testing.T) {
	long := strings.Repeat("a", 200)
	if got := Slugify(long); len(got) != 80 {
		t.Errorf("expected 80-byte slug, got %d bytes", len(got))
	}
	// A hyphen landing on the cut boundary must not survive as a trailing
	// hyphen.
	boundary := strings.Repeat("a", 79) + "-bcd"
	got := Slugify(boundary)
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := Slugify(s)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

func TestSlugify_OutputCharset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		got := Slugify(s)
		if len(got) > 80 {
			t.Fatalf("slug %q exceeds 80 bytes", got)
		}
		if strings.Contains(got, "--") {
			t.Fatalf("slug %q contains a hyphen run", got)
		}
		if got != strings.Trim(got, "-") {
			t.Fatalf("slug %q has a leading or trailing hyphen", got)
		}
		for _, r := range got {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
				t.Fatalf("slug %q contains invalid rune %q", got, r)
			}
		}
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jetpack_compose", "Jetpack Compose"},
		{"Kotlin", "Kotlin"},
		{"unit-testing", "Unit Testing"},
		{"  ruby   on_rails ", "Ruby On Rails"},
	}
	for _, tc := range tests {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
