package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Contract Vote Results", "contract-vote-results"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Special!! Characters??", "special-characters"},
		{"Already-slugged-title", "already-slugged-title"},
		{"Numbers 2026 stay", "numbers-2026-stay"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractExcerpt(t *testing.T) {
	t.Run("strips markup", func(t *testing.T) {
		got := ExtractExcerpt(`<p>Meeting moved to <strong>Hall B</strong>.</p>`)
		if got != "Meeting moved to Hall B." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got := ExtractExcerpt("<p>one\n\n  two</p><p>three</p>")
		if got != "one two three" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("truncates on a word boundary", func(t *testing.T) {
		long := "<p>" + strings.Repeat("word ", 100) + "</p>"
		got := ExtractExcerpt(long)
		if len(got) > excerptMaxLength+len("…") {
			t.Errorf("excerpt too long: %d", len(got))
		}
		if !strings.HasSuffix(got, "…") {
			t.Error("truncated excerpt should end with ellipsis")
		}
		if strings.Contains(got, "wor…") {
			t.Error("should not cut mid-word")
		}
	})

	t.Run("truncates multibyte text on a rune boundary", func(t *testing.T) {
		got := ExtractExcerpt("<p>" + strings.Repeat("名", 300) + "</p>")
		if !utf8.ValidString(got) {
			t.Fatalf("excerpt is not valid UTF-8: %q", got)
		}
		if !strings.HasSuffix(got, "…") {
			t.Error("truncated excerpt should end with ellipsis")
		}
		if len(got) > excerptMaxLength+len("…") {
			t.Errorf("excerpt too long: %d", len(got))
		}
	})

	t.Run("short body untouched", func(t *testing.T) {
		got := ExtractExcerpt("<p>Short note.</p>")
		if got != "Short note." {
			t.Errorf("got %q", got)
		}
	})
}
