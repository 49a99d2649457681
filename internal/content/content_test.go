package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "   ", want: ""},
		{name: "not json", raw: "just some words", want: "just some words"},
		{
			name: "nested blocks",
			raw:  `{"blocks":[{"type":"p","text":"Hello"},{"type":"p","children":[{"text":"big"},{"text":" world "}]}]}`,
			want: "Hello big world",
		},
		{
			name: "attribute strings ignored",
			raw:  `{"type":"image","url":"https://example.com/a.png"}`,
			want: "",
		},
		{name: "array root", raw: `[{"text":"one"},{"text":"two"}]`, want: "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.raw))
		})
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{name: "empty is one minute", words: 0, want: 1},
		{name: "exactly one minute", words: 225, want: 1},
		{name: "rounds up", words: 226, want: 2},
		{name: "long read", words: 2250, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Repeat("word ", tt.words)
			assert.Equal(t, tt.want, ReadingTime(raw))
		})
	}
}

func TestAverageSentenceLength(t *testing.T) {
	assert.Equal(t, 0.0, AverageSentenceLength(""))
	assert.Equal(t, 2.0, AverageSentenceLength("One two. Three four! Five six?"))
	assert.Equal(t, 3.0, AverageSentenceLength("One two three..."))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello World", want: "hello-world"},
		{in: "  Go: 10 Tips & Tricks!  ", want: "go-10-tips-tricks"},
		{in: "already-a-slug", want: "already-a-slug"},
		{in: "Crème brûlée", want: "cr-me-br-l-e"},
		{in: "!!!", want: "article"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	assert.Equal(t, "post", UniqueSlug("post", nil))
	assert.Equal(t, "post", UniqueSlug("post", []string{"post-1"}))
	assert.Equal(t, "post-1", UniqueSlug("post", []string{"post"}))
	assert.Equal(t, "post-3", UniqueSlug("post", []string{"post", "post-1", "post-2", "post-10"}))
}

func TestDiffWords(t *testing.T) {
	diff := DiffWords("the quick brown fox", "the slow brown fox fox jumps")

	assert.Equal(t, []string{"jumps", "slow"}, diff.Added)
	assert.Equal(t, []string{"quick"}, diff.Removed)

	same := DiffWords("a b", "b a")
	assert.Empty(t, same.Added)
	assert.Empty(t, same.Removed)
}
