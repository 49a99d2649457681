// Package content works on the rich-text article body: plain text extraction,
// reading time, slugs and word level comparison.
package content

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const WordsPerMinute = 225

// PlainText extracts the text of a rich-content document by concatenating its
// leaf "text" nodes depth first. Content that is not JSON is returned as is.
func PlainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return trimmed
	}

	parts := make([]string, 0, 16)
	collectText(doc, &parts)
	return strings.Join(parts, " ")
}

func collectText(node any, parts *[]string) {
	switch v := node.(type) {
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			if text = strings.TrimSpace(text); text != "" {
				*parts = append(*parts, text)
			}
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			if key != "text" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectText(v[key], parts)
		}
	case []any:
		for _, child := range v {
			collectText(child, parts)
		}
	case string:
		// bare strings are attribute values, not document text
	}
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns the reading time in minutes, never less than one.
func ReadingTime(raw string) int {
	words := WordCount(PlainText(raw))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// AverageSentenceLength returns the mean number of words per sentence, where
// sentences end with '.', '!' or '?'.
func AverageSentenceLength(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	total, count := 0, 0
	for _, s := range sentences {
		if n := WordCount(s); n > 0 {
			total += n
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// Slugify lowercases s, turns every run of non-alphanumeric characters into a
// single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "article"
	}
	return slug
}

// UniqueSlug returns base, or base-N with the smallest N >= 1 not in taken.
func UniqueSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		used[t] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

type WordDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// DiffWords is a set difference over whitespace separated words. Word order and
// repetition are ignored.
func DiffWords(from, to string) WordDiff {
	fromSet := wordSet(from)
	toSet := wordSet(to)

	diff := WordDiff{Added: []string{}, Removed: []string{}}
	for w := range toSet {
		if _, ok := fromSet[w]; !ok {
			diff.Added = append(diff.Added, w)
		}
	}
	for w := range fromSet {
		if _, ok := toSet[w]; !ok {
			diff.Removed = append(diff.Removed, w)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	return diff
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}
