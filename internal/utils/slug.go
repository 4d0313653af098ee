// internal/utils/slug.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStrip      = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fa5}-]`)
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugDashes     = regexp.MustCompile(`-+`)
)

const maxSlugBase = 100

// Slugify lowercases the title and keeps letters, digits, CJK ideographs
// and single dashes.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if runes := []rune(s); len(runes) > maxSlugBase {
		s = strings.TrimRight(string(runes[:maxSlugBase]), "-")
	}
	return s
}

// UniqueSlug appends a base36 millisecond suffix to the slugified title.
func UniqueSlug(title string, now time.Time) string {
	suffix := strconv.FormatInt(now.UnixMilli(), 36)
	base := Slugify(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
