package entity

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	slugForbidden = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify вычисляет URL-slug из названия:
// нижний регистр, пробельные символы -> "-", все кроме [a-z0-9-] удаляется.
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	return slugForbidden.ReplaceAllString(slug, "")
}
