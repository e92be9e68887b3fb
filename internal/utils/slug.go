// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugBase caps the length of the name-derived part of a slug; a uniqueness
// suffix may be appended on top of this (see SlugWithSuffix).
const maxSlugBase = 50

// unaccent decomposes to NFD, strips combining marks, and recomposes,
// so "Café Müller" slugifies the same as "Cafe Muller".
var unaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts an arbitrary name to a URL-safe slug: accents folded,
// lowercased, non-alphanumeric runs collapsed to single hyphens, trimmed,
// and capped at maxSlugBase bytes.
//
// Example:
//
//	Slugify("St. Oberholz, Berlin") // "st-oberholz-berlin"
//	Slugify("Café Müller")          // "cafe-muller"
func Slugify(name string) string {
	folded, _, err := transform.String(unaccent, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphen
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if len(s) > maxSlugBase {
		s = strings.TrimRight(s[:maxSlugBase], "-")
	}
	return s
}

// SlugWithSuffix builds a slug from name and appends the first 8 characters
// of id to keep slugs unique across cafes with identical names.
func SlugWithSuffix(name, id string) string {
	base := Slugify(name)
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
