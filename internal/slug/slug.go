// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns free-text task descriptions into short, branch-safe
// identifiers. Everything here is offline and deterministic except for the
// timestamp fallback.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// FallbackPrefix starts every timestamp-based slug.
	FallbackPrefix = "dmux-"

	// MaxWords and MaxLength bound the offline heuristic result.
	MaxWords  = 3
	MaxLength = 30
)

var (
	// nonWord matches anything that isn't a letter, digit, underscore,
	// whitespace, or hyphen once the input is lowercased ASCII.
	nonWord = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// nonSlug matches anything outside the slug alphabet.
	nonSlug = regexp.MustCompile(`[^a-z0-9-]`)
	// nonKebab is nonSlug plus whitespace, used before whitespace becomes hyphens.
	nonKebab = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// fallbackSlug is the shape Fallback produces.
	fallbackSlug = regexp.MustCompile(`^dmux-[0-9]+$`)
	// validSlug is the shape every content-derived slug must have.
	validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// now is swapped in tests.
var now = time.Now

// Simple derives a slug from prompt using stopword filtering only. It never
// fails: degenerate input yields the timestamp fallback.
// Example: "Fix the authentication bug" → "fix-authentication-bug"
func Simple(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return Fallback()
	}

	normalized := foldDiacritics(strings.ToLower(prompt))
	normalized = nonWord.ReplaceAllString(normalized, " ")

	words := make([]string, 0, MaxWords)
	for _, token := range strings.Fields(normalized) {
		token = tidy(strings.ReplaceAll(token, "_", "-"))
		if token == "" || IsStopword(token) {
			continue
		}
		words = append(words, token)
		if len(words) == MaxWords {
			break
		}
	}

	if len(words) == 0 {
		return Fallback()
	}

	return Truncate(strings.Join(words, "-"), MaxLength)
}

// Truncate shortens s to at most max bytes, backing off to the last hyphen
// so no word is cut in half. Without an interior hyphen the raw cut is kept.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}

	cut := s[:max]
	if i := strings.LastIndex(cut, "-"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

// Clean lowercases s and keeps only the slug alphabet. Hyphen runs collapse
// and edge hyphens are trimmed, so any non-empty result is Valid.
// Example: " `Auth-Fix`!\n" → "auth-fix"
func Clean(s string) string {
	result := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
	return tidy(result)
}

// Kebab normalises a freeform model answer into at most maxWords
// hyphen-separated words no longer than maxLen.
func Kebab(raw string, maxWords, maxLen int) string {
	result := nonKebab.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	result = whitespace.ReplaceAllString(result, "-")

	var words []string
	for _, w := range strings.Split(result, "-") {
		if w == "" {
			continue
		}
		words = append(words, w)
		if maxWords > 0 && len(words) == maxWords {
			break
		}
	}

	return Truncate(strings.Join(words, "-"), maxLen)
}

// Fallback returns "dmux-" followed by the current epoch milliseconds.
// Two calls in the same millisecond return the same value.
func Fallback() string {
	return FallbackPrefix + strconv.FormatInt(now().UnixMilli(), 10)
}

// IsFallback reports whether s has the timestamp fallback shape. A content
// slug such as "dmux-refactor" does not.
func IsFallback(s string) bool {
	return fallbackSlug.MatchString(s)
}

// Valid reports whether s is a non-empty slug made of [a-z0-9] runs joined
// by single hyphens.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

// tidy collapses hyphen runs and trims leading and trailing hyphens.
func tidy(s string) string {
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// foldDiacritics maps accented Latin letters to their ASCII base letter.
// Scripts without a decomposition are left alone and stripped later.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
