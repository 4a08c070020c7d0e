// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"unicode/utf8"
)

// Request limits for the slug API.
const (
	maxPromptLen = 10_000
	// maxBodyBytes leaves room for JSON escaping of a maximal prompt.
	maxBodyBytes = 128 << 10
)

// validatePrompt returns a user-facing message when prompt is unusable.
// Empty prompts are allowed and yield a timestamp slug.
func validatePrompt(prompt string) string {
	if !utf8.ValidString(prompt) {
		return "Prompt must be valid UTF-8."
	}
	if n := utf8.RuneCountInString(prompt); n > maxPromptLen {
		return fmt.Sprintf("Prompt is too long (%d characters, max %d).", n, maxPromptLen)
	}
	return ""
}
