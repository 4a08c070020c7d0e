// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

// newMistral creates a Mistral provider. Mistral exposes an
// OpenAI-compatible chat API at a different base URL.
func newMistral(cfg ProviderConfig) *chatProvider {
	return newChat("mistral", "https://api.mistral.ai/v1", cfg)
}

// newOpenRouter creates an OpenRouter provider. OpenRouter routes
// vendor-prefixed model ids ("google/gemini-2.5-flash") through the
// OpenAI wire format and uses the optional attribution headers below.
func newOpenRouter(cfg ProviderConfig) *chatProvider {
	p := newChat("openrouter", "https://openrouter.ai/api/v1", cfg)
	p.headers = map[string]string{
		"HTTP-Referer": "https://github.com/dmux/dmux",
		"X-Title":      "dmux",
	}
	return p
}
