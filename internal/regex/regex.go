// Package regex holds the precompiled patterns shared across packages.
package regex

import "regexp"

var (
	// Provider output parsing
	JSONObjectSpan = regexp.MustCompile(`(?s)\{.*\}`)
	JSONString     = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)

	// Provider error classification
	QuotaKeywords = regexp.MustCompile(`(?i)(quota|rate limit|resource exhausted|throttl|too many requests)`)
	AuthKeywords  = regexp.MustCompile(`(?i)(unauthorized|unrecognizedclient|invalid api key|api key not valid|security token|accessdenied|forbidden)`)
)
