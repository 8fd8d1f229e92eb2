package platform

import "strings"

// ClassifyError turns a raw extractor failure into an actionable user
// facing message. The rules are an ordered substring match on the raw
// text, branched on whether the platform mandates cookies. The raw
// message is opaque: the extractor exposes no typed taxonomy. Callers
// must keep the raw text in their logs, only the classified message
// reaches the user.
func ClassifyError(cfg *Config, raw string) string {
	lower := strings.ToLower(raw)

	if cfg != nil && cfg.RequiresCookies {
		description := cfg.Description
		if description == "" {
			description = "this platform"
		}

		switch {
		case strings.Contains(lower, "age-restricted"),
			strings.Contains(lower, "sign in"),
			strings.Contains(lower, "private"):
			return "Authentication required for " + description + ". Please upload cookies from your browser session."
		case strings.Contains(lower, "unavailable"):
			return "Content unavailable. Ensure you're logged in to " + description + " and have access to this content."
		default:
			return "Download failed: " + raw
		}
	}

	switch {
	case strings.Contains(raw, "Sign in to confirm your age"),
		strings.Contains(raw, "age-restricted"):
		return "Age-restricted. Try uploading cookies from your browser."
	case strings.Contains(raw, "This video is private"):
		return "Private content."
	case strings.Contains(lower, "unavailable"):
		return "Content unavailable or region-blocked. Try uploading cookies."
	default:
		return "Download failed: " + raw
	}
}
