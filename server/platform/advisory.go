package platform

// Advisory severity levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
)

// Advisory is a non-blocking pre-flight report on a platform's cookie
// requirements. It never prevents an action, it only informs the user.
type Advisory struct {
	RequiresCookies bool   `json:"requires_cookies"`
	Message         string `json:"message"`
	Level           string `json:"level"`
}

// CheckRequirements reports whether the URL's platform mandates
// cookies and whether any are currently available. cookiesAvailable
// comes from the cookie store so the registry stays free of I/O.
func (r *Registry) CheckRequirements(rawURL string, cookiesAvailable bool) Advisory {
	cfg := r.Resolve(rawURL)

	if cfg == nil {
		return Advisory{
			RequiresCookies: false,
			Message:         "Platform not specifically configured. Standard download will be attempted.",
			Level:           LevelInfo,
		}
	}

	description := cfg.Description
	if description == "" {
		description = "Unknown"
	}

	if cfg.RequiresCookies {
		if cookiesAvailable {
			return Advisory{
				RequiresCookies: true,
				Message:         "Platform: " + description + " - Cookies available for full access.",
				Level:           LevelSuccess,
			}
		}
		return Advisory{
			RequiresCookies: true,
			Message:         "Platform: " + description + " - Cookies recommended for full video access. You may only get trailers without authentication.",
			Level:           LevelWarning,
		}
	}

	return Advisory{
		RequiresCookies: false,
		Message:         "Platform: " + description + " - No special requirements.",
		Level:           LevelInfo,
	}
}
