package platform

import (
	_ "embed"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yml
var defaultRegistry []byte

// Config is a per-platform fetch policy, keyed by normalized domain.
// Entries are immutable once loaded.
type Config struct {
	RequiresCookies bool              `yaml:"requires_cookies" json:"requires_cookies"`
	Description     string            `yaml:"description" json:"description"`
	UserAgent       string            `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Referer         string            `yaml:"referer,omitempty" json:"referer,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	SupportsPhotos  bool              `yaml:"supports_photos,omitempty" json:"supports_photos,omitempty"`
}

type Registry struct {
	entries map[string]*Config
	// domains sorted for deterministic suffix matching
	domains []string
}

// LoadRegistry reads the platform registry from path, or from the
// embedded default set when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	raw := defaultRegistry

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	entries := make(map[string]*Config)
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	domains := make([]string, 0, len(entries))
	for domain := range entries {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	return &Registry{entries: entries, domains: domains}, nil
}

func (r *Registry) Domains() []string { return r.domains }

// CookieMandatory lists the domains whose policy requires cookies.
func (r *Registry) CookieMandatory() []string {
	var mandatory []string
	for _, domain := range r.domains {
		if r.entries[domain].RequiresCookies {
			mandatory = append(mandatory, domain)
		}
	}
	return mandatory
}

// Resolve maps a URL to its platform policy. The host is lowercased
// and stripped of a leading "www."; an exact registry match wins,
// otherwise the first registered domain which is a suffix of the host
// (subdomains). A nil result means no policy: callers fall back to
// generic defaults with no cookie requirement.
func (r *Registry) Resolve(rawURL string) *Config {
	if rawURL == "" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if cfg, ok := r.entries[host]; ok {
		return cfg
	}

	for _, domain := range r.domains {
		if strings.HasSuffix(host, domain) {
			return r.entries[domain]
		}
	}

	return nil
}

// DescriptionFor is Resolve with a generic fallback name, for user
// facing messages.
func (r *Registry) DescriptionFor(rawURL string) string {
	if cfg := r.Resolve(rawURL); cfg != nil && cfg.Description != "" {
		return cfg.Description
	}
	return "this platform"
}
