package config

import "time"

// Default settings.
const (
	DefaultUsername         = "lelborn"
	DefaultGraphQLURL       = "https://api.github.com/graphql"
	DefaultRESTURL          = "https://api.github.com/"
	DefaultPageSize         = 100
	DefaultBatchSize        = 10
	DefaultCommitsPerRepo   = 100
	DefaultWindowDays       = 365
	DefaultDarkTemplate     = "profile-dark.svg"
	DefaultLightTemplate    = "profile-light.svg"
	DefaultTimezone         = "Europe/London"
	DefaultMaxRateLimitWait = time.Duration(0)
)

// Default affiliation sets.
var (
	DefaultOwnerAffiliations   = []string{"OWNER"}
	DefaultContribAffiliations = []string{"OWNER", "COLLABORATOR", "ORGANIZATION_MEMBER"}
)

// defaultProfile is the profile document used when no config file exists.
// Its values also back ProfileString lookups for keys a config file leaves out.
func defaultProfile() map[string]any {
	return map[string]any{
		"environment": map[string]any{
			"os":      "macOS Sequoia",
			"version": "15.5 (24F74)",
			"editor":  "VS Code (1.100.2)",
		},
		"packaging_languages": map[string]any{
			"languages": []any{"TypeScript", "Python", "Go", "React"},
		},
		"server_region": map[string]any{
			"region": "Europe/London",
		},
		"host": map[string]any{
			"platform": "Marketplace Platforms",
		},
		"social": map[string]any{
			"linkedin": "linkedin.com/lewiselborn",
			"twitter":  "twitter.com/lelborn",
			"website":  "lewiselborn.com",
			"email":    "lewis@lewiselborn.com",
		},
	}
}

// lookupDefault walks the default profile by dotted key.
func lookupDefault(key string) (any, bool) {
	var node any = defaultProfile()
	for _, part := range splitKey(key) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}
