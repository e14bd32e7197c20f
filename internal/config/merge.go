package config

import (
	"time"

	"github.com/lelborn/lelborn/internal/domain"
)

// MergeGitHubData copies profile fields fetched from GitHub into the
// configuration. A field is only written when the configuration leaves it
// unset or empty; configured values always win. It returns the keys it filled.
func (c *Config) MergeGitHubData(info domain.UserInfo) []string {
	var filled []string
	fill := func(key, value string) {
		if value == "" || c.String(key, "") != "" {
			return
		}
		c.Set(key, value)
		filled = append(filled, key)
	}

	fill("social.website", deref(info.Website))
	if handle := deref(info.Twitter); handle != "" {
		fill("social.twitter", "twitter.com/"+handle)
	}
	fill("social.email", deref(info.Email))
	fill("personal.location", deref(info.Location))
	if !info.CreatedAt.IsZero() {
		fill("personal.github_joined", info.CreatedAt.UTC().Format(time.RFC3339))
	}
	return filled
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
