// Package render substitutes collected statistics into the profile SVG templates.
package render

import (
	"sort"
	"strings"

	"github.com/lelborn/lelborn/internal/config"
	"github.com/lelborn/lelborn/internal/domain"
	"github.com/lelborn/lelborn/internal/format"
)

// Placeholder tokens recognized in the templates.
const (
	TokenCommits        = "{COMMITS}"
	TokenContrib        = "{CONTRIB}"
	TokenStars          = "{STARS}"
	TokenLOCTotal       = "{LOC_TOTAL}"
	TokenLOCAdd         = "{LOC_ADD}"
	TokenLOCDel         = "{LOC_DEL}"
	TokenAge            = "{AGE}"
	TokenEnvironment    = "{ENVIRONMENT}"
	TokenLanguages      = "{LANGUAGES}"
	TokenServerRegion   = "{SERVER_REGION}"
	TokenHostPlatform   = "{HOST_PLATFORM}"
	TokenLinkedIn       = "{LINKEDIN}"
	TokenBuildTimestamp = "{BUILD_TIMESTAMP}"
)

// Bare literals replaced wherever they appear, braces or not. They match the
// default content of the shipped templates, so changing those defaults breaks
// the replacement silently.
const (
	LiteralTwitter = "twitter.com/lelborn"
	LiteralWebsite = "lewiselborn.com"
	LiteralEmail   = "lewis@lewiselborn.com"
)

// Replacements maps a token or literal to the text that replaces it.
type Replacements map[string]string

// Environment describes the development machine shown on the profile.
type Environment struct {
	OS      string
	Version string
	Editor  string
}

// Values are the configured, non-statistical profile fields.
type Values struct {
	Environment  Environment
	Languages    []string
	ServerRegion string
	HostPlatform string
	LinkedIn     string
	Twitter      string
	Website      string
	Email        string
}

// ValuesFromConfig reads the profile fields, falling back to the default profile per key.
func ValuesFromConfig(cfg *config.Config) Values {
	return Values{
		Environment: Environment{
			OS:      cfg.ProfileString("environment.os"),
			Version: cfg.ProfileString("environment.version"),
			Editor:  cfg.ProfileString("environment.editor"),
		},
		Languages:    cfg.ProfileStrings("packaging_languages.languages"),
		ServerRegion: cfg.ProfileString("server_region.region"),
		HostPlatform: cfg.ProfileString("host.platform"),
		LinkedIn:     cfg.ProfileString("social.linkedin"),
		Twitter:      cfg.ProfileString("social.twitter"),
		Website:      cfg.ProfileString("social.website"),
		Email:        cfg.ProfileString("social.email"),
	}
}

// BuildReplacements formats the statistics and profile values into the token vocabulary.
// {BUILD_TIMESTAMP} is only replaced when buildTimestamp is non-empty.
func BuildReplacements(stats domain.Stats, values Values, buildTimestamp string) Replacements {
	r := Replacements{
		TokenCommits:      format.Number(stats.Commits),
		TokenContrib:      format.Number(stats.ContribRepos),
		TokenStars:        format.Number(stats.Stars),
		TokenLOCTotal:     format.Number(stats.LinesOfCode.Total),
		TokenLOCAdd:       format.Number(stats.LinesOfCode.Added),
		TokenLOCDel:       format.Number(stats.LinesOfCode.Deleted),
		TokenAge:          stats.Age,
		TokenEnvironment:  values.Environment.String(),
		TokenLanguages:    strings.Join(values.Languages, ", "),
		TokenServerRegion: values.ServerRegion,
		TokenHostPlatform: values.HostPlatform,
		TokenLinkedIn:     values.LinkedIn,
		LiteralTwitter:    values.Twitter,
		LiteralWebsite:    values.Website,
		LiteralEmail:      values.Email,
	}
	if buildTimestamp != "" {
		r[TokenBuildTimestamp] = buildTimestamp
	}
	return r
}

// String renders the environment as "<os> (<version>) • <editor>".
func (e Environment) String() string {
	return e.OS + " (" + e.Version + ") • " + e.Editor
}

// Substitute replaces every occurrence of each key in doc with its value.
//
// The document is scanned once and replaced text is never scanned again.
// Where two keys match at the same position the longer one wins, so
// "lewis@lewiselborn.com" is replaced as an email before "lewiselborn.com"
// can match inside it.
func Substitute(doc string, repl Replacements) string {
	keys := make([]string, 0, len(repl))
	for k := range repl {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return doc
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	oldnew := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		oldnew = append(oldnew, k, repl[k])
	}
	return strings.NewReplacer(oldnew...).Replace(doc)
}
