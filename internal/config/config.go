// Package config loads the profile configuration and run settings.
//
// Profile values (environment, languages, social links, personal data) are read
// from a JSON document and addressed by dotted keys such as "social.email".
// Credentials come from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultPath is the profile document read when no path is given.
const DefaultPath = "profile_config.json"

// BirthdayLayout is the expected format of personal.birthday.
const BirthdayLayout = "2006-01-02"

const envPrefix = "PROFILE"

// Sentinel validation errors.
var (
	ErrMissingToken       = errors.New("ACCESS_TOKEN environment variable is required")
	ErrMissingBirthday    = errors.New("personal.birthday is required")
	ErrInvalidBirthday    = errors.New("personal.birthday must be formatted as YYYY-MM-DD")
	ErrInvalidPageSize    = errors.New("github.page_size must be between 1 and 100")
	ErrInvalidBatchSize   = errors.New("loc.batch_size must be positive")
	ErrInvalidCommitLimit = errors.New("loc.commits_per_repo must be between 1 and 100")
	ErrEmptyAffiliations  = errors.New("affiliation sets must not be empty")
)

// Config is the loaded configuration. It is not safe for concurrent use.
type Config struct {
	v            *viper.Viper
	path         string
	fromDefaults bool
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(logger logrus.FieldLogger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}
}

// Load reads the profile document at path (DefaultPath when empty) and binds
// the environment. A missing document is not an error: the built-in default
// profile is used instead. A document that cannot be parsed is an error.
func Load(path string, logger logrus.FieldLogger) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := newViper()
	cfg := &Config{v: v, path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", path).Warn("Config file not found, using default configuration")
		if err := v.MergeConfigMap(defaultProfile()); err != nil {
			return nil, fmt.Errorf("failed to apply default configuration: %w", err)
		}
		cfg.fromDefaults = true
		return cfg, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	logger.WithField("path", path).Info("Configuration loaded")
	return cfg, nil
}

// FromMap builds a Config from an in-memory profile document.
func FromMap(doc map[string]any) (*Config, error) {
	v := newViper()
	if err := v.MergeConfigMap(doc); err != nil {
		return nil, fmt.Errorf("failed to merge configuration: %w", err)
	}
	return &Config{v: v, path: "<memory>"}, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("github.username", DefaultUsername)
	v.SetDefault("github.graphql_url", DefaultGraphQLURL)
	v.SetDefault("github.rest_url", DefaultRESTURL)
	v.SetDefault("github.page_size", DefaultPageSize)
	v.SetDefault("github.max_rate_limit_wait", DefaultMaxRateLimitWait)
	v.SetDefault("stats.owner_affiliations", DefaultOwnerAffiliations)
	v.SetDefault("stats.contrib_affiliations", DefaultContribAffiliations)
	v.SetDefault("stats.window_days", DefaultWindowDays)
	v.SetDefault("loc.affiliations", DefaultOwnerAffiliations)
	v.SetDefault("loc.batch_size", DefaultBatchSize)
	v.SetDefault("loc.batch_pause", time.Duration(0))
	v.SetDefault("loc.commits_per_repo", DefaultCommitsPerRepo)
	v.SetDefault("templates.dark", DefaultDarkTemplate)
	v.SetDefault("templates.light", DefaultLightTemplate)
	v.SetDefault("build.timezone", DefaultTimezone)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", "ACCESS_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("github.username", "USER_NAME")

	return v
}

// Path returns the document path the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// FromDefaults reports whether the built-in default profile is in use.
func (c *Config) FromDefaults() bool { return c.fromDefaults }

// String returns the value at a dotted key, or def when the key is missing.
func (c *Config) String(key, def string) string {
	if !c.v.IsSet(key) || c.v.Get(key) == nil {
		return def
	}
	return c.v.GetString(key)
}

// Strings returns the list at a dotted key, or def when the key is missing.
func (c *Config) Strings(key string, def []string) []string {
	if !c.v.IsSet(key) || c.v.Get(key) == nil {
		return def
	}
	return c.v.GetStringSlice(key)
}

// ProfileString is String with the built-in default profile as fallback.
func (c *Config) ProfileString(key string) string {
	def, _ := lookupDefault(key)
	s, _ := def.(string)
	return c.String(key, s)
}

// ProfileStrings is Strings with the built-in default profile as fallback.
func (c *Config) ProfileStrings(key string) []string {
	var def []string
	if raw, ok := lookupDefault(key); ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				def = append(def, fmt.Sprint(item))
			}
		}
	}
	return c.Strings(key, def)
}

// Set overrides the value at a dotted key for the rest of the run.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// Token is the GitHub access token.
func (c *Config) Token() string { return c.v.GetString("github.token") }

// Username is the GitHub login whose statistics are collected.
func (c *Config) Username() string {
	if u := c.v.GetString("github.username"); u != "" {
		return u
	}
	return DefaultUsername
}

// GraphQLURL is the GraphQL endpoint.
func (c *Config) GraphQLURL() string { return c.v.GetString("github.graphql_url") }

// RESTURL is the REST API base URL.
func (c *Config) RESTURL() string { return c.v.GetString("github.rest_url") }

// PageSize is the number of repositories requested per GraphQL page.
func (c *Config) PageSize() int { return c.v.GetInt("github.page_size") }

// MaxRateLimitWait bounds a single secondary rate limit sleep. Zero never sleeps.
func (c *Config) MaxRateLimitWait() time.Duration {
	return c.v.GetDuration("github.max_rate_limit_wait")
}

// OwnerAffiliations scopes the star and repository counts.
func (c *Config) OwnerAffiliations() []string {
	return c.v.GetStringSlice("stats.owner_affiliations")
}

// ContribAffiliations scopes the contributed repository count.
func (c *Config) ContribAffiliations() []string {
	return c.v.GetStringSlice("stats.contrib_affiliations")
}

// LOCAffiliations scopes the lines of code aggregation.
func (c *Config) LOCAffiliations() []string {
	return c.v.GetStringSlice("loc.affiliations")
}

// WindowDays is the length of the trailing commit window.
func (c *Config) WindowDays() int { return c.v.GetInt("stats.window_days") }

// BatchSize is the number of repositories fetched per detail batch.
func (c *Config) BatchSize() int { return c.v.GetInt("loc.batch_size") }

// BatchPause is slept between detail batches.
func (c *Config) BatchPause() time.Duration { return c.v.GetDuration("loc.batch_pause") }

// CommitsPerRepo caps the commits inspected per repository.
func (c *Config) CommitsPerRepo() int { return c.v.GetInt("loc.commits_per_repo") }

// Templates returns the dark and light template paths.
func (c *Config) Templates() (dark, light string) {
	return c.v.GetString("templates.dark"), c.v.GetString("templates.light")
}

// Location is the time zone used for the build timestamp, UTC if unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.v.GetString("build.timezone"))
	if err != nil {
		return time.UTC
	}
	return loc
}

// Birthday parses personal.birthday.
func (c *Config) Birthday() (time.Time, error) {
	raw := c.String("personal.birthday", "")
	if raw == "" {
		return time.Time{}, ErrMissingBirthday
	}
	t, err := time.Parse(BirthdayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBirthday, raw)
	}
	return t, nil
}

// Validate checks everything a run needs before any network activity.
func (c *Config) Validate() error {
	var errs []error
	if c.Token() == "" {
		errs = append(errs, ErrMissingToken)
	}
	if _, err := c.Birthday(); err != nil {
		errs = append(errs, err)
	}
	if n := c.PageSize(); n < 1 || n > 100 {
		errs = append(errs, ErrInvalidPageSize)
	}
	if c.BatchSize() < 1 {
		errs = append(errs, ErrInvalidBatchSize)
	}
	if n := c.CommitsPerRepo(); n < 1 || n > 100 {
		errs = append(errs, ErrInvalidCommitLimit)
	}
	if len(c.OwnerAffiliations()) == 0 || len(c.ContribAffiliations()) == 0 || len(c.LOCAffiliations()) == 0 {
		errs = append(errs, ErrEmptyAffiliations)
	}
	return errors.Join(errs...)
}

func splitKey(key string) []string {
	return strings.Split(strings.ToLower(key), ".")
}
