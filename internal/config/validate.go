package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// namePattern matches GitHub owner and repository names.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// LogLevels are the accepted values of log.level.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the config for required fields and valid values. Every
// problem is reported, not just the first.
func Validate(c *Config) error {
	var errs []string

	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	add(validateName("repository.owner", c.Repository.Owner))
	add(validateName("repository.name", c.Repository.Name))
	add(validateURL("releases_page", c.ReleasesPage))
	add(validateURL("api_base_url", c.APIBaseURL))
	add(validateDuration("http.timeout", c.HTTP.Timeout))
	add(validateDuration("server.cache_ttl", c.Server.CacheTTL))
	add(validateLogLevel(c.Log.Level))

	if c.UpdatesEnabled() && c.Updates.DownloadDir == "" {
		add(ValidationError{Field: "updates.download_dir", Message: "required when updates are enabled"})
	}
	if c.KeepInstallers() < 0 {
		add(ValidationError{Field: "updates.keep", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validateName(field, value string) error {
	if value == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	if !namePattern.MatchString(value) {
		return ValidationError{Field: field, Message: fmt.Sprintf("invalid name '%s'", value)}
	}
	return nil
}

func validateURL(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be an absolute http(s) URL, got '%s'", value)}
	}
	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return ValidationError{Field: field, Message: fmt.Sprintf("invalid duration '%s'", value)}
	}
	if d <= 0 {
		return ValidationError{Field: field, Message: "must be positive"}
	}
	return nil
}

func validateLogLevel(level string) error {
	if level == "" {
		return nil
	}
	for _, l := range LogLevels {
		if strings.EqualFold(level, l) {
			return nil
		}
	}
	return ValidationError{
		Field:   "log.level",
		Message: fmt.Sprintf("unknown level '%s' (must be one of %s)", level, strings.Join(LogLevels, ", ")),
	}
}
