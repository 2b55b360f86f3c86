package config

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected Format
	}{
		{"yaml extension", "qboxup.yaml", "", FormatYAML},
		{"yml extension", "qboxup.yml", "", FormatYAML},
		{"toml extension", "qboxup.toml", "", FormatTOML},
		{"json extension", "qboxup.json", "", FormatJSON},
		{"uppercase extension", "QBOXUP.YAML", "", FormatYAML},
		{"json content", "qboxup", `{"repository": {"owner": "o"}}`, FormatJSON},
		{"yaml content", "qboxup", "repository:\n  owner: o", FormatYAML},
		{"toml table content", "qboxup", "[repository]\nowner = \"o\"", FormatTOML},
		{"toml key content", "qboxup", `api_base_url = "https://example.com"`, FormatTOML},
		{"comments skipped", "qboxup", "# settings\n\nlog:\n  level: debug", FormatYAML},
		{"unknown content", "qboxup", "just words", FormatUnknown},
		{"empty content", "qboxup", "", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFormat(tt.path, []byte(tt.content))
			if got != tt.expected {
				t.Errorf("detectFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple var", "${TEST_VAR}", "test_value"},
		{"var with default", "${MISSING_VAR:-default_value}", "default_value"},
		{"existing var ignores default", "${TEST_VAR:-default_value}", "test_value"},
		{"empty var uses default", "${EMPTY_VAR:-default_value}", "default_value"},
		{"missing var without default", "${MISSING_VAR}", ""},
		{"no var", "plain text", "plain text"},
		{"mixed content", "prefix ${TEST_VAR} suffix", "prefix test_value suffix"},
		{"several refs", "https://github.com/${TEST_VAR}/${MISSING_VAR:-qbox}", "https://github.com/test_value/qbox"},
		{"bare dollar untouched", "cost: $TEST_VAR", "cost: $TEST_VAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(ExpandEnv([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("ExpandEnv() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// checkParsed asserts the fields shared by the parse fixtures.
func checkParsed(t *testing.T, cfg *Config) {
	t.Helper()

	if cfg.Repository.Owner != "acme" || cfg.Repository.Name != "qbox-desktop" {
		t.Errorf("Repository = %s, want acme/qbox-desktop", cfg.Repository)
	}
	if cfg.APIBaseURL != "https://ghe.example.com/api/v3" {
		t.Errorf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.Updates.Enabled == nil || *cfg.Updates.Enabled {
		t.Error("Updates.Enabled should be explicitly false")
	}
	if !cfg.Updates.CheckOnStart {
		t.Error("Updates.CheckOnStart should be true")
	}
	if cfg.HTTP.Timeout != "30s" {
		t.Errorf("HTTP.Timeout = %s, want 30s", cfg.HTTP.Timeout)
	}
	if cfg.Server.Listen != ":9000" || cfg.Server.CacheTTL != "1m" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Color == nil || *cfg.Log.Color {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestParseYAML(t *testing.T) {
	content := []byte(`
repository:
  owner: acme
  name: qbox-desktop
api_base_url: https://ghe.example.com/api/v3
updates:
  enabled: false
  check_on_start: true
http:
  timeout: 30s
server:
  listen: ":9000"
  cache_ttl: 1m
log:
  level: debug
  color: false
`)

	cfg, err := parse(content, FormatYAML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	checkParsed(t, cfg)
}

func TestParseTOML(t *testing.T) {
	content := []byte(`
api_base_url = "https://ghe.example.com/api/v3"

[repository]
owner = "acme"
name = "qbox-desktop"

[updates]
enabled = false
check_on_start = true

[http]
timeout = "30s"

[server]
listen = ":9000"
cache_ttl = "1m"

[log]
level = "debug"
color = false
`)

	cfg, err := parse(content, FormatTOML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	checkParsed(t, cfg)
}

func TestParseJSON(t *testing.T) {
	content := []byte(`{
  "repository": {"owner": "acme", "name": "qbox-desktop"},
  "api_base_url": "https://ghe.example.com/api/v3",
  "updates": {"enabled": false, "check_on_start": true},
  "http": {"timeout": "30s"},
  "server": {"listen": ":9000", "cache_ttl": "1m"},
  "log": {"level": "debug", "color": false}
}`)

	cfg, err := parse(content, FormatJSON)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	checkParsed(t, cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  Format
	}{
		{"bad yaml", "repository: [", FormatYAML},
		{"bad toml", "[repository", FormatTOML},
		{"bad json", `{"repository":`, FormatJSON},
		{"unknown format", "repository: x", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.content), tt.format); err == nil {
				t.Error("parse() error = nil, want error")
			}
		})
	}
}

func TestParseEnvVarExpansion(t *testing.T) {
	t.Setenv("QBOX_OWNER", "forked")

	content := []byte(`
repository:
  owner: ${QBOX_OWNER}
  name: ${QBOX_REPO:-qbox}
`)

	cfg, err := parse(content, FormatYAML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if cfg.Repository.Owner != "forked" || cfg.Repository.Name != "qbox" {
		t.Errorf("Repository = %s, want forked/qbox", cfg.Repository)
	}
}
