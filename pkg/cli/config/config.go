/* Copyright 2025 Mochisync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config defines the typed run configuration and its fallback rules.
// It is validated once, before any network call.
package config

import (
	"os"
	"path/filepath"

	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Errors for missing required settings
var (
	ErrAPIKeyMissing      = errors.New("api key is not configured")
	ErrGraphDirMissing    = errors.New("graph directory is not configured")
	ErrDefaultDeckMissing = errors.New("default deck is not configured")
)

// RateLimit bounds outbound requests to the remote store
type RateLimit struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"windowSeconds"`
}

// Config holds mochisync configuration
type Config struct {
	APIEndpoint      string    `yaml:"apiEndpoint"`
	APIKey           string    `yaml:"apiKey"`
	GraphDir         string    `yaml:"graphDir"`
	DefaultDeck      string    `yaml:"defaultDeck"`
	SyncTag          string    `yaml:"syncTag"`
	IncludePageTitle bool      `yaml:"includePageTitle"`
	IncludeAncestors bool      `yaml:"includeAncestors"`
	DeleteOrphans    bool      `yaml:"deleteOrphans"`
	GitPull          bool      `yaml:"gitPull"`
	RateLimit        RateLimit `yaml:"rateLimit"`
}

// DefaultAPIEndpoint is the remote store API root used when none is configured
const DefaultAPIEndpoint = "https://app.mochi.cards/api"

const (
	defaultRateLimitRequests = 60
	defaultRateLimitWindow   = 60
)

// Default returns a config populated with defaults
func Default() Config {
	return Config{
		APIEndpoint:      DefaultAPIEndpoint,
		SyncTag:          consts.DefaultSyncTag,
		DefaultDeck:      "Logseq",
		IncludePageTitle: true,
		IncludeAncestors: true,
		RateLimit: RateLimit{
			Requests:      defaultRateLimitRequests,
			WindowSeconds: defaultRateLimitWindow,
		},
	}
}

// GetPath returns the path to the mochisync config file
func GetPath() string {
	if override := os.Getenv(consts.EnvConfigPath); override != "" {
		return override
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, consts.DirName, consts.ConfigFilename)
}

// Read reads the config file and applies environment and default fallbacks
func Read() (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath())
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err = yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return applyFallbacks(ret), nil
}

// applyFallbacks fills unset fields from the environment and defaults
func applyFallbacks(cf Config) Config {
	if key := os.Getenv(consts.EnvAPIKey); key != "" {
		cf.APIKey = key
	}
	if cf.APIEndpoint == "" {
		cf.APIEndpoint = DefaultAPIEndpoint
	}
	if cf.SyncTag == "" {
		cf.SyncTag = consts.DefaultSyncTag
	}
	if cf.RateLimit.Requests <= 0 {
		cf.RateLimit.Requests = defaultRateLimitRequests
	}
	if cf.RateLimit.WindowSeconds <= 0 {
		cf.RateLimit.WindowSeconds = defaultRateLimitWindow
	}

	return cf
}

// Write writes the config to the config file
func Write(cf Config) error {
	path := GetPath()

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating the config directory")
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// Validate checks that all required settings are present. It runs before
// any network call so that a misconfigured run aborts cleanly.
func (cf Config) Validate() error {
	if cf.APIKey == "" {
		return ErrAPIKeyMissing
	}
	if cf.GraphDir == "" {
		return ErrGraphDirMissing
	}
	if cf.DefaultDeck == "" {
		return ErrDefaultDeckMissing
	}

	return nil
}
