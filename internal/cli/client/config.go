package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	configDirName  = "scratch"
	configFileName = "config.json"
	apiKeyPrefix   = "scr_"
)

var apiKeyHex = regexp.MustCompile("^[0-9a-fA-F]{64}$")

// GlobalConfig is what 'scratch auth login' persists.
type GlobalConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

// configDirFunc is swapped out by tests.
var configDirFunc = func() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

func GetConfigDir() (string, error) { return configDirFunc() }

func GetConfigPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadGlobalConfig returns nil without error when no config was saved.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := new(GlobalConfig)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveGlobalConfig writes cfg readable by the owner only. The file is
// replaced atomically so a crash never leaves half a key behind.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DeleteGlobalConfig is a no-op when nothing was saved.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// IsValidAPIKey checks the scr_<64 hex> token shape.
func IsValidAPIKey(key string) bool {
	rest, ok := strings.CutPrefix(key, apiKeyPrefix)
	return ok && apiKeyHex.MatchString(rest)
}

// CredentialSource names where the active API key came from.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceNone         CredentialSource = "none"
)

// GetCredentialSource resolves the key and URL from flags, then the
// environment, then the saved config. The first source holding a key wins;
// its URL falls back to the default.
func GetCredentialSource(flagAPIKey, flagAPIURL string) (CredentialSource, string, string) {
	sources := []func() (CredentialSource, string, string){
		func() (CredentialSource, string, string) { return SourceFlag, flagAPIKey, flagAPIURL },
		func() (CredentialSource, string, string) {
			return SourceEnv, os.Getenv(envAPIKey), os.Getenv(envAPIURL)
		},
		func() (CredentialSource, string, string) {
			cfg, err := LoadGlobalConfig()
			if err != nil || cfg == nil {
				return SourceGlobalConfig, "", ""
			}
			return SourceGlobalConfig, cfg.APIKey, cfg.APIURL
		},
	}

	for _, source := range sources {
		name, key, url := source()
		if key == "" {
			continue
		}
		if url == "" {
			url = defaultAPIURL
		}
		return name, key, url
	}
	return SourceNone, "", ""
}
