/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// The camera section holds the framing constants of the viewer. They encode
// product-specific "nice framing" choices with no derivable formula and are
// meant to be tuned, not computed.

type BackendConfig struct {
	PostgresURL string `yaml:"postgres_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	LayoutPath     string `yaml:"layout_path"`
	InventoryDB    string `yaml:"inventory_db"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// CameraConfig tunes the director's framing and timing.
// Vectors are [x, y, z] triples in world units; durations are milliseconds.
type CameraConfig struct {
	TransitionMs         int        `yaml:"transition_ms"`
	SpringBackDebounceMs int        `yaml:"spring_back_debounce_ms"`
	SpringBackSuppressMs int        `yaml:"spring_back_suppress_ms"`
	OverviewEye          [3]float32 `yaml:"overview_eye"`
	TopViewEye           [3]float32 `yaml:"top_view_eye"`
	LoadingEye           [3]float32 `yaml:"loading_eye"`
	MaxTargetRadius      float32    `yaml:"max_target_radius"`
	GroundOffset         float32    `yaml:"ground_offset"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
	Camera        CameraConfig  `yaml:"camera"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Backend:       BackendConfig{TimeoutMs: 15000},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Camera: CameraConfig{
			TransitionMs:         1500,
			SpringBackDebounceMs: 100,
			SpringBackSuppressMs: 500,
			OverviewEye:          [3]float32{0, 150, 300},
			TopViewEye:           [3]float32{0, 480, 10},
			LoadingEye:           [3]float32{0, 500, 10},
			MaxTargetRadius:      400,
			GroundOffset:         0,
		},
	}
}

// Env var names used as overrides.
const (
	EnvPostgresURL      = "YV_POSTGRES_URL"
	EnvBackendTimeoutMs = "YV_BACKEND_TIMEOUT_MS"
	EnvTelemetryOptIn   = "YV_TELEMETRY_OPT_IN"
	EnvLayoutPath       = "YV_LAYOUT_PATH"
	EnvInventoryDB      = "YV_INVENTORY_DB"
	EnvLogLevel         = "YV_LOG_LEVEL"
	EnvLogFormat        = "YV_LOG_FORMAT"
	EnvLogSource        = "YV_LOG_SOURCE"
	EnvLogFile          = "YV_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "Yardview"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the keyring so it can be stubbed in tests.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Yardview")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Yardview")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "yardview")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The backend token is returned separately from the
// OS keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return tokenStore.Set(keyringService, keyringToken, token)
	}
	return nil
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.General.LayoutPath != "" {
		dst.General.LayoutPath = src.General.LayoutPath
	}
	if src.General.InventoryDB != "" {
		dst.General.InventoryDB = src.General.InventoryDB
	}
	if src.Backend.PostgresURL != "" {
		dst.Backend.PostgresURL = src.Backend.PostgresURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Camera.TransitionMs != 0 {
		dst.Camera.TransitionMs = src.Camera.TransitionMs
	}
	if src.Camera.SpringBackDebounceMs != 0 {
		dst.Camera.SpringBackDebounceMs = src.Camera.SpringBackDebounceMs
	}
	if src.Camera.SpringBackSuppressMs != 0 {
		dst.Camera.SpringBackSuppressMs = src.Camera.SpringBackSuppressMs
	}
	if src.Camera.OverviewEye != ([3]float32{}) {
		dst.Camera.OverviewEye = src.Camera.OverviewEye
	}
	if src.Camera.TopViewEye != ([3]float32{}) {
		dst.Camera.TopViewEye = src.Camera.TopViewEye
	}
	if src.Camera.LoadingEye != ([3]float32{}) {
		dst.Camera.LoadingEye = src.Camera.LoadingEye
	}
	if src.Camera.MaxTargetRadius != 0 {
		dst.Camera.MaxTargetRadius = src.Camera.MaxTargetRadius
	}
	if src.Camera.GroundOffset != 0 {
		dst.Camera.GroundOffset = src.Camera.GroundOffset
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPostgresURL)); v != "" {
		cfg.Backend.PostgresURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLayoutPath)); v != "" {
		cfg.General.LayoutPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInventoryDB)); v != "" {
		cfg.General.InventoryDB = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
