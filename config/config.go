// Package config assembles one merged configuration mapping from a .env
// file, the process environment, and a remote secret-management service.
// Remote values win on key collision. The mapping is loaded once and is
// immutable afterwards.
package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/luismalamoc/my-utility-package/apperrors"
	"github.com/luismalamoc/my-utility-package/secrets"
)

const (
	// DefaultEnvFile is the conventional environment-file name.
	DefaultEnvFile = ".env"

	// DefaultSecretNamesKey names the configuration entry listing the
	// shared secrets to fetch, as a JSON string array.
	DefaultSecretNamesKey = "SHARED_SECRET_NAMES_LIST"
)

// Options configures Load.
type Options struct {
	// EnvFile is the path to the environment file. Defaults to ".env".
	// A missing file is not an error; already-set environment variables
	// are used as-is.
	EnvFile string

	// Secrets fetches remote secrets. When nil, the remote overlay step
	// is skipped unless the secret names list is configured, which is
	// then a configuration error.
	Secrets secrets.Fetcher

	// SecretNamesKey overrides the configuration key naming the secrets
	// to fetch. Defaults to DefaultSecretNamesKey.
	SecretNamesKey string
}

// Config is the merged, read-only configuration mapping.
type Config struct {
	values map[string]string
}

// Load builds the configuration in two steps: the env file feeds the
// process environment (existing variables keep precedence, dotenv
// semantics), which is snapshotted into the mapping; then each secret
// named by the secret names list is fetched, decoded as a JSON object,
// and overlaid with remote values winning.
func Load(ctx context.Context, opts Options) (*Config, error) {
	if opts.EnvFile == "" {
		opts.EnvFile = DefaultEnvFile
	}
	if opts.SecretNamesKey == "" {
		opts.SecretNamesKey = DefaultSecretNamesKey
	}

	if err := godotenv.Load(opts.EnvFile); err != nil {
		slog.Info("No env file found, using environment variables", "file", opts.EnvFile)
	}

	values := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		values[name] = value
	}

	if err := overlaySecrets(ctx, values, opts); err != nil {
		return nil, err
	}

	return &Config{values: values}, nil
}

func overlaySecrets(ctx context.Context, values map[string]string, opts Options) error {
	raw := values[opts.SecretNamesKey]
	if raw == "" {
		return nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return apperrors.ConfigurationError("invalid secret names list", err).
			WithContext("key", opts.SecretNamesKey)
	}
	if len(names) == 0 {
		return nil
	}
	if opts.Secrets == nil {
		return apperrors.ConfigurationError("secret names configured but no secret fetcher provided", nil).
			WithContext("key", opts.SecretNamesKey)
	}

	for _, name := range names {
		payload, err := opts.Secrets.GetSecretString(ctx, name)
		if err != nil {
			return apperrors.ConfigurationError("failed to fetch shared secret", err).
				WithContext("secret", name)
		}

		var kv map[string]string
		if err := json.Unmarshal([]byte(payload), &kv); err != nil {
			return apperrors.ConfigurationError("malformed secret payload", err).
				WithContext("secret", name)
		}
		maps.Copy(values, kv)
	}

	return nil
}

// Get returns the value for key, or "" when absent.
func (c *Config) Get(key string) string {
	return c.values[key]
}

// LookupEnv returns the value for key and whether it is present. It also
// satisfies env.Source, so the mapping can back typed struct loading.
func (c *Config) LookupEnv(key string) (string, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Keys returns the sorted configuration keys.
func (c *Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Unmarshal decodes the merged mapping into a struct tagged with `env`
// field tags.
func (c *Config) Unmarshal(v any) error {
	if err := env.Load(v, &env.Options{Source: c}); err != nil {
		return apperrors.ConfigurationError("failed to load configuration struct", err)
	}
	return nil
}
