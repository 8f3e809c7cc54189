package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadSecrets reads a TOML secrets file with top-level string keys, e.g.
//
//	OPENAI_API_KEY = "sk-..."
//
// Non-string values are ignored.
func LoadSecrets(path string) (map[string]string, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSecretsFile, path, err)
	}

	secrets := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			secrets[k] = s
		}
	}
	return secrets, nil
}

// ResolveAPIKey returns the provider credential from the process environment,
// falling back to the secrets file at secretsPath. A missing secrets file is
// not an error by itself; a missing credential is.
func ResolveAPIKey(p *ProviderConfig, secretsPath string) (string, error) {
	if p.APIKey != "" {
		return p.APIKey, nil
	}

	env := p.KeyEnv()
	if env == "" {
		return "", nil
	}

	if v := os.Getenv(env); v != "" {
		return v, nil
	}

	if secretsPath != "" {
		secrets, err := LoadSecrets(secretsPath)
		switch {
		case err == nil:
			if v := secrets[env]; v != "" {
				return v, nil
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return "", err
		}
	}

	if secretsPath == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingCredential, env)
	}
	return "", fmt.Errorf("%w: set %s or add it to %s", ErrMissingCredential, env, secretsPath)
}
