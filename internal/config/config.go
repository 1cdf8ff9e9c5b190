package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

func configFilenames() []string {
	return []string{"eqrender.toml", ".eqrender.toml"}
}

// Load reads the config at configPath. With an empty configPath the nearest
// eqrender.toml in the working directory or its parents is used, and when
// there is none the defaults apply relative to the working directory.
func Load(configPath string) (*Config, error) {
	resolvedPath, found, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	if !found {
		return defaultsFromWorkingDir()
	}

	absConfigPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving absolute config path")
	}

	cfg := &Config{}
	k := koanf.New(".")

	if loadErr := k.Load(file.Provider(absConfigPath), toml.Parser()); loadErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix TOML syntax in your config").
			Wrapf(loadErr, "loading config from %q", absConfigPath)
	}

	if unmarshalErr := k.Unmarshal("", cfg); unmarshalErr != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", absConfigPath).
			Hint("Fix config structure to match the eqrender schema").
			Wrapf(unmarshalErr, "decoding config from %q", absConfigPath)
	}

	cfg.ConfigDir = filepath.Dir(absConfigPath)
	cfg.Path = absConfigPath

	return finish(cfg)
}

func defaultsFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, oops.Wrapf(err, "getting working directory")
	}

	return finish(&Config{ConfigDir: wd})
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()

	if valErr := cfg.Validate(); valErr != nil {
		return nil, valErr
	}

	cfg.Output = cfg.ResolvePath(cfg.Output)
	return cfg, nil
}

// findConfig walks from the working directory up to the filesystem root
// looking for eqrender.toml or .eqrender.toml.
func findConfig() (string, bool, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false, oops.Wrapf(err, "getting working directory")
	}

	for {
		foundPath, found, findErr := findConfigInDirectory(dir)
		if findErr != nil {
			return "", false, findErr
		}

		if found {
			return foundPath, true, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			return "", false, nil
		}

		dir = parentDir
	}
}

func resolveConfigPath(configPath string) (string, bool, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", false, oops.
					Code("CONFIG_NOT_FOUND").
					With("path", configPath).
					Hint("Create the file or pass a valid --config path").
					Errorf("config file %q does not exist", configPath)
			}

			return "", false, oops.Wrapf(err, "checking config file %q", configPath)
		}

		return configPath, true, nil
	}

	return findConfig()
}

func findConfigInDirectory(dir string) (string, bool, error) {
	for _, name := range configFilenames() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, oops.Wrapf(err, "checking for config file at %q", path)
		}
	}

	return "", false, nil
}
