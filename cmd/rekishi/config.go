package main

import (
	"os"
	"path/filepath"

	"github.com/hyperjump/rekishi/internal/config"
)

const defaultConfigPath = "/usr/local/etc/rekishi/config.yaml"

// loadConfig loads config from path after reading .env files. When path is the
// default, config.yaml in the current directory takes precedence so that
// running from a project directory picks up the project's config. A missing
// default config yields built-in defaults. Returns the config and the path
// that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	config.LoadDotEnv()
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		cfg, err := config.LoadOrDefault(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
