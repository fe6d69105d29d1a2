package config

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

//go:embed scenario.json
var embedded embed.FS

const scenarioName = "scenario.json"

// Config owns the user configuration directory, which holds the default
// scenario.
type Config struct {
	log *slog.Logger
	dir string
}

func NewConfig(log *slog.Logger) *Config {
	var dir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "tubes")
	} else {
		dir = filepath.Join(os.Getenv("HOME"), ".tubes")
	}
	return &Config{log: log, dir: dir}
}

func (cfg *Config) Dir() string {
	return cfg.dir
}

// Path of the default scenario.
func (cfg *Config) ScenarioPath() string {
	return filepath.Join(cfg.dir, scenarioName)
}

// Write the embedded scenario to the configuration directory unless a
// scenario is already there.
func (cfg *Config) Init() error {
	path := cfg.ScenarioPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat default scenario: %w", err)
	}

	content, err := Embedded()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0664); err != nil {
		return fmt.Errorf("write default scenario: %w", err)
	}
	cfg.log.Info("wrote default scenario", "path", path)
	return nil
}

// Return the scenario shipped with the binary.
func Embedded() ([]byte, error) {
	content, err := fs.ReadFile(embedded, scenarioName)
	if err != nil {
		return nil, fmt.Errorf("read embedded scenario: %w", err)
	}
	return content, nil
}

func DefaultScenarioDocument() (*Scenario, error) {
	content, err := Embedded()
	if err != nil {
		return nil, err
	}
	return Parse(content, filepath.Ext(scenarioName))
}

// Reload the scenario at path whenever it is written and hand the result to
// onChange, which also receives load errors. Blocks until ctx is done.
func (cfg *Config) Watch(ctx context.Context, path string, onChange func(*Scenario, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files on save, so the directory is watched
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	name := filepath.Clean(path)
	cfg.log.Debug("watching scenario", "path", name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			cfg.log.Debug("scenario changed", "path", name, "op", event.Op.String())
			onChange(Load(path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
