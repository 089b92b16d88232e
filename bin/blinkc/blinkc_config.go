// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "blinkc.yaml"
	defaultLogLevel         = "warn"
	defaultLanguage         = "go"
	defaultMemoryLimitPages = 16384

	// A wasm32 memory has at most 65536 pages of 64 KiB.
	maxMemoryLimitPages = 65536

	envLogLevel   = "BLINKC_LOG_LEVEL"
	envPluginPath = "BLINKC_PLUGIN_PATH"
	envOutput     = "BLINKC_OUTPUT"
	envMemory     = "BLINKC_MEMORY_LIMIT_PAGES"
)

type config struct {
	// Schemas are compiled when a command is given no schema paths.
	Schemas  []string      `yaml:"schemas"`
	LogLevel string        `yaml:"log_level"`
	Format   formatConfig  `yaml:"format"`
	Codegen  codegenConfig `yaml:"codegen"`
}

type formatConfig struct {
	Namespace string `yaml:"namespace"`
}

type codegenConfig struct {
	PluginPath       string `yaml:"plugin_path"`
	Language         string `yaml:"language"`
	Output           string `yaml:"output"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// loadConfig reads configuration from a YAML file. Environment variables
// referenced as $VAR in the file are expanded before parsing.
func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return finishConfig(&cfg)
}

// loadConfigOrDefault loads path, or ./blinkc.yaml when path is empty. A
// missing default file is not an error.
func loadConfigOrDefault(path string) (*config, error) {
	if path != "" {
		return loadConfig(path)
	}
	cfg, err := loadConfig(defaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return finishConfig(&config{})
	}
	return cfg, err
}

func finishConfig(cfg *config) (*config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies BLINKC_* environment variables. They take
// precedence over the file but not over command-line flags.
func applyEnvOverrides(cfg *config) {
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envPluginPath); v != "" {
		cfg.Codegen.PluginPath = v
	}
	if v := os.Getenv(envOutput); v != "" {
		cfg.Codegen.Output = v
	}
	if v := os.Getenv(envMemory); v != "" {
		if pages, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Codegen.MemoryLimitPages = uint32(pages)
		}
	}
}

func setDefaults(cfg *config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Codegen.Language == "" {
		cfg.Codegen.Language = defaultLanguage
	}
	if cfg.Codegen.MemoryLimitPages == 0 {
		cfg.Codegen.MemoryLimitPages = defaultMemoryLimitPages
	}
}

func validate(cfg *config) error {
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if cfg.Codegen.MemoryLimitPages > maxMemoryLimitPages {
		return fmt.Errorf(
			"codegen.memory_limit_pages: %d exceeds the wasm32 limit of %d",
			cfg.Codegen.MemoryLimitPages, maxMemoryLimitPages,
		)
	}
	return nil
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}
