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
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BLINKC_TEST_PLUGINS", "/opt/blink/plugins")
	path := writeFile(t, t.TempDir(), "blinkc.yaml", `
schemas:
  - a.blink
  - b.blink
log_level: info
format:
  namespace: N
codegen:
  plugin_path: $BLINKC_TEST_PLUGINS
  output: gen
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.blink", "b.blink"}, cfg.Schemas)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "N", cfg.Format.Namespace)
	assert.Equal(t, codegenConfig{
		PluginPath:       "/opt/blink/plugins",
		Language:         defaultLanguage,
		Output:           "gen",
		MemoryLimitPages: defaultMemoryLimitPages,
	}, cfg.Codegen)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = loadConfig(writeFile(t, dir, "bad.yaml", "schemas: {"))
	assert.ErrorContains(t, err, "parse config")

	_, err = loadConfig(writeFile(t, dir, "level.yaml", "log_level: loud\n"))
	assert.ErrorContains(t, err, "validate config: log_level:")

	_, err = loadConfig(writeFile(t, dir, "pages.yaml", "codegen:\n  memory_limit_pages: 70000\n"))
	assert.EqualError(t, err, "validate config: codegen.memory_limit_pages: 70000 exceeds the wasm32 limit of 65536")
}

func TestLoadConfigOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := loadConfigOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Schemas)

	writeFile(t, dir, defaultConfigPath, "schemas: [x.blink]\n")
	cfg, err = loadConfigOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.blink"}, cfg.Schemas)

	_, err = loadConfigOrDefault(filepath.Join(dir, "other.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envPluginPath, "/a:/b")
	t.Setenv(envOutput, "out")
	t.Setenv(envMemory, "32")

	cfg, err := finishConfig(&config{
		LogLevel: "error",
		Codegen:  codegenConfig{Output: "gen", MemoryLimitPages: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/a:/b", cfg.Codegen.PluginPath)
	assert.Equal(t, "out", cfg.Codegen.Output)
	assert.Equal(t, uint32(32), cfg.Codegen.MemoryLimitPages)
}

func TestConfigEnvOverrideIgnoresBadNumber(t *testing.T) {
	t.Setenv(envMemory, "lots")
	cfg, err := finishConfig(&config{})
	require.NoError(t, err)
	assert.Equal(t, uint32(defaultMemoryLimitPages), cfg.Codegen.MemoryLimitPages)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "info")
	require.NoError(t, err)
	logger.Debug().Msg("hidden")
	logger.Info().Str("source", "a.blink").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "a.blink")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)
}
