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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"

	"go.blink-lang.org/blink/internal/codegen"
)

type cmdCodegen struct {
	env        *env
	outDir     string
	pluginPath string
	language   string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen [SCHEMA...]",
		summary: "Generate code with a WebAssembly codegen plugin",
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outDir, "output", "o", "", "output directory (or codegen.output, $BLINKC_OUTPUT)")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "':'-separated plugin directories (or codegen.plugin_path, $BLINKC_PLUGIN_PATH)")
	flags.StringVarP(&cmd.language, "language", "l", "", "target language, selects blink-codegen-LANGUAGE.wasm")
}

// resolveFlags fills unset flags from the configuration.
func (cmd *cmdCodegen) resolveFlags() {
	cfg := cmd.env.config.Codegen
	if cmd.outDir == "" {
		cmd.outDir = cfg.Output
	}
	if cmd.pluginPath == "" {
		cmd.pluginPath = cfg.PluginPath
	}
	if cmd.language == "" {
		cmd.language = cfg.Language
	}
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	cmd.resolveFlags()
	logger := cmd.env.logger

	if cmd.outDir == "" {
		fmt.Fprintln(os.Stderr, "No output directory specified (set --output=)")
		return 1
	}
	paths, err := schemaPaths(cmd.env.config, argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, err := compileFiles(paths, logger)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	printWarnings(os.Stderr, result.Warnings)

	requestBuf, err := json.Marshal(&codegen.Request{
		Language: cmd.language,
		Schema:   codegen.BuildModel(result.Schema),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	pluginPath, err := cmd.locatePlugin(cmd.language)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Debug().
		Str("plugin", pluginPath).
		Int("request_bytes", len(requestBuf)).
		Msg("running codegen plugin")

	response, err := runPlugin(ctx, pluginBin, cmd.language, requestBuf, cmd.env.config.Codegen.MemoryLimitPages)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(response.Files) == 0 {
		fmt.Fprintln(os.Stderr, "Plugin did not generate any output files")
		return 1
	}
	if err := cmd.writeFiles(response.Files); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Info().
		Int("files", len(response.Files)).
		Str("output", cmd.outDir).
		Msg("generated code")
	return 0
}

// runPlugin instantiates a codegen plugin and calls its generate function
// for language. Request and response are both prefixed with their length
// as a little-endian uint32. The plugin stores a pointer to its response
// at a host-allocated address, and a non-zero return code means the
// response carries an error.
func runPlugin(
	ctx context.Context,
	pluginBin []byte,
	language string,
	requestBuf []byte,
	memoryLimitPages uint32,
) (*codegen.Response, error) {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(memoryLimitPages)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, fmt.Errorf("compile plugin: %w", err)
	}
	moduleConfig := wasm.NewModuleConfig().WithStderr(os.Stderr)
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin: %w", err)
	}
	mem := plugin.Memory()
	if mem == nil {
		return nil, fmt.Errorf("Plugin does not export a memory")
	}

	wasmAlloc := plugin.ExportedFunction("blink_codegen_allocate")
	if wasmAlloc == nil {
		return nil, fmt.Errorf("Plugin does not export blink_codegen_allocate")
	}
	generateName := "blink_codegen_generate/" + language
	wasmGenerate := plugin.ExportedFunction(generateName)
	if wasmGenerate == nil {
		return nil, fmt.Errorf("Plugin does not export %s", generateName)
	}

	requestLen := uint32(len(requestBuf)) + 4
	results, err := wasmAlloc.Call(ctx, uint64(requestLen))
	if err != nil {
		return nil, err
	}
	requestPtr := uint32(results[0])
	if requestPtr == 0 {
		return nil, fmt.Errorf("Plugin failed to allocate %d bytes", requestLen)
	}
	if !mem.WriteUint32Le(requestPtr, requestLen-4) {
		return nil, fmt.Errorf("Failed to write request message length")
	}
	if !mem.Write(requestPtr+4, requestBuf) {
		return nil, fmt.Errorf("Failed to write request message")
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmGenerate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message")
	}
	return decodeResponse(rc, responseBuf)
}

func decodeResponse(rc uint8, responseBuf []byte) (*codegen.Response, error) {
	var response codegen.Response
	if err := json.Unmarshal(responseBuf, &response); err != nil {
		return nil, fmt.Errorf("decode plugin response: %w", err)
	}
	if rc != 0 {
		message := strings.TrimSpace(strings.ToValidUTF8(response.Error, "�"))
		if message == "" {
			message = fmt.Sprintf("Plugin failed with code %d", rc)
		}
		return nil, fmt.Errorf("%s", message)
	}
	return &response, nil
}

func (cmd *cmdCodegen) writeFiles(files []codegen.OutputFile) error {
	if err := os.MkdirAll(cmd.outDir, 0o755); err != nil {
		return err
	}
	for _, outputFile := range files {
		outPath, err := cmd.outPath(outputFile)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, outputFile.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *cmdCodegen) locatePlugin(language string) (string, error) {
	path := cmd.pluginPath
	if path == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $%s", envPluginPath)
	}
	basename := fmt.Sprintf("blink-codegen-%s.wasm", language)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("Blink codegen plugin %s not found in plugin path", basename)
}

func (cmd *cmdCodegen) outPath(file codegen.OutputFile) (string, error) {
	parts := file.Path
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.Contains(part, "/") {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains '/'", parts, part)
		}
	}
	return filepath.Join(append([]string{cmd.outDir}, parts...)...), nil
}
