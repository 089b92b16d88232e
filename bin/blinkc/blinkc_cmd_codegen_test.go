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
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.blink-lang.org/blink/internal/codegen"
)

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmVec(items ...[]byte) []byte {
	out := uleb128(uint32(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func wasmName(name string) []byte {
	return append(uleb128(uint32(len(name))), name...)
}

func wasmSection(id byte, body []byte) []byte {
	out := append([]byte{id}, uleb128(uint32(len(body)))...)
	return append(out, body...)
}

func wasmBytes(parts ...[]byte) []byte {
	var out []byte
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

// fakePlugin assembles a module implementing the codegen plugin ABI for
// language. Its allocator is a bump allocator starting at 1024 and its
// generate function always returns rc with the given response document,
// which is stored at offset 16.
func fakePlugin(language string, rc byte, response string) []byte {
	const responseOffset = 16
	data := binary.LittleEndian.AppendUint32(nil, uint32(len(response)))
	data = append(data, response...)

	allocate := []byte{
		0x00,       // no locals
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		0x0b,       // end
	}
	generate := []byte{
		0x00,                 // no locals
		0x20, 0x01,           // local.get 1
		0x41, responseOffset, // i32.const
		0x36, 0x02, 0x00,     // i32.store
		0x41, rc,             // i32.const
		0x0b,                 // end
	}

	return wasmBytes(
		[]byte("\x00asm\x01\x00\x00\x00"),
		wasmSection(1, wasmVec(
			[]byte{0x60, 0x01, 0x7f, 0x01, 0x7f},
			[]byte{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
		)),
		wasmSection(3, wasmVec([]byte{0x00}, []byte{0x01})),
		wasmSection(5, wasmVec([]byte{0x00, 0x01})),
		wasmSection(6, wasmVec([]byte{0x7f, 0x01, 0x41, 0x80, 0x08, 0x0b})),
		wasmSection(7, wasmVec(
			wasmBytes(wasmName("memory"), []byte{0x02, 0x00}),
			wasmBytes(wasmName("blink_codegen_allocate"), []byte{0x00, 0x00}),
			wasmBytes(wasmName("blink_codegen_generate/"+language), []byte{0x00, 0x01}),
		)),
		wasmSection(10, wasmVec(
			wasmBytes(uleb128(uint32(len(allocate))), allocate),
			wasmBytes(uleb128(uint32(len(generate))), generate),
		)),
		wasmSection(11, wasmVec(wasmBytes(
			[]byte{0x00, 0x41, responseOffset, 0x0b},
			uleb128(uint32(len(data))),
			data,
		))),
	)
}

const fakeResponse = `{"files":[{"path":["pkg","out.go"],"content":"cGFja2FnZSBwa2cK"}]}`

func TestRunPlugin(t *testing.T) {
	t.Parallel()
	plugin := fakePlugin("go", 0, fakeResponse)
	response, err := runPlugin(t.Context(), plugin, "go", []byte(`{"language":"go"}`), 16)
	require.NoError(t, err)
	assert.Equal(t, []codegen.OutputFile{{
		Path:    []string{"pkg", "out.go"},
		Content: []byte("package pkg\n"),
	}}, response.Files)
}

func TestRunPluginErrors(t *testing.T) {
	t.Parallel()

	t.Run("plugin error", func(t *testing.T) {
		t.Parallel()
		plugin := fakePlugin("go", 1, `{"error":"unsupported schema\n"}`)
		_, err := runPlugin(t.Context(), plugin, "go", []byte("{}"), 16)
		assert.EqualError(t, err, "unsupported schema")
	})

	t.Run("missing language", func(t *testing.T) {
		t.Parallel()
		plugin := fakePlugin("go", 0, fakeResponse)
		_, err := runPlugin(t.Context(), plugin, "rust", []byte("{}"), 16)
		assert.EqualError(t, err, "Plugin does not export blink_codegen_generate/rust")
	})

	t.Run("not wasm", func(t *testing.T) {
		t.Parallel()
		_, err := runPlugin(t.Context(), []byte("not a module"), "go", []byte("{}"), 16)
		assert.ErrorContains(t, err, "compile plugin:")
	})
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	response, err := decodeResponse(0, []byte(`{"files":[]}`))
	require.NoError(t, err)
	assert.Empty(t, response.Files)

	_, err = decodeResponse(1, []byte("{\"error\":\"  bad input \xff\\n\"}"))
	assert.EqualError(t, err, "bad input �")

	_, err = decodeResponse(2, []byte(`{}`))
	assert.EqualError(t, err, "Plugin failed with code 2")

	_, err = decodeResponse(0, []byte(`{`))
	assert.ErrorContains(t, err, "decode plugin response")
}

func TestOutPath(t *testing.T) {
	t.Parallel()
	cmd := &cmdCodegen{outDir: "gen"}

	got, err := cmd.outPath(codegen.OutputFile{Path: []string{"a", "b.go"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("gen", "a", "b.go"), got)

	for _, path := range [][]string{
		nil,
		{""},
		{"."},
		{"a", ".."},
		{"/etc", "passwd"},
		{"a/b.go"},
	} {
		_, err := cmd.outPath(codegen.OutputFile{Path: path})
		assert.Error(t, err, "path %#v", path)
	}
}

func TestLocatePlugin(t *testing.T) {
	t.Parallel()
	empty := t.TempDir()
	dir := t.TempDir()
	pluginPath := writeFile(t, dir, "blink-codegen-go.wasm", "")

	cmd := &cmdCodegen{pluginPath: empty + string(filepath.ListSeparator) + dir}
	got, err := cmd.locatePlugin("go")
	require.NoError(t, err)
	assert.Equal(t, pluginPath, got)

	_, err = cmd.locatePlugin("rust")
	assert.EqualError(t, err, "Blink codegen plugin blink-codegen-rust.wasm not found in plugin path")

	cmd.pluginPath = ""
	_, err = cmd.locatePlugin("go")
	assert.ErrorContains(t, err, "No plugin path set")
}

func TestCodegenResolveFlags(t *testing.T) {
	t.Parallel()
	e := testEnv(&config{Codegen: codegenConfig{
		PluginPath: "/plugins",
		Language:   "go",
		Output:     "gen",
	}})

	cmd := &cmdCodegen{env: e, language: "rust"}
	cmd.resolveFlags()
	assert.Equal(t, "/plugins", cmd.pluginPath)
	assert.Equal(t, "rust", cmd.language)
	assert.Equal(t, "gen", cmd.outDir)
}

func TestCmdCodegen(t *testing.T) {
	t.Parallel()
	pluginDir := t.TempDir()
	writeFile(t, pluginDir, "blink-codegen-go.wasm", string(fakePlugin("go", 0, fakeResponse)))
	schemaPath := writeFile(t, t.TempDir(), "a.blink", "A/1 -> u32 x")
	outDir := filepath.Join(t.TempDir(), "gen")

	e := testEnv(&config{Codegen: codegenConfig{
		PluginPath:       pluginDir,
		Language:         "go",
		Output:           outDir,
		MemoryLimitPages: 16,
	}})
	cmd := &cmdCodegen{env: e}
	require.Equal(t, 0, cmd.run(t.Context(), []string{schemaPath}))

	data, err := os.ReadFile(filepath.Join(outDir, "pkg", "out.go"))
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", string(data))
}
