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

// Command build compiles a codegen plugin to WebAssembly with TinyGo. It is
// run from go:generate directives in the plugin directories.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/pflag"
)

var (
	tinygo  = pflag.String("tinygo", "tinygo", "TinyGo executable, looked up in $PATH")
	output  = pflag.StringP("output", "o", "", "path of the .wasm file to write")
	target  = pflag.String("target", "wasm-unknown", "TinyGo target")
	wasmOpt = pflag.String("wasm-opt", "", "wasm-opt executable, passed to TinyGo as $WASMOPT")
	noDebug = pflag.Bool("no-debug", true, "strip debug information")
)

func main() {
	pflag.Parse()
	if *output == "" {
		fmt.Fprintln(os.Stderr, "No output path specified (set --output=)")
		os.Exit(2)
	}
	tinygoBin, err := exec.LookPath(*tinygo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	tinygoArgs := []string{"build", "-target=" + *target, "-o=" + *output}
	if *noDebug {
		tinygoArgs = append(tinygoArgs, "-no-debug")
	}
	tinygoArgs = append(tinygoArgs, pflag.Args()...)

	cmd := exec.Command(tinygoBin, tinygoArgs...)
	cmd.Env = os.Environ()
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+*wasmOpt)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
