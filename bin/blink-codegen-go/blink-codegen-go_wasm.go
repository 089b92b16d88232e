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

//go:build tinygo

package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"unsafe"

	"go.blink-lang.org/blink/internal/codegen"
)

var buffers = make(map[*uint8][]uint8)

//go:export blink_codegen_allocate
func blinkCodegenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export blink_codegen_deallocate
func blinkCodegenDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export blink_codegen_generate/go
func blinkCodegenGenerateGo(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	requestLen := binary.LittleEndian.Uint32(unsafe.Slice(requestPtr, 4))
	requestBuf := unsafe.Slice(requestPtr, 4+requestLen)[4:]

	var request codegen.Request
	if err := json.Unmarshal(requestBuf, &request); err != nil {
		return respondError(responsePtrPtr, fmt.Errorf("decode request: %w", err))
	}
	files, err := codegen.GenerateGo(request.Schema)
	if err != nil {
		return respondError(responsePtrPtr, err)
	}
	return respond(responsePtrPtr, &codegen.Response{Files: files}, 0)
}

func respondError(responsePtrPtr **uint8, err error) uint8 {
	return respond(responsePtrPtr, &codegen.Response{Error: err.Error()}, 1)
}

// respond stores a length-prefixed response and returns rc. If the
// response cannot be encoded, the error is reported with an empty
// document.
func respond(responsePtrPtr **uint8, response *codegen.Response, rc uint8) uint8 {
	body, err := json.Marshal(response)
	if err != nil {
		body = []byte("{}")
		rc = 1
	}
	buf := make([]uint8, 4+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[4:], body)
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	*responsePtrPtr = ptr
	return rc
}
